// Package progress reports index-build progress. Reporters are fed
// (done, total) pairs and decide their own presentation, so callers can
// pass Update straight through as a build callback.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives batch-completion updates during an index build.
// Update may be called before any total is known to the caller; the
// reporter initializes itself on the first call.
type Reporter interface {
	Update(done, total int)
	Finish()
}

// NewReporter picks a reporter for the current environment: line-by-line
// output under CI, a progress bar otherwise.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws an in-place progress bar.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Update(done, total int) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Embedding chunks"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = r.bar.Set(done)
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints one line per update, suitable for CI logs.
type CIReporter struct{}

func (r *CIReporter) Update(done, total int) {
	fmt.Fprintf(os.Stderr, "embedded %d/%d chunks\n", done, total)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "index build complete")
}
