// Package extractor reads a corpus directory and produces normalized text
// documents. Extraction is lossy for non-text elements (images, empty PDF
// pages); those are skipped silently but counted in Stats so callers can
// assert completeness thresholds.
package extractor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"policyrag/internal/domain"
)

// Stats summarizes what an extraction run covered.
type Stats struct {
	Files           int // documents produced
	SkippedElements int // elements with no extractable text (empty pages, images, empty files)
}

// Extractor scans a corpus directory for policy documents.
type Extractor struct {
	include []string
	exclude []string
}

// New creates an Extractor with the given doublestar include/exclude
// patterns. Empty include means every supported file type is taken.
func New(include, exclude []string) *Extractor {
	return &Extractor{include: include, exclude: exclude}
}

// Extract reads every recognized file under corpusDir and returns one
// Document per file, ordered by filename so chunk ordering is reproducible.
// A file that matches the filters but cannot be extracted fails the whole
// run: a policy assistant must not silently answer from a partial corpus.
func (e *Extractor) Extract(corpusDir string) ([]domain.Document, Stats, error) {
	var stats Stats

	info, err := os.Stat(corpusDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, stats, fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, corpusDir)
		}
		return nil, stats, fmt.Errorf("accessing corpus %s: %w", corpusDir, err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s is not a directory", domain.ErrCorpusNotFound, corpusDir)
	}

	var paths []string
	err = filepath.WalkDir(corpusDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(corpusDir, path)
		if err != nil {
			return err
		}
		if !supportedExtension(relPath) {
			return nil
		}
		if !matchesInclude(relPath, e.include) || matchesExclude(relPath, e.exclude) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("scanning corpus %s: %w", corpusDir, err)
	}

	sort.Strings(paths)

	var docs []domain.Document
	for _, path := range paths {
		text, skipped, err := extractFile(path)
		if err != nil {
			return nil, stats, fmt.Errorf("extracting %s: %w", path, err)
		}
		stats.SkippedElements += skipped

		if strings.TrimSpace(text) == "" {
			stats.SkippedElements++
			continue
		}

		docs = append(docs, domain.Document{
			Text:     text,
			SourceID: filepath.Base(path),
		})
		stats.Files++
	}

	return docs, stats, nil
}

// extractFile dispatches on file extension.
func extractFile(path string) (text string, skipped int, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", 0, err
		}
		return extractMarkdown(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", 0, err
		}
		return string(data), 0, nil
	}
}

func supportedExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".md", ".markdown", ".txt":
		return true
	}
	return false
}

// matchesInclude returns true if relPath matches any include pattern, or if
// no patterns are given.
func matchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// matchesExclude returns true if relPath matches any exclude pattern.
func matchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}
