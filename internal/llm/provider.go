package llm

import "context"

// Provider defines the interface for text-completion providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	// Network, auth, and quota failures wrap domain.ErrCompletion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
