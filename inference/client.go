// Package inference calls a hosted multimodal model to suggest a severity,
// a category and a short expert advice for a violation photo + description.
// The model is prompted, not schema-enforced, so everything it returns passes
// through ParseSuggestion before touching form state.
package inference

import "context"

// Client abstracts the inference provider.
type Client interface {
	// AnalyzeViolation takes raw JPEG bytes and the reporter's description
	// and returns the provider's raw JSON response string.
	AnalyzeViolation(ctx context.Context, imageData []byte, description string) (string, error)
	// SourceName returns a short provider label for logs.
	SourceName() string
}
