// File: service/ai/interface.go
package ai

import "context"

// Client is the language-model boundary. Selectors depend on this interface
// so tests can swap in a scripted model.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
