// Package llm wraps the external text-generation provider behind a
// single-method Completer interface so a deterministic stub can back tests
// without network access.
package llm

import "context"

// Completer produces free-form text for a prompt. Implementations return an
// error for any transport, status, or decoding failure; callers treat every
// failure the same way (fall back to a deterministic schema).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
