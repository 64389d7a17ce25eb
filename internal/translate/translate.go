// Package translate wraps text-to-text translation keyed by language pairs.
package translate

import (
	"context"
	"fmt"
)

// Translator converts text between an ordered language pair. Identity pairs
// and empty input are valid pass-throughs that must not touch any engine.
type Translator interface {
	Translate(ctx context.Context, text string, source string, target string) (string, error)
}

// ModelNotFoundError reports a missing language-pair model. The message
// names the pair because installing the model is a user action.
type ModelNotFoundError struct {
	Source string
	Target string
	Model  string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf(
		"translation model %q for %s→%s is not installed on the backend; pull it first (e.g. `ollama pull %s`)",
		e.Model, e.Source, e.Target, e.Model,
	)
}
