package llm

import (
	"context"
	"errors"
	"fmt"
)

// TextClient is the narrow contract for a text-generation backend.
// Cross-cutting concerns (retries, rate limiting, logging) are applied
// via Middleware, not inside the providers.
type TextClient interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
	Close() error
}

var ErrEmptyCompletion = errors.New("llm: backend returned an empty completion")

// PermanentError indicates an upstream refusal that will not resolve with
// retries (4xx from the backend: malformed request, bad credentials).
type PermanentError struct {
	Status int
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("permanent: status %d: %v", e.Status, e.Err)
	}
	return "permanent: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(status int, err error) error {
	return &PermanentError{Status: status, Err: err}
}

// IsPermanent reports whether err carries a PermanentError anywhere in
// its chain.
func IsPermanent(err error) bool {
	var pErr *PermanentError
	return errors.As(err, &pErr)
}
