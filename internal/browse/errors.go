package browse

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
)

// ErrInvalidCursor is the distinguished collaborator error for a rejected
// pagination token. The paginator recovers from it automatically (reset to
// page 1, reload) with a transient notice instead of the error banner.
var ErrInvalidCursor = eris.New("invalid or expired page cursor")

// isCanceled reports whether err is the local cancellation of a superseded
// request. Cancelled fetches are absorbed: never surfaced, never recorded as
// retryable failures. A deadline expiry is a real failure, not a cancel.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// isInvalidCursor reports whether err is the distinguished rejected-token
// condition, however deeply the collaborator wrapped it.
func isInvalidCursor(err error) bool {
	return errors.Is(err, ErrInvalidCursor)
}
