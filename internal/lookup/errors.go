package lookup

import (
	"context"
	"errors"
	"fmt"

	"github.com/jask/machineconfig/internal/session"
)

var errMissingItems = errors.New("response missing items")

// FetchError is a network or backend failure while loading items for a keyword.
type FetchError struct {
	Keyword    session.Keyword
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch items for %q: %v", e.Keyword, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the lookup ran out of time.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
