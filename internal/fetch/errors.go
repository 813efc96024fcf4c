package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindInvalidURL       Kind = "invalid_url"
	KindTimeout          Kind = "timeout"
	KindNetwork          Kind = "network" // connection refused, DNS, reset, body read
	KindRetriesExhausted Kind = "retries_exhausted"
	KindStatus           Kind = "status" // final status not acceptable (verification)
	KindCanceled         Kind = "canceled"
)

// Error represents an error during URL fetching.
type Error struct {
	URL        string
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a fetch error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fetchErr *Error
	return errors.As(err, &fetchErr) && fetchErr.Kind == kind
}

// classifyTransportError maps a client.Do or body read error onto a Kind.
// parent is the caller's context, used to tell cancellation apart from the per-attempt timeout.
func classifyTransportError(parent context.Context, err error) Kind {
	if parent.Err() != nil && errors.Is(parent.Err(), context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
