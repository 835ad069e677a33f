package httpclient

import (
	"errors"
	"fmt"
)

// Error is returned by Do when the upstream responds with a 4xx/5xx status.
// The response body is preserved so callers can surface provider detail.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Status)
}

// AsError unwraps an *Error from err, if present.
func AsError(err error) (*Error, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he, true
	}

	return nil, false
}
