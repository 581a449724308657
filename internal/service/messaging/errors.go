package messaging

import (
	"errors"
	"fmt"
)

var ErrEncodePayload = errors.New("failed to encode message payload")

// HTTPError is returned when the endpoint answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// NetworkError wraps failures where no complete response was obtained
// (connection refused, DNS, timeout, truncated body).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
