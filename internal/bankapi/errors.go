package bankapi

import "fmt"

// APIError is a non-2xx answer from the banking API, carrying the backend's own
// message payload. Authentication rejections arrive as an APIError from the auth
// endpoints; the portal surfaces the message verbatim and mutates no state.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bank api: %d %s", e.Status, e.Message)
}

// NetworkError indicates the request never produced a backend answer: connection
// failure, malformed response, or a deadline hit. Timeout distinguishes the deadline
// case so callers can message it separately from a hard transport failure.
type NetworkError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("bank api: %s timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("bank api: %s failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
