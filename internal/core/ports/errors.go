package ports

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the access token was rejected. Matched via
// errors.Is against StatusError.
var ErrUnauthorized = errors.New("unauthorized")

// StatusError carries a non-success HTTP status after retries were
// exhausted or skipped.
type StatusError struct {
	Code     int
	Endpoint string
	Body     string
}

func (e StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d from %s", e.Code, e.Endpoint)
	}
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.Endpoint, e.Body)
}

func (e StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.Code == 401
}
