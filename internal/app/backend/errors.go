package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response from the commerce backend. Views still
// surface one generic message each; the typed status lets the session layer
// distinguish a rejected token from a backend outage.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Code)
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return statusCode(err) == http.StatusUnauthorized
}

func IsForbidden(err error) bool {
	return statusCode(err) == http.StatusForbidden
}

func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

// IsAuthRejection reports whether the backend rejected the caller's
// credentials outright, as opposed to failing for unrelated reasons.
func IsAuthRejection(err error) bool {
	return IsUnauthorized(err) || IsForbidden(err)
}
