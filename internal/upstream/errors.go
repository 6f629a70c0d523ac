package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status %d", e.URL, e.StatusCode)
}

// StatusOf returns the upstream HTTP status carried by err, or 500 when err
// is a transport failure with no response.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return http.StatusInternalServerError
}
