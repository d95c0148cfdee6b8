package ttp

import (
	"fmt"

	"github.com/jpalmerr/slotwatch/internal/model"
)

// maxErrorBodySize caps how much of a response body is quoted in errors.
const maxErrorBodySize = 512

// RemoteServiceError reports a non-200 response from the scheduler API.
type RemoteServiceError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("non-200 code returned (%d) from %s: %s", e.StatusCode, e.URL, truncate(e.Body))
}

// MalformedTimeslotError reports a startTimestamp that is not in
// "YYYY-MM-DDTHH:MM" form.
type MalformedTimeslotError struct {
	LocationID model.LocationID
	Value      string
	Err        error
}

func (e *MalformedTimeslotError) Error() string {
	return fmt.Sprintf("location %d: malformed startTimestamp %q: %v", e.LocationID, e.Value, e.Err)
}

func (e *MalformedTimeslotError) Unwrap() error {
	return e.Err
}

func truncate(b []byte) string {
	if len(b) <= maxErrorBodySize {
		return string(b)
	}
	return string(b[:maxErrorBodySize]) + "..."
}
