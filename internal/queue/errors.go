package queue

import (
	"errors"
	"strings"
)

// ErrNotFound indicates the requested job does not exist.
var ErrNotFound = errors.New("job not found")

// ErrNotProcessing indicates a completion or failure report arrived for a job
// that is no longer in processing, typically because stale recovery already
// returned it to the queue.
var ErrNotProcessing = errors.New("job is not processing")

// maxErrorLength bounds the stored last_error text so a pathological failure
// message cannot bloat the database.
const maxErrorLength = 2000

func truncateError(message string) string {
	message = strings.TrimSpace(message)
	if len(message) <= maxErrorLength {
		return message
	}
	return message[:maxErrorLength]
}
