package event

import "errors"

var ErrEventNotFound = errors.New("event not found")

var requiredMessages = map[string]string{
	"id":       "Event ID is required",
	"title":    "Event title is required",
	"date":     "Start date is required",
	"location": "Location is required",
	"link":     "Event link is required",
	"time":     "Time is required",
}

// ValidationError names the first required field that was left empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	if msg, ok := requiredMessages[e.Field]; ok {
		return msg
	}
	return e.Field + " is required"
}
