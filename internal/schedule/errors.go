package schedule

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrAnonymous        = errors.New("no signed in user")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotClaimed       = errors.New("event has no assigned volunteer")
	ErrAlreadyClaimed   = errors.New("event already has a volunteer")
	ErrUnknownEvent     = errors.New("event is not on the board")
	ErrBoardClosed      = errors.New("board closed")
)

// ValidationError lists the form fields that failed the required checks,
// keyed by form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid event form: " + strings.Join(names, ", ")
}
