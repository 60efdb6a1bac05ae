package callbacks

import "errors"

// UnknownEventError is returned when an event name has no matching hook.
// It signals misuse by the caller; no callback has been invoked.
type UnknownEventError struct{ Name EventName }

func (e *UnknownEventError) Error() string { return "unknown event: " + string(e.Name) }

// IsUnknownEvent reports whether err is (or wraps) an UnknownEventError.
func IsUnknownEvent(err error) bool {
	var ue *UnknownEventError
	return errors.As(err, &ue)
}
