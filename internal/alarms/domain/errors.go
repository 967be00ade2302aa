package alarms

import "fmt"

// DecodeError reports a malformed alarm literal. Callers treat the snapshot as empty.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("alarms: decode at offset %d: %s", e.Offset, e.Reason)
}
