package odata

import "fmt"

// Error is returned for any query option the layer refuses to translate.
type Error struct {
	Option string
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Option, e.Msg)
}

func errorf(option, format string, args ...any) *Error {
	return &Error{Option: option, Msg: fmt.Sprintf(format, args...)}
}
