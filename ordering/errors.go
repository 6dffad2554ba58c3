package ordering

import "errors"

var (
	ErrInvalidPrice = errors.New("invalid price")
	ErrNotAdmin     = errors.New("publishing requires the admin role")
	ErrNotSignedIn  = errors.New("not signed in")
	ErrUnknownItem  = errors.New("item is not on the current menu")

	// ErrStaleMenu means a newer LoadMenu call started before this one
	// finished; its result was discarded.
	ErrStaleMenu = errors.New("menu response superseded")
)

// ValidationError reports a form field rejected before any request was sent.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }
