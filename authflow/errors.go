package authflow

import "errors"

var (
	// ErrClosed is returned when an action arrives while no interaction
	// is open.
	ErrClosed = errors.New("auth flow closed")

	// ErrBusy rejects a submission while another is outstanding. The
	// controller's state is untouched.
	ErrBusy = errors.New("submission already in flight")

	// ErrValidation signals local validation failure; details are in
	// the controller's error map. No network call was made.
	ErrValidation = errors.New("validation failed")

	// ErrCooldown rejects a resend while its countdown is running.
	ErrCooldown = errors.New("resend cooling down")

	// ErrUnknownField is returned by SetField for a field the active
	// view does not have.
	ErrUnknownField = errors.New("unknown field for view")
)
