package service

import "errors"

var (
	// ErrNoActiveStep means the acting user holds no open step on the
	// order and therefore cannot approve or reject it.
	ErrNoActiveStep = errors.New("no active approval step for user")

	// ErrDuplicateRework means the chosen recipient already has an open
	// rework step on the order; a second one would fork the trail.
	ErrDuplicateRework = errors.New("recipient already has an open rework step")

	// ErrNoRecipient means a rejection could not determine who to send
	// the order back to.
	ErrNoRecipient = errors.New("cannot determine rejection recipient")
)
