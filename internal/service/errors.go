package service

import "errors"

var (
	// ErrInvalidDataProvided is returned when a request is structurally
	// valid but semantically unusable (empty context id, no answers).
	ErrInvalidDataProvided = errors.New("invalid data provided")

	// ErrInvalidCredentials is the single authentication failure. Unknown
	// user and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrContextNotFound is returned when the submitted context id does
	// not resolve for the tenant.
	ErrContextNotFound = errors.New("context was not found")

	// ErrTooManyReceivers is returned when the selected recipient list
	// exceeds the context's ceiling.
	ErrTooManyReceivers = errors.New("too many receivers selected")

	// ErrNoRecipients is returned when recipient eligibility filtering
	// leaves nobody to deliver to. The submission is not stored.
	ErrNoRecipients = errors.New("submission has no eligible recipients")

	// ErrTipNotFound is returned when a recipient requests a tip they were
	// never granted access to.
	ErrTipNotFound = errors.New("tip was not found")
)
