package payment

import "errors"

var (
	// ErrInvalidState is a precondition violation: the job or payment is not
	// in a state that allows the requested operation. Nothing is mutated.
	ErrInvalidState = errors.New("invalid state")

	// ErrPayeeNotConfigured means the contractor has no usable settlement
	// identifier on file.
	ErrPayeeNotConfigured = errors.New("payee not configured")

	// ErrMissingTransaction means a refund was requested for a payment that
	// never recorded a provider transaction id.
	ErrMissingTransaction = errors.New("payment has no transaction id")

	// ErrCredentialUnavailable means no provider credential could be
	// obtained. Retryable.
	ErrCredentialUnavailable = errors.New("provider credential unavailable")

	// ErrProvider means the provider returned unusable data.
	ErrProvider = errors.New("provider error")
)
