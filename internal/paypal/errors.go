package paypal

import "errors"

var (
	// ErrConfiguration means required provider credentials or URLs are not
	// configured. Fatal, surfaced to the operator at startup.
	ErrConfiguration = errors.New("paypal configuration is incomplete")

	// ErrProviderUnavailable covers transport-level failures and non-2xx
	// responses from the token endpoint. Retryable.
	ErrProviderUnavailable = errors.New("paypal unavailable")

	// ErrMalformedResponse means the provider answered without a usable
	// payload.
	ErrMalformedResponse = errors.New("malformed paypal response")

	// ErrTransport is a connection-level failure of an API request. The
	// executor reports it immediately, without retrying.
	ErrTransport = errors.New("paypal transport error")
)
