package oauth

import "errors"

// Sentinel errors classifying every terminal failure in the credential
// broker. Callers match with errors.Is; messages wrapping these always name
// the affected provider.
var (
	// ErrNotConfigured means the requested flow is unsupported for the
	// provider, or a required endpoint is missing from its configuration.
	ErrNotConfigured = errors.New("provider not configured for this flow")

	// ErrNotAuthenticated means no credential is on file for the provider.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrExpired means a credential exists but cannot be refreshed.
	ErrExpired = errors.New("credential expired")

	// ErrCallbackRejected covers state mismatch, missing code, and
	// provider-reported denial on the authorization callback.
	ErrCallbackRejected = errors.New("authorization callback rejected")

	// ErrPortInUse means the local callback listener could not bind.
	ErrPortInUse = errors.New("callback port in use")

	// ErrProviderProtocol means a token or device endpoint returned a
	// non-success status or a body-level error.
	ErrProviderProtocol = errors.New("provider protocol error")

	// ErrTimeout means a poll deadline or idle-flow deadline was exceeded.
	ErrTimeout = errors.New("authorization timed out")
)
