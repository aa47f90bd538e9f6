package directory

import "errors"

// Sentinel errors returned by Directory operations. Each maps one-to-one
// to a wire.Result at the transport boundary; no other error type is part
// of the client-facing contract.
var (
	// ErrAuthenticationInvalid is returned when a user is not registered
	// or the supplied auth token does not match the stored one.
	ErrAuthenticationInvalid = errors.New("directory: authentication invalid")
	// ErrRateLimitExceeded is returned when a sync request exceeds the
	// configured contact limit or its bucket has no remaining capacity.
	ErrRateLimitExceeded = errors.New("directory: rate limit exceeded")
	// ErrTooManyUsers is returned by CreateRandomUsers when asked to
	// synthesize more than maxSyntheticUsers identities.
	ErrTooManyUsers = errors.New("directory: too many users requested")
)
