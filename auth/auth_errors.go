package auth

import "github.com/pkg/errors"

// Authentication outcomes. ErrInvalidToken covers decode failures, unknown
// ids and wrong secrets with a single message so callers cannot learn which
// stage rejected the credential.
var (
	ErrMissingCredentials      = errors.New("missing credentials")
	ErrMalformedHeaderSpaces   = errors.New("malformed header: spaces")
	ErrMalformedHeaderEncoding = errors.New("malformed header: encoding")
	ErrInvalidToken            = errors.New("invalid token")
	ErrUserInactive            = errors.New("user inactive")

	// ErrScopesNotConfigured reports a resource that never declared its
	// required scopes. This is a programming error, not an auth failure.
	ErrScopesNotConfigured = errors.New("resource declares no required scopes")
)

// IsAuthFailure reports whether err is a per-request credential rejection,
// as opposed to a configuration fault.
func IsAuthFailure(err error) bool {
	for _, target := range []error{
		ErrMissingCredentials,
		ErrMalformedHeaderSpaces,
		ErrMalformedHeaderEncoding,
		ErrInvalidToken,
		ErrUserInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
