package auth

import (
	"github.com/pkg/errors"

	"github.com/authkit-go/tokenauth/token"
)

// Authorize reports whether tok grants every scope in required. An empty
// required set authorizes any token. A nil required set means the resource
// never declared its requirements and is rejected as a configuration error
// rather than a per-request denial.
func Authorize(tok *token.Token, required []string) (bool, error) {
	if required == nil {
		return false, errors.Wrap(ErrScopesNotConfigured, "[Authorize]")
	}
	if len(required) == 0 {
		return true, nil
	}
	if tok == nil {
		return false, nil
	}
	for _, scope := range required {
		if !tok.HasScope(scope) {
			return false, nil
		}
	}
	return true, nil
}
