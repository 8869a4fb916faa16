// Package token holds the bearer-token record, the wire codec for the
// split-secret credential, and the issuer that mints new tokens.
package token

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/authkit-go/tokenauth/users"
)

// MaxNameLength bounds the free-text label on a token record.
const MaxNameLength = 25

// Token is the persisted record of an issued bearer credential. Key holds a
// salted hash of the secret half; the cleartext secret is never persisted or
// logged after issuance. CreatedAt and UpdatedAt are maintained by the store
// layer.
type Token struct {
	ID        uuid.UUID   `json:"id"`
	Key       string      `json:"key"`
	UserID    string      `json:"user_id"`
	User      *users.User `json:"-"` // attached by the store on lookup
	Name      string      `json:"name,omitempty"`
	Scopes    string      `json:"scopes,omitempty"` // comma-joined scope names
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ScopeList splits the comma-joined scopes column. An empty column is an
// empty list, not a list containing the empty string.
func (t *Token) ScopeList() []string {
	if t.Scopes == "" {
		return nil
	}
	return strings.Split(t.Scopes, ",")
}

// HasScope reports whether the token grants the named scope.
func (t *Token) HasScope(scope string) bool {
	for _, s := range t.ScopeList() {
		if s == scope {
			return true
		}
	}
	return false
}

// ValidateScopes checks requested scope names against the configured
// allow-list. An empty allow-list accepts any scope name.
func ValidateScopes(scopes, validScopes []string) error {
	if len(validScopes) == 0 {
		return nil
	}
	for _, scope := range scopes {
		valid := false
		for _, v := range validScopes {
			if scope == v {
				valid = true
				break
			}
		}
		if !valid {
			return errors.Errorf("[ValidateScopes] invalid scope %q, valid choices are: %s", scope, strings.Join(validScopes, ","))
		}
	}
	return nil
}
