package token

import (
	"crypto/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/authkit-go/tokenauth/hasher"
)

// Issuer mints new token records. It performs no storage writes: the caller
// persists the returned record, which keeps issuance pure and testable.
type Issuer struct {
	hasher      hasher.Hasher
	validScopes []string
}

// NewIssuer builds an Issuer. validScopes is the allow-list for requested
// scopes; leave it empty to accept any scope name.
func NewIssuer(h hasher.Hasher, validScopes []string) (*Issuer, error) {
	if h == nil {
		return nil, errors.New("[NewIssuer] hasher is required")
	}
	return &Issuer{hasher: h, validScopes: validScopes}, nil
}

// Issue generates a fresh credential for userID: a random 128-bit id, a
// random 128-bit secret, and a hashed key for storage. It returns the record
// to persist and the encoded bearer string. The bearer cannot be
// reconstructed from the record, so the caller must surface it to the
// operator immediately and must never log or store it elsewhere.
func (i *Issuer) Issue(userID, name string, scopes []string) (*Token, string, error) {
	if userID == "" {
		return nil, "", errors.New("[Issue] userID is required")
	}
	if len(name) > MaxNameLength {
		return nil, "", errors.Errorf("[Issue] name exceeds %d characters", MaxNameLength)
	}
	if err := ValidateScopes(scopes, i.validScopes); err != nil {
		return nil, "", errors.Wrap(err, "[Issue] scope validation")
	}

	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, "", errors.Wrap(err, "[Issue] rand.Read")
	}

	key, err := i.hasher.Hash(secret)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Issue] hashing secret")
	}

	id := uuid.New()
	tok := &Token{
		ID:     id,
		Key:    key,
		UserID: userID,
		Name:   name,
		Scopes: strings.Join(scopes, ","),
	}
	return tok, EncodeBearer(id, secret), nil
}
