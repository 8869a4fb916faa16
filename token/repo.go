package token

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrTokenNotFound is returned by a Repo when no record matches the id.
var ErrTokenNotFound = errors.New("token not found")

// Repo is the storage boundary for token records. Implementations attach the
// owning user to records returned from GetByID, own the uniqueness
// constraint on ID, and maintain CreatedAt/UpdatedAt. UpdateKey replaces
// only the hashed key; concurrent writers for the same token may race
// last-write-wins since every writer holds a valid hash of the same secret.
type Repo interface {
	Create(token *Token) error
	GetByID(id uuid.UUID) (*Token, error)
	UpdateKey(id uuid.UUID, key string) error
}
