package repofake

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/users"
)

var _ token.Repo = (*FakeTokenRepo)(nil)

// FakeTokenRepo is an in-memory token store for tests and examples.
// GetErr and UpdateKeyErr, when set, force the corresponding call to fail.
type FakeTokenRepo struct {
	lock   sync.RWMutex
	tokens map[uuid.UUID]*token.Token
	users  map[string]*users.User

	GetErr       error
	UpdateKeyErr error
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		tokens: make(map[uuid.UUID]*token.Token),
		users:  make(map[string]*users.User),
	}
}

// AddUser registers an owner so GetByID can attach it to its tokens.
func (r *FakeTokenRepo) AddUser(u *users.User) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.users[u.ID] = u
}

func (r *FakeTokenRepo) Create(t *token.Token) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.tokens[t.ID]; ok {
		return errors.Errorf("duplicate token id %s", t.ID)
	}
	now := time.Now()
	cp := *t
	cp.User = nil
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.tokens[t.ID] = &cp
	return nil
}

func (r *FakeTokenRepo) GetByID(id uuid.UUID) (*token.Token, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.GetErr != nil {
		return nil, r.GetErr
	}
	t, ok := r.tokens[id]
	if !ok {
		return nil, token.ErrTokenNotFound
	}
	cp := *t
	cp.User = r.users[t.UserID]
	return &cp, nil
}

func (r *FakeTokenRepo) UpdateKey(id uuid.UUID, key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.UpdateKeyErr != nil {
		return r.UpdateKeyErr
	}
	t, ok := r.tokens[id]
	if !ok {
		return token.ErrTokenNotFound
	}
	t.Key = key
	t.UpdatedAt = time.Now()
	return nil
}
