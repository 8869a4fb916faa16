// Package boltrepo is a bbolt-backed reference implementation of the token
// and user store boundaries. Token rows are JSON-encoded under the raw id
// bytes; user rows under the user id string.
package boltrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/users"
)

var (
	tokensBucket = []byte("tokens")
	usersBucket  = []byte("users")
)

var (
	_ token.Repo = (*Store)(nil)
	_ users.Repo = (*Store)(nil)
)

type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "[boltrepo.Open] bolt.Open")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{tokensBucket, usersBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[boltrepo.Open] creating buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Empty reports whether no tokens have been created yet.
func (s *Store) Empty() (bool, error) {
	var empty bool
	err := s.db.View(func(tx *bolt.Tx) error {
		k, _ := tx.Bucket(tokensBucket).Cursor().First()
		empty = k == nil
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "[boltrepo.Empty] view")
	}
	return empty, nil
}

func (s *Store) Create(t *token.Token) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		if b.Get(t.ID[:]) != nil {
			return errors.Errorf("[boltrepo.Create] token id %s already exists", t.ID)
		}
		now := time.Now().UTC()
		cp := *t
		cp.User = nil
		cp.CreatedAt = now
		cp.UpdatedAt = now
		row, err := json.Marshal(&cp)
		if err != nil {
			return errors.Wrap(err, "[boltrepo.Create] marshal")
		}
		return b.Put(t.ID[:], row)
	})
}

func (s *Store) GetByID(id uuid.UUID) (*token.Token, error) {
	var tok token.Token
	err := s.db.View(func(tx *bolt.Tx) error {
		row := tx.Bucket(tokensBucket).Get(id[:])
		if row == nil {
			return token.ErrTokenNotFound
		}
		if err := json.Unmarshal(row, &tok); err != nil {
			return errors.Wrap(err, "[boltrepo.GetByID] unmarshal token")
		}
		if userRow := tx.Bucket(usersBucket).Get([]byte(tok.UserID)); userRow != nil {
			var u users.User
			if err := json.Unmarshal(userRow, &u); err != nil {
				return errors.Wrap(err, "[boltrepo.GetByID] unmarshal user")
			}
			tok.User = &u
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *Store) UpdateKey(id uuid.UUID, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		row := b.Get(id[:])
		if row == nil {
			return token.ErrTokenNotFound
		}
		var tok token.Token
		if err := json.Unmarshal(row, &tok); err != nil {
			return errors.Wrap(err, "[boltrepo.UpdateKey] unmarshal")
		}
		tok.Key = key
		tok.UpdatedAt = time.Now().UTC()
		updated, err := json.Marshal(&tok)
		if err != nil {
			return errors.Wrap(err, "[boltrepo.UpdateKey] marshal")
		}
		return b.Put(id[:], updated)
	})
}

func (s *Store) Upsert(u *users.User) error {
	if u.ID == "" {
		return errors.New("[boltrepo.Upsert] user id is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		row, err := json.Marshal(u)
		if err != nil {
			return errors.Wrap(err, "[boltrepo.Upsert] marshal")
		}
		return tx.Bucket(usersBucket).Put([]byte(u.ID), row)
	})
}

func (s *Store) Get(id string) (*users.User, error) {
	var u users.User
	err := s.db.View(func(tx *bolt.Tx) error {
		row := tx.Bucket(usersBucket).Get([]byte(id))
		if row == nil {
			return errors.Errorf("[boltrepo.Get] user %s not found", id)
		}
		return json.Unmarshal(row, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}
