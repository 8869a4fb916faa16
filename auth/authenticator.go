// Package auth verifies bearer credentials presented in Authorization
// headers and authorizes authenticated tokens against scope requirements.
package auth

import (
	"crypto/rand"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/authkit-go/tokenauth/hasher"
	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/users"
)

// DefaultScheme is the Authorization scheme keyword matched when none is
// configured.
const DefaultScheme = "Bearer"

// Authenticator verifies bearer credentials against the token store. It is
// stateless per request and safe for concurrent use; the only mutation on
// the authentication path is the best-effort rehash write.
type Authenticator struct {
	tokens token.Repo
	hasher hasher.Hasher
	scheme string
	logger zerolog.Logger

	// dummyKey is verified against on store misses so a lookup miss costs
	// the same hashing work as a wrong secret.
	dummyKey string
}

// Option modifies an Authenticator during construction.
type Option func(*Authenticator)

// WithScheme overrides the Authorization scheme keyword (default "Bearer").
func WithScheme(scheme string) Option {
	return func(a *Authenticator) {
		a.scheme = scheme
	}
}

// WithLogger sets the logger for rehash failures and audit events.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// NewAuthenticator initializes an Authenticator with its store and hasher
// collaborators, resolved once at startup rather than per call.
func NewAuthenticator(tokens token.Repo, h hasher.Hasher, options ...Option) (*Authenticator, error) {
	if tokens == nil {
		return nil, errors.New("[NewAuthenticator] token repo is required")
	}
	if h == nil {
		return nil, errors.New("[NewAuthenticator] hasher is required")
	}

	a := &Authenticator{
		tokens: tokens,
		hasher: h,
		scheme: DefaultScheme,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(a)
	}

	dummySecret := make([]byte, 16)
	if _, err := rand.Read(dummySecret); err != nil {
		return nil, errors.Wrap(err, "[NewAuthenticator] rand.Read")
	}
	dummyKey, err := h.Hash(dummySecret)
	if err != nil {
		return nil, errors.Wrap(err, "[NewAuthenticator] hashing dummy secret")
	}
	a.dummyKey = dummyKey

	return a, nil
}

// Scheme returns the Authorization scheme keyword this authenticator matches.
func (a *Authenticator) Scheme() string {
	return a.scheme
}

// Authenticate evaluates a raw Authorization header value and returns the
// authenticated principal and token record. A missing header or a different
// scheme returns (nil, nil, nil) so other mechanisms can run; every other
// outcome is one of the sentinel errors in auth_errors.go.
func (a *Authenticator) Authenticate(header string) (*users.User, *token.Token, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], a.scheme) {
		return nil, nil, nil
	}
	if len(parts) == 1 {
		return nil, nil, errors.Wrap(ErrMissingCredentials, "[Authenticate]")
	}
	if len(parts) > 2 {
		return nil, nil, errors.Wrap(ErrMalformedHeaderSpaces, "[Authenticate]")
	}
	credential := parts[1]
	if !utf8.ValidString(credential) {
		return nil, nil, errors.Wrap(ErrMalformedHeaderEncoding, "[Authenticate]")
	}
	return a.authenticateCredential(credential)
}

func (a *Authenticator) authenticateCredential(credential string) (*users.User, *token.Token, error) {
	id, secret, err := token.DecodeBearer(credential)
	if err != nil {
		return nil, nil, errors.Wrap(ErrInvalidToken, "[authenticateCredential] decode")
	}

	tok, err := a.tokens.GetByID(id)
	if err != nil {
		// Burn the same hashing work as a real verification so a lookup
		// miss is not observable through timing.
		a.hasher.Verify(secret, a.dummyKey)
		if !errors.Is(err, token.ErrTokenNotFound) {
			a.logger.Error().Err(err).Msg("token lookup failed")
		}
		return nil, nil, errors.Wrap(ErrInvalidToken, "[authenticateCredential] lookup")
	}

	if !a.hasher.Verify(secret, tok.Key) {
		return nil, nil, errors.Wrap(ErrInvalidToken, "[authenticateCredential] verify")
	}

	if tok.User == nil {
		a.logger.Error().Str("token_id", tok.ID.String()).Msg("token record has no owner attached")
		return nil, nil, errors.Wrap(ErrInvalidToken, "[authenticateCredential] owner")
	}
	if !tok.User.Active {
		a.logger.Warn().
			Str("token_id", tok.ID.String()).
			Str("user_id", tok.User.ID).
			Msg("rejected token of inactive user")
		return nil, nil, errors.Wrap(ErrUserInactive, "[authenticateCredential]")
	}

	a.maybeRehash(tok, secret)

	return tok.User, tok, nil
}

// maybeRehash re-encodes the stored key under current hasher parameters.
// Best effort: a failed write is logged and the request still succeeds,
// since verification has already passed. The rehash never changes id, owner
// or scopes.
func (a *Authenticator) maybeRehash(tok *token.Token, secret []byte) {
	if !a.hasher.NeedsRehash(tok.Key) {
		return
	}
	key, err := a.hasher.Hash(secret)
	if err != nil {
		a.logger.Error().Err(err).Str("token_id", tok.ID.String()).Msg("rehash failed")
		return
	}
	if err := a.tokens.UpdateKey(tok.ID, key); err != nil {
		a.logger.Error().Err(err).Str("token_id", tok.ID.String()).Msg("persisting rehashed key failed")
		return
	}
	tok.Key = key
}
