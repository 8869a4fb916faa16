// Package httpauth adapts the authenticator to net/http: it feeds the raw
// Authorization header to the core and maps outcomes to status codes
// (pass-through or 401 for authentication, 403 for scope denial, 500 for
// resource misconfiguration).
package httpauth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/authkit-go/tokenauth/auth"
	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/users"
)

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

type Middleware struct {
	authenticator *auth.Authenticator
	logger        zerolog.Logger
}

func New(authenticator *auth.Authenticator, logger zerolog.Logger) (*Middleware, error) {
	if authenticator == nil {
		return nil, errors.New("[httpauth.New] authenticator is required")
	}
	return &Middleware{authenticator: authenticator, logger: logger}, nil
}

// Authenticate evaluates the Authorization header once per request and
// stores the principal and token record in the request context. An auth
// failure answers 401; a header that does not target this scheme passes
// through anonymously, so pair with RequireAuth on protected routes.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, tok, err := m.authenticator.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			m.reject(w, err)
			return
		}
		if user != nil {
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, tokenKey, tok)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects anonymous requests.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFrom(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", m.authenticator.Scheme())
			writeJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireScopes rejects requests whose token does not grant every listed
// scope. Pass an explicit (possibly empty) scope list; a nil list is a
// misconfigured resource and answers 500.
func (m *Middleware) RequireScopes(required []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := TokenFrom(r.Context())
		if UserFrom(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", m.authenticator.Scheme())
			writeJSON(w, http.StatusUnauthorized, "authentication required")
			return
		}
		ok, err := auth.Authorize(tok, required)
		if err != nil {
			m.logger.Error().Err(err).Str("path", r.URL.Path).Msg("scope requirement misconfigured")
			writeJSON(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !ok {
			writeJSON(w, http.StatusForbidden, "insufficient scope")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) reject(w http.ResponseWriter, err error) {
	if errors.Is(err, auth.ErrUserInactive) {
		// Distinguished in logs only; the response below is identical to an
		// invalid token so account state does not leak to callers.
		m.logger.Warn().Msg("inactive user presented a valid credential")
	}
	w.Header().Set("WWW-Authenticate", m.authenticator.Scheme())
	writeJSON(w, http.StatusUnauthorized, externalMessage(err))
}

// externalMessage maps internal outcomes to what unauthenticated callers may
// see.
func externalMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return auth.ErrMissingCredentials.Error()
	case errors.Is(err, auth.ErrMalformedHeaderSpaces):
		return auth.ErrMalformedHeaderSpaces.Error()
	case errors.Is(err, auth.ErrMalformedHeaderEncoding):
		return auth.ErrMalformedHeaderEncoding.Error()
	default:
		return auth.ErrInvalidToken.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// UserFrom returns the authenticated principal, or nil.
func UserFrom(ctx context.Context) *users.User {
	u, _ := ctx.Value(userKey).(*users.User)
	return u
}

// TokenFrom returns the authenticated token record, or nil.
func TokenFrom(ctx context.Context) *token.Token {
	t, _ := ctx.Value(tokenKey).(*token.Token)
	return t
}
