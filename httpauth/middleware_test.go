package httpauth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/authkit-go/tokenauth/auth"
	"github.com/authkit-go/tokenauth/hasher"
	"github.com/authkit-go/tokenauth/httpauth"
	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/token/repofake"
	"github.com/authkit-go/tokenauth/users"
)

const testUserID = "user-1"

type testFixture struct {
	repo       *repofake.FakeTokenRepo
	issuer     *token.Issuer
	middleware *httpauth.Middleware
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	repo := repofake.NewFakeTokenRepo()
	repo.AddUser(&users.User{ID: testUserID, Name: "jane", Active: true})

	h := hasher.NewPBKDF2Hasher(10)
	issuer, err := token.NewIssuer(h, nil)
	require.NoError(t, err)

	authenticator, err := auth.NewAuthenticator(repo, h)
	require.NoError(t, err)
	middleware, err := httpauth.New(authenticator, zerolog.Nop())
	require.NoError(t, err)

	return &testFixture{repo: repo, issuer: issuer, middleware: middleware}
}

func (f *testFixture) issueToken(t *testing.T, scopes []string) string {
	t.Helper()
	tok, bearer, err := f.issuer.Issue(testUserID, "test", scopes)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(tok))
	return bearer
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestRequireAuth(t *testing.T) {
	f := setupTestFixture(t)
	handler := f.middleware.Authenticate(f.middleware.RequireAuth(okHandler()))

	// anonymous request
	rec := doRequest(handler, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	// valid credential
	bearer := f.issueToken(t, nil)
	rec = doRequest(handler, "Bearer "+bearer)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthFailureResponses(t *testing.T) {
	f := setupTestFixture(t)
	handler := f.middleware.Authenticate(f.middleware.RequireAuth(okHandler()))

	tests := []struct {
		name       string
		header     string
		wantDetail string
	}{
		{"no credentials", "Bearer", "missing credentials"},
		{"spaces", "Bearer abc def", "malformed header: spaces"},
		{"bad encoding", "Bearer " + string([]byte{0xff, 0xfe}), "malformed header: encoding"},
		{"undecodable token", "Bearer ++++", "invalid token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(handler, tc.header)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			require.Equal(t, tc.wantDetail, detail(t, rec))
		})
	}
}

func TestInactiveUserIndistinguishableFromInvalidToken(t *testing.T) {
	f := setupTestFixture(t)
	handler := f.middleware.Authenticate(f.middleware.RequireAuth(okHandler()))

	bearer := f.issueToken(t, nil)
	f.repo.AddUser(&users.User{ID: testUserID, Name: "jane", Active: false})

	invalid := doRequest(handler, "Bearer ++++")
	inactive := doRequest(handler, "Bearer "+bearer)

	require.Equal(t, http.StatusUnauthorized, inactive.Code)
	require.Equal(t, invalid.Code, inactive.Code)
	require.Equal(t, invalid.Body.String(), inactive.Body.String())
}

func TestRequireScopes(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.issueToken(t, []string{"admin"})
	unscoped := f.issueToken(t, nil)

	handler := f.middleware.Authenticate(
		f.middleware.RequireScopes([]string{"admin"}, okHandler()),
	)

	rec := doRequest(handler, "Bearer "+admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(handler, "Bearer "+unscoped)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "insufficient scope", detail(t, rec))

	// anonymous requests never reach the scope check
	rec = doRequest(handler, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireScopesEmptyListAuthorizes(t *testing.T) {
	f := setupTestFixture(t)
	bearer := f.issueToken(t, nil)

	handler := f.middleware.Authenticate(
		f.middleware.RequireScopes([]string{}, okHandler()),
	)
	rec := doRequest(handler, "Bearer "+bearer)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireScopesNilListIsServerFault(t *testing.T) {
	f := setupTestFixture(t)
	bearer := f.issueToken(t, nil)

	handler := f.middleware.Authenticate(
		f.middleware.RequireScopes(nil, okHandler()),
	)
	rec := doRequest(handler, "Bearer "+bearer)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContextCarriesPrincipalAndToken(t *testing.T) {
	f := setupTestFixture(t)
	bearer := f.issueToken(t, []string{"read"})

	var gotUser *users.User
	var gotToken *token.Token
	handler := f.middleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpauth.UserFrom(r.Context())
		gotToken = httpauth.TokenFrom(r.Context())
	}))

	doRequest(handler, "Bearer "+bearer)
	require.NotNil(t, gotUser)
	require.Equal(t, testUserID, gotUser.ID)
	require.NotNil(t, gotToken)
	require.Equal(t, []string{"read"}, gotToken.ScopeList())
}
