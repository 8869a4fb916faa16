package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authkit-go/tokenauth/token"
)

func TestScopeList(t *testing.T) {
	tok := &token.Token{Scopes: "read,write"}
	require.Equal(t, []string{"read", "write"}, tok.ScopeList())

	empty := &token.Token{}
	require.Empty(t, empty.ScopeList())
}

func TestHasScope(t *testing.T) {
	tok := &token.Token{Scopes: "read,write"}
	require.True(t, tok.HasScope("read"))
	require.True(t, tok.HasScope("write"))
	require.False(t, tok.HasScope("admin"))
	require.False(t, tok.HasScope(""))

	empty := &token.Token{}
	require.False(t, empty.HasScope("read"))
}

func TestValidateScopes(t *testing.T) {
	allowList := []string{"read", "write", "admin"}

	require.NoError(t, token.ValidateScopes([]string{"read", "admin"}, allowList))
	require.NoError(t, token.ValidateScopes(nil, allowList))
	require.Error(t, token.ValidateScopes([]string{"delete"}, allowList))
	require.Error(t, token.ValidateScopes([]string{"read", "delete"}, allowList))

	// empty allow-list accepts anything
	require.NoError(t, token.ValidateScopes([]string{"anything"}, nil))
}
