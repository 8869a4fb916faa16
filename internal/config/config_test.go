package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authkit-go/tokenauth/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "Bearer", settings.Scheme)
	require.Empty(t, settings.TokenScopes)
	require.Equal(t, 1000, settings.HashIterations)
	require.Equal(t, ":8080", settings.ListenAddr)
	require.Equal(t, "./data/tokens.db", settings.DataPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AUTH_SCHEME", "Token")
	t.Setenv("AUTH_TOKEN_SCOPES", "read,write,admin")
	t.Setenv("AUTH_HASH_ITERATIONS", "5000")

	settings, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "Token", settings.Scheme)
	require.Equal(t, []string{"read", "write", "admin"}, settings.TokenScopes)
	require.Equal(t, 5000, settings.HashIterations)
}
