// Package config holds the immutable process configuration, parsed from the
// environment once at startup.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Settings configures the authenticator, issuer and demo server. TokenScopes
// is the scope allow-list checked at issuance; leave it unset to accept any
// scope name.
type Settings struct {
	Scheme         string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	TokenScopes    []string `env:"AUTH_TOKEN_SCOPES" envSeparator:","`
	HashIterations int      `env:"AUTH_HASH_ITERATIONS" envDefault:"1000"`
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":8080"`
	DataPath       string   `env:"DATA_PATH" envDefault:"./data/tokens.db"`
	AppName        string   `env:"APP_NAME" envDefault:"tokenauth"`
}

func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, errors.Wrap(err, "[config.Load] env.Parse")
	}
	return s, nil
}
