package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/authkit-go/tokenauth/auth"
	"github.com/authkit-go/tokenauth/hasher"
	"github.com/authkit-go/tokenauth/httpauth"
	"github.com/authkit-go/tokenauth/internal/config"
	"github.com/authkit-go/tokenauth/token"
	"github.com/authkit-go/tokenauth/token/boltrepo"
	"github.com/authkit-go/tokenauth/users"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
	logger.Info().Msg("server stopped")
}

func run(logger zerolog.Logger) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	displayAppName(settings.AppName)

	if err := os.MkdirAll(filepath.Dir(settings.DataPath), 0o755); err != nil {
		return fmt.Errorf("creating data folder: %w", err)
	}
	store, err := boltrepo.Open(settings.DataPath)
	if err != nil {
		return err
	}
	defer store.Close()

	h := hasher.NewPBKDF2Hasher(settings.HashIterations)

	issuer, err := token.NewIssuer(h, settings.TokenScopes)
	if err != nil {
		return err
	}
	if err := bootstrapAdminToken(store, issuer, logger); err != nil {
		return err
	}

	authenticator, err := auth.NewAuthenticator(store, h,
		auth.WithScheme(settings.Scheme),
		auth.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	middleware, err := httpauth.New(authenticator, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/api/me", middleware.RequireAuth(http.HandlerFunc(meHandler)))
	mux.Handle("/api/admin", middleware.RequireScopes([]string{"admin"}, http.HandlerFunc(adminHandler)))

	server := &http.Server{Addr: settings.ListenAddr, Handler: middleware.Authenticate(mux)}
	go func() {
		logger.Info().Str("addr", settings.ListenAddr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server.ListenAndServe")
		}
	}()

	waitForStopSignal()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// bootstrapAdminToken issues a first admin token on an empty store and
// prints the encoded bearer. The bearer is not recoverable afterwards, so
// this is the operator's only chance to record it.
func bootstrapAdminToken(store *boltrepo.Store, issuer *token.Issuer, logger zerolog.Logger) error {
	empty, err := store.Empty()
	if err != nil || !empty {
		return err
	}

	admin := &users.User{ID: uuid.New().String(), Name: "admin", Active: true}
	if err := store.Upsert(admin); err != nil {
		return err
	}
	tok, bearer, err := issuer.Issue(admin.ID, "bootstrap-admin", []string{"admin"})
	if err != nil {
		return err
	}
	if err := store.Create(tok); err != nil {
		return err
	}

	logger.Info().Str("token_id", tok.ID.String()).Msg("bootstrapped admin token")
	fmt.Printf("New bearer token is %q. This can only be viewed once!\n", bearer)
	return nil
}

func meHandler(w http.ResponseWriter, r *http.Request) {
	user := httpauth.UserFrom(r.Context())
	tok := httpauth.TokenFrom(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     user.ID,
		"name":   user.Name,
		"scopes": tok.ScopeList(),
	})
}

func adminHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func displayAppName(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
