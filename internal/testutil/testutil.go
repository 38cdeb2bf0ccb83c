// Package testutil provides test environment setup and utilities for internal package tests.
package testutil

import (
	"net/http"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/api"
	"git.sr.ht/~jakintosh/inkwell/internal/database"
	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/routes"
	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

const (
	TestIssuer          = "test.inkwell.local"
	TestPassword        = "Passw0rd!"
	TestAccessLifetime  = 30 * time.Minute
	TestRefreshLifetime = 14 * 24 * time.Hour
)

var (
	testAccessKey  = []byte("test-access-key-0123456789abcdef0123")
	testRefreshKey = []byte("test-refresh-key-0123456789abcdef012")
)

// TestEnv provides all dependencies needed for testing
type TestEnv struct {
	DB      *database.SQLiteStore
	Service *service.Service
	Codec   *tokens.Codec
	Routes  *routes.Table
	Router  http.Handler
}

type envConfig struct {
	strict bool
	now    func() time.Time
}

type EnvOption func(*envConfig)

// WithStrictRotation makes every refresh token redeemable only once.
func WithStrictRotation() EnvOption {
	return func(c *envConfig) { c.strict = true }
}

// WithClock fixes the token codec's clock.
func WithClock(now func() time.Time) EnvOption {
	return func(c *envConfig) { c.now = now }
}

// SetupTestEnv creates an isolated test environment with in-memory SQLite
func SetupTestEnv(
	t *testing.T,
	opts ...EnvOption,
) *TestEnv {
	t.Helper()

	cfg := envConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// create in-memory SQLite database
	db, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	keys, err := tokens.NewKeys(testAccessKey, testRefreshKey)
	if err != nil {
		t.Fatalf("failed to build test keys: %v", err)
	}

	var codecOpts []tokens.Option
	if cfg.now != nil {
		codecOpts = append(codecOpts, tokens.WithClock(cfg.now))
	}
	codec := tokens.NewCodec(keys, TestIssuer, logging.Discard(), codecOpts...)

	var rotation service.RotationStore
	if cfg.strict {
		rotation = db.RotationStore()
	}

	svc := service.New(
		db.UserStore(),
		rotation,
		codec,
		codec,
		service.Lifetimes{Access: TestAccessLifetime, Refresh: TestRefreshLifetime},
		service.PasswordModeTesting,
		logging.Discard(),
	)

	table, err := routes.NewTable(routes.DefaultRules(), logging.Discard())
	if err != nil {
		t.Fatalf("failed to build route table: %v", err)
	}

	return &TestEnv{
		DB:      db,
		Service: svc,
		Codec:   codec,
		Routes:  table,
	}
}

// SetupTestEnvWithRouter creates TestEnv and configures the API router
func SetupTestEnvWithRouter(
	t *testing.T,
	opts ...EnvOption,
) *TestEnv {
	t.Helper()

	env := SetupTestEnv(t, opts...)
	a := api.New(env.Service, env.Codec, env.Routes, true, logging.Discard())
	env.Router = a.Router()
	return env
}

// RegisterTestUser signs up a user with TestPassword and returns its session
func (env *TestEnv) RegisterTestUser(
	t *testing.T,
	email string,
	nickname string,
) *service.Session {
	t.Helper()
	session, err := env.Service.Signup(t.Context(), service.SignupRequest{
		Email:    email,
		Password: TestPassword,
		Nickname: nickname,
	})
	if err != nil {
		t.Fatalf("failed to register test user: %v", err)
	}
	return session
}

// IssueTestAccessToken creates an access token for testing
func (env *TestEnv) IssueTestAccessToken(
	t *testing.T,
	subject string,
) *tokens.Token {
	t.Helper()
	token, err := env.Codec.Mint(tokens.ClassAccess, subject, TestAccessLifetime)
	if err != nil {
		t.Fatalf("failed to issue test access token: %v", err)
	}
	return token
}

// IssueTestRefreshToken creates a refresh token for testing
func (env *TestEnv) IssueTestRefreshToken(
	t *testing.T,
	subject string,
) *tokens.Token {
	t.Helper()
	token, err := env.Codec.Mint(tokens.ClassRefresh, subject, TestRefreshLifetime)
	if err != nil {
		t.Fatalf("failed to issue test refresh token: %v", err)
	}
	return token
}
