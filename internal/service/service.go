// Package service implements inkwell's session logic: credential checks,
// account creation, token issuance and rotation, and principal resolution.
package service

import (
	"errors"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrNicknameExists     = errors.New("nickname already exists")
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternal           = errors.New("internal error")
)

// PasswordMode controls bcrypt cost for password hashing.
// Use PasswordModeProduction for real deployments and PasswordModeTesting only in tests.
type PasswordMode int

const (
	// PasswordModeProduction uses bcrypt.DefaultCost (10).
	PasswordModeProduction PasswordMode = iota
	// PasswordModeTesting uses bcrypt.MinCost (4).
	// WARNING: This mode will panic if used outside of go test.
	PasswordModeTesting
)

// Cost returns the bcrypt cost for this mode.
// Panics if PasswordModeTesting is used outside of a test binary.
func (m PasswordMode) Cost() int {
	switch m {
	case PasswordModeTesting:
		if !testing.Testing() {
			panic("service: PasswordModeTesting used outside of test environment")
		}
		return bcrypt.MinCost
	default:
		return bcrypt.DefaultCost
	}
}

// Lifetimes fixes how long each token class stays valid after minting.
type Lifetimes struct {
	Access  time.Duration
	Refresh time.Duration
}

// Service coordinates login, signup and refresh. It depends on a UserStore
// for identities and, when refresh rotation is strict, a RotationStore.
type Service struct {
	users         UserStore
	rotation      RotationStore
	tokenIssuer   tokens.Issuer
	tokenVerifier tokens.Verifier
	lifetimes     Lifetimes
	passwordMode  PasswordMode
	dummyHash     []byte
	logger        logging.Logger
}

// New builds a Service. A nil rotation store leaves refresh tokens valid
// until their own expiry, so one refresh token may be redeemed many times.
func New(
	users UserStore,
	rotation RotationStore,
	issuer tokens.Issuer,
	verifier tokens.Verifier,
	lifetimes Lifetimes,
	passwordMode PasswordMode,
	logger logging.Logger,
) *Service {
	// compared against when the email is unknown
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("inkwell-dummy-secret"), passwordMode.Cost())
	if err != nil {
		panic("service: failed to generate dummy hash: " + err.Error())
	}

	return &Service{
		users:         users,
		rotation:      rotation,
		tokenIssuer:   issuer,
		tokenVerifier: verifier,
		lifetimes:     lifetimes,
		passwordMode:  passwordMode,
		dummyHash:     dummyHash,
		logger:        logger,
	}
}

func (s *Service) Lifetimes() Lifetimes {
	return s.lifetimes
}

func (s *Service) StrictRotation() bool {
	return s.rotation != nil
}
