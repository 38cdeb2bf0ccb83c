package tokens

import (
	"context"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Codec mints and verifies tokens for both classes. Its state is fixed at
// construction, so a single Codec may be shared by all request goroutines.
type Codec struct {
	keys   Keys
	issuer string
	now    func() time.Time
	logger logging.Logger
}

type Option func(*Codec)

// WithClock replaces time.Now as the codec's source of the current time.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(
	keys Keys,
	issuer string,
	logger logging.Logger,
	opts ...Option,
) *Codec {
	c := &Codec{
		keys:   keys,
		issuer: issuer,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Mint(
	class Class,
	subject string,
	ttl time.Duration,
) (*Token, error) {
	key, err := c.keys.forClass(class)
	if err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, errEmptySubject
	}

	now := c.now().Truncate(jwt.TimePrecision)
	token := &Token{
		class:      class,
		id:         uuid.NewString(),
		issuer:     c.issuer,
		subject:    subject,
		issuedAt:   now,
		expiration: now.Add(ttl),
	}

	encoded, err := jwt.
		NewWithClaims(jwt.SigningMethodHS256, token.intoClaims()).
		SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s token: %v", class, err)
	}
	token.encoded = encoded

	return token, nil
}

// Verify returns the decoded token if encoded is a well-formed token of the
// given class, signed with that class's key, issued by this codec's issuer,
// and not yet expired. Any other outcome is ErrTokenInvalid.
func (c *Codec) Verify(
	encoded string,
	class Class,
) (*Token, error) {
	token, verr := c.decode(encoded, class)
	if verr != nil {
		c.logger.Warn(
			context.Background(),
			"token verification failed",
			"class", class.String(),
			"cause", verr.Context(),
		)
		return nil, verr
	}
	return token, nil
}

func (c *Codec) decode(
	encoded string,
	class Class,
) (*Token, *validateError) {
	key, err := c.keys.forClass(class)
	if err != nil {
		return nil, &validateError{
			context: fmt.Sprintf("cannot verify: %v", err),
			err:     errTokenInvalid,
		}
	}

	claims := &tokenClaims{}
	_, err = jwt.ParseWithClaims(
		encoded,
		claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, &validateError{
			context: fmt.Sprintf("token rejected: %v", err),
			err:     errTokenInvalid,
		}
	}

	got, ok := parseClass(claims.Class)
	if !ok || got != class {
		return nil, &validateError{
			context: fmt.Sprintf("token class mismatch: got '%s', want '%s'", claims.Class, class),
			err:     errTokenInvalid,
		}
	}

	if claims.Subject == "" {
		return nil, &validateError{
			context: "token claims invalid: empty subject",
			err:     errTokenInvalid,
		}
	}

	token := &Token{}
	token.fromClaims(claims, got, encoded)
	return token, nil
}
