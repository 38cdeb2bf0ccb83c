package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the claims section of an inkwell token. It sits between the
// JSON in the token and the [Token] Go struct.
type tokenClaims struct {
	jwt.RegisteredClaims
	Class string `json:"typ"`
}

type Token struct {
	class      Class
	id         string
	issuer     string
	subject    string
	issuedAt   time.Time
	expiration time.Time
	encoded    string
}

func (t *Token) Class() Class          { return t.class }
func (t *Token) ID() string            { return t.id }
func (t *Token) Issuer() string        { return t.issuer }
func (t *Token) Subject() string       { return t.subject }
func (t *Token) IssuedAt() time.Time   { return t.issuedAt }
func (t *Token) Expiration() time.Time { return t.expiration }
func (t *Token) Encoded() string       { return t.encoded }

func (t *Token) intoClaims() *tokenClaims {
	return &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        t.id,
			Issuer:    t.issuer,
			Subject:   t.subject,
			IssuedAt:  jwt.NewNumericDate(t.issuedAt),
			ExpiresAt: jwt.NewNumericDate(t.expiration),
		},
		Class: t.class.String(),
	}
}

func (t *Token) fromClaims(claims *tokenClaims, class Class, encoded string) {
	t.class = class
	t.id = claims.ID
	t.issuer = claims.Issuer
	t.subject = claims.Subject
	if claims.IssuedAt != nil {
		t.issuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		t.expiration = claims.ExpiresAt.Time
	}
	t.encoded = encoded
}
