package tokens

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

type validateError struct {
	context string
	err     error
}

func (t *validateError) Context() string { return t.context }
func (t *validateError) Error() string   { return fmt.Sprintf("%v", t.err) }
func (t *validateError) Unwrap() error   { return t.err }

var (
	errTokenInvalid = errors.New("token invalid")
	errUnknownClass = errors.New("unknown token class")
	errEmptySubject = errors.New("empty subject")
	errKeyTooShort  = errors.New("key shorter than 32 bytes")
	errKeysShared   = errors.New("access and refresh keys must differ")
)

func ErrTokenInvalid() error { return errTokenInvalid }
func ErrUnknownClass() error { return errUnknownClass }
func ErrEmptySubject() error { return errEmptySubject }
func ErrKeyTooShort() error  { return errKeyTooShort }
func ErrKeysShared() error   { return errKeysShared }

const MinKeyLength = 32

// Class distinguishes access tokens from refresh tokens.
type Class int

const (
	ClassAccess Class = iota + 1
	ClassRefresh
)

func (c Class) String() string {
	switch c {
	case ClassAccess:
		return "access"
	case ClassRefresh:
		return "refresh"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

func parseClass(s string) (Class, bool) {
	switch s {
	case "access":
		return ClassAccess, true
	case "refresh":
		return ClassRefresh, true
	default:
		return 0, false
	}
}

// Keys holds one HMAC key per token class. The zero value is unusable;
// build it with NewKeys. Keys copies its input and never exposes it again.
type Keys struct {
	access  []byte
	refresh []byte
}

func NewKeys(
	access []byte,
	refresh []byte,
) (
	Keys,
	error,
) {
	if len(access) < MinKeyLength || len(refresh) < MinKeyLength {
		return Keys{}, errKeyTooShort
	}
	if bytes.Equal(access, refresh) {
		return Keys{}, errKeysShared
	}
	return Keys{
		access:  bytes.Clone(access),
		refresh: bytes.Clone(refresh),
	}, nil
}

func (k Keys) forClass(class Class) ([]byte, error) {
	switch class {
	case ClassAccess:
		return k.access, nil
	case ClassRefresh:
		return k.refresh, nil
	default:
		return nil, errUnknownClass
	}
}

type Issuer interface {
	Mint(class Class, subject string, ttl time.Duration) (*Token, error)
}

type Verifier interface {
	Verify(encoded string, class Class) (*Token, error)
}
