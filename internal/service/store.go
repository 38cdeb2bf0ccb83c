package service

import (
	"context"
	"time"
)

type User struct {
	ID              int64
	Email           string
	Nickname        string
	ProfileImageURL string
	PasswordHash    []byte
	CreatedAt       time.Time
}

// UserStore handles persistence of user accounts. Lookups of a missing user
// return an error wrapping ErrUserNotFound. InsertUser returns ErrEmailExists
// or ErrNicknameExists when a uniqueness constraint rejects the row.
type UserStore interface {
	InsertUser(ctx context.Context, user *User) (id int64, err error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NicknameExists(ctx context.Context, nickname string) (bool, error)
	DeleteUser(ctx context.Context, id int64) (deleted bool, err error)
}

// RotationStore remembers the id of the newest refresh token per subject.
// It is consulted only when refresh rotation is strict.
type RotationStore interface {
	// RecordRefresh sets the current refresh token id for subject.
	RecordRefresh(ctx context.Context, subject string, tokenID string, expiration time.Time) error
	// RotateRefresh replaces presentedID with nextID, but only if presentedID
	// is still the current id for subject. It reports whether the swap happened.
	RotateRefresh(ctx context.Context, subject string, presentedID string, nextID string, expiration time.Time) (bool, error)
	ForgetRefresh(ctx context.Context, subject string) error
}
