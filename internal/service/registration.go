package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Email           string
	Password        string
	Nickname        string
	ProfileImageURL string
}

// Signup creates an account and opens a session for it.
func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (
	*Session,
	error,
) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	if exists, err := s.users.EmailExists(ctx, req.Email); err != nil {
		return nil, fmt.Errorf("%w: failed to check email: %v", ErrInternal, err)
	} else if exists {
		return nil, ErrEmailExists
	}

	if exists, err := s.users.NicknameExists(ctx, req.Nickname); err != nil {
		return nil, fmt.Errorf("%w: failed to check nickname: %v", ErrInternal, err)
	} else if exists {
		return nil, ErrNicknameExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.passwordMode.Cost())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password: %v", ErrInternal, err)
	}

	user := &User{
		Email:           req.Email,
		Nickname:        req.Nickname,
		ProfileImageURL: req.ProfileImageURL,
		PasswordHash:    hash,
	}
	id, err := s.users.InsertUser(ctx, user)
	if err != nil {
		return nil, s.insertError(err)
	}
	user.ID = id

	return s.issueSession(ctx, user, "")
}

func (s *Service) insertError(err error) error {
	switch {
	case isAny(err, ErrEmailExists, ErrNicknameExists):
		return err
	default:
		return fmt.Errorf("%w: failed to insert user: %v", ErrInternal, err)
	}
}
