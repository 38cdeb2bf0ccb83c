package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful login, signup or refresh.
type Session struct {
	User              User
	AccessToken       string
	RefreshToken      string
	RefreshExpiration time.Time
}

func (s *Service) Login(
	ctx context.Context,
	email string,
	password string,
) (
	*Session,
	error,
) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, "")
}

// authenticate never tells the caller whether the email or the password
// was wrong; both come back as ErrInvalidCredentials.
func (s *Service) authenticate(
	ctx context.Context,
	email string,
	password string,
) (
	*User,
	error,
) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: failed to retrieve user: %v", ErrInternal, err)
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// issueSession mints an access and refresh pair for user. When rotation is
// strict, previousID is the refresh token being redeemed ("" for a fresh
// login) and the pair is only returned if it still heads the chain.
func (s *Service) issueSession(
	ctx context.Context,
	user *User,
	previousID string,
) (
	*Session,
	error,
) {
	subject := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.tokenIssuer.Mint(tokens.ClassAccess, subject, s.lifetimes.Access)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't issue access token: %v", ErrInternal, err)
	}

	refreshToken, err := s.tokenIssuer.Mint(tokens.ClassRefresh, subject, s.lifetimes.Refresh)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't issue refresh token: %v", ErrInternal, err)
	}

	if s.rotation != nil {
		if err := s.advanceChain(ctx, subject, previousID, refreshToken); err != nil {
			return nil, err
		}
	}

	return &Session{
		User:              *user,
		AccessToken:       accessToken.Encoded(),
		RefreshToken:      refreshToken.Encoded(),
		RefreshExpiration: refreshToken.Expiration(),
	}, nil
}

func (s *Service) advanceChain(
	ctx context.Context,
	subject string,
	previousID string,
	next *tokens.Token,
) error {
	if previousID == "" {
		err := s.rotation.RecordRefresh(ctx, subject, next.ID(), next.Expiration())
		if err != nil {
			return fmt.Errorf("%w: failed to record refresh token: %v", ErrInternal, err)
		}
		return nil
	}

	rotated, err := s.rotation.RotateRefresh(ctx, subject, previousID, next.ID(), next.Expiration())
	if err != nil {
		return fmt.Errorf("%w: failed to rotate refresh token: %v", ErrInternal, err)
	}
	if !rotated {
		s.logger.Warn(ctx, "refresh token already redeemed", "subject", subject, "token_id", previousID)
		return fmt.Errorf("%w: refresh token superseded", ErrTokenInvalid)
	}
	return nil
}
