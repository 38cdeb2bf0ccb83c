package service

import (
	"context"
	"fmt"

	"git.sr.ht/~jakintosh/inkwell/internal/tokens"
)

// Refresh redeems an encoded refresh token for a new access and refresh pair.
func (s *Service) Refresh(
	ctx context.Context,
	encodedRefreshToken string,
) (
	*Session,
	error,
) {
	token, err := s.tokenVerifier.Verify(encodedRefreshToken, tokens.ClassRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: couldn't verify refresh token: %v", ErrTokenInvalid, err)
	}

	user, err := s.lookupSubject(ctx, token.Subject())
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user, token.ID())
}

// Logout ends the refresh chain of principal when rotation is strict. Access
// tokens already handed out stay valid until they expire.
func (s *Service) Logout(
	ctx context.Context,
	principal Principal,
) error {
	if s.rotation == nil {
		return nil
	}
	if err := s.rotation.ForgetRefresh(ctx, principal.Subject()); err != nil {
		return fmt.Errorf("%w: failed to forget refresh token: %v", ErrInternal, err)
	}
	return nil
}
