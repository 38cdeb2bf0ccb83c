package service

import (
	"context"
	"errors"
	"fmt"
)

func (s *Service) Profile(
	ctx context.Context,
	id int64,
) (
	*User,
	error,
) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}
	return user, nil
}

// DeleteAccount removes the account id. Only the account's owner may do so.
func (s *Service) DeleteAccount(
	ctx context.Context,
	principal Principal,
	id int64,
) error {
	if principal.UserID != id {
		return fmt.Errorf("%w: user %d cannot delete user %d", ErrForbidden, principal.UserID, id)
	}

	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete user: %v", ErrInternal, err)
	}
	if !deleted {
		return ErrUserNotFound
	}

	if s.rotation != nil {
		if err := s.rotation.ForgetRefresh(ctx, principal.Subject()); err != nil {
			s.logger.Error(ctx, "failed to forget refresh chain of deleted user", "user_id", id, "error", err)
		}
	}
	return nil
}
