package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Principal is the caller identity resolved for a single request.
type Principal struct {
	UserID int64
}

func (p Principal) Subject() string {
	return strconv.FormatInt(p.UserID, 10)
}

// ResolvePrincipal confirms that the user named by a verified token subject
// still exists. A deleted user yields ErrUnauthorized.
func (s *Service) ResolvePrincipal(
	ctx context.Context,
	subject string,
) (
	Principal,
	error,
) {
	user, err := s.lookupSubject(ctx, subject)
	if err != nil {
		return Principal{}, err
	}
	return Principal{UserID: user.ID}, nil
}

func (s *Service) lookupSubject(
	ctx context.Context,
	subject string,
) (
	*User,
	error,
) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject '%s'", ErrUnauthorized, subject)
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", ErrUnauthorized, id)
		}
		return nil, fmt.Errorf("%w: failed to look up user: %v", ErrInternal, err)
	}
	return user, nil
}
