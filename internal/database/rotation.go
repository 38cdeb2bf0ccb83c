package database

import (
	"context"
	"fmt"
	"time"
)

func (s *SQLiteStore) RecordRefresh(
	ctx context.Context,
	subject string,
	tokenID string,
	expiration time.Time,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_rotation (subject, token_id, expiration)
		VALUES (?1, ?2, ?3)
		ON CONFLICT (subject) DO UPDATE
		SET token_id=excluded.token_id, expiration=excluded.expiration;`,
		subject,
		tokenID,
		expiration.Unix(),
	)
	if err != nil {
		return fmt.Errorf("couldn't upsert refresh_rotation: %v", err)
	}
	return nil
}

func (s *SQLiteStore) RotateRefresh(
	ctx context.Context,
	subject string,
	presentedID string,
	nextID string,
	expiration time.Time,
) (
	bool,
	error,
) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE refresh_rotation
		SET token_id=?1, expiration=?2
		WHERE subject=?3 AND token_id=?4;`,
		nextID,
		expiration.Unix(),
		subject,
		presentedID,
	)
	if err != nil {
		return false, fmt.Errorf("couldn't update refresh_rotation: %v", err)
	}
	return !resultsEmpty(result), nil
}

func (s *SQLiteStore) ForgetRefresh(
	ctx context.Context,
	subject string,
) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM refresh_rotation
		WHERE subject=?1;`,
		subject,
	)
	if err != nil {
		return fmt.Errorf("couldn't delete from refresh_rotation: %v", err)
	}
	return nil
}

// PruneRefresh drops rotation records whose refresh token expired before now.
func (s *SQLiteStore) PruneRefresh(
	ctx context.Context,
	now time.Time,
) (
	int64,
	error,
) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM refresh_rotation
		WHERE expiration <= ?1;`,
		now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("couldn't prune refresh_rotation: %v", err)
	}
	return result.RowsAffected()
}
