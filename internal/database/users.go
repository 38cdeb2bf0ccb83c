package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
)

func (s *SQLiteStore) InsertUser(
	ctx context.Context,
	user *service.User,
) (
	int64,
	error,
) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, nickname, password_hash, profile_image_url, created_at)
		VALUES (?1, ?2, ?3, ?4, ?5);`,
		user.Email,
		user.Nickname,
		user.PasswordHash,
		user.ProfileImageURL,
		time.Now().Unix(),
	)
	if err != nil {
		if uniqueErr := sqliteUniqueError(err); uniqueErr != nil {
			return 0, uniqueErr
		}
		return 0, fmt.Errorf("couldn't insert into users: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("couldn't read inserted user id: %v", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetUserByID(
	ctx context.Context,
	id int64,
) (
	*service.User,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, nickname, password_hash, profile_image_url, created_at
		FROM users
		WHERE id=?1;`,
		id,
	)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) GetUserByEmail(
	ctx context.Context,
	email string,
) (
	*service.User,
	error,
) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, nickname, password_hash, profile_image_url, created_at
		FROM users
		WHERE email=?1;`,
		email,
	)
	return scanSQLiteUser(row)
}

func (s *SQLiteStore) EmailExists(
	ctx context.Context,
	email string,
) (
	bool,
	error,
) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=?1);`, email)
}

func (s *SQLiteStore) NicknameExists(
	ctx context.Context,
	nickname string,
) (
	bool,
	error,
) {
	return s.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE nickname=?1);`, nickname)
}

func (s *SQLiteStore) DeleteUser(
	ctx context.Context,
	id int64,
) (
	bool,
	error,
) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM users
		WHERE id=?1;`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("couldn't delete from users: %v", err)
	}
	return !resultsEmpty(result), nil
}

func (s *SQLiteStore) exists(
	ctx context.Context,
	query string,
	arg any,
) (
	bool,
	error,
) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("couldn't scan exists: %v", err)
	}
	return exists, nil
}

func scanSQLiteUser(row *sql.Row) (*service.User, error) {
	user := &service.User{}
	var createdAt int64
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.PasswordHash,
		&user.ProfileImageURL,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("couldn't scan user: %v", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	return user, nil
}
