package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const pgUniqueViolation = "23505"

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx driver and applies pending migrations.
func OpenPostgres(
	ctx context.Context,
	dsn string,
) (
	*PostgresStore,
	*sql.DB,
	error,
) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	return NewPostgresStore(db), db, nil
}

func Migrate(
	ctx context.Context,
	db *sql.DB,
) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return err
	}

	_, err = provider.Up(ctx)
	return err
}

func (s *PostgresStore) UserStore() service.UserStore {
	return s
}

func (s *PostgresStore) RotationStore() service.RotationStore {
	return s
}

func (s *PostgresStore) InsertUser(
	ctx context.Context,
	user *service.User,
) (
	int64,
	error,
) {
	query :=
		`INSERT INTO users (email, nickname, password_hash, profile_image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		user.Email, user.Nickname, user.PasswordHash, user.ProfileImageURL).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case "users_email_key":
				return 0, service.ErrEmailExists
			case "users_nickname_key":
				return 0, service.ErrNicknameExists
			}
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) GetUserByID(
	ctx context.Context,
	id int64,
) (
	*service.User,
	error,
) {
	query :=
		`SELECT id, email, nickname, password_hash, profile_image_url, created_at FROM users
		 WHERE id = $1
		 `
	return scanPostgresUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetUserByEmail(
	ctx context.Context,
	email string,
) (
	*service.User,
	error,
) {
	query :=
		`SELECT id, email, nickname, password_hash, profile_image_url, created_at FROM users
		 WHERE email = $1
		 `
	return scanPostgresUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) EmailExists(
	ctx context.Context,
	email string,
) (
	bool,
	error,
) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	return s.exists(ctx, query, email)
}

func (s *PostgresStore) NicknameExists(
	ctx context.Context,
	nickname string,
) (
	bool,
	error,
) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1)`
	return s.exists(ctx, query, nickname)
}

func (s *PostgresStore) DeleteUser(
	ctx context.Context,
	id int64,
) (
	bool,
	error,
) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return !resultsEmpty(result), nil
}

func (s *PostgresStore) RecordRefresh(
	ctx context.Context,
	subject string,
	tokenID string,
	expiration time.Time,
) error {
	query :=
		`INSERT INTO refresh_rotation (subject, token_id, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (subject) DO UPDATE
		 SET token_id = EXCLUDED.token_id, expires_at = EXCLUDED.expires_at
		 `

	if _, err := s.db.ExecContext(ctx, query, subject, tokenID, expiration); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) RotateRefresh(
	ctx context.Context,
	subject string,
	presentedID string,
	nextID string,
	expiration time.Time,
) (
	bool,
	error,
) {
	query :=
		`UPDATE refresh_rotation SET token_id = $1, expires_at = $2
		 WHERE subject = $3 AND token_id = $4
		 `

	result, err := s.db.ExecContext(ctx, query, nextID, expiration, subject, presentedID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return !resultsEmpty(result), nil
}

func (s *PostgresStore) ForgetRefresh(
	ctx context.Context,
	subject string,
) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_rotation WHERE subject = $1`, subject); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) PruneRefresh(
	ctx context.Context,
	now time.Time,
) (
	int64,
	error,
) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_rotation WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return result.RowsAffected()
}

func (s *PostgresStore) exists(
	ctx context.Context,
	query string,
	arg any,
) (
	bool,
	error,
) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func scanPostgresUser(row *sql.Row) (*service.User, error) {
	user := &service.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.PasswordHash,
		&user.ProfileImageURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}
