package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gatehouse/internal/auth/models"
	"gatehouse/pkg/domain"
	"gatehouse/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresUserStore persists users in PostgreSQL.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, email, name, hashed_password, salt, reset_token, reset_token_expires_at, roles, created_at, updated_at`

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, hashed_password, salt, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.Name,
		user.HashedPassword,
		user.Salt,
		user.Roles.EncodeText(),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresUserStore) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, sentinel.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, token))
}

func (s *PostgresUserStore) UpdatePassword(ctx context.Context, id int64, hash, salt string) error {
	// One statement so the new credentials and the token clearing are atomic.
	query := `
		UPDATE users
		SET hashed_password = $2, salt = $3,
		    reset_token = NULL, reset_token_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, hash, salt)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresUserStore) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user      models.User
		name      sql.NullString
		token     sql.NullString
		expiresAt sql.NullTime
		roles     sql.NullString
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&user.HashedPassword,
		&user.Salt,
		&token,
		&expiresAt,
		&roles,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.Name = name.String
	user.ResetToken = token.String
	if expiresAt.Valid {
		t := expiresAt.Time
		user.ResetTokenExpiresAt = &t
	}
	user.Roles = domain.ParseRoles(roles.String)
	return &user, nil
}
