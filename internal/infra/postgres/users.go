package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/jackc/pgx/v5"
)

// GetUserByExternalID looks up a user by the subject issued by the external
// identity provider.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT id, external_id, COALESCE(email, ''), created_at
		FROM users
		WHERE external_id = $1
	`, externalID).Scan(&u.ID, &u.ExternalID, &u.Email, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUserByExternalID: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user record, created on first authentication.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, external_id, email, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
	`, user.ID, user.ExternalID, user.Email, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}
