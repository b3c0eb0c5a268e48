// Package identity maps external session subjects onto internal user
// records. Every operation in the ledger runs behind this resolution.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserStore is the persistence surface the resolver needs.
type UserStore interface {
	GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
}

// Resolver turns an external identity subject into an internal user. Unknown
// subjects are provisioned on first sight; the record is immutable afterwards
// from the ledger's perspective.
type Resolver struct {
	store UserStore
	log   zerolog.Logger
}

// NewResolver creates a resolver backed by the given user store.
func NewResolver(store UserStore, log zerolog.Logger) *Resolver {
	return &Resolver{store: store, log: log}
}

// Resolve returns the internal user for an external subject, creating the
// user on first authentication. An empty subject is ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, externalID string) (*domain.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := r.store.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Resolve: %w", err)
	}

	user = &domain.User{
		ID:         uuid.New(),
		ExternalID: externalID,
		CreatedAt:  time.Now(),
	}
	if err := r.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("Resolve: provisioning user: %w", err)
	}

	r.log.Info().Str("user_id", user.ID.String()).Msg("Provisioned user on first authentication")
	return user, nil
}
