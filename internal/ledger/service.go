package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/views"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the persistence surface the ledger service depends on. Every
// fetch is scoped by the owning user id; a non-matching row must surface as
// domain.ErrNotFound. The mutation methods perform their row write and the
// account balance increment as one all-or-nothing operation.
type Store interface {
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Transaction, error)

	// CreateTransaction inserts the row and increments the account balance
	// by delta atomically.
	CreateTransaction(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error

	// UpdateTransaction replaces the row's mutable fields and increments the
	// account balance by netDelta atomically. The increment (rather than an
	// absolute set) tolerates concurrent balance changes from other
	// transactions landing between read and write.
	UpdateTransaction(ctx context.Context, tx *domain.Transaction, netDelta decimal.Decimal) error

	// DeleteTransaction removes the row and increments the account balance
	// by reversal atomically.
	DeleteTransaction(ctx context.Context, userID, txID, accountID uuid.UUID, reversal decimal.Decimal) error
}

// ViewInvalidator marks named view paths stale after successful mutations so
// downstream consumers refetch.
type ViewInvalidator interface {
	Invalidate(path string)
}

// MutationResult is the uniform caller-facing outcome of a mutation. The
// internal error kind is logged, never exposed beyond Message.
type MutationResult struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`

	// Status is the HTTP status the request layer should answer with. It is
	// not part of the caller-facing payload.
	Status int `json:"-"`
}

// Service orchestrates guard checks, delta computation and the atomic dual
// write for transaction mutations, plus ownership-scoped queries.
type Service struct {
	store Store
	views ViewInvalidator
	log   zerolog.Logger
	now   func() time.Time
}

// NewService creates a ledger service.
func NewService(store Store, invalidator ViewInvalidator, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		views: invalidator,
		log:   log,
		now:   time.Now,
	}
}

// Create validates input, checks account ownership, computes the balance
// delta and recurring date, and performs the atomic insert+balance write.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in TransactionInput) MutationResult {
	if userID == uuid.Nil {
		return s.failure("create", domain.ErrUnauthorized)
	}
	if err := in.Validate(); err != nil {
		return s.failure("create", err)
	}

	if _, err := s.store.GetAccount(ctx, userID, in.AccountID); err != nil {
		return s.failure("create", err)
	}

	next, err := nextRecurringDate(in.IsRecurring, in.RecurringInterval, in.Date)
	if err != nil {
		return s.failure("create", err)
	}

	now := s.now()
	tx := &domain.Transaction{
		ID:                uuid.New(),
		UserID:            userID,
		AccountID:         in.AccountID,
		Type:              in.Type,
		Amount:            in.Amount,
		Date:              in.Date,
		Description:       in.Description,
		Category:          in.Category,
		Status:            domain.StatusCompleted,
		IsRecurring:       in.IsRecurring,
		RecurringInterval: in.RecurringInterval,
		NextRecurringDate: next,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.CreateTransaction(ctx, tx, Delta(in.Type, in.Amount)); err != nil {
		return s.failure("create", err)
	}

	s.invalidateViews(tx.AccountID)
	s.log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("account_id", tx.AccountID.String()).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Msg("Transaction created")

	return MutationResult{Success: true, Message: "transaction created", Transaction: tx, Status: 201}
}

// Update fetches the prior transaction to compute the old delta, replaces
// every mutable field from the submitted input, and applies the net delta as
// a relative balance increment in the same atomic write. The recurring date
// is recomputed from the submitted date and interval, not the stored ones.
func (s *Service) Update(ctx context.Context, userID, txID uuid.UUID, in TransactionInput) MutationResult {
	if userID == uuid.Nil {
		return s.failure("update", domain.ErrUnauthorized)
	}

	prior, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return s.failure("update", err)
	}

	// Transactions never move between accounts; an edit with a different
	// account id is rejected rather than silently rehomed.
	if in.AccountID == uuid.Nil {
		in.AccountID = prior.AccountID
	} else if in.AccountID != prior.AccountID {
		return s.failure("update", fmt.Errorf("%w: transaction cannot move to a different account", domain.ErrInvalidInput))
	}

	if err := in.Validate(); err != nil {
		return s.failure("update", err)
	}

	if _, err := s.store.GetAccount(ctx, userID, in.AccountID); err != nil {
		return s.failure("update", err)
	}

	next, err := nextRecurringDate(in.IsRecurring, in.RecurringInterval, in.Date)
	if err != nil {
		return s.failure("update", err)
	}

	tx := &domain.Transaction{
		ID:                prior.ID,
		UserID:            prior.UserID,
		AccountID:         prior.AccountID,
		Type:              in.Type,
		Amount:            in.Amount,
		Date:              in.Date,
		Description:       in.Description,
		Category:          in.Category,
		Status:            prior.Status,
		IsRecurring:       in.IsRecurring,
		RecurringInterval: in.RecurringInterval,
		NextRecurringDate: next,
		CreatedAt:         prior.CreatedAt,
		UpdatedAt:         s.now(),
	}

	netDelta := NetDelta(prior.Type, in.Type, prior.Amount, in.Amount)
	if err := s.store.UpdateTransaction(ctx, tx, netDelta); err != nil {
		return s.failure("update", err)
	}

	s.invalidateViews(tx.AccountID)
	s.log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("account_id", tx.AccountID.String()).
		Str("net_delta", netDelta.String()).
		Msg("Transaction updated")

	return MutationResult{Success: true, Message: "transaction updated", Transaction: tx, Status: 200}
}

// Delete removes a transaction and reverses its balance contribution in the
// same atomic write.
func (s *Service) Delete(ctx context.Context, userID, txID uuid.UUID) MutationResult {
	if userID == uuid.Nil {
		return s.failure("delete", domain.ErrUnauthorized)
	}

	prior, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return s.failure("delete", err)
	}

	reversal := prior.SignedAmount().Neg()
	if err := s.store.DeleteTransaction(ctx, userID, txID, prior.AccountID, reversal); err != nil {
		return s.failure("delete", err)
	}

	s.invalidateViews(prior.AccountID)
	s.log.Info().
		Str("transaction_id", txID.String()).
		Str("account_id", prior.AccountID.String()).
		Msg("Transaction deleted")

	return MutationResult{Success: true, Message: "transaction deleted", Status: 200}
}

// Get returns a single ownership-scoped transaction. Unlike mutations, query
// errors are re-raised and shaped by the caller.
func (s *Service) Get(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	tx, err := s.store.GetTransaction(ctx, userID, txID)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return tx, nil
}

// List returns the user's transactions matching the filter, newest first by
// date, bounded by the filter's pagination.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Transaction, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	filter.normalize()
	txs, err := s.store.ListTransactions(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return txs, nil
}

func (s *Service) invalidateViews(accountID uuid.UUID) {
	if s.views == nil {
		return
	}
	s.views.Invalidate(views.DashboardPath)
	s.views.Invalidate(views.AccountPath(accountID.String()))
}

// failure logs the internal error and converts it to the uniform result
// shape. Persistence details never reach the caller verbatim.
func (s *Service) failure(op string, err error) MutationResult {
	s.log.Error().Err(err).Str("operation", op).Msg("Transaction mutation failed")

	var msg string
	var status int
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		msg, status = "not signed in", 401
	case errors.Is(err, domain.ErrNotFound):
		msg, status = "account or transaction not found", 404
	case errors.Is(err, domain.ErrInvalidInput):
		msg, status = err.Error(), 400
	default:
		msg, status = "could not save transaction", 500
	}
	return MutationResult{Success: false, Message: msg, Status: status}
}
