package ledger

import (
	"fmt"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionInput is the validated field set for creating or fully replacing
// a transaction. Updates replace every mutable field; there is no partial
// patch path.
type TransactionInput struct {
	AccountID         uuid.UUID
	Type              domain.TransactionType
	Amount            decimal.Decimal
	Date              time.Time
	Description       string
	Category          string
	IsRecurring       bool
	RecurringInterval *domain.RecurringInterval
}

// Validate rejects inputs before any guard or write runs.
func (in *TransactionInput) Validate() error {
	if in.AccountID == uuid.Nil {
		return fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	if in.Type != domain.TypeIncome && in.Type != domain.TypeExpense {
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidInput, in.Type)
	}
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must be non-negative", domain.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	if in.IsRecurring && in.RecurringInterval == nil {
		return fmt.Errorf("%w: recurring transactions require an interval", domain.ErrInvalidInput)
	}
	if in.RecurringInterval != nil {
		if _, err := domain.ParseRecurringInterval(string(*in.RecurringInterval)); err != nil {
			return err
		}
	}
	return nil
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListFilter narrows a transaction listing beyond the mandatory user scope.
type ListFilter struct {
	AccountID *uuid.UUID
	Type      *domain.TransactionType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// normalize applies the pagination bounds: default 50, cap 200.
func (f *ListFilter) normalize() {
	if f.Limit <= 0 || f.Limit > maxListLimit {
		if f.Limit > maxListLimit {
			f.Limit = maxListLimit
		} else {
			f.Limit = defaultListLimit
		}
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
