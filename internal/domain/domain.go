package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// ParseTransactionType validates a raw type string against the closed enum.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidInput, s)
	}
}

// RecurringInterval is the cadence of a recurring transaction.
type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

// ParseRecurringInterval validates a raw interval string against the closed enum.
// Unrecognized values are rejected rather than passed through.
func ParseRecurringInterval(s string) (RecurringInterval, error) {
	switch RecurringInterval(strings.ToUpper(strings.TrimSpace(s))) {
	case IntervalDaily:
		return IntervalDaily, nil
	case IntervalWeekly:
		return IntervalWeekly, nil
	case IntervalMonthly:
		return IntervalMonthly, nil
	case IntervalYearly:
		return IntervalYearly, nil
	default:
		return "", fmt.Errorf("%w: unknown recurring interval %q", ErrInvalidInput, s)
	}
}

// TransactionStatus is the lifecycle state of a transaction. Only COMPLETED
// transactions participate in the account balance.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// AccountType is the kind of account.
type AccountType string

const (
	AccountCurrent AccountType = "CURRENT"
	AccountSavings AccountType = "SAVINGS"
)

// User is an identity record, created on first authentication and immutable
// afterwards from the ledger's perspective.
type User struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"-"` // subject issued by the external identity provider
	Email      string    `json:"email,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Account belongs to exactly one user. Balance is maintained incrementally:
// it must equal the sum of signed amounts of all COMPLETED transactions
// referencing the account, and is mutated only through the ledger service's
// atomic dual write.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"is_default"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Transaction belongs to exactly one account and, denormalized, one user.
// NextRecurringDate is non-nil iff IsRecurring is true and RecurringInterval
// is set.
type Transaction struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"user_id"`
	AccountID         uuid.UUID          `json:"account_id"`
	Type              TransactionType    `json:"type"`
	Amount            decimal.Decimal    `json:"amount"` // non-negative; sign comes from Type
	Date              time.Time          `json:"date"`
	Description       string             `json:"description"`
	Category          string             `json:"category"`
	Status            TransactionStatus  `json:"status"`
	IsRecurring       bool               `json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval,omitempty"`
	NextRecurringDate *time.Time         `json:"next_recurring_date,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// SignedAmount returns the amount with the sign implied by the transaction
// type: positive for income, negative for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}
