// Package seeder bulk-generates synthetic transactions for demo accounts.
// The shape is deterministic (91 days, 1-3 transactions per day, fixed
// income/expense split), the content is randomized. The resulting balance
// write is an absolute set, so seeding must never run concurrently with
// normal ledger traffic on the same account.
package seeder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// windowDays is the historical window covered by one batch: today plus the
// 90 preceding days.
const windowDays = 91

// incomeProbability is the chance a generated transaction is income.
const incomeProbability = 0.4

type categoryRange struct {
	name     string
	txType   domain.TransactionType
	min, max float64
}

var incomeCategories = []categoryRange{
	{"salary", domain.TypeIncome, 5000, 8000},
	{"freelance", domain.TypeIncome, 1000, 3000},
	{"investments", domain.TypeIncome, 500, 2000},
}

var expenseCategories = []categoryRange{
	{"housing", domain.TypeExpense, 1000, 2000},
	{"transportation", domain.TypeExpense, 100, 500},
	{"groceries", domain.TypeExpense, 200, 600},
	{"utilities", domain.TypeExpense, 100, 300},
	{"entertainment", domain.TypeExpense, 50, 200},
	{"food", domain.TypeExpense, 50, 150},
	{"shopping", domain.TypeExpense, 100, 500},
	{"healthcare", domain.TypeExpense, 100, 1000},
	{"travel", domain.TypeExpense, 500, 2000},
}

// Generate produces one batch of synthetic transactions for the account and
// the net signed delta of the whole batch. Passing an explicit rng keeps
// tests reproducible.
func Generate(userID, accountID uuid.UUID, now time.Time, rng *rand.Rand) ([]*domain.Transaction, decimal.Decimal) {
	var txs []*domain.Transaction
	netDelta := decimal.Zero

	for i := windowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		perDay := 1 + rng.IntN(3)

		for j := 0; j < perDay; j++ {
			cat := pickCategory(rng)
			amount := randomAmount(rng, cat)

			t := &domain.Transaction{
				ID:          uuid.New(),
				UserID:      userID,
				AccountID:   accountID,
				Type:        cat.txType,
				Amount:      amount,
				Date:        day,
				Description: describe(cat),
				Category:    cat.name,
				Status:      domain.StatusCompleted,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			txs = append(txs, t)
			netDelta = netDelta.Add(t.SignedAmount())
		}
	}

	return txs, netDelta
}

func pickCategory(rng *rand.Rand) categoryRange {
	if rng.Float64() < incomeProbability {
		return incomeCategories[rng.IntN(len(incomeCategories))]
	}
	return expenseCategories[rng.IntN(len(expenseCategories))]
}

func randomAmount(rng *rand.Rand, cat categoryRange) decimal.Decimal {
	v := cat.min + rng.Float64()*(cat.max-cat.min)
	return decimal.NewFromFloat(v).Round(2)
}

func describe(cat categoryRange) string {
	if cat.txType == domain.TypeIncome {
		return fmt.Sprintf("Received %s", cat.name)
	}
	return fmt.Sprintf("Paid for %s", cat.name)
}

// Store is the persistence surface the seeder needs.
type Store interface {
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error)
	ReplaceAccountTransactions(ctx context.Context, userID, accountID uuid.UUID, txs []*domain.Transaction, netDelta decimal.Decimal) error
}

// Seeder runs demo batches against the store.
type Seeder struct {
	store Store
	log   zerolog.Logger
}

// New creates a seeder.
func New(store Store, log zerolog.Logger) *Seeder {
	return &Seeder{store: store, log: log}
}

// Run replaces the account's transactions with a fresh 91-day batch. Running
// it twice leaves exactly one batch: the prior one is deleted in the same
// atomic operation that inserts the new one.
func (s *Seeder) Run(ctx context.Context, userID, accountID uuid.UUID) (int, error) {
	if _, err := s.store.GetAccount(ctx, userID, accountID); err != nil {
		return 0, fmt.Errorf("Run: %w", err)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	txs, netDelta := Generate(userID, accountID, time.Now(), rng)

	if err := s.store.ReplaceAccountTransactions(ctx, userID, accountID, txs, netDelta); err != nil {
		return 0, fmt.Errorf("Run: %w", err)
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Int("transactions", len(txs)).
		Str("net_delta", netDelta.String()).
		Msg("Demo data seeded")

	return len(txs), nil
}
