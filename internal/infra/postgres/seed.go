package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ReplaceAccountTransactions wipes an account's transactions, bulk-inserts a
// new batch, and sets the balance to storedBalance + netDelta. The balance
// write is an absolute set, not an increment, so this is only safe as an
// exclusive-access maintenance operation on an account with no concurrent
// activity. The whole sequence runs in one database transaction; the row
// lock on the account holds it together.
func (s *Store) ReplaceAccountTransactions(ctx context.Context, userID, accountID uuid.UUID, txs []*domain.Transaction, netDelta decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var stored string
	err = tx.QueryRow(ctx, `
		SELECT balance::text FROM accounts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, accountID, userID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: locking account: %w", err)
	}
	storedBalance, err := decimal.NewFromString(stored)
	if err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: parsing balance %q: %w", stored, err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM transactions WHERE account_id = $1 AND user_id = $2
	`, accountID, userID); err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: deleting prior batch: %w", err)
	}

	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(`
			INSERT INTO transactions (id, user_id, account_id, type, amount, date, description, category,
				status, is_recurring, recurring_interval, next_recurring_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, t.ID, t.UserID, t.AccountID, t.Type, t.Amount.String(), t.Date, t.Description, t.Category,
			t.Status, t.IsRecurring, intervalValue(t), t.NextRecurringDate, t.CreatedAt, t.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: inserting batch: %w", err)
	}

	newBalance := storedBalance.Add(netDelta)
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance = $1::numeric, updated_at = now()
		WHERE id = $2 AND user_id = $3
	`, newBalance.String(), accountID, userID); err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: setting balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ReplaceAccountTransactions: commit: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}
