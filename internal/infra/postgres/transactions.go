package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/ledger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, account_id, type, amount::text, date, description, category,
	status, is_recurring, recurring_interval, next_recurring_date, created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount string
	var interval *string
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Type, &amount, &t.Date,
		&t.Description, &t.Category, &t.Status, &t.IsRecurring,
		&interval, &t.NextRecurringDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("scanTransaction: parsing amount %q: %w", amount, err)
	}
	if interval != nil {
		iv := domain.RecurringInterval(*interval)
		t.RecurringInterval = &iv
	}
	return &t, nil
}

func intervalValue(t *domain.Transaction) *string {
	if t.RecurringInterval == nil {
		return nil
	}
	s := string(*t.RecurringInterval)
	return &s
}

// GetTransaction fetches one transaction scoped to the owning user.
func (s *Store) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`, txID, userID)

	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest first by date. The filter is expected pre-normalized by the ledger
// service (limit default 50, cap 200).
func (s *Store) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*domain.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	args := []any{userID}

	appendArg := func(clause string, v any) {
		args = append(args, v)
		sb.WriteString(" AND " + clause + "$" + strconv.Itoa(len(args)))
	}
	if filter.AccountID != nil {
		appendArg("account_id = ", *filter.AccountID)
	}
	if filter.Type != nil {
		appendArg("type = ", string(*filter.Type))
	}
	if filter.From != nil {
		appendArg("date >= ", *filter.From)
	}
	if filter.To != nil {
		appendArg("date <= ", *filter.To)
	}

	args = append(args, filter.Limit, filter.Offset)
	sb.WriteString(fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: %w", err)
	}
	return txs, nil
}

// ListTransactionsInRange returns an account's transactions between start and
// end inclusive, oldest first. Used by the Notion export.
func (s *Store) ListTransactionsInRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, created_at
	`, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("ListTransactionsInRange: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListTransactionsInRange: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func insertTransactionWithTx(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, account_id, type, amount, date, description, category,
			status, is_recurring, recurring_interval, next_recurring_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.UserID, t.AccountID, t.Type, t.Amount.String(), t.Date, t.Description, t.Category,
		t.Status, t.IsRecurring, intervalValue(t), t.NextRecurringDate, t.CreatedAt, t.UpdatedAt)
	return err
}

// CreateTransaction inserts the row and applies the balance delta in one
// database transaction. Either both land or neither does.
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction, delta decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("CreateTransaction: begin: %w: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if err := insertTransactionWithTx(ctx, tx, t); err != nil {
		return fmt.Errorf("CreateTransaction: insert: %w: %w", domain.ErrPersistence, err)
	}
	if err := incrementBalanceWithTx(ctx, tx, t.UserID, t.AccountID, delta); err != nil {
		return fmt.Errorf("CreateTransaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("CreateTransaction: commit: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// UpdateTransaction replaces the row's mutable fields and applies the net
// balance delta in one database transaction. The balance write is a relative
// increment, never an absolute set.
func (s *Store) UpdateTransaction(ctx context.Context, t *domain.Transaction, netDelta decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: begin: %w: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE transactions
		SET type = $1, amount = $2::numeric, date = $3, description = $4, category = $5,
			is_recurring = $6, recurring_interval = $7, next_recurring_date = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`, t.Type, t.Amount.String(), t.Date, t.Description, t.Category,
		t.IsRecurring, intervalValue(t), t.NextRecurringDate, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := incrementBalanceWithTx(ctx, tx, t.UserID, t.AccountID, netDelta); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("UpdateTransaction: commit: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}

// DeleteTransaction removes the row and applies the reversal delta in one
// database transaction.
func (s *Store) DeleteTransaction(ctx context.Context, userID, txID, accountID uuid.UUID, reversal decimal.Decimal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: begin: %w: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, txID, userID)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if err := incrementBalanceWithTx(ctx, tx, userID, accountID, reversal); err != nil {
		return fmt.Errorf("DeleteTransaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("DeleteTransaction: commit: %w: %w", domain.ErrPersistence, err)
	}
	return nil
}
