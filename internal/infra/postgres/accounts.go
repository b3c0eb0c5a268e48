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

const accountColumns = `id, user_id, name, type, currency, balance::text, is_default, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balance string
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &balance, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("scanAccount: parsing balance %q: %w", balance, err)
	}
	return &a, nil
}

// CreateAccount inserts an account owned by the given user.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, user_id, name, type, currency, balance, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
	`, account.ID, account.UserID, account.Name, account.Type, account.Currency,
		account.Balance.String(), account.IsDefault, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}

// GetAccount fetches one account scoped to the owning user. A row that
// exists but belongs to someone else is indistinguishable from a missing
// one: both are domain.ErrNotFound.
func (s *Store) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1 AND user_id = $2
	`, accountID, userID)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

// GetAccountOwner returns the user id owning an account. Used by operator
// tooling that starts from an account id rather than an authenticated user.
func (s *Store) GetAccountOwner(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT user_id FROM accounts WHERE id = $1
	`, accountID).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, domain.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("GetAccountOwner: %w", err)
	}
	return userID, nil
}

// ListAccounts returns all of a user's accounts, default account first.
func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAccounts: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}

// incrementBalanceWithTx applies a relative balance adjustment inside an
// open database transaction. The increment form tolerates concurrent
// create/update calls landing on the same account.
func incrementBalanceWithTx(ctx context.Context, tx pgx.Tx, userID, accountID uuid.UUID, delta decimal.Decimal) error {
	tag, err := tx.Exec(ctx, `
		UPDATE accounts
		SET balance = balance + $1::numeric, updated_at = now()
		WHERE id = $2 AND user_id = $3
	`, delta.String(), accountID, userID)
	if err != nil {
		return fmt.Errorf("incrementBalance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
