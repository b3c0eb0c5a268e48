package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/logger"
	"github.com/dvloznov/fintrack/internal/views"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockStore is a func-field mock of the Store interface.
type mockStore struct {
	GetAccountFunc        func(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error)
	GetTransactionFunc    func(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error)
	ListTransactionsFunc  func(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Transaction, error)
	CreateTransactionFunc func(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error
	UpdateTransactionFunc func(ctx context.Context, tx *domain.Transaction, netDelta decimal.Decimal) error
	DeleteTransactionFunc func(ctx context.Context, userID, txID, accountID uuid.UUID, reversal decimal.Decimal) error
}

func (m *mockStore) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, userID, accountID)
	}
	return &domain.Account{ID: accountID, UserID: userID, Balance: decimal.Zero}, nil
}

func (m *mockStore) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, userID, txID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListTransactions(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockStore) CreateTransaction(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error {
	if m.CreateTransactionFunc != nil {
		return m.CreateTransactionFunc(ctx, tx, delta)
	}
	return nil
}

func (m *mockStore) UpdateTransaction(ctx context.Context, tx *domain.Transaction, netDelta decimal.Decimal) error {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, tx, netDelta)
	}
	return nil
}

func (m *mockStore) DeleteTransaction(ctx context.Context, userID, txID, accountID uuid.UUID, reversal decimal.Decimal) error {
	if m.DeleteTransactionFunc != nil {
		return m.DeleteTransactionFunc(ctx, userID, txID, accountID, reversal)
	}
	return nil
}

var _ Store = (*mockStore)(nil)

func newTestService(store Store) (*Service, *views.Registry) {
	reg := views.NewRegistry()
	svc := NewService(store, reg, logger.NewWithWriter(discard{}))
	return svc, reg
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestServiceCreate(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	balance := decimal.NewFromInt(500)

	var storedTx *domain.Transaction
	store := &mockStore{
		CreateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error {
			storedTx = tx
			balance = balance.Add(delta)
			return nil
		},
	}
	svc, reg := newTestService(store)

	in := TransactionInput{
		AccountID:   accountID,
		Type:        domain.TypeExpense,
		Amount:      decimal.NewFromInt(100),
		Date:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		Description: "weekly shop",
		Category:    "groceries",
	}

	res := svc.Create(context.Background(), userID, in)
	if !res.Success {
		t.Fatalf("Create failed: %s", res.Message)
	}
	if storedTx == nil {
		t.Fatal("expected transaction to be written")
	}
	if !balance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("balance = %s, want 400 (500 - 100 expense)", balance)
	}
	if storedTx.UserID != userID || storedTx.AccountID != accountID {
		t.Error("stored transaction not scoped to the submitted user/account")
	}
	if storedTx.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", storedTx.Status)
	}
	if storedTx.NextRecurringDate != nil {
		t.Error("non-recurring transaction must have nil next recurring date")
	}
	if !reg.Stale(views.DashboardPath) {
		t.Error("dashboard view not invalidated")
	}
	if !reg.Stale(views.AccountPath(accountID.String())) {
		t.Error("account view not invalidated")
	}
}

func TestServiceCreate_Recurring(t *testing.T) {
	monthly := domain.IntervalMonthly
	var storedTx *domain.Transaction
	store := &mockStore{
		CreateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error {
			storedTx = tx
			return nil
		},
	}
	svc, _ := newTestService(store)

	in := TransactionInput{
		AccountID:         uuid.New(),
		Type:              domain.TypeIncome,
		Amount:            decimal.NewFromInt(5000),
		Date:              time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description:       "salary",
		Category:          "salary",
		IsRecurring:       true,
		RecurringInterval: &monthly,
	}

	res := svc.Create(context.Background(), uuid.New(), in)
	if !res.Success {
		t.Fatalf("Create failed: %s", res.Message)
	}
	if storedTx.NextRecurringDate == nil {
		t.Fatal("recurring transaction must carry a next recurring date")
	}
	want := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !storedTx.NextRecurringDate.Equal(want) {
		t.Errorf("next recurring date = %s, want %s", storedTx.NextRecurringDate, want)
	}
}

func TestServiceCreate_ForeignAccount(t *testing.T) {
	created := false
	store := &mockStore{
		GetAccountFunc: func(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error) {
			return nil, domain.ErrNotFound
		},
		CreateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error {
			created = true
			return nil
		},
	}
	svc, reg := newTestService(store)

	in := validInput()
	res := svc.Create(context.Background(), uuid.New(), in)
	if res.Success {
		t.Fatal("expected failure for unowned account")
	}
	if res.Message != "account or transaction not found" {
		t.Errorf("message = %q, want the conflated not-found message", res.Message)
	}
	if created {
		t.Error("no write may happen after a failed ownership guard")
	}
	if len(reg.Paths()) != 0 {
		t.Error("no views may be invalidated on failure")
	}
}

func TestServiceCreate_PersistenceFailure(t *testing.T) {
	store := &mockStore{
		CreateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, delta decimal.Decimal) error {
			return errors.New("connection reset")
		},
	}
	svc, reg := newTestService(store)

	res := svc.Create(context.Background(), uuid.New(), validInput())
	if res.Success {
		t.Fatal("expected failure when the atomic write fails")
	}
	if res.Message != "could not save transaction" {
		t.Errorf("raw persistence error leaked to caller: %q", res.Message)
	}
	if len(reg.Paths()) != 0 {
		t.Error("no views may be invalidated when the write fails")
	}
}

func TestServiceCreate_Unauthorized(t *testing.T) {
	svc, _ := newTestService(&mockStore{})
	res := svc.Create(context.Background(), uuid.Nil, validInput())
	if res.Success || res.Message != "not signed in" {
		t.Errorf("expected unauthorized failure, got %+v", res)
	}
}

func TestServiceUpdate_NetDelta(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	txID := uuid.New()
	balance := decimal.NewFromInt(1000)

	prior := &domain.Transaction{
		ID:        txID,
		UserID:    userID,
		AccountID: accountID,
		Type:      domain.TypeExpense,
		Amount:    decimal.NewFromInt(100),
		Date:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusCompleted,
	}

	store := &mockStore{
		GetTransactionFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.Transaction, error) {
			if uid != userID || id != txID {
				return nil, domain.ErrNotFound
			}
			return prior, nil
		},
		UpdateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, netDelta decimal.Decimal) error {
			balance = balance.Add(netDelta)
			return nil
		},
	}
	svc, _ := newTestService(store)

	in := TransactionInput{
		AccountID:   accountID,
		Type:        domain.TypeExpense,
		Amount:      decimal.NewFromInt(150),
		Date:        prior.Date,
		Description: "corrected",
		Category:    "groceries",
	}

	res := svc.Update(context.Background(), userID, txID, in)
	if !res.Success {
		t.Fatalf("Update failed: %s", res.Message)
	}
	// $100 expense edited to $150 expense: balance moves by -50.
	if !balance.Equal(decimal.NewFromInt(950)) {
		t.Errorf("balance = %s, want 950", balance)
	}
}

func TestServiceUpdate_RecurringFromSubmittedDate(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()
	weekly := domain.IntervalWeekly
	prior := &domain.Transaction{
		ID:        txID,
		UserID:    userID,
		AccountID: uuid.New(),
		Type:      domain.TypeExpense,
		Amount:    decimal.NewFromInt(10),
		Date:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusCompleted,
	}

	var updated *domain.Transaction
	store := &mockStore{
		GetTransactionFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.Transaction, error) {
			return prior, nil
		},
		UpdateTransactionFunc: func(ctx context.Context, tx *domain.Transaction, netDelta decimal.Decimal) error {
			updated = tx
			return nil
		},
	}
	svc, _ := newTestService(store)

	newDate := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	in := TransactionInput{
		Type:              domain.TypeExpense,
		Amount:            decimal.NewFromInt(10),
		Date:              newDate,
		IsRecurring:       true,
		RecurringInterval: &weekly,
	}

	res := svc.Update(context.Background(), userID, txID, in)
	if !res.Success {
		t.Fatalf("Update failed: %s", res.Message)
	}
	if updated.NextRecurringDate == nil {
		t.Fatal("expected a next recurring date")
	}
	// Derived from the submitted date, not the stored January one.
	want := newDate.AddDate(0, 0, 7)
	if !updated.NextRecurringDate.Equal(want) {
		t.Errorf("next recurring date = %s, want %s", updated.NextRecurringDate, want)
	}
}

func TestServiceUpdate_CannotMoveAccounts(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()
	prior := &domain.Transaction{
		ID:        txID,
		UserID:    userID,
		AccountID: uuid.New(),
		Type:      domain.TypeExpense,
		Amount:    decimal.NewFromInt(10),
		Date:      time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	store := &mockStore{
		GetTransactionFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.Transaction, error) {
			return prior, nil
		},
	}
	svc, _ := newTestService(store)

	in := validInput() // carries a fresh random account id
	res := svc.Update(context.Background(), userID, txID, in)
	if res.Success {
		t.Fatal("expected rejection when the submitted account differs")
	}
}

func TestServiceDelete_ReversesDelta(t *testing.T) {
	userID := uuid.New()
	accountID := uuid.New()
	txID := uuid.New()
	balance := decimal.NewFromInt(400)

	store := &mockStore{
		GetTransactionFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.Transaction, error) {
			return &domain.Transaction{
				ID:        txID,
				UserID:    userID,
				AccountID: accountID,
				Type:      domain.TypeExpense,
				Amount:    decimal.NewFromInt(100),
			}, nil
		},
		DeleteTransactionFunc: func(ctx context.Context, uid, id, accID uuid.UUID, reversal decimal.Decimal) error {
			balance = balance.Add(reversal)
			return nil
		},
	}
	svc, _ := newTestService(store)

	res := svc.Delete(context.Background(), userID, txID)
	if !res.Success {
		t.Fatalf("Delete failed: %s", res.Message)
	}
	// Removing a $100 expense restores the $100.
	if !balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("balance = %s, want 500", balance)
	}
}

func TestServiceGet_OwnershipScoped(t *testing.T) {
	store := &mockStore{
		GetTransactionFunc: func(ctx context.Context, uid, id uuid.UUID) (*domain.Transaction, error) {
			return nil, domain.ErrNotFound
		},
	}
	svc, _ := newTestService(store)

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a foreign transaction, got %v", err)
	}
}

func TestServiceList_NormalizesFilter(t *testing.T) {
	var seen ListFilter
	store := &mockStore{
		ListTransactionsFunc: func(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Transaction, error) {
			seen = filter
			return nil, nil
		},
	}
	svc, _ := newTestService(store)

	if _, err := svc.List(context.Background(), uuid.New(), ListFilter{}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if seen.Limit != 50 {
		t.Errorf("limit = %d, want default 50", seen.Limit)
	}

	if _, err := svc.List(context.Background(), uuid.New(), ListFilter{Limit: 10000}); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if seen.Limit != 200 {
		t.Errorf("limit = %d, want cap 200", seen.Limit)
	}
}
