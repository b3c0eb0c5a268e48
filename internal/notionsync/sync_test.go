package notionsync

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

func sampleTransaction() *domain.Transaction {
	interval := domain.IntervalMonthly
	return &domain.Transaction{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		AccountID:         uuid.New(),
		Type:              domain.TypeExpense,
		Amount:            decimal.RequireFromString("123.45"),
		Date:              time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		Description:       "Monthly rent",
		Category:          "housing",
		Status:            domain.StatusCompleted,
		IsRecurring:       true,
		RecurringInterval: &interval,
		CreatedAt:         time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt:         time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := sampleTransaction()
	props := TransactionToNotionProperties(tx)

	title, ok := props["Description"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		t.Fatal("expected a Description title property")
	}
	if got := title.Title[0].Text.Content; got != "Monthly rent" {
		t.Errorf("title = %q, want Monthly rent", got)
	}

	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok {
		t.Fatal("expected an Amount number property")
	}
	if amount.Number != 123.45 {
		t.Errorf("amount = %v, want 123.45", amount.Number)
	}

	txType, ok := props["Type"].(notionapi.SelectProperty)
	if !ok || txType.Select.Name != "EXPENSE" {
		t.Errorf("type select = %+v, want EXPENSE", props["Type"])
	}

	category, ok := props["Category"].(notionapi.SelectProperty)
	if !ok || category.Select.Name != "housing" {
		t.Errorf("category select = %+v, want housing", props["Category"])
	}

	recurring, ok := props["Recurring"].(notionapi.CheckboxProperty)
	if !ok || !recurring.Checkbox {
		t.Error("expected Recurring checkbox to be checked")
	}

	interval, ok := props["Interval"].(notionapi.SelectProperty)
	if !ok || interval.Select.Name != "MONTHLY" {
		t.Errorf("interval select = %+v, want MONTHLY", props["Interval"])
	}

	idProp, ok := props["Transaction ID"].(notionapi.RichTextProperty)
	if !ok || len(idProp.RichText) == 0 {
		t.Fatal("expected a Transaction ID rich text property")
	}
	if got := idProp.RichText[0].Text.Content; got != tx.ID.String() {
		t.Errorf("transaction id = %q, want %q", got, tx.ID)
	}
}

func TestTransactionToNotionProperties_OptionalFieldsOmitted(t *testing.T) {
	tx := sampleTransaction()
	tx.Category = ""
	tx.IsRecurring = false
	tx.RecurringInterval = nil

	props := TransactionToNotionProperties(tx)

	if _, ok := props["Category"]; ok {
		t.Error("empty category should not produce a property")
	}
	if _, ok := props["Interval"]; ok {
		t.Error("non-recurring transaction should not produce an interval")
	}
}

type mockNotion struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return m.CreatePageFunc(ctx, databaseID, properties)
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return m.UpdatePageFunc(ctx, pageID, properties)
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return m.QueryDatabaseFunc(ctx, databaseID, filter)
}

type mockSource struct {
	txs []*domain.Transaction
}

func (m *mockSource) ListTransactionsInRange(context.Context, uuid.UUID, time.Time, time.Time) ([]*domain.Transaction, error) {
	return m.txs, nil
}

func pageWithTransactionID(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func TestSyncTransactions_CreatesAndUpdates(t *testing.T) {
	existing := sampleTransaction()
	fresh := sampleTransaction()
	source := &mockSource{txs: []*domain.Transaction{existing, fresh}}

	var createdIDs, updatedPages []string
	notion := &mockNotion{
		QueryDatabaseFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{
				Results: []notionapi.Page{pageWithTransactionID("page-1", existing.ID.String())},
			}, nil
		},
		CreatePageFunc: func(_ context.Context, _ string, props notionapi.Properties) (*notionapi.Page, error) {
			id := props["Transaction ID"].(notionapi.RichTextProperty).RichText[0].Text.Content
			createdIDs = append(createdIDs, id)
			return &notionapi.Page{ID: "page-new"}, nil
		},
		UpdatePageFunc: func(_ context.Context, pageID string, _ notionapi.Properties) (*notionapi.Page, error) {
			updatedPages = append(updatedPages, pageID)
			return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
		},
	}

	err := SyncTransactions(context.Background(), source, notion, "db-1",
		existing.AccountID, time.Now().AddDate(0, -1, 0), time.Now(), false)
	if err != nil {
		t.Fatalf("SyncTransactions: %v", err)
	}

	if len(createdIDs) != 1 || createdIDs[0] != fresh.ID.String() {
		t.Errorf("created = %v, want [%s]", createdIDs, fresh.ID)
	}
	if len(updatedPages) != 1 || updatedPages[0] != "page-1" {
		t.Errorf("updated = %v, want [page-1]", updatedPages)
	}
}

func TestSyncTransactions_DryRunTouchesNothing(t *testing.T) {
	source := &mockSource{txs: []*domain.Transaction{sampleTransaction()}}

	notion := &mockNotion{
		QueryDatabaseFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{}, nil
		},
		CreatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("dry run must not create pages")
			return nil, nil
		},
		UpdatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			t.Fatal("dry run must not update pages")
			return nil, nil
		},
	}

	err := SyncTransactions(context.Background(), source, notion, "db-1",
		uuid.New(), time.Now().AddDate(0, -1, 0), time.Now(), true)
	if err != nil {
		t.Fatalf("SyncTransactions: %v", err)
	}
}

func TestSyncTransactions_PaginatesQuery(t *testing.T) {
	source := &mockSource{}

	calls := 0
	notion := &mockNotion{
		QueryDatabaseFunc: func(_ context.Context, _ string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			calls++
			if calls == 1 {
				if req.StartCursor != "" {
					t.Errorf("first query should have no cursor, got %q", req.StartCursor)
				}
				return &notionapi.DatabaseQueryResponse{HasMore: true, NextCursor: "cursor-2"}, nil
			}
			if req.StartCursor != "cursor-2" {
				t.Errorf("second query cursor = %q, want cursor-2", req.StartCursor)
			}
			return &notionapi.DatabaseQueryResponse{}, nil
		},
	}

	err := SyncTransactions(context.Background(), source, notion, "db-1",
		uuid.New(), time.Now().AddDate(0, -1, 0), time.Now(), false)
	if err != nil {
		t.Fatalf("SyncTransactions: %v", err)
	}
	if calls != 2 {
		t.Errorf("query calls = %d, want 2", calls)
	}
}
