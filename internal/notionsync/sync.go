package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/logger"
	"github.com/google/uuid"
	"github.com/jomei/notionapi"
)

// TransactionSource is the ledger surface the sync reads from.
type TransactionSource interface {
	ListTransactionsInRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error)
}

// SyncTransactions mirrors one account's transactions in the date range into
// a Notion database. Pages whose "Transaction ID" matches an existing row are
// updated in place; missing rows become new pages. Individual page failures
// are logged and skipped so one bad row does not abort the run. dryRun logs
// the plan without touching Notion.
func SyncTransactions(ctx context.Context, source TransactionSource, notionClient NotionService, notionDBID string, accountID uuid.UUID, start, end time.Time, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Str("account_id", accountID.String()).
		Time("start_date", start).
		Time("end_date", end).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	transactions, err := source.ListTransactionsInRange(ctx, accountID, start, end)
	if err != nil {
		return fmt.Errorf("SyncTransactions: %w", err)
	}
	log.Info().Int("transaction_count", len(transactions)).Msg("Retrieved transactions from ledger")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("SyncTransactions: %w", err)
	}
	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Map source transaction id -> existing Notion page id.
	existingPages := make(map[string]string)
	for _, page := range notionPages {
		if txID := extractTransactionID(page); txID != "" {
			existingPages[txID] = string(page.ID)
		}
	}

	var created, updated int
	for _, tx := range transactions {
		txID := tx.ID.String()
		pageID, exists := existingPages[txID]

		if dryRun {
			if exists {
				log.Info().Str("transaction_id", txID).Str("page_id", pageID).Msg("[DRY RUN] Would update Notion page")
				updated++
			} else {
				log.Info().Str("transaction_id", txID).Msg("[DRY RUN] Would create Notion page")
				created++
			}
			continue
		}

		props := TransactionToNotionProperties(tx)

		if exists {
			if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", pageID).Msg("Failed to update Notion page")
				continue
			}
			updated++
		} else {
			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", txID).Msg("Failed to create Notion page")
				continue
			}
			log.Info().Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("Created Notion page")
			created++
		}
	}

	log.Info().
		Int("created", created).
		Int("updated", updated).
		Int("total", len(transactions)).
		Msg("Transaction sync completed")

	return nil
}

// queryAllNotionPages walks the database query pagination and collects every
// page.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractTransactionID reads the "Transaction ID" property off a Notion page,
// or "" when absent.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties["Transaction ID"]; ok {
		if richText, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(richText.RichText) > 0 {
				return richText.RichText[0].PlainText
			}
		}
	}
	return ""
}
