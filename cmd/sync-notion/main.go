package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dvloznov/fintrack/internal/infra/postgres"
	"github.com/dvloznov/fintrack/internal/logger"
	"github.com/dvloznov/fintrack/internal/notionsync"
	"github.com/google/uuid"
)

func main() {
	log := logger.New()

	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	accountIDStr := flag.String("account-id", "", "Account to sync (required)")
	notionToken := flag.String("notion-token", "", "Notion API token (required)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (required)")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL env)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *startDateStr == "" {
		log.Fatal().Msg("Error: --start-date is required")
	}
	if *endDateStr == "" {
		log.Fatal().Msg("Error: --end-date is required")
	}
	if *accountIDStr == "" {
		log.Fatal().Msg("Error: --account-id is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}
	if *databaseURL == "" {
		log.Fatal().Msg("Error: --database-url or DATABASE_URL env is required")
	}

	accountID, err := uuid.Parse(*accountIDStr)
	if err != nil {
		log.Fatal().Err(err).Str("account_id", *accountIDStr).Msg("Error: invalid account-id")
	}

	startDate, err := time.Parse("2006-01-02", *startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}

	endDate, err := time.Parse("2006-01-02", *endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}

	if endDate.Before(startDate) {
		log.Fatal().
			Time("start_date", startDate).
			Time("end_date", endDate).
			Msg("Error: end-date must be after start-date")
	}

	// Bounded context so the CLI doesn't hang on a stuck sync.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Str("account_id", accountID.String()).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	store, err := postgres.New(ctx, *databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	notionClient := notionsync.NewNotionClient(*notionToken)

	err = notionsync.SyncTransactions(ctx, store, notionClient, *notionDBID, accountID, startDate, endDate, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Notion sync failed")
	}

	log.Info().Msg("Notion sync finished")
}
