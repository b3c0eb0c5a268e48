// Command seed fills an account with synthetic demo transactions. It is an
// operator tool: it resolves the account's owner directly and replaces any
// previous demo batch.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/dvloznov/fintrack/internal/infra/postgres"
	"github.com/dvloznov/fintrack/internal/logger"
	"github.com/dvloznov/fintrack/internal/seeder"
	"github.com/google/uuid"
)

func main() {
	log := logger.New()

	accountIDStr := flag.String("account-id", "", "Account to seed (required)")
	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL env)")
	flag.Parse()

	if *accountIDStr == "" {
		log.Fatal().Msg("Error: --account-id is required")
	}
	if *databaseURL == "" {
		log.Fatal().Msg("Error: --database-url or DATABASE_URL env is required")
	}

	accountID, err := uuid.Parse(*accountIDStr)
	if err != nil {
		log.Fatal().Err(err).Str("account_id", *accountIDStr).Msg("Error: invalid account-id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := postgres.New(ctx, *databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Close()

	userID, err := store.GetAccountOwner(ctx, accountID)
	if err != nil {
		log.Fatal().Err(err).Str("account_id", accountID.String()).Msg("Failed to resolve account owner")
	}

	count, err := seeder.New(store, log).Run(ctx, userID, accountID)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().
		Str("account_id", accountID.String()).
		Int("transactions", count).
		Msg("Account seeded")
}
