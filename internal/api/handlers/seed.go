package handlers

import (
	"context"
	"net/http"

	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DemoSeeder replaces an account's transactions with a synthetic batch.
type DemoSeeder interface {
	Run(ctx context.Context, userID, accountID uuid.UUID) (int, error)
}

// SeedHandler handles demo data seeding.
type SeedHandler struct {
	seeder   DemoSeeder
	resolver IdentityResolver
	log      zerolog.Logger
}

// NewSeedHandler creates a seed handler.
func NewSeedHandler(seeder DemoSeeder, resolver IdentityResolver, log zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		seeder:   seeder,
		resolver: resolver,
		log:      log,
	}
}

// Seed handles POST /api/accounts/{id}/seed
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	count, err := h.seeder.Run(r.Context(), user.ID, accountID)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"message":      "demo data seeded",
		"transactions": count,
	})
}
