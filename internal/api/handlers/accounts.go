package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountStore is the persistence surface for account endpoints.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error)
}

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	store    AccountStore
	resolver IdentityResolver
	log      zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(store AccountStore, resolver IdentityResolver, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		store:    store,
		resolver: resolver,
		log:      log,
	}
}

type accountRequest struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"is_default"`
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Account name is required")
		return
	}
	accountType := domain.AccountType(strings.ToUpper(req.Type))
	if accountType != domain.AccountCurrent && accountType != domain.AccountSavings {
		middleware.WriteError(w, http.StatusBadRequest, "Account type must be CURRENT or SAVINGS")
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	account := &domain.Account{
		ID:        uuid.New(),
		UserID:    user.ID,
		Name:      strings.TrimSpace(req.Name),
		Type:      accountType,
		Currency:  currency,
		Balance:   req.Balance,
		IsDefault: req.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.store.CreateAccount(r.Context(), account); err != nil {
		h.log.Error().Err(err).Msg("Failed to create account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.log.Info().
		Str("account_id", account.ID.String()).
		Str("user_id", user.ID.String()).
		Msg("Account created")
	middleware.WriteJSON(w, http.StatusCreated, account)
}

// Get handles GET /api/accounts/{id}
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}
	accountID, ok := pathID(w, r)
	if !ok {
		return
	}

	account, err := h.store.GetAccount(r.Context(), user.ID, accountID)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, account)
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}

	accounts, err := h.store.ListAccounts(r.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		writeQueryError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}
