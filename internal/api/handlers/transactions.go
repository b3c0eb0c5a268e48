package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/ledger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionService is the ledger surface the handler depends on.
type TransactionService interface {
	Create(ctx context.Context, userID uuid.UUID, in ledger.TransactionInput) ledger.MutationResult
	Update(ctx context.Context, userID, txID uuid.UUID, in ledger.TransactionInput) ledger.MutationResult
	Delete(ctx context.Context, userID, txID uuid.UUID) ledger.MutationResult
	Get(ctx context.Context, userID, txID uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter ledger.ListFilter) ([]*domain.Transaction, error)
}

// TransactionsHandler handles transaction endpoints.
type TransactionsHandler struct {
	svc      TransactionService
	resolver IdentityResolver
	log      zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(svc TransactionService, resolver IdentityResolver, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		svc:      svc,
		resolver: resolver,
		log:      log,
	}
}

// transactionRequest is the wire shape for create and update.
type transactionRequest struct {
	AccountID         string          `json:"account_id"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Date              string          `json:"date"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	IsRecurring       bool            `json:"is_recurring"`
	RecurringInterval string          `json:"recurring_interval,omitempty"`
}

func (req *transactionRequest) toInput(requireAccount bool) (ledger.TransactionInput, error) {
	var in ledger.TransactionInput

	if req.AccountID != "" {
		accountID, err := uuid.Parse(req.AccountID)
		if err != nil {
			return in, fmt.Errorf("%w: invalid account id", domain.ErrInvalidInput)
		}
		in.AccountID = accountID
	} else if requireAccount {
		return in, fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}

	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return in, err
	}
	in.Type = txType

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return in, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	in.Date = date

	in.Amount = req.Amount
	in.Description = req.Description
	in.Category = req.Category
	in.IsRecurring = req.IsRecurring

	if req.RecurringInterval != "" {
		interval, err := domain.ParseRecurringInterval(req.RecurringInterval)
		if err != nil {
			return in, err
		}
		in.RecurringInterval = &interval
	}

	return in, nil
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, err := req.toInput(true)
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, ledger.MutationResult{Success: false, Message: err.Error()})
		return
	}

	res := h.svc.Create(r.Context(), user.ID, in)
	middleware.WriteJSON(w, res.Status, res)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}
	txID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// An omitted account id means "keep the transaction's account".
	in, err := req.toInput(false)
	if err != nil {
		middleware.WriteJSON(w, http.StatusBadRequest, ledger.MutationResult{Success: false, Message: err.Error()})
		return
	}

	res := h.svc.Update(r.Context(), user.ID, txID, in)
	middleware.WriteJSON(w, res.Status, res)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}
	txID, ok := pathID(w, r)
	if !ok {
		return
	}

	res := h.svc.Delete(r.Context(), user.ID, txID)
	middleware.WriteJSON(w, res.Status, res)
}

// Get handles GET /api/transactions/{id}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}
	txID, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), user.ID, txID)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}

	filter, err := listFilterFromQuery(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := h.svc.List(r.Context(), user.ID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		writeQueryError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

func listFilterFromQuery(r *http.Request) (ledger.ListFilter, error) {
	var filter ledger.ListFilter
	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid account_id", domain.ErrInvalidInput)
		}
		filter.AccountID = &id
	}
	if v := q.Get("type"); v != "" {
		t, err := domain.ParseTransactionType(v)
		if err != nil {
			return filter, err
		}
		filter.Type = &t
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("%w: from must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, fmt.Errorf("%w: to must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		filter.To = &to
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("%w: limit must be an integer", domain.ErrInvalidInput)
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return filter, fmt.Errorf("%w: offset must be an integer", domain.ErrInvalidInput)
		}
		filter.Offset = n
	}

	return filter, nil
}
