// Package handlers is the HTTP surface over the ledger core. Handlers
// resolve the authenticated subject to an internal user, delegate to the
// services and shape responses; they hold no business logic of their own.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/google/uuid"
)

// IdentityResolver maps an external subject onto an internal user.
type IdentityResolver interface {
	Resolve(ctx context.Context, externalID string) (*domain.User, error)
}

// resolveUser resolves the request's subject or writes the 401 response and
// returns nil.
func resolveUser(w http.ResponseWriter, r *http.Request, resolver IdentityResolver) *domain.User {
	user, err := resolver.Resolve(r.Context(), middleware.Subject(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			middleware.WriteError(w, http.StatusUnauthorized, "Not signed in")
		} else {
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to resolve identity")
		}
		return nil
	}
	return user
}

// pathID parses the {id} path value as a UUID or writes the 400 response.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// writeQueryError maps query-path domain errors onto HTTP statuses. Mutation
// paths instead answer with the uniform MutationResult envelope.
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		middleware.WriteError(w, http.StatusUnauthorized, "Not signed in")
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, "Internal error")
	}
}
