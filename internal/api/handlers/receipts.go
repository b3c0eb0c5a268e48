package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dvloznov/fintrack/internal/api/middleware"
	"github.com/dvloznov/fintrack/internal/domain"
	"github.com/dvloznov/fintrack/internal/receipt"
	"github.com/rs/zerolog"
)

// maxReceiptBytes bounds the accepted image size.
const maxReceiptBytes = 8 << 20

// ReceiptsHandler handles receipt scan requests.
type ReceiptsHandler struct {
	extractor receipt.Extractor
	resolver  IdentityResolver
	bucket    string
	log       zerolog.Logger
}

// NewReceiptsHandler creates a receipts handler. An empty bucket disables
// archival.
func NewReceiptsHandler(extractor receipt.Extractor, resolver IdentityResolver, bucket string, log zerolog.Logger) *ReceiptsHandler {
	return &ReceiptsHandler{
		extractor: extractor,
		resolver:  resolver,
		bucket:    bucket,
		log:       log,
	}
}

// Scan handles POST /api/receipts/scan. The request body is the raw image;
// Content-Type declares its mime type. The response carries field candidates
// only; nothing is persisted until the client submits a create.
func (h *ReceiptsHandler) Scan(w http.ResponseWriter, r *http.Request) {
	user := resolveUser(w, r, h.resolver)
	if user == nil {
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		middleware.WriteError(w, http.StatusUnsupportedMediaType, "Content-Type must be an image type")
		return
	}

	image, err := io.ReadAll(io.LimitReader(r.Body, maxReceiptBytes+1))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(image) > maxReceiptBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Image exceeds the 8MB limit")
		return
	}

	data, err := h.extractor.Scan(r.Context(), image, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidFormat):
			h.log.Warn().Err(err).Msg("Receipt response failed validation")
			middleware.WriteError(w, http.StatusUnprocessableEntity, "Could not read transaction fields from the receipt")
		case errors.Is(err, domain.ErrExtractionFailed):
			h.log.Error().Err(err).Msg("Receipt extraction failed")
			middleware.WriteError(w, http.StatusBadGateway, "Receipt scanning is unavailable")
		default:
			h.log.Error().Err(err).Msg("Receipt scan failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Receipt scan failed")
		}
		return
	}

	if h.bucket != "" {
		if uri, err := receipt.Archive(r.Context(), h.bucket, image, mimeType); err != nil {
			h.log.Warn().Err(err).Msg("Receipt archival failed")
		} else {
			h.log.Info().Str("uri", uri).Msg("Receipt archived")
		}
	}

	middleware.WriteJSON(w, http.StatusOK, data)
}
