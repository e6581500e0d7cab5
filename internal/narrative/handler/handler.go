package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bigfive/internal/narrative/models"
	"bigfive/internal/platform/middleware"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/platform/httputil"
)

// Service produces the narrative of a stored suite.
type Service interface {
	ForHash(ctx context.Context, hash string) (*models.Result, error)
}

// Handler serves the narrative endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a narrative Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the narrative route under the runs tree.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/runs/{hash}/narrative", h.HandleNarrative)
}

// HandleNarrative returns the guarded narrative lines of a stored suite.
func (h *Handler) HandleNarrative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	hash := chi.URLParam(r, "hash")

	res, err := h.service.ForHash(ctx, hash)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "narrative failed",
				"request_id", requestID,
				"suite_hash", hash,
				"error", err,
			)
		} else {
			h.logger.WarnContext(ctx, "narrative rejected",
				"request_id", requestID,
				"suite_hash", hash,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "narrative served",
		"request_id", requestID,
		"suite_hash", hash,
		"source", res.Source,
		"cached", res.Cached,
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}
