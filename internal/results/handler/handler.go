package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bigfive/internal/platform/middleware"
	"bigfive/internal/results/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/platform/httputil"
)

// Service defines the result record operations the handler exposes.
type Service interface {
	Create(ctx context.Context, req models.CreateRequest) (*models.Record, error)
	Get(ctx context.Context, id string) (*models.Record, error)
	IDForHash(ctx context.Context, hash string) (string, error)
}

// Handler serves finished test records.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the result record routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/tests", h.HandleCreate)
	r.Get("/v1/tests/by-hash", h.HandleByHash)
	r.Get("/v1/tests/{id}", h.HandleGet)
}

// HandleCreate stores a finished test and returns its id.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rec, err := h.service.Create(ctx, *req)
	if err != nil {
		h.fail(ctx, w, "create result failed", "", err)
		return
	}
	h.logger.InfoContext(ctx, "result recorded",
		"request_id", requestID,
		"result_id", rec.ID,
		"invalid", rec.Invalid,
	)
	httputil.WriteJSON(w, http.StatusOK, models.IDResponse{ID: rec.ID})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	rec, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get result failed", id, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// HandleByHash resolves the hash query parameter to a record id.
func (h *Handler) HandleByHash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := r.URL.Query().Get("hash")

	id, err := h.service.IDForHash(ctx, hash)
	if err != nil {
		h.fail(ctx, w, "find result failed", "", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.IDResponse{ID: id})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg, id string, err error) {
	log := h.logger.WarnContext
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"result_id", id,
		"error", err,
	)
	httputil.WriteError(w, err)
}
