package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bigfive/internal/assessment"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/runs/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/platform/httputil"
)

// Service defines the run operations the handler exposes.
type Service interface {
	Save(ctx context.Context, suite assessment.SuiteResult) (string, error)
	Get(ctx context.Context, hash string) (*assessment.SuiteResult, error)
	Summary(ctx context.Context, hash string) (*models.Summary, error)
	VerifyDomain(ctx context.Context, r assessment.DomainResult) (assessment.Verification, error)
	VerifySuite(ctx context.Context, s assessment.SuiteResult) (assessment.Verification, error)
}

// Handler serves stored runs and seal verification.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register registers the run and verify routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/runs", h.HandleGet)
	r.Post("/v1/runs", h.HandleSave)
	r.Get("/v1/runs/{hash}/summary", h.HandleSummary)
	r.Post("/v1/verify/domain", h.HandleVerifyDomain)
	r.Post("/v1/verify/suite", h.HandleVerifySuite)
}

// HandleGet returns the stored suite named by the hash query parameter.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := r.URL.Query().Get("hash")

	suite, err := h.service.Get(ctx, hash)
	if err != nil {
		h.fail(ctx, w, "get run failed", hash, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.GetResponse{Results: *suite})
}

// HandleSave verifies and stores a suite.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.SaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	hash, err := h.service.Save(ctx, req.Suite())
	if err != nil {
		h.fail(ctx, w, "save run failed", req.Hash, err)
		return
	}
	h.logger.InfoContext(ctx, "run saved",
		"request_id", requestID,
		"suite_hash", hash,
	)
	httputil.WriteJSON(w, http.StatusOK, models.SaveResponse{OK: true, Hash: hash})
}

// HandleSummary returns signals, cards, mirror and who card of a stored suite.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	hash := chi.URLParam(r, "hash")

	sum, err := h.service.Summary(ctx, hash)
	if err != nil {
		h.fail(ctx, w, "summary failed", hash, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

func (h *Handler) HandleVerifyDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.VerifyDomainRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.VerifyDomain(ctx, req.Result)
	if err != nil {
		h.fail(ctx, w, "verify domain failed", "", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleVerifySuite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.VerifySuiteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.VerifySuite(ctx, req.Suite)
	if err != nil {
		h.fail(ctx, w, "verify suite failed", req.Suite.SuiteHash, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// fail logs client errors at warn and everything else at error, then writes
// the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg, hash string, err error) {
	log := h.logger.WarnContext
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"suite_hash", hash,
		"error", err,
	)
	httputil.WriteError(w, err)
}
