package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bigfive/internal/assessment"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/session/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/platform/httputil"
)

// Service defines the session operations the handler exposes.
type Service interface {
	Start(ctx context.Context, domain assessment.Domain) (*models.View, error)
	Get(ctx context.Context, id string) (*models.View, error)
	Answer(ctx context.Context, id string, req models.AnswerRequest) (*models.View, error)
	Back(ctx context.Context, id string) (*models.View, error)
	Result(ctx context.Context, id string) (*assessment.DomainResult, error)
	Score(ctx context.Context, domain assessment.Domain, answers assessment.Answers) (*assessment.DomainResult, error)
}

// Handler serves server-driven sessions and stateless scoring.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/sessions", h.HandleStart)
	r.Get("/v1/sessions/{id}", h.HandleGet)
	r.Post("/v1/sessions/{id}/answer", h.HandleAnswer)
	r.Post("/v1/sessions/{id}/back", h.HandleBack)
	r.Get("/v1/sessions/{id}/result", h.HandleResult)
	r.Post("/v1/score", h.HandleScore)
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.StartRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.Start(ctx, req.Domain)
	if err != nil {
		h.fail(ctx, w, "start session failed", "", err)
		return
	}
	h.logger.InfoContext(ctx, "session started",
		"request_id", requestID,
		"session_id", v.ID,
		"domain", req.Domain,
	)
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	v, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get session failed", id, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// HandleAnswer applies facets, a rating or a confirmation depending on the
// pending step.
func (h *Handler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[models.AnswerRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.Answer(ctx, id, *req)
	if err != nil {
		h.fail(ctx, w, "answer rejected", id, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	v, err := h.service.Back(ctx, id)
	if err != nil {
		h.fail(ctx, w, "back rejected", id, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// HandleResult returns the sealed domain result of a completed session.
func (h *Handler) HandleResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	res, err := h.service.Result(ctx, id)
	if err != nil {
		h.fail(ctx, w, "session result unavailable", id, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleScore scores a complete answer set in one call.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.ScoreRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Score(ctx, req.Domain, req.Answers)
	if err != nil {
		h.fail(ctx, w, "score rejected", "", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg, id string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"session_id", id,
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"session_id", id,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
