package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bigfive/internal/assessment"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/results/metrics"
	"bigfive/internal/results/models"
	"bigfive/internal/who"
	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/sentinel"
	"bigfive/pkg/requestcontext"
)

// Store persists result records by id and resolves suite hashes to the
// earliest record stored for them.
type Store interface {
	Create(ctx context.Context, r models.Record) error
	Get(ctx context.Context, id string) (*models.Record, error)
	FindByHash(ctx context.Context, hash string) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service records finished tests and reads them back by id or suite hash.
type Service struct {
	catalog *assessment.Catalog
	store   Store

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = p
	}
}

func New(catalog *assessment.Catalog, store Store, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		store:   store,
		logger:  slog.Default(),
		tracer:  otel.Tracer("bigfive/results"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores the answers of a finished test under a new id. A record whose
// domain seals do not verify is still stored, flagged invalid and without a
// who view.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "results.Create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	requestID := middleware.GetRequestID(ctx)
	rec := models.Record{
		ID:          uuid.NewString(),
		Lang:        req.Lang,
		TimeElapsed: req.TimeElapsed,
		DateStamp:   requestcontext.Now(ctx).UTC(),
		AppVersion:  s.catalog.Version,
		Answers:     req.Answers,
	}

	hash, err := assessment.SuiteHash(req.Answers)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "answers cannot be hashed")
	}
	rec.SuiteHash = hash

	if err := assessment.ValidateEntries(req.Answers); err != nil {
		rec.Invalid = true
		s.logger.WarnContext(ctx, "result recorded with unverified answers",
			"suite_hash", hash,
			"reason", dErrors.Message(err),
			"request_id", requestID,
		)
	} else {
		view, err := who.Build(s.catalog, assessment.SuiteResult{SuiteHash: hash, Results: req.Answers})
		if err != nil {
			s.logger.WarnContext(ctx, "who view failed", "suite_hash", hash, "error", err, "request_id", requestID)
		}
		rec.WhoView = view
	}
	span.SetAttributes(
		attribute.String("result_id", rec.ID),
		attribute.String("suite_hash", hash),
		attribute.Bool("invalid", rec.Invalid),
	)

	if err := s.store.Create(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return nil, translateStoreErr(err, "create result")
	}
	s.metrics.IncRecorded(rec.Invalid)
	s.emitAudit(ctx, rec)
	return &rec, nil
}

// Get loads a record by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "results.Get", trace.WithAttributes(attribute.String("result_id", id)))
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "id is not a valid result id")
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		s.metrics.IncLookup("id", outcome(err))
		if !errors.Is(err, sentinel.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store failed")
		}
		return nil, translateStoreErr(err, "get result")
	}
	s.metrics.IncLookup("id", "found")
	return rec, nil
}

// IDForHash resolves a suite hash to the earliest record stored for it.
func (s *Service) IDForHash(ctx context.Context, hash string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "results.IDForHash", trace.WithAttributes(attribute.String("suite_hash", hash)))
	defer span.End()

	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "hash is required")
	}
	if !canonical.IsDigest(hash) {
		return "", dErrors.New(dErrors.CodeBadRequest, "hash must be 64 lowercase hex characters")
	}
	id, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		s.metrics.IncLookup("hash", outcome(err))
		if !errors.Is(err, sentinel.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store failed")
		}
		return "", translateStoreErr(err, "find result")
	}
	s.metrics.IncLookup("hash", "found")
	return id, nil
}

func outcome(err error) string {
	if errors.Is(err, sentinel.ErrNotFound) {
		return "missing"
	}
	return "error"
}

func translateStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "result not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "result id already taken")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "result store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}

func (s *Service) emitAudit(ctx context.Context, rec models.Record) {
	requestID := middleware.GetRequestID(ctx)
	decision := "valid"
	if rec.Invalid {
		decision = "invalid"
	}
	s.logger.InfoContext(ctx, string(audit.EventResultRecorded),
		"result_id", rec.ID,
		"suite_hash", rec.SuiteHash,
		"decision", decision,
		"log_type", "audit",
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   rec.ID,
		Action:    string(audit.EventResultRecorded),
		Decision:  decision,
		Reason:    rec.SuiteHash,
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "request_id", requestID)
	}
}
