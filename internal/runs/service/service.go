package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"bigfive/internal/assessment"
	"bigfive/internal/cards"
	"bigfive/internal/mirror"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/runs/metrics"
	"bigfive/internal/runs/models"
	"bigfive/internal/signals"
	"bigfive/internal/who"
	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/sentinel"
)

// Store persists sealed suites, write-once by hash.
type Store interface {
	Save(ctx context.Context, hash string, suite assessment.SuiteResult) error
	Get(ctx context.Context, hash string) (*assessment.SuiteResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service seals, stores and verifies suites and builds their derived views.
type Service struct {
	catalog   *assessment.Catalog
	store     Store
	recompute bool

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

// WithRecompute replays every domain through the scoring rules on save and
// rejects results whose derived fields disagree with their answers.
func WithRecompute(enabled bool) Option {
	return func(s *Service) {
		s.recompute = enabled
	}
}

func New(catalog *assessment.Catalog, store Store, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		store:   store,
		logger:  slog.Default(),
		tracer:  otel.Tracer("bigfive/runs"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save verifies and persists a suite and returns its hash. Saving a suite
// that is already stored succeeds without a second write.
func (s *Service) Save(ctx context.Context, suite assessment.SuiteResult) (string, error) {
	ctx, span := s.tracer.Start(ctx, "runs.Save")
	defer span.End()

	hash, err := s.seal(suite)
	if err != nil {
		s.metrics.IncSave("rejected")
		s.emitAudit(ctx, audit.EventSuiteRejected, suite.SuiteHash, dErrors.Message(err))
		span.SetStatus(codes.Error, "rejected")
		return "", err
	}
	span.SetAttributes(attribute.String("suite_hash", hash))
	suite.SuiteHash = hash

	if err := s.store.Save(ctx, hash, suite); err != nil {
		s.metrics.IncSave("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")
		return "", translateStoreErr(err, "save run")
	}
	s.metrics.IncSave("stored")
	s.emitAudit(ctx, audit.EventSuiteSealed, hash, "")
	return hash, nil
}

// seal checks every domain nonce and the suite hash. A suite without a hash
// is sealed here.
func (s *Service) seal(suite assessment.SuiteResult) (string, error) {
	if err := assessment.ValidateEntries(suite.Results); err != nil {
		return "", err
	}
	if s.recompute {
		for _, e := range suite.Results {
			if err := assessment.Recompute(s.catalog, e.Payload); err != nil {
				return "", dErrors.Wrap(err, dErrors.CodeValidation, "domain "+string(e.Domain)+": "+dErrors.Message(err))
			}
		}
	}
	actual, err := assessment.SuiteHash(suite.Results)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeValidation, "suite cannot be hashed")
	}
	if suite.SuiteHash != "" && !canonical.Equal(actual, suite.SuiteHash) {
		return "", dErrors.New(dErrors.CodeValidation, "suite hash does not match its results")
	}
	return actual, nil
}

// Get loads a stored suite.
func (s *Service) Get(ctx context.Context, hash string) (*assessment.SuiteResult, error) {
	ctx, span := s.tracer.Start(ctx, "runs.Get", trace.WithAttributes(attribute.String("suite_hash", hash)))
	defer span.End()

	if !canonical.IsDigest(hash) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "hash must be 64 lowercase hex characters")
	}
	suite, err := s.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store failed")
		}
		return nil, translateStoreErr(err, "get run")
	}
	return suite, nil
}

// Summary builds every derived view of a stored suite.
func (s *Service) Summary(ctx context.Context, hash string) (*models.Summary, error) {
	suite, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "runs.Summary", trace.WithAttributes(attribute.String("suite_hash", hash)))
	defer span.End()

	sig := signals.Compute(signals.MeansFromSuite(*suite))
	out := &models.Summary{
		SuiteHash: suite.SuiteHash,
		Signals:   sig,
		Snapshot:  signals.Snapshot(sig),
		Cards:     cards.FromSuite(s.catalog, *suite),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := signals.BuildHandoff(s.catalog, *suite)
		out.Handoff = h
		return err
	})
	g.Go(func() error {
		m, err := mirror.Build(mirror.FromSuite(s.catalog, *suite))
		out.Mirror = m
		return err
	})
	g.Go(func() error {
		w, err := who.Build(s.catalog, *suite)
		out.Who = w
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build summary")
	}
	s.metrics.IncSummary()
	return out, nil
}

// VerifyDomain recomputes a domain nonce. A mismatch is reported through
// Valid, not as an error.
func (s *Service) VerifyDomain(ctx context.Context, r assessment.DomainResult) (assessment.Verification, error) {
	v, err := assessment.VerifyDomain(r)
	if err != nil {
		return assessment.Verification{}, dErrors.Wrap(err, dErrors.CodeValidation, "result cannot be hashed")
	}
	s.metrics.IncVerification("domain", v.Valid)
	s.logger.InfoContext(ctx, "domain verified",
		"domain", r.Domain,
		"valid", v.Valid,
		"request_id", middleware.GetRequestID(ctx),
	)
	return v, nil
}

// VerifySuite recomputes a suite hash from its stored entries.
func (s *Service) VerifySuite(ctx context.Context, suite assessment.SuiteResult) (assessment.Verification, error) {
	v, err := assessment.VerifySuite(suite)
	if err != nil {
		return assessment.Verification{}, dErrors.Wrap(err, dErrors.CodeValidation, "suite cannot be hashed")
	}
	s.metrics.IncVerification("suite", v.Valid)
	s.logger.InfoContext(ctx, "suite verified",
		"suite_hash", suite.SuiteHash,
		"valid", v.Valid,
		"request_id", middleware.GetRequestID(ctx),
	)
	return v, nil
}

func translateStoreErr(err error, op string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "run not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "result store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, op)
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.AuditEvent, hash, reason string) {
	requestID := middleware.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"suite_hash", hash,
		"reason", reason,
		"log_type", "audit",
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   hash,
		Action:    string(event),
		Reason:    reason,
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "request_id", requestID)
	}
}
