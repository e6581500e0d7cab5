package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"bigfive/internal/assessment"
	"bigfive/internal/mirror"
	"bigfive/internal/narrative/llm"
	"bigfive/internal/narrative/metrics"
	"bigfive/internal/narrative/models"
	"bigfive/internal/narrative/pipeline"
	"bigfive/internal/narrative/prompt"
	"bigfive/internal/platform/middleware"
	dErrors "bigfive/pkg/domain-errors"
	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/sentinel"
)

// Cache stores finished narratives and the cross-process generation lock.
type Cache interface {
	Get(ctx context.Context, hash string) (models.Entry, error)
	Put(ctx context.Context, hash string, e models.Entry) error
	AcquireLock(ctx context.Context, hash, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, hash, owner string) error
}

type Generator interface {
	Generate(ctx context.Context, req llm.Request) (llm.Response, error)
}

// RunReader loads sealed suites by hash.
type RunReader interface {
	Get(ctx context.Context, hash string) (*assessment.SuiteResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const (
	defaultLockTTL = 2 * time.Minute
	defaultWait    = 60 * time.Second
	defaultPoll    = 500 * time.Millisecond
)

// Service produces the guarded narrative of a sealed suite. Generation runs
// at most once per suite hash: within a process through singleflight, across
// processes through the cache lock.
type Service struct {
	catalog   *assessment.Catalog
	runs      RunReader
	cache     Cache
	generator Generator
	group     singleflight.Group
	owner     string

	lockTTL time.Duration
	wait    time.Duration
	poll    time.Duration

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

// WithGenerator sets the model. Without one every narrative is the
// deterministic fallback.
func WithGenerator(g Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithTiming overrides the lock TTL, the wait budget and the poll interval.
// Zero values keep the defaults.
func WithTiming(lockTTL, wait, poll time.Duration) Option {
	return func(s *Service) {
		if lockTTL > 0 {
			s.lockTTL = lockTTL
		}
		if wait > 0 {
			s.wait = wait
		}
		if poll > 0 {
			s.poll = poll
		}
	}
}

// New constructs a Service.
func New(catalog *assessment.Catalog, runs RunReader, cache Cache, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		runs:    runs,
		cache:   cache,
		owner:   uuid.NewString(),
		lockTTL: defaultLockTTL,
		wait:    defaultWait,
		poll:    defaultPoll,
		logger:  slog.Default(),
		tracer:  otel.Tracer("bigfive/narrative"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForHash loads a stored suite and returns its narrative.
func (s *Service) ForHash(ctx context.Context, hash string) (*models.Result, error) {
	suite, err := s.runs.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.Narrative(ctx, *suite)
}

// Narrative returns the cached narrative of suite or generates it.
func (s *Service) Narrative(ctx context.Context, suite assessment.SuiteResult) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.Narrative",
		trace.WithAttributes(attribute.String("suite_hash", suite.SuiteHash)),
	)
	defer span.End()

	if suite.SuiteHash == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "suite hash is required")
	}

	if res, ok := s.cached(ctx, suite.SuiteHash); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		return res, nil
	}

	// The shared generation must outlive any single caller.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(suite.SuiteHash, func() (any, error) {
		return s.generateOnce(detached, suite)
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "cancelled")
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "narrative request cancelled")
	case r := <-ch:
		if r.Err != nil {
			span.RecordError(r.Err)
			span.SetStatus(codes.Error, "generation failed")
			return nil, r.Err
		}
		res := *r.Val.(*models.Result)
		res.Lines = append([]string(nil), res.Lines...)
		span.SetAttributes(
			attribute.String("source", string(res.Source)),
			attribute.Bool("cached", res.Cached),
			attribute.Bool("shared", r.Shared),
		)
		return &res, nil
	}
}

func (s *Service) cached(ctx context.Context, hash string) (*models.Result, bool) {
	e, err := s.cache.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "narrative cache read failed",
				"suite_hash", hash,
				"error", err,
				"request_id", middleware.GetRequestID(ctx),
			)
		}
		return nil, false
	}
	s.metrics.IncCacheHit()
	return &models.Result{Lines: e.Lines, Source: e.Source, Cached: true}, true
}

// generateOnce takes the lock or waits for its holder.
func (s *Service) generateOnce(ctx context.Context, suite assessment.SuiteResult) (*models.Result, error) {
	hash := suite.SuiteHash
	if res, ok := s.cached(ctx, hash); ok {
		return res, nil
	}

	acquired, err := s.cache.AcquireLock(ctx, hash, s.owner, s.lockTTL)
	if err != nil {
		// lock store errors fall through to local generation
		s.logger.WarnContext(ctx, "narrative lock unavailable",
			"suite_hash", hash,
			"error", err,
		)
		acquired = true
	}
	if !acquired {
		return s.waitForHolder(ctx, suite)
	}
	return s.generateLocked(ctx, suite)
}

// generateLocked produces and caches the narrative while holding the lock.
func (s *Service) generateLocked(ctx context.Context, suite assessment.SuiteResult) (*models.Result, error) {
	hash := suite.SuiteHash
	defer func() {
		if err := s.cache.ReleaseLock(ctx, hash, s.owner); err != nil {
			s.logger.WarnContext(ctx, "narrative lock release failed", "suite_hash", hash, "error", err)
		}
	}()

	res, err := s.produce(ctx, suite)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, hash, models.Entry{Lines: res.Lines, Source: res.Source}); err != nil {
		s.logger.WarnContext(ctx, "narrative cache write failed", "suite_hash", hash, "error", err)
	}
	s.metrics.IncResult(string(res.Source))
	s.emitAudit(ctx, hash, res.Source)
	return res, nil
}

// waitForHolder polls the cache until the holder publishes. Each tick also
// retries the lock, so a holder that died without writing is taken over as
// soon as its lock is released or expires.
func (s *Service) waitForHolder(ctx context.Context, suite assessment.SuiteResult) (*models.Result, error) {
	hash := suite.SuiteHash
	s.metrics.IncLockWait()
	waitCtx, cancel := context.WithTimeout(ctx, s.wait)
	defer cancel()

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-waitCtx.Done():
			s.metrics.IncWaitTimeout()
			return nil, dErrors.New(dErrors.CodeTimeout, "Profile generation timed out")
		case <-ticker.C:
			if res, ok := s.cached(waitCtx, hash); ok {
				return res, nil
			}
			acquired, err := s.cache.AcquireLock(waitCtx, hash, s.owner, s.lockTTL)
			if err != nil {
				s.logger.WarnContext(ctx, "narrative lock retry failed", "suite_hash", hash, "error", err)
				continue
			}
			if acquired {
				s.metrics.IncLockTakeover()
				return s.generateLocked(ctx, suite)
			}
		}
	}
}

// produce runs the model and the guard. Any model or schema failure falls
// back to the identity mirror lines.
func (s *Service) produce(ctx context.Context, suite assessment.SuiteResult) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.produce")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveGeneration(start)

	facts := models.FactsFromSuite(suite)
	source := models.SourceLLM
	profile, err := s.fromModel(ctx, facts)
	if err != nil {
		reason := fallbackReason(err)
		s.metrics.IncFallback(reason)
		s.logger.WarnContext(ctx, "narrative falling back to mirror lines",
			"suite_hash", suite.SuiteHash,
			"reason", reason,
			"error", err,
		)
		span.SetAttributes(attribute.String("fallback_reason", reason))

		m, mErr := mirror.Build(mirror.FromSuite(s.catalog, suite))
		if mErr != nil {
			span.RecordError(mErr)
			span.SetStatus(codes.Error, "mirror failed")
			return nil, dErrors.Wrap(mErr, dErrors.CodeInternal, "build fallback narrative")
		}
		profile = models.Profile{Lines: m.Lines}
		source = models.SourceFallback
	}

	return &models.Result{Lines: pipeline.Enforce(facts, profile), Source: source}, nil
}

var errNoGenerator = errors.New("no generator configured")

func (s *Service) fromModel(ctx context.Context, facts models.Facts) (models.Profile, error) {
	if s.generator == nil {
		return models.Profile{}, errNoGenerator
	}
	p, err := prompt.Build(facts)
	if err != nil {
		return models.Profile{}, fmt.Errorf("build prompt: %w", err)
	}
	resp, err := s.generator.Generate(ctx, llm.Request{System: p.System, User: p.User, Temperature: 0})
	if err != nil {
		return models.Profile{}, err
	}
	return pipeline.Coerce(resp.Text)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errNoGenerator):
		return "no_generator"
	case errors.Is(err, pipeline.ErrSchema):
		return "schema"
	case errors.Is(err, sentinel.ErrUnavailable):
		return "circuit_open"
	default:
		return "llm_error"
	}
}

func (s *Service) emitAudit(ctx context.Context, hash string, source models.Source) {
	requestID := middleware.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(audit.EventNarrativeGenerated),
		"suite_hash", hash,
		"source", source,
		"log_type", "audit",
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   hash,
		Action:    string(audit.EventNarrativeGenerated),
		Decision:  string(source),
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "request_id", requestID)
	}
}
