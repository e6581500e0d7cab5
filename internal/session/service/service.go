package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bigfive/internal/assessment"
	"bigfive/internal/platform/middleware"
	"bigfive/internal/session/metrics"
	"bigfive/internal/session/models"
	dErrors "bigfive/pkg/domain-errors"
	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/sentinel"
	"bigfive/pkg/requestcontext"
)

// Store holds live sessions.
type Store interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Touch(ctx context.Context, id string, expiresAt time.Time) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const defaultTTL = 2 * time.Hour

// Service drives assessment sessions on behalf of clients that do not run
// the state machine themselves.
type Service struct {
	catalog *assessment.Catalog
	store   Store
	ttl     time.Duration

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

// WithTTL sets how long an idle session lives. Each accepted Answer or Back
// pushes the expiry out by ttl again. Zero keeps the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func New(catalog *assessment.Catalog, store Store, opts ...Option) *Service {
	s := &Service{
		catalog: catalog,
		store:   store,
		ttl:     defaultTTL,
		logger:  slog.Default(),
		tracer:  otel.Tracer("bigfive/session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session with the domain selected.
func (s *Service) Start(ctx context.Context, domain assessment.Domain) (*models.View, error) {
	ctx, span := s.tracer.Start(ctx, "session.Start", trace.WithAttributes(attribute.String("domain", string(domain))))
	defer span.End()

	machine, err := assessment.StartSession(s.catalog, domain)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Machine:   machine,
	}
	if err := s.store.Create(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create session")
	}
	s.metrics.IncStarted(string(domain))
	s.emitAudit(ctx, audit.EventSessionStarted, session.ID, string(domain))
	return view(session), nil
}

// Get returns the pending prompt of a session.
func (s *Service) Get(ctx context.Context, id string) (*models.View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()
	return view(session), nil
}

// Answer applies the input the current step expects.
func (s *Service) Answer(ctx context.Context, id string, req models.AnswerRequest) (*models.View, error) {
	ctx, span := s.tracer.Start(ctx, "session.Answer")
	defer span.End()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()

	step := session.Machine.Step()
	span.SetAttributes(attribute.String("step", string(step)))
	if err := apply(session.Machine, req); err != nil {
		s.metrics.IncRejected(string(step))
		s.logger.InfoContext(ctx, "session answer rejected",
			"session_id", id,
			"step", step,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return nil, err
	}
	s.touch(ctx, session)
	if session.Machine.Step() == assessment.StepComplete {
		s.completed(ctx, session)
	}
	return view(session), nil
}

// Back undoes the most recent answer.
func (s *Service) Back(ctx context.Context, id string) (*models.View, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()
	if err := session.Machine.Back(); err != nil {
		return nil, err
	}
	s.touch(ctx, session)
	return view(session), nil
}

// Result returns the sealed result of a completed session.
func (s *Service) Result(ctx context.Context, id string) (*assessment.DomainResult, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Mu.Lock()
	defer session.Mu.Unlock()
	return session.Machine.Result()
}

// Score replays a complete answer set without holding a session.
func (s *Service) Score(ctx context.Context, domain assessment.Domain, answers assessment.Answers) (*assessment.DomainResult, error) {
	_, span := s.tracer.Start(ctx, "session.Score", trace.WithAttributes(attribute.String("domain", string(domain))))
	defer span.End()

	r, err := assessment.Score(s.catalog, domain, answers)
	if err != nil {
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}
	s.metrics.IncScored()
	return r, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "session id must be a UUID")
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found or expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load session")
	}
	return session, nil
}

// touch extends the session's idle deadline. Caller holds session.Mu.
func (s *Service) touch(ctx context.Context, session *models.Session) {
	if err := s.store.Touch(ctx, session.ID, requestcontext.Now(ctx).Add(s.ttl)); err != nil {
		s.logger.WarnContext(ctx, "session touch failed",
			"session_id", session.ID,
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}
}

func (s *Service) completed(ctx context.Context, session *models.Session) {
	r, err := session.Machine.Result()
	if err != nil {
		return
	}
	s.metrics.IncCompleted(string(r.Domain))
	s.emitAudit(ctx, audit.EventSessionCompleted, session.ID, r.Audit.Nonce)
}

// apply routes req to the transition of the current step.
func apply(m *assessment.Session, req models.AnswerRequest) error {
	step := m.Step()
	switch step {
	case assessment.StepSelectDomain:
		if req.Domain == "" {
			return expects(step, "domain")
		}
		d, err := assessment.ParseDomain(req.Domain)
		if err != nil {
			return err
		}
		return m.SelectDomain(d)
	case assessment.StepPicks, assessment.StepDrops, assessment.StepResolver:
		if req.Facets == nil {
			return expects(step, "facets")
		}
		switch step {
		case assessment.StepPicks:
			return m.SubmitPicks(req.Facets)
		case assessment.StepDrops:
			return m.SubmitDrops(req.Facets)
		default:
			return m.SubmitResolver(req.Facets)
		}
	case assessment.StepAccuracy:
		if req.Value == nil {
			return expects(step, "value")
		}
		return m.Rate(*req.Value)
	case assessment.StepConfirm:
		if req.Answer == "" {
			return expects(step, "answer")
		}
		a, err := assessment.ParseConfirmAnswer(req.Answer)
		if err != nil {
			return err
		}
		return m.Confirm(a)
	default:
		return dErrors.Newf(dErrors.CodeInvalidState, "session is %s", step)
	}
}

func expects(step assessment.Step, field string) error {
	return dErrors.Newf(dErrors.CodeBadRequest, "step %s expects %s", step, field)
}

func view(s *models.Session) *models.View {
	return &models.View{
		ID:        s.ID,
		ExpiresAt: s.ExpiresAt,
		Prompt:    s.Machine.Current(),
		Complete:  s.Machine.Step() == assessment.StepComplete,
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.AuditEvent, id, decision string) {
	requestID := middleware.GetRequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"session_id", id,
		"decision", decision,
		"log_type", "audit",
		"request_id", requestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   id,
		Action:    string(event),
		Decision:  decision,
		RequestID: requestID,
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "error", err, "request_id", requestID)
	}
}
