package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
	"bigfive/internal/runs/service/mocks"
	"bigfive/internal/runs/store"
	"bigfive/internal/signals"
	dErrors "bigfive/pkg/domain-errors"
	audit "bigfive/pkg/platform/audit"
	"bigfive/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

type RunsServiceSuite struct {
	suite.Suite
	ctx    context.Context
	cat    *assessment.Catalog
	sealed assessment.SuiteResult
	logger *slog.Logger
}

func TestRunsServiceSuite(t *testing.T) {
	suite.Run(t, new(RunsServiceSuite))
}

func (s *RunsServiceSuite) SetupSuite() {
	s.ctx = context.Background()
	s.cat = assessment.DefaultCatalog()
	s.sealed = assessmenttest.Suite(s.T(), s.cat, assessmenttest.Mixed())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// resealed returns the suite with one derived field changed and every seal
// recomputed, so only a replay can tell.
func (s *RunsServiceSuite) resealed() assessment.SuiteResult {
	out := s.sealed
	out.Results = append([]assessment.SuiteEntry(nil), s.sealed.Results...)
	p := out.Results[0].Payload
	p.Final.DomainMeanPct += 10
	nonce, err := p.Nonce()
	s.Require().NoError(err)
	p.Audit = &assessment.Audit{Nonce: nonce}
	out.Results[0].Payload = p
	out.SuiteHash = ""
	return out
}

func (s *RunsServiceSuite) TestSave() {
	s.Run("stores and audits a sealed suite", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		pub := mocks.NewMockAuditPublisher(ctrl)
		svc := New(s.cat, st, WithLogger(s.logger), WithAuditPublisher(pub))

		st.EXPECT().Save(gomock.Any(), s.sealed.SuiteHash, s.sealed).Return(nil)
		pub.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventSuiteSealed), e.Action)
			s.Equal(s.sealed.SuiteHash, e.Subject)
			return nil
		})

		hash, err := svc.Save(s.ctx, s.sealed)
		s.Require().NoError(err)
		s.Equal(s.sealed.SuiteHash, hash)
	})

	s.Run("missing hash is computed", func() {
		svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))
		unsealed := s.sealed
		unsealed.SuiteHash = ""

		hash, err := svc.Save(s.ctx, unsealed)
		s.Require().NoError(err)
		s.Equal(s.sealed.SuiteHash, hash)

		got, err := svc.Get(s.ctx, hash)
		s.Require().NoError(err)
		s.Equal(hash, got.SuiteHash)
	})

	s.Run("saving twice is idempotent", func() {
		svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))
		_, err := svc.Save(s.ctx, s.sealed)
		s.Require().NoError(err)
		_, err = svc.Save(s.ctx, s.sealed)
		s.Require().NoError(err)
	})

	s.Run("hash mismatch is rejected and audited", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		pub := mocks.NewMockAuditPublisher(ctrl)
		svc := New(s.cat, st, WithLogger(s.logger), WithAuditPublisher(pub))

		wrong := s.sealed
		wrong.SuiteHash = strings.Repeat("0", 64)
		pub.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventSuiteRejected), e.Action)
			s.NotEmpty(e.Reason)
			return nil
		})

		_, err := svc.Save(s.ctx, wrong)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("tampered domain nonce is rejected", func() {
		svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))
		tampered := s.sealed
		tampered.Results = append([]assessment.SuiteEntry(nil), s.sealed.Results...)
		p := tampered.Results[2].Payload
		p.Final.DomainMeanRaw = 4.99
		tampered.Results[2].Payload = p

		_, err := svc.Save(s.ctx, tampered)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.Message(err), "nonce")
	})

	s.Run("recompute catches resealed derived fields", func() {
		forged := s.resealed()

		lenient := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))
		_, err := lenient.Save(s.ctx, forged)
		s.Require().NoError(err)

		strict := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger), WithRecompute(true))
		_, err = strict.Save(s.ctx, forged)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store outage is unavailable", func() {
		ctrl := gomock.NewController(s.T())
		st := mocks.NewMockStore(ctrl)
		svc := New(s.cat, st, WithLogger(s.logger))
		st.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.Join(sentinel.ErrUnavailable, errors.New("dial tcp: refused")))

		_, err := svc.Save(s.ctx, s.sealed)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *RunsServiceSuite) TestGet() {
	svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))

	s.Run("malformed hash is a bad request", func() {
		_, err := svc.Get(s.ctx, "not-a-hash")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

		_, err = svc.Get(s.ctx, strings.ToUpper(s.sealed.SuiteHash))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown hash is not found", func() {
		_, err := svc.Get(s.ctx, s.sealed.SuiteHash)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RunsServiceSuite) TestSummary() {
	svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))
	_, err := svc.Save(s.ctx, s.sealed)
	s.Require().NoError(err)

	sum, err := svc.Summary(s.ctx, s.sealed.SuiteHash)
	s.Require().NoError(err)

	s.Equal(s.sealed.SuiteHash, sum.SuiteHash)
	s.Equal(signals.Compute(signals.MeansFromSuite(s.sealed)), sum.Signals)
	s.Len(sum.Cards, 5)
	s.Require().NotNil(sum.Mirror)
	s.Len(sum.Mirror.Lines, 5)
	s.Require().NotNil(sum.Who)
	s.NotEmpty(sum.Who.Audit.Checksum)
	s.Require().NotNil(sum.Handoff)
	s.Len(sum.Handoff.Hash, 64)
	s.NotEmpty(sum.Snapshot)
}

func (s *RunsServiceSuite) TestVerify() {
	svc := New(s.cat, store.NewInMemoryStore(), WithLogger(s.logger))

	s.Run("domain round trip verifies", func() {
		v, err := svc.VerifyDomain(s.ctx, s.sealed.Results[0].Payload)
		s.Require().NoError(err)
		s.True(v.Valid)
		s.Equal(v.Expected, v.Actual)
	})

	s.Run("domain mismatch is a result, not an error", func() {
		p := s.sealed.Results[0].Payload
		p.Final.DomainMeanPct = 1
		v, err := svc.VerifyDomain(s.ctx, p)
		s.Require().NoError(err)
		s.False(v.Valid)
		s.NotEqual(v.Expected, v.Actual)
	})

	s.Run("suite round trip verifies", func() {
		v, err := svc.VerifySuite(s.ctx, s.sealed)
		s.Require().NoError(err)
		s.True(v.Valid)
	})

	s.Run("reordered suite does not verify", func() {
		swapped := s.sealed
		swapped.Results = append([]assessment.SuiteEntry(nil), s.sealed.Results...)
		swapped.Results[0], swapped.Results[1] = swapped.Results[1], swapped.Results[0]
		v, err := svc.VerifySuite(s.ctx, swapped)
		s.Require().NoError(err)
		s.False(v.Valid)
	})
}
