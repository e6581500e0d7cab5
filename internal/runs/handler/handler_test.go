package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
	"bigfive/internal/runs/handler/mocks"
	"bigfive/internal/runs/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type RunsHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	sealed  assessment.SuiteResult
}

func TestRunsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RunsHandlerSuite))
}

func (s *RunsHandlerSuite) SetupSuite() {
	s.sealed = assessmenttest.Suite(s.T(), assessment.DefaultCatalog(), assessmenttest.Mixed())
}

func (s *RunsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *RunsHandlerSuite) TestHandleSave() {
	s.Run("returns ok and hash", func() {
		s.service.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, suite assessment.SuiteResult) (string, error) {
				s.Equal(s.sealed.SuiteHash, suite.SuiteHash)
				s.Len(suite.Results, 5)
				return suite.SuiteHash, nil
			})

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs", models.SaveRequest{
			Hash:    s.sealed.SuiteHash,
			Results: s.sealed.Results,
		})
		rr := testutil.Serve(s.router, req)

		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		got := testutil.Decode[models.SaveResponse](s.T(), rr)
		s.True(got.OK)
		s.Equal(s.sealed.SuiteHash, got.Hash)
	})

	s.Run("empty results never reach the service", func() {
		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs", models.SaveRequest{}))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("malformed body is a bad request", func() {
		rr := testutil.Serve(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/v1/runs", `{"results":`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("seal mismatch is a validation error", func() {
		s.service.EXPECT().Save(gomock.Any(), gomock.Any()).
			Return("", dErrors.New(dErrors.CodeValidation, "suite hash does not match its results"))

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs", models.SaveRequest{Results: s.sealed.Results})
		rr := testutil.Serve(s.router, req)
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *RunsHandlerSuite) TestHandleGet() {
	s.Run("returns the stored suite", func() {
		s.service.EXPECT().Get(gomock.Any(), s.sealed.SuiteHash).Return(&s.sealed, nil)

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/runs?hash="+s.sealed.SuiteHash, nil))

		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.Decode[models.GetResponse](s.T(), rr)
		s.Equal(s.sealed.SuiteHash, got.Results.SuiteHash)
		v, err := assessment.VerifySuite(got.Results)
		s.Require().NoError(err)
		s.True(v.Valid)
	})

	s.Run("absent run is 404", func() {
		hash := strings.Repeat("f", 64)
		s.service.EXPECT().Get(gomock.Any(), hash).Return(nil, dErrors.New(dErrors.CodeNotFound, "run not found"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/runs?hash="+hash, nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("store outage is 503", func() {
		s.service.EXPECT().Get(gomock.Any(), s.sealed.SuiteHash).
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "result store unavailable"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/runs?hash="+s.sealed.SuiteHash, nil))
		testutil.AssertError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})
}

func (s *RunsHandlerSuite) TestHandleSummary() {
	s.service.EXPECT().Summary(gomock.Any(), s.sealed.SuiteHash).
		Return(&models.Summary{SuiteHash: s.sealed.SuiteHash}, nil)

	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/runs/"+s.sealed.SuiteHash+"/summary", nil))

	s.Require().Equal(http.StatusOK, rr.Code)
	got := testutil.Decode[models.Summary](s.T(), rr)
	s.Equal(s.sealed.SuiteHash, got.SuiteHash)
}

func (s *RunsHandlerSuite) TestHandleVerify() {
	s.Run("domain mismatch is reported with 200", func() {
		s.service.EXPECT().VerifyDomain(gomock.Any(), gomock.Any()).
			Return(assessment.Verification{Valid: false, Expected: "a", Actual: "b"}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/verify/domain",
			models.VerifyDomainRequest{Result: s.sealed.Results[0].Payload})
		rr := testutil.Serve(s.router, req)

		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.Decode[assessment.Verification](s.T(), rr)
		s.False(got.Valid)
		s.Equal("a", got.Expected)
		s.Equal("b", got.Actual)
	})

	s.Run("domain without a domain field is rejected", func() {
		rr := testutil.Serve(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/v1/verify/domain", `{"result":{}}`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("suite verifies", func() {
		s.service.EXPECT().VerifySuite(gomock.Any(), gomock.Any()).
			Return(assessment.Verification{Valid: true, Expected: s.sealed.SuiteHash, Actual: s.sealed.SuiteHash}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/verify/suite", models.VerifySuiteRequest{Suite: s.sealed})
		rr := testutil.Serve(s.router, req)

		s.Require().Equal(http.StatusOK, rr.Code)
		s.True(testutil.Decode[assessment.Verification](s.T(), rr).Valid)
	})
}
