package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
	"bigfive/internal/session/handler/mocks"
	"bigfive/internal/session/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type SessionHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestSessionHandlerSuite(t *testing.T) {
	suite.Run(t, new(SessionHandlerSuite))
}

func (s *SessionHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

const sessionID = "5f0c8f51-7f7e-4d43-9c35-1f0b0c8f1c11"

func (s *SessionHandlerSuite) TestHandleStart() {
	s.Run("normalizes the domain and returns 201", func() {
		s.service.EXPECT().Start(gomock.Any(), assessment.DomainO).
			Return(&models.View{ID: sessionID, Prompt: assessment.Prompt{Step: assessment.StepPicks, Domain: assessment.DomainO}}, nil)

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/sessions", map[string]string{"domain": "o"}))

		s.Require().Equal(http.StatusCreated, rr.Code)
		got := testutil.Decode[models.View](s.T(), rr)
		s.Equal(sessionID, got.ID)
		s.Equal(assessment.StepPicks, got.Prompt.Step)
	})

	s.Run("unknown domain is a validation error", func() {
		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/sessions", map[string]string{"domain": "X"}))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})
}

func (s *SessionHandlerSuite) TestHandleAnswer() {
	s.Run("passes the rating through", func() {
		s.service.EXPECT().Answer(gomock.Any(), sessionID, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, req models.AnswerRequest) (*models.View, error) {
				s.Require().NotNil(req.Value)
				s.Equal(4, *req.Value)
				return &models.View{ID: sessionID}, nil
			})

		rr := testutil.Serve(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/v1/sessions/"+sessionID+"/answer", `{"value":4}`))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("two inputs at once are a bad request", func() {
		rr := testutil.Serve(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/v1/sessions/"+sessionID+"/answer", `{"value":4,"answer":"Yes"}`))
		testutil.AssertError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("wrong step is a conflict", func() {
		s.service.EXPECT().Answer(gomock.Any(), sessionID, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "session is complete"))

		rr := testutil.Serve(s.router, testutil.NewRawRequest(s.T(), http.MethodPost, "/v1/sessions/"+sessionID+"/answer", `{"answer":"Yes"}`))
		testutil.AssertError(s.T(), rr, http.StatusConflict, string(dErrors.CodeInvalidState))
	})
}

func (s *SessionHandlerSuite) TestHandleResult() {
	cat := assessment.DefaultCatalog()
	r := assessmenttest.Domain(s.T(), cat, assessment.DomainA, assessmenttest.Mixed())

	s.Run("returns the sealed result", func() {
		s.service.EXPECT().Result(gomock.Any(), sessionID).Return(&r, nil)

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/sessions/"+sessionID+"/result", nil))

		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.Decode[assessment.DomainResult](s.T(), rr)
		v, err := assessment.VerifyDomain(*got)
		s.Require().NoError(err)
		s.True(v.Valid, "the result must survive the wire unchanged")
	})

	s.Run("expired session is 404", func() {
		s.service.EXPECT().Result(gomock.Any(), sessionID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "session not found or expired"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/v1/sessions/"+sessionID+"/result", nil))
		testutil.AssertError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})
}

func (s *SessionHandlerSuite) TestHandleScore() {
	cat := assessment.DefaultCatalog()
	answers := assessmenttest.Answers(cat, assessment.DomainN, assessmenttest.Constant(3))
	r := assessmenttest.Domain(s.T(), cat, assessment.DomainN, assessmenttest.Constant(3))
	s.service.EXPECT().Score(gomock.Any(), assessment.DomainN, gomock.Any()).Return(&r, nil)

	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/score", models.ScoreRequest{Domain: "n", Answers: answers}))

	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(r.Audit.Nonce, testutil.Decode[assessment.DomainResult](s.T(), rr).Audit.Nonce)
}

func (s *SessionHandlerSuite) TestHandleBack() {
	s.service.EXPECT().Back(gomock.Any(), sessionID).Return(&models.View{ID: sessionID, Prompt: assessment.Prompt{Step: assessment.StepSelectDomain}}, nil)

	rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/sessions/"+sessionID+"/back", nil))

	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal(assessment.StepSelectDomain, testutil.Decode[models.View](s.T(), rr).Prompt.Step)
}
