package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"bigfive/internal/narrative/handler/mocks"
	"bigfive/internal/narrative/models"
	dErrors "bigfive/pkg/domain-errors"
	"bigfive/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type NarrativeHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestNarrativeHandlerSuite(t *testing.T) {
	suite.Run(t, new(NarrativeHandlerSuite))
}

func (s *NarrativeHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *NarrativeHandlerSuite) TestHandleNarrative() {
	hash := strings.Repeat("ab", 32)

	s.Run("returns lines with source and cache flag", func() {
		s.service.EXPECT().ForHash(gomock.Any(), hash).Return(&models.Result{
			Lines:  []string{"line one", "line two"},
			Source: models.SourceFallback,
			Cached: true,
		}, nil)

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs/"+hash+"/narrative", nil))

		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.Decode[models.Result](s.T(), rr)
		s.Equal([]string{"line one", "line two"}, got.Lines)
		s.Equal(models.SourceFallback, got.Source)
		s.True(got.Cached)
	})

	s.Run("unknown suite is 404", func() {
		s.service.EXPECT().ForHash(gomock.Any(), hash).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "run not found"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs/"+hash+"/narrative", nil))

		testutil.AssertError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("wait timeout is 504", func() {
		s.service.EXPECT().ForHash(gomock.Any(), hash).
			Return(nil, dErrors.New(dErrors.CodeTimeout, "Profile generation timed out"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs/"+hash+"/narrative", nil))

		testutil.AssertError(s.T(), rr, http.StatusGatewayTimeout, string(dErrors.CodeTimeout))
	})

	s.Run("internal errors hide their description", func() {
		s.service.EXPECT().ForHash(gomock.Any(), hash).
			Return(nil, dErrors.New(dErrors.CodeInternal, "redis exploded"))

		rr := testutil.Serve(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/v1/runs/"+hash+"/narrative", nil))

		testutil.AssertError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
		s.NotContains(rr.Body.String(), "redis")
	})
}
