//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
	"bigfive/internal/platform/postgres"
	"bigfive/internal/runs/store"
	"bigfive/pkg/canonical"
	"bigfive/pkg/testutil/containers"
)

type BackendSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	redis  *containers.RedisContainer
	sealed assessment.SuiteResult
}

func TestBackendSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(BackendSuite))
}

func (s *BackendSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.pg = mgr.GetPostgres(s.T())
	s.redis = mgr.GetRedis(s.T())
	s.Require().NoError(postgres.MigrateRuns(context.Background(), s.pg.DB, store.DefaultTable))
	s.sealed = assessmenttest.Suite(s.T(), assessment.DefaultCatalog(), assessmenttest.Mixed())
}

func (s *BackendSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.pg.Truncate(ctx, store.DefaultTable))
	s.Require().NoError(s.redis.FlushPrefix(ctx, store.RedisKey("")))
}

func (s *BackendSuite) backends() map[string]store.Backend {
	return map[string]store.Backend{
		"postgres": store.NewPostgresStore(s.pg.DB, ""),
		"redis":    store.NewRedisStore(s.redis.Client),
	}
}

func (s *BackendSuite) TestWriteOnceRoundTrip() {
	ctx := context.Background()
	for name, b := range s.backends() {
		s.Run(name, func() {
			_, err := b.Get(ctx, s.sealed.SuiteHash)
			s.ErrorIs(err, store.ErrNotFound)

			s.Require().NoError(b.Save(ctx, s.sealed.SuiteHash, s.sealed))

			tampered := s.sealed
			tampered.Results = tampered.Results[:2]
			s.Require().NoError(b.Save(ctx, s.sealed.SuiteHash, tampered))

			got, err := b.Get(ctx, s.sealed.SuiteHash)
			s.Require().NoError(err)
			s.Len(got.Results, len(assessment.DomainOrder))

			v, err := assessment.VerifySuite(*got)
			s.Require().NoError(err)
			s.True(v.Valid, "stored suite must still verify after a round trip")

			want, err := canonical.String(s.sealed)
			s.Require().NoError(err)
			have, err := canonical.String(*got)
			s.Require().NoError(err)
			s.Equal(want, have)
		})
	}
}
