package signals

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"bigfive/internal/assessment"
	"bigfive/internal/assessment/assessmenttest"
	"bigfive/pkg/canonical"
)

type HandoffSuite struct {
	suite.Suite
	cat *assessment.Catalog
}

func TestHandoffSuite(t *testing.T) {
	suite.Run(t, new(HandoffSuite))
}

func (s *HandoffSuite) SetupSuite() {
	s.cat = assessment.DefaultCatalog()
}

func (s *HandoffSuite) TestNeutralSuite() {
	res := assessmenttest.Suite(s.T(), s.cat, assessmenttest.Constant(3))

	h, err := BuildHandoff(s.cat, res)
	s.Require().NoError(err)

	s.Equal("Handoff", h.Type)
	s.Equal(HandoffVersion, h.Version)
	s.Equal(Means{O: 3, C: 3, E: 3, A: 3, N: 3}, h.Means)
	s.Equal(LeadBalanced, h.Indices.Lead)
	s.True(canonical.IsDigest(h.Hash))

	s.Require().Len(h.Items, 5)
	for i, item := range h.Items {
		s.Equal(assessment.DomainOrder[i], item.Domain)
		// all facets sit at the midpoint, so the first catalog facet wins
		s.Equal(s.cat.Facets(item.Domain)[0], item.Facet)
	}
	s.Equal("Keep Imagination steady; it holds the middle for you.", h.Items[0].Line)
}

func (s *HandoffSuite) TestLeadSelectsTemplate() {
	res := assessmenttest.Suite(s.T(), s.cat, assessmenttest.PerDomain(map[assessment.Domain]int{
		assessment.DomainN: 5,
		assessment.DomainO: 1,
		assessment.DomainC: 1,
		assessment.DomainE: 1,
	}))

	h, err := BuildHandoff(s.cat, res)
	s.Require().NoError(err)
	s.Equal(LeadThreat, h.Indices.Lead)
	s.InDelta(1.0, h.Indices.T, eps)
	s.InDelta(-1.0, h.Indices.Delta, eps)
	s.Equal("Guard Anxiety; it is where pressure lands first.", h.Items[4].Line)
}

func (s *HandoffSuite) TestChecksum() {
	res := assessmenttest.Suite(s.T(), s.cat, assessmenttest.Mixed())

	s.Run("deterministic", func() {
		a, err := BuildHandoff(s.cat, res)
		s.Require().NoError(err)
		b, err := BuildHandoff(s.cat, res)
		s.Require().NoError(err)
		s.Equal(a.Hash, b.Hash)
	})

	s.Run("covers the suite hash", func() {
		a, err := BuildHandoff(s.cat, res)
		s.Require().NoError(err)
		other := res
		other.SuiteHash = "0000000000000000000000000000000000000000000000000000000000000000"
		b, err := BuildHandoff(s.cat, other)
		s.Require().NoError(err)
		s.NotEqual(a.Hash, b.Hash)
	})

	s.Run("matches the canonical input", func() {
		h, err := BuildHandoff(s.cat, res)
		s.Require().NoError(err)
		lines := make([]string, 0, len(h.Items))
		for _, item := range h.Items {
			lines = append(lines, item.Line)
		}
		want, err := canonical.Hash(map[string]any{
			"domain_means": h.Means,
			"topFacet":     lines,
			"indices":      h.Indices,
			"suiteHash":    res.SuiteHash,
		})
		s.Require().NoError(err)
		s.Equal(want, h.Hash)
	})
}

func (s *HandoffSuite) TestItemTags() {
	h, err := BuildHandoff(s.cat, assessmenttest.Suite(s.T(), s.cat, assessmenttest.Mixed()))
	s.Require().NoError(err)
	for _, item := range h.Items {
		fc, ok := s.cat.Facet(item.Facet)
		s.Require().True(ok, item.Facet)
		s.NotEmpty(item.Tag)
		s.Equal(fc.Hint, item.Tag, item.Facet)
	}

	s.Run("unknown facet has no tag", func() {
		s.Empty(facetTag(s.cat, "Not A Facet"))
		s.Empty(facetTag(s.cat, ""))
	})
}

func (s *HandoffSuite) TestTopFacet() {
	facets := []string{"a", "b", "c"}
	s.Equal("b", topFacet(facets, map[string]float64{"a": 3.5, "b": 1.5, "c": 4.5}))
	s.Equal("a", topFacet(facets, map[string]float64{"a": 4, "b": 2, "c": 3}))
	s.Equal("", topFacet(facets, nil))
}

func (s *HandoffSuite) TestRawMeanDefaultsToMidpoint() {
	s.Equal(3.0, rawMean([]string{"a"}, nil))
	s.Equal(2.5, rawMean([]string{"a", "b"}, map[string]float64{"a": 2, "b": 3}))
}
