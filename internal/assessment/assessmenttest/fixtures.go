// Package assessmenttest builds sealed results for tests of packages that
// consume them.
package assessmenttest

import (
	"testing"

	"bigfive/internal/assessment"
)

// RateFunc returns the 1..5 rating for an accuracy item of domain d.
type RateFunc func(d assessment.Domain, item assessment.AccuracyItem) int

// Constant rates every item with v.
func Constant(v int) RateFunc {
	return func(assessment.Domain, assessment.AccuracyItem) int { return v }
}

// PerDomain rates every item of a domain with the value given for it,
// defaulting to 3.
func PerDomain(values map[assessment.Domain]int) RateFunc {
	return func(d assessment.Domain, _ assessment.AccuracyItem) int {
		if v, ok := values[d]; ok {
			return v
		}
		return 3
	}
}

// Mixed varies ratings by domain, facet and anchor.
func Mixed() RateFunc {
	return func(d assessment.Domain, item assessment.AccuracyItem) int {
		return 1 + (d.Index()+item.Index+len(item.Facet))%5
	}
}

// Answers picks the first three facets, drops the second and third, resolves
// with the leading shortlist entries and rates every queued item with rate.
func Answers(cat *assessment.Catalog, d assessment.Domain, rate RateFunc) assessment.Answers {
	facets := cat.Facets(d)
	picks := facets[:3]
	drops := facets[1:3]
	p := assessment.NewIndicators(facets, picks)
	m := assessment.NewIndicators(facets, drops)
	short := assessment.Shortlist(facets, p, m)
	resolver := short[:assessment.ResolverPicks(len(short))]
	prior := assessment.Priors(facets, p, assessment.NewIndicators(facets, resolver), m)

	a := assessment.Answers{Picks: picks, Drops: drops, Resolver: resolver}
	for _, item := range assessment.AccuracyQueue(facets, prior) {
		a.Ratings = append(a.Ratings, rate(d, item))
	}
	return a
}

// Domain scores a single domain.
func Domain(t testing.TB, cat *assessment.Catalog, d assessment.Domain, rate RateFunc) assessment.DomainResult {
	t.Helper()
	r, err := assessment.Score(cat, d, Answers(cat, d, rate))
	if err != nil {
		t.Fatalf("score %s: %v", d, err)
	}
	return *r
}

// Suite scores all five domains in canonical order and assembles the suite.
func Suite(t testing.TB, cat *assessment.Catalog, rate RateFunc) assessment.SuiteResult {
	t.Helper()
	results := make([]assessment.DomainResult, 0, len(assessment.DomainOrder))
	for _, d := range assessment.DomainOrder {
		results = append(results, Domain(t, cat, d, rate))
	}
	s, err := assessment.AssembleSuite(results)
	if err != nil {
		t.Fatalf("assemble suite: %v", err)
	}
	return *s
}
