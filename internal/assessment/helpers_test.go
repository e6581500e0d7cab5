package assessment

import "testing"

// answersFor builds a complete answer set that picks the first three facets,
// drops the second and third, resolves with the first two shortlist entries
// and rates every item with rate.
func answersFor(t *testing.T, cat *Catalog, d Domain, rate func(AccuracyItem) int) Answers {
	t.Helper()
	facets := cat.Facets(d)
	picks := facets[:3]
	drops := facets[1:3]
	p := NewIndicators(facets, picks)
	m := NewIndicators(facets, drops)
	short := Shortlist(facets, p, m)
	resolver := short[:ResolverPicks(len(short))]
	prior := Priors(facets, p, NewIndicators(facets, resolver), m)

	a := Answers{Picks: picks, Drops: drops, Resolver: resolver}
	for _, item := range AccuracyQueue(facets, prior) {
		a.Ratings = append(a.Ratings, rate(item))
	}
	return a
}

// openness is the worked example: picks Imagination, Intellect, Liberalism,
// drops Intellect and Liberalism, resolves Emotionality and Artistic Interests.
func openness() Answers {
	return Answers{
		Picks:    []string{"Imagination", "Intellect", "Liberalism"},
		Drops:    []string{"Intellect", "Liberalism"},
		Resolver: []string{"Emotionality", "Artistic Interests"},
		// Imagination(1) Artistic(2) Emotionality(2) Adventurousness(2) Intellect(2) Liberalism(2)
		Ratings: []int{5, 4, 4, 4, 3, 3, 3, 2, 2, 4, 4},
	}
}

func completeSuite(t *testing.T, cat *Catalog) []DomainResult {
	t.Helper()
	var out []DomainResult
	for i, d := range DomainOrder {
		a := answersFor(t, cat, d, func(item AccuracyItem) int {
			return 1 + (i+item.Index+len(item.Facet))%5
		})
		r, err := Score(cat, d, a)
		if err != nil {
			t.Fatalf("score %s: %v", d, err)
		}
		out = append(out, *r)
	}
	return out
}
