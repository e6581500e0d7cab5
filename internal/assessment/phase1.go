package assessment

import "sort"

const (
	// PickCount is how many facets Q1 selects.
	PickCount = 3
	// DropCount is how many Q1 picks Q2 discards.
	DropCount = 2
	// ResolverCount is the resolver pick size when the shortlist allows it.
	ResolverCount = 2

	maxShortlist = 4
	minShortlist = 2
)

// Indicators maps every facet of a domain to 0 or 1.
type Indicators map[string]int

// NewIndicators marks the selected facets with 1 and every other facet with 0.
func NewIndicators(facets, selected []string) Indicators {
	ind := make(Indicators, len(facets))
	for _, f := range facets {
		ind[f] = 0
	}
	for _, f := range selected {
		ind[f] = 1
	}
	return ind
}

// Selected returns the facets marked 1, in the order of facets.
func (ind Indicators) Selected(facets []string) []string {
	var out []string
	for _, f := range facets {
		if ind[f] == 1 {
			out = append(out, f)
		}
	}
	return out
}

// AmbiguityScore rates how little the triage picks say about a facet.
// Picked-then-dropped facets score highest, untouched facets next.
func AmbiguityScore(p, m int) float64 {
	s := 2*p - 2*m
	if s < 0 {
		s = -s
	}
	amb := 2 - float64(s)
	if p == 0 {
		amb += 0.5
	}
	if m == 1 {
		amb += 0.5
	}
	return amb
}

// Shortlist builds the resolver candidates: picked-and-dropped facets, then
// untouched facets, then the rest by ambiguity desc and catalog order, capped
// at four and backfilled to two in catalog order.
func Shortlist(facets []string, p, m Indicators) []string {
	index := catalogIndex(facets)
	seen := make(map[string]bool, len(facets))
	var list []string
	add := func(f string) {
		if !seen[f] {
			seen[f] = true
			list = append(list, f)
		}
	}

	for _, f := range facets {
		if p[f] == 1 && m[f] == 1 {
			add(f)
		}
	}
	for _, f := range facets {
		if p[f] == 0 && m[f] == 0 {
			add(f)
		}
	}

	var remaining []string
	for _, f := range facets {
		if !seen[f] {
			remaining = append(remaining, f)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		ai := AmbiguityScore(p[remaining[i]], m[remaining[i]])
		aj := AmbiguityScore(p[remaining[j]], m[remaining[j]])
		if ai != aj {
			return ai > aj
		}
		return index[remaining[i]] < index[remaining[j]]
	})
	for _, f := range remaining {
		add(f)
	}

	if len(list) > maxShortlist {
		list = list[:maxShortlist]
	}
	if len(list) < minShortlist {
		for _, f := range facets {
			if len(list) >= minShortlist {
				break
			}
			add(f)
		}
	}
	return list
}

// ResolverPicks is how many facets the resolver step must select.
func ResolverPicks(shortlistLen int) int {
	if shortlistLen < ResolverCount {
		return shortlistLen
	}
	return ResolverCount
}

// Prior is the directional signal of the triage picks: 2p + t - 2m.
func Prior(p, t, m int) int {
	return 2*p + t - 2*m
}

// Priors computes Prior for every facet.
func Priors(facets []string, p, t, m Indicators) map[string]int {
	out := make(map[string]int, len(facets))
	for _, f := range facets {
		out[f] = Prior(p[f], t[f], m[f])
	}
	return out
}

// AnchorBudget is the number of accuracy items a facet receives: one when the
// prior is already decisive, two otherwise.
func AnchorBudget(prior int) int {
	if prior >= 2 || prior <= -2 {
		return 1
	}
	return 2
}

// AccuracyItem is one queued accuracy prompt.
type AccuracyItem struct {
	Facet string `json:"facet"`
	Index int    `json:"idx"`
}

// AccuracyQueue lists budget[f] items per facet, facets in catalog order.
func AccuracyQueue(facets []string, prior map[string]int) []AccuracyItem {
	var q []AccuracyItem
	for _, f := range facets {
		for i := 0; i < AnchorBudget(prior[f]); i++ {
			q = append(q, AccuracyItem{Facet: f, Index: i})
		}
	}
	return q
}

// RawScores averages each facet's ratings to two decimals. A facet with no
// ratings gets 3.00; callers reject such input before sealing.
func RawScores(facets []string, answers []RatingAnswer) map[string]float64 {
	sums := make(map[string]int, len(facets))
	counts := make(map[string]int, len(facets))
	for _, a := range answers {
		sums[a.Facet] += a.Value
		counts[a.Facet]++
	}
	out := make(map[string]float64, len(facets))
	for _, f := range facets {
		if counts[f] == 0 {
			out[f] = 3.00
			continue
		}
		out[f] = Round2(float64(sums[f]) / float64(counts[f]))
	}
	return out
}

// nearHighUnsupported is a near-High raw score without prior support.
func nearHighUnsupported(raw float64, prior int) bool {
	return raw > 3.50 && raw < 4.00 && prior <= 0
}

// nearLowUnopposed is a near-Low raw score without prior opposition.
func nearLowUnopposed(raw float64, prior int) bool {
	return raw > 2.00 && raw < 2.50 && prior >= 0
}

// ConfirmerTriggered reports whether a facet needs a confirmation question.
func ConfirmerTriggered(raw float64, prior int) bool {
	return nearHighUnsupported(raw, prior) || nearLowUnopposed(raw, prior)
}

// ConfirmerTriggers lists the triggered facets in catalog order.
func ConfirmerTriggers(facets []string, raw map[string]float64, prior map[string]int) []string {
	var out []string
	for _, f := range facets {
		if ConfirmerTriggered(raw[f], prior[f]) {
			out = append(out, f)
		}
	}
	return out
}

func catalogIndex(facets []string) map[string]int {
	idx := make(map[string]int, len(facets))
	for i, f := range facets {
		idx[f] = i
	}
	return idx
}
