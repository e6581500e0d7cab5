// Package cards selects the five highlight cards shown for a completed suite:
// strongest trait, strongest risk, a conflict pair, a social trait and a
// values trait. Selection is deterministic and never repeats a facet.
package cards

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"bigfive/internal/assessment"
	"bigfive/internal/signals"
)

// Type identifies the card slot.
type Type string

const (
	TypeHigh     Type = "high"
	TypeLow      Type = "low"
	TypeConflict Type = "conflict"
	TypeSocial   Type = "social"
	TypeValues   Type = "values"
)

// FallbackRuleID marks the synthetic Pursuit vs Threat pair.
const FallbackRuleID = -1

// negative lists facets where a high score reads as a risk.
var negative = map[string]bool{
	"Anxiety":       true,
	"Anger":         true,
	"Depression":    true,
	"Immoderation":  true,
	"Vulnerability": true,
}

var (
	socialFacets = map[string]bool{"Trust": true, "Cooperation": true, "Friendliness": true, "Morality": true}
	valuesFacets = map[string]bool{"Morality": true, "Dutifulness": true}
)

var domainTraits = map[string]assessment.Domain{
	"openness":          assessment.DomainO,
	"conscientiousness": assessment.DomainC,
	"extraversion":      assessment.DomainE,
	"agreeableness":     assessment.DomainA,
	"neuroticism":       assessment.DomainN,
}

// IsNegative reports whether facet has negative valence.
func IsNegative(facet string) bool {
	return negative[facet]
}

// Pair identifies the two traits of a conflict card. ID is the rule index or
// FallbackRuleID.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	ID    int    `json:"id"`
	Rule  string `json:"rule,omitempty"`
}

// Card is one selected highlight.
type Card struct {
	Type        Type              `json:"type"`
	Facet       string            `json:"facet"`
	Domain      assessment.Domain `json:"domain,omitempty"`
	Bucket      assessment.Bucket `json:"bucket,omitempty"`
	Raw         *float64          `json:"raw,omitempty"`
	Description string            `json:"description"`
	Conflict    *Pair             `json:"conflict,omitempty"`
	LeftPct     *int              `json:"leftPct,omitempty"`
	RightPct    *int              `json:"rightPct,omitempty"`
	How         string            `json:"how,omitempty"`
	Helps       string            `json:"helps,omitempty"`
	Hurts       string            `json:"hurts,omitempty"`
	Tip         string            `json:"tip,omitempty"`
}

// FromSuite flattens a suite and selects its cards.
func FromSuite(cat *assessment.Catalog, s assessment.SuiteResult) []Card {
	return Select(s.Facets(cat))
}

// Select picks the five cards from the full facet set. Facets are expected in
// domain then catalog order; that order breaks every tie.
func Select(facets []assessment.Facet) []Card {
	sel := selector{facets: facets, used: make(map[string]bool, 5)}

	cards := make([]Card, 0, 5)
	if f, ok := sel.strongest(); ok {
		cards = append(cards, sel.facetCard(TypeHigh, f,
			fmt.Sprintf("You have strong %s that serves as a reliable foundation.", strings.ToLower(f.Name))))
	}
	if f, ok := sel.riskiest(); ok {
		cards = append(cards, sel.facetCard(TypeLow, f,
			fmt.Sprintf("Your %s may need attention, especially under pressure.", strings.ToLower(f.Name))))
	}
	cards = append(cards, sel.conflict())
	if f, ok := sel.social(); ok {
		cards = append(cards, sel.facetCard(TypeSocial, f,
			fmt.Sprintf("Your %s shapes how others experience you in relationships.", strings.ToLower(f.Name))))
	}
	if f, ok := sel.values(); ok {
		cards = append(cards, sel.facetCard(TypeValues, f,
			fmt.Sprintf("Your %s reflects your core boundaries and decision-making style.", strings.ToLower(f.Name))))
	}
	return cards
}

type selector struct {
	facets []assessment.Facet
	used   map[string]bool
}

func key(f assessment.Facet) string {
	return string(f.Domain) + ":" + f.Name
}

func (s *selector) facetCard(t Type, f assessment.Facet, desc string) Card {
	s.used[key(f)] = true
	raw := f.Raw
	return Card{
		Type:        t,
		Facet:       f.Name,
		Domain:      f.Domain,
		Bucket:      f.Bucket,
		Raw:         &raw,
		Description: desc,
	}
}

func (s *selector) unused(keep func(assessment.Facet) bool) []assessment.Facet {
	var out []assessment.Facet
	for _, f := range s.facets {
		if !s.used[key(f)] && keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// maxBy returns the first facet with the greatest score.
func maxBy(facets []assessment.Facet, score func(assessment.Facet) float64) (assessment.Facet, bool) {
	if len(facets) == 0 {
		return assessment.Facet{}, false
	}
	ranked := append([]assessment.Facet(nil), facets...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	return ranked[0], true
}

func zOf(f assessment.Facet) float64 {
	return signals.Z(f.Raw)
}

// strongest is the highest High facet with positive valence. Without one it
// takes the highest positive-valence facet in any bucket so the set stays
// complete.
func (s *selector) strongest() (assessment.Facet, bool) {
	highs := s.unused(func(f assessment.Facet) bool {
		return f.Bucket == assessment.BucketHigh && !negative[f.Name]
	})
	if f, ok := maxBy(highs, zOf); ok {
		return f, true
	}
	return maxBy(s.unused(func(f assessment.Facet) bool { return !negative[f.Name] }), zOf)
}

func risk(f assessment.Facet) float64 {
	if negative[f.Name] {
		return zOf(f)
	}
	return 1 - zOf(f)
}

func (s *selector) riskiest() (assessment.Facet, bool) {
	return maxBy(s.unused(func(assessment.Facet) bool { return true }), risk)
}

func (s *selector) social() (assessment.Facet, bool) {
	return maxBy(s.unused(func(f assessment.Facet) bool { return socialFacets[f.Name] }), func(f assessment.Facet) float64 {
		return math.Abs(zOf(f) - 0.5)
	})
}

func (s *selector) values() (assessment.Facet, bool) {
	if pref := s.unused(func(f assessment.Facet) bool { return valuesFacets[f.Name] }); len(pref) > 0 {
		return pref[0], true
	}
	return maxBy(s.unused(func(assessment.Facet) bool { return true }), func(f assessment.Facet) float64 {
		return math.Abs(f.Raw - 3)
	})
}

// domainMeans averages facet raws per domain; an absent domain reads 3.
func domainMeans(facets []assessment.Facet) signals.Means {
	sums := make(map[assessment.Domain]float64, 5)
	counts := make(map[assessment.Domain]int, 5)
	for _, f := range facets {
		sums[f.Domain] += f.Raw
		counts[f.Domain]++
	}
	mean := func(d assessment.Domain) float64 {
		if counts[d] == 0 {
			return 3
		}
		return sums[d] / float64(counts[d])
	}
	return signals.Means{
		O: mean(assessment.DomainO),
		C: mean(assessment.DomainC),
		E: mean(assessment.DomainE),
		A: mean(assessment.DomainA),
		N: mean(assessment.DomainN),
	}
}

func percent(v float64) int {
	return int(math.Floor(v*100 + 0.5))
}
