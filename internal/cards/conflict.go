package cards

import (
	"fmt"
	"strings"

	"bigfive/internal/assessment"
	"bigfive/internal/signals"
)

const fallbackDescription = "How: gas vs brake.\nHelps: fast probes, crisis work.\nHurts: long ambiguity.\nTry: pause 2 counts; set a binary next step."

// Match is the winning conflict rule and the z-values of its sides.
type Match struct {
	Index int
	Rule  Rule
	Score float64
	A, B  float64
}

// traitZ resolves a rule trait to a z-value: domain names read the domain
// mean, facet names match case-insensitively.
func (s *selector) traitZ(trait string, means signals.Means) (float64, bool) {
	if d, ok := domainTraits[strings.ToLower(trait)]; ok {
		return signals.Z(means.Get(d)), true
	}
	for _, f := range s.facets {
		if strings.EqualFold(f.Name, trait) {
			return zOf(f), true
		}
	}
	return 0, false
}

func sideScore(v float64, side Side, tier Tier) (float64, bool) {
	score := v
	if side.Polarity == Down {
		score = 1 - v
	}
	return score, score >= tier.Threshold()
}

// bestRule evaluates the catalog at strict tiers, then again with H sides
// relaxed to M. The first rule wins ties.
func (s *selector) bestRule() (Match, bool) {
	means := domainMeans(s.facets)
	for _, relaxed := range []bool{false, true} {
		var best Match
		found := false
		for i, r := range Rules {
			a, okA := s.traitZ(r.A.Trait, means)
			b, okB := s.traitZ(r.B.Trait, means)
			if !okA || !okB {
				continue
			}
			ta, tb := r.A.Tier, r.B.Tier
			if relaxed {
				ta, tb = ta.relax(), tb.relax()
			}
			sa, passA := sideScore(a, r.A, ta)
			sb, passB := sideScore(b, r.B, tb)
			if !passA || !passB {
				continue
			}
			score := min(sa, sb)
			if !found || score > best.Score {
				best = Match{Index: i, Rule: r, Score: score, A: a, B: b}
				found = true
			}
		}
		if found {
			return best, true
		}
	}
	return Match{}, false
}

// BestRule exposes the conflict match for a facet set.
func BestRule(facets []assessment.Facet) (Match, bool) {
	s := selector{facets: facets}
	return s.bestRule()
}

func (s *selector) conflict() Card {
	if m, ok := s.bestRule(); ok {
		left, right := percent(m.A), percent(m.B)
		c := m.Rule.Copy
		return Card{
			Type:        TypeConflict,
			Facet:       fmt.Sprintf("Conflict Pair — %s × %s", m.Rule.A.Trait, m.Rule.B.Trait),
			Description: fmt.Sprintf("How: %s\nHelps: %s\nHurts: %s\nTip: %s", c.How, c.Helps, c.Hurts, c.Tip),
			Conflict:    &Pair{Left: m.Rule.A.Trait, Right: m.Rule.B.Trait, ID: m.Index, Rule: m.Rule.ID},
			LeftPct:     &left,
			RightPct:    &right,
			How:         c.How,
			Helps:       c.Helps,
			Hurts:       c.Hurts,
			Tip:         c.Tip,
		}
	}

	means := domainMeans(s.facets)
	p := signals.Z(0.40*means.O + 0.35*means.E + 0.25*means.C)
	t := signals.Z(means.N)
	left, right := percent(p), percent(t)
	return Card{
		Type:        TypeConflict,
		Facet:       "Conflict Pair — Pursuit × Threat",
		Description: fallbackDescription,
		Conflict:    &Pair{Left: "Pursuit", Right: "Threat", ID: FallbackRuleID},
		LeftPct:     &left,
		RightPct:    &right,
	}
}
