package who

import (
	"regexp"
	"strings"

	"bigfive/internal/assessment"
)

// preferredC are the Conscientiousness levers kept in the strengths list.
var preferredC = []string{"Self-Efficacy", "Orderliness", "Self-Discipline", "Cautiousness"}

const maxSentenceWords = 16

var (
	startsWithYou = regexp.MustCompile(`^You\b`)
	dashes        = strings.NewReplacer("–", "—")
	badEnd        = map[string]bool{
		"and": true, "or": true, "but": true, "for": true, "to": true, "of": true, "in": true,
		"on": true, "at": true, "by": true, "with": true, "from": true, "as": true, "than": true,
		"that": true, "which": true, "because": true, "so": true, "if": true, "while": true,
		"when": true, "although": true,
	}
)

// Strength reads as High outside N and Low inside N; risk is the reverse.
func (v *view) isStrength(r ranked) bool {
	b := v.state(r.domain, r.facet)
	if r.domain == assessment.DomainN {
		return b == assessment.BucketLow
	}
	return b == assessment.BucketHigh
}

func (v *view) isRisk(r ranked) bool {
	b := v.state(r.domain, r.facet)
	if r.domain == assessment.DomainN {
		return b == assessment.BucketHigh
	}
	return b == assessment.BucketLow
}

func (v *view) isMedium(r ranked) bool {
	return v.state(r.domain, r.facet) == assessment.BucketMedium
}

func (v *view) filter(keep func(ranked) bool) []ranked {
	var out []ranked
	for _, r := range v.ranked {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (v *view) label(r ranked, b assessment.Bucket) string {
	name := strings.ToLower(r.facet)
	if r.domain == assessment.DomainN {
		switch b {
		case assessment.BucketLow:
			return "low " + name + " (Neuroticism)"
		case assessment.BucketHigh:
			return "high " + name + " (Neuroticism)"
		}
		return name + " (Neuroticism)"
	}
	return name + " (" + v.domainTag(r.domain) + ")"
}

// strengthItems orders strengths with non-C facets first, then at most four
// preferred C facets, or the top three C facets when none is preferred.
func (v *view) strengthItems() []ranked {
	all := v.filter(v.isStrength)

	var nonC, restC, picked []ranked
	for _, r := range all {
		if r.domain == assessment.DomainC {
			restC = append(restC, r)
		} else {
			nonC = append(nonC, r)
		}
	}
	for _, name := range preferredC {
		for _, r := range restC {
			if r.facet == name {
				picked = append(picked, r)
				break
			}
		}
	}
	if len(picked) == 0 {
		picked = restC[:min(3, len(restC))]
	}
	return append(nonC, picked...)
}

func (v *view) lists() Lists {
	out := Lists{Strengths: []string{}, Risks: []string{}, Mediums: []string{}}
	for _, r := range v.strengthItems() {
		out.Strengths = append(out.Strengths, v.label(r, v.state(r.domain, r.facet)))
	}
	for _, r := range v.filter(v.isRisk) {
		out.Risks = append(out.Risks, v.label(r, v.state(r.domain, r.facet)))
	}
	for _, r := range v.filter(v.isMedium) {
		out.Mediums = append(out.Mediums, v.label(r, assessment.BucketMedium))
	}
	return out
}

func (v *view) listSentences() Lists {
	out := Lists{Strengths: []string{}, Risks: []string{}, Mediums: []string{}}
	for _, r := range v.filter(v.isStrength) {
		out.Strengths = append(out.Strengths, v.sentence(r, v.state(r.domain, r.facet)))
	}
	for _, r := range v.filter(v.isRisk) {
		out.Risks = append(out.Risks, v.sentence(r, v.state(r.domain, r.facet)))
	}
	for _, r := range v.filter(v.isMedium) {
		out.Mediums = append(out.Mediums, v.sentence(r, assessment.BucketMedium))
	}
	return out
}

// sentence trims the first sentence of a facet interpretation to at most
// sixteen words, drops dangling connectives and addresses the reader.
func (v *view) sentence(r ranked, b assessment.Bucket) string {
	interp := v.interpretation(r.facet, b)
	if interp == "" {
		return v.label(r, b)
	}
	base := strings.TrimSpace(dashes.Replace(firstSentences(interp, 1)))

	words := strings.Fields(base)
	words = words[:min(maxSentenceWords, len(words))]
	for len(words) > 0 && badEnd[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	s := strings.Join(words, " ")
	if s != "" {
		s = strings.ToUpper(s[:1]) + s[1:]
	}
	if !startsWithYou.MatchString(s) {
		if s != "" {
			s = strings.ToLower(s[:1]) + s[1:]
		}
		s = "You " + s
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return s
}
