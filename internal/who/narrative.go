package who

import (
	"fmt"
	"strings"
	"unicode"

	"bigfive/internal/assessment"
)

const maxNarrative = 14

// domainTag is the first word of a domain label, e.g. "Openness".
func (v *view) domainTag(d assessment.Domain) string {
	dc, ok := v.cat.Domain(d)
	if !ok {
		return string(d)
	}
	if i := strings.IndexByte(dc.Label, ' '); i > 0 {
		return dc.Label[:i]
	}
	return dc.Label
}

// firstSentences keeps the first n sentences, splitting on whitespace that
// follows a period.
func firstSentences(text string, n int) string {
	var parts []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' || i+1 >= len(text) || !unicode.IsSpace(rune(text[i+1])) {
			continue
		}
		parts = append(parts, text[start:i+1])
		j := i + 1
		for j < len(text) && unicode.IsSpace(rune(text[j])) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	if len(parts) == 0 {
		return ""
	}
	n = max(1, min(n, len(parts)))
	return strings.Join(parts[:n], " ")
}

func (v *view) interpretation(facet string, b assessment.Bucket) string {
	fc, ok := v.cat.Facet(facet)
	if !ok {
		return ""
	}
	switch b {
	case assessment.BucketHigh:
		return fc.Interpretation.High
	case assessment.BucketLow:
		return fc.Interpretation.Low
	default:
		return fc.Interpretation.Medium
	}
}

var domainCopy = map[assessment.Domain][3]string{
	// high, low, middle
	assessment.DomainO: {
		"Your %s is pronounced; you actively seek novelty, ideas, and change.",
		"Your %s is modest; you prefer proven methods and concrete, workable plans.",
		"Your %s is balanced; you mix fresh thinking with practical judgment.",
	},
	assessment.DomainC: {
		"Your %s is strong; structure, follow-through, and reliability are central to how you operate.",
		"Your %s is light; you move flexibly, dislike tight constraints, and work best with autonomy.",
		"Your %s is steady; you organize when it matters and keep room for flow.",
	},
	assessment.DomainE: {
		"Your %s is high; you draw energy from people, pace, and visible momentum.",
		"Your %s is low; you conserve energy, prefer depth over crowds, and choose focused settings.",
		"Your %s is moderate; you can engage widely or work quietly as needed.",
	},
	assessment.DomainA: {
		"Your %s is high; you lean toward harmony, good faith, and collaborative moves.",
		"Your %s is low; you prioritize candor and self-direction over smoothing edges.",
		"Your %s is balanced; you can cooperate without losing your stance.",
	},
	assessment.DomainN: {
		"Your %s runs high; feelings arrive fast and strong, and stress can bite quickly.",
		"Your %s runs low; you keep an even keel and recover quickly under pressure.",
		"Your %s is mid-range; emotions register, but rarely take the wheel.",
	},
}

func (v *view) describeDomain(d assessment.Domain) string {
	c := domainCopy[d]
	mean := v.means[d]
	tmpl := c[2]
	switch {
	case mean >= 4.0:
		tmpl = c[0]
	case mean <= 2.0:
		tmpl = c[1]
	}
	return fmt.Sprintf(tmpl, v.domainTag(d))
}

var stressCues = []struct {
	facet string
	text  string
}{
	{"Anxiety", "worry signals fire early"},
	{"Anger", "frustration spikes at blockers"},
	{"Vulnerability", "overload can freeze progress"},
	{"Depression", "mood can dip and dim drive"},
	{"Self-Consciousness", "self-judgment gets loud"},
	{"Immoderation", "quick relief can tempt"},
}

// narrative is the deterministic prose, capped at maxNarrative sentences.
func (v *view) narrative() []string {
	var out []string
	hi, lo := v.means[assessment.DomainO], v.means[assessment.DomainO]
	for _, d := range assessment.DomainOrder {
		hi = max(hi, v.means[d])
		lo = min(lo, v.means[d])
	}
	stability := 6 - v.means[assessment.DomainN]

	if hi-lo >= 1.0 {
		out = append(out, "You move through life with sharp contrasts. At your best, you bring strong fuel where it counts; at your weak points, you under-invest where structure and patience are needed.")
	} else {
		out = append(out, "You move through life with measured balance. You can bring strengths forward without overplaying them, and your softer spots rarely dominate.")
	}
	switch {
	case stability >= 3.5:
		out = append(out, "Under stress you stay composed and steady; pressure rarely knocks you off course.")
	case stability <= 2.5:
		out = append(out, "Under stress you can feel destabilized; spikes can pull you off your usual rhythm.")
	}

	for _, d := range assessment.DomainOrder {
		out = append(out, v.describeDomain(d))
	}

	out = append(out, v.interpersonal())
	out = append(out, v.workStyle())
	if s := v.decisions(); s != "" {
		out = append(out, s)
	}

	var bits []string
	for _, c := range stressCues {
		if v.state(assessment.DomainN, c.facet) == assessment.BucketHigh {
			bits = append(bits, c.text)
		}
	}
	if len(bits) > 0 {
		out = append(out, "Under strain "+strings.Join(bits[:min(3, len(bits))], ", ")+".")
	}

	for _, r := range v.ranked[:min(3, len(v.ranked))] {
		out = append(out, firstSentences(v.interpretation(r.facet, v.state(r.domain, r.facet)), 2))
	}

	if len(out) > maxNarrative {
		out = out[:maxNarrative]
	}
	return out
}

func (v *view) interpersonal() string {
	e, a := v.means[assessment.DomainE], v.means[assessment.DomainA]
	eHigh, eLow := e >= 4.0, e <= 2.0
	aHigh, aLow := a >= 4.0, a <= 2.0
	switch {
	case eHigh && aHigh:
		return "Interpersonally you come across as warm and energizing—quick to include, quick to encourage."
	case eHigh && aLow:
		return "Interpersonally you read as forceful and independent—comfortable taking the mic and stating hard truths."
	case eLow && aHigh:
		return "Interpersonally you are calm and considerate—selective with attention, easy to be around."
	case eLow && aLow:
		return "Interpersonally you favor autonomy and directness—reserved, self-contained, and succinct."
	default:
		return "Interpersonally you adapt—able to be visible when needed and quieter when depth matters."
	}
}

func (v *view) workStyle() string {
	cHigh := func(f string) bool { return v.state(assessment.DomainC, f) == assessment.BucketHigh }
	cLow := func(f string) bool { return v.state(assessment.DomainC, f) == assessment.BucketLow }
	mean := v.means[assessment.DomainC]

	switch {
	case cHigh("Self-Discipline") || cHigh("Orderliness") || mean >= 3.8:
		risk := "and you move once essentials are set"
		if cHigh("Cautiousness") {
			risk = "and you weigh risks carefully"
		}
		return fmt.Sprintf("At work you build dependable systems, maintain pace through friction, %s.", risk)
	case cLow("Orderliness") || mean <= 2.2:
		plus := "You protect room for spontaneity"
		if cHigh("Achievement-Striving") {
			plus = "You still push when goals excite you"
		}
		return fmt.Sprintf("At work you avoid rigid structure, preferring flexible lanes and just-in-time organization. %s.", plus)
	default:
		return "At work you balance plans with motion—enough structure to finish, enough flexibility to iterate."
	}
}

func (v *view) decisions() string {
	intellect := v.state(assessment.DomainO, "Intellect") == assessment.BucketHigh
	liberal := v.state(assessment.DomainO, "Liberalism") == assessment.BucketHigh
	cautious := v.state(assessment.DomainC, "Cautiousness") == assessment.BucketHigh

	switch {
	case intellect && cautious:
		return "In decisions you analyze models and downside, then commit with clear boundaries."
	case intellect:
		return "In decisions you reason quickly from principles and run fast experiments."
	case liberal && cautious:
		return "In decisions you challenge defaults, but proceed deliberately with safeguards."
	case liberal:
		return "In decisions you question conventions and open new options others miss."
	case cautious:
		return "In decisions you prefer measured steps, factoring risk and second-order effects."
	}
	return ""
}
