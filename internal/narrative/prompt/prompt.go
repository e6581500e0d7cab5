// Package prompt builds the system prompt and the user payload sent to the
// narrative generator.
package prompt

import (
	"strconv"
	"strings"

	"bigfive/internal/assessment"
	"bigfive/internal/narrative/models"
	"bigfive/internal/narrative/pipeline"
	"bigfive/pkg/canonical"
	"bigfive/pkg/tokentmpl"
)

const (
	tokCount  tokentmpl.Token = "count"
	tokMin    tokentmpl.Token = "min_chars"
	tokMax    tokentmpl.Token = "max_chars"
	tokBridge tokentmpl.Token = "bridge"
)

var allowed = []tokentmpl.Token{tokCount, tokMin, tokMax, tokBridge}

// systemRules are joined with single spaces in this order.
var systemRules = []string{
	"Goal: Generate exactly {count} sentences that mirror the user based on Big Five facet outputs.",
	`Style: Plain language, second-person ("You"), no jargon, balanced praise + risk, deterministic structure.`,
	"Inputs: Domain averages (O,C,E,A,S); Facet highs and lows; Predicates; Social traits (Friendliness, Cooperation, Morality).",
	"Rules:",
	`1) Strength Anchor: Use strongest high facet(s). Format: "You rely on [high facet] and [high facet], which makes you quick to [behavior]."`,
	`2) Risk/Friction: Use sharpest lows or strongest negative domain. Format: "But your [low facet] and [low facet] often [risk behavior], especially when [trigger]."`,
	`3) Domain Identity Pattern: Contrast two domains. Format: "You show a mix of [domain] and [domain], which makes you [contrast]."`,
	`4) Social Mirror: How others experience them. Format: "Others tend to see you as [high social trait], but they may also notice [low social drawback]."`,
	`5) Bridge to Results: Always end with a forward path. Format: "{bridge}"`,
	`Constraints: Always {count} sentences, each between {min_chars} and {max_chars} characters. No use of terms like "facet" or "domain" or psychometric jargon. Must mention at least 1 strength and 1 risk. Include a "how others see you" line. Include a bridge line to results. Deterministic: same inputs -> same output.`,
	`Output: Return ONLY a JSON object with a single "lines" array holding exactly {count} strings.`,
}

var templates = func() []*tokentmpl.Template {
	out := make([]*tokentmpl.Template, len(systemRules))
	for i, r := range systemRules {
		out[i] = tokentmpl.MustParse(r, allowed...)
	}
	return out
}()

// Prompt is a rendered system and user message pair.
type Prompt struct {
	System string
	User   string
}

// System renders the fixed system prompt.
func System() (string, error) {
	values := map[tokentmpl.Token]string{
		tokCount:  strconv.Itoa(models.LineCount),
		tokMin:    strconv.Itoa(models.MinLineLen),
		tokMax:    strconv.Itoa(models.MaxLineLen),
		tokBridge: pipeline.BridgeLine,
	}
	parts := make([]string, 0, len(templates))
	for _, t := range templates {
		s, err := t.Render(values)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

// Level is a coarse domain level for the payload.
type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

// LevelOfMean maps a domain mean: 4 and above is High, 2 and below is Low.
func LevelOfMean(mean float64) Level {
	switch {
	case mean >= 4:
		return LevelHigh
	case mean <= 2:
		return LevelLow
	default:
		return LevelMedium
	}
}

func invert(l Level) Level {
	switch l {
	case LevelHigh:
		return LevelLow
	case LevelLow:
		return LevelHigh
	default:
		return l
	}
}

// payloadFacets names the facets sent to the generator, keyed without
// spaces or hyphens.
var payloadFacets = []struct {
	key    string
	domain assessment.Domain
	facet  string
}{
	{"Imagination", assessment.DomainO, "Imagination"},
	{"ArtisticInterests", assessment.DomainO, "Artistic Interests"},
	{"Intellect", assessment.DomainO, "Intellect"},
	{"SelfEfficacy", assessment.DomainC, "Self-Efficacy"},
	{"Orderliness", assessment.DomainC, "Orderliness"},
	{"Dutifulness", assessment.DomainC, "Dutifulness"},
	{"AchievementStriving", assessment.DomainC, "Achievement-Striving"},
	{"SelfDiscipline", assessment.DomainC, "Self-Discipline"},
	{"Friendliness", assessment.DomainE, "Friendliness"},
	{"Gregariousness", assessment.DomainE, "Gregariousness"},
	{"Assertiveness", assessment.DomainE, "Assertiveness"},
	{"Morality", assessment.DomainA, "Morality"},
	{"Cooperation", assessment.DomainA, "Cooperation"},
	{"Anxiety", assessment.DomainN, "Anxiety"},
	{"Anger", assessment.DomainN, "Anger"},
}

// Payload is the user message. Stability (S) replaces Neuroticism.
type Payload struct {
	Domains    map[string]Level             `json:"domains"`
	Facets     map[string]assessment.Bucket `json:"facets"`
	Predicates pipeline.Predicates          `json:"predicates"`
}

// NewPayload builds the user payload from facts. Facets without a bucket
// are left out.
func NewPayload(f models.Facts) Payload {
	p := Payload{
		Domains: map[string]Level{
			"O": LevelOfMean(f.Mean(assessment.DomainO)),
			"C": LevelOfMean(f.Mean(assessment.DomainC)),
			"E": LevelOfMean(f.Mean(assessment.DomainE)),
			"A": LevelOfMean(f.Mean(assessment.DomainA)),
			"S": invert(LevelOfMean(f.Mean(assessment.DomainN))),
		},
		Facets:     make(map[string]assessment.Bucket, len(payloadFacets)),
		Predicates: pipeline.Derive(f),
	}
	for _, pf := range payloadFacets {
		if b := f.Bucket(pf.domain, pf.facet); b != "" {
			p.Facets[pf.key] = b
		}
	}
	return p
}

// Build renders both messages. The user message is canonical JSON so equal
// facts always produce the same bytes.
func Build(f models.Facts) (Prompt, error) {
	sys, err := System()
	if err != nil {
		return Prompt{}, err
	}
	user, err := canonical.String(NewPayload(f))
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: sys, User: user}, nil
}
