// Package mirror renders the five-line identity mirror: two strengths, two
// risks, a tilt, a social line and the bridge into the detailed cards.
package mirror

import (
	"fmt"
	"sort"
	"strings"

	"bigfive/internal/assessment"
	"bigfive/internal/cards"
	"bigfive/internal/signals"
	"bigfive/pkg/tokentmpl"
)

// Line counts and fallbacks.
const (
	LineCount = 5

	fallbackStrength = "follow-through"
	fallbackRisk     = "inconsistency"

	// positive facets above this z never read as risks
	riskCeiling = 0.4
)

// Fixed lines.
const (
	SocialLine = "Others tend to see you as confident and expressive, but they may notice sharp edges when cooperation is required."
	BridgeLine = "The 30 cards below break this into detail and show where to reinforce or rebalance."
)

// Tilt labels.
const (
	TiltDriveControl  = "high drive with careful control"
	TiltStructure     = "structure and security"
	TiltImagination   = "imagination over routine"
	TiltVolatileDrive = "drive with volatility"
	TiltBalanced      = "balanced preferences"
)

const (
	tokS1   tokentmpl.Token = "s1"
	tokS2   tokentmpl.Token = "s2"
	tokR1   tokentmpl.Token = "r1"
	tokR2   tokentmpl.Token = "r2"
	tokTilt tokentmpl.Token = "tilt"
)

var (
	strengthsTmpl = tokentmpl.MustParse("You rely on {s1} and {s2}, which makes you quick to move when the path is clear.", tokS1, tokS2)
	risksTmpl     = tokentmpl.MustParse("But your {r1} and {r2} can drain momentum, especially under pressure.", tokR1, tokR2)
	tiltTmpl      = tokentmpl.MustParse("You tilt toward {tilt}, which shapes how you start and finish work.", tokTilt)
)

// Input is what the mirror reads.
type Input struct {
	Means  signals.Means
	Facets []assessment.Facet
}

// FromSuite builds the mirror input of a sealed suite.
func FromSuite(cat *assessment.Catalog, s assessment.SuiteResult) Input {
	return Input{Means: signals.MeansFromSuite(s), Facets: s.Facets(cat)}
}

// Mirror is the rendered identity mirror with the picks behind it.
type Mirror struct {
	Lines     []string `json:"lines"`
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Tilt      string   `json:"tilt"`
}

// Build renders the mirror.
func Build(in Input) (*Mirror, error) {
	strengths := Strengths(in.Facets)
	risks := Risks(in.Facets)
	tilt := Tilt(in.Means)

	l1, err := strengthsTmpl.Render(map[tokentmpl.Token]string{tokS1: strengths[0], tokS2: strengths[1]})
	if err != nil {
		return nil, fmt.Errorf("render strengths: %w", err)
	}
	l2, err := risksTmpl.Render(map[tokentmpl.Token]string{tokR1: risks[0], tokR2: risks[1]})
	if err != nil {
		return nil, fmt.Errorf("render risks: %w", err)
	}
	l3, err := tiltTmpl.Render(map[tokentmpl.Token]string{tokTilt: tilt})
	if err != nil {
		return nil, fmt.Errorf("render tilt: %w", err)
	}

	return &Mirror{
		Lines:     []string{l1, l2, l3, SocialLine, BridgeLine},
		Strengths: strengths,
		Risks:     risks,
		Tilt:      tilt,
	}, nil
}

func strengthScore(f assessment.Facet) float64 {
	if cards.IsNegative(f.Name) {
		return 1 - signals.Z(f.Raw)
	}
	return signals.Z(f.Raw)
}

func riskScore(f assessment.Facet) float64 {
	if cards.IsNegative(f.Name) {
		return signals.Z(f.Raw)
	}
	return 1 - signals.Z(f.Raw)
}

func ranked(facets []assessment.Facet, score func(assessment.Facet) float64) []assessment.Facet {
	out := append([]assessment.Facet(nil), facets...)
	sort.SliceStable(out, func(i, j int) bool { return score(out[i]) > score(out[j]) })
	return out
}

// Strengths returns the two strongest facets in lower case. Negative-valence
// facets count as strengths when low.
func Strengths(facets []assessment.Facet) []string {
	out := make([]string, 0, 2)
	for _, f := range ranked(facets, strengthScore) {
		if len(out) == 2 {
			break
		}
		out = append(out, strings.ToLower(f.Name))
	}
	for len(out) < 2 {
		out = append(out, fallbackStrength)
	}
	return out
}

// Risks returns the two riskiest facets in lower case, keeping only
// negative-valence facets and low positives.
func Risks(facets []assessment.Facet) []string {
	out := make([]string, 0, 2)
	for _, f := range ranked(facets, riskScore) {
		if len(out) == 2 {
			break
		}
		if cards.IsNegative(f.Name) || signals.Z(f.Raw) <= riskCeiling {
			out = append(out, strings.ToLower(f.Name))
		}
	}
	for len(out) < 2 {
		out = append(out, fallbackRisk)
	}
	return out
}

// Tilt names the dominant style from the domain means. The first matching
// rule wins.
func Tilt(m signals.Means) string {
	o, c, e, n := signals.Z(m.O), signals.Z(m.C), signals.Z(m.E), signals.Z(m.N)
	switch {
	case e >= 0.6 && c >= 0.6:
		return TiltDriveControl
	case c >= 0.6 && o <= 0.4:
		return TiltStructure
	case o >= 0.6 && c <= 0.4:
		return TiltImagination
	case e >= 0.6 && n >= 0.6:
		return TiltVolatileDrive
	default:
		return TiltBalanced
	}
}
