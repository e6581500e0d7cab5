package signals

import (
	"fmt"
	"math"

	"bigfive/internal/assessment"
	"bigfive/pkg/canonical"
	"bigfive/pkg/tokentmpl"
)

// HandoffVersion tags the handoff payload shape.
const HandoffVersion = "gzero-handback-1.0"

const tokFacet tokentmpl.Token = "facet"

// handoffTemplates are keyed by lead label.
var handoffTemplates = map[string]*tokentmpl.Template{
	LeadPursuit:  tokentmpl.MustParse("Lead with {facet}; it pulls you toward the next build.", tokFacet),
	LeadThreat:   tokentmpl.MustParse("Guard {facet}; it is where pressure lands first.", tokFacet),
	LeadBalanced: tokentmpl.MustParse("Keep {facet} steady; it holds the middle for you.", tokFacet),
}

// Indices are the headline motivational indices carried by a handoff.
type Indices struct {
	T     float64 `json:"T"`
	P     float64 `json:"P"`
	S     float64 `json:"S"`
	Delta float64 `json:"delta"`
	Lead  string  `json:"lead"`
}

// HandoffItem is the per-domain line built from its most extreme facet. Tag
// is the facet's catalog hint, empty when the facet is unknown.
type HandoffItem struct {
	Domain assessment.Domain `json:"domain"`
	Facet  string            `json:"facet"`
	Line   string            `json:"line"`
	Tag    string            `json:"tag"`
}

// Handoff is the compact, checksummed summary handed to downstream tools.
type Handoff struct {
	Type    string        `json:"type"`
	Version string        `json:"version"`
	Hash    string        `json:"hash"`
	Means   Means         `json:"domain_means"`
	Indices Indices       `json:"indices"`
	Items   []HandoffItem `json:"items"`
}

// BuildHandoff derives the handoff for a sealed suite. Domain means here are
// the unrounded averages of each domain's raw facet scores; a domain with no
// scores contributes 3.
func BuildHandoff(cat *assessment.Catalog, s assessment.SuiteResult) (*Handoff, error) {
	raws := make(map[assessment.Domain]map[string]float64, len(s.Results))
	for _, e := range s.Results {
		raws[e.Domain] = e.Payload.Phase2.ARaw
	}

	var means Means
	items := make([]HandoffItem, 0, len(assessment.DomainOrder))
	for _, d := range assessment.DomainOrder {
		facets := cat.Facets(d)
		raw := raws[d]
		setMean(&means, d, rawMean(facets, raw))
		top := topFacet(facets, raw)
		items = append(items, HandoffItem{Domain: d, Facet: top, Tag: facetTag(cat, top)})
	}

	sig := Compute(means)
	idx := Indices{T: sig.T, P: sig.P, S: sig.S, Delta: sig.MotionBalance, Lead: sig.LeadLabel}

	tmpl := handoffTemplates[idx.Lead]
	lines := make([]string, 0, len(items))
	for i := range items {
		line, err := tmpl.Render(map[tokentmpl.Token]string{tokFacet: items[i].Facet})
		if err != nil {
			return nil, fmt.Errorf("render handoff line: %w", err)
		}
		items[i].Line = line
		lines = append(lines, line)
	}

	// topFacet holds the rendered lines; tags stay outside the checksum.
	sum, err := canonical.Hash(map[string]any{
		"domain_means": means,
		"topFacet":     lines,
		"indices":      idx,
		"suiteHash":    s.SuiteHash,
	})
	if err != nil {
		return nil, fmt.Errorf("hash handoff: %w", err)
	}

	return &Handoff{
		Type:    "Handoff",
		Version: HandoffVersion,
		Hash:    sum,
		Means:   means,
		Indices: idx,
		Items:   items,
	}, nil
}

func facetTag(cat *assessment.Catalog, facet string) string {
	if fc, ok := cat.Facet(facet); ok {
		return fc.Hint
	}
	return ""
}

func rawMean(facets []string, raw map[string]float64) float64 {
	var sum float64
	var n int
	for _, f := range facets {
		v, ok := raw[f]
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 3
	}
	return sum / float64(n)
}

// topFacet returns the facet farthest from the scale midpoint. The first
// facet wins ties, including the all-neutral case.
func topFacet(facets []string, raw map[string]float64) string {
	var best string
	var bestDelta float64
	for _, f := range facets {
		v, ok := raw[f]
		if !ok {
			continue
		}
		if best == "" {
			best = f
		}
		if d := math.Abs(v - 3); d > bestDelta {
			best, bestDelta = f, d
		}
	}
	return best
}

func setMean(m *Means, d assessment.Domain, v float64) {
	switch d {
	case assessment.DomainO:
		m.O = v
	case assessment.DomainC:
		m.C = v
	case assessment.DomainE:
		m.E = v
	case assessment.DomainA:
		m.A = v
	case assessment.DomainN:
		m.N = v
	}
}
