// Package who builds the "who you are" export for a completed suite: derived
// polarity and stability, the recommended follow-up card, a deterministic
// narrative, strength and risk lists, and a checksum over all of it.
package who

import (
	"fmt"
	"math"
	"sort"

	"bigfive/internal/assessment"
	"bigfive/pkg/canonical"
)

const (
	EngineVersion = "who-engine-0.1.0"
	RuleVersion   = "who-rule-0.1.0"
)

// Card is the recommended follow-up experience.
type Card string

const (
	CardOverwrite     Card = "Overwrite"
	CardCompatibility Card = "Compatibility"
	CardVersus        Card = "Versus"
)

// Reason codes for the card choice.
const (
	ReasonLowCount          = "LOW_COUNT_GE_8_EFFECTIVE"
	ReasonStabilityLowCount = "STABILITY_FLAG_AND_LOW_COUNT_GE_4_EFFECTIVE"
	ReasonPolarityLowest    = "POLARITY_GE_1_2_AND_LOWEST_ADJUSTED_LT_2_5"
	ReasonEHighALow         = "SOCIAL_OPPOSITION_E_HIGH_A_LOW"
	ReasonAHighELow         = "SOCIAL_OPPOSITION_A_HIGH_E_LOW"
	ReasonSocialHighs       = "LOW_POLARITY_WITH_SOCIAL_HIGHS"
	ReasonDefault           = "DEFAULT_VERSUS"
)

// Derived are the suite-level quantities the card choice reads.
type Derived struct {
	Polarity         float64                       `json:"polarity"`
	StabilityMean    float64                       `json:"stabilityMean"`
	StabilityFlag    bool                          `json:"stabilityFlag"`
	LowestDomainMean float64                       `json:"lowestDomainMean"`
	LowsCount        int                           `json:"lowsCount"`
	DomainMeans      map[assessment.Domain]float64 `json:"domainMeans"`
}

// Choice is the picked card and the rule that fired.
type Choice struct {
	Card    Card     `json:"card"`
	Reasons []string `json:"reasons"`
}

// Lists group facets by how they read.
type Lists struct {
	Strengths []string `json:"strengths"`
	Risks     []string `json:"risks"`
	Mediums   []string `json:"mediums"`
}

// Audit carries the checksum and the rule version it covers.
type Audit struct {
	Checksum    string `json:"checksum"`
	RuleVersion string `json:"ruleVersion"`
}

// States and Raws are keyed by domain then facet.
type (
	States map[assessment.Domain]map[string]assessment.Bucket
	Raws   map[assessment.Domain]map[string]float64
)

// Export is the full who payload.
type Export struct {
	Version       string   `json:"version"`
	RunID         *string  `json:"runId"`
	States        States   `json:"states"`
	Raw           Raws     `json:"raw"`
	Derived       Derived  `json:"derived"`
	Chosen        Choice   `json:"chosen"`
	Narrative     []string `json:"narrative"`
	Lists         Lists    `json:"lists"`
	ListSentences Lists    `json:"listSentences"`
	Audit         Audit    `json:"audit"`
}

// view is the suite reshaped for lookups, with facets ranked by distance
// from the midpoint.
type view struct {
	cat    *assessment.Catalog
	states States
	raws   Raws
	means  map[assessment.Domain]float64
	ranked []ranked
}

type ranked struct {
	domain   assessment.Domain
	facet    string
	raw      float64
	distance float64
}

func (v *view) state(d assessment.Domain, facet string) assessment.Bucket {
	return v.states[d][facet]
}

// LevelFromRaw classifies a raw score when no sealed bucket is present.
func LevelFromRaw(raw float64) assessment.Bucket {
	switch {
	case raw >= 4.0:
		return assessment.BucketHigh
	case raw <= 2.0:
		return assessment.BucketLow
	default:
		return assessment.BucketMedium
	}
}

func newView(cat *assessment.Catalog, s assessment.SuiteResult) *view {
	byDomain := make(map[assessment.Domain]*assessment.DomainResult, len(s.Results))
	for i := range s.Results {
		byDomain[s.Results[i].Domain] = &s.Results[i].Payload
	}

	v := &view{
		cat:    cat,
		states: make(States, len(assessment.DomainOrder)),
		raws:   make(Raws, len(assessment.DomainOrder)),
		means:  make(map[assessment.Domain]float64, len(assessment.DomainOrder)),
	}
	for _, d := range assessment.DomainOrder {
		facets := cat.Facets(d)
		v.states[d] = make(map[string]assessment.Bucket, len(facets))
		v.raws[d] = make(map[string]float64, len(facets))
		r := byDomain[d]

		var sum float64
		for _, f := range facets {
			raw := 3.0
			var bucket assessment.Bucket
			if r != nil {
				if x, ok := r.Phase2.ARaw[f]; ok {
					raw = x
				}
				bucket = r.Final.Bucket[f]
			}
			switch bucket {
			case assessment.BucketHigh, assessment.BucketMedium, assessment.BucketLow:
			default:
				bucket = LevelFromRaw(raw)
			}
			v.raws[d][f] = raw
			v.states[d][f] = bucket
			v.ranked = append(v.ranked, ranked{domain: d, facet: f, raw: raw, distance: math.Abs(raw - 3)})
			sum += raw
		}
		v.means[d] = sum / float64(len(facets))
	}
	// ranked is built in domain then catalog order, which breaks ties
	sort.SliceStable(v.ranked, func(i, j int) bool {
		return v.ranked[i].distance > v.ranked[j].distance
	})
	return v
}

// Build derives the who export. suiteHash may be empty for unsaved runs.
func Build(cat *assessment.Catalog, s assessment.SuiteResult) (*Export, error) {
	v := newView(cat, s)

	derived := v.derive()
	out := &Export{
		Version:       EngineVersion,
		States:        v.states,
		Raw:           v.raws,
		Derived:       derived,
		Chosen:        pickCard(derived, v.states),
		Narrative:     v.narrative(),
		Lists:         v.lists(),
		ListSentences: v.listSentences(),
		Audit:         Audit{RuleVersion: RuleVersion},
	}
	if s.SuiteHash != "" {
		id := s.SuiteHash
		out.RunID = &id
	}

	sum, err := out.checksum()
	if err != nil {
		return nil, err
	}
	out.Audit.Checksum = sum
	return out, nil
}

func (e *Export) checksum() (string, error) {
	sum, err := canonical.Hash(map[string]any{
		"version":     e.Version,
		"runId":       e.RunID,
		"states":      e.States,
		"raw":         e.Raw,
		"derived":     e.Derived,
		"chosen":      e.Chosen,
		"narrative":   e.Narrative,
		"ruleVersion": RuleVersion,
	})
	if err != nil {
		return "", fmt.Errorf("hash who export: %w", err)
	}
	return sum, nil
}

// Verify recomputes the checksum of a stored export.
func Verify(e Export) (bool, error) {
	sum, err := e.checksum()
	if err != nil {
		return false, err
	}
	return canonical.Equal(sum, e.Audit.Checksum), nil
}

func (v *view) derive() Derived {
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, d := range assessment.DomainOrder {
		hi = math.Max(hi, v.means[d])
		lo = math.Min(lo, v.means[d])
	}
	stability := 6 - v.means[assessment.DomainN]

	lows := 0
	for _, d := range assessment.DomainOrder {
		for _, f := range v.cat.Facets(d) {
			if v.states[d][f] == assessment.BucketLow {
				lows++
			}
		}
	}

	return Derived{
		Polarity:         hi - lo,
		StabilityMean:    stability,
		StabilityFlag:    stability >= 3.5 || stability <= 2.5,
		LowestDomainMean: lo,
		LowsCount:        lows,
		DomainMeans:      v.means,
	}
}

// effectiveLows counts Low facets outside N plus High facets in N.
func effectiveLows(states States) int {
	n := 0
	for d, facets := range states {
		for _, b := range facets {
			if d == assessment.DomainN {
				if b == assessment.BucketHigh {
					n++
				}
			} else if b == assessment.BucketLow {
				n++
			}
		}
	}
	return n
}

func pickCard(d Derived, states States) Choice {
	m := d.DomainMeans
	lows := effectiveLows(states)
	lowest := min(m[assessment.DomainO], m[assessment.DomainC], m[assessment.DomainE], m[assessment.DomainA], 6-m[assessment.DomainN])

	switch {
	case lows >= 8:
		return Choice{Card: CardOverwrite, Reasons: []string{ReasonLowCount}}
	case d.StabilityFlag && lows >= 4:
		return Choice{Card: CardOverwrite, Reasons: []string{ReasonStabilityLowCount}}
	case d.Polarity >= 1.2 && lowest < 2.5:
		return Choice{Card: CardOverwrite, Reasons: []string{ReasonPolarityLowest}}
	}

	eHigh, eLow := m[assessment.DomainE] >= 4.0, m[assessment.DomainE] <= 2.0
	aHigh, aLow := m[assessment.DomainA] >= 4.0, m[assessment.DomainA] <= 2.0
	switch {
	case eHigh && aLow:
		return Choice{Card: CardCompatibility, Reasons: []string{ReasonEHighALow}}
	case aHigh && eLow:
		return Choice{Card: CardCompatibility, Reasons: []string{ReasonAHighELow}}
	}

	if d.Polarity <= 0.8 {
		highs := 0
		for _, dom := range []assessment.Domain{assessment.DomainE, assessment.DomainA} {
			for _, b := range states[dom] {
				if b == assessment.BucketHigh {
					highs++
				}
			}
		}
		if highs >= 4 {
			return Choice{Card: CardCompatibility, Reasons: []string{ReasonSocialHighs}}
		}
	}

	return Choice{Card: CardVersus, Reasons: []string{ReasonDefault}}
}
