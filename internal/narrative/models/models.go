package models

import (
	"bigfive/internal/assessment"
)

// LineCount is the number of lines the generator must return.
const LineCount = 5

// Line length bounds after whitespace normalization.
const (
	MinLineLen = 6
	MaxLineLen = 160
)

// Source tells where the final lines came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// DomainFacts is the sealed outcome of one domain as the narrative sees it.
type DomainFacts struct {
	Domain  assessment.Domain            `json:"domain"`
	MeanRaw float64                      `json:"mean_raw"`
	MeanPct float64                      `json:"mean_pct"`
	Bucket  map[string]assessment.Bucket `json:"bucket"`
}

// Facts are the deterministic inputs of narrative generation.
type Facts struct {
	SuiteHash string                            `json:"suiteHash"`
	Domains   map[assessment.Domain]DomainFacts `json:"domains"`
}

// FactsFromSuite reads the final section of every domain.
func FactsFromSuite(s assessment.SuiteResult) Facts {
	f := Facts{SuiteHash: s.SuiteHash, Domains: make(map[assessment.Domain]DomainFacts, len(s.Results))}
	for _, e := range s.Results {
		f.Domains[e.Domain] = DomainFacts{
			Domain:  e.Domain,
			MeanRaw: e.Payload.Final.DomainMeanRaw,
			MeanPct: e.Payload.Final.DomainMeanPct,
			Bucket:  e.Payload.Final.Bucket,
		}
	}
	return f
}

// Bucket returns the bucket of facet in domain d, empty when unknown.
func (f Facts) Bucket(d assessment.Domain, facet string) assessment.Bucket {
	return f.Domains[d].Bucket[facet]
}

// Mean returns domain_mean_raw of d.
func (f Facts) Mean(d assessment.Domain) float64 {
	return f.Domains[d].MeanRaw
}

// Profile is the validated generator output.
type Profile struct {
	Lines []string `json:"lines"`
}

// Result is what callers receive.
type Result struct {
	Lines  []string `json:"lines"`
	Source Source   `json:"source"`
	Cached bool     `json:"cached"`
}

// Entry is the cached form of a result.
type Entry struct {
	Lines  []string `json:"lines"`
	Source Source   `json:"source"`
}
