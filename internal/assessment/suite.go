package assessment

import (
	"fmt"

	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
)

// SuiteEntry pairs a domain with its sealed payload. The list of entries in
// domain order is what the suite hash covers.
type SuiteEntry struct {
	Domain  Domain       `json:"domain"`
	Payload DomainResult `json:"payload"`
}

// SuiteResult is the immutable combination of all five domain results.
type SuiteResult struct {
	SuiteHash string       `json:"suiteHash"`
	Results   []SuiteEntry `json:"results"`
}

// SuiteHash hashes the entries exactly in the order given.
func SuiteHash(entries []SuiteEntry) (string, error) {
	h, err := canonical.Hash(nonNil(entries))
	if err != nil {
		return "", fmt.Errorf("hash suite: %w", err)
	}
	return h, nil
}

// AssembleSuite validates five sealed results in O,C,E,A,N order and seals
// the suite. Every domain nonce must verify.
func AssembleSuite(results []DomainResult) (*SuiteResult, error) {
	entries := make([]SuiteEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, SuiteEntry{Domain: r.Domain, Payload: r})
	}
	if err := ValidateEntries(entries); err != nil {
		return nil, err
	}
	hash, err := SuiteHash(entries)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "seal suite")
	}
	return &SuiteResult{SuiteHash: hash, Results: entries}, nil
}

// ValidateEntries checks domain coverage, order and every domain seal.
func ValidateEntries(entries []SuiteEntry) error {
	if len(entries) != len(DomainOrder) {
		return dErrors.Newf(dErrors.CodeValidation, "suite needs %d domain results, got %d", len(DomainOrder), len(entries))
	}
	for i, e := range entries {
		if e.Domain != DomainOrder[i] {
			return dErrors.Newf(dErrors.CodeValidation, "suite position %d must be domain %s, got %q", i, DomainOrder[i], e.Domain)
		}
		if e.Payload.Domain != e.Domain {
			return dErrors.Newf(dErrors.CodeValidation, "suite entry %s carries a payload for domain %q", e.Domain, e.Payload.Domain)
		}
		v, err := VerifyDomain(e.Payload)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("domain %s payload cannot be hashed", e.Domain))
		}
		if !v.Valid {
			return dErrors.Newf(dErrors.CodeValidation, "domain %s nonce does not verify", e.Domain)
		}
	}
	return nil
}

// VerifySuite recomputes the suite hash from the stored entries.
func VerifySuite(s SuiteResult) (Verification, error) {
	actual, err := SuiteHash(s.Results)
	if err != nil {
		return Verification{}, err
	}
	return Verification{
		Valid:    s.SuiteHash != "" && canonical.Equal(actual, s.SuiteHash),
		Expected: s.SuiteHash,
		Actual:   actual,
	}, nil
}

// Facet is one scored facet of a suite, used by the derived views.
type Facet struct {
	Domain Domain  `json:"domain"`
	Name   string  `json:"facet"`
	Raw    float64 `json:"raw"`
	Bucket Bucket  `json:"bucket"`
}

// Facets flattens a suite into its 30 facets in domain then catalog order.
func (s SuiteResult) Facets(cat *Catalog) []Facet {
	var out []Facet
	for _, e := range s.Results {
		for _, f := range cat.Facets(e.Domain) {
			out = append(out, Facet{
				Domain: e.Domain,
				Name:   f,
				Raw:    e.Payload.Phase2.ARaw[f],
				Bucket: e.Payload.Final.Bucket[f],
			})
		}
	}
	return out
}

// DomainMeans returns domain_mean_raw per domain.
func (s SuiteResult) DomainMeans() map[Domain]float64 {
	out := make(map[Domain]float64, len(s.Results))
	for _, e := range s.Results {
		out[e.Domain] = e.Payload.Final.DomainMeanRaw
	}
	return out
}
