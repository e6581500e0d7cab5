package assessment

import (
	"fmt"
	"slices"

	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
)

// Phase1 holds the triage indicators and the derived prior for every facet.
type Phase1 struct {
	P     Indicators     `json:"p"`
	M     Indicators     `json:"m"`
	T     Indicators     `json:"t"`
	Prior map[string]int `json:"P"`
}

// RatingAnswer is one answered accuracy item.
type RatingAnswer struct {
	Facet string `json:"facet"`
	Index int    `json:"idx"`
	Value int    `json:"value"`
}

// Phase2 holds accuracy answers and the per-facet raw means.
type Phase2 struct {
	Answers []RatingAnswer     `json:"answers"`
	ARaw    map[string]float64 `json:"A_raw"`
}

// ConfirmRecord is one answered confirmation question.
type ConfirmRecord struct {
	Facet  string        `json:"facet"`
	Answer ConfirmAnswer `json:"answer"`
}

// Phase3 holds the confirmation answers in asking order.
type Phase3 struct {
	Asked []ConfirmRecord `json:"asked"`
}

// Final is the classification and aggregate of a domain.
type Final struct {
	APct          map[string]float64 `json:"A_pct"`
	Bucket        map[string]Bucket  `json:"bucket"`
	Order         []string           `json:"order"`
	DomainMeanRaw float64            `json:"domain_mean_raw"`
	DomainMeanPct float64            `json:"domain_mean_pct"`
}

// Audit carries the seal of a result.
type Audit struct {
	Nonce string `json:"nonce"`
}

// DomainResult is the sealed outcome of one domain run. Its JSON form is the
// wire and hashing format.
type DomainResult struct {
	Version string `json:"version"`
	Domain  Domain `json:"domain"`
	Phase1  Phase1 `json:"phase1"`
	Phase2  Phase2 `json:"phase2"`
	Phase3  Phase3 `json:"phase3"`
	Final   Final  `json:"final"`
	Audit   *Audit `json:"audit,omitempty"`
}

// Nonce hashes the result without its audit block.
func (r DomainResult) Nonce() (string, error) {
	r.Audit = nil
	h, err := canonical.Hash(r)
	if err != nil {
		return "", fmt.Errorf("hash domain result: %w", err)
	}
	return h, nil
}

// Verification is the outcome of recomputing a seal.
type Verification struct {
	Valid    bool   `json:"valid"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// VerifyDomain recomputes the nonce from the stored fields. A mismatch is a
// normal outcome reported through Valid.
func VerifyDomain(r DomainResult) (Verification, error) {
	actual, err := r.Nonce()
	if err != nil {
		return Verification{}, err
	}
	expected := ""
	if r.Audit != nil {
		expected = r.Audit.Nonce
	}
	return Verification{
		Valid:    expected != "" && canonical.Equal(actual, expected),
		Expected: expected,
		Actual:   actual,
	}, nil
}

// DomainMean averages raw scores over the facets, two decimals.
func DomainMean(facets []string, raw map[string]float64) float64 {
	var sum float64
	for _, f := range facets {
		sum += raw[f]
	}
	return Round2(sum / float64(len(facets)))
}

// seal derives Final from the three phases and stamps the nonce.
func seal(version string, domain Domain, facets []string, p1 Phase1, answers []RatingAnswer, asked []ConfirmRecord) (*DomainResult, error) {
	raw := RawScores(facets, answers)
	r := &DomainResult{
		Version: version,
		Domain:  domain,
		Phase1:  p1,
		Phase2:  Phase2{Answers: nonNil(answers), ARaw: raw},
		Phase3:  Phase3{Asked: nonNil(asked)},
		Final:   finalize(facets, raw, p1.Prior, asked),
	}
	nonce, err := r.Nonce()
	if err != nil {
		return nil, err
	}
	r.Audit = &Audit{Nonce: nonce}
	return r, nil
}

func finalize(facets []string, raw map[string]float64, prior map[string]int, asked []ConfirmRecord) Final {
	pct := make(map[string]float64, len(facets))
	for _, f := range facets {
		pct[f] = ToPercent(raw[f])
	}
	buckets := Buckets(facets, raw, prior, asked)
	mean := DomainMean(facets, raw)
	return Final{
		APct:          pct,
		Bucket:        buckets,
		Order:         OrderFacets(facets, buckets, raw, prior),
		DomainMeanRaw: mean,
		DomainMeanPct: Round1(ToPercent(mean)),
	}
}

// Recompute replays a stored result's inputs through the pipeline and
// returns a validation error describing the first inconsistency, if any.
// It catches results whose seal is intact but whose derived fields were not
// produced by these rules.
func Recompute(cat *Catalog, r DomainResult) error {
	facets := cat.Facets(r.Domain)
	if facets == nil {
		return dErrors.Newf(dErrors.CodeValidation, "unknown domain %q", r.Domain)
	}
	answers := Answers{
		Picks:    r.Phase1.P.Selected(facets),
		Drops:    r.Phase1.M.Selected(facets),
		Resolver: r.Phase1.T.Selected(facets),
	}
	for _, a := range r.Phase2.Answers {
		answers.Ratings = append(answers.Ratings, a.Value)
	}
	for _, c := range r.Phase3.Asked {
		answers.Confirmations = append(answers.Confirmations, c.Answer)
	}

	rebuilt, err := ScoreWithVersion(cat, r.Domain, answers, r.Version)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "result inputs do not replay: "+dErrors.Message(err))
	}
	if !slices.Equal(rebuilt.Phase2.Answers, r.Phase2.Answers) {
		return dErrors.New(dErrors.CodeValidation, "accuracy answers do not match the item queue")
	}
	if !slices.Equal(rebuilt.Phase3.Asked, r.Phase3.Asked) {
		return dErrors.New(dErrors.CodeValidation, "confirmation answers do not match the triggered facets")
	}
	stored := r
	stored.Audit = nil
	rebuilt.Audit = nil
	want, err := canonical.String(rebuilt)
	if err != nil {
		return err
	}
	got, err := canonical.String(stored)
	if err != nil {
		return err
	}
	if want != got {
		return dErrors.New(dErrors.CodeValidation, "derived fields do not match the recorded answers")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
