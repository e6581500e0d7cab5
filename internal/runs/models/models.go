package models

import (
	"bigfive/internal/assessment"
	"bigfive/internal/cards"
	"bigfive/internal/mirror"
	"bigfive/internal/signals"
	"bigfive/internal/who"
	"bigfive/pkg/canonical"
	dErrors "bigfive/pkg/domain-errors"
)

// SaveRequest is the body of POST /v1/runs. An omitted hash is computed from
// the results.
type SaveRequest struct {
	Hash    string                  `json:"hash,omitempty"`
	Results []assessment.SuiteEntry `json:"results"`
}

func (r *SaveRequest) Validate() error {
	if len(r.Results) == 0 {
		return dErrors.New(dErrors.CodeValidation, "results are required")
	}
	if r.Hash != "" && !canonical.IsDigest(r.Hash) {
		return dErrors.New(dErrors.CodeBadRequest, "hash must be 64 lowercase hex characters")
	}
	return nil
}

// Suite returns the request as a suite to be sealed.
func (r *SaveRequest) Suite() assessment.SuiteResult {
	return assessment.SuiteResult{SuiteHash: r.Hash, Results: r.Results}
}

type SaveResponse struct {
	OK   bool   `json:"ok"`
	Hash string `json:"hash"`
}

type GetResponse struct {
	Results assessment.SuiteResult `json:"results"`
}

// VerifyDomainRequest carries one sealed domain result.
type VerifyDomainRequest struct {
	Result assessment.DomainResult `json:"result"`
}

func (r *VerifyDomainRequest) Validate() error {
	if r.Result.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "result.domain is required")
	}
	return nil
}

// VerifySuiteRequest carries a sealed suite.
type VerifySuiteRequest struct {
	Suite assessment.SuiteResult `json:"suite"`
}

func (r *VerifySuiteRequest) Validate() error {
	if len(r.Suite.Results) == 0 {
		return dErrors.New(dErrors.CodeValidation, "suite.results are required")
	}
	return nil
}

// Summary is every derived view of a stored suite.
type Summary struct {
	SuiteHash string           `json:"suiteHash"`
	Signals   signals.Signals  `json:"signals"`
	Snapshot  []signals.Line   `json:"snapshot"`
	Handoff   *signals.Handoff `json:"handoff"`
	Cards     []cards.Card     `json:"cards"`
	Mirror    *mirror.Mirror   `json:"mirror"`
	Who       *who.Export      `json:"who"`
}
