package models

import (
	"sync"
	"time"

	"bigfive/internal/assessment"
	dErrors "bigfive/pkg/domain-errors"
)

// Session is a server-held assessment in progress. Mu guards Machine, which
// is not safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	Mu      sync.Mutex
	Machine *assessment.Session
}

// Expired reports whether the session is past its TTL at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// View is the client-facing state of a session.
type View struct {
	ID        string            `json:"id"`
	ExpiresAt time.Time         `json:"expires_at"`
	Prompt    assessment.Prompt `json:"prompt"`
	Complete  bool              `json:"complete"`
}

type StartRequest struct {
	Domain assessment.Domain `json:"domain"`
}

func (r *StartRequest) Validate() error {
	if r.Domain == "" {
		return dErrors.New(dErrors.CodeValidation, "domain is required")
	}
	d, err := assessment.ParseDomain(string(r.Domain))
	if err != nil {
		return err
	}
	r.Domain = d
	return nil
}

// AnswerRequest carries the input of the current step: domain after going
// back to domain selection, facets for the triage steps, value for accuracy
// items, answer for confirmations.
type AnswerRequest struct {
	Domain string   `json:"domain,omitempty"`
	Facets []string `json:"facets,omitempty"`
	Value  *int     `json:"value,omitempty"`
	Answer string   `json:"answer,omitempty"`
}

func (r *AnswerRequest) Validate() error {
	set := 0
	if r.Domain != "" {
		set++
	}
	if r.Facets != nil {
		set++
	}
	if r.Value != nil {
		set++
	}
	if r.Answer != "" {
		set++
	}
	if set != 1 {
		return dErrors.New(dErrors.CodeBadRequest, "exactly one of domain, facets, value or answer is required")
	}
	return nil
}

// ScoreRequest scores a complete answer set without a session.
type ScoreRequest struct {
	Domain  assessment.Domain  `json:"domain"`
	Answers assessment.Answers `json:"answers"`
}

func (r *ScoreRequest) Validate() error {
	d, err := assessment.ParseDomain(string(r.Domain))
	if err != nil {
		return err
	}
	r.Domain = d
	return nil
}
