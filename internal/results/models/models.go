package models

import (
	"strings"
	"time"

	"bigfive/internal/assessment"
	"bigfive/internal/who"
	dErrors "bigfive/pkg/domain-errors"
)

const (
	DefaultLang   = "en"
	maxLangLength = 16
)

// Record is one finished test as the results page reads it back. Answers are
// kept as submitted; SuiteHash and WhoView are derived from them on create.
type Record struct {
	ID          string                  `json:"id"`
	Lang        string                  `json:"lang"`
	Invalid     bool                    `json:"invalid"`
	TimeElapsed *float64                `json:"timeElapsed"`
	DateStamp   time.Time               `json:"dateStamp"`
	AppVersion  string                  `json:"appVersion"`
	SuiteHash   string                  `json:"suiteHash"`
	Answers     []assessment.SuiteEntry `json:"answers"`
	WhoView     *who.Export             `json:"whoView"`
	AIProfile   []string                `json:"aiProfile"`
}

// CreateRequest is the body of POST /v1/tests.
type CreateRequest struct {
	Lang        string                  `json:"lang,omitempty"`
	TimeElapsed *float64                `json:"timeElapsed,omitempty"`
	Answers     []assessment.SuiteEntry `json:"answers"`
}

// Validate normalizes the language and rejects bodies without answers.
func (r *CreateRequest) Validate() error {
	if len(r.Answers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "answers are required")
	}
	r.Lang = strings.TrimSpace(r.Lang)
	if r.Lang == "" {
		r.Lang = DefaultLang
	}
	if len(r.Lang) > maxLangLength {
		return dErrors.New(dErrors.CodeBadRequest, "lang is too long")
	}
	if r.TimeElapsed != nil && *r.TimeElapsed < 0 {
		return dErrors.New(dErrors.CodeValidation, "timeElapsed must not be negative")
	}
	return nil
}

// IDResponse answers both create and lookup by hash.
type IDResponse struct {
	ID string `json:"id"`
}
