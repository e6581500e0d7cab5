package assessment

import (
	"fmt"

	dErrors "bigfive/pkg/domain-errors"
)

// Step is a position in the per-domain flow.
type Step string

const (
	StepSelectDomain Step = "select_domain"
	StepPicks        Step = "picks"
	StepDrops        Step = "drops"
	StepResolver     Step = "resolver"
	StepAccuracy     Step = "accuracy"
	StepConfirm      Step = "confirm"
	StepComplete     Step = "complete"
)

// Prompt describes what a session is waiting for.
type Prompt struct {
	Step      Step     `json:"step"`
	Domain    Domain   `json:"domain,omitempty"`
	Text      string   `json:"text,omitempty"`
	Options   []string `json:"options,omitempty"`
	Select    int      `json:"select,omitempty"`
	Facet     string   `json:"facet,omitempty"`
	ItemIndex int      `json:"item_index"`
	Position  int      `json:"position"`
	Total     int      `json:"total"`
}

// Session drives one domain through triage, accuracy and confirmation.
// Every transition validates its input first and leaves the session
// untouched on error. A Session is not safe for concurrent use.
type Session struct {
	catalog *Catalog
	version string
	domain  Domain
	facets  []string
	step    Step

	picks     []string
	drops     []string
	resolver  []string
	shortlist []string
	prior     map[string]int
	queue     []AccuracyItem
	ratings   []RatingAnswer
	raw       map[string]float64
	triggers  []string
	asked     []ConfirmRecord
	result    *DomainResult
}

// NewSession returns a session waiting for a domain.
func NewSession(cat *Catalog) *Session {
	return &Session{catalog: cat, version: cat.Version, step: StepSelectDomain}
}

// StartSession returns a session with the domain already selected.
func StartSession(cat *Catalog, d Domain) (*Session, error) {
	s := NewSession(cat)
	if err := s.SelectDomain(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// Domain returns the selected domain.
func (s *Session) Domain() Domain { return s.domain }

// Shortlist returns the resolver candidates once drops are submitted.
func (s *Session) Shortlist() []string { return append([]string(nil), s.shortlist...) }

// SelectDomain chooses the domain to assess.
func (s *Session) SelectDomain(d Domain) error {
	if err := s.expect(StepSelectDomain); err != nil {
		return err
	}
	facets := s.catalog.Facets(d)
	if facets == nil {
		return dErrors.Newf(dErrors.CodeValidation, "unknown domain %q", d)
	}
	s.domain = d
	s.facets = facets
	s.step = StepPicks
	return nil
}

// SubmitPicks records the Q1 first-reach picks.
func (s *Session) SubmitPicks(facets []string) error {
	if err := s.expect(StepPicks); err != nil {
		return err
	}
	if err := validateSelection(facets, s.facets, PickCount, "picks"); err != nil {
		return err
	}
	s.picks = append([]string(nil), facets...)
	s.step = StepDrops
	return nil
}

// SubmitDrops records the Q2 drops and derives the resolver shortlist.
func (s *Session) SubmitDrops(facets []string) error {
	if err := s.expect(StepDrops); err != nil {
		return err
	}
	if err := validateSelection(facets, s.picks, DropCount, "drops"); err != nil {
		return err
	}
	s.drops = append([]string(nil), facets...)
	s.shortlist = Shortlist(s.facets, NewIndicators(s.facets, s.picks), NewIndicators(s.facets, s.drops))
	s.step = StepResolver
	return nil
}

// SubmitResolver records the resolver picks, then fixes the prior and the
// accuracy item queue.
func (s *Session) SubmitResolver(facets []string) error {
	if err := s.expect(StepResolver); err != nil {
		return err
	}
	if err := validateSelection(facets, s.shortlist, ResolverPicks(len(s.shortlist)), "resolver picks"); err != nil {
		return err
	}
	s.resolver = append([]string(nil), facets...)
	p1 := s.phase1()
	s.prior = p1.Prior
	s.queue = AccuracyQueue(s.facets, s.prior)
	s.ratings = nil
	s.step = StepAccuracy
	return nil
}

// Rate answers the next accuracy item with a 1..5 value.
func (s *Session) Rate(value int) error {
	if err := s.expect(StepAccuracy); err != nil {
		return err
	}
	if value < 1 || value > 5 {
		return dErrors.Newf(dErrors.CodeValidation, "rating must be between 1 and 5, got %d", value)
	}
	item := s.queue[len(s.ratings)]
	s.ratings = append(s.ratings, RatingAnswer{Facet: item.Facet, Index: item.Index, Value: value})
	if len(s.ratings) < len(s.queue) {
		return nil
	}
	s.raw = RawScores(s.facets, s.ratings)
	s.triggers = ConfirmerTriggers(s.facets, s.raw, s.prior)
	s.asked = nil
	if len(s.triggers) == 0 {
		return s.complete()
	}
	s.step = StepConfirm
	return nil
}

// Confirm answers the next confirmation question.
func (s *Session) Confirm(answer ConfirmAnswer) error {
	if err := s.expect(StepConfirm); err != nil {
		return err
	}
	if _, err := ParseConfirmAnswer(string(answer)); err != nil {
		return err
	}
	s.asked = append(s.asked, ConfirmRecord{Facet: s.triggers[len(s.asked)], Answer: answer})
	if len(s.asked) < len(s.triggers) {
		return nil
	}
	return s.complete()
}

// Back undoes the most recent input of the current phase, or steps into the
// previous phase when the current one has nothing to undo.
func (s *Session) Back() error {
	switch s.step {
	case StepPicks:
		s.domain, s.facets = "", nil
		s.step = StepSelectDomain
	case StepDrops:
		s.picks = nil
		s.step = StepPicks
	case StepResolver:
		s.drops, s.shortlist = nil, nil
		s.step = StepDrops
	case StepAccuracy:
		if len(s.ratings) > 0 {
			s.ratings = s.ratings[:len(s.ratings)-1]
			return nil
		}
		s.resolver, s.prior, s.queue = nil, nil, nil
		s.step = StepResolver
	case StepConfirm:
		if len(s.asked) > 0 {
			s.asked = s.asked[:len(s.asked)-1]
			return nil
		}
		s.raw, s.triggers = nil, nil
		s.ratings = s.ratings[:len(s.ratings)-1]
		s.step = StepAccuracy
	default:
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot go back from %s", s.step)
	}
	return nil
}

// Current describes the pending input.
func (s *Session) Current() Prompt {
	p := Prompt{Step: s.step, Domain: s.domain}
	dc, _ := s.catalog.Domain(s.domain)
	switch s.step {
	case StepSelectDomain:
		for _, d := range DomainOrder {
			p.Options = append(p.Options, string(d))
		}
		p.Select = 1
	case StepPicks:
		p.Text, p.Options, p.Select = dc.Prompts.Q1, s.facets, PickCount
	case StepDrops:
		p.Text, p.Options, p.Select = dc.Prompts.Q2, s.picks, DropCount
	case StepResolver:
		p.Text, p.Options, p.Select = dc.Prompts.Q3, s.shortlist, ResolverPicks(len(s.shortlist))
	case StepAccuracy:
		item := s.queue[len(s.ratings)]
		p.Facet, p.ItemIndex = item.Facet, item.Index
		p.Text = s.catalog.Anchor(item.Facet, item.Index)
		p.Position, p.Total = len(s.ratings)+1, len(s.queue)
	case StepConfirm:
		f := s.triggers[len(s.asked)]
		p.Facet = f
		p.Text = s.catalog.Confirmer(f)
		p.Position, p.Total = len(s.asked)+1, len(s.triggers)
	}
	return p
}

// Result returns the sealed result of a completed session.
func (s *Session) Result() (*DomainResult, error) {
	if s.step != StepComplete || s.result == nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "session is at %s, not complete", s.step)
	}
	return s.result, nil
}

func (s *Session) phase1() Phase1 {
	p := NewIndicators(s.facets, s.picks)
	m := NewIndicators(s.facets, s.drops)
	t := NewIndicators(s.facets, s.resolver)
	return Phase1{P: p, M: m, T: t, Prior: Priors(s.facets, p, t, m)}
}

func (s *Session) complete() error {
	r, err := seal(s.version, s.domain, s.facets, s.phase1(), s.ratings, s.asked)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "seal domain result")
	}
	s.result = r
	s.step = StepComplete
	return nil
}

func (s *Session) expect(step Step) error {
	if s.step != step {
		return dErrors.Newf(dErrors.CodeInvalidState, "session is at %s, expected %s", s.step, step)
	}
	return nil
}

func validateSelection(selected, allowed []string, want int, what string) error {
	if len(selected) != want {
		return dErrors.Newf(dErrors.CodeValidation, "%s: select exactly %d, got %d", what, want, len(selected))
	}
	ok := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		ok[f] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, f := range selected {
		if !ok[f] {
			return dErrors.Newf(dErrors.CodeValidation, "%s: %q is not an option", what, f)
		}
		if seen[f] {
			return dErrors.Newf(dErrors.CodeValidation, "%s: %q selected twice", what, f)
		}
		seen[f] = true
	}
	return nil
}

// Answers is a complete answer set for one domain. Ratings follow the
// accuracy queue order and Confirmations follow the triggered facets.
type Answers struct {
	Picks         []string        `json:"picks"`
	Drops         []string        `json:"drops"`
	Resolver      []string        `json:"resolver"`
	Ratings       []int           `json:"ratings"`
	Confirmations []ConfirmAnswer `json:"confirmations"`
}

// Score replays a complete answer set and returns the sealed result.
// Incomplete or surplus answers are rejected.
func Score(cat *Catalog, d Domain, a Answers) (*DomainResult, error) {
	return ScoreWithVersion(cat, d, a, cat.Version)
}

// ScoreWithVersion is Score stamping an explicit payload version.
func ScoreWithVersion(cat *Catalog, d Domain, a Answers, version string) (*DomainResult, error) {
	s, err := StartSession(cat, d)
	if err != nil {
		return nil, err
	}
	s.version = version
	if err := s.SubmitPicks(a.Picks); err != nil {
		return nil, err
	}
	if err := s.SubmitDrops(a.Drops); err != nil {
		return nil, err
	}
	if err := s.SubmitResolver(a.Resolver); err != nil {
		return nil, err
	}
	if len(a.Ratings) != len(s.queue) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "ratings: expected %d, got %d", len(s.queue), len(a.Ratings))
	}
	for i, v := range a.Ratings {
		if err := s.Rate(v); err != nil {
			return nil, fmt.Errorf("rating %d: %w", i, err)
		}
	}
	if len(a.Confirmations) != len(s.triggers) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "confirmations: expected %d, got %d", len(s.triggers), len(a.Confirmations))
	}
	for i, c := range a.Confirmations {
		if err := s.Confirm(c); err != nil {
			return nil, fmt.Errorf("confirmation %d: %w", i, err)
		}
	}
	return s.Result()
}
