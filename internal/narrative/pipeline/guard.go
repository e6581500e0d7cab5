package pipeline

import (
	"regexp"
	"slices"
	"strings"

	"bigfive/internal/assessment"
	"bigfive/internal/narrative/models"
	pstrings "bigfive/pkg/platform/strings"
)

// Guarded output bounds.
const (
	MinGuardedLines = 8
	MaxGuardedLines = 10
)

// Fixed cue lines.
const (
	EndCue       = "Start now. One tap."
	NoiseCue     = "We cleared the noise. Here’s the next move."
	PressureLine = "Static and slow rules flip your stress switch."
	OwnReadLine  = "You trust your own read more than group talk."
	FinishLine   = "You want one target, one finish, proof in hand."
	LeadLine     = "You move first. Direct push is your default."
	VisualsLine  = "You see the path when the picture is clear."
	FillerLine   = "You work best with clear ownership."
)

// priority lines survive trimming ahead of everything else.
var priority = map[string]bool{
	LeadLine:     true,
	FinishLine:   true,
	PressureLine: true,
	OwnReadLine:  true,
	VisualsLine:  true,
	NoiseCue:     true,
	EndCue:       true,
}

var pressure = regexp.MustCompile(`(?i)stress|pressure`)

type guard struct {
	lines []string
}

func (g *guard) has(text string) bool {
	needle := strings.ToLower(text)
	for _, l := range g.lines {
		if strings.Contains(strings.ToLower(l), needle) {
			return true
		}
	}
	return false
}

func (g *guard) addOnce(text string) {
	if !g.has(text) {
		g.lines = append(g.lines, text)
	}
}

// Enforce applies the fact-driven line rules and returns 8 to 10 lines that
// always end with EndCue.
func Enforce(f models.Facts, p models.Profile) []string {
	g := &guard{lines: append([]string(nil), p.Lines...)}
	bucket := f.Bucket

	g.addOnce(NoiseCue)
	g.addOnce(EndCue)

	if bucket(assessment.DomainN, "Anxiety") == assessment.BucketHigh ||
		bucket(assessment.DomainN, "Anger") == assessment.BucketHigh {
		g.onePressureLine()
	}
	if bucket(assessment.DomainA, "Cooperation") == assessment.BucketLow ||
		bucket(assessment.DomainA, "Morality") == assessment.BucketLow {
		g.addOnce(OwnReadLine)
	}
	if bucket(assessment.DomainC, "Self-Efficacy") == assessment.BucketHigh {
		g.addOnce(FinishLine)
	}
	if bucket(assessment.DomainE, "Assertiveness") == assessment.BucketHigh &&
		bucket(assessment.DomainE, "Friendliness") == assessment.BucketHigh && !g.has(LeadLine) {
		g.lines = append([]string{LeadLine}, g.lines...)
	}
	if bucket(assessment.DomainO, "Imagination") == assessment.BucketHigh ||
		bucket(assessment.DomainO, "Artistic Interests") == assessment.BucketHigh {
		g.addOnce(VisualsLine)
	}

	g.lines = pstrings.DedupeBy(g.lines, strings.TrimSpace)
	g.trim()
	g.pad()
	g.endWithCue()
	return g.lines
}

// onePressureLine keeps exactly one stress or pressure line, inserting the
// fixed one ahead of the two closing cues when none exists.
func (g *guard) onePressureLine() {
	var count int
	for _, l := range g.lines {
		if pressure.MatchString(l) {
			count++
		}
	}
	switch {
	case count == 0:
		g.lines = slices.Insert(g.lines, max(0, len(g.lines)-2), PressureLine)
	case count > 1:
		kept := false
		out := g.lines[:0]
		for _, l := range g.lines {
			if pressure.MatchString(l) {
				if kept {
					continue
				}
				kept = true
			}
			out = append(out, l)
		}
		g.lines = out
	}
}

// trim keeps priority lines first when there are too many.
func (g *guard) trim() {
	if len(g.lines) <= MaxGuardedLines {
		return
	}
	var must, others []string
	for _, l := range g.lines {
		if priority[l] {
			must = append(must, l)
		} else {
			others = append(others, l)
		}
	}
	g.lines = append(must, others...)[:MaxGuardedLines]
}

// pad inserts the filler ahead of the last line until the minimum is met.
func (g *guard) pad() {
	for len(g.lines) < MinGuardedLines {
		g.lines = slices.Insert(g.lines, max(0, len(g.lines)-1), FillerLine)
	}
}

func (g *guard) endWithCue() {
	if len(g.lines) > 0 && g.lines[len(g.lines)-1] == EndCue {
		return
	}
	g.lines = append(slices.DeleteFunc(g.lines, func(l string) bool { return l == EndCue }), EndCue)
}
