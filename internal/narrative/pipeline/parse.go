// Package pipeline turns untrusted generator text into guarded profile
// lines: parse, normalize, validate, then guard.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bigfive/internal/narrative/models"
	pstrings "bigfive/pkg/platform/strings"
)

// ErrSchema is returned when output cannot be coerced into a valid profile.
var ErrSchema = errors.New("profile failed schema guard")

// BridgeLine pads short outputs.
const BridgeLine = "The 30 cards below break this into detail and show where you can reinforce or rebalance."

var (
	lineBreak     = regexp.MustCompile(`\r?\n`)
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
)

// Parse accepts a JSON object with a lines array, a bare JSON array, or
// plain text split into sentences.
func Parse(raw string) []string {
	var obj struct {
		Lines []any `json:"lines"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err == nil && obj.Lines != nil {
		return stringify(obj.Lines)
	}
	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return stringify(arr)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		// valid JSON without lines
		return nil
	}
	return splitText(raw)
}

func stringify(vals []any) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case nil:
			out = append(out, "")
		default:
			b, err := json.Marshal(t)
			if err != nil {
				out = append(out, fmt.Sprint(t))
				continue
			}
			out = append(out, string(b))
		}
	}
	return out
}

// splitText breaks on newlines and after sentence punctuation, keeping at
// most LineCount pieces.
func splitText(raw string) []string {
	var out []string
	for _, chunk := range lineBreak.Split(raw, -1) {
		start := 0
		for _, loc := range sentenceBreak.FindAllStringIndex(chunk, -1) {
			out = append(out, chunk[start:loc[0]+1])
			start = loc[1]
		}
		out = append(out, chunk[start:])
	}

	lines := make([]string, 0, models.LineCount)
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, s)
		}
		if len(lines) == models.LineCount {
			break
		}
	}
	return lines
}

// Normalize collapses whitespace, drops empty lines and fixes the count to
// LineCount, padding with the bridge line.
func Normalize(lines []string) []string {
	out := make([]string, 0, models.LineCount)
	for _, l := range lines {
		l = pstrings.CollapseSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	if len(out) > models.LineCount {
		out = out[:models.LineCount]
	}
	for len(out) < models.LineCount {
		out = append(out, BridgeLine)
	}
	return out
}

// Validate checks the profile shape.
func Validate(p models.Profile) error {
	if len(p.Lines) != models.LineCount {
		return fmt.Errorf("%w: want %d lines, got %d", ErrSchema, models.LineCount, len(p.Lines))
	}
	for i, l := range p.Lines {
		n := len([]rune(l))
		if n < models.MinLineLen || n > models.MaxLineLen {
			return fmt.Errorf("%w: line %d has %d characters", ErrSchema, i+1, n)
		}
	}
	return nil
}

// Coerce runs parse, normalize and validate. Output without a single
// non-blank line is a schema failure rather than a page of padding.
func Coerce(raw string) (models.Profile, error) {
	lines := Parse(raw)
	if !hasContent(lines) {
		return models.Profile{}, fmt.Errorf("%w: no lines in output", ErrSchema)
	}
	p := models.Profile{Lines: Normalize(lines)}
	if err := Validate(p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func hasContent(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}
