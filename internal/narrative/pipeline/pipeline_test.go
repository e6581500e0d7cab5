package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bigfive/internal/assessment"
	"bigfive/internal/narrative/models"
)

var llmLines = []string{
	"You rely on imagination and intellect, which makes you quick to move.",
	"But your orderliness and self-discipline often slip when deadlines blur.",
	"You show a mix of curiosity and calm, which makes you steady.",
	"Others tend to see you as warm, but they may notice drift.",
	"The 30 cards below break this into detail and show where you can reinforce or rebalance.",
}

// facts builds neutral facts with the given facet buckets overridden.
func facts(t *testing.T, means map[assessment.Domain]float64, buckets map[string]assessment.Bucket) models.Facts {
	t.Helper()
	cat := assessment.DefaultCatalog()
	f := models.Facts{SuiteHash: "h", Domains: map[assessment.Domain]models.DomainFacts{}}
	for _, d := range assessment.DomainOrder {
		df := models.DomainFacts{Domain: d, MeanRaw: 3, Bucket: map[string]assessment.Bucket{}}
		if m, ok := means[d]; ok {
			df.MeanRaw = m
		}
		for _, name := range cat.Facets(d) {
			df.Bucket[name] = assessment.BucketMedium
		}
		f.Domains[d] = df
	}
	for name, b := range buckets {
		ref, ok := cat.Lookup(name)
		require.True(t, ok, name)
		f.Domains[ref.Domain].Bucket[name] = b
	}
	return f
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"object", `{"lines":["a","b"]}`, []string{"a", "b"}},
		{"bare array", `["a","b","c"]`, []string{"a", "b", "c"}},
		{"non-string items", `{"lines":["a",3,null]}`, []string{"a", "3", ""}},
		{"json without lines", `{"text":"hello"}`, nil},
		{"json scalar", `"hello"`, nil},
		{
			"plain text",
			"First line. Second one!\nThird? Fourth. Fifth. Sixth.",
			[]string{"First line.", "Second one!", "Third?", "Fourth.", "Fifth."},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.raw))
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"  one\n  two  ", "", "   ", "three"})
	assert.Equal(t, []string{"one two", "three", BridgeLine, BridgeLine, BridgeLine}, got)

	long := Normalize([]string{"1.....", "2.....", "3.....", "4.....", "5.....", "6....."})
	assert.Equal(t, []string{"1.....", "2.....", "3.....", "4.....", "5....."}, long)
}

func TestValidate(t *testing.T) {
	ok := models.Profile{Lines: llmLines}
	require.NoError(t, Validate(ok))

	short := append([]string(nil), llmLines...)
	short[2] = "tiny"
	assert.ErrorIs(t, Validate(models.Profile{Lines: short}), ErrSchema)

	long := append([]string(nil), llmLines...)
	long[0] = string(make([]rune, 161))
	assert.ErrorIs(t, Validate(models.Profile{Lines: long}), ErrSchema)

	assert.ErrorIs(t, Validate(models.Profile{Lines: llmLines[:4]}), ErrSchema)
}

func TestCoerce(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		p, err := Coerce(`{"lines":["You rely on imagination.  ","You drift when bored."]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"You rely on imagination.", "You drift when bored.", BridgeLine, BridgeLine, BridgeLine}, p.Lines)
	})
	t.Run("empty output", func(t *testing.T) {
		_, err := Coerce("   ")
		assert.ErrorIs(t, err, ErrSchema)
	})
	t.Run("lines too short", func(t *testing.T) {
		_, err := Coerce(`["ok","fine","yes","no","maybe"]`)
		assert.ErrorIs(t, err, ErrSchema)
	})
	t.Run("wrong json", func(t *testing.T) {
		_, err := Coerce(`{"profile":"text"}`)
		assert.ErrorIs(t, err, ErrSchema)
	})
}

func TestEnforce(t *testing.T) {
	profile := models.Profile{Lines: llmLines}

	t.Run("neutral facts pad to eight", func(t *testing.T) {
		got := Enforce(facts(t, nil, nil), profile)
		want := append(append([]string(nil), llmLines...), NoiseCue, FillerLine, EndCue)
		assert.Equal(t, want, got)
	})

	t.Run("pressure line sits before the closing cues", func(t *testing.T) {
		got := Enforce(facts(t, nil, map[string]assessment.Bucket{"Anxiety": assessment.BucketHigh}), profile)
		want := append(append([]string(nil), llmLines...), PressureLine, NoiseCue, EndCue)
		assert.Equal(t, want, got)
	})

	t.Run("only the first pressure line survives", func(t *testing.T) {
		p := models.Profile{Lines: []string{
			"Pressure makes you sharper than most.",
			"You rely on imagination and intellect.",
			"Stress shows up as impatience.",
			"Others see you as calm.",
			"Under pressure you simplify.",
		}}
		got := Enforce(facts(t, nil, map[string]assessment.Bucket{"Anger": assessment.BucketHigh}), p)
		assert.Contains(t, got, "Pressure makes you sharper than most.")
		assert.NotContains(t, got, "Stress shows up as impatience.")
		assert.NotContains(t, got, "Under pressure you simplify.")
		assert.NotContains(t, got, PressureLine)
		assert.Equal(t, EndCue, got[len(got)-1])
	})

	t.Run("lead goes first", func(t *testing.T) {
		got := Enforce(facts(t, nil, map[string]assessment.Bucket{
			"Assertiveness": assessment.BucketHigh,
			"Friendliness":  assessment.BucketHigh,
		}), profile)
		assert.Equal(t, LeadLine, got[0])
		assert.Len(t, got, 8)
	})

	t.Run("overflow keeps priority lines", func(t *testing.T) {
		got := Enforce(facts(t, nil, map[string]assessment.Bucket{
			"Anxiety":       assessment.BucketHigh,
			"Cooperation":   assessment.BucketLow,
			"Self-Efficacy": assessment.BucketHigh,
			"Assertiveness": assessment.BucketHigh,
			"Friendliness":  assessment.BucketHigh,
			"Imagination":   assessment.BucketHigh,
		}), profile)
		want := []string{
			LeadLine, PressureLine, NoiseCue, OwnReadLine, FinishLine, VisualsLine,
			llmLines[0], llmLines[1], llmLines[2], EndCue,
		}
		assert.Equal(t, want, got)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		p := models.Profile{Lines: []string{llmLines[0], llmLines[0] + " ", llmLines[1], llmLines[1], llmLines[2]}}
		got := Enforce(facts(t, nil, nil), p)
		assert.Equal(t, []string{llmLines[0], llmLines[1], llmLines[2], NoiseCue, FillerLine, FillerLine, FillerLine, EndCue}, got)
	})

	t.Run("existing end cue moves last", func(t *testing.T) {
		p := models.Profile{Lines: []string{EndCue, llmLines[0], llmLines[1], llmLines[2], llmLines[3]}}
		got := Enforce(facts(t, nil, nil), p)
		assert.Equal(t, EndCue, got[len(got)-1])
		assert.Equal(t, 1, count(got, EndCue))
	})
}

func count(lines []string, s string) int {
	n := 0
	for _, l := range lines {
		if l == s {
			n++
		}
	}
	return n
}

func TestDerive(t *testing.T) {
	p := Derive(facts(t, map[assessment.Domain]float64{
		assessment.DomainO: 3.75,
		assessment.DomainC: 3.6,
		assessment.DomainE: 2.9,
		assessment.DomainA: 4,
		assessment.DomainN: 3.74,
	}, map[string]assessment.Bucket{
		"Cooperation": assessment.BucketHigh,
		"Anxiety":     assessment.BucketLow,
	}))

	assert.True(t, p.OHigh)
	assert.False(t, p.OMid)
	assert.True(t, p.CHigh)
	assert.True(t, p.CMid)
	assert.True(t, p.ELow)
	assert.True(t, p.AHigh)
	assert.True(t, p.NMid)
	assert.True(t, p.AHighCoop)
	assert.True(t, p.NLowAnx)
	assert.True(t, p.OHighCHigh)
	assert.True(t, p.ELowAHigh)
	assert.False(t, p.EHighALow)
}
