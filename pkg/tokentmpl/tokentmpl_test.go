package tokentmpl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tokFacet Token = "facet"
	tokLevel Token = "level"
)

func TestRender(t *testing.T) {
	tpl, err := Parse("Your {facet} reads {level}; {facet} again.", tokFacet, tokLevel)
	require.NoError(t, err)
	assert.Equal(t, []Token{tokFacet, tokLevel}, tpl.Tokens())

	out, err := tpl.Render(map[Token]string{tokFacet: "trust", tokLevel: "high"})
	require.NoError(t, err)
	assert.Equal(t, "Your trust reads high; trust again.", out)
}

func TestRenderMissingValue(t *testing.T) {
	tpl := MustParse("{facet} only", tokFacet)
	_, err := tpl.Render(map[Token]string{})
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"unknown token":     "Hello {name}",
		"unterminated":      "Hello {facet",
		"stray close":       "Hello facet}",
		"empty token":       "Hello {}",
		"uppercase token":   "Hello {Facet}",
		"close before open": "a } b {facet}",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src, tokFacet)
			assert.Error(t, err)
		})
	}
}

func TestPlainText(t *testing.T) {
	tpl, err := Parse("no tokens here")
	require.NoError(t, err)
	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "no tokens here", out)
	assert.Empty(t, tpl.Tokens())
}
