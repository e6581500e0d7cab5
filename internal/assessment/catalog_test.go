package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	require.NotNil(t, cat)
	assert.Equal(t, "gz-domainspec-1.3.0", cat.Version)

	assert.Equal(t, []string{"Imagination", "Artistic Interests", "Emotionality", "Adventurousness", "Intellect", "Liberalism"}, cat.Facets(DomainO))
	assert.Equal(t, []string{"Anxiety", "Anger", "Depression", "Self-Consciousness", "Immoderation", "Vulnerability"}, cat.Facets(DomainN))

	for _, d := range DomainOrder {
		dc, ok := cat.Domain(d)
		require.True(t, ok)
		assert.NotEmpty(t, dc.Label)
		assert.NotEmpty(t, dc.Prompts.Q1)
		for _, f := range dc.Facets {
			assert.NotEmpty(t, cat.Anchor(f.Name, 0), f.Name)
			assert.NotEmpty(t, cat.Anchor(f.Name, 1), f.Name)
			assert.Empty(t, cat.Anchor(f.Name, 2), f.Name)
			assert.NotEmpty(t, cat.Confirmer(f.Name), f.Name)
			assert.NotEmpty(t, f.Interpretation.High, f.Name)
		}
	}

	ref, ok := cat.Lookup("Cooperation")
	require.True(t, ok)
	assert.Equal(t, FacetRef{Domain: DomainA, Index: 3}, ref)
}

func TestLoadCatalogRejectsMalformedContent(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "version: [unterminated"},
		{"no version", "domains: []"},
		{"missing domains", "version: v1\ndomains: []"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain(" e ")
	require.NoError(t, err)
	assert.Equal(t, DomainE, d)
	assert.Equal(t, 2, d.Index())

	_, err = ParseDomain("X")
	assert.Error(t, err)
}
