package assessment

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	dErrors "bigfive/pkg/domain-errors"
)

// FacetsPerDomain is fixed for every domain.
const FacetsPerDomain = 6

//go:embed catalog.yaml
var catalogYAML []byte

// Domain is one of the five trait domain keys.
type Domain string

const (
	DomainO Domain = "O"
	DomainC Domain = "C"
	DomainE Domain = "E"
	DomainA Domain = "A"
	DomainN Domain = "N"
)

// DomainOrder is the fixed suite order.
var DomainOrder = []Domain{DomainO, DomainC, DomainE, DomainA, DomainN}

// ParseDomain accepts a domain key, case-insensitively.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range DomainOrder {
		if d == known {
			return d, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown domain %q", s)
}

// Index returns the position of d in DomainOrder, or -1.
func (d Domain) Index() int {
	for i, known := range DomainOrder {
		if d == known {
			return i
		}
	}
	return -1
}

// Interpretation is the per-level reading of a facet.
type Interpretation struct {
	High   string `yaml:"high"`
	Medium string `yaml:"medium"`
	Low    string `yaml:"low"`
}

// FacetContent is the static content of one facet.
type FacetContent struct {
	Name           string         `yaml:"name"`
	Hint           string         `yaml:"hint"`
	Description    string         `yaml:"description"`
	Anchors        []string       `yaml:"anchors"`
	Confirm        string         `yaml:"confirm"`
	Interpretation Interpretation `yaml:"interpretation"`
}

// Prompts are the triage prompts shown for Q1, Q2 and the resolver.
type Prompts struct {
	Q1 string `yaml:"q1"`
	Q2 string `yaml:"q2"`
	Q3 string `yaml:"q3"`
}

// DomainContent is the static content of one domain.
type DomainContent struct {
	Key     Domain         `yaml:"key"`
	Label   string         `yaml:"label"`
	Prompts Prompts        `yaml:"prompts"`
	Facets  []FacetContent `yaml:"facets"`
}

// FacetRef locates a facet in the catalog.
type FacetRef struct {
	Domain Domain
	Index  int
}

// Catalog is the validated, immutable content catalog.
type Catalog struct {
	Version string          `yaml:"version"`
	Domains []DomainContent `yaml:"domains"`

	byDomain map[Domain]*DomainContent
	byFacet  map[string]FacetRef
}

// LoadCatalog parses and validates a YAML catalog.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	if c.Version == "" {
		return fmt.Errorf("catalog: version is required")
	}
	if len(c.Domains) != len(DomainOrder) {
		return fmt.Errorf("catalog: expected %d domains, got %d", len(DomainOrder), len(c.Domains))
	}
	c.byDomain = make(map[Domain]*DomainContent, len(c.Domains))
	c.byFacet = make(map[string]FacetRef, len(c.Domains)*FacetsPerDomain)
	for i := range c.Domains {
		d := &c.Domains[i]
		if d.Key != DomainOrder[i] {
			return fmt.Errorf("catalog: domain %d is %q, expected %q", i, d.Key, DomainOrder[i])
		}
		if len(d.Facets) != FacetsPerDomain {
			return fmt.Errorf("catalog: domain %s has %d facets", d.Key, len(d.Facets))
		}
		for j, f := range d.Facets {
			if f.Name == "" {
				return fmt.Errorf("catalog: domain %s facet %d has no name", d.Key, j)
			}
			if _, dup := c.byFacet[f.Name]; dup {
				return fmt.Errorf("catalog: duplicate facet %q", f.Name)
			}
			if len(f.Anchors) != 2 {
				return fmt.Errorf("catalog: facet %q needs 2 anchors, has %d", f.Name, len(f.Anchors))
			}
			if f.Confirm == "" {
				return fmt.Errorf("catalog: facet %q has no confirmer", f.Name)
			}
			c.byFacet[f.Name] = FacetRef{Domain: d.Key, Index: j}
		}
		c.byDomain[d.Key] = d
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// DefaultCatalog returns the embedded catalog. It panics if the embedded
// content is malformed, which the catalog tests rule out.
func DefaultCatalog() *Catalog {
	defaultOnce.Do(func() {
		c, err := LoadCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Domain returns the content of d.
func (c *Catalog) Domain(d Domain) (*DomainContent, bool) {
	dc, ok := c.byDomain[d]
	return dc, ok
}

// Facets returns the facet names of d in catalog order.
func (c *Catalog) Facets(d Domain) []string {
	dc, ok := c.byDomain[d]
	if !ok {
		return nil
	}
	out := make([]string, len(dc.Facets))
	for i, f := range dc.Facets {
		out[i] = f.Name
	}
	return out
}

// Lookup finds a facet by exact name.
func (c *Catalog) Lookup(name string) (FacetRef, bool) {
	ref, ok := c.byFacet[name]
	return ref, ok
}

// Facet returns the content of a named facet.
func (c *Catalog) Facet(name string) (*FacetContent, bool) {
	ref, ok := c.byFacet[name]
	if !ok {
		return nil, false
	}
	return &c.byDomain[ref.Domain].Facets[ref.Index], true
}

// Anchor returns the accuracy prompt for item idx of a facet.
func (c *Catalog) Anchor(facet string, idx int) string {
	f, ok := c.Facet(facet)
	if !ok || idx < 0 || idx >= len(f.Anchors) {
		return ""
	}
	return f.Anchors[idx]
}

// Confirmer returns the confirmation statement of a facet.
func (c *Catalog) Confirmer(facet string) string {
	f, ok := c.Facet(facet)
	if !ok {
		return ""
	}
	return f.Confirm
}
