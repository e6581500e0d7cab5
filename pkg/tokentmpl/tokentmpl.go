// Package tokentmpl renders copy templates over a closed set of named
// tokens. Templates are parsed once against the tokens their caller
// supports, so an unknown or misspelled token fails at parse time rather
// than leaking "{facet}" into user-facing text.
package tokentmpl

import (
	"fmt"
	"strings"
)

// Token names one substitution slot, written {name} in a template.
type Token string

type part struct {
	literal string
	token   Token
}

// Template is a parsed, validated template.
type Template struct {
	src    string
	parts  []part
	tokens []Token
}

// Parse validates src against the allowed tokens.
func Parse(src string, allowed ...Token) (*Template, error) {
	ok := make(map[Token]bool, len(allowed))
	for _, a := range allowed {
		ok[a] = true
	}
	t := &Template{src: src}
	seen := map[Token]bool{}
	rest := src
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		closeIdx := strings.IndexByte(rest, '}')
		if open < 0 {
			if closeIdx >= 0 {
				return nil, fmt.Errorf("template %q: unmatched '}'", src)
			}
			t.parts = append(t.parts, part{literal: rest})
			break
		}
		if closeIdx >= 0 && closeIdx < open {
			return nil, fmt.Errorf("template %q: unmatched '}'", src)
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("template %q: unterminated token", src)
		}
		name := Token(rest[open+1 : open+end])
		if !validName(string(name)) {
			return nil, fmt.Errorf("template %q: invalid token name %q", src, name)
		}
		if !ok[name] {
			return nil, fmt.Errorf("template %q: unknown token {%s}", src, name)
		}
		if open > 0 {
			t.parts = append(t.parts, part{literal: rest[:open]})
		}
		t.parts = append(t.parts, part{token: name})
		if !seen[name] {
			seen[name] = true
			t.tokens = append(t.tokens, name)
		}
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustParse is Parse for package-level templates; it panics on error.
func MustParse(src string, allowed ...Token) *Template {
	t, err := Parse(src, allowed...)
	if err != nil {
		panic(err)
	}
	return t
}

// Tokens lists the distinct tokens in order of first use.
func (t *Template) Tokens() []Token {
	return append([]Token(nil), t.tokens...)
}

// String returns the template source.
func (t *Template) String() string {
	return t.src
}

// Render substitutes every token. A token without a value is an error.
func (t *Template) Render(values map[Token]string) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		if p.token == "" {
			b.WriteString(p.literal)
			continue
		}
		v, ok := values[p.token]
		if !ok {
			return "", fmt.Errorf("template %q: no value for {%s}", t.src, p.token)
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}
