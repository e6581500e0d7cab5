// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// CollapseSpace replaces every whitespace run with a single space and trims
// the ends.
//
// Example:
//
//	CollapseSpace("  You  rely\non\tfocus ")
//	// Returns: "You rely on focus"
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DedupeBy drops values whose key was already seen. Order and the original
// values are preserved.
//
// Example:
//
//	DedupeBy([]string{"a ", "b", " a"}, strings.TrimSpace)
//	// Returns: []string{"a ", "b"}
func DedupeBy(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, v)
	}

	return result
}
