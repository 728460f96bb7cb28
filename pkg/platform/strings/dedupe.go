// Package strings provides string normalization helpers.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blank entries from values, trimming
// whitespace from each element. Order of first occurrence is preserved.
//
//	DedupeAndTrim([]string{" obs:gps_01 ", "doc:a", "obs:gps_01", ""})
//	// []string{"obs:gps_01", "doc:a"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}

// NormalizeKey trims and lowercases a lookup key such as a policy alias.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
