package common

import "strings"

// ContainsAny reports whether s contains any of the non-empty markers.
// Matching is case-sensitive.
func ContainsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// FirstNonBlank returns the first value that is not empty after trimming
// whitespace, or "" when every value is blank. The value is returned untrimmed.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
