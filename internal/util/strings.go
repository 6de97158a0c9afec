package util

import "strings"

// TrimAndLower normalizes a keyword such as a driver, level or scheme name.
func TrimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TrimEmptyCheck returns s without surrounding space and whether anything
// is left.
func TrimEmptyCheck(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

func TrimWithDefault(s, defaultValue string) string {
	if trimmed, ok := TrimEmptyCheck(s); ok {
		return trimmed
	}
	return defaultValue
}

// TrimSpaceFields trims each value, keeping positions.
func TrimSpaceFields(fields ...string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
