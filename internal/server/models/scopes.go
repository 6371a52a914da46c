package models

import "strings"

// ParseScopes splits an OAuth scope string on whitespace, dropping empty
// entries and repeats while keeping first-seen order.
func ParseScopes(s string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// ScopeString joins scopes with single spaces, the OAuth wire form.
func ScopeString(scopes []string) string {
	return strings.Join(scopes, " ")
}
