package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims surrounding space and applies NFC so that visually
// identical names compare equal for the per-owner uniqueness check.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeMuscleGroups lowercases, trims and de-duplicates tags, dropping
// empty ones. The result is sorted.
func NormalizeMuscleGroups(groups []string) []string {
	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.ToLower(NormalizeName(g))
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Page is a skip/limit window over a list.
type Page struct {
	Skip  int
	Limit int
}

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// NewPage clamps skip and limit into the accepted range.
func NewPage(skip, limit int) Page {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	return Page{Skip: skip, Limit: limit}
}
