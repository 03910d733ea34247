package stop

import (
	"sort"
	"strings"
)

// DefaultSearchLimit caps stop search results.
const DefaultSearchLimit = 20

// Match tiers, best first.
const (
	tierNamePrefix = iota
	tierName
	tierAddress
	noMatch
)

// Rank returns the active candidates whose name or address contains query,
// case-insensitively. Name-prefix matches come first, then other name matches,
// then address-only matches; each tier is sorted by name. A blank query matches nothing.
func Rank(candidates []Stop, query string, limit int) []Stop {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Stop{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	type ranked struct {
		stop Stop
		tier int
		name string
	}
	var matches []ranked
	for _, s := range candidates {
		if !s.IsActive {
			continue
		}
		name := strings.ToLower(s.Name)
		tier := matchTier(name, strings.ToLower(s.Address), q)
		if tier == noMatch {
			continue
		}
		matches = append(matches, ranked{stop: s, tier: tier, name: name})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.name != b.name {
			return a.name < b.name
		}
		return a.stop.ID < b.stop.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	result := make([]Stop, len(matches))
	for i, m := range matches {
		result[i] = m.stop
	}
	return result
}

func matchTier(name, address, q string) int {
	switch {
	case strings.HasPrefix(name, q):
		return tierNamePrefix
	case strings.Contains(name, q):
		return tierName
	case strings.Contains(address, q):
		return tierAddress
	default:
		return noMatch
	}
}
