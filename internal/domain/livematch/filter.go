package livematch

import (
	"sort"
	"strings"
)

// TeamFilter holds up to two lower-cased team name fragments.
type TeamFilter struct {
	terms []string
}

func NewTeamFilter(names ...string) TeamFilter {
	terms := make([]string, 0, 2)
	for _, name := range names {
		term := strings.ToLower(strings.TrimSpace(name))
		if term == "" {
			continue
		}
		terms = append(terms, term)
		if len(terms) == 2 {
			break
		}
	}
	return TeamFilter{terms: terms}
}

func (f TeamFilter) IsEmpty() bool {
	return len(f.terms) == 0
}

func (f TeamFilter) Terms() []string {
	return append([]string(nil), f.terms...)
}

// Matches reports whether either side's name contains any term.
func (f TeamFilter) Matches(m Match) bool {
	if f.IsEmpty() {
		return true
	}
	home := strings.ToLower(m.Home.Name)
	away := strings.ToLower(m.Away.Name)
	for _, term := range f.terms {
		if strings.Contains(home, term) || strings.Contains(away, term) {
			return true
		}
	}
	return false
}

// Apply returns a new slice; the input is never modified.
func (f TeamFilter) Apply(matches []Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// DedupeByID keeps the first occurrence of every match id.
func DedupeByID(matches []Match) []Match {
	seen := make(map[int64]struct{}, len(matches))
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}

// SortByStartTime orders a copy by kickoff, keeping provider order on ties.
func SortByStartTime(matches []Match) []Match {
	out := append([]Match(nil), matches...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}
