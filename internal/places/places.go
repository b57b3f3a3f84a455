package places

import (
	"sort"
	"strings"
)

// Kerala is the default recognized set: the fourteen districts plus "total".
var Kerala = []string{
	"alappuzha", "ernakulam", "idukki", "kannur",
	"kasaragod", "kollam", "kottayam", "kozhikode", "malappuram", "palakkad",
	"pathanamthitta", "thiruvananthapuram", "thrissur", "total",
	"wayanad",
}

// Set is an immutable set of lowercase place names.
type Set struct {
	names map[string]struct{}
}

func New(names ...string) Set {
	s := Set{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		s.names[n] = struct{}{}
	}
	return s
}

// Match lowercases text and reports whether it names a recognized place.
// The returned loc is the lowercased form used in API requests.
func (s Set) Match(text string) (string, bool) {
	loc := strings.ToLower(text)
	_, ok := s.names[loc]
	return loc, ok
}

func (s Set) Len() int { return len(s.names) }

func (s Set) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
