package locintent

import (
	"slices"
	"strings"
)

// place is one gazetteer entry: the canonical display form plus the
// normalized values Extract attaches to a match.
type place struct {
	display      string // original-case form, for display
	city         string // "" when this entry is a state-only entry
	state        string // always the 2-letter code
	neighborhood string // "" unless this entry is a neighborhood
}

// entry pairs a lowercase matching key with the place it resolves to.
type entry struct {
	key   string
	place place
}

// Gazetteer is a static, pre-sorted lookup table of known states, cities,
// and neighborhoods, matched longest-key-first so "san francisco" is
// preferred over "san" (mirrors the NPC name-index pattern: build once,
// scan many).
type Gazetteer struct {
	sorted []entry
}

// NewGazetteer builds a Gazetteer from the given neighborhood, city, and
// state definitions. Keys are lowercased; duplicate keys keep the first
// registration.
func NewGazetteer(neighborhoods []NeighborhoodDef, cities []CityDef, states []StateDef) *Gazetteer {
	g := &Gazetteer{}
	seen := make(map[string]struct{})

	add := func(key string, p place) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		g.sorted = append(g.sorted, entry{key: key, place: p})
	}

	// Neighborhoods are registered first so their keys win any tie against a
	// same-length city or state key that seen dedups (spec's
	// neighborhood > city > state specificity order starts here).
	for _, n := range neighborhoods {
		add(n.Name, place{display: n.Name, city: n.City, state: n.State, neighborhood: n.Name})
	}
	for _, c := range cities {
		add(c.Name, place{display: c.Name, city: c.Name, state: c.State})
	}
	for _, s := range states {
		add(s.Name, place{display: s.Code, state: s.Code})
		add(s.Code, place{display: s.Code, state: s.Code})
	}

	sortByDescendingKeyLength(g.sorted)
	return g
}

// NeighborhoodDef, CityDef, and StateDef describe one gazetteer source
// record, typically loaded from the neighborhood index or static config.
type NeighborhoodDef struct {
	Name  string
	City  string
	State string
}

type CityDef struct {
	Name  string
	State string
}

type StateDef struct {
	Name string // full name, e.g. "Texas"
	Code string // 2-letter code, e.g. "TX"
}

func sortByDescendingKeyLength(entries []entry) {
	slices.SortFunc(entries, func(a, b entry) int {
		return len(b.key) - len(a.key)
	})
}
