// Package locintent parses free-text real-estate queries for location
// intent — city, state, and neighborhood mentions — using a pre-built
// gazetteer, so downstream retrievers can split a query into a location
// filter and a cleaned search string (spec.md §4.D).
package locintent

import (
	"regexp"
	"strings"
)

// LocationIntent is the result of one [Extractor.Extract] call.
type LocationIntent struct {
	// City and State are preserved in their original gazetteer casing, for
	// display. Empty when not recognized.
	City  string
	State string

	// Neighborhood is preserved in its original gazetteer casing. Empty
	// when not recognized.
	Neighborhood string

	// CleanedQuery is the input with recognized location tokens removed.
	// Never empty — falls back to the original query when extraction finds
	// nothing to remove or removal would leave it blank.
	CleanedQuery string

	// Confidence is in [0, 1]. Higher when a more specific match (a
	// neighborhood) was found, and higher again when multiple distinct
	// location components corroborate each other (e.g. a city and its
	// state both matched).
	Confidence float64

	// HasLocation reports whether any location component was recognized.
	HasLocation bool
}

// CityLower, StateLower and NeighborhoodLower return City, State and
// Neighborhood lower-cased (StateLower yields "tx" for "TX").
func (li LocationIntent) CityLower() string  { return strings.ToLower(li.City) }
func (li LocationIntent) StateLower() string { return strings.ToLower(li.State) }
func (li LocationIntent) NeighborhoodLower() string {
	return strings.ToLower(li.Neighborhood)
}

var wordBoundary = regexp.MustCompile(`[^a-z0-9]+`)

// Extractor extracts [LocationIntent] from free text using a [Gazetteer].
type Extractor struct {
	gaz *Gazetteer
}

// NewExtractor returns an Extractor backed by gaz.
func NewExtractor(gaz *Gazetteer) *Extractor {
	return &Extractor{gaz: gaz}
}

// Extract parses query for location intent. It is deterministic: the same
// query against the same gazetteer always returns the same result, and
// running Extract again on an already-cleaned query finds nothing further
// to remove (idempotent).
//
// On failure to recognize anything, Extract returns HasLocation=false and
// CleanedQuery equal to the original query — callers must still proceed
// with retrieval using the unmodified text.
func (e *Extractor) Extract(query string) LocationIntent {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" || e.gaz == nil {
		return LocationIntent{CleanedQuery: query}
	}

	lower := strings.ToLower(trimmed)

	var neighborhoodMatch, cityMatch, stateMatch *entry
	var neighborhoodSpan, citySpan, stateSpan [2]int

	for i := range e.gaz.sorted {
		ent := &e.gaz.sorted[i]
		idx := indexWord(lower, ent.key)
		if idx < 0 {
			continue
		}
		span := [2]int{idx, idx + len(ent.key)}

		switch {
		case ent.place.neighborhood != "" && neighborhoodMatch == nil:
			neighborhoodMatch = ent
			neighborhoodSpan = span
		case ent.place.neighborhood == "" && ent.place.city != "" && cityMatch == nil:
			cityMatch = ent
			citySpan = span
		case ent.place.neighborhood == "" && ent.place.city == "" && stateMatch == nil:
			stateMatch = ent
			stateSpan = span
		}

		if neighborhoodMatch != nil && cityMatch != nil && stateMatch != nil {
			break
		}
	}

	result := LocationIntent{CleanedQuery: query}
	var spans [][2]int
	matches := 0

	if neighborhoodMatch != nil {
		result.Neighborhood = neighborhoodMatch.place.display
		if result.City == "" {
			result.City = neighborhoodMatch.place.city
		}
		if result.State == "" {
			result.State = neighborhoodMatch.place.state
		}
		spans = append(spans, neighborhoodSpan)
		matches++
	}
	if cityMatch != nil {
		result.City = cityMatch.place.display
		if result.State == "" {
			result.State = cityMatch.place.state
		}
		spans = append(spans, citySpan)
		matches++
	}
	if stateMatch != nil {
		if result.State == "" {
			result.State = stateMatch.place.state
		}
		spans = append(spans, stateSpan)
		matches++
	}

	if matches == 0 {
		return result
	}

	result.HasLocation = true
	result.Confidence = confidence(neighborhoodMatch != nil, matches)
	cleaned := removeSpans(trimmed, spans)
	if cleaned != "" {
		result.CleanedQuery = cleaned
	}
	return result
}

// confidence scores a match: a neighborhood hit (the most specific kind)
// starts higher than a city/state-only hit, and each corroborating
// component nudges the score up, capped at 1.0.
func confidence(hasNeighborhood bool, matches int) float64 {
	base := 0.6
	if hasNeighborhood {
		base = 0.75
	}
	score := base + float64(matches-1)*0.1
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// indexWord finds key in s on a word boundary (not as a substring of a
// larger token), returning the byte offset or -1.
func indexWord(s, key string) int {
	start := 0
	for {
		idx := strings.Index(s[start:], key)
		if idx < 0 {
			return -1
		}
		abs := start + idx
		before := abs == 0 || wordBoundary.MatchString(s[abs-1:abs])
		after := abs+len(key) == len(s) || wordBoundary.MatchString(s[abs+len(key) : abs+len(key)+1])
		if before && after {
			return abs
		}
		start = abs + 1
	}
}

// removeSpans deletes the given [start,end) byte ranges from s (which must
// align with trimmed-lowercase offsets computed against the same string)
// and collapses the resulting whitespace.
func removeSpans(s string, spans [][2]int) string {
	mask := make([]bool, len(s))
	for _, sp := range spans {
		for i := sp[0]; i < sp[1] && i < len(s); i++ {
			mask[i] = true
		}
	}
	var b strings.Builder
	for i, r := range s {
		if !mask[i] {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
