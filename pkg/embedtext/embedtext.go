// Package embedtext builds the canonical text fed to the embedding provider
// for each entity type. The ordering and separators used here are stable by
// contract: changing them invalidates every previously computed embedding
// (spec.md §4.B).
package embedtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danverstone/realsearch/pkg/catalog"
)

const wikipediaFallbackChars = 500

// sep joins non-empty parts with " | ", skipping empty ones, matching the
// "description | features | address | amenities | persona-hints" shape
// spec.md §4.B specifies for properties.
func sep(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}

// Property returns the canonical embedding text for a property:
//
//	description | features (joined) | "{street}, {city}, {state}" | amenities (joined) | persona-hints
//
// personaHints is an optional free-text suffix (e.g. a persona/use-case
// blurb); pass "" when none applies.
func Property(p catalog.Property, personaHints string) string {
	addr := fmt.Sprintf("%s, %s, %s", p.Address.Street, p.Address.City, p.Address.State)
	return sep(
		p.Description,
		strings.Join(p.Features, ", "),
		addr,
		strings.Join(p.Amenities, ", "),
		personaHints,
	)
}

// Neighborhood returns the canonical embedding text for a neighborhood:
//
//	description | name | population | median_income | lifestyle_tags
func Neighborhood(n catalog.Neighborhood) string {
	pop := ""
	if n.Population > 0 {
		pop = strconv.Itoa(n.Population)
	}
	income := ""
	if n.MedianIncome > 0 {
		income = strconv.FormatFloat(n.MedianIncome, 'f', 2, 64)
	}
	return sep(
		n.Description,
		n.Name,
		pop,
		income,
		strings.Join(n.LifestyleTags, ", "),
	)
}

// Wikipedia returns the canonical embedding text for an article:
//
//	title + "\n\n" + long_summary
//
// falling back to the first N characters of full_content when no summary is
// present.
func Wikipedia(a catalog.WikipediaArticle) string {
	summary := a.LongSummary
	if summary == "" {
		summary = truncate(a.FullContent, wikipediaFallbackChars)
	}
	if summary == "" {
		return a.Title
	}
	return a.Title + "\n\n" + summary
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
