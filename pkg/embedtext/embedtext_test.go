package embedtext

import (
	"strings"
	"testing"

	"github.com/danverstone/realsearch/pkg/catalog"
)

func TestPropertyOrderingStable(t *testing.T) {
	p := catalog.Property{
		Description: "Sunny condo",
		Features:    []string{"hardwood floors"},
		Amenities:   []string{"pool"},
		Address:     catalog.Address{Street: "1 Main St", City: "Austin", State: "TX"},
	}
	got := Property(p, "")
	want := "Sunny condo | hardwood floors | 1 Main St, Austin, TX | pool"
	if got != want {
		t.Fatalf("Property() = %q, want %q", got, want)
	}
}

func TestPropertySkipsEmptyParts(t *testing.T) {
	p := catalog.Property{Address: catalog.Address{City: "Austin", State: "TX"}}
	got := Property(p, "")
	if strings.Contains(got, "||") {
		t.Fatalf("Property() = %q, should not contain doubled separators", got)
	}
}

func TestWikipediaFallsBackToFullContent(t *testing.T) {
	a := catalog.WikipediaArticle{
		Title:       "Austin, Texas",
		FullContent: strings.Repeat("a", 1000),
	}
	got := Wikipedia(a)
	if !strings.HasPrefix(got, "Austin, Texas\n\n") {
		t.Fatalf("Wikipedia() missing title prefix: %q", got[:40])
	}
	body := strings.TrimPrefix(got, "Austin, Texas\n\n")
	if len(body) != wikipediaFallbackChars {
		t.Fatalf("fallback body length = %d, want %d", len(body), wikipediaFallbackChars)
	}
}

func TestWikipediaPrefersSummary(t *testing.T) {
	a := catalog.WikipediaArticle{Title: "T", LongSummary: "summary text", FullContent: strings.Repeat("x", 10000)}
	got := Wikipedia(a)
	if got != "T\n\nsummary text" {
		t.Fatalf("Wikipedia() = %q", got)
	}
}

func TestNeighborhoodOrdering(t *testing.T) {
	n := catalog.Neighborhood{
		Description:   "Trendy area",
		Name:          "SoMa",
		Population:    12000,
		MedianIncome:  95000.5,
		LifestyleTags: []string{"nightlife", "transit"},
	}
	got := Neighborhood(n)
	want := "Trendy area | SoMa | 12000 | 95000.50 | nightlife, transit"
	if got != want {
		t.Fatalf("Neighborhood() = %q, want %q", got, want)
	}
}
