// Package querybuilder builds query documents for every retrieval shape the
// demo harness and hybrid engine need (spec.md §4.E). Builders only
// construct request bodies; nothing here executes a query — that is
// pkg/retrieval's job.
package querybuilder

// GeoFilter constrains results to within Radius of Center.
type GeoFilter struct {
	Lat, Lon float64
	Radius   float64
	Unit     string // "mi" or "km"; defaults to "mi" when empty
}

// SearchFilters is the common non-scoring filter set every builder in this
// package accepts. All fields are optional; a zero-value SearchFilters
// applies no constraints.
type SearchFilters struct {
	PriceMin, PriceMax       float64
	BedroomsMin, BedroomsMax int
	BathroomsMin, BathroomsMax float64
	PropertyTypes            []string
	Cities                   []string
	States                   []string
	Features                 []string
	Status                   []string
	Geo                      *GeoFilter
	ListedAfter, ListedBefore string // RFC3339; empty disables the bound
	MaxDaysOnMarket          int
	HasParking               bool
}

// clauses renders f into bool-filter-context clauses (olivere/elastic's
// json-map style — see pkg/searchbackend/es, which ships these documents
// verbatim to the backend). Every filter here is non-scoring by contract
// (spec.md §4.E): none of these ever appear in a "must" clause.
func (f SearchFilters) clauses() []map[string]any {
	var clauses []map[string]any

	if f.PriceMin > 0 || f.PriceMax > 0 {
		r := map[string]any{}
		if f.PriceMin > 0 {
			r["gte"] = f.PriceMin
		}
		if f.PriceMax > 0 {
			r["lte"] = f.PriceMax
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"price": r}})
	}
	if f.BedroomsMin > 0 || f.BedroomsMax > 0 {
		r := map[string]any{}
		if f.BedroomsMin > 0 {
			r["gte"] = f.BedroomsMin
		}
		if f.BedroomsMax > 0 {
			r["lte"] = f.BedroomsMax
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"bedrooms": r}})
	}
	if f.BathroomsMin > 0 || f.BathroomsMax > 0 {
		r := map[string]any{}
		if f.BathroomsMin > 0 {
			r["gte"] = f.BathroomsMin
		}
		if f.BathroomsMax > 0 {
			r["lte"] = f.BathroomsMax
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"bathrooms": r}})
	}
	if len(f.PropertyTypes) > 0 {
		clauses = append(clauses, termsClause("property_type", f.PropertyTypes))
	}
	if len(f.Cities) > 0 {
		clauses = append(clauses, termsClause("address.city", lowerAll(f.Cities)))
	}
	if len(f.States) > 0 {
		clauses = append(clauses, termsClause("address.state", f.States))
	}
	if len(f.Features) > 0 {
		clauses = append(clauses, termsClause("search_tags", f.Features))
	}
	if len(f.Status) > 0 {
		clauses = append(clauses, termsClause("status", f.Status))
	}
	if f.Geo != nil {
		unit := f.Geo.Unit
		if unit == "" {
			unit = "mi"
		}
		clauses = append(clauses, map[string]any{
			"geo_distance": map[string]any{
				"distance": geoDistanceString(f.Geo.Radius, unit),
				"address.location": map[string]any{
					"lat": f.Geo.Lat,
					"lon": f.Geo.Lon,
				},
			},
		})
	}
	if f.ListedAfter != "" || f.ListedBefore != "" {
		r := map[string]any{}
		if f.ListedAfter != "" {
			r["gte"] = f.ListedAfter
		}
		if f.ListedBefore != "" {
			r["lte"] = f.ListedBefore
		}
		clauses = append(clauses, map[string]any{"range": map[string]any{"listed_at": r}})
	}
	if f.MaxDaysOnMarket > 0 {
		clauses = append(clauses, map[string]any{
			"range": map[string]any{
				"listed_at": map[string]any{"gte": daysAgoExpr(f.MaxDaysOnMarket)},
			},
		})
	}
	if f.HasParking {
		clauses = append(clauses, termsClause("search_tags", []string{"parking"}))
	}
	return clauses
}

func termsClause(field string, values []string) map[string]any {
	return map[string]any{"terms": map[string]any{field: values}}
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = toLower(v)
	}
	return out
}

func geoDistanceString(radius float64, unit string) string {
	return formatFloat(radius) + unit
}
