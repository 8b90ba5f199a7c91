package catalog

import "testing"

func TestPropertyDeriveFields(t *testing.T) {
	p := Property{
		Price:      500000,
		SquareFeet: 2000,
		PropertyType: "condo",
		Features:     []string{"hardwood floors", "condo"},
		Amenities:    []string{"pool"},
	}
	p.DeriveFields()

	if p.PricePerSqFt != 250 {
		t.Fatalf("PricePerSqFt = %v, want 250", p.PricePerSqFt)
	}
	want := []string{"condo", "hardwood floors", "pool"}
	if len(p.SearchTags) != len(want) {
		t.Fatalf("SearchTags = %v, want %v", p.SearchTags, want)
	}
	for i, tag := range want {
		if p.SearchTags[i] != tag {
			t.Fatalf("SearchTags[%d] = %q, want %q", i, p.SearchTags[i], tag)
		}
	}
}

func TestPropertyDeriveFieldsNoPrice(t *testing.T) {
	p := Property{SquareFeet: 1000}
	p.DeriveFields()
	if p.PricePerSqFt != 0 {
		t.Fatalf("PricePerSqFt = %v, want 0 when price is absent", p.PricePerSqFt)
	}
}

func TestSpecForDimensionPropagation(t *testing.T) {
	vec := DefaultVectorConfig(1024)
	spec, err := SpecFor(EntityProperty, "properties", vec)
	if err != nil {
		t.Fatalf("SpecFor: %v", err)
	}
	props := spec.Mapping["properties"].(map[string]any)
	emb := props["embedding"].(map[string]any)
	if emb["dims"] != 1024 {
		t.Fatalf("embedding dims = %v, want 1024", emb["dims"])
	}
	if emb["similarity"] != "cosine" {
		t.Fatalf("embedding similarity = %v, want cosine", emb["similarity"])
	}

	addr := props["address"].(map[string]any)["properties"].(map[string]any)
	if addr["state"].(map[string]any)["type"] != "keyword" {
		t.Fatalf("address.state must be keyword, never state_code")
	}
}

func TestSpecForUnknownKind(t *testing.T) {
	if _, err := SpecFor(EntityKind("bogus"), "x", DefaultVectorConfig(8)); err == nil {
		t.Fatal("expected error for unknown entity kind")
	}
}
