package catalog

import (
	"testing"

	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

func TestDefaultCatalogOrderAndContents(t *testing.T) {
	cat := Default()

	want := []enums.WasteType{
		enums.WasteTypePlastic,
		enums.WasteTypePaper,
		enums.WasteTypeElectronic,
		enums.WasteTypeOrganic,
		enums.WasteTypeMetal,
	}
	got := cat.Types()
	if len(got) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if !cat.Known(enums.WasteTypeOrganic) {
		t.Fatal("organic should be known")
	}
	if cat.Known(enums.WasteType("glass")) {
		t.Fatal("glass is not in the catalog")
	}
}

func TestMetalSubCategories(t *testing.T) {
	cat := Default()

	if !cat.HasSubCategories(enums.WasteTypeMetal) {
		t.Fatal("metal defines sub-categories")
	}
	if cat.HasSubCategories(enums.WasteTypePlastic) {
		t.Fatal("plastic has no sub-categories")
	}

	sub, ok := cat.SubCategoryOf(enums.WasteTypeMetal, "scraps_mixed")
	if !ok || sub.Label != "Scraps" {
		t.Fatalf("expected Scraps, got %+v ok=%v", sub, ok)
	}
	if _, ok := cat.SubCategoryOf(enums.WasteTypeMetal, "nonexistent"); ok {
		t.Fatal("unknown sub-category id must not resolve")
	}
	if _, ok := cat.SubCategoryOf(enums.WasteTypePaper, "metals_core"); ok {
		t.Fatal("sub-category lookup must be scoped to its type")
	}
}

func TestNewDropsDuplicateTypes(t *testing.T) {
	cat := New(
		Category{Type: enums.WasteTypePaper, Label: "Paper"},
		Category{Type: enums.WasteTypePaper, Label: "Paper Again"},
	)
	if len(cat.Types()) != 1 {
		t.Fatalf("expected duplicate type dropped, got %v", cat.Types())
	}
	got, _ := cat.Get(enums.WasteTypePaper)
	if got.Label != "Paper" {
		t.Fatalf("first declaration wins, got %q", got.Label)
	}
}
