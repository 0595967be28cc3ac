// Package catalog holds the waste category table shared by both portals.
// The catalog is injected rather than imported so the partner portal can
// later scope an agency to a subset without touching the consumers.
package catalog

import "github.com/nexwaste/nexwaste-backend/pkg/enums"

// SubCategory is a finer-grained bucket within a category.
type SubCategory struct {
	ID    string
	Label string
}

// Category describes one waste vertical.
type Category struct {
	Type          enums.WasteType
	Label         string
	SubCategories []SubCategory
}

// Catalog is an ordered category table keyed by waste type.
type Catalog struct {
	order []enums.WasteType
	byKey map[enums.WasteType]Category
}

// New builds a catalog preserving declaration order.
func New(categories ...Category) *Catalog {
	c := &Catalog{byKey: make(map[enums.WasteType]Category, len(categories))}
	for _, cat := range categories {
		if _, dup := c.byKey[cat.Type]; dup {
			continue
		}
		c.order = append(c.order, cat.Type)
		c.byKey[cat.Type] = cat
	}
	return c
}

// Default returns the five-category catalog both portals run on.
func Default() *Catalog {
	return New(
		Category{Type: enums.WasteTypePlastic, Label: "Plastic"},
		Category{Type: enums.WasteTypePaper, Label: "Paper"},
		Category{Type: enums.WasteTypeElectronic, Label: "E-Waste"},
		Category{Type: enums.WasteTypeOrganic, Label: "Organic"},
		Category{Type: enums.WasteTypeMetal, Label: "Metal", SubCategories: []SubCategory{
			{ID: "metals_core", Label: "Metals"},
			{ID: "scraps_mixed", Label: "Scraps"},
		}},
	)
}

// Known reports whether the type is part of the catalog.
func (c *Catalog) Known(t enums.WasteType) bool {
	_, ok := c.byKey[t]
	return ok
}

// Get returns the category for the type.
func (c *Catalog) Get(t enums.WasteType) (Category, bool) {
	cat, ok := c.byKey[t]
	return cat, ok
}

// Types returns the catalog's waste types in declaration order.
func (c *Catalog) Types() []enums.WasteType {
	out := make([]enums.WasteType, len(c.order))
	copy(out, c.order)
	return out
}

// Categories returns the full table in declaration order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.byKey[t])
	}
	return out
}

// SubCategoryOf resolves a sub-category id within the given type.
func (c *Catalog) SubCategoryOf(t enums.WasteType, id string) (SubCategory, bool) {
	cat, ok := c.byKey[t]
	if !ok {
		return SubCategory{}, false
	}
	for _, sub := range cat.SubCategories {
		if sub.ID == id {
			return sub, true
		}
	}
	return SubCategory{}, false
}

// HasSubCategories reports whether the type defines sub-category buckets.
func (c *Catalog) HasSubCategories(t enums.WasteType) bool {
	cat, ok := c.byKey[t]
	return ok && len(cat.SubCategories) > 0
}
