package controllers

import (
	"net/http"

	"github.com/nexwaste/nexwaste-backend/api/responses"
	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

type subCategoryPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type categoryPayload struct {
	Type          string               `json:"type"`
	Label         string               `json:"label"`
	SubCategories []subCategoryPayload `json:"subCategories,omitempty"`
}

type catalogPayload struct {
	Categories []categoryPayload `json:"categories"`
	TimeSlots  []string          `json:"timeSlots"`
}

// Catalog serves the category table and bookable time slots both portals
// render their pickers from.
func Catalog(cat *catalog.Catalog) http.HandlerFunc {
	categories := make([]categoryPayload, 0)
	for _, c := range cat.Categories() {
		payload := categoryPayload{Type: string(c.Type), Label: c.Label}
		for _, sub := range c.SubCategories {
			payload.SubCategories = append(payload.SubCategories, subCategoryPayload{ID: sub.ID, Label: sub.Label})
		}
		categories = append(categories, payload)
	}
	slots := make([]string, 0)
	for _, slot := range enums.TimeSlots() {
		slots = append(slots, string(slot))
	}
	body := catalogPayload{Categories: categories, TimeSlots: slots}

	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, body)
	}
}
