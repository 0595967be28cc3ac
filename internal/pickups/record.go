package pickups

import (
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

// Collection is the docstore collection pickup records live in.
const Collection = "pickups"

const defaultCustomerName = "Customer"

// PickupRecord is one scheduled pickup.
type PickupRecord struct {
	ID           string             `json:"id"`
	OwnerID      string             `json:"ownerId"`
	CustomerName string             `json:"customerName"`
	WasteTypes   []enums.WasteType  `json:"wasteTypes"`
	SubType      string             `json:"subType,omitempty"`
	Address      string             `json:"address"`
	Date         string             `json:"date"`
	TimeSlot     enums.TimeSlot     `json:"timeSlot"`
	Status       enums.PickupStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// Primary returns the record's leading waste type, which drives category
// grouping and sub-type checks.
func (r PickupRecord) Primary() enums.WasteType {
	if len(r.WasteTypes) == 0 {
		return ""
	}
	return r.WasteTypes[0]
}

func (r PickupRecord) fields() map[string]any {
	types := make([]any, 0, len(r.WasteTypes))
	for _, t := range r.WasteTypes {
		types = append(types, string(t))
	}
	name := r.CustomerName
	if name == "" {
		name = defaultCustomerName
	}
	return map[string]any{
		"ownerId":      r.OwnerID,
		"customerName": name,
		"wasteTypes":   types,
		"subType":      r.SubType,
		"address":      r.Address,
		"date":         r.Date,
		"timeSlot":     string(r.TimeSlot),
		"status":       string(r.Status),
	}
}

func fromDocument(doc docstore.Document) PickupRecord {
	rec := PickupRecord{
		ID:           doc.ID,
		OwnerID:      stringField(doc, "ownerId"),
		CustomerName: stringField(doc, "customerName"),
		SubType:      stringField(doc, "subType"),
		Address:      stringField(doc, "address"),
		Date:         stringField(doc, "date"),
		TimeSlot:     enums.TimeSlot(stringField(doc, "timeSlot")),
		Status:       enums.PickupStatus(stringField(doc, "status")),
		CreatedAt:    doc.CreatedAt,
	}
	if rec.CustomerName == "" {
		rec.CustomerName = defaultCustomerName
	}
	if raw, ok := doc.Fields["wasteTypes"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				rec.WasteTypes = append(rec.WasteTypes, enums.WasteType(s))
			}
		}
	}
	return rec
}

func fromDocuments(docs []docstore.Document) []PickupRecord {
	out := make([]PickupRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out
}

func stringField(doc docstore.Document, key string) string {
	if v, ok := doc.Fields[key].(string); ok {
		return v
	}
	return ""
}
