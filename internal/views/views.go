// Package views derives portal read models from live pickup snapshots. All
// functions are pure: they never mutate their inputs and applying them twice
// yields the same result.
package views

import (
	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

// Filters narrows a partner's task queue. Zero values are pass-through:
// an empty Fleet, Status, or SubType matches everything, and an empty
// Portfolio leaves all categories visible.
type Filters struct {
	Fleet     enums.WasteType
	Status    enums.PickupStatus
	SubType   string
	Portfolio []enums.WasteType
}

// Apply runs the record list through the filter pipeline, preserving input
// order. Records whose primary type is outside the catalog never surface.
func Apply(cat *catalog.Catalog, records []pickups.PickupRecord, f Filters) []pickups.PickupRecord {
	out := make([]pickups.PickupRecord, 0, len(records))
	for _, rec := range records {
		primary := rec.Primary()
		if !cat.Known(primary) {
			continue
		}
		if len(f.Portfolio) > 0 && !contains(f.Portfolio, primary) {
			continue
		}
		if f.Fleet != "" && primary != f.Fleet {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		// Sub-type only discriminates within categories that define
		// sub-category buckets.
		if f.SubType != "" && cat.HasSubCategories(primary) && rec.SubType != f.SubType {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// QueueStats summarizes the partner queue.
type QueueStats struct {
	Pending    int     `json:"pending"`
	InTransit  int     `json:"inTransit"`
	Completed  int     `json:"completed"`
	Efficiency float64 `json:"efficiency"`
}

// Stats counts records per status. Efficiency is the completed share of the
// whole queue, zero when the queue is empty.
func Stats(records []pickups.PickupRecord) QueueStats {
	var s QueueStats
	for _, rec := range records {
		switch rec.Status {
		case enums.PickupStatusPending:
			s.Pending++
		case enums.PickupStatusInProgress:
			s.InTransit++
		case enums.PickupStatusCompleted:
			s.Completed++
		}
	}
	if total := len(records); total > 0 {
		s.Efficiency = float64(s.Completed) / float64(total)
	}
	return s
}

// ActiveByVertical counts non-completed records per catalog category, in
// catalog order. Unknown primary types are excluded, matching Apply.
func ActiveByVertical(cat *catalog.Catalog, records []pickups.PickupRecord) map[enums.WasteType]int {
	out := make(map[enums.WasteType]int, len(cat.Types()))
	for _, t := range cat.Types() {
		out[t] = 0
	}
	for _, rec := range records {
		primary := rec.Primary()
		if !cat.Known(primary) {
			continue
		}
		if rec.Status == enums.PickupStatusCompleted {
			continue
		}
		out[primary]++
	}
	return out
}

func contains(list []enums.WasteType, t enums.WasteType) bool {
	for _, candidate := range list {
		if candidate == t {
			return true
		}
	}
	return false
}
