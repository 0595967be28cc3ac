package enums

import "testing"

func TestParseWasteType(t *testing.T) {
	for _, raw := range []string{"plastic", "paper", "electronic", "organic", "metal"} {
		wt, err := ParseWasteType(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !wt.IsValid() {
			t.Fatalf("%q should be valid", raw)
		}
	}
	if _, err := ParseWasteType("glass"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestTimeSlotCatalog(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(slots))
	}
	if slots[0] != TimeSlotMorning {
		t.Fatalf("unexpected first slot %s", slots[0])
	}
	if !TimeSlot("9:00 AM - 11:00 AM").IsValid() {
		t.Fatal("morning slot label should parse")
	}
	if TimeSlot("5:00 PM - 7:00 PM").IsValid() {
		t.Fatal("unknown slot must be rejected")
	}
}
