package profiles

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore/memstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
)

func newTestService(store docstore.Store) *Service {
	return NewService(store, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
}

type failingStore struct {
	docstore.Store
}

func (failingStore) Get(context.Context, string, string) (docstore.Document, error) {
	return docstore.Document{}, errors.New("store unavailable")
}

func TestLoadUserReadsStoredProfile(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	store.Set(ctx, "users", "u1", map[string]any{
		"name":        "Asha",
		"email":       "asha@example.com",
		"phone":       "9000000000",
		"area":        "Kothrud",
		"flatNo":      "B-12",
		"street":      "Paud Road",
		"fullAddress": "B-12, Paud Road",
	})

	svc := newTestService(store)
	got := svc.LoadUser(ctx, identity.Identity{UID: "u1", Email: "stale@example.com"})
	if got.FullAddress != "B-12, Paud Road" || got.Name != "Asha" {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestLoadUserFallsBackOnMissingDoc(t *testing.T) {
	svc := newTestService(memstore.New())
	ident := identity.Identity{UID: "u1", Email: "asha@example.com", DisplayName: "Asha"}

	got := svc.LoadUser(context.Background(), ident)
	if got.UID != "u1" || got.Email != "asha@example.com" || got.Name != "Asha" {
		t.Fatalf("expected minimal profile from identity, got %+v", got)
	}
	if got.FullAddress != "" {
		t.Fatal("minimal profile carries no address")
	}
}

func TestLoadUserFallsBackOnStoreFailure(t *testing.T) {
	svc := newTestService(failingStore{})
	ident := identity.Identity{UID: "u1", Email: "asha@example.com", DisplayName: "Asha"}

	got := svc.LoadUser(context.Background(), ident)
	if got.UID != "u1" || got.Name != "Asha" {
		t.Fatalf("store failure must degrade, not surface: %+v", got)
	}
}

func TestAgencyRoundTrip(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store)
	ctx := context.Background()

	in := AgencyProfile{
		UID:       "p1",
		Name:      "GreenFleet",
		City:      "Pune",
		HubLat:    18.52,
		HubLng:    73.85,
		HubLabel:  "FC Road, Pune",
		Portfolio: []enums.WasteType{enums.WasteTypeMetal, enums.WasteTypePaper},
	}
	if err := svc.SaveAgency(ctx, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := svc.LoadAgency(ctx, "p1")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored profile")
	}
	if got.Name != "GreenFleet" || got.HubLat != 18.52 || len(got.Portfolio) != 2 {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestLoadAgencyMissingReturnsNil(t *testing.T) {
	svc := newTestService(memstore.New())
	got, err := svc.LoadAgency(context.Background(), "p1")
	if err != nil {
		t.Fatalf("missing agency must not error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil profile, got %+v", got)
	}
}
