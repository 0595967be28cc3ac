package portal

import (
	"context"
	"sync"

	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/internal/views"
)

// PartnerSession is one partner's live portal state: the agency profile (nil
// until registered) and a subscription over the whole pickup queue.
type PartnerSession struct {
	Identity identity.Identity
	Agency   *profiles.AgencyProfile

	cat *catalog.Catalog

	mu      sync.Mutex
	latest  []pickups.PickupRecord
	updates chan []pickups.PickupRecord
	stop    func()
	closed  bool
}

// OpenPartnerSession loads the agency profile and subscribes to the full
// queue.
func OpenPartnerSession(ctx context.Context, ident identity.Identity, cat *catalog.Catalog, profileSvc *profiles.Service, pickupSvc *pickups.Service) (*PartnerSession, error) {
	agency, err := profileSvc.LoadAgency(ctx, ident.UID)
	if err != nil {
		return nil, err
	}

	s := &PartnerSession{
		Identity: ident,
		Agency:   agency,
		cat:      cat,
		updates:  make(chan []pickups.PickupRecord, 1),
	}

	stop, err := pickupSvc.WatchAll(ctx, s.push)
	if err != nil {
		return nil, err
	}
	s.stop = stop
	return s, nil
}

func (s *PartnerSession) push(records []pickups.PickupRecord) {
	var f views.Filters
	if s.Agency != nil {
		f.Portfolio = s.Agency.Portfolio
	}
	scoped := views.Apply(s.cat, records, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.latest = records
	select {
	case <-s.updates:
	default:
	}
	s.updates <- scoped
}

// Visible runs the current snapshot through the filter pipeline, always
// scoped to the agency's portfolio.
func (s *PartnerSession) Visible(f views.Filters) []pickups.PickupRecord {
	s.mu.Lock()
	records := s.latest
	s.mu.Unlock()

	if s.Agency != nil && len(f.Portfolio) == 0 {
		f.Portfolio = s.Agency.Portfolio
	}
	return views.Apply(s.cat, records, f)
}

// VisibleCategories returns the agency's declared portfolio, or the full
// catalog when no portfolio is declared.
func (s *PartnerSession) VisibleCategories() []catalog.Category {
	if s.Agency == nil || len(s.Agency.Portfolio) == 0 {
		return s.cat.Categories()
	}
	out := make([]catalog.Category, 0, len(s.Agency.Portfolio))
	for _, t := range s.Agency.Portfolio {
		if c, ok := s.cat.Get(t); ok {
			out = append(out, c)
		}
	}
	return out
}

// Stats summarizes the portfolio-scoped queue.
func (s *PartnerSession) Stats() views.QueueStats {
	return views.Stats(s.Visible(views.Filters{}))
}

// ActiveByVertical counts active records per visible category.
func (s *PartnerSession) ActiveByVertical() map[string]int {
	scoped := s.Visible(views.Filters{})
	counts := views.ActiveByVertical(s.cat, scoped)
	out := make(map[string]int, len(counts))
	for t, n := range counts {
		out[string(t)] = n
	}
	return out
}

// Snapshots exposes the latest-wins update channel. Snapshots are already
// portfolio-scoped and exclude uncategorizable records, matching Visible
// with no extra filters. The channel is closed by Close.
func (s *PartnerSession) Snapshots() <-chan []pickups.PickupRecord {
	return s.updates
}

// Close ends the subscription. No snapshot is delivered after Close returns.
func (s *PartnerSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.stop()

	s.mu.Lock()
	close(s.updates)
	s.mu.Unlock()
}
