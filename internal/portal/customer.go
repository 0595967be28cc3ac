// Package portal holds the explicit per-login session contexts. A session
// owns its subscription and derived views; closing it tears everything down
// so nothing outlives a logout or identity switch.
package portal

import (
	"context"
	"sync"

	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
)

// CustomerSession is one customer's live portal state: their profile and a
// subscription over their own bookings.
type CustomerSession struct {
	Identity identity.Identity
	Profile  profiles.UserProfile

	mu      sync.Mutex
	latest  []pickups.PickupRecord
	updates chan []pickups.PickupRecord
	stop    func()
	closed  bool
}

// OpenCustomerSession loads the profile (degrading to a minimal one) and
// subscribes to the customer's bookings.
func OpenCustomerSession(ctx context.Context, ident identity.Identity, profileSvc *profiles.Service, pickupSvc *pickups.Service) (*CustomerSession, error) {
	s := &CustomerSession{
		Identity: ident,
		Profile:  profileSvc.LoadUser(ctx, ident),
		updates:  make(chan []pickups.PickupRecord, 1),
	}

	stop, err := pickupSvc.WatchOwned(ctx, ident.UID, s.push)
	if err != nil {
		return nil, err
	}
	s.stop = stop
	return s, nil
}

// push stores the snapshot and offers it on the updates channel, replacing
// any undelivered one so readers always get the latest state.
func (s *CustomerSession) push(records []pickups.PickupRecord) {
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
	s.updates <- records
}

// Records returns the most recent snapshot.
func (s *CustomerSession) Records() []pickups.PickupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pickups.PickupRecord, len(s.latest))
	copy(out, s.latest)
	return out
}

// Snapshots exposes the latest-wins update channel. It is closed by Close.
func (s *CustomerSession) Snapshots() <-chan []pickups.PickupRecord {
	return s.updates
}

// Close ends the subscription. No snapshot is delivered after Close returns.
func (s *CustomerSession) Close() {
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
