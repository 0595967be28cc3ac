package docstore

import "sync"

// Notifier receives collection-change signals from writers. A Feed is the
// in-process implementation; a redis-backed bridge implements it for
// multi-instance deployments.
type Notifier interface {
	Publish(collection string)
}

// Feed broadcasts collection-change signals to subscribers. Signals carry
// only the collection name; subscribers re-run their query to get the new
// snapshot. Each subscriber keeps a pending set keyed by collection, so a
// slow consumer coalesces repeat signals for the same collection but never
// loses one for a different collection.
type Feed struct {
	mu   sync.Mutex
	subs map[int]*feedSub
	next int
}

// NewFeed returns an empty broadcast hub.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]*feedSub)}
}

// Publish signals that documents in the collection changed.
func (f *Feed) Publish(collection string) {
	f.mu.Lock()
	subs := make([]*feedSub, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.Unlock()

	for _, s := range subs {
		s.enqueue(collection)
	}
}

// Subscribe returns a signal channel and a release function. The channel is
// closed on release.
func (f *Feed) Subscribe() (<-chan string, func()) {
	sub := &feedSub{
		queued: make(map[string]struct{}),
		wake:   make(chan struct{}, 1),
		out:    make(chan string),
		done:   make(chan struct{}),
	}
	go sub.pump()

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = sub
	f.mu.Unlock()

	release := func() {
		f.mu.Lock()
		existing, ok := f.subs[id]
		if ok {
			delete(f.subs, id)
		}
		f.mu.Unlock()
		if ok {
			close(existing.done)
		}
	}
	return sub.out, release
}

type feedSub struct {
	mu      sync.Mutex
	pending []string
	queued  map[string]struct{}
	wake    chan struct{}
	out     chan string
	done    chan struct{}
}

func (s *feedSub) enqueue(collection string) {
	s.mu.Lock()
	if _, dup := s.queued[collection]; dup {
		s.mu.Unlock()
		return
	}
	s.queued[collection] = struct{}{}
	s.pending = append(s.pending, collection)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *feedSub) take() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return "", false
	}
	collection := s.pending[0]
	s.pending = s.pending[1:]
	delete(s.queued, collection)
	return collection, true
}

func (s *feedSub) pump() {
	defer close(s.out)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			collection, ok := s.take()
			if !ok {
				break
			}
			select {
			case s.out <- collection:
			case <-s.done:
				return
			}
		}
	}
}
