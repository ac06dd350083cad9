// Package notify implements the change signal used to propagate wishlist
// updates between otherwise unrelated components: a strictly increasing
// version counter with an explicit subscriber list. A component that mutates
// a wishlist flag calls Notify; every subscriber observes a newer version and
// re-derives its state.
package notify

import "sync"

// Broadcaster is a process-wide change signal. The zero value is not usable;
// create one with New.
type Broadcaster struct {
	mu      sync.Mutex
	version uint64
	nextID  int
	subs    map[int]chan uint64
}

// New creates a Broadcaster with version 0 and no subscribers.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan uint64)}
}

// Version returns the current version. It starts at 0 and increases by
// exactly 1 per Notify call.
func (b *Broadcaster) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// Notify increments the version and delivers it to every subscriber.
// Delivery never blocks: each subscription channel holds only the latest
// undelivered version, so a slow subscriber observes a coalesced signal
// rather than a backlog.
func (b *Broadcaster) Notify() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.version++
	for _, ch := range b.subs {
		select {
		case ch <- b.version:
		default:
			// Drop the stale value and replace it with the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- b.version
		}
	}
	return b.version
}

// Subscription receives version updates from a Broadcaster.
type Subscription struct {
	id int
	b  *Broadcaster
	ch chan uint64
}

// Subscribe registers a new subscriber.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan uint64, 1)
	b.subs[id] = ch

	return &Subscription{id: id, b: b, ch: ch}
}

// C returns the channel carrying the latest version.
func (s *Subscription) C() <-chan uint64 {
	return s.ch
}

// Close detaches the subscription from the broadcaster.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.subs, s.id)
}
