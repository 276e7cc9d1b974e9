package intake

import "sync"

// PointerEvent is a pointer-down at the given cell.
type PointerEvent struct {
	X, Y int
}

// PointerBus fans pointer-down events out to subscribers. One bus is shared by
// everything drawn in the same terminal.
type PointerBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(PointerEvent)
}

// NewPointerBus returns an empty bus.
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]func(PointerEvent))}
}

// Subscribe registers fn until the returned Subscription is closed.
func (b *PointerBus) Subscribe(fn func(PointerEvent)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[id] = fn
	return &Subscription{bus: b, id: id}
}

// Publish delivers ev to every current subscriber. Listeners run outside the
// bus lock, so they may subscribe or close from inside the callback.
func (b *PointerBus) Publish(ev PointerEvent) {
	b.mu.Lock()
	listeners := make([]func(PointerEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}

// Len returns the number of live subscriptions.
func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *PointerBus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Subscription is an owned registration on a PointerBus.
type Subscription struct {
	bus  *PointerBus
	id   int
	once sync.Once
}

// Close removes the listener. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.bus.remove(s.id) })
}
