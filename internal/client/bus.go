package client

import (
	"sync"

	"city-bomber/internal/protocol"
)

// Handler receives one inbound envelope.
type Handler func(env protocol.Envelope)

// Subscription identifies a registered handler so it can be removed.
type Subscription struct {
	typ protocol.Type
	id  uint64
}

type subscriber struct {
	id uint64
	fn Handler
}

// Bus keeps handlers per envelope type. Several handlers may share a type
// and run in registration order.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[protocol.Type][]subscriber
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[protocol.Type][]subscriber)}
}

func (b *Bus) On(t protocol.Type, fn Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[t] = append(b.handlers[t], subscriber{id: b.nextID, fn: fn})
	return Subscription{typ: t, id: b.nextID}
}

// Off removes a handler. It reports whether the subscription was still
// registered.
func (b *Bus) Off(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.handlers[sub.typ]
	for i, s := range list {
		if s.id == sub.id {
			b.handlers[sub.typ] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Emit calls every handler registered for env.Type. Handlers added or removed
// during Emit take effect from the next envelope.
func (b *Bus) Emit(env protocol.Envelope) {
	b.mu.Lock()
	list := b.handlers[env.Type]
	snapshot := make([]subscriber, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn(env)
	}
}
