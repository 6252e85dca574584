package viewer

import (
	"github.com/oomph-ac/fakeentity/internal"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"github.com/sasha-s/go-deadlock"
)

// Observer is a client that may be sent packets about a fake entity. Observers are identified by their
// interface value, so implementations are generally pointer types. *minecraft.Conn satisfies Observer.
type Observer interface {
	WritePacket(pk packet.Packet) error
}

var snapshotPool = internal.NewSlicePool[Observer](16)

// Registry keeps track of the observers related to a single fake entity and whether the entity is currently
// rendered for each of them. Reads may happen concurrently, while writes are exclusive with every other
// access.
type Registry struct {
	mu        deadlock.RWMutex
	observers map[Observer]bool
}

// NewRegistry creates a Registry holding the observers passed. Each of them is initially flagged as not
// visible.
func NewRegistry(observers ...Observer) *Registry {
	r := &Registry{observers: make(map[Observer]bool, len(observers))}
	for _, o := range observers {
		r.observers[o] = false
	}
	return r
}

// Visible returns true if the entity is rendered for the observer passed. Unknown observers are not visible.
func (r *Registry) Visible(o Observer) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.observers[o]
}

// Contains returns true if the observer is related to the entity, regardless of its visibility flag.
func (r *Registry) Contains(o Observer) bool {
	r.mu.RLock()
	_, ok := r.observers[o]
	r.mu.RUnlock()
	return ok
}

// Set sets the visibility flag of an observer, adding it to the registry if it was not yet present.
func (r *Registry) Set(o Observer, visible bool) {
	r.mu.Lock()
	r.observers[o] = visible
	r.mu.Unlock()
}

// Remove drops the observer from the registry.
func (r *Registry) Remove(o Observer) {
	r.mu.Lock()
	delete(r.observers, o)
	r.mu.Unlock()
}

// Clear drops every observer from the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	clear(r.observers)
	r.mu.Unlock()
}

// Len returns the amount of observers in the registry, visible or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Observers returns every observer in the registry along with its visibility flag. The map returned is a
// copy and may be modified freely.
func (r *Registry) Observers() map[Observer]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := make(map[Observer]bool, len(r.observers))
	for o, visible := range r.observers {
		m[o] = visible
	}
	return m
}

// ForEachVisible calls f for every observer flagged as visible. The set of observers is taken as a snapshot
// before f is first called, so f may freely call back into the registry. Every observer in the snapshot is
// visited exactly once.
func (r *Registry) ForEachVisible(f func(o Observer)) {
	snapshot := snapshotPool.Get()
	defer snapshotPool.Put(snapshot)

	r.mu.RLock()
	for o, visible := range r.observers {
		if visible {
			*snapshot = append(*snapshot, o)
		}
	}
	r.mu.RUnlock()

	for _, o := range *snapshot {
		f(o)
	}
}
