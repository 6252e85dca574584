package tracker

import (
	"errors"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/fake"
	"github.com/oomph-ac/fakeentity/oerror"
	"github.com/oomph-ac/fakeentity/viewer"
	"github.com/sasha-s/go-deadlock"
)

// DefaultViewDistance is the view distance in blocks used for entities added without one.
const DefaultViewDistance = 64.0

// Viewer is an observer with a position in the world, such as a *virtual.Player.
type Viewer interface {
	viewer.Observer
	Position() mgl64.Vec3
}

// Trackable is a fake entity that can be managed by a Tracker.
type Trackable interface {
	fake.Movable
	Observers() *viewer.Registry
}

// Options specifies how a Tracker renders an entity.
type Options struct {
	// Global entities are rendered for every viewer, regardless of their distance.
	Global bool
	// ViewDistance is the distance in blocks within which viewers are shown the entity. If zero,
	// DefaultViewDistance is used.
	ViewDistance float64
}

// entry is an entity tracked along with the mutex serialising all calls to it.
type entry struct {
	mu   deadlock.Mutex
	e    Trackable
	opts Options
}

// Tracker manages a set of fake entities and the viewers that may see them, rendering each entity for the
// viewers within its view distance. All calls on a tracked entity go through the Tracker so that they never
// run concurrently.
type Tracker struct {
	log *slog.Logger

	mu       deadlock.RWMutex
	entities map[int64]*entry
	viewers  map[Viewer]struct{}
}

// New creates an empty Tracker.
func New(log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{
		log:      log,
		entities: make(map[int64]*entry),
		viewers:  make(map[Viewer]struct{}),
	}
}

// Add starts tracking the entity passed, spawning it and rendering it for all viewers in range. Adding an
// entity with an ID that is already tracked fails.
func (t *Tracker) Add(e Trackable, opts Options) error {
	if opts.ViewDistance <= 0 {
		opts.ViewDistance = DefaultViewDistance
	}
	en := &entry{e: e, opts: opts}

	t.mu.Lock()
	if _, ok := t.entities[e.ID()]; ok {
		t.mu.Unlock()
		return oerror.New("entity %d is already tracked", e.ID())
	}
	t.entities[e.ID()] = en
	viewers := t.viewerSnapshot()
	t.mu.Unlock()

	en.mu.Lock()
	defer en.mu.Unlock()

	errs := []error{e.Spawn()}
	for _, v := range viewers {
		errs = append(errs, t.refresh(en, v))
	}
	return errors.Join(errs...)
}

// Remove stops tracking the entity with the ID passed and removes it, despawning it for all viewers.
func (t *Tracker) Remove(id int64) error {
	t.mu.Lock()
	en, ok := t.entities[id]
	delete(t.entities, id)
	t.mu.Unlock()
	if !ok {
		return oerror.New("entity %d is not tracked", id)
	}

	en.mu.Lock()
	defer en.mu.Unlock()
	return en.e.Remove()
}

// Len returns the amount of entities tracked.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entities)
}

// Update calls f with the entity with the ID passed, making sure no other call on the entity runs at the same
// time.
func (t *Tracker) Update(id int64, f func(e Trackable) error) error {
	t.mu.RLock()
	en, ok := t.entities[id]
	t.mu.RUnlock()
	if !ok {
		return oerror.New("entity %d is not tracked", id)
	}

	en.mu.Lock()
	defer en.mu.Unlock()
	if en.e.State() == fake.StateRemoved {
		return oerror.New("entity %d was removed", id)
	}
	return f(en.e)
}

// Join adds a viewer to the tracker, rendering every entity in range for it.
func (t *Tracker) Join(v Viewer) error {
	t.mu.Lock()
	t.viewers[v] = struct{}{}
	entries := t.entrySnapshot()
	t.mu.Unlock()

	var errs []error
	for _, en := range entries {
		en.mu.Lock()
		errs = append(errs, t.refresh(en, v))
		en.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Leave removes a viewer from the tracker. No packets are sent to the viewer, as it is assumed to be gone.
func (t *Tracker) Leave(v Viewer) {
	t.mu.Lock()
	delete(t.viewers, v)
	entries := t.entrySnapshot()
	t.mu.Unlock()

	for _, en := range entries {
		en.e.Observers().Remove(v)
	}
}

// Tick renders and unrenders every entity for the viewers that moved in or out of its range.
func (t *Tracker) Tick() error {
	t.mu.RLock()
	entries := t.entrySnapshot()
	viewers := t.viewerSnapshot()
	t.mu.RUnlock()

	var errs []error
	for _, en := range entries {
		en.mu.Lock()
		for _, v := range viewers {
			errs = append(errs, t.refresh(en, v))
		}
		en.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Close removes every entity tracked and forgets all viewers.
func (t *Tracker) Close() error {
	t.mu.Lock()
	entries := t.entrySnapshot()
	clear(t.entities)
	clear(t.viewers)
	t.mu.Unlock()

	var errs []error
	for _, en := range entries {
		en.mu.Lock()
		errs = append(errs, en.e.Remove())
		en.mu.Unlock()
	}
	return errors.Join(errs...)
}

// refresh renders or unrenders the entity of en for v depending on whether v is in range. en.mu must be held.
func (t *Tracker) refresh(en *entry, v Viewer) error {
	if en.e.State() == fake.StateRemoved {
		return nil
	}

	inRange := en.opts.Global || v.Position().Sub(en.e.Location().Position).Len() <= en.opts.ViewDistance
	visible := en.e.Observers().Visible(v)

	var err error
	switch {
	case inRange && !visible:
		err = en.e.Render(v)
	case !inRange && visible:
		err = en.e.Unrender(v)
	}
	if err != nil {
		t.log.Debug("failed refreshing entity for viewer", "entity", en.e.ID(), "err", err)
	}
	return err
}

// entrySnapshot returns all entries. t.mu must be held.
func (t *Tracker) entrySnapshot() []*entry {
	entries := make([]*entry, 0, len(t.entities))
	for _, en := range t.entities {
		entries = append(entries, en)
	}
	return entries
}

// viewerSnapshot returns all viewers. t.mu must be held.
func (t *Tracker) viewerSnapshot() []Viewer {
	viewers := make([]Viewer, 0, len(t.viewers))
	for v := range t.viewers {
		viewers = append(viewers, v)
	}
	return viewers
}
