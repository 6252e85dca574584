package fake

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/assert"
	"github.com/oomph-ac/fakeentity/entity"
	"github.com/oomph-ac/fakeentity/viewer"
	"go.uber.org/atomic"
)

// Entity is a fake entity: an entity that only exists on the clients observing it.
type Entity interface {
	// ID returns the ID by which the entity is referred to in packets.
	ID() int64
	Spawn() error
	Despawn() error
	Render(o viewer.Observer) error
	Unrender(o viewer.Observer) error
	Visible() bool
	SetVisible(visible bool) error
	Remove() error
	State() State
}

// Movable is an Entity that can be moved around.
type Movable interface {
	Entity
	Location() entity.Location
	Move(d entity.Delta) error
	Teleport(target entity.Location) error
}

// MetadataHolder is an Entity carrying metadata.
type MetadataHolder interface {
	Entity
	Metadata() *entity.Metadata
	SetMetadata(entries ...entity.Metadatum) error
	AddMetadata(entries ...entity.Metadatum) error
	RemoveMetadata(indices ...uint32) error
}

// VelocityHolder is an Entity that shows a velocity to its observers.
type VelocityHolder interface {
	Entity
	Velocity() mgl64.Vec3
}

// ObserverHolder is an Entity that keeps track of the observers it is rendered for.
type ObserverHolder interface {
	Entity
	Observers() *viewer.Registry
}

// State is the lifecycle state of a fake entity.
type State int32

const (
	// StateUnspawned is the state of an entity that has not yet been spawned or rendered for anyone.
	StateUnspawned State = iota
	// StateSpawned is the state of an entity that was spawned or rendered at least once.
	StateSpawned
	// StateRemoved is the terminal state of an entity after Remove was called.
	StateRemoved
)

// String ...
func (s State) String() string {
	switch s {
	case StateUnspawned:
		return "unspawned"
	case StateSpawned:
		return "spawned"
	case StateRemoved:
		return "removed"
	}
	return "unknown"
}

const (
	// RelativeMoveLimit is the largest change in position on a single axis that is sent as a relative move.
	// Larger changes are sent as a teleport.
	RelativeMoveLimit = 8.0
	// VelocityScale is the default factor by which a movement delta is multiplied to produce the velocity hint
	// sent along with it.
	VelocityScale = 8000.0
)

// idOffset is the first ID handed out by NextID. Runtime IDs assigned by servers count up from 1, so fake
// entities start far above them.
const idOffset = 1 << 40

var currentID = atomic.NewInt64(idOffset)

// NextID returns a new unique ID for a fake entity.
func NextID() int64 {
	return currentID.Inc()
}

// Config holds the initial settings of a Living entity.
type Config struct {
	// ID is the ID of the entity. If zero, NextID is used.
	ID int64
	// EntityType is the identifier of the entity type, such as "minecraft:zombie".
	EntityType string
	// Location is the initial location of the entity.
	Location entity.Location
	// Velocity is the initial velocity of the entity, sent when it is spawned.
	Velocity mgl64.Vec3
	// Metadata is the initial metadata of the entity. If nil, the entity has no metadata until it is set.
	Metadata []entity.Metadatum
	// Visible specifies if the entity is initially visible.
	Visible bool
	// Observers are the observers initially related to the entity. They are not rendered until Spawn or
	// Render is called.
	Observers []viewer.Observer
	// Offset is the difference between the logical location of the entity and the one shown to observers.
	Offset entity.Offset
	// VelocityScale overrides VelocityScale if non-zero.
	VelocityScale float64
	// Log is the logger used to report failures. If nil, slog.Default() is used.
	Log *slog.Logger
}

// Living is a fake living entity, such as a mob. It keeps its observers in sync with its location and
// metadata by sending them the packets required.
//
// Methods of Living must not be called concurrently. Callers should serialise calls per entity, for example
// by confining them to a single goroutine or through tracker.Tracker. Only the observer registry is safe for
// concurrent use.
type Living struct {
	id         int64
	entityType string
	log        *slog.Logger

	state   atomic.Int32
	visible atomic.Bool

	loc           entity.Location
	offset        entity.Offset
	velocity      mgl64.Vec3
	velocityScale float64
	metadata      *entity.Metadata

	observers *viewer.Registry
	packets   packetCache
}

var (
	_ Movable        = (*Living)(nil)
	_ MetadataHolder = (*Living)(nil)
	_ VelocityHolder = (*Living)(nil)
	_ ObserverHolder = (*Living)(nil)
)

// NewLiving creates a new Living entity from the Config passed. The entity is not spawned for anyone.
func NewLiving(conf Config) *Living {
	assert.IsTrue(conf.EntityType != "", "fake entity type must not be empty")

	id := conf.ID
	if id == 0 {
		id = NextID()
	}
	scale := conf.VelocityScale
	if scale == 0 {
		scale = VelocityScale
	}
	log := conf.Log
	if log == nil {
		log = slog.Default()
	}

	e := &Living{
		id:            id,
		entityType:    conf.EntityType,
		log:           log.With("entity", id),
		loc:           conf.Location,
		offset:        conf.Offset,
		velocity:      conf.Velocity,
		velocityScale: scale,
		observers:     viewer.NewRegistry(conf.Observers...),
		packets:       packetCache{id: id},
	}
	if conf.Metadata != nil {
		e.metadata = entity.NewMetadata(conf.Metadata...)
	}
	e.visible.Store(conf.Visible)
	return e
}

// ID ...
func (e *Living) ID() int64 {
	return e.id
}

// EntityType returns the entity type identifier of the entity.
func (e *Living) EntityType() string {
	return e.entityType
}

// State returns the lifecycle state of the entity.
func (e *Living) State() State {
	return State(e.state.Load())
}

// Visible returns true if packets are sent for the entity at all.
func (e *Living) Visible() bool {
	return e.visible.Load()
}

// Location returns the logical location of the entity.
func (e *Living) Location() entity.Location {
	return e.loc
}

// Offset returns the visual offset of the entity.
func (e *Living) Offset() entity.Offset {
	return e.offset
}

// SetOffset changes the visual offset of the entity. It takes effect with the next packet carrying a
// position, and does not send anything by itself.
func (e *Living) SetOffset(o entity.Offset) {
	e.offset = o
}

// Velocity returns the velocity hint of the entity. It is only non-zero while a movement is dispatched.
func (e *Living) Velocity() mgl64.Vec3 {
	return e.velocity
}

// Observers returns the observer registry of the entity.
func (e *Living) Observers() *viewer.Registry {
	return e.observers
}

// Metadata returns a copy of the metadata of the entity, or nil if none was set.
func (e *Living) Metadata() *entity.Metadata {
	if e.metadata == nil {
		return nil
	}
	return e.metadata.Clone()
}

// checkAlive panics if the entity was removed.
func (e *Living) checkAlive(op string) {
	assert.IsTrue(e.State() != StateRemoved, "fake entity %d: %s called after removal", e.id, op)
}

// markSpawned moves the entity out of StateUnspawned.
func (e *Living) markSpawned() {
	e.state.CompareAndSwap(int32(StateUnspawned), int32(StateSpawned))
}
