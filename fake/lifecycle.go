package fake

import (
	"github.com/oomph-ac/fakeentity/assert"
	"github.com/oomph-ac/fakeentity/omath"
	"github.com/oomph-ac/fakeentity/viewer"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Spawn spawns the entity for every observer it is rendered for. Nothing is sent if the entity is not
// visible.
func (e *Living) Spawn() error {
	e.checkAlive("Spawn")
	e.markSpawned()

	if !e.Visible() {
		return nil
	}
	return e.broadcast(e.actualizeSpawn())
}

// Despawn despawns the entity for every observer it is rendered for. The observers stay related to the
// entity, so a following Spawn shows it to them again.
func (e *Living) Despawn() error {
	e.checkAlive("Despawn")

	if !e.Visible() {
		return nil
	}
	return e.broadcast(e.packets.despawn())
}

// Render spawns the entity for the observer passed and starts sending it updates about the entity. If the
// entity is not visible, the observer is only marked, and is shown the entity once it becomes visible.
func (e *Living) Render(o viewer.Observer) error {
	e.checkAlive("Render")
	assert.NotNil(o, "observer")
	e.markSpawned()

	if e.Visible() {
		if err := e.send(o, e.actualizeSpawn()); err != nil {
			return err
		}
	}
	e.observers.Set(o, true)
	return nil
}

// Unrender stops sending the observer passed updates about the entity. A despawn is only sent if the entity
// is visible and the observer was rendered, otherwise the observer never saw the entity.
func (e *Living) Unrender(o viewer.Observer) error {
	e.checkAlive("Unrender")
	assert.NotNil(o, "observer")

	var err error
	if e.Visible() && e.observers.Visible(o) {
		err = e.send(o, e.packets.despawn())
	}
	e.observers.Set(o, false)
	return err
}

// SetVisible changes whether the entity is shown at all. Making the entity visible spawns it for every
// observer it is rendered for, hiding it despawns it for them.
func (e *Living) SetVisible(visible bool) error {
	e.checkAlive("SetVisible")

	if !e.visible.CompareAndSwap(!visible, visible) {
		return nil
	}
	if visible {
		e.markSpawned()
		return e.broadcast(e.actualizeSpawn())
	}
	return e.broadcast(e.packets.despawn())
}

// Remove despawns the entity for every observer and forgets all of them. The entity must not be used after
// calling Remove: any further call panics.
func (e *Living) Remove() error {
	e.checkAlive("Remove")

	err := e.Despawn()
	e.observers.Clear()
	e.state.Store(int32(StateRemoved))
	return err
}

// actualizeSpawn updates the spawn packet with the current state of the entity.
func (e *Living) actualizeSpawn() *packet.AddActor {
	loc := e.visualLocation()

	pk := e.packets.spawn()
	pk.EntityType = e.entityType
	pk.Position = omath.Vec64To32(loc.Position)
	pk.Velocity = omath.Vec64To32(e.velocity)
	pk.Pitch = loc.Pitch
	pk.Yaw = loc.Yaw
	pk.BodyYaw = loc.Yaw
	pk.HeadYaw = loc.HeadYaw
	if e.metadata != nil {
		pk.EntityMetadata = e.metadata.Encode(pk.EntityMetadata)
	} else {
		clear(pk.EntityMetadata)
	}
	return pk
}
