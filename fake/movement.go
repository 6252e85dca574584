package fake

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/fakeentity/entity"
	"github.com/oomph-ac/fakeentity/omath"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Move moves the entity by the delta passed. Deltas of more than RelativeMoveLimit blocks on any axis are
// sent as a teleport, others as a relative move, including the rotation only if it changed. The location of
// the entity is always updated, even if it is not visible.
func (e *Living) Move(d entity.Delta) error {
	e.checkAlive("Move")

	e.loc = e.loc.Add(d)
	return e.dispatchMovement(d)
}

// Teleport moves the entity to the target location. The packet sent is chosen the same way as for Move,
// based on the difference between the current location and the target.
func (e *Living) Teleport(target entity.Location) error {
	e.checkAlive("Teleport")

	d := e.loc.DeltaTo(target)
	e.loc = target
	return e.dispatchMovement(d)
}

// dispatchMovement sends the movement of the entity by the delta passed to its observers. The location of
// the entity must already be updated.
func (e *Living) dispatchMovement(d entity.Delta) error {
	e.velocity = d.Position.Mul(e.velocityScale)
	defer func() {
		e.velocity = mgl64.Vec3{}
	}()

	if !e.Visible() {
		return nil
	}

	var pk packet.Packet
	switch {
	case d.Exceeds(RelativeMoveLimit):
		pk = e.actualizeTeleport()
	case d.Rotates():
		pk = e.actualizeMoveLook()
	default:
		pk = e.actualizeMove()
	}

	if e.velocity == (mgl64.Vec3{}) {
		return e.broadcast(pk)
	}
	return e.broadcast(e.actualizeVelocity(), pk)
}

// visualLocation returns the location shown to observers.
func (e *Living) visualLocation() entity.Location {
	return e.loc.Apply(e.offset)
}

// rotation returns the rotation of the location passed as it is encoded in movement packets.
func rotation(l entity.Location) mgl32.Vec3 {
	return mgl32.Vec3{l.Pitch, l.Yaw, l.HeadYaw}
}

func (e *Living) actualizeMove() *packet.MoveActorDelta {
	pk := e.packets.move()
	pk.Position = omath.Vec64To32(e.visualLocation().Position)
	return pk
}

func (e *Living) actualizeMoveLook() *packet.MoveActorDelta {
	loc := e.visualLocation()

	pk := e.packets.moveLook()
	pk.Position = omath.Vec64To32(loc.Position)
	pk.Rotation = rotation(loc)
	return pk
}

func (e *Living) actualizeTeleport() *packet.MoveActorAbsolute {
	loc := e.visualLocation()

	pk := e.packets.teleport()
	pk.Position = omath.Vec64To32(loc.Position)
	pk.Rotation = rotation(loc)
	return pk
}

func (e *Living) actualizeVelocity() *packet.SetActorMotion {
	pk := e.packets.velocity()
	pk.Velocity = omath.Vec64To32(e.velocity)
	return pk
}
