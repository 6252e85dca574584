package entity

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Location represents the logical transform of an entity.
type Location struct {
	// Position is the position of the entity in the world.
	Position mgl64.Vec3
	// Yaw and Pitch make up the rotation of the entity's body.
	Yaw, Pitch float32
	// HeadYaw is the rotation of the entity's head, separate from the body yaw for living entities.
	HeadYaw float32
}

// Add returns the location moved by the delta passed.
func (l Location) Add(d Delta) Location {
	l.Position = l.Position.Add(d.Position)
	l.Yaw += d.Yaw
	l.Pitch += d.Pitch
	l.HeadYaw += d.HeadYaw
	return l
}

// DeltaTo returns the delta required to move from l to target.
func (l Location) DeltaTo(target Location) Delta {
	return Delta{
		Position: target.Position.Sub(l.Position),
		Yaw:      target.Yaw - l.Yaw,
		Pitch:    target.Pitch - l.Pitch,
		HeadYaw:  target.HeadYaw - l.HeadYaw,
	}
}

// Apply returns the location with the visual offset passed applied to it.
func (l Location) Apply(o Offset) Location {
	l.Position = l.Position.Add(o.Position)
	l.Yaw += o.Yaw
	l.Pitch += o.Pitch
	l.HeadYaw += o.HeadYaw
	return l
}

// Rotation returns the body rotation of the location as a cube.Rotation.
func (l Location) Rotation() cube.Rotation {
	return cube.Rotation{float64(l.Yaw), float64(l.Pitch)}
}

// Delta is a relative change to a Location.
type Delta struct {
	Position            mgl64.Vec3
	Yaw, Pitch, HeadYaw float32
}

// Exceeds returns true if the positional change on any axis is strictly larger than limit.
func (d Delta) Exceeds(limit float64) bool {
	return math.Abs(d.Position[0]) > limit || math.Abs(d.Position[1]) > limit || math.Abs(d.Position[2]) > limit
}

// Rotates returns true if the delta changes any component of the rotation, including the head.
func (d Delta) Rotates() bool {
	return d.Yaw != 0 || d.Pitch != 0 || d.HeadYaw != 0
}

// Offset is the difference between the logical location of an entity and the location shown to its
// observers. It is applied to the position and rotation of every spawn and movement packet, since relative
// movement packets also carry absolute coordinates.
type Offset struct {
	Position            mgl64.Vec3
	Yaw, Pitch, HeadYaw float32
}
