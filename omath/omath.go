package omath

import (
	"github.com/chewxy/math32"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Vec32To64 converts a 32 bit vector to a 64 bit one.
func Vec32To64(vec3 mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(vec3[0]), float64(vec3[1]), float64(vec3[2])}
}

// Vec64To32 converts a 64 bit vector to a 32 bit one.
func Vec64To32(vec3 mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(vec3[0]), float32(vec3[1]), float32(vec3[2])}
}

// WrapDegrees wraps an angle in degrees to the range [-180, 180).
func WrapDegrees(deg float32) float32 {
	deg = math32.Mod(deg+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// Direction returns the horizontal unit vector an entity with the rotation passed is facing.
func Direction(rot cube.Rotation) mgl64.Vec3 {
	dir := rot.Vec3()
	dir[1] = 0
	if dir.Len() == 0 {
		return mgl64.Vec3{}
	}
	return dir.Normalize()
}
