// Package camera provides the perspective camera owned by a scene.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Default projection parameters.
const (
	DefaultFOV  = 45.0 // degrees
	DefaultNear = 0.1
	DefaultFar  = 256.0
)

// Camera is a perspective camera that looks at a target point. It can be
// driven either directly (Position/Target) or through the orbit helpers.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	// Projection
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	// Orbit constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32
}

// New creates a camera at (0, 0, 5) looking at the origin.
func New() *Camera {
	return &Camera{
		Position:    mgl32.Vec3{0, 0, 5},
		Up:          mgl32.Vec3{0, 1, 0},
		FOV:         DefaultFOV,
		Aspect:      16.0 / 9.0,
		Near:        DefaultNear,
		Far:         DefaultFar,
		MinDistance: 0.5,
		MaxDistance: DefaultFar / 2,
		MinPitch:    -1.5,
		MaxPitch:    1.5,
	}
}

// SetPerspective replaces all projection parameters.
func (c *Camera) SetPerspective(fov, aspect, near, far float32) {
	c.FOV = fov
	c.Aspect = aspect
	c.Near = near
	c.Far = far
}

// SetViewport updates the aspect ratio for a framebuffer size.
// Zero-sized viewports (minimized windows) are ignored.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// View returns the view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Distance returns the distance from the camera to its target.
func (c *Camera) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// Orbit rotates the camera around its target by yaw and pitch deltas in
// radians, keeping the distance.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	offset := c.Position.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	yaw := math32.Atan2(offset[0], offset[2]) + dYaw
	pitch := math32.Asin(clamp(offset[1]/dist, -1, 1)) + dPitch
	pitch = clamp(pitch, c.MinPitch, c.MaxPitch)
	c.place(yaw, pitch, dist)
}

// Zoom scales the orbit distance by (1 - delta), within the constraints.
func (c *Camera) Zoom(delta float32) {
	offset := c.Position.Sub(c.Target)
	dist := offset.Len()
	if dist == 0 {
		return
	}
	newDist := clamp(dist*(1-delta), c.MinDistance, c.MaxDistance)
	c.Position = c.Target.Add(offset.Mul(newDist / dist))
}

// FitToBounds centers the target on a box and backs off far enough to see it.
func (c *Camera) FitToBounds(min, max mgl32.Vec3) {
	c.Target = min.Add(max).Mul(0.5)
	radius := max.Sub(min).Len() / 2
	dist := radius / math32.Tan(mgl32.DegToRad(c.FOV)/2)
	if dist < c.MinDistance {
		dist = c.MinDistance
	}
	c.place(0, 0.6, dist) // look down at ~35 degrees
}

func (c *Camera) place(yaw, pitch, dist float32) {
	horiz := dist * math32.Cos(pitch)
	c.Position = c.Target.Add(mgl32.Vec3{
		horiz * math32.Sin(yaw),
		dist * math32.Sin(pitch),
		horiz * math32.Cos(yaw),
	})
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
