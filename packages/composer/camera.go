package composer

import mgl "github.com/go-gl/mathgl/mgl32"

// Camera is consulted, not owned, by the composer.
type Camera interface {
	ViewMatrix() mgl.Mat4
	Position() mgl.Vec3
	// ProjectionMatrix returns the projection for a target of the given
	// size in pixels.
	ProjectionMatrix(width, height, near, far float32) mgl.Mat4
}

// Camera2D looks at Center with a uniform Zoom. The center of the target
// shows Center; y grows downwards.
type Camera2D struct {
	Center mgl.Vec3
	Zoom   float32
}

func NewCamera2D() *Camera2D { return &Camera2D{Zoom: 1} }

func (c *Camera2D) Position() mgl.Vec3 { return c.Center }

func (c *Camera2D) ViewMatrix() mgl.Mat4 {
	return mgl.Translate3D(-c.Center.X(), -c.Center.Y(), 0)
}

func (c *Camera2D) ProjectionMatrix(width, height, near, far float32) mgl.Mat4 {
	z := c.Zoom
	if z <= 0 {
		z = 1
	}
	hw, hh := width/(2*z), height/(2*z)
	return mgl.Ortho(-hw, hw, hh, -hh, near, far)
}

// ScreenToWorld converts a target pixel position into world coordinates.
func (c *Camera2D) ScreenToWorld(p mgl.Vec2, width, height float32) mgl.Vec2 {
	z := c.Zoom
	if z <= 0 {
		z = 1
	}
	return mgl.Vec2{
		(p.X()-width/2)/z + c.Center.X(),
		(p.Y()-height/2)/z + c.Center.Y(),
	}
}
