package composer

import (
	"github.com/chewxy/math32"
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// colorAt returns colors[i], padding with the last color or white.
func colorAt(colors []gfx.Color, i int) gfx.Color {
	switch {
	case i < len(colors):
		return colors[i]
	case len(colors) > 0:
		return colors[len(colors)-1]
	}
	return gfx.White
}

func (c *Composer) renderVertices(op string, topology Topology, points []mgl.Vec3, colors []gfx.Color) {
	if !c.recording(op) {
		return
	}
	b := c.getBatch(op, topology, nil, len(points))
	if b == nil {
		return
	}
	vs := b.MapVertices(len(points))
	for i := range vs {
		vs[i] = gfx.Vertex{Position: points[i], Color: colorAt(colors, i), Tid: gfx.NoTexture}
	}
}

// RenderVertices draws points as one untextured triangle fan. Missing
// colors repeat the last one given, or white.
func (c *Composer) RenderVertices(points []mgl.Vec3, colors []gfx.Color) {
	if len(points) < 3 {
		return
	}
	c.renderVertices("RenderVertices", TriangleFan, points, colors)
}

// RenderTriangles draws every three points as a separate triangle. A
// trailing partial triangle is ignored.
func (c *Composer) RenderTriangles(points []mgl.Vec3, colors []gfx.Color) {
	n := len(points) - len(points)%3
	if n == 0 {
		return
	}
	c.renderVertices("RenderTriangles", SequentialTriangles, points[:n], colors)
}

// lineNormal returns half of thickness along the normal of from->to and the
// segment length.
func lineNormal(from, to mgl.Vec3, thickness float32) (mgl.Vec3, float32) {
	dx, dy := to.X()-from.X(), to.Y()-from.Y()
	length := math32.Hypot(dx, dy)
	if length == 0 {
		return mgl.Vec3{}, 0
	}
	angle := math32.Atan2(dy, dx)
	half := thickness / 2
	return mgl.Vec3{-math32.Sin(angle) * half, math32.Cos(angle) * half, 0}, length
}

// RenderLine draws a segment thickness pixels wide.
func (c *Composer) RenderLine(from, to mgl.Vec3, col gfx.Color, thickness float32) {
	if thickness <= 0 {
		return
	}
	n, length := lineNormal(from, to, thickness)
	if length == 0 {
		return
	}
	c.renderQuad("RenderLine", nil,
		[4]mgl.Vec3{from.Sub(n), to.Sub(n), to.Add(n), from.Add(n)},
		[4]mgl.Vec2{}, col)
}

// RenderArrow draws a line ending in a triangular head at to.
func (c *Composer) RenderArrow(from, to mgl.Vec3, col gfx.Color, thickness float32) {
	if thickness <= 0 {
		return
	}
	n, length := lineNormal(from, to, thickness)
	if length == 0 {
		return
	}
	head := math32.Min(thickness*3, length)
	dir := to.Sub(from).Mul(1 / length)
	base := to.Sub(dir.Mul(head))
	if head < length {
		c.RenderLine(from, base, col, thickness)
	}
	wing := n.Mul(3)
	c.RenderTriangles([]mgl.Vec3{to, base.Add(wing), base.Sub(wing)}, []gfx.Color{col})
}

// RenderOutline draws the inside border of a rectangle.
func (c *Composer) RenderOutline(pos mgl.Vec3, size mgl.Vec2, col gfx.Color, thickness float32) {
	if thickness <= 0 || size.X() <= 0 || size.Y() <= 0 {
		return
	}
	t := math32.Min(thickness, math32.Min(size.X(), size.Y())/2)
	x, y, z := pos.X(), pos.Y(), pos.Z()
	w, h := size.X(), size.Y()
	c.RenderRect(mgl.Vec3{x, y, z}, mgl.Vec2{w, t}, col)
	c.RenderRect(mgl.Vec3{x + w - t, y + t, z}, mgl.Vec2{t, h - 2*t}, col)
	c.RenderRect(mgl.Vec3{x, y + h - t, z}, mgl.Vec2{w, t}, col)
	c.RenderRect(mgl.Vec3{x, y + t, z}, mgl.Vec2{t, h - 2*t}, col)
}

// circlePoint is the rim point of segment i of detail, clockwise on a y
// down target.
func circlePoint(center mgl.Vec3, radius float32, i, detail int) mgl.Vec3 {
	a := 2 * math32.Pi * float32(i%detail) / float32(detail)
	return mgl.Vec3{center.X() + math32.Cos(a)*radius, center.Y() + math32.Sin(a)*radius, center.Z()}
}

// RenderCircle draws a filled circle as a fan of CircleDetail triangles.
func (c *Composer) RenderCircle(center mgl.Vec3, radius float32, col gfx.Color) {
	if radius <= 0 {
		return
	}
	detail := c.cfg.CircleDetail
	points := make([]mgl.Vec3, 0, detail+2)
	points = append(points, center)
	for i := 0; i <= detail; i++ {
		points = append(points, circlePoint(center, radius, i, detail))
	}
	c.renderVertices("RenderCircle", TriangleFan, points, []gfx.Color{col})
}

// RenderCircleOutline draws a ring thickness wide inside radius.
func (c *Composer) RenderCircleOutline(center mgl.Vec3, radius float32, col gfx.Color, thickness float32) {
	if radius <= 0 || thickness <= 0 {
		return
	}
	inner := math32.Max(radius-thickness, 0)
	detail := c.cfg.CircleDetail
	for i := 0; i < detail; i++ {
		c.renderQuad("RenderCircleOutline", nil, [4]mgl.Vec3{
			circlePoint(center, radius, i, detail),
			circlePoint(center, radius, i+1, detail),
			circlePoint(center, inner, i+1, detail),
			circlePoint(center, inner, i, detail),
		}, [4]mgl.Vec2{}, col)
	}
}
