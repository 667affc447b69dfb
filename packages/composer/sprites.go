package composer

import (
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// SpriteParams describes an axis aligned quad.
type SpriteParams struct {
	// Position is the top-left corner.
	Position mgl.Vec3
	Size     mgl.Vec2
	Color    gfx.Color
	// Texture may be nil for an untextured quad.
	Texture gfx.Texture
	// UV is the source rectangle in texture pixels; empty selects the
	// whole texture.
	UV           image.Rectangle
	FlipX, FlipY bool
}

// usable maps a missing or invalid texture to nil.
func usable(t gfx.Texture) gfx.Texture {
	if t == nil || !t.IsValid() {
		return nil
	}
	return t
}

// uvRect returns the normalized source rectangle.
func uvRect(t gfx.Texture, r image.Rectangle, flipX, flipY bool) (u0, v0, u1, v1 float32) {
	u0, v0, u1, v1 = 0, 0, 1, 1
	if t != nil && !r.Empty() {
		w, h := float32(t.Width()), float32(t.Height())
		u0, v0 = float32(r.Min.X)/w, float32(r.Min.Y)/h
		u1, v1 = float32(r.Max.X)/w, float32(r.Max.Y)/h
	}
	if flipX {
		u0, u1 = u1, u0
	}
	if flipY {
		v0, v1 = v1, v0
	}
	return
}

// renderQuad writes one quad. Corners are given clockwise from top-left.
func (c *Composer) renderQuad(op string, tex gfx.Texture, corners [4]mgl.Vec3, uvs [4]mgl.Vec2, col gfx.Color) {
	if !c.recording(op) {
		return
	}
	b := c.getBatch(op, Quads, tex, 4)
	if b == nil {
		return
	}
	tid, err := b.AddTexture(tex)
	if err != nil {
		c.fail(op, err)
		return
	}
	vs := b.MapNextQuad()
	if vs == nil {
		return
	}
	for i := range vs {
		vs[i] = gfx.Vertex{Position: corners[i], Color: col, UV: uvs[i], Tid: tid}
	}
}

// RenderSprite draws a quad. Zero sized sprites are ignored.
func (c *Composer) RenderSprite(p SpriteParams) {
	if p.Size.X() == 0 || p.Size.Y() == 0 {
		return
	}
	tex := usable(p.Texture)
	u0, v0, u1, v1 := uvRect(tex, p.UV, p.FlipX, p.FlipY)
	x0, y0, z := p.Position.X(), p.Position.Y(), p.Position.Z()
	x1, y1 := x0+p.Size.X(), y0+p.Size.Y()
	c.renderQuad("RenderSprite", tex,
		[4]mgl.Vec3{{x0, y0, z}, {x1, y0, z}, {x1, y1, z}, {x0, y1, z}},
		[4]mgl.Vec2{{u0, v0}, {u1, v0}, {u1, v1}, {u0, v1}},
		p.Color)
}

// RenderRect draws an untextured rectangle.
func (c *Composer) RenderRect(pos mgl.Vec3, size mgl.Vec2, col gfx.Color) {
	c.RenderSprite(SpriteParams{Position: pos, Size: size, Color: col})
}
