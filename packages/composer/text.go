package composer

import (
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/atlas"
	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Glyph is one pre-rasterized character.
type Glyph struct {
	// Rect is the glyph image in texture pixels. Empty for blanks.
	Rect image.Rectangle
	// Offset moves the image from the pen position.
	Offset  mgl.Vec2
	Advance float32
}

// Font supplies pre-rasterized glyphs from one texture.
type Font interface {
	Texture() gfx.Texture
	Glyph(r rune) (Glyph, bool)
	LineHeight() float32
}

func glyphOrFallback(f Font, r rune) (Glyph, bool) {
	if g, ok := f.Glyph(r); ok {
		return g, true
	}
	return f.Glyph('?')
}

// RenderString draws text with its first line's top-left at pos. Runes
// missing from the font are drawn as '?' when available and skipped
// otherwise.
func (c *Composer) RenderString(pos mgl.Vec3, col gfx.Color, text string, f Font) {
	if f == nil || text == "" {
		return
	}
	tex := usable(f.Texture())
	x, y := pos.X(), pos.Y()
	for _, r := range text {
		if r == '\n' {
			x = pos.X()
			y += f.LineHeight()
			continue
		}
		g, ok := glyphOrFallback(f, r)
		if !ok {
			continue
		}
		if !g.Rect.Empty() {
			c.RenderSprite(SpriteParams{
				Position: mgl.Vec3{x + g.Offset.X(), y + g.Offset.Y(), pos.Z()},
				Size:     mgl.Vec2{float32(g.Rect.Dx()), float32(g.Rect.Dy())},
				Color:    col,
				Texture:  tex,
				UV:       g.Rect,
			})
		}
		x += g.Advance
	}
}

// TextWidth returns the width of the widest line of text.
func TextWidth(f Font, text string) float32 {
	var w, line float32
	for _, r := range text {
		if r == '\n' {
			w, line = max(w, line), 0
			continue
		}
		if g, ok := glyphOrFallback(f, r); ok {
			line += g.Advance
		}
	}
	return max(w, line)
}

// AtlasFont is a Font whose glyphs are packed into an atlas.
type AtlasFont struct {
	atlas      *atlas.Atlas
	glyphs     map[rune]Glyph
	lineHeight float32
}

func NewAtlasFont(a *atlas.Atlas, lineHeight float32) *AtlasFont {
	return &AtlasFont{atlas: a, glyphs: make(map[rune]Glyph), lineHeight: lineHeight}
}

// AddGlyph packs an RGBA8 glyph image. It returns false when the atlas is
// full. Blank glyphs (zero size) only advance the pen.
func (f *AtlasFont) AddGlyph(r rune, width, height int, data []byte, offset mgl.Vec2, advance float32) bool {
	g := Glyph{Offset: offset, Advance: advance}
	if width > 0 && height > 0 {
		rect, ok := f.atlas.Add(string(r), width, height, data)
		if !ok {
			return false
		}
		g.Rect = rect
	}
	f.glyphs[r] = g
	return true
}

func (f *AtlasFont) Texture() gfx.Texture { return f.atlas.Texture() }
func (f *AtlasFont) LineHeight() float32  { return f.lineHeight }

func (f *AtlasFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}
