package composer

import (
	"image"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonkasovan/go-composer/packages/atlas"
	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/gfx/gfxtest"
)

func assertVec3(t *testing.T, want, got mgl.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestRenderVerticesPadsColors(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderVertices([]mgl.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0}}, []gfx.Color{gfx.Red, gfx.White})
		c.RenderVertices([]mgl.Vec3{{0, 0, 0}, {10, 0, 0}}, nil)
	})

	draws := f.dev.Find("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gfx.TriangleFan, 0, 4}, draws[0].Args)

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 4)
	assert.Equal(t, gfx.Red, vs[0].Color)
	for _, v := range vs[1:] {
		assert.Equal(t, gfx.White, v.Color)
	}
	for _, v := range vs {
		assert.Equal(t, gfx.NoTexture, v.Tid)
	}
}

func TestEachFanIsOneBatch(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	fan := []mgl.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}}
	f.frame(t, func(c *Composer) {
		c.RenderVertices(fan, nil)
		c.RenderVertices(fan, nil)
	})
	assert.Equal(t, 2, f.dev.Count("DrawArrays"))
	assert.Equal(t, 2, f.c.Stats().Batches)
}

func TestRenderTrianglesDropsPartial(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderTriangles(make([]mgl.Vec3, 7), nil)
		c.RenderTriangles(make([]mgl.Vec3, 2), nil)
	})
	draws := f.dev.Find("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gfx.Triangles, 0, 6}, draws[0].Args)
}

func TestRenderCircle(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CircleDetail = 8
	f := newFixture(gfxtest.Options{}, cfg)
	center := mgl.Vec3{50, 50, 1}
	f.frame(t, func(c *Composer) {
		c.RenderCircle(center, 10, gfx.Red)
		c.RenderCircle(center, 0, gfx.Red)
	})

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 10)
	assert.Equal(t, center, vs[0].Position)
	assertVec3(t, mgl.Vec3{60, 50, 1}, vs[1].Position)
	assertVec3(t, mgl.Vec3{50, 60, 1}, vs[3].Position)
	assertVec3(t, vs[1].Position, vs[9].Position)
	assert.Equal(t, []any{gfx.TriangleFan, 0, 10}, f.dev.Find("DrawArrays")[0].Args)
}

func TestRenderCircleOutline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CircleDetail = 8
	f := newFixture(gfxtest.Options{}, cfg)
	f.frame(t, func(c *Composer) {
		c.RenderCircleOutline(mgl.Vec3{}, 10, gfx.Red, 2)
	})

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 32)
	assertVec3(t, mgl.Vec3{10, 0, 0}, vs[0].Position)
	assertVec3(t, mgl.Vec3{8, 0, 0}, vs[3].Position)
	assert.Equal(t, []any{gfx.Triangles, 0, 48}, f.dev.Find("DrawIndexed")[0].Args)
}

func TestRenderLine(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderLine(mgl.Vec3{0, 0, 0}, mgl.Vec3{10, 0, 0}, gfx.Red, 2)
		c.RenderLine(mgl.Vec3{5, 5, 0}, mgl.Vec3{5, 5, 0}, gfx.Red, 2)
		c.RenderLine(mgl.Vec3{0, 0, 0}, mgl.Vec3{10, 0, 0}, gfx.Red, 0)
	})

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 4)
	assertVec3(t, mgl.Vec3{0, -1, 0}, vs[0].Position)
	assertVec3(t, mgl.Vec3{10, -1, 0}, vs[1].Position)
	assertVec3(t, mgl.Vec3{10, 1, 0}, vs[2].Position)
	assertVec3(t, mgl.Vec3{0, 1, 0}, vs[3].Position)
	assert.Equal(t, gfx.NoTexture, vs[0].Tid)
}

func TestRenderArrow(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderArrow(mgl.Vec3{0, 0, 0}, mgl.Vec3{100, 0, 0}, gfx.Red, 2)
	})

	line := f.uploaded(t, 0)
	require.Len(t, line, 4)
	assertVec3(t, mgl.Vec3{94, -1, 0}, line[1].Position)

	head := f.uploaded(t, 1)
	require.Len(t, head, 3)
	assertVec3(t, mgl.Vec3{100, 0, 0}, head[0].Position)
	assertVec3(t, mgl.Vec3{94, 3, 0}, head[1].Position)
	assertVec3(t, mgl.Vec3{94, -3, 0}, head[2].Position)
}

func TestRenderOutline(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderOutline(mgl.Vec3{10, 10, 0}, mgl.Vec2{40, 20}, gfx.White, 2)
	})
	vs := f.uploaded(t, 0)
	require.Len(t, vs, 16)
	assert.Equal(t, mgl.Vec3{10, 10, 0}, vs[0].Position)
	assert.Equal(t, mgl.Vec3{50, 12, 0}, vs[2].Position)
	assert.Equal(t, mgl.Vec3{10, 28, 0}, vs[8].Position)
}

func TestSpriteTextures(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	tex := gfxtest.NewTexture("sheet", 64, 32)
	f.frame(t, func(c *Composer) {
		c.RenderSprite(sprite(0, 0, 0, nil))
		c.RenderSprite(sprite(0, 0, 0, gfxtest.NewTexture("broken", 0, 0)))
		c.RenderSprite(SpriteParams{
			Size: mgl.Vec2{16, 24}, Color: gfx.White, Texture: tex,
			UV: image.Rect(16, 8, 32, 32), FlipX: true,
		})
		c.RenderSprite(SpriteParams{Size: mgl.Vec2{0, 10}, Texture: tex})
	})

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 12)
	assert.Equal(t, gfx.NoTexture, vs[0].Tid)
	assert.Equal(t, gfx.NoTexture, vs[4].Tid)
	assert.Equal(t, int32(0), vs[8].Tid)
	assert.Equal(t, mgl.Vec2{0.5, 0.25}, vs[8].UV)
	assert.Equal(t, mgl.Vec2{0.25, 1}, vs[10].UV)
	assert.Equal(t, mgl.Vec3{16, 24, 0}, vs[10].Position)

	binds := f.dev.Find("BindTexture")
	require.Len(t, binds, 1)
	assert.Equal(t, []any{0, tex}, binds[0].Args)
}

type stubFont struct {
	tex    gfx.Texture
	glyphs map[rune]Glyph
}

func (f *stubFont) Texture() gfx.Texture { return f.tex }
func (f *stubFont) LineHeight() float32  { return 12 }
func (f *stubFont) Glyph(r rune) (Glyph, bool) {
	g, ok := f.glyphs[r]
	return g, ok
}

func newStubFont() *stubFont {
	return &stubFont{
		tex: gfxtest.NewTexture("font", 16, 8),
		glyphs: map[rune]Glyph{
			'a': {Rect: image.Rect(0, 0, 8, 8), Offset: mgl.Vec2{1, 2}, Advance: 10},
			'?': {Rect: image.Rect(8, 0, 16, 8), Offset: mgl.Vec2{1, 2}, Advance: 10},
			' ': {Advance: 4},
		},
	}
}

func TestRenderString(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	font := newStubFont()
	f.frame(t, func(c *Composer) {
		c.RenderString(mgl.Vec3{0, 0, 0}, gfx.Red, "a \nab", font)
		c.RenderString(mgl.Vec3{}, gfx.Red, "a", nil)
	})

	vs := f.uploaded(t, 0)
	require.Len(t, vs, 12)
	assert.Equal(t, mgl.Vec3{1, 2, 0}, vs[0].Position)
	assert.Equal(t, mgl.Vec2{0, 0}, vs[0].UV)
	assert.Equal(t, mgl.Vec2{0.5, 1}, vs[2].UV)
	assert.Equal(t, mgl.Vec3{1, 14, 0}, vs[4].Position)
	assert.Equal(t, mgl.Vec3{11, 14, 0}, vs[8].Position)
	assert.Equal(t, mgl.Vec2{0.5, 0}, vs[8].UV)
	assert.Equal(t, gfx.Red, vs[8].Color)
}

func TestTextWidth(t *testing.T) {
	font := newStubFont()
	assert.Equal(t, float32(24), TextWidth(font, "a a"))
	assert.Equal(t, float32(30), TextWidth(font, "a\nabc"))
	assert.Equal(t, float32(0), TextWidth(font, ""))

	delete(font.glyphs, '?')
	assert.Equal(t, float32(10), TextWidth(font, "ab"))
}

func TestAtlasFont(t *testing.T) {
	tex := gfxtest.NewTexture("glyphs", 64, 64)
	font := NewAtlasFont(atlas.New(tex), 16)

	require.True(t, font.AddGlyph('a', 4, 6, make([]byte, 4*6*4), mgl.Vec2{0, 1}, 5))
	require.True(t, font.AddGlyph(' ', 0, 0, nil, mgl.Vec2{}, 3))
	assert.False(t, font.AddGlyph('W', 70, 8, make([]byte, 70*8*4), mgl.Vec2{}, 8))

	g, ok := font.Glyph('a')
	require.True(t, ok)
	assert.Equal(t, image.Rect(1, 1, 5, 7), g.Rect)
	assert.Equal(t, float32(5), g.Advance)

	g, ok = font.Glyph(' ')
	require.True(t, ok)
	assert.True(t, g.Rect.Empty())

	_, ok = font.Glyph('W')
	assert.False(t, ok)
	assert.Equal(t, gfx.Texture(tex), font.Texture())
	assert.Equal(t, float32(16), font.LineHeight())
	assert.Equal(t, float32(8), TextWidth(font, "a "))
}
