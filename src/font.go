package main

import (
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/leonkasovan/go-composer/packages/atlas"
	"github.com/leonkasovan/go-composer/packages/composer"
	"github.com/leonkasovan/go-composer/packages/gfx/opengl"
)

const fontAtlasSize = 256

// glyphPixels converts a glyph mask into white RGBA8 texels. It returns
// nil when the glyph has no visible pixel.
func glyphPixels(dr image.Rectangle, mask image.Image, mp image.Point) []byte {
	pix := make([]byte, 0, dr.Dx()*dr.Dy()*4)
	visible := false
	for y := 0; y < dr.Dy(); y++ {
		for x := 0; x < dr.Dx(); x++ {
			_, _, _, a := mask.At(mp.X+x, mp.Y+y).RGBA()
			a8 := byte(a >> 8)
			visible = visible || a8 != 0
			pix = append(pix, 0xff, 0xff, 0xff, a8)
		}
	}
	if !visible {
		return nil
	}
	return pix
}

// newFont packs the printable ASCII glyphs of face into an atlas texture.
func newFont(dev *opengl.Device, face font.Face) *composer.AtlasFont {
	tex := dev.NewTexture(fontAtlasSize, fontAtlasSize, false)
	tex.SetData(make([]byte, fontAtlasSize*fontAtlasSize*4))
	m := face.Metrics()
	f := composer.NewAtlasFont(atlas.New(tex), float32(m.Height.Ceil()))

	// Glyphs are placed with the pen on the baseline of a line whose top is 0.
	dot := fixed.P(0, m.Ascent.Ceil())
	for r := rune(' '); r <= '~'; r++ {
		dr, mask, mp, adv, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		pix := glyphPixels(dr, mask, mp)
		w, h := dr.Dx(), dr.Dy()
		if pix == nil {
			w, h = 0, 0
		}
		offset := mgl.Vec2{float32(dr.Min.X), float32(dr.Min.Y)}
		if !f.AddGlyph(r, w, h, pix, offset, float32(adv.Round())) {
			log.Warn("font atlas full", "rune", string(r))
			break
		}
	}
	return f
}

func defaultFont(dev *opengl.Device) *composer.AtlasFont {
	return newFont(dev, basicfont.Face7x13)
}
