// Package atlas packs many small images into one texture with a skyline
// bottom-left packer, so sprites that would otherwise need a texture slot
// each can share a single slot in a composer batch.
package atlas

import (
	"image"
	"slices"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Padding is the empty border kept around every packed image.
const Padding = 1

// segment is a horizontal run of the skyline: everything below y between x
// and x+w is taken.
type segment struct{ x, y, w int }

// Atlas owns the packing state of one texture.
type Atlas struct {
	texture gfx.Texture
	width   int
	height  int
	skyline []segment
	entries map[string]image.Rectangle
}

// New creates an atlas covering the whole of tex. The texture storage must
// already be allocated.
func New(tex gfx.Texture) *Atlas {
	a := &Atlas{texture: tex, width: tex.Width(), height: tex.Height()}
	a.Reset()
	return a
}

func (a *Atlas) Texture() gfx.Texture { return a.texture }

// Reset forgets every packed image. Texel data is left in place.
func (a *Atlas) Reset() {
	a.skyline = append(a.skyline[:0], segment{0, 0, a.width})
	a.entries = make(map[string]image.Rectangle)
}

// Lookup returns the rectangle of an image added under name.
func (a *Atlas) Lookup(name string) (image.Rectangle, bool) {
	r, ok := a.entries[name]
	return r, ok
}

// Add packs an RGBA8 image and uploads it. It returns the pixel rectangle
// the image occupies, or false when the atlas is full. Images added under a
// name already present are not packed twice.
func (a *Atlas) Add(name string, width, height int, data []byte) (image.Rectangle, bool) {
	if r, ok := a.entries[name]; ok && name != "" {
		return r, true
	}
	if width <= 0 || height <= 0 {
		return image.Rectangle{}, false
	}
	pos, ok := a.place(width+2*Padding, height+2*Padding)
	if !ok {
		return image.Rectangle{}, false
	}
	r := image.Rectangle{Min: pos, Max: pos.Add(image.Pt(width, height))}.Add(image.Pt(Padding, Padding))
	a.texture.SetSubData(data, r.Min.X, r.Min.Y, width, height)
	if name != "" {
		a.entries[name] = r
	}
	return r, true
}

// restingY is the height a w by h box comes to rest at when its left edge
// is at skyline segment i.
func (a *Atlas) restingY(i, w, h int) (int, bool) {
	x := a.skyline[i].x
	if x+w > a.width {
		return 0, false
	}
	y := 0
	for j := i; j < len(a.skyline) && a.skyline[j].x < x+w; j++ {
		y = max(y, a.skyline[j].y)
	}
	return y, y+h <= a.height
}

// place reserves a w by h box at the lowest point of the skyline, leftmost
// on ties, and returns its top-left corner.
func (a *Atlas) place(w, h int) (image.Point, bool) {
	best, bestY := -1, 0
	for i := range a.skyline {
		if y, ok := a.restingY(i, w, h); ok && (best < 0 || y < bestY) {
			best, bestY = i, y
		}
	}
	if best < 0 {
		return image.Point{}, false
	}
	x := a.skyline[best].x
	covered := best
	for covered < len(a.skyline) && a.skyline[covered].x+a.skyline[covered].w <= x+w {
		covered++
	}
	// A segment sticking out on the right keeps its uncovered part.
	if covered < len(a.skyline) && a.skyline[covered].x < x+w {
		s := &a.skyline[covered]
		s.w -= x + w - s.x
		s.x = x + w
	}
	a.skyline = slices.Replace(a.skyline, best, covered, segment{x, bestY + h, w})
	return image.Pt(x, bestY), true
}
