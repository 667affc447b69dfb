package opengl

import (
	"fmt"
	"image"
	"image/draw"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Texture is an RGBA8 2D texture.
type Texture struct {
	width, height int32
	filter        bool
	handle        uint32
}

// NewTexture generates an empty texture. Its storage is allocated by the
// first SetData. A collected texture is deleted at the next BeginFrame.
func (d *Device) NewTexture(width, height int, filter bool) *Texture {
	t := &Texture{width: int32(width), height: int32(height), filter: filter}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.GenTextures(1, &t.handle)
	tasks := d.tasks
	runtime.SetFinalizer(t, func(t *Texture) {
		h := t.handle
		tasks <- func() {
			gl.DeleteTextures(1, &h)
		}
	})
	return t
}

// NewTextureFromImage uploads img converted to RGBA.
func (d *Device) NewTextureFromImage(img image.Image, filter bool) *Texture {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*b.Dx() || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	t := d.NewTexture(b.Dx(), b.Dy(), filter)
	t.SetData(rgba.Pix)
	return t
}

// Delete releases the texture now instead of on collection.
func (t *Texture) Delete() {
	runtime.SetFinalizer(t, nil)
	gl.DeleteTextures(1, &t.handle)
	t.handle = 0
}

func (t *Texture) Width() int  { return int(t.width) }
func (t *Texture) Height() int { return int(t.height) }

func (t *Texture) IsValid() bool {
	return t.width != 0 && t.height != 0 && t.handle != 0
}

func (t *Texture) String() string {
	return fmt.Sprintf("texture:%d(%dx%d)", t.handle, t.width, t.height)
}

// SetData allocates the texture and uploads RGBA8 texels; nil data leaves
// the contents undefined.
func (t *Texture) SetData(data []byte) {
	var interp int32 = gl.NEAREST
	if t.filter {
		interp = gl.LINEAR
	}
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	gl.BindTexture(gl.TEXTURE_2D, t.handle)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.width, t.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, interp)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, interp)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (t *Texture) SetSubData(data []byte, x, y, width, height int) {
	if len(data) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.handle)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(width), int32(height),
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&data[0]))
}
