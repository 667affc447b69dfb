// Package opengl implements gfx.Device on OpenGL 3.3 core.
//
// A Device must be created, used and released on the thread that owns the
// GL context. Textures collected by the garbage collector are deleted on
// that thread at the next BeginFrame.
package opengl

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// MaxTextureUnits caps the sampler array of the built-in shaders.
const MaxTextureUnits = 16

var (
	ErrGL                    = errors.New("opengl: device error")
	ErrFramebufferIncomplete = errors.New("opengl: framebuffer incomplete")
)

// Error is a shader compiler or linker log.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Device is the OpenGL 3.3 gfx.Device.
type Device struct {
	caps   gfx.Capabilities
	vao    uint32
	screen *screen
	target gfx.Framebuffer
	tasks  chan func()

	program *Program

	// Write masks as last set, restored after Clear.
	depthMask   bool
	stencilMask uint8

	scratch []byte
}

var _ gfx.Device = (*Device)(nil)

// New initializes the GL function pointers of the current context and
// creates a device drawing to a screen of the given size.
func New(width, height int) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: init: %w", err)
	}
	log := gfx.Logger()
	log.Info("opengl: context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"vendor", gl.GoStr(gl.GetString(gl.VENDOR)))

	var units, size int32
	gl.GetIntegerv(gl.MAX_TEXTURE_IMAGE_UNITS, &units)
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &size)
	d := &Device{
		caps: gfx.Capabilities{
			MaxTextureUnits: min(int(units), MaxTextureUnits),
			MaxTextureSize:  int(size),
			Renderer:        gl.GoStr(gl.GetString(gl.RENDERER)),
		},
		screen:      &screen{size: image.Pt(width, height)},
		tasks:       make(chan func(), 65536),
		depthMask:   true,
		stencilMask: 0xFF,
	}
	d.target = d.screen
	log.Debug("opengl: capabilities", "textureUnits", units, "maxTextureSize", size)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

func (d *Device) Capabilities() gfx.Capabilities { return d.caps }

// SetScreenSize records a new window framebuffer size.
func (d *Device) SetScreenSize(width, height int) {
	d.screen.size = image.Pt(width, height)
}

// runTasks drains work queued from other goroutines.
func (d *Device) runTasks() {
	for {
		select {
		case f := <-d.tasks:
			f()
		default:
			return
		}
	}
}

func (d *Device) BeginFrame() {
	d.runTasks()
	gl.BindVertexArray(d.vao)
	for loc := uint32(0); loc < attribCount; loc++ {
		gl.EnableVertexAttribArray(loc)
	}
}

func (d *Device) Finish() { gl.Finish() }

// Err drains the GL error queue and reports the first error.
func (d *Device) Err() error {
	var first uint32
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("%w: 0x%x", ErrGL, first)
	}
	return nil
}

// Release deletes the vertex array and runs pending deletions.
func (d *Device) Release() {
	d.runTasks()
	gl.DeleteVertexArrays(1, &d.vao)
	d.vao = 0
}

// Vertex attribute locations, fixed by the vertex shader.
const (
	attribPosition = iota
	attribColor
	attribUV
	attribTid
	attribCount
)

type buffer struct {
	id   uint32
	kind gfx.BufferKind
	size int
}

func (b *buffer) Kind() gfx.BufferKind { return b.kind }
func (b *buffer) Size() int            { return b.size }

func (b *buffer) target() uint32 {
	if b.kind == gfx.IndexBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) CreateBuffer(kind gfx.BufferKind, size int) (gfx.Buffer, error) {
	b := &buffer{kind: kind, size: size}
	gl.GenBuffers(1, &b.id)
	if b.id == 0 {
		return nil, fmt.Errorf("%w: glGenBuffers returned 0", ErrGL)
	}
	gl.BindBuffer(b.target(), b.id)
	gl.BufferData(b.target(), size, nil, gl.DYNAMIC_DRAW)
	gfx.Logger().Debug("opengl: buffer created", "id", b.id, "kind", kind, "bytes", size)
	return b, nil
}

func (d *Device) upload(b *buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(b.target(), b.id)
	gl.BufferSubData(b.target(), offset, len(data), unsafe.Pointer(&data[0]))
}

// UploadVertices writes vs starting at vertex offset.
func (d *Device) UploadVertices(b gfx.Buffer, offset int, vs []gfx.Vertex) {
	d.scratch = gfx.EncodeVertices(d.scratch[:0], vs)
	d.upload(b.(*buffer), offset*gfx.VertexSize, d.scratch)
}

// UploadIndices writes idx starting at index offset.
func (d *Device) UploadIndices(b gfx.Buffer, offset int, idx []uint16) {
	d.scratch = gfx.EncodeIndices(d.scratch[:0], idx)
	d.upload(b.(*buffer), offset*gfx.IndexSize, d.scratch)
}

func (d *Device) DestroyBuffer(b gfx.Buffer) {
	buf := b.(*buffer)
	gl.DeleteBuffers(1, &buf.id)
	buf.id = 0
}

// BindVertexBuffers binds vb and points every vertex attribute into it.
func (d *Device) BindVertexBuffers(vb, ib gfx.Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, vb.(*buffer).id)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, gfx.VertexSize, gfx.VertexOffsetPosition)
	gl.VertexAttribPointerWithOffset(attribColor, 4, gl.UNSIGNED_BYTE, true, gfx.VertexSize, gfx.VertexOffsetColor)
	gl.VertexAttribPointerWithOffset(attribUV, 2, gl.FLOAT, false, gfx.VertexSize, gfx.VertexOffsetUV)
	gl.VertexAttribIPointer(attribTid, 1, gl.INT, gfx.VertexSize, gl.PtrOffset(gfx.VertexOffsetTid))
	if ib != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.(*buffer).id)
	}
}

func (d *Device) DrawIndexed(mode gfx.PrimitiveMode, first, count int) {
	gl.DrawElements(mapPrimitiveMode(mode), int32(count), gl.UNSIGNED_SHORT, gl.PtrOffset(first*gfx.IndexSize))
}

func (d *Device) DrawArrays(mode gfx.PrimitiveMode, first, count int) {
	gl.DrawArrays(mapPrimitiveMode(mode), int32(first), int32(count))
}

func (d *Device) BindTexture(slot int, t gfx.Texture) {
	var handle uint32
	if tex, ok := t.(*Texture); ok && tex != nil {
		handle = tex.handle
	}
	gl.ActiveTexture(uint32(gl.TEXTURE0 + slot))
	gl.BindTexture(gl.TEXTURE_2D, handle)
}
