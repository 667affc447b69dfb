// Package gfxtest provides a recording gfx.Device for tests. Every device
// call is appended to a log that tests inspect by operation name.
package gfxtest

import (
	"errors"
	"fmt"
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Call is one recorded device call.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// ErrInjected is reported by Err after the operation named in FailOn ran.
var ErrInjected = errors.New("gfxtest: injected device error")

// Buffer is a fake device buffer keeping its uploaded contents.
type Buffer struct {
	ID       int
	kind     gfx.BufferKind
	size     int
	Vertices []gfx.Vertex
	Indices  []uint16
}

func (b *Buffer) Kind() gfx.BufferKind { return b.kind }
func (b *Buffer) Size() int            { return b.size }

// Texture is a fake texture of a fixed size.
type Texture struct {
	Label         string
	W, H          int
	Uploads       int
	LastSubUpload image.Rectangle
}

func NewTexture(label string, w, h int) *Texture {
	return &Texture{Label: label, W: w, H: h}
}

func (t *Texture) Width() int    { return t.W }
func (t *Texture) Height() int   { return t.H }
func (t *Texture) IsValid() bool { return t.W > 0 && t.H > 0 }
func (t *Texture) String() string {
	return "tex:" + t.Label
}

func (t *Texture) SetData([]byte) { t.Uploads++ }

func (t *Texture) SetSubData(_ []byte, x, y, width, height int) {
	t.Uploads++
	t.LastSubUpload = image.Rect(x, y, x+width, y+height)
}

// Shader is a fake shader program.
type Shader struct{ Label string }

func NewShader(label string) *Shader { return &Shader{Label: label} }

func (s *Shader) Name() string   { return s.Label }
func (s *Shader) String() string { return "shader:" + s.Label }

// Framebuffer is a fake render target.
type Framebuffer struct {
	Label  string
	size   image.Point
	color  *Texture
	screen bool
}

func (f *Framebuffer) Size() image.Point { return f.size }
func (f *Framebuffer) IsScreen() bool    { return f.screen }
func (f *Framebuffer) String() string    { return "fb:" + f.Label }

func (f *Framebuffer) ColorTexture() gfx.Texture {
	if f.color == nil {
		return nil
	}
	return f.color
}

// NewFramebuffer creates an offscreen target without going through a Device.
func NewFramebuffer(label string, w, h int) *Framebuffer {
	return &Framebuffer{Label: label, size: image.Pt(w, h), color: NewTexture(label, w, h)}
}

// Options configures a Device.
type Options struct {
	MaxTextureUnits int
	ScreenWidth     int
	ScreenHeight    int
	// FailOn names an operation after which Err reports ErrInjected.
	FailOn string
}

// Device records every call made to it.
type Device struct {
	opts    Options
	calls   []Call
	screen  *Framebuffer
	bound   gfx.Framebuffer
	nextID  int
	buffers map[int]*Buffer
	err     error
}

var _ gfx.Device = (*Device)(nil)

// NewDevice creates a recording device. Zero options default to 16 texture
// units and an 800x600 screen.
func NewDevice(opts Options) *Device {
	if opts.MaxTextureUnits <= 0 {
		opts.MaxTextureUnits = 16
	}
	if opts.ScreenWidth <= 0 || opts.ScreenHeight <= 0 {
		opts.ScreenWidth, opts.ScreenHeight = 800, 600
	}
	d := &Device{opts: opts, buffers: make(map[int]*Buffer)}
	d.screen = &Framebuffer{Label: "screen", size: image.Pt(opts.ScreenWidth, opts.ScreenHeight), screen: true}
	d.bound = d.screen
	return d
}

// NewLibrary returns a library with fake default and blit shaders.
func NewLibrary() *gfx.Library {
	return gfx.NewLibrary(NewShader("default"), NewShader("blit"))
}

func (d *Device) record(op string, args ...any) {
	d.calls = append(d.calls, Call{Op: op, Args: args})
	if d.opts.FailOn == op && d.err == nil {
		d.err = ErrInjected
	}
}

// Calls returns the recorded calls.
func (d *Device) Calls() []Call { return d.calls }

// Reset forgets every recorded call.
func (d *Device) Reset() { d.calls = d.calls[:0] }

// Count returns how many calls named op were recorded.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Ops returns the operation names in call order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.calls))
	for i, c := range d.calls {
		ops[i] = c.Op
	}
	return ops
}

// Find returns the calls named op.
func (d *Device) Find(op string) []Call {
	var out []Call
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Bound returns the currently bound framebuffer.
func (d *Device) Bound() gfx.Framebuffer { return d.bound }

// Buffer returns a buffer created by the device by id.
func (d *Device) Buffer(id int) *Buffer { return d.buffers[id] }

func (d *Device) Capabilities() gfx.Capabilities {
	return gfx.Capabilities{MaxTextureUnits: d.opts.MaxTextureUnits, MaxTextureSize: 4096, Renderer: "gfxtest"}
}

func (d *Device) BeginFrame() { d.record("BeginFrame") }
func (d *Device) Finish()     { d.record("Finish") }

func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Device) CreateBuffer(kind gfx.BufferKind, size int) (gfx.Buffer, error) {
	d.nextID++
	b := &Buffer{ID: d.nextID, kind: kind, size: size}
	d.buffers[b.ID] = b
	d.record("CreateBuffer", kind, size)
	return b, nil
}

func (d *Device) UploadVertices(b gfx.Buffer, offset int, vs []gfx.Vertex) {
	fb := b.(*Buffer)
	fb.Vertices = append(fb.Vertices[:0], vs...)
	d.record("UploadVertices", fb.ID, offset, len(vs))
}

func (d *Device) UploadIndices(b gfx.Buffer, offset int, idx []uint16) {
	fb := b.(*Buffer)
	fb.Indices = append(fb.Indices[:0], idx...)
	d.record("UploadIndices", fb.ID, offset, len(idx))
}

func (d *Device) DestroyBuffer(b gfx.Buffer) {
	fb := b.(*Buffer)
	delete(d.buffers, fb.ID)
	d.record("DestroyBuffer", fb.ID)
}

func (d *Device) BindVertexBuffers(vb, ib gfx.Buffer) {
	ibID := 0
	if ib != nil {
		ibID = ib.(*Buffer).ID
	}
	d.record("BindVertexBuffers", vb.(*Buffer).ID, ibID)
}

func (d *Device) BindTexture(slot int, t gfx.Texture) { d.record("BindTexture", slot, t) }
func (d *Device) UseProgram(p gfx.ShaderProgram)      { d.record("UseProgram", p) }

func (d *Device) SetUniformMatrix(name string, m mgl.Mat4) { d.record("SetUniformMatrix", name, m) }
func (d *Device) SetUniformFloats(name string, v ...float32) {
	d.record("SetUniformFloats", name, v)
}
func (d *Device) SetUniformInt(name string, v int32)    { d.record("SetUniformInt", name, v) }
func (d *Device) SetUniformInts(name string, v []int32) { d.record("SetUniformInts", name, v) }

func (d *Device) DrawIndexed(mode gfx.PrimitiveMode, first, count int) {
	d.record("DrawIndexed", mode, first, count)
}

func (d *Device) DrawArrays(mode gfx.PrimitiveMode, first, count int) {
	d.record("DrawArrays", mode, first, count)
}

func (d *Device) SetBlend(enabled bool) { d.record("SetBlend", enabled) }
func (d *Device) SetBlendFunc(srcRGB, dstRGB, srcAlpha, dstAlpha gfx.BlendFunc) {
	d.record("SetBlendFunc", srcRGB, dstRGB, srcAlpha, dstAlpha)
}
func (d *Device) SetBlendEquation(eq gfx.BlendEquation) { d.record("SetBlendEquation", eq) }
func (d *Device) SetDepthTest(enabled bool)             { d.record("SetDepthTest", enabled) }
func (d *Device) SetDepthMask(enabled bool)             { d.record("SetDepthMask", enabled) }
func (d *Device) SetStencilTest(enabled bool)           { d.record("SetStencilTest", enabled) }
func (d *Device) SetStencil(cfg gfx.StencilConfig)      { d.record("SetStencil", cfg) }
func (d *Device) SetScissor(r image.Rectangle)          { d.record("SetScissor", r) }
func (d *Device) SetCullFace(enabled, frontCCW bool)    { d.record("SetCullFace", enabled, frontCCW) }
func (d *Device) Viewport(r image.Rectangle)            { d.record("Viewport", r) }
func (d *Device) Clear(mask gfx.ClearMask, c gfx.Color) { d.record("Clear", mask, c) }

func (d *Device) Screen() gfx.Framebuffer { return d.screen }

func (d *Device) CreateFramebuffer(desc gfx.FramebufferDesc) (gfx.Framebuffer, error) {
	d.nextID++
	label := fmt.Sprintf("fb%d", d.nextID)
	fb := &Framebuffer{Label: label, size: desc.Size, color: NewTexture(label, desc.Size.X, desc.Size.Y)}
	d.record("CreateFramebuffer", desc)
	return fb, nil
}

func (d *Device) ResizeFramebuffer(fb gfx.Framebuffer, size image.Point) error {
	f := fb.(*Framebuffer)
	f.size = size
	if f.color != nil {
		f.color.W, f.color.H = size.X, size.Y
	}
	d.record("ResizeFramebuffer", fb, size)
	return nil
}

func (d *Device) BindFramebuffer(fb gfx.Framebuffer) {
	if fb == nil {
		fb = d.screen
	}
	d.bound = fb
	d.record("BindFramebuffer", fb)
}

func (d *Device) DestroyFramebuffer(fb gfx.Framebuffer) { d.record("DestroyFramebuffer", fb) }

// SetScreenSize simulates a window resize.
func (d *Device) SetScreenSize(w, h int) {
	d.screen.size = image.Pt(w, h)
}
