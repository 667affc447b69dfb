package opengl

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// screen is the window's default framebuffer.
type screen struct {
	size image.Point
}

func (s *screen) Size() image.Point         { return s.size }
func (s *screen) ColorTexture() gfx.Texture { return nil }
func (s *screen) IsScreen() bool            { return true }
func (s *screen) String() string            { return "screen" }

// Framebuffer is an offscreen target with an RGBA color texture and an
// optional depth/stencil renderbuffer.
type Framebuffer struct {
	fbo   uint32
	rbo   uint32
	color *Texture
	desc  gfx.FramebufferDesc
}

func (f *Framebuffer) Size() image.Point         { return f.desc.Size }
func (f *Framebuffer) ColorTexture() gfx.Texture { return f.color }
func (f *Framebuffer) IsScreen() bool            { return false }
func (f *Framebuffer) String() string {
	return fmt.Sprintf("framebuffer:%d(%dx%d)", f.fbo, f.desc.Size.X, f.desc.Size.Y)
}

func (f *Framebuffer) depthFormat() (format, attachment uint32) {
	switch {
	case f.desc.Stencil:
		return gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL_ATTACHMENT
	case f.desc.Depth:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_ATTACHMENT
	}
	return 0, 0
}

// allocate (re)specifies the attachment storage for the current size.
func (f *Framebuffer) allocate() {
	f.color.width, f.color.height = int32(f.desc.Size.X), int32(f.desc.Size.Y)
	f.color.SetData(nil)
	if f.rbo != 0 {
		format, _ := f.depthFormat()
		gl.BindRenderbuffer(gl.RENDERBUFFER, f.rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, format, int32(f.desc.Size.X), int32(f.desc.Size.Y))
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}
}

func (d *Device) CreateFramebuffer(desc gfx.FramebufferDesc) (gfx.Framebuffer, error) {
	if desc.Size.X <= 0 || desc.Size.Y <= 0 {
		return nil, fmt.Errorf("opengl: framebuffer size %v: %w", desc.Size, ErrFramebufferIncomplete)
	}
	f := &Framebuffer{desc: desc, color: d.NewTexture(desc.Size.X, desc.Size.Y, desc.Filter)}
	// The framebuffer owns its color texture.
	runtime.SetFinalizer(f.color, nil)
	if format, _ := f.depthFormat(); format != 0 {
		gl.GenRenderbuffers(1, &f.rbo)
	}
	f.allocate()

	gl.GenFramebuffers(1, &f.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, f.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, f.color.handle, 0)
	if f.rbo != 0 {
		_, attachment := f.depthFormat()
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, f.rbo)
	}
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	d.BindFramebuffer(d.target)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DestroyFramebuffer(f)
		return nil, fmt.Errorf("%w: status 0x%x", ErrFramebufferIncomplete, status)
	}
	gfx.Logger().Debug("opengl: framebuffer created", "id", f.fbo, "size", desc.Size,
		"depth", desc.Depth, "stencil", desc.Stencil)
	return f, nil
}

func (d *Device) ResizeFramebuffer(fb gfx.Framebuffer, size image.Point) error {
	f, ok := fb.(*Framebuffer)
	if !ok {
		return fmt.Errorf("opengl: resize %v: not an offscreen framebuffer", fb)
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("opengl: framebuffer size %v: %w", size, ErrFramebufferIncomplete)
	}
	f.desc.Size = size
	f.allocate()
	return nil
}

func (d *Device) Screen() gfx.Framebuffer { return d.screen }

func (d *Device) BindFramebuffer(fb gfx.Framebuffer) {
	if fb == nil {
		fb = d.screen
	}
	d.target = fb
	var id uint32
	if f, ok := fb.(*Framebuffer); ok {
		id = f.fbo
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
}

func (d *Device) DestroyFramebuffer(fb gfx.Framebuffer) {
	f, ok := fb.(*Framebuffer)
	if !ok {
		return
	}
	if d.target == fb {
		d.BindFramebuffer(d.screen)
	}
	gl.DeleteFramebuffers(1, &f.fbo)
	if f.rbo != 0 {
		gl.DeleteRenderbuffers(1, &f.rbo)
	}
	f.color.Delete()
}
