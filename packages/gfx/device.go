// Package gfx is the graphics device abstraction the composer records
// against. It defines the device contract, the resource handles and the
// vertex layout; packages opengl and gfxtest implement it.
//
// Every method of a Device must be called from the graphics thread.
package gfx

import (
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"
)

// Capabilities describes device limits the composer depends on.
type Capabilities struct {
	// MaxTextureUnits is the number of textures one draw call can sample.
	MaxTextureUnits int
	// MaxTextureSize is the largest texture dimension.
	MaxTextureSize int
	// Renderer is a human readable description of the driver.
	Renderer string
}

// Buffer is a device vertex or index buffer.
type Buffer interface {
	Kind() BufferKind
	// Size is the allocated size in bytes.
	Size() int
}

// Texture is an already decoded texture owned by the resource loader.
type Texture interface {
	Width() int
	Height() int
	IsValid() bool
	// SetData replaces the whole texture with RGBA8 texels.
	SetData(data []byte)
	// SetSubData uploads RGBA8 texels into a sub rectangle.
	SetSubData(data []byte, x, y, width, height int)
}

// ShaderProgram is a linked shader program.
type ShaderProgram interface {
	Name() string
}

// Framebuffer is a render target. The screen is a Framebuffer too; see
// Device.Screen.
type Framebuffer interface {
	Size() image.Point
	// ColorTexture is the color attachment, nil for the screen.
	ColorTexture() Texture
	IsScreen() bool
}

// FramebufferDesc describes an offscreen render target.
type FramebufferDesc struct {
	Size    image.Point
	Depth   bool
	Stencil bool
	// Filter selects linear sampling of the color attachment.
	Filter bool
}

// StencilConfig is the low level stencil function and operation set.
type StencilConfig struct {
	Func      CompareFunc
	Ref       uint8
	ReadMask  uint8
	WriteMask uint8
	Fail      StencilOp
	DepthFail StencilOp
	Pass      StencilOp
}

// BufferDevice is the subset of Device needed to manage stream memory.
type BufferDevice interface {
	CreateBuffer(kind BufferKind, size int) (Buffer, error)
	UploadVertices(b Buffer, offset int, vs []Vertex)
	UploadIndices(b Buffer, offset int, idx []uint16)
	DestroyBuffer(b Buffer)
}

// Device is a stateful graphics device. Implementations do not cache state;
// redundant calls are filtered by the composer's state synchronizer.
type Device interface {
	BufferDevice

	Capabilities() Capabilities
	// BeginFrame runs deferred graphics-thread work and binds the device's
	// vertex layout. It is called once before a frame's commands execute.
	BeginFrame()
	// Finish blocks until the device has consumed every submitted command.
	Finish()
	// Err reports and clears the first device error since the last call.
	Err() error

	// BindVertexBuffers binds a vertex buffer and optionally an index buffer.
	BindVertexBuffers(vb, ib Buffer)
	BindTexture(slot int, t Texture)
	UseProgram(p ShaderProgram)
	SetUniformMatrix(name string, m mgl.Mat4)
	SetUniformFloats(name string, v ...float32)
	SetUniformInt(name string, v int32)
	SetUniformInts(name string, v []int32)
	// DrawIndexed draws count indices starting at index first.
	DrawIndexed(mode PrimitiveMode, first, count int)
	// DrawArrays draws count vertices starting at vertex first.
	DrawArrays(mode PrimitiveMode, first, count int)

	SetBlend(enabled bool)
	SetBlendFunc(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFunc)
	SetBlendEquation(eq BlendEquation)
	// SetDepthTest enables the less-or-equal depth test.
	SetDepthTest(enabled bool)
	SetDepthMask(enabled bool)
	SetStencilTest(enabled bool)
	SetStencil(cfg StencilConfig)
	// SetScissor clips to r, given in top-left origin target pixels. An
	// empty rectangle disables clipping.
	SetScissor(r image.Rectangle)
	SetCullFace(enabled, frontCCW bool)
	Viewport(r image.Rectangle)
	Clear(mask ClearMask, c Color)

	// Screen returns the default render target.
	Screen() Framebuffer
	CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	ResizeFramebuffer(fb Framebuffer, size image.Point) error
	// BindFramebuffer makes fb the draw target; nil binds the screen.
	BindFramebuffer(fb Framebuffer)
	DestroyFramebuffer(fb Framebuffer)
}
