package opengl

import (
	"image"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

var blendEquationLUT = map[gfx.BlendEquation]uint32{
	gfx.BlendAdd:             gl.FUNC_ADD,
	gfx.BlendSubtract:        gl.FUNC_SUBTRACT,
	gfx.BlendReverseSubtract: gl.FUNC_REVERSE_SUBTRACT,
}

var blendFuncLUT = map[gfx.BlendFunc]uint32{
	gfx.BlendOne:              gl.ONE,
	gfx.BlendZero:             gl.ZERO,
	gfx.BlendSrcAlpha:         gl.SRC_ALPHA,
	gfx.BlendOneMinusSrcAlpha: gl.ONE_MINUS_SRC_ALPHA,
	gfx.BlendDstColor:         gl.DST_COLOR,
	gfx.BlendOneMinusDstColor: gl.ONE_MINUS_DST_COLOR,
	gfx.BlendSrcColor:         gl.SRC_COLOR,
	gfx.BlendOneMinusSrcColor: gl.ONE_MINUS_SRC_COLOR,
	gfx.BlendDstAlpha:         gl.DST_ALPHA,
	gfx.BlendOneMinusDstAlpha: gl.ONE_MINUS_DST_ALPHA,
}

var primitiveModeLUT = map[gfx.PrimitiveMode]uint32{
	gfx.Points:        gl.POINTS,
	gfx.Lines:         gl.LINES,
	gfx.LineLoop:      gl.LINE_LOOP,
	gfx.LineStrip:     gl.LINE_STRIP,
	gfx.Triangles:     gl.TRIANGLES,
	gfx.TriangleStrip: gl.TRIANGLE_STRIP,
	gfx.TriangleFan:   gl.TRIANGLE_FAN,
}

var compareFuncLUT = map[gfx.CompareFunc]uint32{
	gfx.CompareNever:          gl.NEVER,
	gfx.CompareLess:           gl.LESS,
	gfx.CompareEqual:          gl.EQUAL,
	gfx.CompareLessOrEqual:    gl.LEQUAL,
	gfx.CompareGreater:        gl.GREATER,
	gfx.CompareNotEqual:       gl.NOTEQUAL,
	gfx.CompareGreaterOrEqual: gl.GEQUAL,
	gfx.CompareAlways:         gl.ALWAYS,
}

var stencilOpLUT = map[gfx.StencilOp]uint32{
	gfx.StencilKeep:      gl.KEEP,
	gfx.StencilZero:      gl.ZERO,
	gfx.StencilReplace:   gl.REPLACE,
	gfx.StencilIncrement: gl.INCR,
	gfx.StencilDecrement: gl.DECR,
	gfx.StencilInvert:    gl.INVERT,
}

func mapPrimitiveMode(m gfx.PrimitiveMode) uint32 { return primitiveModeLUT[m] }

func enable(c uint32, on bool) {
	if on {
		gl.Enable(c)
	} else {
		gl.Disable(c)
	}
}

func (d *Device) SetBlend(enabled bool) { enable(gl.BLEND, enabled) }

func (d *Device) SetBlendFunc(srcRGB, dstRGB, srcAlpha, dstAlpha gfx.BlendFunc) {
	gl.BlendFuncSeparate(blendFuncLUT[srcRGB], blendFuncLUT[dstRGB], blendFuncLUT[srcAlpha], blendFuncLUT[dstAlpha])
}

func (d *Device) SetBlendEquation(eq gfx.BlendEquation) {
	gl.BlendEquation(blendEquationLUT[eq])
}

func (d *Device) SetDepthTest(enabled bool) {
	enable(gl.DEPTH_TEST, enabled)
	if enabled {
		gl.DepthFunc(gl.LEQUAL)
	}
}

func (d *Device) SetDepthMask(enabled bool) {
	d.depthMask = enabled
	gl.DepthMask(enabled)
}

func (d *Device) SetStencilTest(enabled bool) { enable(gl.STENCIL_TEST, enabled) }

func (d *Device) SetStencil(cfg gfx.StencilConfig) {
	d.stencilMask = cfg.WriteMask
	gl.StencilFunc(compareFuncLUT[cfg.Func], int32(cfg.Ref), uint32(cfg.ReadMask))
	gl.StencilMask(uint32(cfg.WriteMask))
	gl.StencilOp(stencilOpLUT[cfg.Fail], stencilOpLUT[cfg.DepthFail], stencilOpLUT[cfg.Pass])
}

// flipY converts a top-left origin rectangle of the bound target into GL
// window coordinates.
func (d *Device) flipY(r image.Rectangle) (x, y, w, h int32) {
	th := d.target.Size().Y
	return int32(r.Min.X), int32(th - r.Max.Y), int32(r.Dx()), int32(r.Dy())
}

func (d *Device) SetScissor(r image.Rectangle) {
	if r.Empty() {
		gl.Disable(gl.SCISSOR_TEST)
		return
	}
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(d.flipY(r))
}

func (d *Device) SetCullFace(enabled, frontCCW bool) {
	enable(gl.CULL_FACE, enabled)
	if !enabled {
		return
	}
	gl.CullFace(gl.BACK)
	if frontCCW {
		gl.FrontFace(gl.CCW)
	} else {
		gl.FrontFace(gl.CW)
	}
}

func (d *Device) Viewport(r image.Rectangle) {
	gl.Viewport(d.flipY(r))
}

// Clear honours the scissor rectangle but not the depth and stencil write
// masks.
func (d *Device) Clear(mask gfx.ClearMask, c gfx.Color) {
	var bits uint32
	if mask&gfx.ClearColor != 0 {
		f := c.Floats()
		gl.ClearColor(f[0], f[1], f[2], f[3])
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.ClearDepth != 0 {
		gl.DepthMask(true)
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if mask&gfx.ClearStencil != 0 {
		gl.StencilMask(0xFF)
		gl.ClearStencil(0)
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
	if mask&gfx.ClearDepth != 0 {
		gl.DepthMask(d.depthMask)
	}
	if mask&gfx.ClearStencil != 0 {
		gl.StencilMask(uint32(d.stencilMask))
	}
}
