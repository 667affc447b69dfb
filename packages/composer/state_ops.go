package composer

import (
	"image"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// recState merges st into the recorded state. Nothing is recorded when the
// result equals the current state, unless force is set.
func (c *Composer) recState(op string, st RenderState, force bool) {
	if !c.recording(op) {
		return
	}
	merged := c.state.Merge(st)
	if merged == c.state && !force {
		return
	}
	c.flushBatch()
	c.state = merged
	c.push(&StateCommand{State: merged, Force: force})
}

// SetState merges the present fields of st into the current state.
func (c *Composer) SetState(st RenderState, force bool) { c.recState("SetState", st, force) }

func (c *Composer) SetDefaultState() { c.recState("SetDefaultState", DefaultState(c.res), false) }

// SetShader binds p; nil selects the default shader.
func (c *Composer) SetShader(p gfx.ShaderProgram) {
	if p == nil {
		p = c.res.DefaultShader()
	}
	c.recState("SetShader", RenderState{Shader: Some(p)}, false)
}

// SetShaderByName binds the program registered under name when the frame
// is processed, or the default shader if there is none.
func (c *Composer) SetShaderByName(name string) {
	c.recState("SetShaderByName", RenderState{ShaderName: Some(name)}, false)
}

// SetClipRect clips drawing to r in target pixels; an empty rectangle
// disables clipping.
func (c *Composer) SetClipRect(r image.Rectangle) {
	if r.Empty() {
		r = image.Rectangle{}
	}
	c.recState("SetClipRect", RenderState{ClipRect: Some(r)}, false)
}

func (c *Composer) SetDepthTest(enabled bool) {
	c.recState("SetDepthTest", RenderState{DepthTest: Some(enabled)}, false)
}

func (c *Composer) SetDepthWrite(enabled bool) {
	c.recState("SetDepthWrite", RenderState{DepthWrite: Some(enabled)}, false)
}

func (c *Composer) SetAlphaBlend(enabled bool) {
	c.recState("SetAlphaBlend", RenderState{AlphaBlend: Some(enabled)}, false)
}

func (c *Composer) SetBlendMode(p BlendPreset) { c.recState("SetBlendMode", p.State(), false) }

func (c *Composer) SetFaceCulling(enabled, frontCCW bool) {
	c.recState("SetFaceCulling", RenderState{FaceCulling: Some(CullMode{enabled, frontCCW})}, false)
}

func (c *Composer) SetUseViewMatrix(enabled bool) {
	c.recState("SetUseViewMatrix", RenderState{UseViewMatrix: Some(enabled)}, false)
}

func (c *Composer) SetProjectionBehavior(p ProjectionBehavior) {
	c.recState("SetProjectionBehavior", RenderState{Projection: Some(p)}, false)
}

// SetStencil switches to a stencil preset with reference value ref.
func (c *Composer) SetStencil(p StencilPreset, ref uint8) {
	c.recState("SetStencil", RenderState{Stencil: Some(StencilState{p, ref})}, false)
}

func (c *Composer) stencilRef() uint8 {
	s, _ := c.state.Stencil.Get()
	return s.Ref
}

// StencilStartDraw clears the stencil buffer; following draws write ref
// into the mask.
func (c *Composer) StencilStartDraw(ref uint8) { c.SetStencil(StencilStartDraw, ref) }

// StencilStopDraw stops writing the mask without restricting draws.
func (c *Composer) StencilStopDraw() { c.SetStencil(StencilStopDraw, c.stencilRef()) }

// StencilCutOutFrom draws only outside the mask.
func (c *Composer) StencilCutOutFrom(ref uint8) { c.SetStencil(StencilCutOutFrom, ref) }

// StencilFillIn draws only inside the mask.
func (c *Composer) StencilFillIn(ref uint8) { c.SetStencil(StencilFillIn, ref) }

func (c *Composer) StencilWindingStart() { c.SetStencil(StencilWindingStart, 1) }
func (c *Composer) StencilWindingEnd()   { c.SetStencil(StencilWindingEnd, 1) }
func (c *Composer) StencilDisable()      { c.SetStencil(StencilDisabled, 0) }
