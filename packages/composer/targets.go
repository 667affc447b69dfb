package composer

import (
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// PushModelMatrix pushes m, multiplied onto the current top when multiply
// is set.
func (c *Composer) PushModelMatrix(m mgl.Mat4, multiply bool) {
	if !c.recording("PushModelMatrix") {
		return
	}
	c.flushBatch()
	c.model.Push(m, multiply)
	c.push(&MatrixCommand{Matrix: c.model.Current(), Push: true})
}

func (c *Composer) PopModelMatrix() {
	if !c.recording("PopModelMatrix") {
		return
	}
	c.flushBatch()
	if !c.model.Pop() {
		c.fail("PopModelMatrix", ErrStackUnderflow)
		return
	}
	c.push(&MatrixCommand{Matrix: c.model.Current()})
}

// RenderTo makes fb the draw target. A nil fb pops the current target and
// rebinds the previous one.
func (c *Composer) RenderTo(fb gfx.Framebuffer) {
	if !c.recording("RenderTo") {
		return
	}
	c.flushBatch()
	if fb == nil {
		if !c.targets.Pop() {
			c.fail("RenderTo", ErrStackUnderflow)
			return
		}
	} else {
		c.targets.Push(fb)
	}
	t := c.targets.Current()
	c.push(&TargetCommand{Target: t, Primary: t == c.primary()})
}

// RenderToAndClear makes fb the draw target and clears it.
func (c *Composer) RenderToAndClear(fb gfx.Framebuffer) {
	if !c.recording("RenderToAndClear") {
		return
	}
	if fb == nil {
		c.RenderTo(nil)
		c.ClearFrameBuffer()
		return
	}
	c.flushBatch()
	c.targets.Push(fb)
	c.push(&TargetCommand{Target: fb, Primary: fb == c.primary(), Clear: true, Color: c.clearColor(fb)})
}

// RenderTargetPop pops the current target without rebinding the previous
// one, for callers about to push another target.
func (c *Composer) RenderTargetPop() {
	if !c.recording("RenderTargetPop") {
		return
	}
	c.flushBatch()
	if !c.targets.Pop() {
		c.fail("RenderTargetPop", ErrStackUnderflow)
	}
}

// ClearFrameBuffer clears color, depth and stencil of the current target.
func (c *Composer) ClearFrameBuffer() {
	if !c.recording("ClearFrameBuffer") {
		return
	}
	c.flushBatch()
	c.push(&ClearCommand{Mask: gfx.ClearAll, Color: c.clearColor(c.targets.Current())})
}

// clearColor is the configured clear color on the screen and the
// intermediary buffer, transparent on other targets.
func (c *Composer) clearColor(fb gfx.Framebuffer) gfx.Color {
	if fb.IsScreen() || fb == c.intermediary {
		return c.cfg.ClearColor
	}
	return gfx.Transparent
}
