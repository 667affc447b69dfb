package composer

import (
	"fmt"
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Phase is the position of a composer in the frame lifecycle.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseRecording
	PhaseRecorded
	PhaseProcessed
	PhaseExecuted
)

var phaseNames = [...]string{
	PhaseIdle:      "Idle",
	PhaseRecording: "Recording",
	PhaseRecorded:  "Recorded",
	PhaseProcessed: "Processed",
	PhaseExecuted:  "Executed",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

func (c *Composer) Phase() Phase { return c.phase }

// StartFrame begins recording. The default state is recorded forcibly and
// the screen (and intermediary buffer, if configured) is bound and cleared.
// A frame that was started but never executed is discarded.
func (c *Composer) StartFrame() {
	inProgress := c.phase == PhaseRecording || c.phase == PhaseRecorded || c.phase == PhaseProcessed
	if inProgress {
		c.discard()
	} else {
		c.dropSubs()
	}
	c.err = nil
	c.stats = Stats{}
	c.commands = c.commands[:0]
	c.batch = nil
	if inProgress {
		c.fail("StartFrame", ErrFrameInProgress)
	}

	screen := c.dev.Screen()
	if d := c.targets.Depth(); d != 1 {
		c.fail("StartFrame", fmt.Errorf("%w: depth %d", ErrUnbalancedTargets, d))
	}
	c.targets.Reset(screen)
	if d := c.model.Depth(); d != 1 {
		gfx.Logger().Warn("composer: unbalanced model matrix stack", "depth", d)
		c.model.Reset()
	}

	c.phase = PhaseRecording
	c.state = RenderState{}
	c.recState("StartFrame", DefaultState(c.res), true)

	fb := c.ensureIntermediary()
	c.push(&TargetCommand{Target: screen, Primary: fb == nil, Clear: true, Color: c.cfg.ClearColor})
	if fb != nil {
		c.RenderToAndClear(fb)
	}
}

// ensureIntermediary creates or resizes the intermediary buffer. It returns
// nil when none is configured or it cannot be created.
func (c *Composer) ensureIntermediary() gfx.Framebuffer {
	if !c.cfg.IntermediaryBuffer {
		return nil
	}
	size := image.Pt(c.cfg.IntermediaryWidth, c.cfg.IntermediaryHeight)
	if size.X <= 0 || size.Y <= 0 {
		size = c.dev.Screen().Size()
	}
	if c.intermediary == nil {
		fb, err := c.dev.CreateFramebuffer(gfx.FramebufferDesc{Size: size, Depth: true, Stencil: true, Filter: true})
		if err != nil {
			c.fail("StartFrame", err)
			return nil
		}
		c.intermediary = fb
		gfx.Logger().Debug("composer: intermediary buffer created", "size", size)
	} else if c.intermediary.Size() != size {
		if err := c.dev.ResizeFramebuffer(c.intermediary, size); err != nil {
			c.fail("StartFrame", err)
			return nil
		}
	}
	return c.intermediary
}

// EndFrame stops recording. With an intermediary buffer its contents are
// drawn to the screen with the blit shader; the open batch is flushed and
// stream pages of earlier frames are retired. It returns the first
// programmer error of the frame.
func (c *Composer) EndFrame() error {
	if !c.recording("EndFrame") {
		return c.err
	}
	if fb := c.intermediary; fb != nil && c.cfg.IntermediaryBuffer {
		if c.targets.Depth() > 2 {
			c.fail("EndFrame", fmt.Errorf("%w: depth %d", ErrUnbalancedTargets, c.targets.Depth()))
			c.flushBatch()
			c.targets.Truncate(2)
		}
		if c.targets.Current() == fb {
			c.RenderTo(nil)
		} else {
			// Popped by the caller: the blit still goes to the screen.
			c.fail("EndFrame", fmt.Errorf("%w: intermediary buffer is not the current target", ErrUnbalancedTargets))
			c.flushBatch()
			c.targets.Truncate(1)
			c.push(&TargetCommand{Target: c.targets.Current(), Primary: false})
		}
		c.blit(fb)
	}
	c.flushBatch()
	c.pool.Maintain()
	c.phase = PhaseRecorded
	return c.err
}

// blit draws the intermediary buffer over the whole screen. A model matrix
// left pushed by the frame is replaced by the identity for the blit.
func (c *Composer) blit(fb gfx.Framebuffer) {
	pushed := c.model.Current() != mgl.Ident4()
	if pushed {
		c.PushModelMatrix(mgl.Ident4(), false)
	}
	c.recState("EndFrame", blitState(c.res), false)
	size := c.dev.Screen().Size()
	c.RenderSprite(SpriteParams{
		Size:    mgl.Vec2{float32(size.X), float32(size.Y)},
		Color:   gfx.White,
		Texture: fb.ColorTexture(),
		FlipY:   true,
	})
	if pushed {
		c.PopModelMatrix()
	}
}

// Process resolves deferred state and prepares every batch for drawing.
// No device call is made.
func (c *Composer) Process() {
	if c.phase != PhaseRecorded {
		c.fail("Process", fmt.Errorf("%w: %s", ErrInvalidPhase, c.phase))
		return
	}
	p := &processor{res: c.res}
	for _, cmd := range c.commands {
		cmd.process(p)
	}
	c.phase = PhaseProcessed
}

// Execute replays the processed frame on the device. A device error aborts
// the frame; the pages of the commands left unexecuted are released.
func (c *Composer) Execute() error {
	if c.phase != PhaseProcessed {
		return fmt.Errorf("composer: Execute: %w: %s", ErrInvalidPhase, c.phase)
	}
	sync := NewSynchronizer(c.dev, c.units, c.cfg.Near, c.cfg.Far)
	sync.SetCamera(c.camera)
	e := newExecutor(c.dev, c.pool, sync, &c.stats)

	c.dev.BeginFrame()
	err := e.run(c.commands)
	c.commands = c.commands[:0]
	c.phase = PhaseExecuted
	if err != nil {
		err = fmt.Errorf("composer: execute %w", err)
		gfx.Logger().Error("composer: frame aborted", "err", err)
	}
	return err
}
