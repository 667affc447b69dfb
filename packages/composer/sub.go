package composer

import "github.com/leonkasovan/go-composer/packages/gfx"

// NewSubComposer returns a composer that records into its own command list
// starting from c's current state, model matrix and target. It shares c's
// device, resources and stream pool. Its commands run where it is passed
// to RenderSubComposer; whatever it recorded and did not hand over is
// discarded by c's next StartFrame or Reset.
func (c *Composer) NewSubComposer() *Composer {
	sub := &Composer{
		dev:          c.dev,
		res:          c.res,
		cfg:          c.cfg,
		pool:         c.pool,
		units:        c.units,
		camera:       c.camera,
		parent:       c,
		phase:        PhaseRecording,
		state:        c.state,
		model:        newTransformationStackFrom(c.model.Current()),
		targets:      NewFramebufferStack(c.targets.Current()),
		intermediary: c.intermediary,
	}
	sub.entry = snapshot{state: c.state, model: c.model.Current(), target: c.targets.Current()}
	sub.entry.primary = sub.entry.target == c.primary()
	return sub
}

// RenderSubComposer records the commands of sub at this point of the
// frame. Afterwards the device is returned to c's state, model matrix and
// target. sub is left empty and can record again.
func (c *Composer) RenderSubComposer(sub *Composer) {
	if sub == nil || !c.recording("RenderSubComposer") {
		return
	}
	if sub.parent != c {
		c.fail("RenderSubComposer", ErrForeignComposer)
		return
	}
	sub.flushBatch()
	if sub.err != nil && c.err == nil {
		c.err = sub.err
	}
	sub.err = nil
	if len(sub.commands) == 0 {
		return
	}
	c.flushBatch()
	c.stats.Batches += sub.stats.Batches
	c.stats.Vertices += sub.stats.Vertices
	c.stats.Commands += sub.stats.Commands
	sub.stats = Stats{}

	target := c.targets.Current()
	c.push(&SubComposerCommand{
		Commands: sub.commands,
		entry:    sub.entry,
		restore:  snapshot{state: c.state, model: c.model.Current(), target: target, primary: target == c.primary()},
	})
	sub.commands = nil
	sub.entry = snapshot{state: sub.state, model: sub.model.Current(), target: sub.targets.Current()}
	sub.entry.primary = sub.entry.target == sub.primary()
}

// ExecuteCallback runs fn on the device at this point of the frame. The
// composer re-synchronizes every piece of device state afterwards.
func (c *Composer) ExecuteCallback(fn func(dev gfx.Device)) {
	if fn == nil || !c.recording("ExecuteCallback") {
		return
	}
	c.flushBatch()
	c.push(&CallbackCommand{Fn: fn})
}
