package composer

import (
	"fmt"
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/stream"
)

// processor resolves deferred state before anything touches the device.
type processor struct {
	res gfx.Resources
}

func (p *processor) resolve(st RenderState) RenderState {
	if name, ok := st.ShaderName.Get(); ok {
		prog, found := p.res.Shader(name)
		if !found || prog == nil {
			gfx.Logger().Warn("composer: shader not found, using default", "shader", name)
			prog = p.res.DefaultShader()
		}
		st.Shader, st.ShaderName = Some(prog), None[string]()
	}
	if prog, ok := st.Shader.Get(); ok && prog == nil {
		st.Shader = Some(p.res.DefaultShader())
	}
	return st
}

// executor replays processed commands against the device.
type executor struct {
	dev     gfx.Device
	pool    *stream.Pool
	sync    *Synchronizer
	applied RenderState
	bound   []gfx.Texture
	stats   *Stats
}

func newExecutor(dev gfx.Device, pool *stream.Pool, sync *Synchronizer, stats *Stats) *executor {
	return &executor{dev: dev, pool: pool, sync: sync, stats: stats}
}

// run executes cmds in order. The device error state is checked after
// every command; on failure the pages of the commands not yet executed are
// released and the error returned.
func (e *executor) run(cmds []Command) error {
	for i, cmd := range cmds {
		err := cmd.execute(e)
		if err == nil {
			err = e.dev.Err()
		}
		if err != nil {
			releasePages(e.pool, cmds[i:])
			return fmt.Errorf("%s: %w", cmd.Type(), err)
		}
	}
	return nil
}

func (e *executor) bindTexture(slot int, t gfx.Texture) {
	for len(e.bound) <= slot {
		e.bound = append(e.bound, nil)
	}
	if e.bound[slot] == t {
		return
	}
	e.bound[slot] = t
	e.dev.BindTexture(slot, t)
}

func (e *executor) bindTarget(fb gfx.Framebuffer, primary bool) {
	e.dev.BindFramebuffer(fb)
	e.dev.Viewport(image.Rectangle{Max: fb.Size()})
	e.sync.SetTarget(fb, primary)
	if e.applied.Shader.IsSet() {
		e.sync.UploadViewProjection(e.applied)
	}
	// The scissor box is flipped against the bound target's height.
	if r, ok := e.applied.ClipRect.Get(); ok && !r.Empty() {
		e.dev.SetScissor(r)
	}
}

func (e *executor) setModel(m mgl.Mat4) {
	e.sync.SetModel(m)
	if e.applied.Shader.IsSet() {
		e.sync.UploadModel()
	}
}

// resync forgets everything cached about the device and reapplies the
// current target and state.
func (e *executor) resync() {
	e.bound = e.bound[:0]
	e.bindTarget(e.sync.Target(), e.sync.primary)
	e.applied = e.sync.Apply(e.applied, e.applied, true)
}

// restore brings target, model matrix and state back to snap, issuing only
// the calls that differ.
func (e *executor) restore(snap snapshot) {
	if snap.target != nil && e.sync.Target() != snap.target {
		e.bindTarget(snap.target, snap.primary)
	}
	if e.sync.Model() != snap.model {
		e.setModel(snap.model)
	}
	e.applied = e.sync.Restore(snap.state, e.applied)
}
