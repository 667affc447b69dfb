// Package composer records draw calls into batches and commands and replays
// them against a gfx.Device at the end of the frame.
//
// A frame runs StartFrame, draw calls, EndFrame, Process and Execute, all
// on the graphics thread. Consecutive draws of the same topology that fit
// one stream page and the device's texture units are merged into a single
// draw call; any state, matrix or target change closes the open batch so
// draws execute in exactly the order they were recorded.
//
//	c := composer.New(dev, lib, composer.DefaultConfig())
//	c.StartFrame()
//	c.RenderSprite(composer.SpriteParams{Size: mgl.Vec2{32, 32}, Color: gfx.White, Texture: tex})
//	if err := c.EndFrame(); err != nil {
//		log.Println(err)
//	}
//	c.Process()
//	err := c.Execute()
package composer

import (
	"errors"
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/stream"
)

var (
	// ErrTextureSlotOverflow is reported when a draw needs a texture that
	// does not fit the open batch's texture units.
	ErrTextureSlotOverflow = errors.New("composer: texture slot overflow")

	// ErrNotRecording is reported when recording outside StartFrame/EndFrame.
	ErrNotRecording = errors.New("composer: not recording")

	// ErrFrameInProgress is reported when a frame starts before the
	// previous one was executed.
	ErrFrameInProgress = errors.New("composer: frame in progress")

	ErrStackUnderflow    = errors.New("composer: stack underflow")
	ErrUnbalancedTargets = errors.New("composer: unbalanced render targets")
	ErrInvalidPhase      = errors.New("composer: invalid phase")

	// ErrForeignComposer is reported when rendering a sub-composer created
	// by another composer.
	ErrForeignComposer = errors.New("composer: sub-composer of another composer")
)

// Config configures a Composer. Zero fields take their defaults.
type Config struct {
	// PageVertices is the vertex capacity of every stream page.
	PageVertices int `toml:"page_vertices"`
	// RetireFrames is how many frames a submitted page waits before reuse.
	RetireFrames int `toml:"retire_frames"`
	// MaxTextureUnits caps the device's texture units per batch.
	MaxTextureUnits int `toml:"max_texture_units"`
	// CircleDetail is the number of segments per circle.
	CircleDetail int     `toml:"circle_detail"`
	Near         float32 `toml:"near"`
	Far          float32 `toml:"far"`
	// Debug panics on programmer errors instead of logging them.
	Debug bool `toml:"debug"`
	// IntermediaryBuffer draws the frame into an offscreen target that is
	// blitted to the screen by EndFrame.
	IntermediaryBuffer bool `toml:"intermediary_buffer"`
	// IntermediaryWidth and IntermediaryHeight fix the offscreen size; zero
	// follows the screen.
	IntermediaryWidth  int       `toml:"intermediary_width"`
	IntermediaryHeight int       `toml:"intermediary_height"`
	ClearColor         gfx.Color `toml:"clear_color"`
}

const (
	DefaultCircleDetail = 30
	DefaultNear         = -100
	DefaultFar          = 100
)

func DefaultConfig() Config {
	return Config{
		PageVertices: stream.DefaultPageVertices,
		RetireFrames: stream.DefaultRetireFrames,
		CircleDetail: DefaultCircleDetail,
		Near:         DefaultNear,
		Far:          DefaultFar,
		ClearColor:   gfx.Black,
	}
}

func (c Config) withDefaults() Config {
	if c.CircleDetail < 3 {
		c.CircleDetail = DefaultCircleDetail
	}
	if c.Near == c.Far {
		c.Near, c.Far = DefaultNear, DefaultFar
	}
	return c
}

// Stats counts the work of the current frame.
type Stats struct {
	Commands     int
	Batches      int
	Vertices     int
	DrawCalls    int
	StateChanges int
	Pool         stream.Stats
}

func (s Stats) String() string {
	return fmt.Sprintf("Stats[%d commands, %d batches, %d vertices, %d draw calls, %d state changes] %v",
		s.Commands, s.Batches, s.Vertices, s.DrawCalls, s.StateChanges, s.Pool)
}

// Composer is the recording façade. It is not safe for concurrent use.
type Composer struct {
	dev    gfx.Device
	res    gfx.Resources
	cfg    Config
	pool   *stream.Pool
	units  int
	camera Camera
	parent *Composer
	// entry is where a sub-composer's next commands start from.
	entry snapshot
	// subs are the sub-composers that took pages since the frame started.
	subs    []*Composer
	tracked bool

	phase        Phase
	commands     []Command
	batch        *Batch
	state        RenderState
	model        *TransformationStack
	targets      *FramebufferStack
	intermediary gfx.Framebuffer
	stats        Stats
	err          error
}

// New creates a composer drawing on dev with the shaders of res.
func New(dev gfx.Device, res gfx.Resources, cfg Config) *Composer {
	cfg = cfg.withDefaults()
	units := dev.Capabilities().MaxTextureUnits
	if cfg.MaxTextureUnits > 0 && cfg.MaxTextureUnits < units {
		units = cfg.MaxTextureUnits
	}
	if units < 1 {
		units = 1
	}
	c := &Composer{
		dev:     dev,
		res:     res,
		cfg:     cfg,
		pool:    stream.NewPool(dev, stream.Config{PageVertices: cfg.PageVertices, RetireFrames: cfg.RetireFrames}),
		units:   units,
		model:   NewTransformationStack(),
		targets: NewFramebufferStack(dev.Screen()),
	}
	gfx.Logger().Debug("composer: created", "textureUnits", units, "pageVertices", c.pool.Config().PageVertices)
	return c
}

// fail reports a programmer error: a panic in debug mode, otherwise a
// warning, with the first error kept for Err and EndFrame.
func (c *Composer) fail(op string, err error) {
	err = fmt.Errorf("%s: %w", op, err)
	if c.cfg.Debug {
		panic(err)
	}
	gfx.Logger().Warn("composer: "+op, "err", err)
	if c.err == nil {
		c.err = err
	}
}

// recording reports whether draw calls may be recorded, failing otherwise.
func (c *Composer) recording(op string) bool {
	if c.phase == PhaseRecording {
		return true
	}
	c.fail(op, ErrNotRecording)
	return false
}

func (c *Composer) push(cmd Command) {
	c.commands = append(c.commands, cmd)
	c.stats.Commands++
}

// Err returns the first programmer error of the frame.
func (c *Composer) Err() error { return c.err }

func (c *Composer) Config() Config { return c.cfg }

// TextureUnits is the number of textures one batch may sample.
func (c *Composer) TextureUnits() int { return c.units }

func (c *Composer) Device() gfx.Device { return c.dev }

func (c *Composer) SetCamera(cam Camera) { c.camera = cam }
func (c *Composer) Camera() Camera       { return c.camera }

// CurrentTarget is the target draws currently go to.
func (c *Composer) CurrentTarget() gfx.Framebuffer { return c.targets.Current() }

// ModelMatrix is the top of the transformation stack.
func (c *Composer) ModelMatrix() mgl.Mat4 { return c.model.Current() }

// CurrentState is the last recorded render state.
func (c *Composer) CurrentState() RenderState { return c.state }

func (c *Composer) Stats() Stats {
	s := c.stats
	s.Pool = c.pool.Stats()
	return s
}

// primary is the target the frame's camera draws to.
func (c *Composer) primary() gfx.Framebuffer {
	if c.intermediary != nil {
		return c.intermediary
	}
	return c.dev.Screen()
}

// getBatch returns a batch able to take n vertices of topology sampling
// tex, closing the open batch when it cannot. It returns nil when the draw
// must be dropped.
func (c *Composer) getBatch(op string, topology Topology, tex gfx.Texture, n int) *Batch {
	if b := c.batch; b != nil {
		if b.canFit(topology, tex, n) {
			return b
		}
		if !b.full && b.topology == topology && b.hasRoom(n) && tex != nil && b.slot(tex) < 0 {
			c.fail(op, ErrTextureSlotOverflow)
			return nil
		}
		c.flushBatch()
	}
	page, err := c.pool.Acquire()
	if err != nil {
		c.fail(op, err)
		return nil
	}
	c.track()
	c.batch = newBatch(topology, page, c.units)
	return c.batch
}

// flushBatch closes the open batch and records it. Empty batches give
// their page back.
func (c *Composer) flushBatch() {
	b := c.batch
	if b == nil {
		return
	}
	c.batch = nil
	if b.Len() == 0 {
		_ = c.pool.Release(b.page)
		return
	}
	c.push(&BatchCommand{Topology: b.topology, Page: b.page, Textures: b.textures})
	c.stats.Batches++
	c.stats.Vertices += b.Len()
}

// Flush closes the open batch. Draws recorded afterwards start a new one.
func (c *Composer) Flush() { c.flushBatch() }

// track registers a sub-composer with its parent, which takes back its
// pages if it is never rendered.
func (c *Composer) track() {
	if c.parent == nil || c.tracked {
		return
	}
	c.tracked = true
	c.parent.subs = append(c.parent.subs, c)
	c.parent.track()
}

// dropSubs discards whatever the tracked sub-composers recorded but did not
// hand over with RenderSubComposer.
func (c *Composer) dropSubs() {
	for _, sub := range c.subs {
		sub.discard()
		sub.tracked = false
		sub.stats = Stats{}
		sub.err = nil
	}
	clear(c.subs)
	c.subs = c.subs[:0]
}

// discard drops everything recorded and gives the pages back.
func (c *Composer) discard() {
	c.dropSubs()
	if c.batch != nil {
		_ = c.pool.Release(c.batch.page)
		c.batch = nil
	}
	releasePages(c.pool, c.commands)
	c.commands = c.commands[:0]
}

// Reset waits for the device and returns the composer to Idle with every
// page free. It must not be called on a sub-composer.
func (c *Composer) Reset() {
	c.dev.Finish()
	c.dropSubs()
	c.batch = nil
	c.commands = c.commands[:0]
	c.pool.Reset()
	c.model.Reset()
	c.targets.Reset(c.dev.Screen())
	c.state = RenderState{}
	c.stats = Stats{}
	c.phase = PhaseIdle
	c.err = nil
}

// Close releases every device resource the composer owns.
func (c *Composer) Close() {
	if c.parent != nil {
		return
	}
	c.dev.Finish()
	c.pool.Close()
	if c.intermediary != nil {
		c.dev.DestroyFramebuffer(c.intermediary)
		c.intermediary = nil
	}
}
