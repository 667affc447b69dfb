package composer

import (
	"image"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/gfx/gfxtest"
	"github.com/leonkasovan/go-composer/packages/stream"
)

type fixture struct {
	dev *gfxtest.Device
	lib *gfx.Library
	c   *Composer
}

func newFixture(opts gfxtest.Options, cfg Config) *fixture {
	dev := gfxtest.NewDevice(opts)
	lib := gfxtest.NewLibrary()
	return &fixture{dev: dev, lib: lib, c: New(dev, lib, cfg)}
}

// frame records one frame and executes it, requiring no errors.
func (f *fixture) frame(t *testing.T, record func(c *Composer)) {
	t.Helper()
	f.c.StartFrame()
	record(f.c)
	require.NoError(t, f.c.EndFrame())
	f.c.Process()
	require.NoError(t, f.c.Execute())
}

// uploaded returns the vertices of the n-th vertex upload.
func (f *fixture) uploaded(t *testing.T, n int) []gfx.Vertex {
	t.Helper()
	ups := f.dev.Find("UploadVertices")
	require.Greater(t, len(ups), n)
	return f.dev.Buffer(ups[n].Args[0].(int)).Vertices
}

func sprite(x, y, z float32, tex gfx.Texture) SpriteParams {
	return SpriteParams{Position: mgl.Vec3{x, y, z}, Size: mgl.Vec2{16, 16}, Color: gfx.White, Texture: tex}
}

func TestEmptyFrameDeviceCalls(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(*Composer) {})

	assert.Equal(t, []string{
		"BeginFrame",
		"UseProgram", "SetBlend", "SetBlendFunc", "SetBlendEquation",
		"SetDepthTest", "SetDepthMask", "SetStencilTest", "SetCullFace", "SetScissor",
		"SetUniformInts", "SetUniformMatrix", "SetUniformMatrix", "SetUniformMatrix",
		"BindFramebuffer", "Viewport", "SetUniformMatrix", "SetUniformMatrix",
		"Clear",
	}, f.dev.Ops())

	cl := f.dev.Find("Clear")[0]
	assert.Equal(t, []any{gfx.ClearAll, gfx.Black}, cl.Args)
	assert.Equal(t, PhaseExecuted, f.c.Phase())
}

func TestSameTextureSpritesMergeIntoOneBatch(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	tex := gfxtest.NewTexture("a", 64, 64)
	f.frame(t, func(c *Composer) {
		for i := 0; i < 10; i++ {
			c.RenderSprite(sprite(float32(i)*16, 0, 0, tex))
		}
	})

	draws := f.dev.Find("DrawIndexed")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gfx.Triangles, 0, 60}, draws[0].Args)
	assert.Equal(t, 1, f.c.Stats().Batches)
	assert.Equal(t, 40, f.c.Stats().Vertices)
	assert.Equal(t, 1, f.dev.Count("BindTexture"))
}

func TestStateChangeSplitsBatch(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	tex := gfxtest.NewTexture("a", 64, 64)
	f.frame(t, func(c *Composer) {
		for i := 0; i < 10; i++ {
			if i == 5 {
				c.SetDepthTest(false)
			}
			c.RenderSprite(sprite(float32(i)*16, 0, 0, tex))
		}
	})

	draws := f.dev.Find("DrawIndexed")
	require.Len(t, draws, 2)
	assert.Equal(t, []any{gfx.Triangles, 0, 30}, draws[0].Args)
	assert.Equal(t, []any{gfx.Triangles, 0, 30}, draws[1].Args)
	assert.Equal(t, 2, f.c.Stats().Batches)

	// The state change executes between the two draws.
	ops := f.dev.Ops()
	first, depth, second := -1, -1, -1
	for i, op := range ops {
		switch {
		case op == "DrawIndexed" && first < 0:
			first = i
		case op == "DrawIndexed":
			second = i
		case op == "SetDepthTest" && first >= 0:
			depth = i
		}
	}
	assert.True(t, first < depth && depth < second, ops)
}

func TestDistinctTexturesShareBatchUpToUnitLimit(t *testing.T) {
	f := newFixture(gfxtest.Options{MaxTextureUnits: 4}, DefaultConfig())
	a, b := gfxtest.NewTexture("a", 8, 8), gfxtest.NewTexture("b", 8, 8)
	f.frame(t, func(c *Composer) {
		c.RenderSprite(sprite(0, 0, 0, a))
		c.RenderSprite(sprite(0, 0, 0, b))
		c.RenderSprite(sprite(0, 0, 0, a))
	})

	assert.Equal(t, 1, f.dev.Count("DrawIndexed"))
	vs := f.uploaded(t, 0)
	require.Len(t, vs, 12)
	assert.Equal(t, int32(0), vs[0].Tid)
	assert.Equal(t, int32(1), vs[4].Tid)
	assert.Equal(t, int32(0), vs[8].Tid)
	binds := f.dev.Find("BindTexture")
	require.Len(t, binds, 2)
	assert.Equal(t, []any{0, gfx.Texture(a)}, binds[0].Args)
	assert.Equal(t, []any{1, gfx.Texture(b)}, binds[1].Args)
}

func TestTextureSlotOverflow(t *testing.T) {
	textures := []*gfxtest.Texture{
		gfxtest.NewTexture("a", 8, 8),
		gfxtest.NewTexture("b", 8, 8),
		gfxtest.NewTexture("c", 8, 8),
	}

	t.Run("without flush", func(t *testing.T) {
		f := newFixture(gfxtest.Options{MaxTextureUnits: 2}, DefaultConfig())
		f.c.StartFrame()
		for _, tex := range textures {
			f.c.RenderSprite(sprite(0, 0, 0, tex))
		}
		assert.ErrorIs(t, f.c.Err(), ErrTextureSlotOverflow)
		assert.ErrorIs(t, f.c.EndFrame(), ErrTextureSlotOverflow)
	})

	t.Run("with flush", func(t *testing.T) {
		f := newFixture(gfxtest.Options{MaxTextureUnits: 2}, DefaultConfig())
		f.frame(t, func(c *Composer) {
			c.RenderSprite(sprite(0, 0, 0, textures[0]))
			c.RenderSprite(sprite(0, 0, 0, textures[1]))
			c.Flush()
			c.RenderSprite(sprite(0, 0, 0, textures[2]))
		})
		assert.Equal(t, 2, f.dev.Count("DrawIndexed"))
	})

	t.Run("config caps units", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxTextureUnits = 2
		f := newFixture(gfxtest.Options{MaxTextureUnits: 16}, cfg)
		assert.Equal(t, 2, f.c.TextureUnits())
	})

	t.Run("debug panics", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Debug = true
		f := newFixture(gfxtest.Options{MaxTextureUnits: 2}, cfg)
		f.c.StartFrame()
		f.c.RenderSprite(sprite(0, 0, 0, textures[0]))
		f.c.RenderSprite(sprite(0, 0, 0, textures[1]))
		assert.Panics(t, func() { f.c.RenderSprite(sprite(0, 0, 0, textures[2])) })
	})
}

func TestFullPageStartsNewBatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageVertices = 8
	f := newFixture(gfxtest.Options{}, cfg)
	f.frame(t, func(c *Composer) {
		for i := 0; i < 3; i++ {
			c.RenderRect(mgl.Vec3{float32(i), 0, 0}, mgl.Vec2{1, 1}, gfx.Red)
		}
	})
	draws := f.dev.Find("DrawIndexed")
	require.Len(t, draws, 2)
	assert.Equal(t, 12, draws[0].Args[2])
	assert.Equal(t, 6, draws[1].Args[2])
}

func TestOversizedRequestIsTruncated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageVertices = 8
	f := newFixture(gfxtest.Options{}, cfg)
	points := make([]mgl.Vec3, 12)
	f.frame(t, func(c *Composer) {
		c.RenderTriangles(points, nil)
	})
	draws := f.dev.Find("DrawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{gfx.Triangles, 0, 6}, draws[0].Args)
}

func TestDrawsKeepRecordedOrder(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	a, b := gfxtest.NewTexture("a", 8, 8), gfxtest.NewTexture("b", 8, 8)
	f.frame(t, func(c *Composer) {
		for i := 0; i < 6; i++ {
			tex := a
			if i%2 == 1 {
				tex = b
			}
			c.RenderSprite(sprite(0, 0, float32(i), tex))
			if i == 2 {
				c.SetAlphaBlend(false)
			}
		}
	})

	var zs []float32
	for i := range f.dev.Find("UploadVertices") {
		for j, v := range f.uploaded(t, i) {
			if j%4 == 0 {
				zs = append(zs, v.Position.Z())
			}
		}
	}
	assert.Equal(t, []float32{0, 1, 2, 3, 4, 5}, zs)
}

func TestSameStateTwiceRecordsOnce(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.c.StartFrame()
	before := f.c.Stats().Commands
	f.c.SetDepthTest(false)
	f.c.SetDepthTest(false)
	f.c.SetBlendMode(BlendAlpha)
	assert.Equal(t, before+1, f.c.Stats().Commands)
	require.NoError(t, f.c.EndFrame())
	f.c.Process()
	require.NoError(t, f.c.Execute())

	calls := f.dev.Find("SetDepthTest")
	require.Len(t, calls, 2)
	assert.Equal(t, []any{false}, calls[1].Args)
}

func TestModelMatrixCommands(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	move := mgl.Translate3D(10, 20, 0)
	f.frame(t, func(c *Composer) {
		c.PushModelMatrix(move, true)
		assert.Equal(t, move, c.ModelMatrix())
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
		c.PopModelMatrix()
		assert.Equal(t, mgl.Ident4(), c.ModelMatrix())
	})

	var models []mgl.Mat4
	for _, call := range f.dev.Find("SetUniformMatrix") {
		if call.Args[0] == gfx.UniformModel {
			models = append(models, call.Args[1].(mgl.Mat4))
		}
	}
	assert.Equal(t, []mgl.Mat4{mgl.Ident4(), move, mgl.Ident4()}, models)
}

func TestPopBelowBottomIsNoop(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.c.StartFrame()
	n := f.c.Stats().Commands
	f.c.PopModelMatrix()
	assert.ErrorIs(t, f.c.Err(), ErrStackUnderflow)
	f.c.RenderTo(nil)
	assert.Equal(t, n, f.c.Stats().Commands)
	assert.Equal(t, f.dev.Screen(), f.c.CurrentTarget())
}

func TestRenderTargets(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	fb := gfxtest.NewFramebuffer("off", 128, 64)
	f.frame(t, func(c *Composer) {
		c.RenderToAndClear(fb)
		assert.Equal(t, gfx.Framebuffer(fb), c.CurrentTarget())
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
		c.RenderTo(nil)
		assert.Equal(t, f.dev.Screen(), c.CurrentTarget())
	})

	binds := f.dev.Find("BindFramebuffer")
	require.Len(t, binds, 3)
	assert.Equal(t, gfx.Framebuffer(fb), binds[1].Args[0])
	assert.Equal(t, f.dev.Screen(), binds[2].Args[0])

	clears := f.dev.Find("Clear")
	require.Len(t, clears, 2)
	assert.Equal(t, gfx.Transparent, clears[1].Args[1])

	// The projection follows the offscreen target size.
	var projections []mgl.Mat4
	for _, call := range f.dev.Find("SetUniformMatrix") {
		if call.Args[0] == gfx.UniformProjection {
			projections = append(projections, call.Args[1].(mgl.Mat4))
		}
	}
	assert.Contains(t, projections, mgl.Ortho(0, 128, 64, 0, DefaultNear, DefaultFar))
}

func TestRenderTargetPopDoesNotRebind(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	a := gfxtest.NewFramebuffer("a", 8, 8)
	b := gfxtest.NewFramebuffer("b", 8, 8)
	f.frame(t, func(c *Composer) {
		c.RenderTo(a)
		c.RenderTargetPop()
		c.RenderTo(b)
		c.RenderTo(nil)
	})
	binds := f.dev.Find("BindFramebuffer")
	require.Len(t, binds, 4)
	assert.Equal(t, gfx.Framebuffer(a), binds[1].Args[0])
	assert.Equal(t, gfx.Framebuffer(b), binds[2].Args[0])
	assert.Equal(t, f.dev.Screen(), binds[3].Args[0])
}

func TestUnbalancedTargetsAreReported(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.frame(t, func(c *Composer) {
		c.RenderTo(gfxtest.NewFramebuffer("leak", 8, 8))
	})
	f.c.StartFrame()
	assert.ErrorIs(t, f.c.Err(), ErrUnbalancedTargets)
	assert.Equal(t, f.dev.Screen(), f.c.CurrentTarget())
}

func TestIntermediaryBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntermediaryBuffer = true
	f := newFixture(gfxtest.Options{}, cfg)
	f.frame(t, func(c *Composer) {
		assert.False(t, c.CurrentTarget().IsScreen())
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{4, 4}, gfx.Red)
	})
	require.Equal(t, 1, f.dev.Count("CreateFramebuffer"))

	fb := f.c.intermediary
	binds := f.dev.Find("BindFramebuffer")
	require.Len(t, binds, 3)
	assert.Equal(t, fb, binds[1].Args[0])
	assert.Equal(t, f.dev.Screen(), binds[2].Args[0])

	programs := f.dev.Find("UseProgram")
	assert.Equal(t, f.lib.BlitShader(), programs[len(programs)-1].Args[0])

	binds = f.dev.Find("BindTexture")
	require.Len(t, binds, 1)
	assert.Equal(t, fb.ColorTexture(), binds[0].Args[1])

	blit := f.uploaded(t, 1)
	require.Len(t, blit, 4)
	assert.Equal(t, mgl.Vec2{0, 1}, blit[0].UV)
	assert.Equal(t, mgl.Vec3{800, 600, 0}, blit[2].Position)

	// A second frame reuses the buffer and follows a screen resize.
	f.dev.SetScreenSize(640, 480)
	f.frame(t, func(*Composer) {})
	assert.Equal(t, 1, f.dev.Count("CreateFramebuffer"))
	assert.Equal(t, 1, f.dev.Count("ResizeFramebuffer"))
}

func TestShaderByName(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	glow := gfxtest.NewShader("glow")
	f.lib.Register(glow)
	f.frame(t, func(c *Composer) {
		c.SetShaderByName("glow")
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
		c.SetShaderByName("missing")
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	})
	programs := f.dev.Find("UseProgram")
	require.Len(t, programs, 3)
	assert.Equal(t, gfx.ShaderProgram(glow), programs[1].Args[0])
	assert.Equal(t, f.lib.DefaultShader(), programs[2].Args[0])
}

func TestSetShaderNilUsesDefault(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.c.StartFrame()
	f.c.SetShader(nil)
	sh, ok := f.c.CurrentState().Shader.Get()
	assert.True(t, ok)
	assert.Equal(t, f.lib.DefaultShader(), sh)
}

func TestCallbackResynchronizes(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	var got gfx.Device
	f.frame(t, func(c *Composer) {
		c.ExecuteCallback(func(dev gfx.Device) {
			got = dev
			dev.SetDepthTest(false)
		})
		c.ExecuteCallback(nil)
	})
	assert.Same(t, f.dev, got)
	assert.Equal(t, 2, f.dev.Count("UseProgram"))
	calls := f.dev.Find("SetDepthTest")
	require.Len(t, calls, 3)
	assert.Equal(t, []any{true}, calls[2].Args)
}

func TestDeviceErrorAbortsFrame(t *testing.T) {
	f := newFixture(gfxtest.Options{FailOn: "DrawIndexed"}, DefaultConfig())
	f.c.StartFrame()
	f.c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	f.c.SetDepthTest(false)
	f.c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	require.NoError(t, f.c.EndFrame())
	f.c.Process()

	err := f.c.Execute()
	require.ErrorIs(t, err, gfxtest.ErrInjected)
	assert.Equal(t, 1, f.dev.Count("DrawIndexed"))
	assert.Equal(t, PhaseExecuted, f.c.Phase())

	pool := f.c.Stats().Pool
	assert.Equal(t, 2, pool.Pages)
	assert.Equal(t, 1, pool.Submitted)
	assert.Equal(t, 1, pool.Free)
}

func TestPhaseErrors(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())

	f.c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	assert.ErrorIs(t, f.c.Err(), ErrNotRecording)

	f.c.StartFrame()
	assert.NoError(t, f.c.Err())
	f.c.Process()
	assert.ErrorIs(t, f.c.Err(), ErrInvalidPhase)
	assert.ErrorIs(t, f.c.Execute(), ErrInvalidPhase)
}

func TestStartFrameDiscardsFrameInProgress(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	f.c.StartFrame()
	f.c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	f.c.SetDepthTest(false)
	assert.Equal(t, 1, f.c.Stats().Pool.Writing)

	f.c.StartFrame()
	assert.ErrorIs(t, f.c.Err(), ErrFrameInProgress)
	assert.Equal(t, stream.Stats{Pages: 1, Free: 1, Allocations: 1}, f.c.Stats().Pool)
	assert.Equal(t, PhaseRecording, f.c.Phase())
}

func TestPagesWaitOneFrame(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	draw := func(c *Composer) { c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red) }

	f.frame(t, draw)
	assert.Equal(t, 1, f.c.Stats().Pool.Submitted)
	f.frame(t, draw)
	assert.Equal(t, 2, f.c.Stats().Pool.Pages)
	f.frame(t, draw)
	assert.Equal(t, 2, f.c.Stats().Pool.Pages)
	assert.Equal(t, uint64(2), f.c.Stats().Pool.Allocations)
}

func TestResetIsIdempotent(t *testing.T) {
	fresh := newFixture(gfxtest.Options{}, DefaultConfig())
	fresh.c.Reset()

	used := newFixture(gfxtest.Options{}, DefaultConfig())
	for i := 0; i < 2; i++ {
		used.frame(t, func(c *Composer) {
			c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
		})
	}
	used.c.Reset()

	for _, f := range []*fixture{fresh, used} {
		s := f.c.Stats()
		assert.Equal(t, s.Pool.Pages, s.Pool.Free)
		assert.Zero(t, s.Pool.Writing)
		assert.Zero(t, s.Pool.Submitted)
		assert.Equal(t, PhaseIdle, f.c.Phase())
		assert.NoError(t, f.c.Err())
		assert.Equal(t, RenderState{}, f.c.CurrentState())
		assert.Equal(t, 1, f.dev.Count("Finish"))
	}

	// Reset twice changes nothing further.
	before := used.c.Stats()
	used.c.Reset()
	assert.Equal(t, before, used.c.Stats())
}

func TestCloseDestroysResources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntermediaryBuffer = true
	f := newFixture(gfxtest.Options{}, cfg)
	f.frame(t, func(c *Composer) {
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{1, 1}, gfx.Red)
	})
	f.c.Close()
	assert.Equal(t, 4, f.dev.Count("DestroyBuffer"))
	assert.Equal(t, 1, f.dev.Count("DestroyFramebuffer"))
}

func TestClipRectFollowsTarget(t *testing.T) {
	f := newFixture(gfxtest.Options{}, DefaultConfig())
	fb := gfxtest.NewFramebuffer("off", 64, 32)
	clip := image.Rect(0, 0, 16, 16)
	f.frame(t, func(c *Composer) {
		c.SetClipRect(clip)
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{4, 4}, gfx.Red)
		c.RenderTo(fb)
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{4, 4}, gfx.Red)
		c.RenderTo(nil)
	})

	var ops []string
	var last gfx.Framebuffer
	for _, call := range f.dev.Calls() {
		switch call.Op {
		case "BindFramebuffer":
			last = call.Args[0].(gfx.Framebuffer)
			ops = append(ops, call.Op)
		case "SetScissor":
			ops = append(ops, call.Op)
			if last == gfx.Framebuffer(fb) {
				assert.Equal(t, clip, call.Args[0])
			}
		}
	}
	assert.Equal(t, []string{
		"SetScissor", "BindFramebuffer",
		"SetScissor",
		"BindFramebuffer", "SetScissor",
		"BindFramebuffer", "SetScissor",
	}, ops)
}

func TestPoppedIntermediaryIsReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntermediaryBuffer = true
	f := newFixture(gfxtest.Options{}, cfg)
	f.c.StartFrame()
	f.c.RenderTo(nil)
	f.c.RenderRect(mgl.Vec3{}, mgl.Vec2{4, 4}, gfx.Red)
	assert.ErrorIs(t, f.c.EndFrame(), ErrUnbalancedTargets)
	f.c.Process()
	require.NoError(t, f.c.Execute())

	// The intermediary is still shown.
	programs := f.dev.Find("UseProgram")
	assert.Equal(t, f.lib.BlitShader(), programs[len(programs)-1].Args[0])
	binds := f.dev.Find("BindFramebuffer")
	assert.Equal(t, f.dev.Screen(), binds[len(binds)-1].Args[0])
}

func TestBlitIgnoresPushedModelMatrix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IntermediaryBuffer = true
	f := newFixture(gfxtest.Options{}, cfg)
	move := mgl.Translate3D(5, 0, 0)
	f.frame(t, func(c *Composer) {
		c.PushModelMatrix(move, true)
		c.RenderRect(mgl.Vec3{}, mgl.Vec2{4, 4}, gfx.Red)
	})
	assert.Equal(t, []mgl.Mat4{mgl.Ident4(), move, mgl.Ident4(), mgl.Ident4(), move}, f.modelUploads())
}
