package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/glfw/v3.3/glfw"
	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/pflag"

	"github.com/leonkasovan/go-composer/packages/composer"
	"github.com/leonkasovan/go-composer/packages/config"
	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/gfx/opengl"
)

var log = slog.Default()

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

func initGLFW(v config.Video) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.StencilBits, 8)
	glfw.WindowHint(glfw.DepthBits, 24)

	window, err := glfw.CreateWindow(v.Width, v.Height, v.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if v.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	return window, nil
}

// checker returns a two-color checkerboard with cells of cell pixels.
func checker(size, cell int, a, b color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

type demo struct {
	dev       *opengl.Device
	c         *composer.Composer
	camera    *composer.Camera2D
	font      *composer.AtlasFont
	tiles     *opengl.Texture
	offscreen gfx.Framebuffer

	start  time.Time
	last   time.Time
	frames int
	fps    float64
	stats  composer.Stats
}

func newDemo(dev *opengl.Device, c *composer.Composer) (*demo, error) {
	offscreen, err := dev.CreateFramebuffer(gfx.FramebufferDesc{Size: image.Pt(160, 160), Filter: true})
	if err != nil {
		return nil, err
	}
	d := &demo{
		dev:       dev,
		c:         c,
		camera:    composer.NewCamera2D(),
		font:      defaultFont(dev),
		tiles:     dev.NewTextureFromImage(checker(64, 8, color.White, color.NRGBA{90, 90, 110, 255}), false),
		offscreen: offscreen,
		start:     time.Now(),
		last:      time.Now(),
	}
	c.SetCamera(d.camera)
	return d, nil
}

func (d *demo) release() {
	d.dev.DestroyFramebuffer(d.offscreen)
	d.tiles.Delete()
}

// tick updates the frame rate once per second.
func (d *demo) tick(now time.Time) {
	d.frames++
	if dt := now.Sub(d.last); dt >= time.Second {
		d.fps = float64(d.frames) / dt.Seconds()
		d.frames = 0
		d.last = now
	}
}

func (d *demo) record(t float32) {
	size := d.dev.Screen().Size()
	w, h := float32(size.X), float32(size.Y)
	d.camera.Center = mgl.Vec3{w / 2, h / 2, 0}
	d.camera.Zoom = 1 + 0.05*math32.Sin(t)

	d.recordSprites(t, w, h)
	d.recordShapes(t)
	d.recordOffscreen(t, w)
	d.recordStencil(t, h)
	d.recordOverlay(t, w, h)
	d.recordHUD()
}

// recordSprites draws a ring of tiles turning around the screen center.
func (d *demo) recordSprites(t, w, h float32) {
	c := d.c
	c.PushModelMatrix(mgl.Translate3D(w/2, h/2, 0).Mul4(mgl.HomogRotate3DZ(t*0.5)), true)
	const n = 12
	for i := 0; i < n; i++ {
		a := 2 * math32.Pi * float32(i) / n
		col := gfx.RGBA(255, uint8(128+i*10), uint8(255-i*15), 255)
		c.RenderSprite(composer.SpriteParams{
			Position: mgl.Vec3{150*math32.Cos(a) - 16, 150*math32.Sin(a) - 16, 0},
			Size:     mgl.Vec2{32, 32},
			Color:    col,
			Texture:  d.tiles,
			FlipX:    i%2 == 1,
		})
	}
	c.PopModelMatrix()
}

func (d *demo) recordShapes(t float32) {
	c := d.c
	c.RenderRect(mgl.Vec3{20, 20, 0}, mgl.Vec2{120, 60}, gfx.RGBA(40, 120, 200, 255))
	c.RenderOutline(mgl.Vec3{20, 20, 0}, mgl.Vec2{120, 60}, gfx.White, 2)
	c.RenderCircle(mgl.Vec3{220, 60, 0}, 30+5*math32.Sin(t*2), gfx.RGBA(230, 80, 60, 255))
	c.RenderCircleOutline(mgl.Vec3{220, 60, 0}, 40, gfx.White, 3)
	c.RenderLine(mgl.Vec3{280, 30, 0}, mgl.Vec3{380, 90, 0}, gfx.Green, 4)
	c.RenderArrow(mgl.Vec3{400, 90, 0}, mgl.Vec3{400 + 60*math32.Cos(t), 60 + 30*math32.Sin(t), 0}, gfx.Red, 3)
	c.RenderTriangles([]mgl.Vec3{{460, 90, 0}, {500, 20, 0}, {540, 90, 0}},
		[]gfx.Color{gfx.Red, gfx.Green, gfx.Blue})
	c.RenderVertices([]mgl.Vec3{{580, 55, 0}, {580, 20, 0}, {610, 30, 0}, {620, 60, 0}, {600, 90, 0}, {565, 80, 0}},
		[]gfx.Color{gfx.White, gfx.Blue, gfx.Green})
}

// recordOffscreen renders a small scene into the offscreen target and
// draws its color texture back into the frame.
func (d *demo) recordOffscreen(t, w float32) {
	c := d.c
	c.RenderToAndClear(d.offscreen)
	fs := d.offscreen.Size()
	c.RenderCircle(mgl.Vec3{float32(fs.X) / 2, float32(fs.Y) / 2, 0}, 60, gfx.RGBA(250, 200, 40, 255))
	c.RenderSprite(composer.SpriteParams{
		Position: mgl.Vec3{40 + 20*math32.Sin(t*3), 40, 0},
		Size:     mgl.Vec2{80, 80},
		Color:    gfx.White.WithAlpha(200),
		Texture:  d.tiles,
	})
	c.RenderTo(nil)

	c.RenderSprite(composer.SpriteParams{
		Position: mgl.Vec3{w - float32(fs.X) - 20, 20, 0},
		Size:     mgl.Vec2{float32(fs.X), float32(fs.Y)},
		Color:    gfx.White,
		Texture:  d.offscreen.ColorTexture(),
		FlipY:    true,
	})
}

// recordStencil fills stripes only inside a pulsing circle mask.
func (d *demo) recordStencil(t, h float32) {
	c := d.c
	center := mgl.Vec3{100, h - 100, 0}
	c.StencilStartDraw(1)
	c.RenderCircle(center, 60+10*math32.Sin(t*1.5), gfx.RGBA(30, 30, 30, 255))
	c.StencilFillIn(1)
	for i := 0; i < 8; i++ {
		col := gfx.RGBA(uint8(40+i*25), 200, uint8(240-i*25), 255)
		c.RenderRect(mgl.Vec3{20, h - 180 + float32(i)*20, 0}, mgl.Vec2{160, 10}, col)
	}
	c.StencilDisable()
}

// recordOverlay draws additive sparks through a sub-composer.
func (d *demo) recordOverlay(t, w, h float32) {
	sub := d.c.NewSubComposer()
	sub.SetBlendMode(composer.BlendAdditive)
	for i := 0; i < 5; i++ {
		a := t + float32(i)
		sub.RenderCircle(mgl.Vec3{w/2 + 60*math32.Cos(a), h/2 + 60*math32.Sin(a*1.3), 0}, 25,
			gfx.RGBA(80, 40, 160, 160))
	}
	d.c.RenderSubComposer(sub)
}

// recordHUD draws the frame statistics in screen pixels.
func (d *demo) recordHUD() {
	c := d.c
	c.SetUseViewMatrix(false)
	c.SetProjectionBehavior(composer.AlwaysDefault2D)
	text := fmt.Sprintf("FPS: %.1f | Draw calls: %d | Batches: %d | State changes: %d\nVertices: %d | Pages: %d (%d free)",
		d.fps, d.stats.DrawCalls, d.stats.Batches, d.stats.StateChanges,
		d.stats.Vertices, d.stats.Pool.Pages, d.stats.Pool.Free)
	size := d.dev.Screen().Size()
	y := float32(size.Y) - 2*d.font.LineHeight() - 8
	c.RenderRect(mgl.Vec3{4, y - 4, 0}, mgl.Vec2{composer.TextWidth(d.font, text) + 8, 2*d.font.LineHeight() + 8},
		gfx.Black.WithAlpha(160))
	c.RenderString(mgl.Vec3{8, y, 0}, gfx.White, text, d.font)
	c.SetDefaultState()
}

func (d *demo) frame() {
	now := time.Now()
	d.tick(now)
	c := d.c
	c.StartFrame()
	d.record(float32(now.Sub(d.start).Seconds()))
	if err := c.EndFrame(); err != nil {
		log.Warn("frame recorded with errors", "err", err)
	}
	c.Process()
	if err := c.Execute(); err != nil {
		log.Error("frame aborted", "err", err)
	}
	d.stats = c.Stats()
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}

func run(cfg config.Config, maxFrames int) error {
	window, err := initGLFW(cfg.Video)
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	fbw, fbh := window.GetFramebufferSize()
	dev, err := opengl.New(fbw, fbh)
	if err != nil {
		return err
	}
	defer dev.Release()
	lib, err := opengl.NewLibrary(dev)
	if err != nil {
		return err
	}

	c := composer.New(dev, lib, cfg.Render)
	defer c.Close()
	d, err := newDemo(dev, c)
	if err != nil {
		return err
	}
	defer d.release()

	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		dev.SetScreenSize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	for n := 0; !window.ShouldClose(); n++ {
		if maxFrames > 0 && n >= maxFrames {
			break
		}
		glfw.PollEvents()
		d.frame()
		window.SwapBuffers()
	}
	log.Info("exit", "stats", d.stats.String())
	return nil
}

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "configuration file (.toml, .ini or .cfg)")
		writeConfig = pflag.String("write-config", "", "write the effective configuration as TOML and exit")
		debug       = pflag.Bool("debug", false, "log debug messages and panic on composer misuse")
		frames      = pflag.Int("frames", 0, "exit after this many frames (0 runs until the window closes)")
	)
	pflag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gfx.SetLogger(log)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Error("load config", "err", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Render.Debug = true
	}
	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			log.Error("write config", "err", err)
			os.Exit(1)
		}
		return
	}
	if err := run(cfg, *frames); err != nil {
		log.Error("run", "err", err)
		os.Exit(1)
	}
}
