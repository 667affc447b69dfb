package composer

import (
	"image"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Synchronizer turns render state changes into device calls. It issues one
// call per changed field and re-uploads the matrices the change affects.
type Synchronizer struct {
	dev       gfx.Device
	units     int
	near, far float32

	camera  Camera
	target  gfx.Framebuffer
	primary bool
	model   mgl.Mat4
}

// NewSynchronizer creates a synchronizer drawing to the screen with an
// identity model matrix. units is the sampler array length uploaded with
// every shader.
func NewSynchronizer(dev gfx.Device, units int, near, far float32) *Synchronizer {
	return &Synchronizer{
		dev:     dev,
		units:   units,
		near:    near,
		far:     far,
		target:  dev.Screen(),
		primary: true,
		model:   mgl.Ident4(),
	}
}

func (s *Synchronizer) SetCamera(c Camera) { s.camera = c }

// SetTarget records the bound target. primary marks the target the frame's
// camera draws to.
func (s *Synchronizer) SetTarget(fb gfx.Framebuffer, primary bool) {
	s.target, s.primary = fb, primary
}

func (s *Synchronizer) Target() gfx.Framebuffer { return s.target }
func (s *Synchronizer) SetModel(m mgl.Mat4)     { s.model = m }
func (s *Synchronizer) Model() mgl.Mat4         { return s.model }

func (s *Synchronizer) useCamera(st RenderState) bool {
	if s.camera == nil {
		return false
	}
	switch st.Projection.Or(AutoCamera) {
	case AlwaysCameraProjection:
		return true
	case AutoCamera:
		return s.primary
	}
	return false
}

// Projection returns the projection matrix st selects for the current
// target.
func (s *Synchronizer) Projection(st RenderState) mgl.Mat4 {
	size := image.Point{1, 1}
	if s.target != nil {
		size = s.target.Size()
	}
	w, h := float32(size.X), float32(size.Y)
	if s.useCamera(st) {
		return s.camera.ProjectionMatrix(w, h, s.near, s.far)
	}
	return mgl.Ortho(0, w, h, 0, s.near, s.far)
}

// View returns the camera view matrix, or the identity when st turns the
// view matrix off.
func (s *Synchronizer) View(st RenderState) mgl.Mat4 {
	if s.camera == nil || !st.UseViewMatrix.Or(true) {
		return mgl.Ident4()
	}
	return s.camera.ViewMatrix()
}

// UploadViewProjection uploads projection and view for st.
func (s *Synchronizer) UploadViewProjection(st RenderState) {
	s.dev.SetUniformMatrix(gfx.UniformProjection, s.Projection(st))
	s.dev.SetUniformMatrix(gfx.UniformView, s.View(st))
}

func (s *Synchronizer) UploadModel() {
	s.dev.SetUniformMatrix(gfx.UniformModel, s.model)
}

func (s *Synchronizer) uploadSamplers() {
	slots := make([]int32, s.units)
	for i := range slots {
		slots[i] = int32(i)
	}
	s.dev.SetUniformInts(gfx.UniformTextures, slots)
}

// Apply issues the device calls that turn applied into requested and
// returns the resulting applied state. Absent fields of requested are
// skipped; force reissues every present field.
func (s *Synchronizer) Apply(requested, applied RenderState, force bool) RenderState {
	return s.apply(requested, applied, force, false)
}

// Restore returns the device to a state it was in earlier in the frame.
// Unlike Apply it never starts a new stencil mask, so a mask being drawn
// survives a sub-composer.
func (s *Synchronizer) Restore(requested, applied RenderState) RenderState {
	return s.apply(requested, applied, false, true)
}

func (s *Synchronizer) apply(requested, applied RenderState, force, restoring bool) RenderState {
	changed := func(eq bool, set bool) bool { return set && (force || !eq) }
	dev := s.dev

	shaderChanged := false
	if p, ok := requested.Shader.Get(); changed(requested.Shader == applied.Shader, ok) && p != nil {
		dev.UseProgram(p)
		shaderChanged = true
	}
	if v, ok := requested.AlphaBlend.Get(); changed(requested.AlphaBlend == applied.AlphaBlend, ok) {
		dev.SetBlend(v)
	}
	if v, ok := requested.BlendFactors.Get(); changed(requested.BlendFactors == applied.BlendFactors, ok) {
		dev.SetBlendFunc(v.SrcRGB, v.DstRGB, v.SrcAlpha, v.DstAlpha)
	}
	if v, ok := requested.BlendEquation.Get(); changed(requested.BlendEquation == applied.BlendEquation, ok) {
		dev.SetBlendEquation(v)
	}
	if v, ok := requested.DepthTest.Get(); changed(requested.DepthTest == applied.DepthTest, ok) {
		dev.SetDepthTest(v)
	}
	if v, ok := requested.DepthWrite.Get(); changed(requested.DepthWrite == applied.DepthWrite, ok) {
		dev.SetDepthMask(v)
	}
	if v, ok := requested.Stencil.Get(); changed(requested.Stencil == applied.Stencil, ok) {
		prev, _ := applied.Stencil.Get()
		switch {
		case !v.Enabled():
			dev.SetStencilTest(false)
		default:
			if force || !prev.Enabled() {
				dev.SetStencilTest(true)
			}
			dev.SetStencil(v.Config())
			if v.startsMask() && requested.Stencil != applied.Stencil && !restoring {
				dev.Clear(gfx.ClearStencil, gfx.Transparent)
			}
		}
	}
	if v, ok := requested.FaceCulling.Get(); changed(requested.FaceCulling == applied.FaceCulling, ok) {
		dev.SetCullFace(v.Enabled, v.FrontCCW)
	}
	if v, ok := requested.ClipRect.Get(); changed(requested.ClipRect == applied.ClipRect, ok) {
		dev.SetScissor(v)
	}
	matrices := changed(requested.UseViewMatrix == applied.UseViewMatrix, requested.UseViewMatrix.IsSet()) ||
		changed(requested.Projection == applied.Projection, requested.Projection.IsSet())

	out := applied.Merge(requested)
	out.ShaderName = None[string]()
	if !out.Shader.IsSet() {
		return out
	}
	switch {
	case shaderChanged:
		s.uploadSamplers()
		s.UploadViewProjection(out)
		s.UploadModel()
	case matrices:
		s.UploadViewProjection(out)
	}
	return out
}
