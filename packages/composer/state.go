package composer

import (
	"fmt"
	"image"
	"strings"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// ProjectionBehavior selects the projection matrix uploaded with a state.
type ProjectionBehavior uint8

const (
	// AutoCamera uses the camera projection while drawing to the frame's
	// primary target and the default 2D projection everywhere else.
	AutoCamera ProjectionBehavior = iota
	AlwaysDefault2D
	AlwaysCameraProjection
)

var projectionNames = [...]string{
	AutoCamera:             "AutoCamera",
	AlwaysDefault2D:        "AlwaysDefault2D",
	AlwaysCameraProjection: "AlwaysCameraProjection",
}

func (p ProjectionBehavior) String() string {
	if int(p) < len(projectionNames) {
		return projectionNames[p]
	}
	return "Unknown"
}

// BlendFactors are separate RGB and alpha blend factors.
type BlendFactors struct {
	SrcRGB, DstRGB     gfx.BlendFunc
	SrcAlpha, DstAlpha gfx.BlendFunc
}

// CullMode enables back face culling. FrontCCW selects counter-clockwise
// front faces; the composer itself emits clockwise geometry.
type CullMode struct {
	Enabled  bool
	FrontCCW bool
}

// RenderState is a snapshot of device wide settings. Absent fields are left
// as they are when the state is applied or merged.
type RenderState struct {
	AlphaBlend    Option[bool]
	BlendFactors  Option[BlendFactors]
	BlendEquation Option[gfx.BlendEquation]
	DepthTest     Option[bool]
	DepthWrite    Option[bool]
	Stencil       Option[StencilState]
	FaceCulling   Option[CullMode]
	// ClipRect is in target pixels with a top-left origin. An empty
	// rectangle disables clipping.
	ClipRect      Option[image.Rectangle]
	UseViewMatrix Option[bool]
	Projection    Option[ProjectionBehavior]
	Shader        Option[gfx.ShaderProgram]
	// ShaderName names a program resolved through gfx.Resources when the
	// frame is processed. It is cleared once resolved.
	ShaderName Option[string]
}

// DefaultState is the baseline every frame starts from: depth test on,
// stencil off, alpha blending, view matrix on, AutoCamera and the default
// shader of res.
func DefaultState(res gfx.Resources) RenderState {
	s := RenderState{
		AlphaBlend:    Some(true),
		BlendFactors:  Some(BlendFactors{gfx.BlendSrcAlpha, gfx.BlendOneMinusSrcAlpha, gfx.BlendOne, gfx.BlendOneMinusSrcAlpha}),
		BlendEquation: Some(gfx.BlendAdd),
		DepthTest:     Some(true),
		DepthWrite:    Some(true),
		Stencil:       Some(StencilState{Preset: StencilDisabled}),
		FaceCulling:   Some(CullMode{}),
		ClipRect:      Some(image.Rectangle{}),
		UseViewMatrix: Some(true),
		Projection:    Some(AutoCamera),
	}
	if res != nil {
		s.Shader = Some(res.DefaultShader())
	}
	return s
}

// blitState copies a full screen texture without blending or depth.
func blitState(res gfx.Resources) RenderState {
	s := DefaultState(res)
	s.AlphaBlend = Some(false)
	s.DepthTest = Some(false)
	s.UseViewMatrix = Some(false)
	s.Projection = Some(AlwaysDefault2D)
	if res != nil {
		s.Shader = Some(res.BlitShader())
	}
	return s
}

// Merge returns s with every field present in o replacing its own. Setting
// either Shader or ShaderName clears the other.
func (s RenderState) Merge(o RenderState) RenderState {
	s.AlphaBlend = o.AlphaBlend.overlay(s.AlphaBlend)
	s.BlendFactors = o.BlendFactors.overlay(s.BlendFactors)
	s.BlendEquation = o.BlendEquation.overlay(s.BlendEquation)
	s.DepthTest = o.DepthTest.overlay(s.DepthTest)
	s.DepthWrite = o.DepthWrite.overlay(s.DepthWrite)
	s.Stencil = o.Stencil.overlay(s.Stencil)
	s.FaceCulling = o.FaceCulling.overlay(s.FaceCulling)
	s.ClipRect = o.ClipRect.overlay(s.ClipRect)
	s.UseViewMatrix = o.UseViewMatrix.overlay(s.UseViewMatrix)
	s.Projection = o.Projection.overlay(s.Projection)
	switch {
	case o.Shader.IsSet():
		s.Shader, s.ShaderName = o.Shader, None[string]()
	case o.ShaderName.IsSet():
		s.Shader, s.ShaderName = None[gfx.ShaderProgram](), o.ShaderName
	}
	return s
}

func (s RenderState) String() string {
	var sb strings.Builder
	sb.WriteString("RenderState{")
	field := func(name string, v any, ok bool) {
		if ok {
			fmt.Fprintf(&sb, " %s=%v", name, v)
		}
	}
	field("blend", s.AlphaBlend.v, s.AlphaBlend.ok)
	field("factors", s.BlendFactors.v, s.BlendFactors.ok)
	field("equation", s.BlendEquation.v, s.BlendEquation.ok)
	field("depth", s.DepthTest.v, s.DepthTest.ok)
	field("depthWrite", s.DepthWrite.v, s.DepthWrite.ok)
	field("stencil", s.Stencil.v, s.Stencil.ok)
	field("cull", s.FaceCulling.v, s.FaceCulling.ok)
	field("clip", s.ClipRect.v, s.ClipRect.ok)
	field("view", s.UseViewMatrix.v, s.UseViewMatrix.ok)
	field("projection", s.Projection.v, s.Projection.ok)
	if p, ok := s.Shader.Get(); ok && p != nil {
		field("shader", p.Name(), true)
	}
	field("shaderName", s.ShaderName.v, s.ShaderName.ok)
	sb.WriteString(" }")
	return sb.String()
}
