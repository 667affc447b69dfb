package composer

import "github.com/leonkasovan/go-composer/packages/gfx"

// StencilPreset is a named stencil mode. Draws under StencilStartDraw write
// the mask; StencilFillIn and StencilCutOutFrom then draw inside or outside
// it. The winding pair builds an even-odd mask from overlapping geometry.
type StencilPreset uint8

const (
	StencilDisabled StencilPreset = iota
	StencilStartDraw
	StencilStopDraw
	StencilCutOutFrom
	StencilFillIn
	StencilWindingStart
	StencilWindingEnd
)

var stencilPresetNames = [...]string{
	StencilDisabled:     "Disabled",
	StencilStartDraw:    "StartDraw",
	StencilStopDraw:     "StopDraw",
	StencilCutOutFrom:   "CutOutFrom",
	StencilFillIn:       "FillIn",
	StencilWindingStart: "WindingStart",
	StencilWindingEnd:   "WindingEnd",
}

func (p StencilPreset) String() string {
	if int(p) < len(stencilPresetNames) {
		return stencilPresetNames[p]
	}
	return "Unknown"
}

// StencilState is a preset together with its reference value.
type StencilState struct {
	Preset StencilPreset
	Ref    uint8
}

// Enabled reports whether the preset needs the stencil test.
func (s StencilState) Enabled() bool { return s.Preset != StencilDisabled }

// startsMask reports whether applying the preset clears the stencil buffer.
func (s StencilState) startsMask() bool {
	return s.Preset == StencilStartDraw || s.Preset == StencilWindingStart
}

// Config returns the device stencil configuration of the preset.
func (s StencilState) Config() gfx.StencilConfig {
	c := gfx.StencilConfig{
		Func:      gfx.CompareAlways,
		Ref:       s.Ref,
		ReadMask:  0xFF,
		Fail:      gfx.StencilKeep,
		DepthFail: gfx.StencilKeep,
		Pass:      gfx.StencilKeep,
	}
	switch s.Preset {
	case StencilStartDraw:
		c.WriteMask = 0xFF
		c.Pass = gfx.StencilReplace
	case StencilCutOutFrom:
		c.Func = gfx.CompareNotEqual
	case StencilFillIn:
		c.Func = gfx.CompareEqual
	case StencilWindingStart:
		c.Ref, c.WriteMask = 1, 0x01
		c.Pass = gfx.StencilInvert
	case StencilWindingEnd:
		c.Func = gfx.CompareEqual
		c.Ref, c.ReadMask = 1, 0x01
	}
	return c
}
