package composer

import "github.com/leonkasovan/go-composer/packages/gfx"

// BlendPreset is a named blend configuration.
type BlendPreset uint8

const (
	BlendAlpha BlendPreset = iota
	BlendAdditive
	// BlendSubtractive subtracts the source from the destination.
	BlendSubtractive
	BlendMultiply
	// BlendPremultiplied expects colors already multiplied by alpha.
	BlendPremultiplied
	// BlendOpaque disables blending and leaves the factors untouched.
	BlendOpaque
)

var blendPresetNames = [...]string{
	BlendAlpha:         "Alpha",
	BlendAdditive:      "Additive",
	BlendSubtractive:   "Subtractive",
	BlendMultiply:      "Multiply",
	BlendPremultiplied: "Premultiplied",
	BlendOpaque:        "Opaque",
}

func (p BlendPreset) String() string {
	if int(p) < len(blendPresetNames) {
		return blendPresetNames[p]
	}
	return "Unknown"
}

// State returns the render state fields the preset sets.
func (p BlendPreset) State() RenderState {
	factors := func(src, dst gfx.BlendFunc, eq gfx.BlendEquation) RenderState {
		return RenderState{
			AlphaBlend:    Some(true),
			BlendFactors:  Some(BlendFactors{src, dst, gfx.BlendOne, gfx.BlendOneMinusSrcAlpha}),
			BlendEquation: Some(eq),
		}
	}
	switch p {
	case BlendAdditive:
		return factors(gfx.BlendSrcAlpha, gfx.BlendOne, gfx.BlendAdd)
	case BlendSubtractive:
		return factors(gfx.BlendSrcAlpha, gfx.BlendOne, gfx.BlendReverseSubtract)
	case BlendMultiply:
		return factors(gfx.BlendDstColor, gfx.BlendOneMinusSrcAlpha, gfx.BlendAdd)
	case BlendPremultiplied:
		return factors(gfx.BlendOne, gfx.BlendOneMinusSrcAlpha, gfx.BlendAdd)
	case BlendOpaque:
		return RenderState{AlphaBlend: Some(false)}
	default:
		return factors(gfx.BlendSrcAlpha, gfx.BlendOneMinusSrcAlpha, gfx.BlendAdd)
	}
}
