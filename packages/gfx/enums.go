package gfx

type BlendFunc int

const (
	BlendOne = BlendFunc(iota)
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstAlpha
	BlendOneMinusDstAlpha
)

type BlendEquation int

const (
	BlendAdd = BlendEquation(iota)
	BlendSubtract
	BlendReverseSubtract
)

// PrimitiveMode is the topology passed to a draw call.
type PrimitiveMode byte

const (
	Points PrimitiveMode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

var primitiveModeNames = [...]string{
	Points:        "Points",
	Lines:         "Lines",
	LineLoop:      "LineLoop",
	LineStrip:     "LineStrip",
	Triangles:     "Triangles",
	TriangleStrip: "TriangleStrip",
	TriangleFan:   "TriangleFan",
}

func (m PrimitiveMode) String() string {
	if int(m) < len(primitiveModeNames) {
		return primitiveModeNames[m]
	}
	return "Unknown"
}

// CompareFunc is used by the depth and stencil tests.
type CompareFunc int

const (
	CompareNever = CompareFunc(iota)
	CompareLess
	CompareEqual
	CompareLessOrEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterOrEqual
	CompareAlways
)

type StencilOp int

const (
	StencilKeep = StencilOp(iota)
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

// BufferKind selects the binding point of a device buffer.
type BufferKind int

const (
	VertexBuffer = BufferKind(iota)
	IndexBuffer
)

// ClearMask selects which attachments Clear touches.
type ClearMask uint8

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

type TextureSamplingParam int

const (
	TextureSamplingFilterNearest = TextureSamplingParam(iota)
	TextureSamplingFilterLinear
	TextureSamplingWrapClampToEdge
	TextureSamplingWrapMirroredRepeat
	TextureSamplingWrapRepeat
)
