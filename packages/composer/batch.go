package composer

import (
	"github.com/leonkasovan/go-composer/packages/gfx"
	"github.com/leonkasovan/go-composer/packages/stream"
)

// Topology is the primitive kind a batch holds.
type Topology uint8

const (
	// Quads are four vertices each, drawn through the page's index buffer.
	Quads Topology = iota
	SequentialTriangles
	// TriangleFan batches hold exactly one fan.
	TriangleFan
)

var topologyNames = [...]string{
	Quads:               "Quads",
	SequentialTriangles: "SequentialTriangles",
	TriangleFan:         "TriangleFan",
}

func (t Topology) String() string {
	if int(t) < len(topologyNames) {
		return topologyNames[t]
	}
	return "Unknown"
}

// Batch is an open run of same-topology primitives written into one stream
// page, together with the textures they sample.
type Batch struct {
	topology    Topology
	page        *stream.Page
	textures    []gfx.Texture
	maxTextures int
	full        bool
}

func newBatch(topology Topology, page *stream.Page, maxTextures int) *Batch {
	return &Batch{topology: topology, page: page, maxTextures: maxTextures}
}

func (b *Batch) Topology() Topology      { return b.topology }
func (b *Batch) Textures() []gfx.Texture { return b.textures }

// Len is the number of vertices written.
func (b *Batch) Len() int   { return b.page.Len() }
func (b *Batch) Full() bool { return b.full }

func (b *Batch) slot(t gfx.Texture) int {
	for i, bt := range b.textures {
		if bt == t {
			return i
		}
	}
	return -1
}

// AddTexture returns the slot of t, adding it when absent. A nil texture
// maps to gfx.NoTexture.
func (b *Batch) AddTexture(t gfx.Texture) (int32, error) {
	if t == nil {
		return gfx.NoTexture, nil
	}
	if i := b.slot(t); i >= 0 {
		return int32(i), nil
	}
	if len(b.textures) >= b.maxTextures {
		return gfx.NoTexture, ErrTextureSlotOverflow
	}
	b.textures = append(b.textures, t)
	return int32(len(b.textures) - 1), nil
}

func (b *Batch) hasRoom(n int) bool {
	if b.topology == TriangleFan {
		return b.page.Len() == 0
	}
	return b.page.Remaining() >= n
}

// canFit reports whether n more vertices sampling t can join the batch.
func (b *Batch) canFit(topology Topology, t gfx.Texture, n int) bool {
	if b.full || b.topology != topology || !b.hasRoom(n) {
		return false
	}
	return t == nil || b.slot(t) >= 0 || len(b.textures) < b.maxTextures
}

// MapVertices reserves up to n vertices, rounded down to whole primitives.
// It returns nil once the batch is full; excess geometry is dropped.
func (b *Batch) MapVertices(n int) []gfx.Vertex {
	if b.full || n <= 0 {
		return nil
	}
	if r := b.page.Remaining(); n > r {
		n = r
	}
	switch b.topology {
	case Quads:
		n -= n % 4
	case SequentialTriangles:
		n -= n % 3
	case TriangleFan:
		if n < 3 {
			n = 0
		}
	}
	if n == 0 {
		b.full = true
		return nil
	}
	vs := b.page.Map(n)
	if b.topology == TriangleFan || b.page.Remaining() == 0 {
		b.full = true
	}
	return vs
}

// MapNextQuad reserves one quad, or returns nil when the page is full.
func (b *Batch) MapNextQuad() []gfx.Vertex {
	if b.topology != Quads {
		return nil
	}
	return b.MapVertices(4)
}
