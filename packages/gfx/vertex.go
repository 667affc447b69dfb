package gfx

import (
	"encoding/binary"

	mgl "github.com/go-gl/mathgl/mgl32"
	"golang.org/x/mobile/exp/f32"
)

// Vertex is the layout shared by every composer batch.
type Vertex struct {
	Position mgl.Vec3
	Color    Color
	UV       mgl.Vec2
	// Tid is the batch texture slot, -1 for untextured vertices.
	Tid int32
}

// Attribute byte offsets within an encoded vertex.
const (
	VertexOffsetPosition = 0
	VertexOffsetColor    = 12
	VertexOffsetUV       = 16
	VertexOffsetTid      = 24

	// VertexSize is the encoded size of one Vertex in bytes.
	VertexSize = 28

	// IndexSize is the encoded size of one index in bytes.
	IndexSize = 2
)

// NoTexture marks a vertex that samples no texture.
const NoTexture int32 = -1

// EncodeVertices appends the little-endian encoding of vs to dst.
func EncodeVertices(dst []byte, vs []Vertex) []byte {
	for i := range vs {
		v := &vs[i]
		dst = append(dst, f32.Bytes(binary.LittleEndian, v.Position[0], v.Position[1], v.Position[2])...)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v.Color))
		dst = append(dst, f32.Bytes(binary.LittleEndian, v.UV[0], v.UV[1])...)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(v.Tid))
	}
	return dst
}

// EncodeIndices appends the little-endian encoding of idx to dst.
func EncodeIndices(dst []byte, idx []uint16) []byte {
	for _, i := range idx {
		dst = binary.LittleEndian.AppendUint16(dst, i)
	}
	return dst
}

// QuadIndices returns the triangulation of count quads laid out as four
// consecutive vertices each: 0,1,2, 2,3,0 offset by 4 per quad.
func QuadIndices(count int) []uint16 {
	if count <= 0 {
		return nil
	}
	idx := make([]uint16, 0, count*6)
	for q := 0; q < count; q++ {
		base := uint16(q * 4)
		idx = append(idx, base, base+1, base+2, base+2, base+3, base)
	}
	return idx
}
