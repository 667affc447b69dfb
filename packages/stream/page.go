package stream

import "github.com/leonkasovan/go-composer/packages/gfx"

type PageState uint8

const (
	PageFree PageState = iota
	PageWriting
	PageSubmitted
)

var pageStateNames = [...]string{
	PageFree:      "free",
	PageWriting:   "writing",
	PageSubmitted: "submitted",
}

func (s PageState) String() string {
	if int(s) < len(pageStateNames) {
		return pageStateNames[s]
	}
	return "unknown"
}

// Page is a fixed capacity block of vertex memory. Its capacity never
// changes; writes past it are dropped.
type Page struct {
	id       int
	state    PageState
	age      int
	vertices []gfx.Vertex
	vb, ib   gfx.Buffer
}

func (pg *Page) ID() int          { return pg.id }
func (pg *Page) State() PageState { return pg.state }

// Capacity is the number of vertices the page holds.
func (pg *Page) Capacity() int { return cap(pg.vertices) }

// Len is the number of vertices written so far.
func (pg *Page) Len() int { return len(pg.vertices) }

func (pg *Page) Remaining() int { return cap(pg.vertices) - len(pg.vertices) }

// Map reserves up to n more vertices and returns them for writing. The
// returned slice is shorter than n when the page runs out of room.
func (pg *Page) Map(n int) []gfx.Vertex {
	if pg.state != PageWriting || n <= 0 {
		return nil
	}
	if r := pg.Remaining(); n > r {
		n = r
	}
	start := len(pg.vertices)
	pg.vertices = pg.vertices[:start+n]
	return pg.vertices[start : start+n]
}

// Vertices returns the written vertices.
func (pg *Page) Vertices() []gfx.Vertex { return pg.vertices }

func (pg *Page) VertexBuffer() gfx.Buffer { return pg.vb }

// IndexBuffer holds the static quad triangulation for the whole page.
func (pg *Page) IndexBuffer() gfx.Buffer { return pg.ib }
