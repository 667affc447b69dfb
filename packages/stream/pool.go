// Package stream manages the transient vertex memory the composer writes
// batches into. Memory is split into fixed capacity pages, each backed by a
// device vertex buffer and a static quad index buffer.
//
// A page moves Free -> Writing -> Submitted -> Free. Submitted pages are only
// reissued after RetireFrames calls to Maintain, so the device never reads a
// page the client is rewriting.
//
// Pool is not safe for concurrent use; it lives on the graphics thread.
package stream

import (
	"errors"
	"fmt"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

var (
	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("stream: pool closed")

	// ErrPageState is returned when a page is handed back in the wrong state.
	ErrPageState = errors.New("stream: page in unexpected state")
)

const (
	// DefaultPageVertices holds 4096 quads per page.
	DefaultPageVertices = 4 * 4096

	// MaxPageVertices is the largest page addressable by 16-bit indices.
	MaxPageVertices = 1 << 16

	DefaultRetireFrames = 1
)

// Config sizes the pool.
type Config struct {
	// PageVertices is the fixed vertex capacity of every page.
	PageVertices int
	// RetireFrames is how many maintenance cycles a submitted page waits
	// before it is reused.
	RetireFrames int
}

func (c Config) withDefaults() Config {
	if c.PageVertices <= 0 {
		c.PageVertices = DefaultPageVertices
	}
	if c.PageVertices > MaxPageVertices {
		c.PageVertices = MaxPageVertices
	}
	if c.RetireFrames <= 0 {
		c.RetireFrames = DefaultRetireFrames
	}
	return c
}

// Stats counts pages by state.
type Stats struct {
	Pages       int
	Free        int
	Writing     int
	Submitted   int
	Allocations uint64
}

func (s Stats) String() string {
	return fmt.Sprintf("Pool[%d pages: %d free, %d writing, %d submitted, %d allocations]",
		s.Pages, s.Free, s.Writing, s.Submitted, s.Allocations)
}

// Pool hands out pages.
type Pool struct {
	dev    gfx.BufferDevice
	cfg    Config
	pages  []*Page
	free   []*Page
	allocs uint64
	closed bool
}

// NewPool creates an empty pool; pages are allocated on demand.
func NewPool(dev gfx.BufferDevice, cfg Config) *Pool {
	return &Pool{dev: dev, cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (p *Pool) Config() Config { return p.cfg }

// Acquire returns a page in the Writing state, reusing a free page when one
// is available and allocating a new one otherwise.
func (p *Pool) Acquire() (*Page, error) {
	if p.closed {
		return nil, ErrPoolClosed
	}
	var pg *Page
	if n := len(p.free); n > 0 {
		pg = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		var err error
		if pg, err = p.newPage(); err != nil {
			return nil, err
		}
	}
	pg.state = PageWriting
	pg.vertices = pg.vertices[:0]
	pg.age = 0
	return pg, nil
}

func (p *Pool) newPage() (*Page, error) {
	vb, err := p.dev.CreateBuffer(gfx.VertexBuffer, p.cfg.PageVertices*gfx.VertexSize)
	if err != nil {
		return nil, fmt.Errorf("stream: vertex buffer: %w", err)
	}
	quads := p.cfg.PageVertices / 4
	idx := gfx.QuadIndices(quads)
	ib, err := p.dev.CreateBuffer(gfx.IndexBuffer, len(idx)*gfx.IndexSize)
	if err != nil {
		p.dev.DestroyBuffer(vb)
		return nil, fmt.Errorf("stream: index buffer: %w", err)
	}
	p.dev.UploadIndices(ib, 0, idx)

	pg := &Page{
		id:       len(p.pages),
		vertices: make([]gfx.Vertex, 0, p.cfg.PageVertices),
		vb:       vb,
		ib:       ib,
	}
	p.pages = append(p.pages, pg)
	p.allocs++
	gfx.Logger().Debug("stream: page allocated", "page", pg.id, "vertices", p.cfg.PageVertices)
	return pg, nil
}

// Release returns a Writing page that was never submitted. It is
// immediately reusable because the device never saw it.
func (p *Pool) Release(pg *Page) error {
	if pg.state != PageWriting {
		return fmt.Errorf("release page %d (%s): %w", pg.id, pg.state, ErrPageState)
	}
	pg.state = PageFree
	pg.vertices = pg.vertices[:0]
	p.free = append(p.free, pg)
	return nil
}

// Submit uploads the written range of pg and hands it to the device.
func (p *Pool) Submit(pg *Page) error {
	if pg.state != PageWriting {
		return fmt.Errorf("submit page %d (%s): %w", pg.id, pg.state, ErrPageState)
	}
	if len(pg.vertices) > 0 {
		p.dev.UploadVertices(pg.vb, 0, pg.vertices)
	}
	pg.state = PageSubmitted
	pg.age = 0
	return nil
}

// Maintain ages submitted pages and returns those that have waited
// RetireFrames cycles to the free list. Call it once per frame.
func (p *Pool) Maintain() {
	for _, pg := range p.pages {
		if pg.state != PageSubmitted {
			continue
		}
		pg.age++
		if pg.age >= p.cfg.RetireFrames {
			pg.state = PageFree
			pg.vertices = pg.vertices[:0]
			p.free = append(p.free, pg)
		}
	}
}

// Reset returns every page to the free list. The caller must ensure the
// device is idle.
func (p *Pool) Reset() {
	p.free = p.free[:0]
	for _, pg := range p.pages {
		pg.state = PageFree
		pg.vertices = pg.vertices[:0]
		pg.age = 0
		p.free = append(p.free, pg)
	}
}

// Close destroys every page's device buffers.
func (p *Pool) Close() {
	if p.closed {
		return
	}
	for _, pg := range p.pages {
		p.dev.DestroyBuffer(pg.vb)
		p.dev.DestroyBuffer(pg.ib)
	}
	p.pages, p.free = nil, nil
	p.closed = true
}

func (p *Pool) Stats() Stats {
	s := Stats{Pages: len(p.pages), Allocations: p.allocs}
	for _, pg := range p.pages {
		switch pg.state {
		case PageFree:
			s.Free++
		case PageWriting:
			s.Writing++
		case PageSubmitted:
			s.Submitted++
		}
	}
	return s
}
