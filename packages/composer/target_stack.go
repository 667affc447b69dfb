package composer

import "github.com/leonkasovan/go-composer/packages/gfx"

// FramebufferStack is a stack of render targets whose bottom is the screen
// (or whatever target a sub-composer was created on). It never empties.
type FramebufferStack struct {
	stack []gfx.Framebuffer
}

func NewFramebufferStack(base gfx.Framebuffer) *FramebufferStack {
	return &FramebufferStack{stack: []gfx.Framebuffer{base}}
}

func (s *FramebufferStack) Push(fb gfx.Framebuffer) { s.stack = append(s.stack, fb) }

// Pop removes the top target. At depth 1 it does nothing and returns false.
func (s *FramebufferStack) Pop() bool {
	if len(s.stack) <= 1 {
		return false
	}
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

func (s *FramebufferStack) Current() gfx.Framebuffer { return s.stack[len(s.stack)-1] }

func (s *FramebufferStack) Depth() int { return len(s.stack) }

// Truncate pops targets until at most depth remain.
func (s *FramebufferStack) Truncate(depth int) {
	for len(s.stack) > depth && s.Pop() {
	}
}

// Reset leaves base as the only target.
func (s *FramebufferStack) Reset(base gfx.Framebuffer) {
	s.Truncate(1)
	s.stack[0] = base
}
