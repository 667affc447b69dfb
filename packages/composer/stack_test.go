package composer

import (
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/leonkasovan/go-composer/packages/gfx/gfxtest"
)

func TestTransformationStack(t *testing.T) {
	s := NewTransformationStack()
	assert.Equal(t, 1, s.Depth())
	assert.False(t, s.Pop())
	assert.Equal(t, mgl.Ident4(), s.Current())

	move := mgl.Translate3D(10, 0, 0)
	scale := mgl.Scale3D(2, 2, 1)
	s.Push(move, true)
	s.Push(scale, true)
	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, move.Mul4(scale), s.Current())

	p := s.Current().Mul4x1(mgl.Vec4{1, 1, 0, 1})
	assert.Equal(t, mgl.Vec4{12, 2, 0, 1}, p)

	s.Push(scale, false)
	assert.Equal(t, scale, s.Current())

	assert.True(t, s.Pop())
	assert.True(t, s.Pop())
	assert.Equal(t, move, s.Current())

	s.Reset()
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, mgl.Ident4(), s.Current())
}

func TestFramebufferStack(t *testing.T) {
	screen := gfxtest.NewFramebuffer("screen", 800, 600)
	a := gfxtest.NewFramebuffer("a", 64, 64)
	b := gfxtest.NewFramebuffer("b", 32, 32)

	s := NewFramebufferStack(screen)
	assert.False(t, s.Pop())
	assert.Equal(t, screen, s.Current())

	s.Push(a)
	s.Push(b)
	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, b, s.Current())
	assert.True(t, s.Pop())
	assert.Equal(t, a, s.Current())

	s.Push(b)
	s.Truncate(1)
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, screen, s.Current())

	s.Push(a)
	s.Reset(b)
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, b, s.Current())
}
