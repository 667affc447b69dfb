package composer

import mgl "github.com/go-gl/mathgl/mgl32"

// TransformationStack is a stack of model matrices that never empties.
type TransformationStack struct {
	stack []mgl.Mat4
}

// NewTransformationStack returns a stack holding only the identity.
func NewTransformationStack() *TransformationStack {
	return newTransformationStackFrom(mgl.Ident4())
}

func newTransformationStackFrom(base mgl.Mat4) *TransformationStack {
	return &TransformationStack{stack: []mgl.Mat4{base}}
}

// Push pushes top*m when multiply is set and m verbatim otherwise.
func (s *TransformationStack) Push(m mgl.Mat4, multiply bool) {
	if multiply {
		m = s.Current().Mul4(m)
	}
	s.stack = append(s.stack, m)
}

// Pop removes the top matrix. At depth 1 it does nothing and returns false.
func (s *TransformationStack) Pop() bool {
	if len(s.stack) <= 1 {
		return false
	}
	s.stack = s.stack[:len(s.stack)-1]
	return true
}

func (s *TransformationStack) Current() mgl.Mat4 { return s.stack[len(s.stack)-1] }

func (s *TransformationStack) Depth() int { return len(s.stack) }

// Reset drops everything above the bottom matrix.
func (s *TransformationStack) Reset() { s.stack = s.stack[:1] }
