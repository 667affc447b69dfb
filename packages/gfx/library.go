package gfx

import "sync"

// Uniform names understood by the composer's shaders.
const (
	UniformProjection = "projectionMatrix"
	UniformView       = "viewMatrix"
	UniformModel      = "modelMatrix"
	UniformTextures   = "textures"
)

// Resources hands out the shaders the composer needs. Textures and shaders
// are loaded elsewhere; the composer only consumes the handles.
type Resources interface {
	DefaultShader() ShaderProgram
	BlitShader() ShaderProgram
	// Shader looks up a program by name.
	Shader(name string) (ShaderProgram, bool)
}

// Library is a map backed Resources. Loader goroutines may Register
// programs concurrently; the composer reads them on the graphics thread.
type Library struct {
	mu      sync.RWMutex
	def     ShaderProgram
	blit    ShaderProgram
	shaders map[string]ShaderProgram
}

// NewLibrary creates a library around the two built-in programs. Both are
// also registered under their own names.
func NewLibrary(def, blit ShaderProgram) *Library {
	l := &Library{def: def, blit: blit, shaders: make(map[string]ShaderProgram)}
	if def != nil {
		l.shaders[def.Name()] = def
	}
	if blit != nil {
		l.shaders[blit.Name()] = blit
	}
	return l
}

func (l *Library) DefaultShader() ShaderProgram { return l.def }
func (l *Library) BlitShader() ShaderProgram    { return l.blit }

func (l *Library) Register(p ShaderProgram) {
	if p == nil {
		return
	}
	l.mu.Lock()
	l.shaders[p.Name()] = p
	l.mu.Unlock()
}

func (l *Library) Shader(name string) (ShaderProgram, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.shaders[name]
	return p, ok
}
