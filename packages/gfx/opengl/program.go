package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Program is a linked shader program with cached uniform locations.
type Program struct {
	name    string
	program uint32
	u       map[string]int32
}

func (p *Program) Name() string   { return p.name }
func (p *Program) String() string { return "program:" + p.name }

func glStr(s string) *uint8 {
	return gl.Str(s + "\x00")
}

// RegisterUniforms looks up the locations of names ahead of use.
func (p *Program) RegisterUniforms(names ...string) {
	for _, name := range names {
		p.u[name] = gl.GetUniformLocation(p.program, glStr(name))
	}
}

func (p *Program) uniform(name string) int32 {
	loc, ok := p.u[name]
	if !ok {
		loc = gl.GetUniformLocation(p.program, glStr(name))
		p.u[name] = loc
	}
	return loc
}

// NewProgram compiles and links a program. Both sources get the GLSL
// version line prepended.
func (d *Device) NewProgram(name, vert, frag string) (*Program, error) {
	vertObj, err := compileShader(gl.VERTEX_SHADER, vert)
	if err != nil {
		return nil, fmt.Errorf("opengl: vertex shader %q: %w", name, err)
	}
	fragObj, err := compileShader(gl.FRAGMENT_SHADER, frag)
	if err != nil {
		gl.DeleteShader(vertObj)
		return nil, fmt.Errorf("opengl: fragment shader %q: %w", name, err)
	}
	prog, err := linkProgram(vertObj, fragObj)
	if err != nil {
		return nil, fmt.Errorf("opengl: link %q: %w", name, err)
	}
	p := &Program{name: name, program: prog, u: make(map[string]int32)}
	p.RegisterUniforms(gfx.UniformProjection, gfx.UniformView, gfx.UniformModel, gfx.UniformTextures)
	gfx.Logger().Debug("opengl: program linked", "name", name, "id", prog)
	return p, nil
}

// DeleteProgram releases p. It must not be used afterwards.
func (d *Device) DeleteProgram(p *Program) {
	if d.program == p {
		d.program = nil
	}
	gl.DeleteProgram(p.program)
	p.program = 0
}

const glslVersion = "#version 330\n"

// objectLog returns the info log of a shader or program object as an
// Error. get and read are the matching GetXiv and GetXInfoLog calls.
func objectLog(obj uint32, get func(uint32, uint32, *int32), read func(uint32, int32, *int32, *uint8), fallback string) Error {
	var size int32
	get(obj, gl.INFO_LOG_LENGTH, &size)
	if size <= 0 {
		return Error(fallback)
	}
	buf := make([]byte, size)
	var n int32
	read(obj, size, &n, &buf[0])
	return Error(buf[:n])
}

// compileShader builds one stage from src. The shader object is deleted
// again when compilation fails.
func compileShader(stage uint32, src string) (uint32, error) {
	csrc, free := gl.Strs(glslVersion + src + "\x00")
	defer free()
	sh := gl.CreateShader(stage)
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status != gl.FALSE {
		return sh, nil
	}
	err := objectLog(sh, gl.GetShaderiv, gl.GetShaderInfoLog, "shader did not compile")
	gl.DeleteShader(sh)
	return 0, err
}

// linkProgram links the compiled stages into a program. The stages are
// consumed whether linking succeeds or not.
func linkProgram(stages ...uint32) (uint32, error) {
	prog := gl.CreateProgram()
	for _, sh := range stages {
		gl.AttachShader(prog, sh)
	}
	gl.LinkProgram(prog)
	for _, sh := range stages {
		gl.DetachShader(prog, sh)
		gl.DeleteShader(sh)
	}

	var status int32
	if gl.GetProgramiv(prog, gl.LINK_STATUS, &status); status != gl.FALSE {
		return prog, nil
	}
	err := objectLog(prog, gl.GetProgramiv, gl.GetProgramInfoLog, "program did not link")
	gl.DeleteProgram(prog)
	return 0, err
}

func (d *Device) UseProgram(p gfx.ShaderProgram) {
	prog, ok := p.(*Program)
	if !ok || prog == nil {
		gfx.Logger().Warn("opengl: UseProgram with a foreign program", "program", p)
		return
	}
	d.program = prog
	gl.UseProgram(prog.program)
}

func (d *Device) SetUniformMatrix(name string, m mgl.Mat4) {
	if d.program == nil {
		return
	}
	gl.UniformMatrix4fv(d.program.uniform(name), 1, false, &m[0])
}

func (d *Device) SetUniformFloats(name string, v ...float32) {
	if d.program == nil {
		return
	}
	loc := d.program.uniform(name)
	switch len(v) {
	case 1:
		gl.Uniform1f(loc, v[0])
	case 2:
		gl.Uniform2f(loc, v[0], v[1])
	case 3:
		gl.Uniform3f(loc, v[0], v[1], v[2])
	case 4:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

func (d *Device) SetUniformInt(name string, v int32) {
	if d.program == nil {
		return
	}
	gl.Uniform1i(d.program.uniform(name), v)
}

func (d *Device) SetUniformInts(name string, v []int32) {
	if d.program == nil || len(v) == 0 {
		return
	}
	gl.Uniform1iv(d.program.uniform(name), int32(len(v)), &v[0])
}
