package opengl

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/leonkasovan/go-composer/packages/gfx"
)

// Names of the built-in programs.
const (
	DefaultShaderName = "composer"
	BlitShaderName    = "blit"
)

//go:embed shaders/composer.vert.glsl
var composerVertShader string

//go:embed shaders/composer.frag.glsl
var composerFragShader string

//go:embed shaders/blit.frag.glsl
var blitFragShader string

// VertexShader returns the vertex stage shared by the built-in programs,
// for custom programs drawing composer batches.
func VertexShader() string { return composerVertShader }

// fragmentSource sizes the sampler array to units and expands the texture
// fetch into a chain of constant-index lookups.
func fragmentSource(src string, units int) string {
	var fetch strings.Builder
	for i := 0; i < units; i++ {
		fmt.Fprintf(&fetch, "if (slot == %d) return texture(textures[%d], uv);\n\t", i, i)
	}
	src = strings.Replace(src, "TEXTURE_FETCH", fetch.String(), 1)
	return fmt.Sprintf("#define MAX_TEXTURES %d\n", units) + src
}

// NewFragmentProgram links a custom fragment stage against the composer
// vertex stage. MAX_TEXTURES is defined as the device's texture unit count.
func (d *Device) NewFragmentProgram(name, frag string) (*Program, error) {
	return d.NewProgram(name, composerVertShader, fragmentSource(frag, d.caps.MaxTextureUnits))
}

// NewLibrary compiles the built-in programs and returns them as the
// composer's resources.
func NewLibrary(d *Device) (*gfx.Library, error) {
	def, err := d.NewFragmentProgram(DefaultShaderName, composerFragShader)
	if err != nil {
		return nil, err
	}
	blit, err := d.NewFragmentProgram(BlitShaderName, blitFragShader)
	if err != nil {
		d.DeleteProgram(def)
		return nil, err
	}
	return gfx.NewLibrary(def, blit), nil
}
