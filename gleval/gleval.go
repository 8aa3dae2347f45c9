// Package gleval implements the rendering backends visualizers draw with: a
// software backend that shades every pixel in Go and an OpenGL backend
// available when building with cgo.
package gleval

import (
	"errors"
	"image"
	"image/color"
	"strings"
)

var (
	// ErrBackendNotAvailable is returned when a backend cannot provide a context for a surface.
	ErrBackendNotAvailable = errors.New("rendering backend not available")
	// ErrContextLost is returned by every context operation after the device was lost.
	ErrContextLost = errors.New("rendering context lost")
	// ErrInvalidHandle is returned for handles not created by the context or already deleted.
	ErrInvalidHandle = errors.New("invalid handle")

	errReleased      = errors.New("context released")
	errNoProgram     = errors.New("no program in use")
	errBadUniformLen = errors.New("uniform value must have 1, 2, 3, 4 or 16 components")
)

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown stage"
}

type (
	// Shader is a compiled shader stage handle. Zero is never valid.
	Shader uint32
	// Program is a linked program handle. Zero is never valid.
	Program uint32
	// Buffer is a vertex buffer handle. Zero is never valid.
	Buffer uint32
)

// UniformLocation is a uniform's handle within a program. Uniforms not present
// in the program resolve to -1, writes to which are ignored.
type UniformLocation int32

// ShaderError is a compilation or link failure with the diagnostic log.
type ShaderError struct {
	// Op is "compile" or "link".
	Op    string
	Stage Stage
	Log   string
}

func (e *ShaderError) Error() string {
	if e.Op == "link" {
		return "link error: " + strings.TrimSpace(e.Log)
	}
	return e.Stage.String() + " compile error: " + strings.TrimSpace(e.Log)
}

// Surface is a drawing target.
type Surface interface {
	// Size returns the current drawable size in pixels.
	Size() (width, height int)
}

// Backend acquires rendering contexts for surfaces.
type Backend interface {
	// Acquire returns a context that draws onto s. It returns an error
	// wrapping [ErrBackendNotAvailable] if no context can be provided.
	Acquire(s Surface) (Context, error)
}

// Context is the set of rendering operations a visualizer needs. After
// the device is lost every method returns [ErrContextLost] until a new context is acquired.
type Context interface {
	// CompileShader compiles a single stage. Failures are returned as [*ShaderError].
	CompileShader(stage Stage, source string) (Shader, error)
	// LinkProgram links a vertex and fragment stage. Failures are returned as [*ShaderError].
	LinkProgram(vertex, fragment Shader) (Program, error)
	DeleteShader(Shader) error
	DeleteProgram(Program) error
	// UniformLocation returns -1 if name is not an active uniform of p.
	UniformLocation(p Program, name string) (UniformLocation, error)
	UseProgram(Program) error
	// SetUniform writes a float, vec2, vec3, vec4 or column major mat4
	// to the uniform of the program in use.
	SetUniform(loc UniformLocation, v ...float32) error
	// CreateQuad creates the full surface quad drawn by [Context.DrawQuad].
	CreateQuad() (Buffer, error)
	DeleteBuffer(Buffer) error
	Viewport(width, height int) error
	Clear(c color.RGBA) error
	// DrawQuad draws the quad with the program in use.
	DrawQuad(Buffer) error
	IsContextLost() bool
	// Release frees every resource of the context. It is safe to call more than once.
	Release()
}

// QuadVertices are the triangle strip vertices of the full surface quad.
var QuadVertices = [8]float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

// ImageSurface is an in-memory surface for the software backend.
type ImageSurface struct {
	img *image.RGBA
}

// NewImageSurface returns a transparent surface of the given size.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

func (s *ImageSurface) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the surface pixels, premultiplied. The image is replaced on [ImageSurface.Resize].
func (s *ImageSurface) Image() *image.RGBA { return s.img }

// Resize reallocates the surface if the size changed. Contents are discarded.
func (s *ImageSurface) Resize(width, height int) {
	w, h := s.Size()
	if w == width && h == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}
