//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/vib3/glbuild"
)

// GLSurface is a region of the window whose OpenGL context is current on the
// rendering goroutine. Several surfaces may share one window, in which case
// only the primary surface clears it and the rest blend over.
type GLSurface struct {
	// SizeFunc returns the framebuffer size, i.e. glfw.Window.GetFramebufferSize.
	SizeFunc func() (width, height int)
	Primary  bool
}

func (s *GLSurface) Size() (width, height int) {
	if s.SizeFunc == nil {
		return 0, 0
	}
	return s.SizeFunc()
}

// GLBackend draws with the OpenGL context current on the calling goroutine.
type GLBackend struct {
	initErr error
}

// NewGLBackend loads the OpenGL function pointers. A context must be current.
// Initialization failures are reported by [GLBackend.Acquire].
func NewGLBackend() *GLBackend {
	return &GLBackend{initErr: gl.Init()}
}

// Acquire implements [Backend]. s must be a [*GLSurface].
func (b *GLBackend) Acquire(s Surface) (Context, error) {
	surf, ok := s.(*GLSurface)
	if !ok {
		return nil, fmt.Errorf("OpenGL backend requires *GLSurface, got %T: %w", s, ErrBackendNotAvailable)
	} else if b.initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, b.initErr)
	}
	if gl.GetGraphicsResetStatus() != gl.NO_ERROR {
		return nil, fmt.Errorf("%w: context reset pending", ErrBackendNotAvailable)
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if err := glgl.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, err)
	}
	return &glContext{
		surface: surf,
		shaders: make(map[Shader]bool),
		progs:   make(map[Program]bool),
		quads:   make(map[Buffer]glQuad),
	}, nil
}

type glQuad struct {
	vao, vbo uint32
}

type glContext struct {
	surface  *GLSurface
	lost     bool
	released bool
	shaders  map[Shader]bool
	progs    map[Program]bool
	quads    map[Buffer]glQuad
	current  uint32
}

var _ Context = (*glContext)(nil)

func (c *glContext) check() error {
	if c.released {
		return errReleased
	} else if c.IsContextLost() {
		return ErrContextLost
	}
	return nil
}

func (c *glContext) IsContextLost() bool {
	if !c.lost && !c.released && gl.GetGraphicsResetStatus() != gl.NO_ERROR {
		c.lost = true
	}
	return c.lost
}

func (c *glContext) CompileShader(stage Stage, source string) (Shader, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	var typ uint32 = gl.VERTEX_SHADER
	if stage == StageFragment {
		typ = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(typ)
	if shader == 0 {
		return 0, glErrOrMessage("creating shader got zero id")
	}
	csources, free := gl.Strs(strings.TrimRight(source, "\x00") + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &ShaderError{Op: "compile", Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	c.shaders[Shader(shader)] = true
	return Shader(shader), nil
}

func (c *glContext) LinkProgram(vertex, fragment Shader) (Program, error) {
	if err := c.check(); err != nil {
		return 0, err
	} else if !c.shaders[vertex] || !c.shaders[fragment] {
		return 0, ErrInvalidHandle
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.BindAttribLocation(program, 0, gl.Str(glbuild.PositionAttribute+"\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, &ShaderError{Op: "link", Log: strings.TrimRight(log, "\x00")}
	}
	c.progs[Program(program)] = true
	return Program(program), nil
}

func (c *glContext) DeleteShader(s Shader) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.shaders[s] {
		return ErrInvalidHandle
	}
	delete(c.shaders, s)
	gl.DeleteShader(uint32(s))
	return glgl.Err()
}

func (c *glContext) DeleteProgram(p Program) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.progs[p] {
		return ErrInvalidHandle
	}
	delete(c.progs, p)
	if c.current == uint32(p) {
		gl.UseProgram(0)
		c.current = 0
	}
	gl.DeleteProgram(uint32(p))
	return glgl.Err()
}

func (c *glContext) UniformLocation(p Program, name string) (UniformLocation, error) {
	if err := c.check(); err != nil {
		return -1, err
	} else if !c.progs[p] {
		return -1, ErrInvalidHandle
	}
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	return UniformLocation(loc), glgl.Err()
}

func (c *glContext) UseProgram(p Program) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.progs[p] {
		return ErrInvalidHandle
	}
	gl.UseProgram(uint32(p))
	c.current = uint32(p)
	return glgl.Err()
}

func (c *glContext) SetUniform(loc UniformLocation, v ...float32) error {
	if err := c.check(); err != nil {
		return err
	} else if c.current == 0 {
		return errNoProgram
	}
	l := int32(loc)
	switch len(v) {
	case 1:
		gl.Uniform1f(l, v[0])
	case 2:
		gl.Uniform2f(l, v[0], v[1])
	case 3:
		gl.Uniform3f(l, v[0], v[1], v[2])
	case 4:
		gl.Uniform4f(l, v[0], v[1], v[2], v[3])
	case 16:
		gl.UniformMatrix4fv(l, 1, false, &v[0])
	default:
		return errBadUniformLen
	}
	return glgl.Err()
}

func (c *glContext) CreateQuad() (Buffer, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	var q glQuad
	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)
	gl.GenBuffers(1, &q.vbo)
	if q.vao == 0 || q.vbo == 0 {
		return 0, glErrOrMessage("creating quad buffers got zero id")
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(QuadVertices), gl.Ptr(&QuadVertices[0]), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	if err := glgl.Err(); err != nil {
		return 0, err
	}
	c.quads[Buffer(q.vbo)] = q
	return Buffer(q.vbo), nil
}

func (c *glContext) DeleteBuffer(b Buffer) error {
	if err := c.check(); err != nil {
		return err
	}
	q, ok := c.quads[b]
	if !ok {
		return ErrInvalidHandle
	}
	delete(c.quads, b)
	gl.DeleteBuffers(1, &q.vbo)
	gl.DeleteVertexArrays(1, &q.vao)
	return glgl.Err()
}

func (c *glContext) Viewport(width, height int) error {
	if err := c.check(); err != nil {
		return err
	}
	gl.Viewport(0, 0, int32(width), int32(height))
	return glgl.Err()
}

// Clear clears the window only for the primary surface.
func (c *glContext) Clear(col color.RGBA) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.surface.Primary {
		return nil
	}
	gl.ClearColor(float32(col.R)/255, float32(col.G)/255, float32(col.B)/255, float32(col.A)/255)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	return glgl.Err()
}

func (c *glContext) DrawQuad(b Buffer) error {
	if err := c.check(); err != nil {
		return err
	} else if c.current == 0 {
		return errNoProgram
	}
	q, ok := c.quads[b]
	if !ok {
		return ErrInvalidHandle
	}
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, int32(len(QuadVertices)/2))
	gl.BindVertexArray(0)
	return glgl.Err()
}

// Release deletes every object created by the context. After a context
// loss the objects are already gone with the context and are only forgotten.
func (c *glContext) Release() {
	if c.released {
		return
	}
	lost := c.IsContextLost()
	c.released = true
	if !lost {
		for s := range c.shaders {
			gl.DeleteShader(uint32(s))
		}
		for p := range c.progs {
			gl.DeleteProgram(uint32(p))
		}
		for _, q := range c.quads {
			gl.DeleteBuffers(1, &q.vbo)
			gl.DeleteVertexArrays(1, &q.vao)
		}
	}
	clear(c.shaders)
	clear(c.progs)
	clear(c.quads)
	c.current = 0
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
