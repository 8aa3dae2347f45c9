// Package glbuild writes the GLSL vertex and fragment programs of a visualizer
// for a given [vib3.ShapeLibrary].
package glbuild

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild/glsllib"
)

// Profile selects the GLSL dialect written by a [Programmer].
type Profile uint8

const (
	// ProfileCore330 is desktop OpenGL 3.3 core, the default.
	ProfileCore330 Profile = iota
	// ProfileES100 is GLSL ES 1.00 as used by WebGL 1 and embedded devices.
	ProfileES100
)

// VersionStr returns the #version directive of the profile.
func (p Profile) VersionStr() string {
	if p == ProfileES100 {
		return "#version 100\n"
	}
	return "#version 330 core\n"
}

// PositionAttribute is the name of the quad vertex position attribute.
const PositionAttribute = "a_position"

// LibraryPragma prefixes the line that names the shape library of a fragment program
// so backends can identify it without parsing GLSL.
const LibraryPragma = "#pragma vib3_library "

var errNilLibrary = errors.New("nil shape library")

// ProgrammerConfig configures a [Programmer]. The zero value is valid.
type ProgrammerConfig struct {
	Profile Profile
}

// Programmer writes visualizer programs. It reuses an internal scratch buffer
// and is not safe for concurrent use.
type Programmer struct {
	cfg     ProgrammerConfig
	scratch []byte
}

// ShaderSource holds the vertex and fragment source of one program.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// NewDefaultProgrammer returns a Programmer writing OpenGL 3.3 core sources.
func NewDefaultProgrammer() *Programmer {
	return NewProgrammer(ProgrammerConfig{})
}

// NewProgrammer returns a Programmer with the given configuration.
func NewProgrammer(cfg ProgrammerConfig) *Programmer {
	return &Programmer{
		cfg:     cfg,
		scratch: make([]byte, 0, 8192),
	}
}

// Profile returns the dialect the programmer writes.
func (p *Programmer) Profile() Profile { return p.cfg.Profile }

// WriteVertex writes the full surface quad vertex program.
func (p *Programmer) WriteVertex(w io.Writer) (int, error) {
	b := p.scratch[:0]
	b = append(b, p.cfg.Profile.VersionStr()...)
	if p.cfg.Profile == ProfileES100 {
		b = append(b, "attribute vec2 "...)
	} else {
		b = append(b, "in vec2 "...)
	}
	b = append(b, PositionAttribute...)
	b = append(b, ";\nvoid main() {\n\tgl_Position = vec4("...)
	b = append(b, PositionAttribute...)
	b = append(b, ", 0.0, 1.0);\n}\n"...)
	p.scratch = b
	return w.Write(b)
}

// WriteFragment writes the fragment program of lib: header, uniform
// declarations, shared projection and warp functions, the library's
// geometry function and the main entry point.
func (p *Programmer) WriteFragment(w io.Writer, lib vib3.ShapeLibrary) (int, error) {
	if lib == nil {
		return 0, errNilLibrary
	}
	b := p.scratch[:0]
	b = append(b, p.cfg.Profile.VersionStr()...)
	b = append(b, LibraryPragma...)
	b = append(b, lib.Name()...)
	b = append(b, '\n')
	if p.cfg.Profile == ProfileES100 {
		b = append(b, "#ifdef GL_FRAGMENT_PRECISION_HIGH\nprecision highp float;\n#else\nprecision mediump float;\n#endif\n"...)
		b = AppendDefineDecl(b, "VIB3_FRAGCOLOR", "gl_FragColor")
	} else {
		b = append(b, "out vec4 vib3_fragColor;\n"...)
		b = AppendDefineDecl(b, "VIB3_FRAGCOLOR", "vib3_fragColor")
	}
	if lib.Kind() == vib3.KindDensity {
		b = AppendDefineDecl(b, "VIB3_DENSITY", "1")
	}
	for _, decl := range vib3.UniformDecls() {
		b = AppendUniformDecl(b, decl)
	}
	b = AppendFloatDecl(b, "VIB3_PROJECTION_K", vib3.ProjectionK)
	b = AppendFloatDecl(b, "VIB3_GRID_SCALE", vib3.GridScale)
	b = append(b, '\n')
	b = append(b, glsllib.Project4D()...)
	b = append(b, '\n')
	b = append(b, glsllib.CoreWarp()...)
	b = append(b, '\n')
	b = lib.AppendShaderHelpers(b)
	b = AppendGeometryFunction(b, lib)

	name := lib.AppendShaderName(nil)
	b = AppendDefineDecl(b, "VIB3_GEOMETRY", string(name))
	b = append(b, glsllib.FragmentMain()...)
	p.scratch = b
	return w.Write(b)
}

// Source returns the vertex and fragment program of lib as strings.
func (p *Programmer) Source(lib vib3.ShapeLibrary) (ShaderSource, error) {
	var buf bytes.Buffer
	_, err := p.WriteVertex(&buf)
	if err != nil {
		return ShaderSource{}, err
	}
	vertex := buf.String()
	buf.Reset()
	_, err = p.WriteFragment(&buf, lib)
	if err != nil {
		return ShaderSource{}, err
	}
	return ShaderSource{Vertex: vertex, Fragment: buf.String()}, nil
}

// AppendGeometryFunction appends the full declaration of the library's geometry function:
//
//	float <name>(vec4 p, int shape, float grid, float t) { <body> }
func AppendGeometryFunction(b []byte, lib vib3.ShapeLibrary) []byte {
	b = append(b, "float "...)
	b = lib.AppendShaderName(b)
	b = append(b, "(vec4 p, int shape, float grid, float t) {\n"...)
	b = lib.AppendShaderBody(b)
	b = append(b, "\n}\n\n"...)
	return b
}

// ParseLibraryPragma returns the shape library name declared in a fragment source.
func ParseLibraryPragma(src []byte) (string, bool) {
	idx := bytes.Index(src, []byte(LibraryPragma))
	if idx < 0 {
		return "", false
	}
	rest := src[idx+len(LibraryPragma):]
	end := bytes.IndexByte(rest, '\n')
	if end >= 0 {
		rest = rest[:end]
	}
	name := bytes.TrimSpace(rest)
	if len(name) == 0 {
		return "", false
	}
	return string(name), true
}

func AppendUniformDecl(b []byte, decl vib3.UniformDecl) []byte {
	b = append(b, "uniform "...)
	b = append(b, decl.Type...)
	b = append(b, ' ')
	b = append(b, decl.Name...)
	b = append(b, ";\n"...)
	return b
}

func AppendDefineDecl(b []byte, aliasToDefine, aliasReplace string) []byte {
	b = append(b, "#define "...)
	b = append(b, aliasToDefine...)
	b = append(b, ' ')
	b = append(b, aliasReplace...)
	b = append(b, '\n')
	return b
}

// AppendFloatDecl appends a global float constant declaration.
func AppendFloatDecl(b []byte, floatVarname string, v float32) []byte {
	b = append(b, "const float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = AppendFloat(b, '-', '.', v)
	b = append(b, ';', '\n')
	return b
}

const decimalDigits = 9

// AppendFloat appends a GLSL float literal. Integral values keep a trailing
// decimal point so they are not parsed as int literals.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}
