package vib3

import (
	"errors"
	"sort"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// ShapeKind determines how a library's evaluated value maps to fragment intensity.
type ShapeKind uint8

const (
	// KindDistance values are distances: intensity is 1-clamp(|v|,0,1).
	KindDistance ShapeKind = iota
	// KindDensity values are densities: intensity is clamp(v,0,1).
	KindDensity
)

// Intensity maps an evaluated shape value to [0,1] geometry intensity.
func (k ShapeKind) Intensity(value float32) float32 {
	if k == KindDensity {
		return clamp01(value)
	}
	return 1 - clamp01(absf(value))
}

// ShapeLibrary is a family of eight base shape functions that share a visual
// style. Every library is implemented twice: as GLSL source for GPU backends
// and as a Go reference used by software backends and tests. Both must agree.
type ShapeLibrary interface {
	// Name is the system identifier of the library, i.e. "faceted".
	Name() string
	// AppendShaderName appends the GLSL function name of the geometry function.
	AppendShaderName(b []byte) []byte
	// AppendShaderBody appends the body of the GLSL function
	//  float name(vec4 p, int shape, float grid, float t)
	// where t is the scaled time u_time*0.001*u_speed.
	AppendShaderBody(b []byte) []byte
	// AppendShaderHelpers appends GLSL declarations the body depends on. May append nothing.
	AppendShaderHelpers(b []byte) []byte
	// Evaluate is the Go reference of the GLSL geometry function.
	Evaluate(shape BaseShape, p Vec4, grid, t float32) float32
	// Kind reports whether Evaluate returns distances or densities.
	Kind() ShapeKind
	// Drift returns the per-plane continuous rotation in radians per second at unit speed.
	Drift() Angles
	// ShapeName returns the display name of a base shape within this library.
	ShapeName(BaseShape) string
}

var (
	libraries = map[string]ShapeLibrary{}

	errEmptyName     = errors.New("empty shape library name")
	errDuplicateName = errors.New("shape library already registered")
)

func init() {
	for _, lib := range []ShapeLibrary{Faceted(), Quantum(), Holographic(), Polychora()} {
		if err := RegisterLibrary(lib); err != nil {
			panic(err)
		}
	}
}

// RegisterLibrary makes a shape library available through [LookupLibrary].
// It is not safe for concurrent use and is meant to be called from init functions.
func RegisterLibrary(lib ShapeLibrary) error {
	name := lib.Name()
	if name == "" {
		return errEmptyName
	} else if _, ok := libraries[name]; ok {
		return errDuplicateName
	}
	libraries[name] = lib
	return nil
}

// LookupLibrary returns a registered shape library by system identifier.
func LookupLibrary(name string) (ShapeLibrary, bool) {
	lib, ok := libraries[name]
	return lib, ok
}

// LibraryNames returns the sorted registered system identifiers.
func LibraryNames() []string {
	names := make([]string, 0, len(libraries))
	for name := range libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Vector helpers mirroring GLSL builtins.

func fract3(v ms3.Vec) ms3.Vec {
	return ms3.Vec{X: fractf(v.X), Y: fractf(v.Y), Z: fractf(v.Z)}
}

func fract4(v Vec4) Vec4 {
	return Vec4{X: fractf(v.X), Y: fractf(v.Y), Z: fractf(v.Z), W: fractf(v.W)}
}

func abs4(v Vec4) Vec4 {
	return Vec4{X: absf(v.X), Y: absf(v.Y), Z: absf(v.Z), W: absf(v.W)}
}

func addScalar4(v Vec4, k float32) Vec4 {
	return Vec4{X: v.X + k, Y: v.Y + k, Z: v.Z + k, W: v.W + k}
}

func max4(v Vec4, k float32) Vec4 {
	return Vec4{X: maxf(v.X, k), Y: maxf(v.Y, k), Z: maxf(v.Z, k), W: maxf(v.W, k)}
}

func maxElem4(v Vec4) float32 {
	return maxf(maxf(v.X, v.Y), maxf(v.Z, v.W))
}

func minElem4(v Vec4) float32 {
	return minf(minf(v.X, v.Y), minf(v.Z, v.W))
}

func max3(v ms3.Vec, k float32) ms3.Vec {
	return ms3.Vec{X: maxf(v.X, k), Y: maxf(v.Y, k), Z: maxf(v.Z, k)}
}

func len2(x, y float32) float32 {
	return math32.Hypot(x, y)
}

// cell3 returns fract(p*grid)-0.5, the centered lattice cell coordinate.
func cell3(p ms3.Vec, grid float32) ms3.Vec {
	return ms3.AddScalar(-0.5, fract3(ms3.Scale(grid, p)))
}

// ring returns 1 at d==0 fading to 0 at |d|>=width.
func ring(d, width float32) float32 {
	return 1 - smoothstep(0, width, absf(d))
}
