package vib3

import (
	"strconv"

	"github.com/chewxy/math32"
)

// CoreType selects the higher dimensional pre-transform applied to the
// evaluation point before a base shape is evaluated.
type CoreType uint8

const (
	CoreBase CoreType = iota
	CoreHypersphere
	CoreHypertetra
	numCores
)

// BaseShape is the index of one of the eight procedural shape functions of a [ShapeLibrary].
type BaseShape uint8

const (
	ShapeTetrahedron BaseShape = iota
	ShapeHypercube
	ShapeSphere
	ShapeTorus
	ShapeKlein
	ShapeFractal
	ShapeWave
	ShapeCrystal
	numShapes
)

const (
	// NumBaseShapes is the amount of base shapes in every shape library.
	NumBaseShapes = int(numShapes)
	// NumCoreTypes is the amount of core warp types.
	NumCoreTypes = int(numCores)
	// NumGeometries is the amount of valid geometry indices.
	NumGeometries = NumBaseShapes * NumCoreTypes
)

// DecodeGeometry splits a geometry index into its core type and base shape.
// Fractional indices are tolerated: the core is floor(index/8) clamped to [0,2]
// and the base shape is the rounded index modulo 8.
func DecodeGeometry(index float32) (CoreType, BaseShape) {
	if math32.IsNaN(index) || index < 0 {
		index = 0
	}
	core := clampf(math32.Floor(index/float32(NumBaseShapes)), 0, float32(NumCoreTypes-1))
	base := clampf(math32.Floor(modf(index, float32(NumBaseShapes))+0.5), 0, float32(NumBaseShapes-1))
	return CoreType(core), BaseShape(base)
}

// EncodeGeometry returns the geometry index of a core type and base shape.
func EncodeGeometry(core CoreType, base BaseShape) int {
	return int(core)*NumBaseShapes + int(base)
}

// String returns the human readable name of the core type.
func (c CoreType) String() string {
	switch c {
	case CoreBase:
		return "base"
	case CoreHypersphere:
		return "hypersphere"
	case CoreHypertetra:
		return "hypertetrahedron"
	}
	return "CoreType(" + strconv.Itoa(int(c)) + ")"
}

var shapeNames = [numShapes]string{
	ShapeTetrahedron: "tetrahedron",
	ShapeHypercube:   "hypercube",
	ShapeSphere:      "sphere",
	ShapeTorus:       "torus",
	ShapeKlein:       "klein bottle",
	ShapeFractal:     "fractal",
	ShapeWave:        "wave",
	ShapeCrystal:     "crystal",
}

// String returns the name of the base shape as exposed by the faceted library.
// Other libraries may name their shapes differently, see [ShapeLibrary].
func (b BaseShape) String() string {
	if b >= numShapes {
		return "BaseShape(" + strconv.Itoa(int(b)) + ")"
	}
	return shapeNames[b]
}

// GeometryName returns a display name for a geometry index, i.e. "hypersphere torus".
func GeometryName(index int) string {
	core, base := DecodeGeometry(float32(index))
	if core == CoreBase {
		return base.String()
	}
	return core.String() + " " + base.String()
}
