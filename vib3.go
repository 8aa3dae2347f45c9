// Package vib3 implements the parameter model and the 4-dimensional math of a
// layered procedural renderer: the geometry index codec, the six-plane
// rotation composer, the hyperspace core warps and the shape libraries that
// are evaluated per fragment, both as GLSL source and as a Go reference.
package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

const (
	// ProjectionK is the perspective constant of the 4D to 3D projection w' = k/(k+w).
	ProjectionK = 2.5
	// GridScale converts the user facing gridDensity to lattice frequency.
	GridScale = 0.08
)

const (
	tau = 2 * math32.Pi
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
)

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	return ms1.Clamp(v, Min, Max)
}

func clamp01(v float32) float32 {
	return clampf(v, 0, 1)
}

func mixf(x, y, a float32) float32 {
	return ms1.Interp(x, y, a)
}

// fractf returns the fractional part of v the way GLSL's fract does, in [0,1).
func fractf(v float32) float32 {
	return v - math32.Floor(v)
}

// modf returns x mod y with the sign of y, matching GLSL mod.
func modf(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

func smoothstep(edge0, edge1, x float32) float32 {
	return ms1.SmoothStep(edge0, edge1, x)
}
