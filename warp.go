package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// WarpParams are the inputs shared by both core warps.
type WarpParams struct {
	Base      BaseShape
	Morph     float32
	Dimension float32
	TimeMs    float32
	Speed     float32
	// Rotation is the frame's composed rotation, reapplied to the embedded point.
	Rotation Mat4
}

// hypertetra basis directions, normalized (±1,±1,±1) with an even number of negatives.
var tetraBasis = func() (b [4]ms3.Vec) {
	b[0] = ms3.Unit(ms3.Vec{X: 1, Y: 1, Z: 1})
	b[1] = ms3.Unit(ms3.Vec{X: -1, Y: -1, Z: 1})
	b[2] = ms3.Unit(ms3.Vec{X: -1, Y: 1, Z: -1})
	b[3] = ms3.Unit(ms3.Vec{X: 1, Y: -1, Z: -1})
	return b
}()

// ApplyCoreWarp pre-transforms p according to the core type. [CoreBase] returns p unchanged.
func ApplyCoreWarp(core CoreType, p ms3.Vec, wp *WarpParams) ms3.Vec {
	switch core {
	case CoreHypersphere:
		return WarpHypersphere(p, wp)
	case CoreHypertetra:
		return WarpHypertetra(p, wp)
	}
	return p
}

// WarpBlend is the bounded blend factor between the unwarped point and its
// hyperspace projection. It is monotonically non-decreasing in morphBlend and lies in [0,1].
func WarpBlend(morphBlend float32) float32 {
	return clamp01(0.45 + morphBlend*0.35)
}

// WarpHypersphere embeds p on a sinusoidal hypersphere shell, rotates it
// through 4D and projects it back, blending the result with p.
func WarpHypersphere(p ms3.Vec, wp *WarpParams) ms3.Vec {
	mb := clampf(wp.Morph*0.6+(wp.Dimension-3)*0.25, 0, 2)
	radius := ms3.Norm(p)
	freq := 1.3 + float32(wp.Base)*0.12
	w := math32.Sin(radius*freq+wp.TimeMs*0.0008*wp.Speed) * (0.4 + mb*0.45)
	q := ms3.Scale(1+mb*0.2, p)
	p4 := wp.Rotation.MulVec(Vec4{X: q.X, Y: q.Y, Z: q.Z, W: w})
	proj := Project4D(p4)
	return mix3(p, proj, WarpBlend(mb))
}

// WarpHypertetra projects p onto four tetrahedral basis directions, builds a
// composite sinusoid for the fourth coordinate, rotates and projects back.
// Points near a basis plane are pulled toward the origin.
func WarpHypertetra(p ms3.Vec, wp *WarpParams) ms3.Vec {
	mb := clampf(wp.Morph*0.8+(wp.Dimension-3)*0.2, 0, 2)
	d1 := ms3.Dot(p, tetraBasis[0])
	d2 := ms3.Dot(p, tetraBasis[1])
	d3 := ms3.Dot(p, tetraBasis[2])
	d4 := ms3.Dot(p, tetraBasis[3])
	basisMix := d1*0.14 + d2*0.1 + d3*0.08
	t := wp.TimeMs * wp.Speed
	w := math32.Sin(basisMix*5.5+t*0.0009) * math32.Cos(d4*4.2-t*0.0007) * (0.5 + mb*0.4)
	offset := ms3.Scale(0.1*mb, ms3.Vec{X: d1, Y: d2, Z: d3})
	q := ms3.Add(p, offset)
	p4 := wp.Rotation.MulVec(Vec4{X: q.X, Y: q.Y, Z: q.Z, W: w})
	proj := Project4D(p4)

	planeInfluence := minf(minf(absf(d1), absf(d2)), minf(absf(d3), absf(d4)))
	blended := mix3(p, proj, WarpBlend(mb))
	pulled := ms3.Scale(1-planeInfluence*0.55, blended)
	return mix3(blended, pulled, clamp01(0.2+mb*0.2))
}

func mix3(a, b ms3.Vec, t float32) ms3.Vec {
	return ms3.InterpElem(a, b, ms3.Vec{X: t, Y: t, Z: t})
}
