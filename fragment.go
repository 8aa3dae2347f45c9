package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Fragment is the shaded output of one pixel with straight (non-premultiplied) alpha.
type Fragment struct {
	R, G, B, A float32
	// Value is the raw evaluated shape value including chaos noise.
	Value float32
}

// EvalPoint returns the 4D evaluation point of a fragment before rotation:
// centered normalized screen coordinates scaled by the layer, a time driven
// z and w, and the pointer offset.
func EvalPoint(u *Uniforms, fragX, fragY float32) Vec4 {
	w, h := u.Resolution[0], u.Resolution[1]
	den := minf(w, h)
	if den <= 0 {
		den = 1
	}
	scale := u.LayerScale
	if scale <= 0 {
		scale = 1
	}
	ux := (fragX - w*0.5) / den
	uy := (fragY - h*0.5) / den
	ts := u.Time * 0.0001 * u.Speed
	p := Vec4{
		X: ux * 3 / scale,
		Y: uy * 3 / scale,
		Z: math32.Sin(ts * 3),
		W: math32.Cos(ts * 2),
	}
	mi := u.MouseIntensity * 2
	p.X += (u.Mouse[0] - 0.5) * mi
	p.Y += (u.Mouse[1] - 0.5) * mi
	return p
}

// ShadeFragment is the Go reference of the fragment program written by glbuild.
// fragX and fragY are window coordinates of the pixel center with the origin at the bottom left.
func ShadeFragment(u *Uniforms, lib ShapeLibrary, fragX, fragY float32) Fragment {
	pos := u.Rotation.MulVec(EvalPoint(u, fragX, fragY))
	base := Project4D(pos)
	wp := WarpParams{
		Base:      u.BaseShape,
		Morph:     u.MorphFactor,
		Dimension: u.Dimension,
		TimeMs:    u.Time,
		Speed:     u.Speed,
		Rotation:  u.Rotation,
	}
	warped := ApplyCoreWarp(u.CoreType, base, &wp)
	t := u.Time * 0.001 * u.Speed
	grid := u.GridDensity * GridScale
	value := lib.Evaluate(u.BaseShape, Vec4{X: warped.X, Y: warped.Y, Z: warped.Z, W: pos.W}, grid, t) * u.MorphFactor
	value += math32.Sin(pos.X*7) * math32.Cos(pos.Y*11) * math32.Sin(pos.Z*13) * u.Chaos

	intensity := lib.Kind().Intensity(value)
	intensity += u.ClickIntensity * 0.3
	final := intensity * u.Intensity

	c := Desaturate(Palette(u.Hue/360+value*0.1), u.Saturation)
	c = ms3.Scale(final, c)
	tint := ms3.Scale(final, ms3.Vec{X: u.LayerTint[0], Y: u.LayerTint[1], Z: u.LayerTint[2]})
	c = mix3(c, tint, 0.25)
	return Fragment{
		R:     c.X,
		G:     c.Y,
		B:     c.Z,
		A:     clamp01(final*u.RoleIntensity) * u.LayerOpacity,
		Value: value,
	}
}
