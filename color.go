package vib3

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

// Palette returns the three phase sine palette color of hue h in turns.
// Each channel is sin(2πh + phase)*0.5+0.5 with phases 0, 2π/3 and 4π/3.
func Palette(h float32) ms3.Vec {
	const (
		twoPi = 6.28318
		ph1   = 2.0943
		ph2   = 4.1887
	)
	return ms3.Vec{
		X: math.Sin(h*twoPi)*0.5 + 0.5,
		Y: math.Sin(h*twoPi+ph1)*0.5 + 0.5,
		Z: math.Sin(h*twoPi+ph2)*0.5 + 0.5,
	}
}

// Desaturate mixes c toward its gray level. saturation 1 returns c unchanged.
func Desaturate(c ms3.Vec, saturation float32) ms3.Vec {
	gray := (c.X + c.Y + c.Z) / 3
	g := ms3.Vec{X: gray, Y: gray, Z: gray}
	return mix3(g, c, saturation)
}

// HueColor converts a hue in degrees with saturation and value in [0,1] to an opaque color.
func HueColor(hueDeg, saturation, value float32) color.RGBA {
	h := modf(hueDeg, 360) / 360
	r, g, b := hsvToRGB(h, ms1.Clamp(saturation, 0, 1), ms1.Clamp(value, 0, 1))
	return RGBA(r, g, b, 1)
}

// RGBA converts straight alpha float channels in [0,1] to a premultiplied color.
func RGBA(r, g, b, a float32) color.RGBA {
	a = ms1.Clamp(a, 0, 1)
	return color.RGBA{
		R: uint8(ms1.Clamp(r, 0, 1)*a*math.MaxUint8 + 0.5),
		G: uint8(ms1.Clamp(g, 0, 1)*a*math.MaxUint8 + 0.5),
		B: uint8(ms1.Clamp(b, 0, 1)*a*math.MaxUint8 + 0.5),
		A: uint8(a*math.MaxUint8 + 0.5),
	}
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)
	switch {
	case h <= 1.0/6:
		r, g, b = c, x, 0
	case h <= 2.0/6:
		r, g, b = x, c, 0
	case h <= 3.0/6:
		r, g, b = 0, c, x
	case h <= 4.0/6:
		r, g, b = 0, x, c
	case h <= 5.0/6:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
