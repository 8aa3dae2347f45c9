package vib3aux

import "github.com/soypat/geometry/ms2"

// NormalizePointer maps a pointer position in pixels with Y down onto the
// [0,1] Y up coordinates of the mouse parameters. Empty sizes map to the center.
func NormalizePointer(px, py float32, width, height int) ms2.Vec {
	if width <= 0 || height <= 0 {
		return ms2.Vec{X: 0.5, Y: 0.5}
	}
	n := ms2.DivElem(ms2.Vec{X: px, Y: py}, ms2.Vec{X: float32(width), Y: float32(height)})
	n.Y = 1 - n.Y
	return ms2.ClampElem(n, ms2.Vec{}, ms2.Vec{X: 1, Y: 1})
}
