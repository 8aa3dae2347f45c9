package vib3

import (
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Vec4 is a homogeneous 4D point. W is the synthetic fourth coordinate.
type Vec4 struct {
	X, Y, Z, W float32
}

// Vec3 returns the first three components of p.
func (p Vec4) Vec3() ms3.Vec { return ms3.Vec{X: p.X, Y: p.Y, Z: p.Z} }

// Length returns the euclidean norm of p.
func (p Vec4) Length() float32 {
	return math32.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z + p.W*p.W)
}

// Add returns p+q.
func (p Vec4) Add(q Vec4) Vec4 {
	return Vec4{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z, W: p.W + q.W}
}

// Scale returns p*k.
func (p Vec4) Scale(k float32) Vec4 {
	return Vec4{X: p.X * k, Y: p.Y * k, Z: p.Z * k, W: p.W * k}
}

func (p Vec4) array() [4]float32 { return [4]float32{p.X, p.Y, p.Z, p.W} }

// Plane is one of the six rotation planes of 4D space.
type Plane uint8

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
	PlaneXW
	PlaneYW
	PlaneZW
	numPlanes
)

// NumPlanes is the amount of rotation planes in 4D space.
const NumPlanes = int(numPlanes)

// String returns the plane's axes, i.e. "XW".
func (p Plane) String() string {
	const names = "XYXZYZXWYWZW"
	if p >= numPlanes {
		return "Plane(" + strconv.Itoa(int(p)) + ")"
	}
	return names[2*p : 2*p+2]
}

// IsHyperspace reports whether the plane mixes in the W axis.
func (p Plane) IsHyperspace() bool { return p >= PlaneXW && p < numPlanes }

// Angles holds one angle in radians per rotation plane, indexed by [Plane].
type Angles [numPlanes]float32

// Mat4 is a 4x4 matrix stored in column major order, the layout expected by glUniformMatrix4fv.
type Mat4 [16]float32

// IdentityMat4 returns the identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns the element at row i, column j.
func (m *Mat4) At(i, j int) float32 { return m[j*4+i] }

// Mul returns the matrix product m·b, so that (m·b)·v == m·(b·v).
func (m Mat4) Mul(b Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * b[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// MulVec returns m·v.
func (m *Mat4) MulVec(v Vec4) Vec4 {
	a := v.array()
	var r [4]float32
	for row := 0; row < 4; row++ {
		r[row] = m[row]*a[0] + m[4+row]*a[1] + m[8+row]*a[2] + m[12+row]*a[3]
	}
	return Vec4{X: r[0], Y: r[1], Z: r[2], W: r[3]}
}

// PlaneRotation returns the rotation matrix of angle radians on plane p.
// The entries match the GLSL constructors rotateXY through rotateZW emitted by glbuild.
func PlaneRotation(p Plane, angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	switch p {
	case PlaneXY:
		return Mat4{c, -s, 0, 0, s, c, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	case PlaneXZ:
		return Mat4{c, 0, s, 0, 0, 1, 0, 0, -s, 0, c, 0, 0, 0, 0, 1}
	case PlaneYZ:
		return Mat4{1, 0, 0, 0, 0, c, -s, 0, 0, s, c, 0, 0, 0, 0, 1}
	case PlaneXW:
		return Mat4{c, 0, 0, -s, 0, 1, 0, 0, 0, 0, 1, 0, s, 0, 0, c}
	case PlaneYW:
		return Mat4{1, 0, 0, 0, 0, c, 0, -s, 0, 0, 1, 0, 0, s, 0, c}
	case PlaneZW:
		return Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, c, -s, 0, 0, s, c}
	}
	panic("invalid rotation plane")
}

// ComposeRotation returns the combined six plane rotation. Ordinary planes
// are applied first (XY, XZ, YZ) followed by the hyperspace planes (XW, YW, ZW),
// so the result is R = ZW·YW·XW·YZ·XZ·XY. Composition order is not commutative.
func ComposeRotation(a Angles) Mat4 {
	r := IdentityMat4()
	for p := PlaneXY; p < numPlanes; p++ {
		if a[p] == 0 {
			continue
		}
		r = PlaneRotation(p, a[p]).Mul(r)
	}
	return r
}

// DriftAngles returns the user angles biased by a continuous time drift.
// drift is in radians per second at unit speed. The bias is additive.
func DriftAngles(user, drift Angles, timeMs, speed float32) Angles {
	secs := timeMs * 0.001 * speed
	for i := range user {
		user[i] += drift[i] * secs
	}
	return user
}

// Project4D perspective projects p onto 3D space with w' = k/(k+w).
func Project4D(p Vec4) ms3.Vec {
	den := ProjectionK + p.W
	if absf(den) < epstol {
		den = math32.Copysign(epstol, den)
	}
	w := ProjectionK / den
	return ms3.Vec{X: p.X * w, Y: p.Y * w, Z: p.Z * w}
}
