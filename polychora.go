package vib3

import (
	"github.com/chewxy/math32"
)

type polychora struct{}

// Polychora returns the polychora shape library: shells of regular 4D
// polytopes tiled through hyperspace. Its shapes are evaluated on all four
// coordinates and rely on hyperspace drift to animate.
func Polychora() ShapeLibrary { return polychora{} }

func (polychora) Name() string { return "polychora" }
func (polychora) Kind() ShapeKind { return KindDistance }

func (polychora) Drift() Angles {
	return Angles{PlaneXW: 0.2, PlaneYW: 0.15, PlaneZW: 0.1}
}

var polychoraNames = [numShapes]string{"5-cell", "tesseract", "hypersphere", "duocylinder",
	"16-cell", "24-cell", "600-cell", "120-cell"}

func (polychora) ShapeName(b BaseShape) string {
	if b >= numShapes {
		return b.String()
	}
	return polychoraNames[b]
}

func (polychora) AppendShaderName(b []byte) []byte {
	return append(b, "polychora_geometry"...)
}

// polychoraTile is the extent a lattice cell is scaled to so that unit sized polytopes fit.
const polychoraTile = 4

const phi = 1.618033988749895

func (polychora) AppendShaderHelpers(b []byte) []byte {
	return append(b, `float pc_5cell(vec4 p) {
	float d = distance(p, vec4(1.0, 1.0, 1.0, 1.0));
	d = min(d, distance(p, vec4(1.0, -1.0, -1.0, 1.0)));
	d = min(d, distance(p, vec4(-1.0, 1.0, -1.0, 1.0)));
	d = min(d, distance(p, vec4(-1.0, -1.0, 1.0, 1.0)));
	return min(d, distance(p, vec4(0.0, 0.0, 0.0, -1.0)));
}
float pc_24cell(vec4 p) {
	vec4 s = abs(p);
	float tmp;
	if (s.x < s.y) { tmp = s.x; s.x = s.y; s.y = tmp; }
	if (s.y < s.z) { tmp = s.y; s.y = s.z; s.z = tmp; }
	if (s.z < s.w) { tmp = s.z; s.z = s.w; s.w = tmp; }
	return s.x + s.y - 2.0;
}
`...)
}

func (polychora) AppendShaderBody(b []byte) []byte {
	return append(b, `const float phi = 1.618033988749895;
vec4 q = (fract(p * grid) - 0.5) * 4.0;
vec4 a = abs(q);
if (shape == 0) return pc_5cell(q);
else if (shape == 1) {
	vec4 e = a - 1.0;
	return length(max(e, 0.0)) + min(max(max(e.x, e.y), max(e.z, e.w)), 0.0);
}
else if (shape == 2) return length(q) - 1.5;
else if (shape == 3) {
	float r1 = length(q.xy) - 1.0;
	float r2 = length(q.zw) - 1.0;
	return sqrt(r1 * r1 + r2 * r2) - 0.5;
}
else if (shape == 4) return a.x + a.y + a.z + a.w - 2.0;
else if (shape == 5) return pc_24cell(q);
else if (shape == 6) return max(max(max(a.x, a.y), max(a.z, a.w)) - phi, (a.x + a.y + a.z + a.w) / phi - 2.0);
return max(length(a) - 2.0, max(max(a.x / phi, a.y * phi), max(a.z / phi, a.w * phi)) - 1.5);`...)
}

func (polychora) Evaluate(shape BaseShape, p Vec4, grid, t float32) float32 {
	q := addScalar4(fract4(p.Scale(grid)), -0.5).Scale(polychoraTile)
	a := abs4(q)
	switch shape {
	case 0:
		return polytope5Cell(q)
	case 1:
		e := addScalar4(a, -1)
		return max4(e, 0).Length() + minf(maxElem4(e), 0)
	case 2:
		return q.Length() - 1.5
	case 3:
		r1 := len2(q.X, q.Y) - 1
		r2 := len2(q.Z, q.W) - 1
		return len2(r1, r2) - 0.5
	case 4:
		return a.X + a.Y + a.Z + a.W - 2
	case 5:
		return polytope24Cell(a)
	case 6:
		return maxf(maxElem4(a)-phi, (a.X+a.Y+a.Z+a.W)/phi-2)
	}
	return maxf(a.Length()-2, maxf(maxf(a.X/phi, a.Y*phi), maxf(a.Z/phi, a.W*phi))-1.5)
}

var fiveCellVertices = [5]Vec4{
	{X: 1, Y: 1, Z: 1, W: 1},
	{X: 1, Y: -1, Z: -1, W: 1},
	{X: -1, Y: 1, Z: -1, W: 1},
	{X: -1, Y: -1, Z: 1, W: 1},
	{W: -1},
}

func polytope5Cell(p Vec4) float32 {
	d := math32.Inf(1)
	for _, v := range fiveCellVertices {
		d = minf(d, p.Add(v.Scale(-1)).Length())
	}
	return d
}

// polytope24Cell expects the absolute value of the point. A single bubble
// pass leaves the largest coordinate first.
func polytope24Cell(s Vec4) float32 {
	if s.X < s.Y {
		s.X, s.Y = s.Y, s.X
	}
	if s.Y < s.Z {
		s.Y, s.Z = s.Z, s.Y
	}
	if s.Z < s.W {
		s.Z, s.W = s.W, s.Z
	}
	return s.X + s.Y - 2
}
