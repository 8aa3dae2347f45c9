package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

type faceted struct{}

// Faceted returns the faceted shape library: eight sharp lattice distance fields.
func Faceted() ShapeLibrary { return faceted{} }

func (faceted) Name() string { return "faceted" }
func (faceted) Kind() ShapeKind { return KindDistance }
func (faceted) Drift() Angles { return Angles{} }
func (faceted) ShapeName(b BaseShape) string {
	return b.String()
}

func (faceted) AppendShaderName(b []byte) []byte {
	return append(b, "faceted_geometry"...)
}

func (faceted) AppendShaderHelpers(b []byte) []byte { return b }

func (faceted) AppendShaderBody(b []byte) []byte {
	return append(b, `vec4 q = fract(p * grid);
if (shape == 0) {
	vec3 c = q.xyz - 0.5;
	float d = min(min(abs(dot(c, vec3(0.57735027))), abs(dot(c, vec3(-0.57735027, -0.57735027, 0.57735027)))),
		min(abs(dot(c, vec3(-0.57735027, 0.57735027, -0.57735027))), abs(dot(c, vec3(0.57735027, -0.57735027, -0.57735027)))));
	return min(d, min(q.w, 1.0 - q.w));
} else if (shape == 1) {
	vec4 d = min(q, 1.0 - q);
	return min(min(d.x, d.y), min(d.z, d.w));
} else if (shape == 2) {
	float spheres = abs(fract(length(p) * grid) - 0.5) * 2.0;
	return spheres + sin(atan(p.y, p.x) * 3.0) * 0.2;
} else if (shape == 3) {
	float torus = length(vec2(length(p.xy) - 2.0, p.z)) - 0.8;
	return torus + sin(p.x * grid) * sin(p.y * grid) * 0.3;
} else if (shape == 4) {
	float u = atan(p.y, p.x);
	float v = atan(p.w, p.z);
	return length(p) - 2.0 + sin(u * grid) * sin(v * grid) * 0.4;
} else if (shape == 5) {
	vec4 f = abs(q * 2.0 - 1.0);
	return length(max(f - 0.5, 0.0));
} else if (shape == 6) {
	return sin(p.x * grid + t) * sin(p.y * grid + t * 1.3) * sin(p.z * grid * 0.8 + t * 0.7);
}
vec4 c = q - 0.5;
return max(max(abs(c.x), abs(c.y)), max(abs(c.z), abs(c.w)));`...)
}

func (faceted) Evaluate(shape BaseShape, p Vec4, grid, t float32) float32 {
	q := fract4(p.Scale(grid))
	switch shape {
	case ShapeTetrahedron:
		c := ms3.AddScalar(-0.5, q.Vec3())
		d := minf(minf(absf(ms3.Dot(c, tetraBasis[0])), absf(ms3.Dot(c, tetraBasis[1]))),
			minf(absf(ms3.Dot(c, tetraBasis[2])), absf(ms3.Dot(c, tetraBasis[3]))))
		return minf(d, minf(q.W, 1-q.W))
	case ShapeHypercube:
		return minElem4(Vec4{X: minf(q.X, 1-q.X), Y: minf(q.Y, 1-q.Y), Z: minf(q.Z, 1-q.Z), W: minf(q.W, 1-q.W)})
	case ShapeSphere:
		spheres := absf(fractf(p.Length()*grid)-0.5) * 2
		return spheres + math32.Sin(math32.Atan2(p.Y, p.X)*3)*0.2
	case ShapeTorus:
		torus := len2(len2(p.X, p.Y)-2, p.Z) - 0.8
		return torus + math32.Sin(p.X*grid)*math32.Sin(p.Y*grid)*0.3
	case ShapeKlein:
		u := math32.Atan2(p.Y, p.X)
		v := math32.Atan2(p.W, p.Z)
		return p.Length() - 2 + math32.Sin(u*grid)*math32.Sin(v*grid)*0.4
	case ShapeFractal:
		f := abs4(addScalar4(q.Scale(2), -1))
		return max4(addScalar4(f, -0.5), 0).Length()
	case ShapeWave:
		return math32.Sin(p.X*grid+t) * math32.Sin(p.Y*grid+t*1.3) * math32.Sin(p.Z*grid*0.8+t*0.7)
	}
	return maxElem4(abs4(addScalar4(q, -0.5)))
}
