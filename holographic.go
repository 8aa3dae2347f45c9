package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

type holographic struct{}

// Holographic returns the holographic shape library: shimmering density
// lattices with interference and volumetric glow.
func Holographic() ShapeLibrary { return holographic{} }

func (holographic) Name() string { return "holographic" }
func (holographic) Kind() ShapeKind { return KindDensity }
func (holographic) Drift() Angles { return Angles{PlaneZW: 0.25} }

func (holographic) ShapeName(b BaseShape) string {
	if b >= numShapes {
		return b.String()
	}
	return "holographic " + shapeNames[b]
}

func (holographic) AppendShaderName(b []byte) []byte {
	return append(b, "holographic_geometry"...)
}

func (holographic) AppendShaderHelpers(b []byte) []byte {
	return append(b, `float h_tetra(vec3 p, float g, float t) {
	vec3 q = fract(p * g) - 0.5;
	float d1 = length(q);
	float d2 = length(q - vec3(0.35, 0.0, 0.0));
	float d = min(min(min(d1, d2), min(length(q - vec3(0.0, 0.35, 0.0)), length(q - vec3(0.0, 0.0, 0.35)))),
		min(min(length(q - vec3(0.2, 0.2, 0.0)), length(q - vec3(0.2, 0.0, 0.2))), length(q - vec3(0.0, 0.2, 0.2))));
	float vertices = 1.0 - smoothstep(0.0, 0.03, d);
	float shimmer = sin(t * 2.0) * 0.02;
	float edges = 1.0 - smoothstep(0.0, 0.015, abs(length(q.xy) - (0.18 + shimmer)));
	edges = max(edges, 1.0 - smoothstep(0.0, 0.015, abs(length(q.yz) - (0.18 + shimmer * 0.8))));
	edges = max(edges, 1.0 - smoothstep(0.0, 0.015, abs(length(q.xz) - (0.18 + shimmer * 1.2))));
	float interference = sin(d1 * 25.0 + t * 3.0) * sin(d2 * 22.0 + t * 2.5) * 0.1;
	return max(vertices, edges * 0.7) + interference + exp(-d1 * 3.0) * 0.15;
}
float h_hypercube(vec3 p, float g, float t) {
	vec3 q = fract(p * g) - 0.5;
	vec3 e = 1.0 - smoothstep(0.0, 0.025, abs(q));
	float wireframe = max(max(e.x, e.y), e.z);
	float vertices = 0.0;
	for (int i = 0; i < 8; i++) {
		float fi = float(i);
		vec3 corner = vec3(mod(fi, 2.0), mod(floor(fi / 2.0), 2.0), floor(fi / 4.0)) - 0.5;
		vertices = max(vertices, 1.0 - smoothstep(0.0, 0.04, length(q - corner * 0.4)));
	}
	float r = length(q);
	return wireframe * 0.8 + vertices + sin(r * 20.0 + t * 2.0) * 0.08 + exp(-r * 2.5) * 0.12;
}
float h_klein(vec3 p, float g) {
	vec3 q = fract(p * g);
	float u = q.x * 6.28318;
	float v = q.y * 6.28318;
	float x = cos(u) * (3.0 + cos(u * 0.5) * sin(v) - sin(u * 0.5) * sin(2.0 * v));
	float klein = length(vec2(x, q.z)) - 0.1;
	return 1.0 - smoothstep(0.0, 0.05, abs(klein));
}
float h_fractal(vec3 p, float g) {
	vec3 q = p * g;
	float scale = 1.0;
	float f = 0.0;
	for (int i = 0; i < 4; i++) {
		q = fract(q) - 0.5;
		f += length(q) / scale;
		scale *= 2.0;
		q *= 2.0;
	}
	return 1.0 - smoothstep(0.0, 1.0, f);
}
`...)
}

func (holographic) AppendShaderBody(b []byte) []byte {
	return append(b, `vec3 q = p.xyz;
if (shape == 0) return h_tetra(q, grid, t);
else if (shape == 1) return h_hypercube(q, grid, t);
else if (shape == 2) return 1.0 - smoothstep(0.2, 0.5, length(fract(q * grid) - 0.5));
else if (shape == 3) {
	vec3 c = fract(q * grid) - 0.5;
	return 1.0 - smoothstep(0.0, 0.1, length(vec2(length(c.xy) - 0.3, c.z)));
}
else if (shape == 4) return h_klein(q, grid);
else if (shape == 5) return h_fractal(q, grid);
else if (shape == 6) {
	vec3 w = q * grid;
	return smoothstep(-0.5, 0.5, sin(w.x * 2.0) * sin(w.y * 2.0) * sin(w.z * 2.0 + t));
}
vec3 c = abs(fract(q * grid) - 0.5);
return 1.0 - smoothstep(0.3, 0.5, max(max(c.x, c.y), c.z));`...)
}

func (holographic) Evaluate(shape BaseShape, p4 Vec4, g, t float32) float32 {
	p := p4.Vec3()
	switch shape {
	case ShapeTetrahedron:
		return holoTetra(p, g, t)
	case ShapeHypercube:
		return holoHypercube(p, g, t)
	case ShapeSphere:
		return 1 - smoothstep(0.2, 0.5, ms3.Norm(cell3(p, g)))
	case ShapeTorus:
		c := cell3(p, g)
		return 1 - smoothstep(0, 0.1, len2(len2(c.X, c.Y)-0.3, c.Z))
	case ShapeKlein:
		q := fract3(ms3.Scale(g, p))
		u := q.X * tau
		v := q.Y * tau
		x := math32.Cos(u) * (3 + math32.Cos(u*0.5)*math32.Sin(v) - math32.Sin(u*0.5)*math32.Sin(2*v))
		klein := len2(x, q.Z) - 0.1
		return ring(klein, 0.05)
	case ShapeFractal:
		q := ms3.Scale(g, p)
		scale := float32(1)
		var f float32
		for i := 0; i < 4; i++ {
			q = ms3.AddScalar(-0.5, fract3(q))
			f += ms3.Norm(q) / scale
			scale *= 2
			q = ms3.Scale(2, q)
		}
		return 1 - smoothstep(0, 1, f)
	case ShapeWave:
		w := ms3.Scale(g, p)
		return smoothstep(-0.5, 0.5, math32.Sin(w.X*2)*math32.Sin(w.Y*2)*math32.Sin(w.Z*2+t))
	}
	c := ms3.AbsElem(cell3(p, g))
	return 1 - smoothstep(0.3, 0.5, maxf(maxf(c.X, c.Y), c.Z))
}

func holoTetra(p ms3.Vec, g, t float32) float32 {
	q := cell3(p, g)
	d1 := ms3.Norm(q)
	d2 := ms3.Norm(ms3.Sub(q, ms3.Vec{X: 0.35}))
	dist := func(x, y, z float32) float32 { return ms3.Norm(ms3.Sub(q, ms3.Vec{X: x, Y: y, Z: z})) }
	d := minf(
		minf(minf(d1, d2), minf(dist(0, 0.35, 0), dist(0, 0, 0.35))),
		minf(minf(dist(0.2, 0.2, 0), dist(0.2, 0, 0.2)), dist(0, 0.2, 0.2)),
	)
	vertices := 1 - smoothstep(0, 0.03, d)
	shimmer := math32.Sin(t*2) * 0.02
	edges := ring(len2(q.X, q.Y)-(0.18+shimmer), 0.015)
	edges = maxf(edges, ring(len2(q.Y, q.Z)-(0.18+shimmer*0.8), 0.015))
	edges = maxf(edges, ring(len2(q.X, q.Z)-(0.18+shimmer*1.2), 0.015))
	interference := math32.Sin(d1*25+t*3) * math32.Sin(d2*22+t*2.5) * 0.1
	return maxf(vertices, edges*0.7) + interference + math32.Exp(-d1*3)*0.15
}

func holoHypercube(p ms3.Vec, g, t float32) float32 {
	q := cell3(p, g)
	a := ms3.AbsElem(q)
	wireframe := maxf(maxf(ring(a.X, 0.025), ring(a.Y, 0.025)), ring(a.Z, 0.025))
	var vertices float32
	for i := 0; i < 8; i++ {
		corner := ms3.Vec{X: float32(i%2) - 0.5, Y: float32((i/2)%2) - 0.5, Z: float32(i/4) - 0.5}
		vertices = maxf(vertices, 1-smoothstep(0, 0.04, ms3.Norm(ms3.Sub(q, ms3.Scale(0.4, corner)))))
	}
	r := ms3.Norm(q)
	return wireframe*0.8 + vertices + math32.Sin(r*20+t*2)*0.08 + math32.Exp(-r*2.5)*0.12
}
