package vib3

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

type quantum struct{}

// Quantum returns the quantum shape library: smoothstep density lattices
// with vertex and edge highlights.
func Quantum() ShapeLibrary { return quantum{} }

func (quantum) Name() string { return "quantum" }
func (quantum) Kind() ShapeKind { return KindDensity }

func (quantum) Drift() Angles {
	return Angles{PlaneXW: 0.05, PlaneYW: 0.03, PlaneZW: 0.04}
}

var quantumNames = [numShapes]string{"tetrahedral lattice", "hypercube lattice", "sphere lattice",
	"torus lattice", "klein lattice", "fractal lattice", "wave lattice", "crystal lattice"}

func (quantum) ShapeName(b BaseShape) string {
	if b >= numShapes {
		return b.String()
	}
	return quantumNames[b]
}

func (quantum) AppendShaderName(b []byte) []byte {
	return append(b, "quantum_geometry"...)
}

func (quantum) AppendShaderHelpers(b []byte) []byte {
	return append(b, `float q_tetra(vec3 p, float g) {
	vec3 q = fract(p * g) - 0.5;
	float d = min(min(length(q), length(q - vec3(0.4, 0.0, 0.0))), min(length(q - vec3(0.0, 0.4, 0.0)), length(q - vec3(0.0, 0.0, 0.4))));
	float vertices = 1.0 - smoothstep(0.0, 0.04, d);
	float edges = 1.0 - smoothstep(0.0, 0.02, abs(length(q.xy) - 0.2));
	edges = max(edges, 1.0 - smoothstep(0.0, 0.02, abs(length(q.yz) - 0.2)));
	edges = max(edges, 1.0 - smoothstep(0.0, 0.02, abs(length(q.xz) - 0.2)));
	return max(vertices, edges * 0.5);
}
float q_hypercube(vec3 p, float g) {
	vec3 grid = fract(p * g);
	vec3 e = min(grid, 1.0 - grid);
	float lattice = 1.0 - smoothstep(0.0, 0.03, min(min(e.x, e.y), e.z));
	vec3 c = abs(grid - 0.5);
	float vertices = 1.0 - smoothstep(0.45, 0.5, max(max(c.x, c.y), c.z));
	return max(lattice * 0.7, vertices);
}
float q_sphere(vec3 p, float g) {
	vec3 c = fract(p * g) - 0.5;
	float sphere = 1.0 - smoothstep(0.15, 0.25, length(c));
	float r = length(c.xy);
	float rings = max(1.0 - smoothstep(0.0, 0.02, abs(r - 0.3)), 1.0 - smoothstep(0.0, 0.02, abs(r - 0.2)));
	return max(sphere, rings * 0.6);
}
float q_torus(vec3 p, float g) {
	vec3 c = fract(p * g) - 0.5;
	float d = length(vec2(length(c.xy) - 0.3, c.z));
	float torus = 1.0 - smoothstep(0.08, 0.12, d);
	return max(torus, 0.0) + sin(atan(c.y, c.x) * 8.0) * 0.02;
}
float q_klein(vec3 p, float g) {
	vec3 c = fract(p * g) - 0.5;
	float u = atan(c.y, c.x) / 3.14159 + 1.0;
	float v = c.z + 0.5;
	float r = 2.0 + cos(u * 0.5);
	vec3 k = vec3(r * cos(u), r * sin(u), sin(u * 0.5) + v) * 0.1;
	return 1.0 - smoothstep(0.1, 0.15, length(c - k));
}
float q_fractal(vec3 p, float g) {
	vec3 c = abs(fract(p * g) * 2.0 - 1.0);
	float d = length(max(c - 0.3, 0.0));
	float s = 0.5;
	for (int i = 0; i < 3; i++) {
		c = abs(c * 2.0 - 1.0);
		d = min(d, length(max(c - 0.3, 0.0)) * s);
		s *= 0.5;
	}
	return 1.0 - smoothstep(0.0, 0.05, d);
}
float q_wave(vec3 p, float g, float t) {
	vec3 c = fract(p * g) - 0.5;
	float w = (sin(p.x * g * 2.0 + t * 2.0) + sin(p.y * g * 1.8 + t * 1.5) + sin(p.z * g * 2.2 + t * 1.8)) / 3.0;
	return max(0.0, w * (1.0 - length(c) * 2.0));
}
float q_crystal(vec3 p, float g) {
	vec3 c = fract(p * g) - 0.5;
	vec3 a = abs(c);
	float crystal = max(max(a.x + a.y, a.y + a.z), a.x + a.z);
	crystal = 1.0 - smoothstep(0.3, 0.4, crystal);
	float faces = max(max(1.0 - smoothstep(0.0, 0.02, abs(a.x - 0.35)), 1.0 - smoothstep(0.0, 0.02, abs(a.y - 0.35))),
		1.0 - smoothstep(0.0, 0.02, abs(a.z - 0.35)));
	return max(crystal, faces * 0.5);
}
`...)
}

func (quantum) AppendShaderBody(b []byte) []byte {
	return append(b, `vec3 q = p.xyz;
if (shape == 0) return q_tetra(q, grid);
else if (shape == 1) return q_hypercube(q, grid);
else if (shape == 2) return q_sphere(q, grid);
else if (shape == 3) return q_torus(q, grid);
else if (shape == 4) return q_klein(q, grid);
else if (shape == 5) return q_fractal(q, grid);
else if (shape == 6) return q_wave(q, grid, t);
return q_crystal(q, grid);`...)
}

func (quantum) Evaluate(shape BaseShape, p4 Vec4, g, t float32) float32 {
	p := p4.Vec3()
	switch shape {
	case ShapeTetrahedron:
		return quantumTetra(p, g)
	case ShapeHypercube:
		return quantumHypercube(p, g)
	case ShapeSphere:
		c := cell3(p, g)
		sphere := 1 - smoothstep(0.15, 0.25, ms3.Norm(c))
		r := len2(c.X, c.Y)
		rings := maxf(ring(r-0.3, 0.02), ring(r-0.2, 0.02))
		return maxf(sphere, rings*0.6)
	case ShapeTorus:
		c := cell3(p, g)
		d := len2(len2(c.X, c.Y)-0.3, c.Z)
		torus := 1 - smoothstep(0.08, 0.12, d)
		return maxf(torus, 0) + math32.Sin(math32.Atan2(c.Y, c.X)*8)*0.02
	case ShapeKlein:
		c := cell3(p, g)
		u := math32.Atan2(c.Y, c.X)/3.14159 + 1
		v := c.Z + 0.5
		r := 2 + math32.Cos(u*0.5)
		k := ms3.Scale(0.1, ms3.Vec{X: r * math32.Cos(u), Y: r * math32.Sin(u), Z: math32.Sin(u*0.5) + v})
		return 1 - smoothstep(0.1, 0.15, ms3.Norm(ms3.Sub(c, k)))
	case ShapeFractal:
		return quantumFractal(p, g)
	case ShapeWave:
		c := cell3(p, g)
		w := (math32.Sin(p.X*g*2+t*2) + math32.Sin(p.Y*g*1.8+t*1.5) + math32.Sin(p.Z*g*2.2+t*1.8)) / 3
		return maxf(0, w*(1-ms3.Norm(c)*2))
	}
	return quantumCrystal(p, g)
}

func quantumTetra(p ms3.Vec, g float32) float32 {
	q := cell3(p, g)
	d := minf(
		minf(ms3.Norm(q), ms3.Norm(ms3.Sub(q, ms3.Vec{X: 0.4}))),
		minf(ms3.Norm(ms3.Sub(q, ms3.Vec{Y: 0.4})), ms3.Norm(ms3.Sub(q, ms3.Vec{Z: 0.4}))),
	)
	vertices := 1 - smoothstep(0, 0.04, d)
	edges := ring(len2(q.X, q.Y)-0.2, 0.02)
	edges = maxf(edges, ring(len2(q.Y, q.Z)-0.2, 0.02))
	edges = maxf(edges, ring(len2(q.X, q.Z)-0.2, 0.02))
	return maxf(vertices, edges*0.5)
}

func quantumHypercube(p ms3.Vec, g float32) float32 {
	grid := fract3(ms3.Scale(g, p))
	e := ms3.Vec{X: minf(grid.X, 1-grid.X), Y: minf(grid.Y, 1-grid.Y), Z: minf(grid.Z, 1-grid.Z)}
	lattice := 1 - smoothstep(0, 0.03, minf(minf(e.X, e.Y), e.Z))
	c := ms3.AbsElem(ms3.AddScalar(-0.5, grid))
	vertices := 1 - smoothstep(0.45, 0.5, maxf(maxf(c.X, c.Y), c.Z))
	return maxf(lattice*0.7, vertices)
}

func quantumFractal(p ms3.Vec, g float32) float32 {
	fold := func(v ms3.Vec) ms3.Vec {
		return ms3.AbsElem(ms3.AddScalar(-1, ms3.Scale(2, v)))
	}
	c := fold(fract3(ms3.Scale(g, p)))
	d := ms3.Norm(max3(ms3.AddScalar(-0.3, c), 0))
	s := float32(0.5)
	for i := 0; i < 3; i++ {
		c = fold(c)
		d = minf(d, ms3.Norm(max3(ms3.AddScalar(-0.3, c), 0))*s)
		s *= 0.5
	}
	return 1 - smoothstep(0, 0.05, d)
}

func quantumCrystal(p ms3.Vec, g float32) float32 {
	a := ms3.AbsElem(cell3(p, g))
	crystal := maxf(maxf(a.X+a.Y, a.Y+a.Z), a.X+a.Z)
	crystal = 1 - smoothstep(0.3, 0.4, crystal)
	faces := maxf(maxf(ring(a.X-0.35, 0.02), ring(a.Y-0.35, 0.02)), ring(a.Z-0.35, 0.02))
	return maxf(crystal, faces*0.5)
}
