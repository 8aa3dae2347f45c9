package vib3_test

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/vib3"
)

func TestShadeFragmentBounded(t *testing.T) {
	const w, h = 24, 16
	store := vib3.NewParamStore()
	store.UpdatePointer(0.3, 0.7, 0.8)
	store.TriggerPulse(0.5)
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		for geom := 0; geom < vib3.NumGeometries; geom++ {
			store.SetField(vib3.FieldGeometry, float32(geom))
			snap := store.Snapshot()
			for _, role := range vib3.Roles() {
				cfg := vib3.DefaultLayerConfig(role)
				u := vib3.DeriveUniforms(&snap, lib, cfg, w, h, 12345)
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						f := vib3.ShadeFragment(&u, lib, float32(x)+0.5, float32(y)+0.5)
						for _, c := range [...]float32{f.R, f.G, f.B, f.A, f.Value} {
							if math32.IsNaN(c) || math32.IsInf(c, 0) {
								t.Fatalf("%s geometry %d %s: non-finite fragment %+v", name, geom, role, f)
							}
						}
						if f.A < 0 || f.A > cfg.Opacity+1e-6 {
							t.Fatalf("%s geometry %d %s: alpha %g outside [0,%g]", name, geom, role, f.A, cfg.Opacity)
						}
					}
				}
			}
		}
	}
}

func TestDeriveUniformsStable(t *testing.T) {
	store := vib3.NewParamStore()
	store.Merge(map[string]float32{"rot4dXW": 0.4, "geometry": 11, "hue": 90})
	snap := store.Snapshot()
	lib := vib3.Holographic()
	cfg := vib3.DefaultLayerConfig(vib3.RoleHighlight)
	u1 := vib3.DeriveUniforms(&snap, lib, cfg, 64, 48, 1000)
	u2 := vib3.DeriveUniforms(&snap, lib, cfg, 64, 48, 1000)
	if u1 != u2 {
		t.Fatal("identical inputs produced different uniforms")
	}
	u3 := vib3.DeriveUniforms(&snap, lib, cfg, 64, 48, 5000)
	if u1 == u3 {
		t.Error("holographic drift should make rotation time dependent")
	}
	if u1.WithoutTime() != u3.WithoutTime() {
		t.Error("uniforms differ in fields that are not time derived")
	}
	if u1.CoreType != vib3.CoreHypersphere || u1.BaseShape != vib3.ShapeTorus {
		t.Errorf("geometry 11 decoded to (%s,%s)", u1.CoreType, u1.BaseShape)
	}
}

func TestUniformsLookupRoundTrip(t *testing.T) {
	snap := vib3.NewParamStore().Snapshot()
	u := vib3.DeriveUniforms(&snap, vib3.Polychora(), vib3.DefaultLayerConfig(vib3.RoleAccent), 10, 20, 777)
	values := map[string][]float32{}
	u.ForEach(func(name string, v []float32) {
		values[name] = append([]float32(nil), v...)
	})
	decls := vib3.UniformDecls()
	if len(values) != len(decls) {
		t.Fatalf("ForEach visited %d uniforms, declared %d", len(values), len(decls))
	}
	for _, d := range decls {
		if len(values[d.Name]) != d.Size() {
			t.Errorf("%s: got %d components, want %d", d.Name, len(values[d.Name]), d.Size())
		}
	}
	got := vib3.UniformsFromLookup(func(name string) []float32 { return values[name] })
	if got != u {
		t.Errorf("lookup round trip mismatch\n%+v\n%+v", got, u)
	}
}

func TestShapeKindIntensity(t *testing.T) {
	if got := vib3.KindDistance.Intensity(-0.25); got != 0.75 {
		t.Errorf("distance intensity got %g", got)
	}
	if got := vib3.KindDistance.Intensity(3); got != 0 {
		t.Errorf("distance intensity got %g", got)
	}
	if got := vib3.KindDensity.Intensity(0.25); got != 0.25 {
		t.Errorf("density intensity got %g", got)
	}
	if got := vib3.KindDensity.Intensity(-1); got != 0 {
		t.Errorf("density intensity got %g", got)
	}
}

func TestChaosPerturbsValue(t *testing.T) {
	store := vib3.NewParamStore()
	store.SetField(vib3.FieldChaos, 0)
	store.SetField(vib3.FieldRotXZ, 0.7)
	snap := store.Snapshot()
	lib := vib3.Faceted()
	cfg := vib3.DefaultLayerConfig(vib3.RoleContent)
	// Noise vanishes where the rotated depth is zero, so sample away from t=0.
	const timeMs = 5000
	calm := vib3.DeriveUniforms(&snap, lib, cfg, 32, 32, timeMs)
	store.SetField(vib3.FieldChaos, 1)
	snap = store.Snapshot()
	wild := vib3.DeriveUniforms(&snap, lib, cfg, 32, 32, timeMs)
	differ := 0
	for x := 0; x < 32; x++ {
		a := vib3.ShadeFragment(&calm, lib, float32(x)+0.5, 7.5)
		b := vib3.ShadeFragment(&wild, lib, float32(x)+0.5, 7.5)
		if a.Value != b.Value {
			differ++
		}
	}
	if differ == 0 {
		t.Error("chaos had no effect on shape values")
	}
}

func TestPaletteAndColor(t *testing.T) {
	c := vib3.Palette(0.25)
	if math32.Abs(c.X-1) > 1e-4 {
		t.Errorf("palette red channel at quarter turn got %g", c.X)
	}
	gray := vib3.Desaturate(c, 0)
	if gray.X != gray.Y || gray.Y != gray.Z {
		t.Error("zero saturation should produce gray")
	}
	rgba := vib3.RGBA(1, 0.5, 0, 0.5)
	if rgba.A != 128 || rgba.R != 128 {
		t.Errorf("premultiplied conversion got %+v", rgba)
	}
	for _, test := range []struct {
		hue  float32
		want color.RGBA
	}{
		{hue: 0, want: color.RGBA{R: 255, A: 255}},
		{hue: 120, want: color.RGBA{G: 255, A: 255}},
		{hue: 192, want: color.RGBA{G: 204, B: 255, A: 255}},
		{hue: 600, want: color.RGBA{B: 255, A: 255}},
	} {
		if got := vib3.HueColor(test.hue, 1, 1); got != test.want {
			t.Errorf("HueColor(%g) = %+v, want %+v", test.hue, got, test.want)
		}
	}
	if got := vib3.HueColor(40, 0, 0.5); got.R != got.G || got.G != got.B {
		t.Error("zero saturation should produce gray", got)
	}
}
