package gleval_test

import (
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild"
	"github.com/soypat/vib3/gleval"
)

// gradient shades pixels by their window coordinate to check orientation.
type gradient struct {
	lastTime float32
}

func (g *gradient) Bind(u gleval.UniformValues) (gleval.ShadeFunc, error) {
	if v := u.Uniform(vib3.UniformTime); len(v) == 1 {
		g.lastTime = v[0]
	}
	return func(x, y float32) color.RGBA {
		return color.RGBA{R: uint8(x), G: uint8(y), A: 255}
	}, nil
}

func newTestBackend(frag gleval.FragmentProgram) *gleval.CPUBackend {
	return gleval.NewCPUBackend(gleval.CPUConfig{
		Fragments: map[string]gleval.FragmentProgram{"faceted": frag},
		Workers:   3,
	})
}

func linkFaceted(t *testing.T, ctx gleval.Context) gleval.Program {
	t.Helper()
	src, err := glbuild.NewDefaultProgrammer().Source(vib3.Faceted())
	if err != nil {
		t.Fatal(err)
	}
	vs, err := ctx.CompileShader(gleval.StageVertex, src.Vertex)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := ctx.CompileShader(gleval.StageFragment, src.Fragment)
	if err != nil {
		t.Fatal(err)
	}
	prog, err := ctx.LinkProgram(vs, fs)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func TestCPUDrawQuad(t *testing.T) {
	const w, h = 7, 5
	frag := &gradient{}
	backend := newTestBackend(frag)
	surf := gleval.NewImageSurface(w, h)
	ctx, err := backend.Acquire(surf)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Release()
	prog := linkFaceted(t, ctx)
	if err = ctx.UseProgram(prog); err != nil {
		t.Fatal(err)
	}
	loc, err := ctx.UniformLocation(prog, vib3.UniformTime)
	if err != nil || loc < 0 {
		t.Fatalf("u_time location %d: %v", loc, err)
	}
	if err = ctx.SetUniform(loc, 1234); err != nil {
		t.Fatal(err)
	}
	quad, err := ctx.CreateQuad()
	if err != nil {
		t.Fatal(err)
	}
	if err = ctx.Clear(color.RGBA{}); err != nil {
		t.Fatal(err)
	}
	if err = ctx.DrawQuad(quad); err != nil {
		t.Fatal(err)
	}
	if frag.lastTime != 1234 {
		t.Errorf("fragment program saw u_time=%g", frag.lastTime)
	}
	img := surf.Image()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			got := img.RGBAAt(x, y)
			want := color.RGBA{R: uint8(float32(x) + 0.5), G: uint8(float32(h-y) - 0.5), A: 255}
			if got != want {
				t.Fatalf("pixel (%d,%d) got %v, want %v", x, y, got, want)
			}
		}
	}
	if backend.Draws() != 1 {
		t.Errorf("draw count %d", backend.Draws())
	}
}

func TestCPUUniformLocations(t *testing.T) {
	backend := newTestBackend(&gradient{})
	ctx, err := backend.Acquire(gleval.NewImageSurface(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	prog := linkFaceted(t, ctx)
	for _, decl := range vib3.UniformDecls() {
		loc, err := ctx.UniformLocation(prog, decl.Name)
		if err != nil || loc < 0 {
			t.Errorf("uniform %s not discovered: %d %v", decl.Name, loc, err)
		}
	}
	loc, err := ctx.UniformLocation(prog, "u_notDeclared")
	if err != nil || loc != -1 {
		t.Errorf("undeclared uniform got %d %v", loc, err)
	}
	if err = ctx.UseProgram(prog); err != nil {
		t.Fatal(err)
	}
	if err = ctx.SetUniform(-1, 1); err != nil {
		t.Error("write to missing uniform should be ignored:", err)
	}
	rot, _ := ctx.UniformLocation(prog, vib3.UniformRotation)
	if err = ctx.SetUniform(rot, 1, 2); err == nil {
		t.Error("expected component count mismatch error")
	}
	id := vib3.IdentityMat4()
	if err = ctx.SetUniform(rot, id[:]...); err != nil {
		t.Error(err)
	}
	if _, err = ctx.UniformLocation(prog+100, vib3.UniformTime); !errors.Is(err, gleval.ErrInvalidHandle) {
		t.Errorf("want ErrInvalidHandle, got %v", err)
	}
}

func TestCPUCompileErrors(t *testing.T) {
	backend := newTestBackend(&gradient{})
	ctx, err := backend.Acquire(gleval.NewImageSurface(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		stage gleval.Stage
		src   string
		log   string
	}{
		{stage: gleval.StageFragment, src: "   ", log: "empty source"},
		{stage: gleval.StageFragment, src: "void main() { gl_FragColor = vec4(1.0);", log: "unclosed"},
		{stage: gleval.StageFragment, src: "void main() { gl_FragColor = vec4(1.0)); }", log: "unexpected"},
		{stage: gleval.StageFragment, src: "uniform float x;\nvoid foo() {}", log: "void main"},
		{stage: gleval.StageFragment, src: "uniform sampler9 tex;\nvoid main() { gl_FragColor = vec4(1.0); }", log: "unknown uniform type"},
		{stage: gleval.StageFragment, src: "void main() { float a = 1.0; }", log: "no color output"},
	} {
		_, err := ctx.CompileShader(test.stage, test.src)
		var serr *gleval.ShaderError
		if !errors.As(err, &serr) {
			t.Errorf("%q: want ShaderError, got %v", test.src, err)
			continue
		}
		if !strings.Contains(serr.Log, test.log) {
			t.Errorf("%q: log %q does not mention %q", test.src, serr.Log, test.log)
		}
	}
	// Comments are not code.
	_, err = ctx.CompileShader(gleval.StageFragment, "// void main() {\n/* ( */ void main() { gl_FragColor = vec4(1.0); }")
	if err != nil {
		t.Error(err)
	}
}

func TestCPULinkUnknownLibrary(t *testing.T) {
	backend := gleval.NewCPUBackend(gleval.CPUConfig{})
	ctx, err := backend.Acquire(gleval.NewImageSurface(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	src, _ := glbuild.NewDefaultProgrammer().Source(vib3.Quantum())
	vs, _ := ctx.CompileShader(gleval.StageVertex, src.Vertex)
	fs, err := ctx.CompileShader(gleval.StageFragment, src.Fragment)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ctx.LinkProgram(vs, fs)
	var serr *gleval.ShaderError
	if !errors.As(err, &serr) || serr.Op != "link" || !strings.Contains(serr.Log, "quantum") {
		t.Fatalf("want link error naming library, got %v", err)
	}
	if _, err = ctx.LinkProgram(fs, vs); err == nil {
		t.Error("swapped stages linked")
	}
}

func TestCPUContextLoss(t *testing.T) {
	backend := newTestBackend(&gradient{})
	ctx, err := backend.Acquire(gleval.NewImageSurface(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	prog := linkFaceted(t, ctx)
	quad, _ := ctx.CreateQuad()
	ctx.UseProgram(prog)
	backend.LoseContext()
	if !ctx.IsContextLost() {
		t.Fatal("context not lost")
	}
	if err = ctx.DrawQuad(quad); !errors.Is(err, gleval.ErrContextLost) {
		t.Errorf("draw after loss: %v", err)
	}
	if _, err = ctx.CompileShader(gleval.StageVertex, "void main() {}"); !errors.Is(err, gleval.ErrContextLost) {
		t.Errorf("compile after loss: %v", err)
	}
	ctx.Release()
	ctx.Release()

	backend.SetAvailable(false)
	if _, err = backend.Acquire(gleval.NewImageSurface(3, 3)); !errors.Is(err, gleval.ErrBackendNotAvailable) {
		t.Errorf("acquire unavailable: %v", err)
	}
	backend.SetAvailable(true)
	ctx, err = backend.Acquire(gleval.NewImageSurface(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	if ctx.IsContextLost() {
		t.Error("fresh context reports loss")
	}
	if backend.Acquisitions() != 2 {
		t.Errorf("acquisitions %d", backend.Acquisitions())
	}
}

func TestCPUAcquireWrongSurface(t *testing.T) {
	backend := newTestBackend(&gradient{})
	_, err := backend.Acquire(&gleval.GLSurface{})
	if !errors.Is(err, gleval.ErrBackendNotAvailable) {
		t.Errorf("want ErrBackendNotAvailable, got %v", err)
	}
}

func TestViewportResizes(t *testing.T) {
	backend := newTestBackend(&gradient{})
	surf := gleval.NewImageSurface(4, 4)
	ctx, err := backend.Acquire(surf)
	if err != nil {
		t.Fatal(err)
	}
	if err = ctx.Viewport(9, 2); err != nil {
		t.Fatal(err)
	}
	if w, h := surf.Size(); w != 9 || h != 2 {
		t.Errorf("surface size %dx%d", w, h)
	}
}
