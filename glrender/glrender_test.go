package glrender_test

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild"
	"github.com/soypat/vib3/gleval"
	"github.com/soypat/vib3/glrender"
)

const testW, testH = 16, 12

func newSystem(t *testing.T, lib vib3.ShapeLibrary, backend gleval.Backend) *glrender.LayerSystem {
	t.Helper()
	ls := glrender.NewImageSystem(lib.Name(), lib, nil, backend, testW, testH)
	for _, l := range ls.Layers() {
		if l.State() != glrender.StateActive {
			t.Fatalf("%s layer in state %s", l.Role(), l.State())
		}
	}
	return ls
}

func newLayer(t *testing.T, backend gleval.Backend, cfg glrender.VisualizerConfig) *glrender.Visualizer {
	t.Helper()
	cfg.Backend = backend
	if cfg.Library == nil {
		cfg.Library = vib3.Faceted()
	}
	v := glrender.NewVisualizer(cfg)
	role := vib3.RoleContent
	v.Initialize(gleval.NewImageSurface(testW, testH), role, vib3.DefaultLayerConfig(role))
	return v
}

func TestContextLossRecovery(t *testing.T) {
	backend := glrender.NewSoftwareBackend(2)
	v := newLayer(t, backend, glrender.VisualizerConfig{})
	if v.State() != glrender.StateActive {
		t.Fatal("initial state", v.State())
	}
	snap := vib3.NewParamStore().Snapshot()
	if !v.RenderFrame(&snap, 10) {
		t.Fatal("active visualizer did not draw")
	}
	backend.LoseContext()
	if v.RenderFrame(&snap, 20) {
		t.Error("drew on a lost context")
	}
	if v.State() != glrender.StateLost {
		t.Fatal("want lost state, got", v.State())
	}
	if v.RenderFrame(&snap, 30) {
		t.Error("lost visualizer drew")
	}
	if err := v.ReinitializeContext(); err != nil {
		t.Fatal(err)
	}
	if v.State() != glrender.StateActive {
		t.Fatal("want active after reinitialize, got", v.State())
	}
	if v.Links() != 2 {
		t.Errorf("want freshly linked program, links=%d", v.Links())
	}
	if !v.RenderFrame(&snap, 40) {
		t.Error("reinitialized visualizer did not draw")
	}
	if err := v.ReinitializeContext(); err == nil {
		t.Error("reinitializing an active visualizer should fail")
	}
}

func TestReinitializeFailure(t *testing.T) {
	backend := glrender.NewSoftwareBackend(1)
	v := newLayer(t, backend, glrender.VisualizerConfig{})
	v.HandleContextLoss()
	backend.SetAvailable(false)
	if err := v.ReinitializeContext(); err == nil {
		t.Fatal("expected reinitialization error")
	}
	if v.State() != glrender.StateFailed {
		t.Fatal("want failed, got", v.State())
	}
	snap := vib3.NewParamStore().Snapshot()
	if v.RenderFrame(&snap, 0) {
		t.Error("failed visualizer drew")
	}
	if v.Retry() {
		t.Error("retry succeeded with backend down")
	}
	backend.SetAvailable(true)
	if !v.Retry() {
		t.Fatal("retry failed with backend up, state", v.State())
	}
	if !v.RenderFrame(&snap, 0) {
		t.Error("retried visualizer did not draw")
	}
}

func TestCompileFailureIsolated(t *testing.T) {
	backend := glrender.NewSoftwareBackend(1)
	lib := vib3.Quantum()
	ls := glrender.NewLayerSystem("quantum", lib, nil)
	for _, role := range vib3.Roles() {
		opts := glrender.LayerOptions{
			Backend: backend,
			Surface: gleval.NewImageSurface(testW, testH),
		}
		if role == vib3.RoleShadow {
			src, _ := glbuild.NewDefaultProgrammer().Source(lib)
			src.Fragment = "#pragma vib3_library quantum\nvoid main() { gl_FragColor = vec4(1.0; }"
			opts.Visualizer.Source = src
		}
		ls.AddLayer(role, opts)
	}
	bad, ok := ls.Layer(vib3.RoleShadow)
	if !ok {
		t.Fatal("missing shadow layer")
	}
	if bad.State() != glrender.StateNoProgram {
		t.Fatal("want no program state, got", bad.State())
	}
	if bad.Initialize(bad.Surface(), vib3.RoleShadow, bad.LayerConfig()) {
		t.Fatal("initialize with a broken program reported success")
	}
	if bad.State() != glrender.StateNoProgram {
		t.Fatal("want no program state after reinitializing, got", bad.State())
	}
	ls.Activate()
	if n := ls.RenderFrame(100); n != vib3.NumRoles-1 {
		t.Errorf("want %d layers drawn, got %d", vib3.NumRoles-1, n)
	}
	if bad.Frames() != 0 {
		t.Error("programless layer drew")
	}
	for _, l := range ls.Layers() {
		if l != bad && l.Frames() != 1 {
			t.Errorf("%s drew %d frames", l.Role(), l.Frames())
		}
	}
}

func TestInitializeFallback(t *testing.T) {
	backend := glrender.NewSoftwareBackend(1)
	backend.SetAvailable(false)
	fallback := image.NewRGBA(image.Rect(0, 0, 96, 48))
	v := newLayer(t, backend, glrender.VisualizerConfig{Fallback: fallback})
	if v.State() != glrender.StateFallback {
		t.Fatal("want fallback, got", v.State())
	}
	bg := fallback.RGBAAt(0, 0)
	if bg.A != 255 {
		t.Error("fallback background not drawn")
	}
	text := 0
	for y := 0; y < 48; y++ {
		for x := 0; x < 96; x++ {
			if fallback.RGBAAt(x, y) != bg {
				text++
			}
		}
	}
	if text == 0 {
		t.Error("fallback notice has no text")
	}
	snap := vib3.NewParamStore().Snapshot()
	if v.RenderFrame(&snap, 0) {
		t.Error("fallback visualizer drew")
	}
	// A wrong surface type is also unavailable.
	v = glrender.NewVisualizer(glrender.VisualizerConfig{Backend: glrender.NewSoftwareBackend(1), Library: vib3.Faceted()})
	if v.Initialize(&gleval.GLSurface{}, vib3.RoleAccent, vib3.DefaultLayerConfig(vib3.RoleAccent)) {
		t.Error("initialized on unsupported surface")
	}
	if v.State() != glrender.StateFallback {
		t.Error("want fallback, got", v.State())
	}
}

func TestSnapshotSharedAcrossLayers(t *testing.T) {
	ls := newSystem(t, vib3.Holographic(), glrender.NewSoftwareBackend(2))
	ls.UpdateParameters(map[string]float32{"hue": 45, "geometryIndex": 17, "chaos": 0.6})
	ls.RenderFrame(500)
	var ref vib3.Uniforms
	for i, l := range ls.Layers() {
		u, ok := l.LastUniforms()
		if !ok {
			t.Fatal("no uniforms for", l.Role())
		}
		if u.CoreType != vib3.CoreHypertetra || u.BaseShape != vib3.ShapeHypercube {
			t.Errorf("geometry 17 decoded to (%d,%d)", u.CoreType, u.BaseShape)
		}
		// Strip per layer fields.
		u.RoleIntensity, u.LayerScale, u.LayerOpacity, u.LayerTint, u.LayerBlur = 0, 0, 0, [3]float32{}, 0
		if i == 0 {
			ref = u
		} else if u != ref {
			t.Errorf("%s rendered a different parameter state", l.Role())
		}
	}
}

func TestUniformsStableAcrossFrames(t *testing.T) {
	ls := newSystem(t, vib3.Polychora(), glrender.NewSoftwareBackend(2))
	content, _ := ls.Layer(vib3.RoleContent)
	ls.RenderFrame(1000)
	u1, _ := content.LastUniforms()
	ls.RenderFrame(1000)
	u2, _ := content.LastUniforms()
	if u1 != u2 {
		t.Error("identical state and time produced different uniforms")
	}
	ls.RenderFrame(2500)
	u3, _ := content.LastUniforms()
	if u3.WithoutTime() != u1.WithoutTime() {
		t.Error("uniforms changed outside time derived fields")
	}
	if u3.Time == u1.Time {
		t.Error("time not updated")
	}
}

type countingContext struct {
	gleval.Context
	lookups *int
}

func (c countingContext) UniformLocation(p gleval.Program, name string) (gleval.UniformLocation, error) {
	*c.lookups++
	return c.Context.UniformLocation(p, name)
}

type countingBackend struct {
	gleval.Backend
	lookups int
}

func (b *countingBackend) Acquire(s gleval.Surface) (gleval.Context, error) {
	ctx, err := b.Backend.Acquire(s)
	if err != nil {
		return nil, err
	}
	return countingContext{Context: ctx, lookups: &b.lookups}, nil
}

func TestUniformsResolvedOnce(t *testing.T) {
	backend := &countingBackend{Backend: glrender.NewSoftwareBackend(1)}
	v := newLayer(t, backend, glrender.VisualizerConfig{})
	want := len(vib3.UniformDecls())
	if backend.lookups != want {
		t.Fatalf("want %d lookups at link, got %d", want, backend.lookups)
	}
	snap := vib3.NewParamStore().Snapshot()
	for i := 0; i < 5; i++ {
		v.RenderFrame(&snap, float32(i)*16)
	}
	if backend.lookups != want {
		t.Errorf("uniforms resolved again during frames: %d lookups", backend.lookups)
	}
}

func TestSoftwareMatchesReference(t *testing.T) {
	lib := vib3.Faceted()
	store := vib3.NewParamStore()
	store.Merge(map[string]float32{"geometry": 9, "rot4dXW": 0.7, "intensity": 1})
	ls := glrender.NewLayerSystem("faceted", lib, store)
	surf := gleval.NewImageSurface(testW, testH)
	content := ls.AddLayer(vib3.RoleContent, glrender.LayerOptions{Backend: glrender.NewSoftwareBackend(3), Surface: surf})
	if ls.RenderFrame(750) != 1 {
		t.Fatal("content layer did not draw")
	}
	u, _ := content.LastUniforms()
	img := surf.Image()
	for y := 0; y < testH; y++ {
		for x := 0; x < testW; x++ {
			f := vib3.ShadeFragment(&u, lib, float32(x)+0.5, float32(testH-y)-0.5)
			want := vib3.RGBA(f.R, f.G, f.B, f.A)
			if got := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestInteractionDecay(t *testing.T) {
	ls := newSystem(t, vib3.Faceted(), glrender.NewSoftwareBackend(1))
	ls.Store().TriggerPulse(1)
	ls.Store().UpdatePointer(0.2, 0.8, 1)
	for i := 0; i < 50; i++ {
		ls.RenderFrame(float32(i) * 16)
		p := ls.Store().Params()
		if click := p.Get(vib3.FieldClickIntensity); click < 0 {
			t.Fatal("negative click intensity", click)
		}
	}
	p := ls.Store().Params()
	if click := p.Get(vib3.FieldClickIntensity); click >= 0.02 {
		t.Errorf("click intensity %g after 50 frames", click)
	}
	if mouse := p.Get(vib3.FieldMouseIntensity); mouse >= 0.1 || mouse < 0 {
		t.Errorf("mouse intensity %g after 50 frames", mouse)
	}
}

func TestSchedulerTick(t *testing.T) {
	backend := glrender.NewSoftwareBackend(1)
	a := glrender.NewLayerSystem("a", vib3.Faceted(), nil)
	a.AddLayer(vib3.RoleContent, glrender.LayerOptions{Backend: backend, Surface: gleval.NewImageSurface(4, 4)})
	b := glrender.NewLayerSystem("b", vib3.Quantum(), nil)
	b.AddLayer(vib3.RoleContent, glrender.LayerOptions{Backend: backend, Surface: gleval.NewImageSurface(4, 4)})
	var s glrender.Scheduler
	s.Register(a)
	s.Register(b)
	s.Register(a)
	if n := s.Tick(0); n != 0 {
		t.Error("ticked inactive systems:", n)
	}
	a.Activate()
	b.Activate()
	if n := s.Tick(16); n != 2 {
		t.Error("want both systems ticked, got", n)
	}
	b.Deactivate()
	if n := s.Tick(32); n != 1 {
		t.Error("want one system ticked, got", n)
	}
	if a.Frames() != 2 || b.Frames() != 1 {
		t.Errorf("frames a=%d b=%d", a.Frames(), b.Frames())
	}
	s.Stop()
	s.Stop()
	if n := s.Tick(48); n != 0 || a.Frames() != 2 {
		t.Error("ticked after stop")
	}
	if !s.Stopped() {
		t.Error("not stopped")
	}
}

func TestFrameTimer(t *testing.T) {
	ls := glrender.NewLayerSystem("timer", vib3.Faceted(), nil)
	ls.AddLayer(vib3.RoleContent, glrender.LayerOptions{Backend: glrender.NewSoftwareBackend(1), Surface: gleval.NewImageSurface(2, 2)})
	ls.Activate()
	var s glrender.Scheduler
	s.Register(ls)
	ft := glrender.NewFrameTimer(&s, glrender.FrameTimerConfig{Interval: time.Millisecond})
	if err := ft.Start(); err != nil {
		t.Fatal(err)
	}
	if err := ft.Start(); err == nil {
		t.Error("second start succeeded")
	}
	deadline := time.Now().Add(5 * time.Second)
	for ls.Frames() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	ft.Stop()
	ft.Stop()
	if ft.Running() {
		t.Error("timer still running")
	}
	frames := ls.Frames()
	if frames < 3 {
		t.Fatal("timer did not tick, frames:", frames)
	}
	time.Sleep(10 * time.Millisecond)
	if ls.Frames() != frames {
		t.Error("ticked after stop")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	ls := newSystem(t, vib3.Quantum(), glrender.NewSoftwareBackend(1))
	layers := ls.Layers()
	if !ls.RemoveRole(vib3.RoleAccent) || ls.RemoveRole(vib3.RoleAccent) {
		t.Error("remove role should succeed once")
	}
	if layers[vib3.NumRoles-1].State() != glrender.StateDestroyed {
		t.Error("removed layer not destroyed")
	}
	ls.Destroy()
	ls.Destroy()
	for _, l := range layers {
		if l.State() != glrender.StateDestroyed {
			t.Errorf("%s in state %s", l.Role(), l.State())
		}
		l.Destroy()
		if l.Initialize(gleval.NewImageSurface(2, 2), l.Role(), l.LayerConfig()) {
			t.Error("destroyed visualizer initialized")
		}
	}
	if ls.RenderFrame(0) != 0 {
		t.Error("destroyed system drew")
	}
}

func TestLayerOrder(t *testing.T) {
	backend := glrender.NewSoftwareBackend(1)
	ls := glrender.NewLayerSystem("order", vib3.Faceted(), nil)
	for _, role := range []vib3.Role{vib3.RoleAccent, vib3.RoleBackground, vib3.RoleContent, vib3.RoleBackground} {
		ls.AddLayer(role, glrender.LayerOptions{Backend: backend, Surface: gleval.NewImageSurface(2, 2)})
	}
	layers := ls.Layers()
	want := []vib3.Role{vib3.RoleBackground, vib3.RoleContent, vib3.RoleAccent}
	if len(layers) != len(want) {
		t.Fatalf("want %d layers, got %d", len(want), len(layers))
	}
	for i, l := range layers {
		if l.Role() != want[i] {
			t.Errorf("layer %d: want %s, got %s", i, want[i], l.Role())
		}
	}
}

func TestCompositor(t *testing.T) {
	ls := newSystem(t, vib3.Faceted(), glrender.NewSoftwareBackend(2))
	ls.UpdateParameters(map[string]float32{"intensity": 1})
	ls.RenderFrame(300)
	dst := image.NewRGBA(image.Rect(0, 0, 2*testW, 2*testH))
	bg := color.RGBA{A: 255}
	c := glrender.Compositor{Background: bg}
	c.CompositeSystem(dst, ls)
	lit := 0
	for y := 0; y < dst.Bounds().Dy(); y++ {
		for x := 0; x < dst.Bounds().Dx(); x++ {
			px := dst.RGBAAt(x, y)
			if px.A != 255 {
				t.Fatalf("composited pixel not opaque: %v", px)
			}
			if px != bg {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no layer contributed to the composite")
	}
	// Blurred and empty layers.
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	src.SetRGBA(4, 4, color.RGBA{R: 255, A: 255})
	small := image.NewRGBA(image.Rect(0, 0, 8, 8))
	c.Composite(small, []glrender.CompositeLayer{{Image: src, Blur: 3}, {Image: nil}})
	if small.RGBAAt(0, 0).A != 255 {
		t.Error("background missing")
	}
}

func TestES100LinksOnSoftware(t *testing.T) {
	programmer := glbuild.NewProgrammer(glbuild.ProgrammerConfig{Profile: glbuild.ProfileES100})
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		v := newLayer(t, glrender.NewSoftwareBackend(1), glrender.VisualizerConfig{Library: lib, Programmer: programmer})
		if v.State() != glrender.StateActive {
			t.Errorf("%s ES program state %s", name, v.State())
		}
	}
}
