package vib3aux_test

import (
	"bytes"
	"image/png"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glrender"
	"github.com/soypat/vib3/vib3aux"
)

func newApp(t *testing.T) *vib3aux.Application {
	t.Helper()
	app := vib3aux.NewImageApplication(glrender.NewSoftwareBackend(1), 8, 6)
	t.Cleanup(app.Destroy)
	return app
}

func TestApplicationShowExclusive(t *testing.T) {
	app := newApp(t)
	ids := app.SystemIDs()
	if !slices.Equal(ids, vib3.LibraryNames()) {
		t.Fatalf("want systems %v, got %v", vib3.LibraryNames(), ids)
	}
	if n := app.Tick(0); n != 0 {
		t.Error("inactive systems ticked:", n)
	}
	if err := app.Show("quantum"); err != nil {
		t.Fatal(err)
	}
	if n := app.Tick(16); n != 1 {
		t.Error("want one system rendered, got", n)
	}
	if err := app.Activate("faceted"); err != nil {
		t.Fatal(err)
	}
	if n := app.Tick(32); n != 2 {
		t.Error("activate should not deactivate others, rendered", n)
	}
	if app.ActiveID() != "quantum" {
		t.Error("activate changed parameter target to", app.ActiveID())
	}
	if err := app.Show("faceted"); err != nil {
		t.Fatal(err)
	}
	ls, _ := app.System("quantum")
	if ls.IsActive() {
		t.Error("show left previous system active")
	}
	if err := app.Show("nonexistent"); err == nil {
		t.Error("expected error showing unknown system")
	}
	if err := app.Deactivate("nonexistent"); err == nil {
		t.Error("expected error deactivating unknown system")
	}
}

func TestApplicationRoutesParameters(t *testing.T) {
	app := newApp(t)
	app.Show("holographic")
	if !app.UpdateParameter("hue", 123) {
		t.Fatal("hue not updated")
	}
	if app.UpdateParameter("notAParam", 1) {
		t.Error("unknown parameter reported as written")
	}
	if n := app.UpdateParameters(map[string]float32{"chaos": 0.5, "density": 40, "bogus": 2}); n != 2 {
		t.Error("want 2 fields merged, got", n)
	}
	active, _ := app.System("holographic")
	other, _ := app.System("faceted")
	p := active.Store().Params()
	if p.Get(vib3.FieldHue) != 123 || p.Get(vib3.FieldChaos) != 0.5 || p.Get(vib3.FieldGridDensity) != 40 {
		t.Error("active system parameters not updated", p.Map())
	}
	if op := other.Store().Params(); op != vib3.DefaultParams() {
		t.Error("inactive system parameters changed", op.Map())
	}

	app.UpdatePointer(0.25, 0.75, 1)
	app.TriggerPulse(0.5)
	p = active.Store().Params()
	if p.Get(vib3.FieldMouseX) != 0.25 || p.Get(vib3.FieldMouseY) != 0.75 || p.Get(vib3.FieldClickIntensity) != 0.5 {
		t.Error("interaction not routed to active system", p.Map())
	}
}

func TestApplicationConfigExchange(t *testing.T) {
	app := newApp(t)
	app.Show("polychora")
	app.UpdateParameter("morphFactor", 1.5)
	cfg, err := app.ExportConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.System != "polychora" {
		t.Error("exported system", cfg.System)
	}
	var buf bytes.Buffer
	if err := vib3.EncodeConfig(&buf, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := vib3.DecodeConfig(&buf)
	if err != nil {
		t.Fatal(err)
	}
	app.Show("faceted")
	if err := app.ImportConfig(got); err != nil {
		t.Fatal(err)
	}
	if app.ActiveID() != "polychora" {
		t.Error("import did not show system, active:", app.ActiveID())
	}
	ls, _ := app.System("polychora")
	if ls.Store().Params().Get(vib3.FieldMorphFactor) != 1.5 {
		t.Error("imported parameters lost")
	}
	if err := app.ImportConfig(vib3.Config{System: "unknown", Params: vib3.DefaultParams()}); err == nil {
		t.Error("expected error importing unknown system")
	}
}

func TestImportZeroConfigClamps(t *testing.T) {
	app := newApp(t)
	if err := app.ImportConfig(vib3.Config{System: "faceted"}); err != nil {
		t.Fatal(err)
	}
	ls, _ := app.System("faceted")
	p := ls.Store().Params()
	if p.Get(vib3.FieldSpeed) != 0.1 || p.Get(vib3.FieldDimension) != 3 {
		t.Errorf("zero config installed out of range values %v", p.Map())
	}
}

func TestApplicationVariations(t *testing.T) {
	app := newApp(t)
	app.Show("faceted")
	if !app.ApplyVariation(3) {
		t.Fatal("variation 3 not applied")
	}
	want, _ := vib3.DefaultVariation(3)
	ls, _ := app.Active()
	if got := ls.Store().Params(); got != want {
		t.Errorf("variation mismatch\nwant %v\ngot  %v", want.Map(), got.Map())
	}
	if app.ApplyVariation(vib3.NumDefaultVariations) {
		t.Error("out of range variation applied")
	}
}

type fixedAudio vib3.AudioLevels

func (f fixedAudio) Levels() vib3.AudioLevels { return vib3.AudioLevels(f) }

func TestApplicationAudioSource(t *testing.T) {
	app := newApp(t)
	app.Show("quantum")
	want := vib3.AudioLevels{Bass: 0.5, Mid: 0.25, High: 1}
	app.SetAudioSource(fixedAudio(want))
	app.Tick(0)
	ls, _ := app.Active()
	if got := ls.Store().AudioLevels(); got != want {
		t.Errorf("want audio %+v, got %+v", want, got)
	}
}

func TestApplicationDestroy(t *testing.T) {
	app := vib3aux.NewImageApplication(glrender.NewSoftwareBackend(1), 4, 4)
	app.Show("faceted")
	app.Destroy()
	if n := app.Tick(0); n != 0 {
		t.Error("destroyed application rendered", n)
	}
	app.Destroy()
}

func TestAddSystemDuplicate(t *testing.T) {
	a := glrender.NewLayerSystem("x", vib3.Faceted(), nil)
	b := glrender.NewLayerSystem("x", vib3.Quantum(), nil)
	if _, err := vib3aux.NewApplication(a, b); err == nil {
		t.Error("expected duplicate system error")
	}
	app, err := vib3aux.NewApplication(a)
	if err != nil {
		t.Fatal(err)
	}
	if app.ActiveID() != "x" {
		t.Error("first system should be the parameter target")
	}
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	p, _ := vib3.DefaultVariation(7)
	err := vib3aux.RenderPNG(&buf, vib3aux.RenderConfig{
		System:  "holographic",
		Params:  &p,
		Width:   24,
		Height:  16,
		TimeMs:  500,
		Workers: 2,
		Silent:  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 16 {
		t.Error("bad image bounds", b)
	}
	if _, _, _, a := img.At(12, 8).RGBA(); a != 0xffff {
		t.Error("composite over opaque background should be opaque, alpha", a)
	}
	if _, err := vib3aux.RenderImage(vib3aux.RenderConfig{Width: 0, Height: 4, Silent: true}); err == nil {
		t.Error("expected error for empty size")
	}
	if _, err := vib3aux.RenderImage(vib3aux.RenderConfig{System: "unknown", Width: 4, Height: 4, Silent: true}); err == nil {
		t.Error("expected error for unknown system")
	}
}

func sine(sr beep.SampleRate, freq float64) beep.Streamer {
	var i int
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for j := range samples {
			v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sr))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})
}

func drain(s beep.Streamer) int {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestAudioTapBands(t *testing.T) {
	const sr = beep.SampleRate(48000)
	low := vib3aux.NewAudioTap(beep.Take(sr.N(time.Second/2), sine(sr, 60)), sr)
	if n := drain(low); n != sr.N(time.Second/2) {
		t.Fatal("tap altered stream length", n)
	}
	lv := low.Levels()
	if lv.Bass < 0.3 || lv.High > lv.Bass/10 {
		t.Errorf("60Hz sine should be bass: %+v", lv)
	}

	high := vib3aux.NewAudioTap(beep.Take(sr.N(time.Second/2), sine(sr, 9000)), sr)
	drain(high)
	hv := high.Levels()
	if hv.High < 0.3 || hv.Bass > hv.High/4 {
		t.Errorf("9kHz sine should be high: %+v", hv)
	}
	high.Reset()
	if high.Levels() != (vib3.AudioLevels{}) {
		t.Error("reset did not clear levels")
	}
}

func TestAudioTapPassThrough(t *testing.T) {
	const sr = beep.SampleRate(8000)
	src := sine(sr, 440)
	ref := sine(sr, 440)
	tap := vib3aux.NewAudioTap(src, sr)
	got := make([][2]float64, 64)
	want := make([][2]float64, 64)
	tap.Stream(got)
	ref.Stream(want)
	if !slices.Equal(got, want) {
		t.Error("tap modified samples")
	}
	if tap.Err() != nil {
		t.Error(tap.Err())
	}
}

func TestNormalizePointer(t *testing.T) {
	for _, test := range []struct {
		px, py float32
		w, h   int
		x, y   float32
	}{
		{px: 0, py: 0, w: 200, h: 100, x: 0, y: 1},
		{px: 100, py: 50, w: 200, h: 100, x: 0.5, y: 0.5},
		{px: 200, py: 100, w: 200, h: 100, x: 1, y: 0},
		{px: -20, py: 300, w: 200, h: 100, x: 0, y: 0},
		{px: 3, py: 3, w: 0, h: 10, x: 0.5, y: 0.5},
	} {
		got := vib3aux.NormalizePointer(test.px, test.py, test.w, test.h)
		if got.X != test.x || got.Y != test.y {
			t.Errorf("NormalizePointer(%v,%v,%d,%d) = %v, want (%v,%v)", test.px, test.py, test.w, test.h, got, test.x, test.y)
		}
	}
}
