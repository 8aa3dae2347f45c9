package vib3aux

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glrender"
)

// RenderConfig configures headless rendering of one frame with [RenderImage].
type RenderConfig struct {
	// System is the shape library name, i.e. "quantum". Empty uses faceted.
	System string
	// Params rendered. The zero value uses [vib3.DefaultParams].
	Params *vib3.Params
	Width  int
	Height int
	// TimeMs is the animation time of the frame.
	TimeMs float32
	// Workers rendering rows in parallel. Zero uses GOMAXPROCS.
	Workers int
	// Background below the layers. The zero value is an opaque near black.
	Background color.RGBA
	Silent     bool
}

var errBadSize = errors.New("render size must be positive")

// RenderImage renders all five layers of a system in software and composites them.
func RenderImage(cfg RenderConfig) (*image.RGBA, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errBadSize
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	name := cfg.System
	if name == "" {
		name = vib3.Faceted().Name()
	}
	lib, ok := vib3.LookupLibrary(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownSystem, name)
	}
	store := vib3.NewParamStore()
	if cfg.Params != nil {
		store.Replace(*cfg.Params)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	watch := stopwatch()
	ls := glrender.NewImageSystem(name, lib, store, glrender.NewSoftwareBackend(workers), cfg.Width, cfg.Height)
	defer ls.Destroy()
	ls.Activate()
	drawn := ls.RenderFrame(cfg.TimeMs)
	if drawn == 0 {
		return nil, fmt.Errorf("no %s layer drawn", name)
	}
	log("rendered", drawn, name, "layers in", watch())

	bg := cfg.Background
	if bg == (color.RGBA{}) {
		bg = color.RGBA{R: 4, G: 2, B: 12, A: 255}
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	comp := glrender.Compositor{Background: bg}
	watch = stopwatch()
	comp.CompositeSystem(img, ls)
	log("composited in", watch())
	return img, nil
}

// RenderPNG renders a frame and encodes it as PNG to w.
func RenderPNG(w io.Writer, cfg RenderConfig) error {
	img, err := RenderImage(cfg)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderPNGFile renders a frame and saves it to a PNG file with said filename.
func RenderPNGFile(filename string, cfg RenderConfig) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = RenderPNG(fp, cfg)
	if err != nil {
		return err
	}
	return fp.Sync()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
