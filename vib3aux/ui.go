//go:build !tinygo && cgo

package vib3aux

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/gleval"
	"github.com/soypat/vib3/glrender"
)

func ui(cfg UIConfig) error {
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()

	backend := gleval.NewGLBackend()
	app, err := newWindowApplication(window, backend)
	if err != nil {
		return err
	}
	defer app.Destroy()
	if cfg.Audio != nil {
		app.SetAudioSource(cfg.Audio)
	}
	system := cfg.System
	if system == "" {
		system = vib3.Faceted().Name()
	}
	if err := app.Show(system); err != nil {
		return err
	}
	if cfg.Params != nil {
		if ls, ok := app.Active(); ok {
			ls.Store().Replace(*cfg.Params)
		}
	}

	variation := 0
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		width, height := w.GetSize()
		p := NormalizePointer(float32(xpos), float32(ypos), width, height)
		app.UpdatePointer(p.X, p.Y, 1)
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			app.TriggerPulse(1)
		}
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		ids := app.SystemIDs()
		switch {
		case key >= glfw.Key1 && int(key-glfw.Key1) < len(ids):
			app.Show(ids[key-glfw.Key1])
		case key == glfw.KeyRight || key == glfw.KeyLeft:
			if key == glfw.KeyRight {
				variation = (variation + 1) % vib3.NumDefaultVariations
			} else {
				variation = (variation + vib3.NumDefaultVariations - 1) % vib3.NumDefaultVariations
			}
			app.ApplyVariation(variation)
			vib3.Logger().Info("variation", slog.Int("index", variation), slog.String("name", vib3.VariationName(variation)))
		case key == glfw.KeyR:
			if ls, ok := app.Active(); ok {
				ls.RetryFailed()
			}
		case key == glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})

	interval := cfg.FrameInterval
	if interval <= 0 {
		interval = glrender.DefaultFrameInterval
	}
	start := time.Now()
	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		frameStart := time.Now()
		app.Tick(float32(time.Since(start).Microseconds()) / 1000)
		window.SwapBuffers()
		glfw.PollEvents()
		if el := time.Since(frameStart); el < interval {
			time.Sleep(interval - el)
		}
	}
	return nil
}

// newWindowApplication creates a system per registered library, each with
// one layer per role drawn into window. The background layer clears.
func newWindowApplication(window *glfw.Window, backend gleval.Backend) (*Application, error) {
	app := &Application{systems: make(map[string]*glrender.LayerSystem)}
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		ls := glrender.NewLayerSystem(name, lib, nil)
		for _, role := range vib3.Roles() {
			ls.AddLayer(role, glrender.LayerOptions{
				Backend: backend,
				Surface: &gleval.GLSurface{
					SizeFunc: window.GetFramebufferSize,
					Primary:  role == vib3.RoleBackground,
				},
			})
		}
		if err := app.AddSystem(ls); err != nil {
			return nil, err
		}
	}
	return app, nil
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	if title == "" {
		title = "vib3 4D Visualizer"
	}
	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	return window, glfw.Terminate, nil
}
