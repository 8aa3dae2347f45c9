// Package vib3aux holds auxiliary functionality to get started with vib3
// quickly: an application that owns one layer system per shape library,
// headless PNG rendering, a desktop window and an audio level tap.
package vib3aux

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/gleval"
	"github.com/soypat/vib3/glrender"
)

var (
	errUnknownSystem = errors.New("unknown system")
	errNoActive      = errors.New("no active system")
)

// AudioSource provides audio band levels, i.e. [*AudioTap].
type AudioSource interface {
	Levels() vib3.AudioLevels
}

// Application owns one layer system per system identifier and the scheduler
// that ticks them. Exactly one system is the target of parameter updates.
// It is safe for concurrent use.
type Application struct {
	mu      sync.Mutex
	systems map[string]*glrender.LayerSystem
	order   []string
	active  string
	sched   glrender.Scheduler
	audio   AudioSource
}

// NewApplication returns an application with the given systems. The first
// system becomes the parameter target but none is activated.
func NewApplication(systems ...*glrender.LayerSystem) (*Application, error) {
	app := &Application{systems: make(map[string]*glrender.LayerSystem)}
	for _, ls := range systems {
		if err := app.AddSystem(ls); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// NewImageApplication returns an application with a software rendered
// system for every registered shape library, layers sized width×height.
func NewImageApplication(backend gleval.Backend, width, height int) *Application {
	app := &Application{systems: make(map[string]*glrender.LayerSystem)}
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		app.AddSystem(glrender.NewImageSystem(name, lib, nil, backend, width, height))
	}
	return app
}

// AddSystem registers ls under its identifier with the scheduler.
func (app *Application) AddSystem(ls *glrender.LayerSystem) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	id := ls.ID()
	if _, ok := app.systems[id]; ok {
		return fmt.Errorf("system %q already added", id)
	}
	app.systems[id] = ls
	app.order = append(app.order, id)
	app.sched.Register(ls)
	if app.active == "" {
		app.active = id
	}
	return nil
}

// System returns the system with identifier id.
func (app *Application) System(id string) (*glrender.LayerSystem, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	ls, ok := app.systems[id]
	return ls, ok
}

// SystemIDs returns the identifiers in the order systems were added.
func (app *Application) SystemIDs() []string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return slices.Clone(app.order)
}

// ActiveID returns the identifier of the parameter target system.
func (app *Application) ActiveID() string {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.active
}

// Activate starts ticking system id. Other systems are left as they are.
func (app *Application) Activate(id string) error {
	ls, ok := app.System(id)
	if !ok {
		return fmt.Errorf("%w %q", errUnknownSystem, id)
	}
	ls.Activate()
	return nil
}

// Deactivate stops ticking system id.
func (app *Application) Deactivate(id string) error {
	ls, ok := app.System(id)
	if !ok {
		return fmt.Errorf("%w %q", errUnknownSystem, id)
	}
	ls.Deactivate()
	return nil
}

// Show makes id the only active system and the parameter target.
func (app *Application) Show(id string) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	target, ok := app.systems[id]
	if !ok {
		return fmt.Errorf("%w %q", errUnknownSystem, id)
	}
	for _, other := range app.systems {
		if other != target {
			other.Deactivate()
		}
	}
	target.Activate()
	app.active = id
	vib3.Logger().Info("showing system", slog.String("system", id))
	return nil
}

// Active returns the parameter target system.
func (app *Application) Active() (*glrender.LayerSystem, bool) {
	app.mu.Lock()
	defer app.mu.Unlock()
	ls, ok := app.systems[app.active]
	return ls, ok
}

// UpdateParameter writes a named parameter of the active system. Unknown names are ignored.
func (app *Application) UpdateParameter(name string, value float32) bool {
	ls, ok := app.Active()
	return ok && ls.UpdateParameter(name, value)
}

// UpdateParameters merges a partial update into the active system.
func (app *Application) UpdateParameters(partial map[string]float32) int {
	ls, ok := app.Active()
	if !ok {
		return 0
	}
	return ls.UpdateParameters(partial)
}

// UpdatePointer feeds pointer input to the active system.
func (app *Application) UpdatePointer(x, y, intensity float32) {
	if ls, ok := app.Active(); ok {
		ls.Store().UpdatePointer(x, y, intensity)
	}
}

// TriggerPulse feeds a click pulse to the active system.
func (app *Application) TriggerPulse(intensity float32) {
	if ls, ok := app.Active(); ok {
		ls.Store().TriggerPulse(intensity)
	}
}

// SetAudioLevels sets the audio modulation of the active system.
func (app *Application) SetAudioLevels(a vib3.AudioLevels) {
	if ls, ok := app.Active(); ok {
		ls.Store().SetAudioLevels(a)
	}
}

// SetAudioSource makes [Application.Tick] poll src for the active system's
// audio levels before each tick. Nil disables polling.
func (app *Application) SetAudioSource(src AudioSource) {
	app.mu.Lock()
	app.audio = src
	app.mu.Unlock()
}

// ExportConfig returns the exchange record of the active system.
func (app *Application) ExportConfig() (vib3.Config, error) {
	ls, ok := app.Active()
	if !ok {
		return vib3.Config{}, errNoActive
	}
	return vib3.Config{System: ls.ID(), Params: ls.Store().Params()}, nil
}

// ImportConfig shows the record's system, or the active one if the record
// names none, and replaces its parameters.
func (app *Application) ImportConfig(c vib3.Config) error {
	id := c.System
	if id == "" {
		id = app.ActiveID()
	}
	if err := app.Show(id); err != nil {
		return err
	}
	ls, _ := app.System(id)
	ls.Store().Replace(c.Params)
	return nil
}

// ApplyVariation replaces the active system's parameters with built-in preset i.
func (app *Application) ApplyVariation(i int) bool {
	p, ok := vib3.DefaultVariation(i)
	if !ok {
		return false
	}
	ls, ok := app.Active()
	if !ok {
		return false
	}
	ls.Store().Replace(p)
	return true
}

// Tick advances every active system one frame.
func (app *Application) Tick(nowMs float32) int {
	app.mu.Lock()
	src := app.audio
	app.mu.Unlock()
	if src != nil {
		app.SetAudioLevels(src.Levels())
	}
	return app.sched.Tick(nowMs)
}

// Scheduler returns the scheduler ticking the systems, i.e. for a [glrender.FrameTimer].
func (app *Application) Scheduler() *glrender.Scheduler { return &app.sched }

// Destroy stops the scheduler and destroys every system.
func (app *Application) Destroy() {
	app.sched.Stop()
	app.mu.Lock()
	defer app.mu.Unlock()
	for _, ls := range app.systems {
		ls.Destroy()
	}
}

// ResizeImages resizes every image surface of every system to width×height
// and returns the amount resized. It must not run concurrently with Tick.
func (app *Application) ResizeImages(width, height int) int {
	app.mu.Lock()
	defer app.mu.Unlock()
	n := 0
	for _, id := range app.order {
		for _, l := range app.systems[id].Layers() {
			if s, ok := l.Surface().(*gleval.ImageSurface); ok {
				s.Resize(width, height)
				n++
			}
		}
	}
	return n
}
