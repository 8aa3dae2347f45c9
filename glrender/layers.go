package glrender

import (
	"image/draw"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/gleval"
)

// LayerSystem is a stack of visualizers, one per role, sharing one
// parameter store and one shape library.
type LayerSystem struct {
	id     string
	lib    vib3.ShapeLibrary
	store  *vib3.ParamStore
	active atomic.Bool
	// mu guards layers. Rendering holds it for the whole frame.
	mu     sync.Mutex
	layers []*Visualizer
	frames int
	log    *slog.Logger
}

// LayerOptions configures a layer added with [LayerSystem.AddLayer].
type LayerOptions struct {
	Backend gleval.Backend
	Surface gleval.Surface
	// Fallback receives the textual notice if Backend is unavailable. May be nil.
	Fallback draw.Image
	// Config overrides the default configuration of the role when non-nil.
	Config *vib3.LayerConfig
	// Visualizer overrides the visualizer configuration. Its Backend,
	// Library and Fallback are set from the options and the system.
	Visualizer VisualizerConfig
}

// NewLayerSystem returns an inactive layer system with no layers. A nil store creates a new one.
func NewLayerSystem(id string, lib vib3.ShapeLibrary, store *vib3.ParamStore) *LayerSystem {
	if store == nil {
		store = vib3.NewParamStore()
	}
	return &LayerSystem{
		id:    id,
		lib:   lib,
		store: store,
		log:   vib3.Logger().With(slog.String("system", id)),
	}
}

// ID returns the system identifier.
func (ls *LayerSystem) ID() string { return ls.id }

// Library returns the shape library all layers draw.
func (ls *LayerSystem) Library() vib3.ShapeLibrary { return ls.lib }

// Store returns the shared parameter store.
func (ls *LayerSystem) Store() *vib3.ParamStore { return ls.store }

// AddLayer creates and initializes the visualizer of role. Layers are kept in
// role order. An existing layer of the same role is destroyed and replaced. The
// visualizer is returned even if it failed to initialize.
func (ls *LayerSystem) AddLayer(role vib3.Role, opts LayerOptions) *Visualizer {
	vcfg := opts.Visualizer
	vcfg.Backend = opts.Backend
	vcfg.Library = ls.lib
	vcfg.Fallback = opts.Fallback
	cfg := vib3.DefaultLayerConfig(role)
	if opts.Config != nil {
		cfg = *opts.Config
	}
	v := NewVisualizer(vcfg)
	if !v.Initialize(opts.Surface, role, cfg) {
		ls.log.Warn("layer not drawable", slog.String("role", role.String()), slog.String("state", v.State().String()))
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.removeLocked(role)
	i, _ := slices.BinarySearchFunc(ls.layers, role, func(l *Visualizer, r vib3.Role) int {
		return int(l.Role()) - int(r)
	})
	ls.layers = slices.Insert(ls.layers, i, v)
	return v
}

// Layer returns the visualizer of role.
func (ls *LayerSystem) Layer(role vib3.Role) (*Visualizer, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, l := range ls.layers {
		if l.Role() == role {
			return l, true
		}
	}
	return nil, false
}

// Layers returns the visualizers in back to front order.
func (ls *LayerSystem) Layers() []*Visualizer {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return slices.Clone(ls.layers)
}

// RemoveRole destroys and removes the layer of role. It reports whether the layer existed.
func (ls *LayerSystem) RemoveRole(role vib3.Role) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.removeLocked(role)
}

func (ls *LayerSystem) removeLocked(role vib3.Role) bool {
	for i, l := range ls.layers {
		if l.Role() == role {
			l.Destroy()
			ls.layers = slices.Delete(ls.layers, i, i+1)
			return true
		}
	}
	return false
}

// Activate makes the system eligible for scheduler ticks.
func (ls *LayerSystem) Activate() {
	if !ls.active.Swap(true) {
		ls.log.Info("system activated")
	}
}

// Deactivate stops the system from being ticked starting with the next tick.
func (ls *LayerSystem) Deactivate() {
	if ls.active.Swap(false) {
		ls.log.Info("system deactivated")
	}
}

// IsActive reports whether the system is ticked by the scheduler.
func (ls *LayerSystem) IsActive() bool { return ls.active.Load() }

// UpdateParameters merges a partial update into the shared parameters with
// per field clamping. It returns the amount of known fields written.
func (ls *LayerSystem) UpdateParameters(partial map[string]float32) int {
	return ls.store.Merge(partial)
}

// UpdateParameter writes one named parameter. Unknown names are ignored.
func (ls *LayerSystem) UpdateParameter(name string, value float32) bool {
	return ls.store.UpdateParameter(name, value)
}

// RenderFrame renders every layer against a single parameter snapshot and
// then decays the interaction fields. Lost layers get one reinitialization
// attempt before the frame. It returns the amount of layers drawn.
func (ls *LayerSystem) RenderFrame(timeMs float32) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, l := range ls.layers {
		if l.State() == StateLost {
			l.ReinitializeContext()
		}
	}
	snap := ls.store.Snapshot()
	drawn := 0
	for _, l := range ls.layers {
		if l.RenderFrame(&snap, timeMs) {
			drawn++
		}
	}
	ls.store.DecayInteraction()
	ls.frames++
	return drawn
}

// Frames returns the amount of frames rendered.
func (ls *LayerSystem) Frames() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.frames
}

// RetryFailed retries every layer that is not drawable and returns the amount now active.
func (ls *LayerSystem) RetryFailed() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	n := 0
	for _, l := range ls.layers {
		if l.State() != StateActive && l.Retry() {
			n++
		}
	}
	return n
}

// Destroy deactivates the system and destroys every layer. It is safe to call more than once.
func (ls *LayerSystem) Destroy() {
	ls.Deactivate()
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, l := range ls.layers {
		l.Destroy()
	}
	ls.layers = nil
}
