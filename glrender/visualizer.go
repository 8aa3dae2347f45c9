package glrender

import (
	"errors"
	"fmt"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild"
	"github.com/soypat/vib3/gleval"
)

// State is the lifecycle state of a [Visualizer].
type State uint8

const (
	// StateIdle is the state before Initialize.
	StateIdle State = iota
	// StateActive draws every frame.
	StateActive
	// StateNoProgram holds a context but the program failed to compile or link. Frames are skipped.
	StateNoProgram
	// StateLost follows a context loss. Frames are skipped until reinitialized.
	StateLost
	// StateReinitializing is held while a lost context is being reacquired.
	StateReinitializing
	// StateFailed follows a failed reinitialization. Only an explicit retry leaves it.
	StateFailed
	// StateFallback shows the textual notice since no context could be acquired.
	StateFallback
	// StateDestroyed is terminal.
	StateDestroyed
)

var stateNames = [...]string{"idle", "active", "no program", "lost", "reinitializing", "failed", "fallback", "destroyed"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", s)
	}
	return stateNames[s]
}

// Drawable reports whether frames are drawn in this state.
func (s State) Drawable() bool { return s == StateActive }

var (
	errDestroyed = errors.New("visualizer destroyed")
	errNotLost   = errors.New("visualizer context not lost")
)

// VisualizerConfig configures a [Visualizer].
type VisualizerConfig struct {
	Backend gleval.Backend
	Library vib3.ShapeLibrary
	// Programmer writes the program sources. Nil uses [glbuild.NewDefaultProgrammer].
	Programmer *glbuild.Programmer
	// Fallback is the 2D surface the textual notice is drawn on when no
	// context can be acquired. May be nil.
	Fallback draw.Image
	// Source, if non-empty, replaces the generated program of Library.
	Source glbuild.ShaderSource
}

// Visualizer draws one layer of a layer system onto one surface.
// It is not safe for concurrent use.
type Visualizer struct {
	cfg     VisualizerConfig
	surface gleval.Surface
	layer   vib3.LayerConfig
	state   State
	ctx     gleval.Context
	pm      *ProgramManager
	prog    *Program
	quad    gleval.Buffer
	width   int
	height  int
	last    vib3.Uniforms
	hasLast bool
	frames  int
	links   int
	log     *slog.Logger
}

// NewVisualizer returns an idle visualizer.
func NewVisualizer(cfg VisualizerConfig) *Visualizer {
	if cfg.Programmer == nil {
		cfg.Programmer = glbuild.NewDefaultProgrammer()
	}
	return &Visualizer{cfg: cfg, log: vib3.Logger()}
}

// Initialize binds the visualizer to surface with the given role and layer
// configuration, acquires a context and builds the program. It returns false
// if the visualizer cannot draw: without a context the textual fallback is
// drawn, without a program frames are skipped.
func (v *Visualizer) Initialize(surface gleval.Surface, role vib3.Role, cfg vib3.LayerConfig) bool {
	if v.state == StateDestroyed {
		return false
	}
	v.releaseResources()
	cfg.Role = role
	v.surface = surface
	v.layer = cfg
	v.log = vib3.Logger().With(slog.String("role", role.String()))
	if v.cfg.Library != nil {
		v.log = v.log.With(slog.String("library", v.cfg.Library.Name()))
	}
	err := v.setup()
	switch {
	case err == nil:
		v.state = StateActive
		v.log.Info("visualizer initialized")
		return true
	case errors.Is(err, gleval.ErrBackendNotAvailable) || v.ctx == nil:
		v.state = StateFallback
		v.drawFallback(err)
	default:
		v.state = StateNoProgram
		v.log.Warn("visualizer without program", slog.Any("err", err))
	}
	return false
}

// setup acquires the context, creates the quad and builds the program. On a
// program failure the context and quad are kept.
func (v *Visualizer) setup() error {
	if v.cfg.Backend == nil {
		return fmt.Errorf("nil backend: %w", gleval.ErrBackendNotAvailable)
	}
	ctx, err := v.cfg.Backend.Acquire(v.surface)
	if err != nil {
		return err
	}
	quad, err := ctx.CreateQuad()
	if err != nil {
		ctx.Release()
		return fmt.Errorf("creating quad: %w", err)
	}
	v.ctx = ctx
	v.quad = quad
	v.width, v.height = -1, -1
	v.pm = NewProgramManager(ctx, v.cfg.Programmer)
	return v.buildProgram()
}

func (v *Visualizer) buildProgram() (err error) {
	if v.cfg.Source != (glbuild.ShaderSource{}) {
		v.prog, err = v.pm.BuildSource(v.cfg.Source)
	} else if v.cfg.Library == nil {
		err = errors.New("nil shape library")
	} else {
		v.prog, err = v.pm.Build(v.cfg.Library)
	}
	if err == nil {
		v.links++
	}
	return err
}

func (v *Visualizer) drawFallback(cause error) {
	v.log.Warn("rendering backend unavailable, showing fallback", slog.Any("err", cause))
	if v.cfg.Fallback == nil {
		return
	}
	msg := "4D visualization unavailable"
	if v.cfg.Library != nil {
		msg = v.cfg.Library.Name() + " " + v.layer.Role.String() + "\n" + msg
	}
	if err := DrawFallbackNotice(v.cfg.Fallback, msg); err != nil {
		v.log.Warn("drawing fallback notice", slog.Any("err", err))
	}
}

// RenderFrame draws one frame of snap at time timeMs. It reports whether a
// draw was issued. Failures never escape: compile failures and lost contexts
// skip the frame, a lost context moves the visualizer to [StateLost].
func (v *Visualizer) RenderFrame(snap *vib3.Snapshot, timeMs float32) (drawn bool) {
	if v.state != StateActive {
		return false
	}
	if v.ctx.IsContextLost() {
		v.HandleContextLoss()
		return false
	}
	w, h := v.surface.Size()
	v.last = vib3.DeriveUniforms(snap, v.cfg.Library, v.layer, w, h, timeMs)
	v.hasLast = true
	err := v.draw(w, h)
	switch {
	case err == nil:
		v.frames++
		return true
	case errors.Is(err, gleval.ErrContextLost):
		v.HandleContextLoss()
	default:
		v.log.Warn("frame skipped", slog.Any("err", err))
	}
	return false
}

func (v *Visualizer) draw(w, h int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw panic: %v", r)
		}
	}()
	if w != v.width || h != v.height {
		if err = v.ctx.Viewport(w, h); err != nil {
			return err
		}
		v.log.Debug("surface resized", slog.Int("width", w), slog.Int("height", h))
		v.width, v.height = w, h
	}
	if err = v.ctx.UseProgram(v.prog.Handle()); err != nil {
		return err
	}
	if err = v.prog.Upload(v.ctx, &v.last); err != nil {
		return err
	}
	if err = v.ctx.Clear(color.RGBA{}); err != nil {
		return err
	}
	return v.ctx.DrawQuad(v.quad)
}

// HandleContextLoss moves an active or programless visualizer to [StateLost]
// and forgets its context resources.
func (v *Visualizer) HandleContextLoss() {
	if v.state != StateActive && v.state != StateNoProgram {
		return
	}
	v.log.Warn("rendering context lost")
	v.state = StateLost
	v.releaseResources()
}

// ReinitializeContext reacquires a lost context, rebuilding the program and
// quad. On failure the visualizer moves to [StateFailed] and stays inert until [Visualizer.Retry].
func (v *Visualizer) ReinitializeContext() error {
	if v.state == StateDestroyed {
		return errDestroyed
	} else if v.state != StateLost {
		return errNotLost
	}
	v.state = StateReinitializing
	err := v.setup()
	if err != nil {
		v.releaseResources()
		v.state = StateFailed
		v.log.Warn("context reinitialization failed", slog.Any("err", err))
		return err
	}
	v.state = StateActive
	v.log.Info("context reinitialized")
	return nil
}

// Retry attempts to leave [StateFailed], [StateNoProgram] or [StateFallback]
// by reacquiring all resources. It reports whether the visualizer is active afterwards.
func (v *Visualizer) Retry() bool {
	switch v.state {
	case StateActive:
		return true
	case StateFailed, StateNoProgram, StateFallback:
		return v.Initialize(v.surface, v.layer.Role, v.layer)
	case StateLost:
		return v.ReinitializeContext() == nil
	}
	return false
}

// Destroy releases the program, quad and context. It is safe to call more than once.
func (v *Visualizer) Destroy() {
	if v.state == StateDestroyed {
		return
	}
	v.releaseResources()
	v.state = StateDestroyed
}

func (v *Visualizer) releaseResources() {
	if v.ctx == nil {
		return
	}
	if !v.ctx.IsContextLost() {
		if err := errors.Join(v.pm.Delete(v.prog), v.ctx.DeleteBuffer(v.quad)); err != nil {
			v.log.Debug("releasing visualizer resources", slog.Any("err", err))
		}
	}
	v.ctx.Release()
	v.ctx = nil
	v.pm = nil
	v.prog = nil
	v.quad = 0
}

// State returns the current lifecycle state.
func (v *Visualizer) State() State { return v.state }

// Role returns the role the visualizer was initialized with.
func (v *Visualizer) Role() vib3.Role { return v.layer.Role }

// LayerConfig returns the layer multipliers in use.
func (v *Visualizer) LayerConfig() vib3.LayerConfig { return v.layer }

// Library returns the shape library drawn.
func (v *Visualizer) Library() vib3.ShapeLibrary { return v.cfg.Library }

// Surface returns the surface bound by Initialize.
func (v *Visualizer) Surface() gleval.Surface { return v.surface }

// Fallback returns the fallback surface, which may be nil.
func (v *Visualizer) Fallback() draw.Image { return v.cfg.Fallback }

// Frames returns the amount of frames drawn.
func (v *Visualizer) Frames() int { return v.frames }

// Links returns the amount of programs successfully linked over the visualizer's lifetime.
func (v *Visualizer) Links() int { return v.links }

// LastUniforms returns the uniforms of the last frame rendered.
func (v *Visualizer) LastUniforms() (vib3.Uniforms, bool) { return v.last, v.hasLast }
