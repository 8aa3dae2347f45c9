package vib3aux

import (
	"context"
	"errors"
	"time"

	"github.com/soypat/vib3"
)

// UIConfig configures the desktop window opened by [UI].
type UIConfig struct {
	Width, Height int
	Title         string
	// System shown first. Empty shows faceted. Number keys switch systems.
	System string
	// Params of the first system. Nil uses defaults.
	Params *vib3.Params
	// Audio is polled every frame when not nil, i.e. an [*AudioTap].
	Audio AudioSource
	// FrameInterval is the minimum time between frames. Zero targets 60 frames per second.
	FrameInterval time.Duration
	// Context cancels the render loop when done. May be nil.
	Context context.Context
}

// UI opens a window showing every shape library, one at a time, with all
// layer roles drawn by OpenGL. The pointer steers the mouse interaction,
// clicks pulse, arrow keys cycle built-in variations and R retries failed
// layers. It must be called from the main thread, see [runtime.LockOSThread].
func UI(cfg UIConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("UI requires positive width and height")
	}
	return ui(cfg)
}
