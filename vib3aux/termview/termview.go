// Package termview presents vib3 layer systems on a terminal with tcell.
// Each cell shows two vertically stacked pixels using the upper half block
// rune: the foreground is the top pixel and the background the bottom one.
package termview

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glrender"
	"github.com/soypat/vib3/vib3aux"
)

const halfBlock = '▀'

// Screen is the subset of [tcell.Screen] a View draws to.
type Screen interface {
	Size() (width, height int)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Show()
}

// View composites layer systems into an image sized to the screen and draws it.
type View struct {
	screen Screen
	comp   glrender.Compositor
	img    *image.RGBA
}

// New returns a view drawing to screen over an opaque near black background.
func New(screen Screen) *View {
	return &View{
		screen: screen,
		comp:   glrender.Compositor{Background: color.RGBA{R: 4, G: 2, B: 12, A: 255}},
	}
}

// PixelSize returns the image size that fills the screen.
func (v *View) PixelSize() (width, height int) {
	cols, rows := v.screen.Size()
	return cols, 2 * rows
}

// Present composites ls and draws the result.
func (v *View) Present(ls *glrender.LayerSystem) {
	w, h := v.PixelSize()
	if w <= 0 || h <= 0 {
		return
	}
	if v.img == nil || v.img.Bounds().Dx() != w || v.img.Bounds().Dy() != h {
		v.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	v.comp.CompositeSystem(v.img, ls)
	v.Draw(v.img)
}

// Draw draws img scaled one pixel per half cell and shows the screen.
// Pixels outside img draw black.
func (v *View) Draw(img *image.RGBA) {
	cols, rows := v.screen.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := img.RGBAAt(x, 2*y)
			bot := img.RGBAAt(x, 2*y+1)
			v.screen.SetContent(x, y, halfBlock, nil, CellStyle(top, bot))
		}
	}
	v.screen.Show()
}

// CellStyle returns the style of a cell showing top over bottom.
func CellStyle(top, bottom color.RGBA) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
		Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
}

// Config configures [Run].
type Config struct {
	// Interval between frames. Zero uses [glrender.DefaultFrameInterval].
	Interval time.Duration
}

// Run ticks app and presents its active system on screen until the context
// is done or the user quits with Escape, Ctrl-C or q. The screen must be
// initialized. Number keys show systems, arrow keys cycle variations, r
// retries failed layers, the mouse steers interaction and clicks pulse.
func Run(ctx context.Context, screen tcell.Screen, app *vib3aux.Application, cfg Config) error {
	if cfg.Interval <= 0 {
		cfg.Interval = glrender.DefaultFrameInterval
	}
	screen.EnableMouse()
	view := New(screen)
	app.ResizeImages(view.PixelSize())

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				// Screen finalized.
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	in := input{app: app, view: view, screen: screen}
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !in.handle(ev) {
				return nil
			}
		case now := <-ticker.C:
			app.Tick(float32(now.Sub(start).Microseconds()) / 1000)
			if ls, ok := app.Active(); ok {
				view.Present(ls)
			}
		}
	}
}

type input struct {
	app       *vib3aux.Application
	view      *View
	screen    tcell.Screen
	variation int
	pressed   bool
}

// handle applies an event and returns false when the user quits.
func (in *input) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRight:
			in.variation = (in.variation + 1) % vib3.NumDefaultVariations
			in.app.ApplyVariation(in.variation)
		case tcell.KeyLeft:
			in.variation = (in.variation + vib3.NumDefaultVariations - 1) % vib3.NumDefaultVariations
			in.app.ApplyVariation(in.variation)
		case tcell.KeyRune:
			r := ev.Rune()
			ids := in.app.SystemIDs()
			switch {
			case r == 'q':
				return false
			case r == 'r':
				if ls, ok := in.app.Active(); ok {
					ls.RetryFailed()
				}
			case r >= '1' && int(r-'1') < len(ids):
				in.app.Show(ids[r-'1'])
			}
		}
	case *tcell.EventMouse:
		cols, rows := in.screen.Size()
		x, y := ev.Position()
		p := vib3aux.NormalizePointer(float32(x)+0.5, float32(y)+0.5, cols, rows)
		in.app.UpdatePointer(p.X, p.Y, 1)
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !in.pressed {
			in.app.TriggerPulse(1)
		}
		in.pressed = down
	case *tcell.EventResize:
		in.screen.Sync()
		in.app.ResizeImages(in.view.PixelSize())
	}
	return true
}
