//go:build !tinygo

// Package ebitenview runs a vib3 application inside an Ebitengine window
// with software rendered layers.
package ebitenview

import (
	"errors"
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glrender"
	"github.com/soypat/vib3/vib3aux"
)

// Config configures [Run].
type Config struct {
	Title string
	// Window size in device independent pixels.
	Width, Height int
	// Scale divides the window size into the render size. Values below 1 use 2.
	Scale int
}

// Run opens a window and blocks until it closes.
func Run(app *vib3aux.Application, cfg Config) error {
	g := NewGame(app, cfg)
	if cfg.Title == "" {
		cfg.Title = "vib3"
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

var systemKeys = [...]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9}

// Game implements [ebiten.Game] for an application.
type Game struct {
	app       *vib3aux.Application
	scale     int
	comp      glrender.Compositor
	img       *image.RGBA
	screenImg *ebiten.Image
	start     time.Time
	variation int
}

// NewGame returns a game ticking app once per update.
func NewGame(app *vib3aux.Application, cfg Config) *Game {
	scale := cfg.Scale
	if scale < 1 {
		scale = 2
	}
	return &Game{
		app:   app,
		scale: scale,
		comp:  glrender.Compositor{Background: color.RGBA{R: 4, G: 2, B: 12, A: 255}},
		start: time.Now(),
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	ids := g.app.SystemIDs()
	for i, key := range systemKeys {
		if i < len(ids) && inpututil.IsKeyJustPressed(key) {
			g.app.Show(ids[i])
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		g.variation = (g.variation + 1) % vib3.NumDefaultVariations
		g.app.ApplyVariation(g.variation)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		g.variation = (g.variation + vib3.NumDefaultVariations - 1) % vib3.NumDefaultVariations
		g.app.ApplyVariation(g.variation)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if ls, ok := g.app.Active(); ok {
			ls.RetryFailed()
		}
	}
	if g.img != nil {
		w, h := g.img.Bounds().Dx(), g.img.Bounds().Dy()
		x, y := ebiten.CursorPosition()
		if x >= 0 && y >= 0 && x < w && y < h {
			p := vib3aux.NormalizePointer(float32(x), float32(y), w, h)
			g.app.UpdatePointer(p.X, p.Y, 1)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.app.TriggerPulse(1)
	}
	g.app.Tick(float32(time.Since(g.start).Microseconds()) / 1000)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	ls, ok := g.app.Active()
	if !ok || g.img == nil {
		return
	}
	g.comp.CompositeSystem(g.img, ls)
	g.screenImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.screenImg, nil)
}

// Layout sizes the render target and resizes the application's surfaces when it changes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w := max(outsideWidth/g.scale, 1)
	h := max(outsideHeight/g.scale, 1)
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		if g.screenImg != nil {
			g.screenImg.Deallocate()
		}
		g.screenImg = ebiten.NewImage(w, h)
		g.app.ResizeImages(w, h)
	}
	return w, h
}
