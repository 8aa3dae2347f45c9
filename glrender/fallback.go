package glrender

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/soypat/vib3"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

var (
	fallbackBackground = color.RGBA{R: 8, G: 6, B: 20, A: 255}
	fallbackForeground = vib3.HueColor(192, 1, 1)
)

var parseFallbackFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// DrawFallbackNotice fills dst with a static notice shown in place of a layer
// whose rendering backend is unavailable. Lines of msg are centered.
func DrawFallbackNotice(dst draw.Image, msg string) error {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(fallbackBackground), image.Point{}, draw.Src)
	if bounds.Empty() || msg == "" {
		return nil
	}
	ttf, err := parseFallbackFont()
	if err != nil {
		return err
	}
	lines := strings.Split(msg, "\n")
	size := float64(bounds.Dy()) / float64(2*len(lines)+2)
	size = min(max(size, 6), 32)
	face := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(fallbackForeground),
		Face: face,
	}
	lineHeight := face.Metrics().Height
	total := lineHeight.Mul(fixed.I(len(lines)))
	y := fixed.I(bounds.Min.Y) + (fixed.I(bounds.Dy())-total)/2 + face.Metrics().Ascent
	for _, line := range lines {
		width := d.MeasureString(line)
		d.Dot = fixed.Point26_6{
			X: fixed.I(bounds.Min.X) + (fixed.I(bounds.Dx())-width)/2,
			Y: y,
		}
		d.DrawString(line)
		y += lineHeight
	}
	return nil
}
