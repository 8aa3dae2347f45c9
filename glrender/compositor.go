package glrender

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"

	"github.com/soypat/vib3/gleval"
)

// Compositor stacks the software rendered layers of a system back to front
// onto one image, blurring each layer by its configured radius.
type Compositor struct {
	// Background is drawn below all layers. The zero value is transparent.
	Background color.RGBA
	small      *image.RGBA
	blurred    *image.RGBA
}

// CompositeLayer is one image to composite.
type CompositeLayer struct {
	Image image.Image
	// Blur radius in pixels. Values below 1 composite sharp.
	Blur float32
}

// Composite draws layers over the background onto dst in order.
func (c *Compositor) Composite(dst draw.Image, layers []CompositeLayer) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(c.Background), image.Point{}, draw.Src)
	for _, l := range layers {
		if l.Image == nil {
			continue
		}
		src := l.Image
		if l.Blur >= 1 {
			src = c.blur(src, l.Blur)
		}
		xdraw.ApproxBiLinear.Scale(dst, bounds, src, src.Bounds(), xdraw.Over, nil)
	}
}

// CompositeSystem composites every layer of ls. Layers showing the fallback
// notice contribute their fallback image, layers that are not drawing are skipped.
func (c *Compositor) CompositeSystem(dst draw.Image, ls *LayerSystem) {
	var layers []CompositeLayer
	for _, v := range ls.Layers() {
		var img image.Image
		switch v.State() {
		case StateFallback:
			if fb := v.Fallback(); fb != nil {
				img = fb
			}
		case StateActive:
			if s, ok := v.Surface().(*gleval.ImageSurface); ok {
				img = s.Image()
			}
		}
		if img != nil {
			layers = append(layers, CompositeLayer{Image: img, Blur: v.LayerConfig().Blur})
		}
	}
	c.Composite(dst, layers)
}

// blur approximates a blur of the given radius by downscaling the image and
// scaling it back up with bilinear filtering.
func (c *Compositor) blur(src image.Image, radius float32) image.Image {
	b := src.Bounds()
	factor := 1 + math32.Floor(radius)
	sw := max(int(float32(b.Dx())/factor), 1)
	sh := max(int(float32(b.Dy())/factor), 1)
	c.small = reuseRGBA(c.small, sw, sh)
	c.blurred = reuseRGBA(c.blurred, b.Dx(), b.Dy())
	xdraw.ApproxBiLinear.Scale(c.small, c.small.Bounds(), src, b, xdraw.Src, nil)
	xdraw.BiLinear.Scale(c.blurred, c.blurred.Bounds(), c.small, c.small.Bounds(), xdraw.Src, nil)
	return c.blurred
}

func reuseRGBA(img *image.RGBA, w, h int) *image.RGBA {
	if img != nil && img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}
