// Package glrender turns shape libraries and parameters into frames: it
// manages programs, drives one [Visualizer] per layer role, groups them in a
// [LayerSystem] and advances systems from a [Scheduler].
package glrender

import (
	"image"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/gleval"
)

// NewImageSystem returns a layer system with every role drawn by backend onto
// its own width×height [gleval.ImageSurface]. Each layer gets a fallback
// image of the same size. Use a [Compositor] to stack the layers.
func NewImageSystem(id string, lib vib3.ShapeLibrary, store *vib3.ParamStore, backend gleval.Backend, width, height int) *LayerSystem {
	ls := NewLayerSystem(id, lib, store)
	for _, role := range vib3.Roles() {
		ls.AddLayer(role, LayerOptions{
			Backend:  backend,
			Surface:  gleval.NewImageSurface(width, height),
			Fallback: image.NewRGBA(image.Rect(0, 0, width, height)),
		})
	}
	return ls
}
