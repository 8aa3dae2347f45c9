package glrender

import (
	"image/color"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/gleval"
)

// SoftwareFragment returns the Go implementation of the fragment program of
// lib for the software backend. It shades exactly as the GLSL program does.
func SoftwareFragment(lib vib3.ShapeLibrary) gleval.FragmentProgram {
	return softwareFragment{lib: lib}
}

// SoftwareFragments returns the fragment programs of every registered shape library
// keyed by library name, ready for [gleval.CPUConfig].
func SoftwareFragments() map[string]gleval.FragmentProgram {
	m := make(map[string]gleval.FragmentProgram)
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		m[name] = SoftwareFragment(lib)
	}
	return m
}

// NewSoftwareBackend returns a software backend able to link the program of every registered library.
func NewSoftwareBackend(workers int) *gleval.CPUBackend {
	return gleval.NewCPUBackend(gleval.CPUConfig{
		Fragments: SoftwareFragments(),
		Workers:   workers,
	})
}

type softwareFragment struct {
	lib vib3.ShapeLibrary
}

func (f softwareFragment) Bind(values gleval.UniformValues) (gleval.ShadeFunc, error) {
	u := vib3.UniformsFromLookup(values.Uniform)
	lib := f.lib
	return func(x, y float32) color.RGBA {
		fr := vib3.ShadeFragment(&u, lib, x, y)
		return vib3.RGBA(fr.R, fr.G, fr.B, fr.A)
	}, nil
}
