//go:build tinygo || !cgo

package gleval

import (
	"errors"
	"fmt"
)

var errNoCGO = errors.New("OpenGL rendering requires CGo and is not supported on TinyGo")

// GLSurface is a region of the window whose OpenGL context is current on the
// rendering goroutine.
type GLSurface struct {
	SizeFunc func() (width, height int)
	Primary  bool
}

func (s *GLSurface) Size() (width, height int) {
	if s.SizeFunc == nil {
		return 0, 0
	}
	return s.SizeFunc()
}

// GLBackend is unavailable without cgo: Acquire always fails.
type GLBackend struct{}

func NewGLBackend() *GLBackend { return &GLBackend{} }

func (b *GLBackend) Acquire(s Surface) (Context, error) {
	return nil, fmt.Errorf("%w: %v", ErrBackendNotAvailable, errNoCGO)
}
