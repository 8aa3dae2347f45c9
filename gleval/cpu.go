package gleval

import (
	"errors"
	"fmt"
	"image/color"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/soypat/vib3/glbuild"
	"golang.org/x/sync/errgroup"
)

// UniformValues gives read access to the uniform values of a program in use.
type UniformValues interface {
	// Uniform returns the last value written to the named uniform or nil.
	Uniform(name string) []float32
}

// ShadeFunc returns the premultiplied color of the fragment at window
// coordinates (x,y) with the origin at the bottom left. It must be safe for concurrent use.
type ShadeFunc func(x, y float32) color.RGBA

// FragmentProgram is the Go implementation of a fragment stage for the software backend.
type FragmentProgram interface {
	// Bind returns the shading function for the current uniform values.
	Bind(UniformValues) (ShadeFunc, error)
}

// CPUConfig configures a [CPUBackend].
type CPUConfig struct {
	// Fragments maps library names declared by a fragment source's
	// vib3_library pragma to their Go implementation.
	Fragments map[string]FragmentProgram
	// Workers is the amount of goroutines shading a quad. Values below 1 use one.
	Workers int
}

// CPUBackend is the software rendering backend. Its contexts draw onto [*ImageSurface].
type CPUBackend struct {
	mu       sync.Mutex
	cfg      CPUConfig
	down     bool
	contexts []*cpuContext
	draws    atomic.Int64
	acquired atomic.Int64
}

// NewCPUBackend returns a software backend. It is safe for concurrent use.
func NewCPUBackend(cfg CPUConfig) *CPUBackend {
	return &CPUBackend{cfg: cfg}
}

// Acquire implements [Backend]. s must be a [*ImageSurface].
func (b *CPUBackend) Acquire(s Surface) (Context, error) {
	img, ok := s.(*ImageSurface)
	if !ok {
		return nil, fmt.Errorf("software backend requires *ImageSurface, got %T: %w", s, ErrBackendNotAvailable)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.down {
		return nil, ErrBackendNotAvailable
	}
	w, h := img.Size()
	ctx := &cpuContext{
		backend:  b,
		surface:  img,
		shaders:  make(map[Shader]*cpuShader),
		programs: make(map[Program]*cpuProgram),
		buffers:  make(map[Buffer]bool),
		width:    w,
		height:   h,
	}
	b.contexts = append(b.contexts, ctx)
	b.acquired.Add(1)
	return ctx, nil
}

// LoseContext simulates device loss: every context acquired so far reports itself lost.
func (b *CPUBackend) LoseContext() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.contexts {
		c.lost.Store(true)
	}
	b.contexts = b.contexts[:0]
}

// SetAvailable controls whether [CPUBackend.Acquire] succeeds.
func (b *CPUBackend) SetAvailable(available bool) {
	b.mu.Lock()
	b.down = !available
	b.mu.Unlock()
}

// Draws returns the amount of quads drawn by all contexts of the backend.
func (b *CPUBackend) Draws() int64 { return b.draws.Load() }

// Acquisitions returns the amount of contexts successfully acquired.
func (b *CPUBackend) Acquisitions() int64 { return b.acquired.Load() }

type cpuShader struct {
	stage Stage
	info  glslInfo
}

type cpuProgram struct {
	frag     FragmentProgram
	names    []string
	values   [][]float32
	location map[string]UniformLocation
}

func (p *cpuProgram) Uniform(name string) []float32 {
	loc, ok := p.location[name]
	if !ok {
		return nil
	}
	return p.values[loc]
}

type cpuContext struct {
	backend  *CPUBackend
	surface  *ImageSurface
	lost     atomic.Bool
	released bool
	next     uint32
	shaders  map[Shader]*cpuShader
	programs map[Program]*cpuProgram
	buffers  map[Buffer]bool
	current  *cpuProgram
	width    int
	height   int
}

var _ Context = (*cpuContext)(nil)

func (c *cpuContext) check() error {
	if c.lost.Load() {
		return ErrContextLost
	} else if c.released {
		return errReleased
	}
	return nil
}

func (c *cpuContext) handle() uint32 {
	c.next++
	return c.next
}

func (c *cpuContext) CompileShader(stage Stage, source string) (Shader, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	info, err := parseGLSL(stage, source)
	if err != nil {
		return 0, &ShaderError{Op: "compile", Stage: stage, Log: err.Error()}
	}
	h := Shader(c.handle())
	c.shaders[h] = &cpuShader{stage: stage, info: info}
	return h, nil
}

func (c *cpuContext) LinkProgram(vertex, fragment Shader) (Program, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	vs, okv := c.shaders[vertex]
	fs, okf := c.shaders[fragment]
	if !okv || !okf {
		return 0, ErrInvalidHandle
	}
	var errs []error
	if vs.stage != StageVertex {
		errs = append(errs, errors.New("first shader is not a vertex stage"))
	}
	if fs.stage != StageFragment {
		errs = append(errs, errors.New("second shader is not a fragment stage"))
	}
	if !slices.Contains(vs.info.attributes, glbuild.PositionAttribute) {
		errs = append(errs, fmt.Errorf("vertex stage does not declare attribute %s", glbuild.PositionAttribute))
	}
	frag, ok := c.backend.cfg.Fragments[fs.info.library]
	if !ok {
		errs = append(errs, fmt.Errorf("no software fragment program for library %q", fs.info.library))
	}
	if len(errs) > 0 {
		return 0, &ShaderError{Op: "link", Log: errors.Join(errs...).Error()}
	}
	prog := &cpuProgram{
		frag:     frag,
		location: make(map[string]UniformLocation),
	}
	for _, u := range slices.Concat(vs.info.uniforms, fs.info.uniforms) {
		if _, ok := prog.location[u.name]; ok {
			continue
		}
		prog.location[u.name] = UniformLocation(len(prog.values))
		prog.names = append(prog.names, u.name)
		prog.values = append(prog.values, make([]float32, u.size))
	}
	h := Program(c.handle())
	c.programs[h] = prog
	return h, nil
}

func (c *cpuContext) DeleteShader(s Shader) error {
	if err := c.check(); err != nil {
		return err
	} else if _, ok := c.shaders[s]; !ok {
		return ErrInvalidHandle
	}
	delete(c.shaders, s)
	return nil
}

func (c *cpuContext) DeleteProgram(p Program) error {
	if err := c.check(); err != nil {
		return err
	}
	prog, ok := c.programs[p]
	if !ok {
		return ErrInvalidHandle
	}
	if c.current == prog {
		c.current = nil
	}
	delete(c.programs, p)
	return nil
}

func (c *cpuContext) UniformLocation(p Program, name string) (UniformLocation, error) {
	if err := c.check(); err != nil {
		return -1, err
	}
	prog, ok := c.programs[p]
	if !ok {
		return -1, ErrInvalidHandle
	}
	loc, ok := prog.location[name]
	if !ok {
		return -1, nil
	}
	return loc, nil
}

func (c *cpuContext) UseProgram(p Program) error {
	if err := c.check(); err != nil {
		return err
	}
	prog, ok := c.programs[p]
	if !ok {
		return ErrInvalidHandle
	}
	c.current = prog
	return nil
}

func (c *cpuContext) SetUniform(loc UniformLocation, v ...float32) error {
	if err := c.check(); err != nil {
		return err
	} else if c.current == nil {
		return errNoProgram
	}
	switch len(v) {
	case 1, 2, 3, 4, 16:
	default:
		return errBadUniformLen
	}
	if loc < 0 {
		return nil
	} else if int(loc) >= len(c.current.values) {
		return ErrInvalidHandle
	}
	dst := c.current.values[loc]
	if len(dst) != len(v) {
		return fmt.Errorf("uniform %s has %d components, got %d", c.current.names[loc], len(dst), len(v))
	}
	copy(dst, v)
	return nil
}

func (c *cpuContext) CreateQuad() (Buffer, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	h := Buffer(c.handle())
	c.buffers[h] = true
	return h, nil
}

func (c *cpuContext) DeleteBuffer(b Buffer) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.buffers[b] {
		return ErrInvalidHandle
	}
	delete(c.buffers, b)
	return nil
}

func (c *cpuContext) Viewport(width, height int) error {
	if err := c.check(); err != nil {
		return err
	}
	c.surface.Resize(width, height)
	c.width, c.height = c.surface.Size()
	return nil
}

func (c *cpuContext) Clear(col color.RGBA) error {
	if err := c.check(); err != nil {
		return err
	}
	img := c.surface.Image()
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = col.R, col.G, col.B, col.A
	}
	return nil
}

// DrawQuad shades every pixel of the viewport and composites the result
// over the surface contents with premultiplied source-over blending.
func (c *cpuContext) DrawQuad(b Buffer) error {
	if err := c.check(); err != nil {
		return err
	} else if !c.buffers[b] {
		return ErrInvalidHandle
	} else if c.current == nil {
		return errNoProgram
	}
	shade, err := c.current.frag.Bind(c.current)
	if err != nil {
		return err
	}
	img := c.surface.Image()
	bounds := img.Bounds()
	w, h := min(c.width, bounds.Dx()), min(c.height, bounds.Dy())
	if w <= 0 || h <= 0 {
		return nil
	}
	workers := max(c.backend.cfg.Workers, 1)
	var g errgroup.Group
	g.SetLimit(workers)
	rowsPer := (h + workers - 1) / workers
	for y0 := 0; y0 < h; y0 += rowsPer {
		y1 := min(y0+rowsPer, h)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				// Row 0 of the image is the top of the window.
				fy := float32(h-y) - 0.5
				row := img.Pix[y*img.Stride : y*img.Stride+4*w]
				for x := 0; x < w; x++ {
					src := shade(float32(x)+0.5, fy)
					blendOver(row[4*x:4*x+4], src)
				}
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return err
	}
	c.backend.draws.Add(1)
	return nil
}

func blendOver(dst []uint8, src color.RGBA) {
	ia := 255 - uint32(src.A)
	dst[0] = uint8(min(uint32(src.R)+uint32(dst[0])*ia/255, 255))
	dst[1] = uint8(min(uint32(src.G)+uint32(dst[1])*ia/255, 255))
	dst[2] = uint8(min(uint32(src.B)+uint32(dst[2])*ia/255, 255))
	dst[3] = uint8(min(uint32(src.A)+uint32(dst[3])*ia/255, 255))
}

func (c *cpuContext) IsContextLost() bool { return c.lost.Load() }

func (c *cpuContext) Release() {
	if c.released {
		return
	}
	c.released = true
	b := c.backend
	b.mu.Lock()
	if i := slices.Index(b.contexts, c); i >= 0 {
		b.contexts = slices.Delete(b.contexts, i, i+1)
	}
	b.mu.Unlock()
	clear(c.shaders)
	clear(c.programs)
	clear(c.buffers)
	c.current = nil
}
