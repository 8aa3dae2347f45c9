package glrender

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild"
	"github.com/soypat/vib3/gleval"
)

// ProgramManager compiles and links visualizer programs on a context.
type ProgramManager struct {
	ctx        gleval.Context
	programmer *glbuild.Programmer
	log        *slog.Logger
}

// NewProgramManager returns a manager for ctx. A nil programmer uses [glbuild.NewDefaultProgrammer].
func NewProgramManager(ctx gleval.Context, programmer *glbuild.Programmer) *ProgramManager {
	if programmer == nil {
		programmer = glbuild.NewDefaultProgrammer()
	}
	return &ProgramManager{ctx: ctx, programmer: programmer, log: vib3.Logger()}
}

// Program is a linked program with every uniform location resolved.
type Program struct {
	handle gleval.Program
	// locs holds uniform locations in [vib3.UniformDecls] order.
	locs  []gleval.UniformLocation
	names map[string]int
}

// Handle returns the backend program handle.
func (p *Program) Handle() gleval.Program { return p.handle }

// Location returns the cached location of a uniform. Uniforms the program
// does not use return -1.
func (p *Program) Location(name string) gleval.UniformLocation {
	i, ok := p.names[name]
	if !ok {
		return -1
	}
	return p.locs[i]
}

// Upload writes u to the program, which must be in use. Only cached locations are used.
func (p *Program) Upload(ctx gleval.Context, u *vib3.Uniforms) (err error) {
	i := 0
	u.ForEach(func(name string, value []float32) {
		loc := p.locs[i]
		i++
		if err != nil || loc < 0 {
			return
		}
		if e := ctx.SetUniform(loc, value...); e != nil {
			err = fmt.Errorf("setting %s: %w", name, e)
		}
	})
	return err
}

// Compile compiles one stage. Failures are logged with their info log.
func (pm *ProgramManager) Compile(stage gleval.Stage, source string) (gleval.Shader, error) {
	s, err := pm.ctx.CompileShader(stage, source)
	if err != nil {
		pm.log.Warn("shader compile failed", slog.String("stage", stage.String()), slog.Any("err", err))
		return 0, err
	}
	return s, nil
}

// Link links the stages, deletes them and resolves every uniform location once.
func (pm *ProgramManager) Link(vertex, fragment gleval.Shader) (*Program, error) {
	h, err := pm.ctx.LinkProgram(vertex, fragment)
	errDel := errors.Join(pm.ctx.DeleteShader(vertex), pm.ctx.DeleteShader(fragment))
	if err != nil {
		pm.log.Warn("program link failed", slog.Any("err", err))
		return nil, err
	} else if errDel != nil {
		pm.ctx.DeleteProgram(h)
		return nil, errDel
	}
	decls := vib3.UniformDecls()
	prog := &Program{
		handle: h,
		locs:   make([]gleval.UniformLocation, len(decls)),
		names:  make(map[string]int, len(decls)),
	}
	active := 0
	for i, decl := range decls {
		loc, err := pm.ctx.UniformLocation(h, decl.Name)
		if err != nil {
			pm.ctx.DeleteProgram(h)
			return nil, fmt.Errorf("resolving uniform %s: %w", decl.Name, err)
		}
		prog.locs[i] = loc
		prog.names[decl.Name] = i
		if loc >= 0 {
			active++
		}
	}
	pm.log.Debug("uniforms resolved", slog.Int("active", active), slog.Int("declared", len(decls)))
	return prog, nil
}

// BuildSource compiles and links the given sources.
func (pm *ProgramManager) BuildSource(src glbuild.ShaderSource) (*Program, error) {
	vs, err := pm.Compile(gleval.StageVertex, src.Vertex)
	if err != nil {
		return nil, err
	}
	fs, err := pm.Compile(gleval.StageFragment, src.Fragment)
	if err != nil {
		pm.ctx.DeleteShader(vs)
		return nil, err
	}
	return pm.Link(vs, fs)
}

// Build writes, compiles and links the program of lib.
func (pm *ProgramManager) Build(lib vib3.ShapeLibrary) (*Program, error) {
	src, err := pm.programmer.Source(lib)
	if err != nil {
		return nil, err
	}
	return pm.BuildSource(src)
}

// Delete deletes the program. It is a no-op for nil programs.
func (pm *ProgramManager) Delete(p *Program) error {
	if p == nil {
		return nil
	}
	return pm.ctx.DeleteProgram(p.handle)
}
