package glbuild_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soypat/vib3"
	"github.com/soypat/vib3/glbuild"
)

func TestFragmentDeclarations(t *testing.T) {
	programmer := glbuild.NewDefaultProgrammer()
	source := new(bytes.Buffer)
	for _, name := range vib3.LibraryNames() {
		lib, _ := vib3.LookupLibrary(name)
		source.Reset()
		n, err := programmer.WriteFragment(source, lib)
		if err != nil {
			t.Fatal(err)
		} else if n != source.Len() {
			t.Fatal("written length mismatch")
		}
		src := source.String()
		fnName := string(lib.AppendShaderName(nil))
		mustOnce := []string{
			glbuild.LibraryPragma + name + "\n",
			"float " + fnName + "(vec4 p, int shape, float grid, float t)",
			"#define VIB3_GEOMETRY " + fnName,
			"#define VIB3_FRAGCOLOR",
			"vec3 project4D(vec4 p)",
			"const float VIB3_PROJECTION_K=2.5;",
			"const float VIB3_GRID_SCALE=0.08;",
			"vec3 applyCoreWarp(",
			"void main()",
		}
		for _, decl := range vib3.UniformDecls() {
			mustOnce = append(mustOnce, "uniform "+decl.Type+" "+decl.Name+";")
		}
		for _, want := range mustOnce {
			if c := strings.Count(src, want); c != 1 {
				t.Errorf("%s: want one %q, got %d", name, want, c)
			}
		}
		hasDensity := strings.Contains(src, "#define VIB3_DENSITY")
		if hasDensity != (lib.Kind() == vib3.KindDensity) {
			t.Errorf("%s: density define present=%v for kind %d", name, hasDensity, lib.Kind())
		}
		if !strings.HasPrefix(src, "#version 330 core\n") {
			t.Errorf("%s: missing version header", name)
		}
		got, ok := glbuild.ParseLibraryPragma(source.Bytes())
		if !ok || got != name {
			t.Errorf("%s: pragma parsed as %q", name, got)
		}
		// Geometry function must be declared before main uses it.
		if strings.Index(src, "float "+fnName+"(") > strings.Index(src, "void main()") {
			t.Errorf("%s: geometry function declared after main", name)
		}
	}
}

func TestES100Profile(t *testing.T) {
	programmer := glbuild.NewProgrammer(glbuild.ProgrammerConfig{Profile: glbuild.ProfileES100})
	src, err := programmer.Source(vib3.Quantum())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(src.Fragment, "#version 100\n") || !strings.HasPrefix(src.Vertex, "#version 100\n") {
		t.Error("missing ES version header")
	}
	if !strings.Contains(src.Fragment, "#define VIB3_FRAGCOLOR gl_FragColor") {
		t.Error("ES fragment must write gl_FragColor")
	}
	if strings.Contains(src.Fragment, "out vec4") {
		t.Error("ES fragment declares an output variable")
	}
	if !strings.Contains(src.Vertex, "attribute vec2 "+glbuild.PositionAttribute) {
		t.Error("ES vertex must declare an attribute")
	}
	if !strings.Contains(src.Fragment, "precision mediump float;") {
		t.Error("ES fragment missing precision")
	}
}

func TestWriteFragmentNilLibrary(t *testing.T) {
	_, err := glbuild.NewDefaultProgrammer().WriteFragment(new(bytes.Buffer), nil)
	if err == nil {
		t.Fatal("expected error for nil library")
	}
}

func TestParseLibraryPragma(t *testing.T) {
	for _, test := range []struct {
		src  string
		want string
		ok   bool
	}{
		{src: "#version 330 core\n#pragma vib3_library faceted\nvoid main(){}", want: "faceted", ok: true},
		{src: "#pragma vib3_library   quantum  \n", want: "quantum", ok: true},
		{src: "#pragma vib3_library polychora", want: "polychora", ok: true},
		{src: "#pragma vib3_library \n", ok: false},
		{src: "void main(){}", ok: false},
	} {
		got, ok := glbuild.ParseLibraryPragma([]byte(test.src))
		if ok != test.ok || got != test.want {
			t.Errorf("%q: got (%q,%v), want (%q,%v)", test.src, got, ok, test.want, test.ok)
		}
	}
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float32
		want string
	}{
		{v: 1, want: "1."},
		{v: -2.5, want: "-2.5"},
		{v: 0.25, want: "0.25"},
		{v: 0, want: "0."},
	} {
		got := string(glbuild.AppendFloat(nil, '-', '.', test.v))
		if got != test.want {
			t.Errorf("AppendFloat(%g) got %q, want %q", test.v, got, test.want)
		}
	}
	got := string(glbuild.AppendFloatDecl(nil, "k", vib3.ProjectionK))
	if got != "const float k=2.5;\n" {
		t.Errorf("float decl got %q", got)
	}
}
