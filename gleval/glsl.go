package gleval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/soypat/vib3/glbuild"
)

// glslUniformTypes are the uniform types the software backend can store.
var glslUniformTypes = map[string]int{
	"float": 1,
	"int":   1,
	"bool":  1,
	"vec2":  2,
	"vec3":  3,
	"vec4":  4,
	"mat4":  16,
}

type glslUniform struct {
	name string
	size int
}

// glslInfo is what the software backend extracts from a stage source.
type glslInfo struct {
	uniforms   []glslUniform
	attributes []string
	// hasOutput is set for fragment stages writing gl_FragColor or declaring an out vec4.
	hasOutput bool
	library   string
}

// stripComments replaces comments with spaces and keeps newlines so line numbers hold.
func stripComments(src string) string {
	b := []byte(src)
	for i := 0; i < len(b)-1; i++ {
		if b[i] == '/' && b[i+1] == '/' {
			for i < len(b) && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		} else if b[i] == '/' && b[i+1] == '*' {
			for i < len(b) {
				if i+1 < len(b) && b[i] == '*' && b[i+1] == '/' {
					b[i], b[i+1] = ' ', ' '
					i++
					break
				}
				if b[i] != '\n' {
					b[i] = ' '
				}
				i++
			}
		}
	}
	return string(b)
}

// checkDelimiters reports the first unbalanced bracket.
func checkDelimiters(src string) error {
	var stack []byte
	line := 1
	closing := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\n':
			line++
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != closing[c] {
				return fmt.Errorf("0:%d: unexpected '%c'", line, c)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("0:%d: unclosed '%c'", line, stack[len(stack)-1])
	}
	return nil
}

// parseGLSL validates the structure of a stage source and collects its global declarations.
// The returned error text is used as the stage info log.
func parseGLSL(stage Stage, source string) (info glslInfo, err error) {
	source = strings.TrimRight(source, "\x00")
	if strings.TrimSpace(source) == "" {
		return info, errors.New("0:0: empty source")
	}
	src := stripComments(source)
	if err = checkDelimiters(src); err != nil {
		return info, err
	}
	info.library, _ = glbuild.ParseLibraryPragma([]byte(src))
	var errs []string
	hasMain := false
	for n, line := range strings.Split(src, "\n") {
		fields := strings.Fields(strings.ReplaceAll(line, ";", " ; "))
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uniform":
			if len(fields) < 3 {
				errs = append(errs, fmt.Sprintf("0:%d: malformed uniform declaration", n+1))
				continue
			}
			typ, name := fields[1], fields[2]
			if isPrecision(typ) && len(fields) >= 4 {
				typ, name = fields[2], fields[3]
			}
			size, ok := glslUniformTypes[typ]
			if !ok {
				errs = append(errs, fmt.Sprintf("0:%d: unknown uniform type %q", n+1, typ))
				continue
			}
			info.uniforms = append(info.uniforms, glslUniform{name: name, size: size})
		case "in", "attribute":
			if stage == StageVertex && len(fields) >= 3 {
				info.attributes = append(info.attributes, fields[2])
			}
		case "out":
			if stage == StageFragment && len(fields) >= 2 && fields[1] == "vec4" {
				info.hasOutput = true
			}
		}
		if strings.Contains(line, "void main(") || strings.Contains(line, "void main (") {
			hasMain = true
		}
		if stage == StageFragment && strings.Contains(line, "gl_FragColor") {
			info.hasOutput = true
		}
	}
	if !hasMain {
		errs = append(errs, "0:0: missing entry point void main()")
	}
	if stage == StageFragment && !info.hasOutput {
		errs = append(errs, "0:0: fragment stage writes no color output")
	}
	if len(errs) > 0 {
		return info, errors.New(strings.Join(errs, "\n"))
	}
	return info, nil
}

func isPrecision(s string) bool {
	return s == "lowp" || s == "mediump" || s == "highp"
}
