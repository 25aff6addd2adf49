package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/gfx"
)

func (d *Device) CompileShader(src gfx.ShaderSource) (uint32, error) {
	if src.Vertex == "" || src.Fragment == "" {
		return 0, fmt.Errorf("shader %q: missing stage", src.Name)
	}
	prog, err := newProgram(src.Vertex+"\x00", src.Fragment+"\x00")
	if err != nil {
		return 0, fmt.Errorf("shader %q: %w", src.Name, err)
	}
	logger.Debugf("compiled shader %q as program %d", src.Name, prog)
	return prog, nil
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

// SetUniform writes v without binding prog.
func (d *Device) SetUniform(prog uint32, loc int32, v gfx.Value) {
	if loc < 0 {
		return
	}
	switch v := v.(type) {
	case gfx.Int:
		gl.ProgramUniform1i(prog, loc, int32(v))
	case gfx.Float:
		gl.ProgramUniform1f(prog, loc, float32(v))
	case gfx.Vec3:
		gl.ProgramUniform3f(prog, loc, v[0], v[1], v[2])
	case gfx.Vec4:
		gl.ProgramUniform4f(prog, loc, v[0], v[1], v[2], v[3])
	case gfx.Mat4:
		// mgl32 matrices are column-major, as GL expects.
		gl.ProgramUniformMatrix4fv(prog, loc, 1, false, (*float32)(unsafe.Pointer(&v[0])))
	default:
		logger.Warningf("program %d: unsupported uniform value %T", prog, v)
	}
}

func (d *Device) DeleteShader(prog uint32) {
	gl.DeleteProgram(prog)
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
