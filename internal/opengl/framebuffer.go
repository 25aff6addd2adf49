package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/gfx"
)

// framebuffer is an FBO with its own depth renderbuffer.
type framebuffer struct {
	width, height int
	depth         uint32
}

func (d *Device) CreateFramebuffer(width, height int) (uint32, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid framebuffer size %dx%d", width, height)
	}
	prev := d.BoundFramebuffer()
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, prev)

	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	fb := &framebuffer{width: width, height: height}
	gl.GenRenderbuffers(1, &fb.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	d.framebuffers[fbo] = fb
	return fbo, nil
}

// AttachColor attaches one face and level of tex as color attachment 0.
// The level must match the framebuffer size.
func (d *Device) AttachColor(fbo, tex uint32, face, level int) error {
	fb, ok := d.framebuffers[fbo]
	if !ok {
		return fmt.Errorf("unknown framebuffer %d", fbo)
	}
	t, ok := d.textures[tex]
	if !ok {
		return fmt.Errorf("unknown texture %d", tex)
	}
	if face < 0 || face >= t.faces() || level < 0 || level >= t.desc.Mips {
		return fmt.Errorf("texture %d: face %d level %d out of range", tex, face, level)
	}
	if w, h := gfx.LevelSize(t.desc.Width, level), gfx.LevelSize(t.desc.Height, level); w != fb.width || h != fb.height {
		return fmt.Errorf("texture %d level %d is %dx%d, framebuffer is %dx%d", tex, level, w, h, fb.width, fb.height)
	}

	prev := d.BoundFramebuffer()
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, prev)

	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, t.faceTarget(face), tex, int32(level))
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("FBO incomplete: status=0x%X", status)
	}
	return nil
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	fb, ok := d.framebuffers[fbo]
	if !ok {
		return
	}
	gl.DeleteRenderbuffers(1, &fb.depth)
	gl.DeleteFramebuffers(1, &fbo)
	delete(d.framebuffers, fbo)
}
