package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/core"
	"pbr-engine/scene"
)

// UploadTexture copies a decoded texture's RGBA pixels to a GL texture with
// mipmaps and stores the handle in tex.GLID. Re-upload is a no-op.
func UploadTexture(tex *scene.Texture) error {
	if tex.GLID != 0 {
		return nil
	}
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) != tex.Width*tex.Height*4 {
		return fmt.Errorf("texture %q has inconsistent dimensions %dx%d for %d bytes",
			tex.Name, tex.Width, tex.Height, len(tex.Pixels))
	}

	var id uint32
	gl.GenTextures(1, &id)
	if id == 0 {
		return &core.ResourceAllocationError{Resource: "texture " + tex.Name, Err: fmt.Errorf("glGenTextures returned 0")}
	}

	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = core.TextureHandle(id)
	return nil
}

// DeleteTexture frees the GL texture behind the handle and clears it.
func DeleteTexture(tex *scene.Texture) {
	if tex.GLID == 0 {
		return
	}
	id := uint32(tex.GLID)
	gl.DeleteTextures(1, &id)
	tex.GLID = 0
}
