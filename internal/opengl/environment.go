package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/core"
	"pbr-engine/ibl"
	"pbr-engine/scene"
)

// EnvironmentConfig sets the resolutions of the baked cubemaps.
type EnvironmentConfig struct {
	CubemapSize    int
	IrradianceSize int
}

// DefaultEnvironmentConfig returns the standard bake resolutions.
func DefaultEnvironmentConfig() EnvironmentConfig {
	return EnvironmentConfig{CubemapSize: 512, IrradianceSize: 32}
}

type envState int

const (
	envEmpty envState = iota
	envPanoramaLoaded
	envCubemapBaked
	envReady
)

func (s envState) String() string {
	switch s {
	case envEmpty:
		return "empty"
	case envPanoramaLoaded:
		return "panorama-loaded"
	case envCubemapBaked:
		return "cubemap-baked"
	case envReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Environment bakes an equirectangular panorama into an environment cubemap
// and then into a diffuse irradiance cubemap. The bake steps must run in
// order: SetPanorama, BakeCubemap, BakeIrradiance. Loading a new panorama
// invalidates previously baked textures.
type Environment struct {
	cfg   EnvironmentConfig
	state envState

	panorama   uint32
	cubemap    uint32
	irradiance uint32

	equirect   bakeProgram
	irradiated bakeProgram

	fbo      uint32
	depthRBO uint32

	cubeMesh *scene.Mesh
	cubeGPU  *GPUMesh
}

// bakeProgram is an offscreen face-render program: a cube pass with a fixed
// projection, one view per face, and a single source sampler.
type bakeProgram struct {
	prog       uint32
	projection int32
	view       int32
	source     int32
}

// ── Bake shaders ──────────────────────────────────────────────────────────────

const bakeVertSrc = `
#version 410 core
layout(location = 0) in vec3 position;

uniform mat4 projection;
uniform mat4 view;

out vec3 local_pos;

void main() {
    local_pos = position;
    gl_Position = projection * view * vec4(position, 1.0);
}
` + "\x00"

const equirectFragSrc = `
#version 410 core
in vec3 local_pos;

out vec4 frag_color;

uniform sampler2D panorama;

const vec2 inv_atan = vec2(0.1591, 0.3183);

vec2 sample_spherical_map(vec3 v) {
    vec2 uv = vec2(atan(v.z, v.x), asin(v.y));
    uv *= inv_atan;
    uv += 0.5;
    return uv;
}

void main() {
    vec3 dir = normalize(local_pos);
    frag_color = vec4(texture(panorama, sample_spherical_map(dir)).rgb, 1.0);
}
` + "\x00"

// Cosine-weighted hemisphere convolution. The fixed angular step trades
// accuracy for a bounded bake time; at 32x32 output the residual banding is
// below what the diffuse term can show.
const irradianceFragSrc = `
#version 410 core
in vec3 local_pos;

out vec4 frag_color;

uniform samplerCube environment_map;

const float PI = 3.14159265359;

void main() {
    vec3 normal = normalize(local_pos);

    vec3 up    = vec3(0.0, 1.0, 0.0);
    vec3 right = normalize(cross(up, normal));
    up         = normalize(cross(normal, right));

    vec3 irradiance = vec3(0.0);
    float sample_delta = 0.025;
    float count = 0.0;
    for (float phi = 0.0; phi < 2.0 * PI; phi += sample_delta) {
        for (float theta = 0.0; theta < 0.5 * PI; theta += sample_delta) {
            vec3 tangent = vec3(sin(theta) * cos(phi), sin(theta) * sin(phi), cos(theta));
            vec3 dir = tangent.x * right + tangent.y * up + tangent.z * normal;
            irradiance += texture(environment_map, dir).rgb * cos(theta) * sin(theta);
            count += 1.0;
        }
    }
    irradiance = PI * irradiance / count;

    frag_color = vec4(irradiance, 1.0);
}
` + "\x00"

// ── Construction ──────────────────────────────────────────────────────────────

// NewEnvironment compiles the bake programs and allocates the offscreen
// framebuffer. Requires a current GL context.
func NewEnvironment(cfg EnvironmentConfig) (*Environment, error) {
	if cfg.CubemapSize <= 0 || cfg.IrradianceSize <= 0 {
		return nil, fmt.Errorf("invalid environment config %+v", cfg)
	}

	e := &Environment{cfg: cfg, state: envEmpty}

	var err error
	if e.equirect.prog, err = newProgram(bakeVertSrc, equirectFragSrc); err != nil {
		return nil, fmt.Errorf("equirect shader compile: %w", err)
	}
	if e.irradiated.prog, err = newProgram(bakeVertSrc, irradianceFragSrc); err != nil {
		return nil, fmt.Errorf("irradiance shader compile: %w", err)
	}

	e.equirect.projection = uniformLoc(e.equirect.prog, "projection")
	e.equirect.view = uniformLoc(e.equirect.prog, "view")
	e.equirect.source = uniformLoc(e.equirect.prog, "panorama")
	e.irradiated.projection = uniformLoc(e.irradiated.prog, "projection")
	e.irradiated.view = uniformLoc(e.irradiated.prog, "view")
	e.irradiated.source = uniformLoc(e.irradiated.prog, "environment_map")

	gl.UseProgram(e.equirect.prog)
	gl.Uniform1i(e.equirect.source, 0)
	gl.UseProgram(e.irradiated.prog)
	gl.Uniform1i(e.irradiated.source, 0)

	gl.GenFramebuffers(1, &e.fbo)
	gl.GenRenderbuffers(1, &e.depthRBO)

	e.cubeMesh = scene.CreateCube()
	e.cubeGPU = uploadMesh(e.cubeMesh)

	return e, nil
}

// State reports the current bake stage, for logging.
func (e *Environment) State() string { return e.state.String() }

// ── Bake pipeline ─────────────────────────────────────────────────────────────

// SetPanorama uploads an equirectangular panorama and resets the bake
// pipeline. Previously baked cubemap and irradiance textures are deleted.
func (e *Environment) SetPanorama(tex *scene.Texture) error {
	if tex == nil || len(tex.Pixels) == 0 {
		return fmt.Errorf("panorama texture is empty")
	}

	if e.panorama != 0 && e.panorama != uint32(tex.GLID) {
		gl.DeleteTextures(1, &e.panorama)
	}
	e.panorama = 0
	if e.cubemap != 0 {
		gl.DeleteTextures(1, &e.cubemap)
		e.cubemap = 0
	}
	if e.irradiance != 0 {
		gl.DeleteTextures(1, &e.irradiance)
		e.irradiance = 0
	}

	if err := UploadTexture(tex); err != nil {
		return fmt.Errorf("upload panorama: %w", err)
	}
	e.panorama = uint32(tex.GLID)
	e.state = envPanoramaLoaded
	return nil
}

// BakeCubemap projects the panorama onto a cubemap, rendering the six faces
// through 90-degree cameras at the origin.
func (e *Environment) BakeCubemap() error {
	if e.state != envPanoramaLoaded {
		return &core.EnvironmentStateError{Op: "BakeCubemap", State: e.state.String(), Required: envPanoramaLoaded.String()}
	}

	cubemap, err := e.newCubemapTexture(e.cfg.CubemapSize)
	if err != nil {
		return err
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, e.panorama)
	if err := e.renderFaces(&e.equirect, cubemap, e.cfg.CubemapSize); err != nil {
		gl.DeleteTextures(1, &cubemap)
		return err
	}

	e.cubemap = cubemap
	e.state = envCubemapBaked
	return nil
}

// BakeIrradiance convolves the environment cubemap into a low-resolution
// diffuse irradiance cubemap.
func (e *Environment) BakeIrradiance() error {
	if e.state != envCubemapBaked {
		return &core.EnvironmentStateError{Op: "BakeIrradiance", State: e.state.String(), Required: envCubemapBaked.String()}
	}

	irradiance, err := e.newCubemapTexture(e.cfg.IrradianceSize)
	if err != nil {
		return err
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, e.cubemap)
	if err := e.renderFaces(&e.irradiated, irradiance, e.cfg.IrradianceSize); err != nil {
		gl.DeleteTextures(1, &irradiance)
		return err
	}

	e.irradiance = irradiance
	e.state = envReady
	return nil
}

// Handles returns the GL texture handles for rendering. Fails until both
// bake steps have run.
func (e *Environment) Handles() (scene.Environment, error) {
	if e.state != envReady {
		return scene.Environment{}, &core.EnvironmentStateError{Op: "Handles", State: e.state.String(), Required: envReady.String()}
	}
	return scene.Environment{
		Panorama:   core.TextureHandle(e.panorama),
		Cubemap:    core.TextureHandle(e.cubemap),
		Irradiance: core.TextureHandle(e.irradiance),
	}, nil
}

// ── Offscreen rendering ───────────────────────────────────────────────────────

func (e *Environment) newCubemapTexture(size int) (uint32, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, &core.ResourceAllocationError{Resource: "cubemap texture", Err: fmt.Errorf("glGenTextures returned 0")}
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	for i := 0; i < ibl.FaceCount; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i),
			0, gl.RGB16F, int32(size), int32(size), 0, gl.RGB, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	return tex, nil
}

// renderFaces draws the inward-facing cube once per face into the target
// cubemap. The source texture must already be bound to unit 0.
func (e *Environment) renderFaces(p *bakeProgram, target uint32, size int) error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, e.fbo)
	gl.BindRenderbuffer(gl.RENDERBUFFER, e.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(size), int32(size))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, e.depthRBO)

	gl.UseProgram(p.prog)
	proj := ibl.FaceProjection()
	uniformMat4(p.projection, proj)

	gl.Viewport(0, 0, int32(size), int32(size))
	gl.BindVertexArray(e.cubeGPU.VAO)

	views := ibl.FaceViews()
	for i := 0; i < ibl.FaceCount; i++ {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0,
			gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), target, 0)
		if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			gl.BindVertexArray(0)
			gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
			return &core.ResourceAllocationError{
				Resource: "bake framebuffer",
				Err:      fmt.Errorf("incomplete framebuffer, status 0x%x", status),
			}
		}

		uniformMat4(p.view, views[i])
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		gl.DrawElements(gl.TRIANGLES, e.cubeGPU.IndexCount, gl.UNSIGNED_INT, nil)
	}

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// Destroy releases all GL resources owned by the environment.
func (e *Environment) Destroy() {
	if e.panorama != 0 {
		gl.DeleteTextures(1, &e.panorama)
	}
	if e.cubemap != 0 {
		gl.DeleteTextures(1, &e.cubemap)
	}
	if e.irradiance != 0 {
		gl.DeleteTextures(1, &e.irradiance)
	}
	gl.DeleteFramebuffers(1, &e.fbo)
	gl.DeleteRenderbuffers(1, &e.depthRBO)
	gl.DeleteProgram(e.equirect.prog)
	gl.DeleteProgram(e.irradiated.prog)
	gl.DeleteVertexArrays(1, &e.cubeGPU.VAO)
	gl.DeleteBuffers(1, &e.cubeGPU.VBO)
	gl.DeleteBuffers(1, &e.cubeGPU.EBO)
	e.state = envEmpty
}
