package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"pbr-engine/core"
	"pbr-engine/math"
	"pbr-engine/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	HasIndices  bool
	InstanceVBO uint32 // per-instance model matrix VBO (0 = not yet allocated)
	InstanceCap int    // capacity of InstanceVBO in instances
}

// Renderer is the OpenGL rendering backend. It implements scene.Drawer:
// one GPU program per material variant, dispatched exhaustively on the
// material kind.
type Renderer struct {
	flat   flatProgram
	phong  phongProgram
	pbr    pbrProgram
	skybox skyboxProgram

	viewportW int32
	viewportH int32

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ───────────────────────────────────────────────────────────────────

// Shared vertex shader for the lit/flat variants. The model matrix is a
// per-instance attribute (locations 3-6); singular draws read instance 0.
const meshVertSrc = `
#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 tex_coords;
layout(location = 3) in mat4 model;

uniform mat4 projection;
uniform mat4 view;

out vec3 frag_normal;
out vec3 frag_world_pos;
out vec2 frag_tex_coords;

void main() {
    vec4 world = model * vec4(position, 1.0);
    frag_world_pos  = world.xyz;
    frag_normal     = mat3(model) * normal;
    frag_tex_coords = tex_coords;
    gl_Position = projection * view * world;
}
` + "\x00"

const flatFragSrc = `
#version 410 core
in vec3 frag_normal;
in vec3 frag_world_pos;
in vec2 frag_tex_coords;

out vec4 frag_color;

uniform vec3 albedo;

void main() {
    frag_color = vec4(albedo, 1.0);
}
` + "\x00"

// Phong: fixed global ambient/diffuse/specular scaling, reflect-based
// specular. Below the terminator (N.L <= 0) only the ambient term remains.
const phongFragSrc = `
#version 410 core
in vec3 frag_normal;
in vec3 frag_world_pos;
in vec2 frag_tex_coords;

out vec4 frag_color;

uniform vec3 camera_pos;
uniform vec3 light_pos;
uniform bool has_light;

uniform vec3  mat_ambient;
uniform vec3  mat_diffuse;
uniform vec3  mat_specular;
uniform float mat_shininess;

const float ambient_scale  = 0.1;
const float diffuse_scale  = 1.0;
const float specular_scale = 0.5;

void main() {
    vec3 color = ambient_scale * mat_ambient;

    if (has_light) {
        vec3 N = normalize(frag_normal);
        vec3 L = normalize(light_pos - frag_world_pos);
        float ndl = dot(N, L);
        if (ndl > 0.0) {
            color += diffuse_scale * ndl * mat_diffuse;

            vec3 V = normalize(camera_pos - frag_world_pos);
            vec3 R = reflect(-L, N);
            color += specular_scale * pow(max(dot(V, R), 0.0), mat_shininess) * mat_specular;
        }
    }

    frag_color = vec4(color, 1.0);
}
` + "\x00"

// PBR: Cook-Torrance direct lobe for the single point light plus irradiance
// ambient, Reinhard tone map, gamma 1/1.8. Mirrors pbr-engine/brdf — keep
// the two in sync.
const pbrFragSrc = `
#version 410 core
in vec3 frag_normal;
in vec3 frag_world_pos;
in vec2 frag_tex_coords;

out vec4 frag_color;

uniform vec3 camera_pos;
uniform vec3 light_pos;
uniform vec3 light_color;
uniform bool has_light;

uniform vec3  albedo;
uniform float metallic;
uniform float roughness;
uniform float ao;

uniform samplerCube irradiance_map;
uniform sampler2D   albedo_map;
uniform bool        has_albedo_map;

const float PI = 3.14159265359;

float DistributionGGX(vec3 N, vec3 H, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float NdH = max(dot(N, H), 0.0);
    float d   = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

float GeometrySmith(float NdV, float NdL, float roughness) {
    return GeometrySchlickGGX(NdV, roughness) * GeometrySchlickGGX(NdL, roughness);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 FresnelSchlickRoughness(float cosTheta, vec3 F0, float roughness) {
    return F0 + (max(vec3(1.0 - roughness), F0) - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

void main() {
    vec3 base = albedo;
    if (has_albedo_map) {
        base *= texture(albedo_map, frag_tex_coords).rgb;
    }

    vec3 N  = normalize(frag_normal);
    vec3 V  = normalize(camera_pos - frag_world_pos);
    vec3 F0 = mix(vec3(0.04), base, metallic);

    // Direct term
    vec3 Lo = vec3(0.0);
    if (has_light) {
        vec3  toLight = light_pos - frag_world_pos;
        float dist2   = dot(toLight, toLight);
        vec3  L = normalize(toLight);
        vec3  H = normalize(V + L);
        vec3  radiance = light_color / dist2;

        float NdL = max(dot(N, L), 0.0);
        float NdV = max(dot(N, V), 0.0);

        float NDF = DistributionGGX(N, H, roughness);
        float G   = GeometrySmith(NdV, NdL, roughness);
        vec3  F   = FresnelSchlick(max(dot(H, V), 0.0), F0);

        vec3 specular = NDF * G * F / (4.0 * NdV * NdL + 0.0001);
        vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);

        Lo = (kD * base / PI + specular) * radiance * NdL;
    }

    // Indirect diffuse from the convolved environment. The specular
    // indirect term (prefiltered map + BRDF LUT) is an extension point.
    vec3 F_rough = FresnelSchlickRoughness(max(dot(N, V), 0.0), F0, roughness);
    vec3 kD_amb  = (vec3(1.0) - F_rough) * (1.0 - metallic);
    vec3 irradiance = texture(irradiance_map, N).rgb;
    vec3 ambient = kD_amb * irradiance * base * ao;

    vec3 color = ambient + Lo;
    color = color / (color + vec3(1.0));
    color = pow(color, vec3(1.0 / 1.8));

    frag_color = vec4(color, 1.0);
}
` + "\x00"

// Skybox: xyww forces depth = 1.0 after the perspective divide, so the
// environment never occludes foreground geometry. The view matrix arrives
// with its translation stripped.
const skyboxVertSrc = `
#version 410 core
layout(location = 0) in vec3 position;

uniform mat4 projection;
uniform mat4 view;

out vec3 frag_dir;

void main() {
    frag_dir = position;
    vec4 pos = projection * view * vec4(position, 1.0);
    gl_Position = pos.xyww;
}
` + "\x00"

const skyboxFragSrc = `
#version 410 core
in vec3 frag_dir;

out vec4 frag_color;

uniform samplerCube environment_map;

void main() {
    frag_color = vec4(texture(environment_map, normalize(frag_dir)).rgb, 1.0);
}
` + "\x00"

// ── Per-variant programs ──────────────────────────────────────────────────────

type flatProgram struct {
	prog       uint32
	projection int32
	view       int32
	albedo     int32
}

type phongProgram struct {
	prog       uint32
	projection int32
	view       int32
	cameraPos  int32
	lightPos   int32
	hasLight   int32
	ambient    int32
	diffuse    int32
	specular   int32
	shininess  int32
}

type pbrProgram struct {
	prog          uint32
	projection    int32
	view          int32
	cameraPos     int32
	lightPos      int32
	lightColor    int32
	hasLight      int32
	albedo        int32
	metallic      int32
	roughness     int32
	ao            int32
	irradianceMap int32
	albedoMap     int32
	hasAlbedoMap  int32
}

type skyboxProgram struct {
	prog           uint32
	projection     int32
	view           int32
	environmentMap int32
}

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL and compiles one program per material
// variant. Must be called after the window's GL context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	fmt.Printf("OpenGL version: %s\n", version)

	r := &Renderer{gpuMeshes: make(map[*scene.Mesh]*GPUMesh)}

	var err error
	if r.flat.prog, err = newProgram(meshVertSrc, flatFragSrc); err != nil {
		return nil, fmt.Errorf("flat shader compile: %w", err)
	}
	if r.phong.prog, err = newProgram(meshVertSrc, phongFragSrc); err != nil {
		return nil, fmt.Errorf("phong shader compile: %w", err)
	}
	if r.pbr.prog, err = newProgram(meshVertSrc, pbrFragSrc); err != nil {
		return nil, fmt.Errorf("pbr shader compile: %w", err)
	}
	if r.skybox.prog, err = newProgram(skyboxVertSrc, skyboxFragSrc); err != nil {
		return nil, fmt.Errorf("skybox shader compile: %w", err)
	}

	r.flat.projection = uniformLoc(r.flat.prog, "projection")
	r.flat.view = uniformLoc(r.flat.prog, "view")
	r.flat.albedo = uniformLoc(r.flat.prog, "albedo")

	r.phong.projection = uniformLoc(r.phong.prog, "projection")
	r.phong.view = uniformLoc(r.phong.prog, "view")
	r.phong.cameraPos = uniformLoc(r.phong.prog, "camera_pos")
	r.phong.lightPos = uniformLoc(r.phong.prog, "light_pos")
	r.phong.hasLight = uniformLoc(r.phong.prog, "has_light")
	r.phong.ambient = uniformLoc(r.phong.prog, "mat_ambient")
	r.phong.diffuse = uniformLoc(r.phong.prog, "mat_diffuse")
	r.phong.specular = uniformLoc(r.phong.prog, "mat_specular")
	r.phong.shininess = uniformLoc(r.phong.prog, "mat_shininess")

	r.pbr.projection = uniformLoc(r.pbr.prog, "projection")
	r.pbr.view = uniformLoc(r.pbr.prog, "view")
	r.pbr.cameraPos = uniformLoc(r.pbr.prog, "camera_pos")
	r.pbr.lightPos = uniformLoc(r.pbr.prog, "light_pos")
	r.pbr.lightColor = uniformLoc(r.pbr.prog, "light_color")
	r.pbr.hasLight = uniformLoc(r.pbr.prog, "has_light")
	r.pbr.albedo = uniformLoc(r.pbr.prog, "albedo")
	r.pbr.metallic = uniformLoc(r.pbr.prog, "metallic")
	r.pbr.roughness = uniformLoc(r.pbr.prog, "roughness")
	r.pbr.ao = uniformLoc(r.pbr.prog, "ao")
	r.pbr.irradianceMap = uniformLoc(r.pbr.prog, "irradiance_map")
	r.pbr.albedoMap = uniformLoc(r.pbr.prog, "albedo_map")
	r.pbr.hasAlbedoMap = uniformLoc(r.pbr.prog, "has_albedo_map")

	r.skybox.projection = uniformLoc(r.skybox.prog, "projection")
	r.skybox.view = uniformLoc(r.skybox.prog, "view")
	r.skybox.environmentMap = uniformLoc(r.skybox.prog, "environment_map")

	// Fixed texture units: albedo_map = 0, irradiance_map = 1,
	// environment_map = 0 (skybox program binds its own unit 0).
	gl.UseProgram(r.pbr.prog)
	gl.Uniform1i(r.pbr.albedoMap, 0)
	gl.Uniform1i(r.pbr.irradianceMap, 1)
	gl.UseProgram(r.skybox.prog)
	gl.Uniform1i(r.skybox.environmentMap, 0)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	return r, nil
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BeginFrame clears the default framebuffer.
func (r *Renderer) BeginFrame(clear core.Color) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	gl.ClearColor(clear.R, clear.G, clear.B, clear.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ── Draw (shading contract) ───────────────────────────────────────────────────

// Draw implements scene.Drawer. It activates the program for the object's
// material variant, binds the frame globals and material parameters, uploads
// the instance transforms, and issues exactly one draw call: instanced when
// the object carries multiple transforms, singular otherwise. frame and env
// are read-only; no buffer allocation besides the lazy mesh/instance upload
// happens here.
func (r *Renderer) Draw(obj *scene.Object, frame *scene.FrameState, env *scene.Environment) error {
	gpu, err := r.ensureUploaded(obj.Mesh)
	if err != nil {
		return err
	}
	if len(obj.Transforms) == 0 {
		return fmt.Errorf("object %q has no transforms", obj.Mesh.Name)
	}
	r.uploadInstances(gpu, obj.Transforms)

	switch obj.Material.Kind {
	case scene.MaterialFlat:
		err = r.bindFlat(&obj.Material, frame)
	case scene.MaterialPhong:
		err = r.bindPhong(&obj.Material, frame)
	case scene.MaterialPBR:
		err = r.bindPBR(&obj.Material, frame, env)
	case scene.MaterialSkybox:
		err = r.bindSkybox(frame, env)
	default:
		err = fmt.Errorf("unknown material kind %d", obj.Material.Kind)
	}
	if err != nil {
		return err
	}

	isSky := obj.Material.Kind == scene.MaterialSkybox
	if isSky {
		// xyww places the sky at depth exactly 1.0; LEQUAL lets it pass
		// where nothing else has drawn.
		gl.DepthFunc(gl.LEQUAL)
	}

	gl.BindVertexArray(gpu.VAO)
	n := int32(len(obj.Transforms))
	if n > 1 {
		if gpu.HasIndices {
			gl.DrawElementsInstanced(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil, n)
		} else {
			gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(len(obj.Mesh.Vertices)), n)
		}
	} else {
		if gpu.HasIndices {
			gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
		} else {
			gl.DrawArrays(gl.TRIANGLES, 0, int32(len(obj.Mesh.Vertices)))
		}
	}
	gl.BindVertexArray(0)

	if isSky {
		gl.DepthFunc(gl.LESS)
	}
	return nil
}

// ── Variant binding ───────────────────────────────────────────────────────────

func (r *Renderer) bindFlat(mat *scene.Material, frame *scene.FrameState) error {
	if err := checkLocs("flat", map[string]int32{
		"projection": r.flat.projection,
		"view":       r.flat.view,
		"albedo":     r.flat.albedo,
	}); err != nil {
		return err
	}
	gl.UseProgram(r.flat.prog)
	uniformMat4(r.flat.projection, frame.Projection)
	uniformMat4(r.flat.view, frame.View)
	uniformColor(r.flat.albedo, mat.Flat)
	return nil
}

func (r *Renderer) bindPhong(mat *scene.Material, frame *scene.FrameState) error {
	if err := checkLocs("phong", map[string]int32{
		"projection":    r.phong.projection,
		"view":          r.phong.view,
		"camera_pos":    r.phong.cameraPos,
		"light_pos":     r.phong.lightPos,
		"has_light":     r.phong.hasLight,
		"mat_ambient":   r.phong.ambient,
		"mat_diffuse":   r.phong.diffuse,
		"mat_specular":  r.phong.specular,
		"mat_shininess": r.phong.shininess,
	}); err != nil {
		return err
	}
	gl.UseProgram(r.phong.prog)
	uniformMat4(r.phong.projection, frame.Projection)
	uniformMat4(r.phong.view, frame.View)
	uniformVec3(r.phong.cameraPos, frame.CameraPos)
	uniformBool(r.phong.hasLight, frame.HasLight)
	uniformVec3(r.phong.lightPos, frame.Light.Position)
	uniformColor(r.phong.ambient, mat.Phong.Ambient)
	uniformColor(r.phong.diffuse, mat.Phong.Diffuse)
	uniformColor(r.phong.specular, mat.Phong.Specular)
	gl.Uniform1f(r.phong.shininess, mat.Phong.Shininess)
	return nil
}

func (r *Renderer) bindPBR(mat *scene.Material, frame *scene.FrameState, env *scene.Environment) error {
	if env == nil || env.Irradiance == 0 {
		return &core.ShaderBindError{Variant: "pbr", Name: "irradiance_map"}
	}
	if err := checkLocs("pbr", map[string]int32{
		"projection":  r.pbr.projection,
		"view":        r.pbr.view,
		"camera_pos":  r.pbr.cameraPos,
		"light_pos":   r.pbr.lightPos,
		"light_color": r.pbr.lightColor,
		"has_light":   r.pbr.hasLight,
		"albedo":      r.pbr.albedo,
		"metallic":    r.pbr.metallic,
		"roughness":   r.pbr.roughness,
		"ao":          r.pbr.ao,
	}); err != nil {
		return err
	}

	p := &mat.PBR
	if p.AlbedoTexture != nil && p.AlbedoTexture.GLID == 0 {
		return &core.ShaderBindError{Variant: "pbr", Name: "albedo_map"}
	}

	gl.UseProgram(r.pbr.prog)
	uniformMat4(r.pbr.projection, frame.Projection)
	uniformMat4(r.pbr.view, frame.View)
	uniformVec3(r.pbr.cameraPos, frame.CameraPos)
	uniformBool(r.pbr.hasLight, frame.HasLight)
	uniformVec3(r.pbr.lightPos, frame.Light.Position)
	uniformVec3(r.pbr.lightColor, frame.Light.Color)
	uniformColor(r.pbr.albedo, p.Albedo)
	gl.Uniform1f(r.pbr.metallic, p.Metallic)
	gl.Uniform1f(r.pbr.roughness, p.Roughness)
	gl.Uniform1f(r.pbr.ao, p.AO)

	if p.AlbedoTexture != nil {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, uint32(p.AlbedoTexture.GLID))
		uniformBool(r.pbr.hasAlbedoMap, true)
	} else {
		uniformBool(r.pbr.hasAlbedoMap, false)
	}

	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(env.Irradiance))
	return nil
}

func (r *Renderer) bindSkybox(frame *scene.FrameState, env *scene.Environment) error {
	if env == nil || env.Cubemap == 0 {
		return &core.ShaderBindError{Variant: "skybox", Name: "environment_map"}
	}
	if err := checkLocs("skybox", map[string]int32{
		"projection": r.skybox.projection,
		"view":       r.skybox.view,
	}); err != nil {
		return err
	}
	gl.UseProgram(r.skybox.prog)
	uniformMat4(r.skybox.projection, frame.Projection)
	// Strip translation so the environment stays centred on the camera.
	uniformMat4(r.skybox.view, frame.View.StripTranslation())
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, uint32(env.Cubemap))
	return nil
}

// ── Mesh upload ───────────────────────────────────────────────────────────────

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) (*GPUMesh, error) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu, nil
	}
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("mesh %q has no vertices", mesh.Name)
	}

	gpu := uploadMesh(mesh)
	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu, nil
}

// uploadMesh creates a VAO with the standard attribute layout:
// position = 0, normal = 1, tex_coords = 2, per-instance model = 3..6.
func uploadMesh(mesh *scene.Mesh) *GPUMesh {
	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(mesh.Indices)*4,
			gl.Ptr(mesh.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return gpu
}

// uploadInstances streams the model matrices to the per-mesh instance VBO,
// creating it and wiring attribute locations 3-6 into the VAO on first use.
// With divisor 1 a singular draw reads instance 0, so the same VBO serves
// both paths.
func (r *Renderer) uploadInstances(gpu *GPUMesh, models []math.Mat4) {
	const floatsPer = 16
	const stride = int32(floatsPer * 4) // one column-major mat4, 64 bytes

	n := len(models)
	buf := make([]float32, n*floatsPer)
	for i, m := range models {
		base := i * floatsPer
		for col := 0; col < 4; col++ {
			for row := 0; row < 4; row++ {
				buf[base+col*4+row] = m[col][row]
			}
		}
	}

	if gpu.InstanceVBO == 0 {
		gl.GenBuffers(1, &gpu.InstanceVBO)
		gl.BindVertexArray(gpu.VAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.InstanceVBO)

		// mat4 attribute = 4 consecutive vec4 slots at locations 3-6.
		for i := uint32(0); i < 4; i++ {
			gl.EnableVertexAttribArray(3 + i)
			gl.VertexAttribPointer(3+i, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(i)*16))
			gl.VertexAttribDivisor(3+i, 1)
		}
		gl.BindVertexArray(0)
	}

	byteSize := len(buf) * 4
	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.InstanceVBO)
	if n > gpu.InstanceCap {
		gl.BufferData(gl.ARRAY_BUFFER, byteSize, gl.Ptr(buf), gl.DYNAMIC_DRAW)
		gpu.InstanceCap = n
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, byteSize, gl.Ptr(buf))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		if gpu.InstanceVBO != 0 {
			gl.DeleteBuffers(1, &gpu.InstanceVBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteProgram(r.flat.prog)
	gl.DeleteProgram(r.phong.prog)
	gl.DeleteProgram(r.pbr.prog)
	gl.DeleteProgram(r.skybox.prog)
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func uniformLoc(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

// checkLocs returns a ShaderBindError for the first unresolved uniform.
func checkLocs(variant string, locs map[string]int32) error {
	for name, loc := range locs {
		if loc < 0 {
			return &core.ShaderBindError{Variant: variant, Name: name}
		}
	}
	return nil
}

func uniformMat4(loc int32, m math.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, (*float32)(unsafe.Pointer(&m[0][0])))
}

func uniformVec3(loc int32, v math.Vec3) {
	gl.Uniform3f(loc, v.X, v.Y, v.Z)
}

func uniformColor(loc int32, c core.Color) {
	gl.Uniform3f(loc, c.R, c.G, c.B)
}

func uniformBool(loc int32, b bool) {
	if b {
		gl.Uniform1i(loc, 1)
	} else {
		gl.Uniform1i(loc, 0)
	}
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
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
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
