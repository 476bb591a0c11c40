package scene

import (
	"pbr-engine/core"
)

// MaterialKind discriminates the closed set of shading models. The renderer
// dispatches on it exhaustively; adding a kind means adding a program and a
// case to the backend, not a new type.
type MaterialKind int

const (
	// MaterialFlat outputs the albedo color unconditionally.
	MaterialFlat MaterialKind = iota
	// MaterialPhong is classic ambient + diffuse + specular shading.
	MaterialPhong
	// MaterialPBR is Cook-Torrance metallic/roughness with irradiance ambient.
	MaterialPBR
	// MaterialSkybox samples the environment cubemap along the view ray.
	MaterialSkybox
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialFlat:
		return "flat"
	case MaterialPhong:
		return "phong"
	case MaterialPBR:
		return "pbr"
	case MaterialSkybox:
		return "skybox"
	}
	return "unknown"
}

// PhongParams is the classic material triple plus shininess exponent.
type PhongParams struct {
	Ambient   core.Color
	Diffuse   core.Color
	Specular  core.Color
	Shininess float32
}

// PBRParams is the metallic/roughness parameter set. AlbedoTexture, when
// non-nil and uploaded, is multiplied with Albedo; the irradiance map itself
// comes from the frame's Environment, not from the material.
type PBRParams struct {
	Albedo    core.Color
	Metallic  float32 // 0 = dielectric, 1 = metal
	Roughness float32 // must be in (0, 1]; 0 degenerates the GGX lobe
	AO        float32 // ambient occlusion, 0..1

	AlbedoTexture *Texture
}

// Material is a closed variant: exactly the fields for Kind are meaningful.
// Each drawable object owns one Material for its whole lifetime.
type Material struct {
	Kind  MaterialKind
	Flat  core.Color
	Phong PhongParams
	PBR   PBRParams
}

// NewFlatMaterial returns a debug/solid material of a single color.
func NewFlatMaterial(albedo core.Color) Material {
	return Material{Kind: MaterialFlat, Flat: albedo}
}

func NewPhongMaterial(ambient, diffuse, specular core.Color, shininess float32) Material {
	return Material{Kind: MaterialPhong, Phong: PhongParams{
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: shininess,
	}}
}

// NewPBRMaterial returns a PBR material with the default untextured
// parameter set: white albedo, dielectric, nearly smooth, full AO.
func NewPBRMaterial() Material {
	return Material{Kind: MaterialPBR, PBR: PBRParams{
		Albedo:    core.ColorWhite,
		Metallic:  0,
		Roughness: 0.05,
		AO:        1,
	}}
}

// NewSkyboxMaterial returns the environment-sampling material. The cubemap
// handle is read from the Environment at draw time.
func NewSkyboxMaterial() Material {
	return Material{Kind: MaterialSkybox}
}
