// Package brdf holds the shading math used by the material shaders,
// implemented on the CPU in float32. The GLSL embedded in internal/opengl
// evaluates the same expressions per fragment; this package is the reference
// form, shared by tests and by any CPU-side preview path.
package brdf

import (
	stdmath "math"

	"pbr-engine/math"
)

const Pi = float32(stdmath.Pi)

// GammaExponent is the gamma-encoding exponent applied after tone mapping.
// 1/1.8 is carried over from the source material rather than the conventional
// 1/2.2; change it here and in the pbr fragment shader together.
const GammaExponent = float32(1.0 / 1.8)

// specularEpsilon guards the Cook-Torrance denominator against divide-by-zero
// at grazing angles.
const specularEpsilon = float32(1e-4)

// Fixed Phong scaling applied uniformly to every Phong material.
const (
	PhongAmbientScale  = float32(0.1)
	PhongDiffuseScale  = float32(1.0)
	PhongSpecularScale = float32(0.5)
)

func pow32(x, y float32) float32 {
	return float32(stdmath.Pow(float64(x), float64(y)))
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// DistributionGGX is the GGX/Trowbridge-Reitz normal distribution function.
func DistributionGGX(n, h math.Vec3, roughness float32) float32 {
	a := roughness * roughness
	a2 := a * a
	ndh := max32(n.Dot(h), 0)
	d := ndh*ndh*(a2-1) + 1
	return a2 / (Pi * d * d)
}

// GeometrySchlickGGX is the Schlick-GGX geometry term for one direction,
// with the direct-lighting roughness remap k = (r+1)^2 / 8.
func GeometrySchlickGGX(cosTheta, roughness float32) float32 {
	r := roughness + 1
	k := (r * r) / 8
	return cosTheta / (cosTheta*(1-k) + k)
}

// GeometrySmith combines the Schlick-GGX terms for view and light directions.
func GeometrySmith(ndv, ndl, roughness float32) float32 {
	return GeometrySchlickGGX(ndv, roughness) * GeometrySchlickGGX(ndl, roughness)
}

// FresnelSchlick is the Schlick approximation of the Fresnel reflectance.
// cosTheta is the H.V angle; f0 the base reflectance at normal incidence.
func FresnelSchlick(cosTheta float32, f0 math.Vec3) math.Vec3 {
	f := pow32(clamp01(1-cosTheta), 5)
	return f0.Add(math.Vec3One.Sub(f0).Mul(f))
}

// FresnelSchlickRoughness is the roughness-aware Fresnel used for the
// indirect (irradiance) term.
func FresnelSchlickRoughness(cosTheta float32, f0 math.Vec3, roughness float32) math.Vec3 {
	inv := 1 - roughness
	m := math.Vec3{X: max32(inv, f0.X), Y: max32(inv, f0.Y), Z: max32(inv, f0.Z)}
	f := pow32(clamp01(1-cosTheta), 5)
	return f0.Add(m.Sub(f0).Mul(f))
}

// BaseReflectance returns F0 = lerp(0.04, albedo, metallic): dielectrics
// reflect ~4%, metals tint reflectance with their albedo.
func BaseReflectance(albedo math.Vec3, metallic float32) math.Vec3 {
	dielectric := math.Vec3{X: 0.04, Y: 0.04, Z: 0.04}
	return dielectric.Lerp(albedo, metallic)
}

// Surface is one shaded point's PBR material state.
type Surface struct {
	Albedo    math.Vec3
	Metallic  float32
	Roughness float32
	AO        float32
}

// EvalCookTorrance evaluates the direct Cook-Torrance lobe for a single
// light. n, v, l must be unit vectors; radiance is the light color already
// attenuated by distance. Returns linear (pre-tonemap) outgoing radiance.
func EvalCookTorrance(n, v, l, radiance math.Vec3, s Surface) math.Vec3 {
	ndl := max32(n.Dot(l), 0)
	if ndl <= 0 {
		return math.Vec3Zero
	}

	h := v.Add(l).Normalize()
	ndv := max32(n.Dot(v), 0)
	f0 := BaseReflectance(s.Albedo, s.Metallic)

	d := DistributionGGX(n, h, s.Roughness)
	g := GeometrySmith(ndv, ndl, s.Roughness)
	f := FresnelSchlick(max32(h.Dot(v), 0), f0)

	specular := f.Mul(d * g / (4*ndv*ndl + specularEpsilon))
	kd := math.Vec3One.Sub(f).Mul(1 - s.Metallic)

	return kd.MulVec(s.Albedo).Div(Pi).Add(specular).MulVec(radiance).Mul(ndl)
}

// AmbientIrradiance computes the indirect diffuse term: roughness-aware
// Fresnel split, irradiance-map sample at the surface normal, scaled by
// albedo and ambient occlusion. The specular indirect term (prefiltered
// environment + BRDF LUT) is intentionally absent.
func AmbientIrradiance(n, v math.Vec3, irradiance math.Vec3, s Surface) math.Vec3 {
	ndv := max32(n.Dot(v), 0)
	f0 := BaseReflectance(s.Albedo, s.Metallic)
	f := FresnelSchlickRoughness(ndv, f0, s.Roughness)
	kd := math.Vec3One.Sub(f).Mul(1 - s.Metallic)
	return kd.MulVec(irradiance).MulVec(s.Albedo).Mul(s.AO)
}

// ToneMapReinhard maps unbounded linear radiance into [0,1): c / (1 + c).
func ToneMapReinhard(c math.Vec3) math.Vec3 {
	return math.Vec3{
		X: c.X / (1 + c.X),
		Y: c.Y / (1 + c.Y),
		Z: c.Z / (1 + c.Z),
	}
}

// GammaEncode applies the display gamma (see GammaExponent).
func GammaEncode(c math.Vec3) math.Vec3 {
	return math.Vec3{
		X: pow32(max32(c.X, 0), GammaExponent),
		Y: pow32(max32(c.Y, 0), GammaExponent),
		Z: pow32(max32(c.Z, 0), GammaExponent),
	}
}

// ShadePBR is the full fragment model for the pbr material: direct
// Cook-Torrance lobe for an optional single point light, irradiance ambient,
// Reinhard tone map and gamma encode. Mirrors the pbr fragment shader.
func ShadePBR(n, v, fragPos math.Vec3, s Surface, lightPos, lightColor math.Vec3, hasLight bool, irradiance math.Vec3) math.Vec3 {
	lo := math.Vec3Zero
	if hasLight {
		toLight := lightPos.Sub(fragPos)
		distSqr := toLight.LengthSqr()
		if distSqr > 0 {
			radiance := lightColor.Div(distSqr)
			lo = EvalCookTorrance(n, v, toLight.Normalize(), radiance, s)
		}
	}

	ambient := AmbientIrradiance(n, v, irradiance, s)
	return GammaEncode(ToneMapReinhard(ambient.Add(lo)))
}

// PhongMaterial carries the classic ambient/diffuse/specular triple.
type PhongMaterial struct {
	Ambient   math.Vec3
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
}

// ShadePhong evaluates the Phong model with the fixed global scaling
// constants. When n.l <= 0 both the diffuse and specular terms are zero
// (no light wrap-around). Mirrors the phong fragment shader.
func ShadePhong(n, v, l math.Vec3, m PhongMaterial) math.Vec3 {
	color := m.Ambient.Mul(PhongAmbientScale)

	ndl := n.Dot(l)
	if ndl <= 0 {
		return color
	}

	color = color.Add(m.Diffuse.Mul(PhongDiffuseScale * ndl))

	r := l.Negate().Reflect(n)
	vdr := max32(v.Dot(r), 0)
	color = color.Add(m.Specular.Mul(PhongSpecularScale * pow32(vdr, m.Shininess)))

	return color
}

// ShadeFlat returns the albedo unconditionally; geometry and lighting are
// ignored. Mirrors the flat fragment shader.
func ShadeFlat(albedo math.Vec3) math.Vec3 {
	return albedo
}
