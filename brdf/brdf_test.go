package brdf

import (
	"testing"

	"pbr-engine/math"
)

func approx(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func approxVec(a, b math.Vec3, tol float32) bool {
	return approx(a.X, b.X, tol) && approx(a.Y, b.Y, tol) && approx(a.Z, b.Z, tol)
}

func TestFresnelSchlickLimits(t *testing.T) {
	f0 := math.Vec3{X: 0.04, Y: 0.04, Z: 0.04}

	// Grazing incidence reflects everything.
	if got := FresnelSchlick(0, f0); !approxVec(got, math.Vec3One, 1e-5) {
		t.Errorf("FresnelSchlick(0) = %+v, want (1, 1, 1)", got)
	}

	// Head-on incidence reflects the base reflectance.
	if got := FresnelSchlick(1, f0); !approxVec(got, f0, 1e-5) {
		t.Errorf("FresnelSchlick(1) = %+v, want %+v", got, f0)
	}
}

func TestBaseReflectance(t *testing.T) {
	gold := math.Vec3{X: 1.0, Y: 0.77, Z: 0.34}

	if got := BaseReflectance(gold, 0); !approxVec(got, math.Vec3{X: 0.04, Y: 0.04, Z: 0.04}, 1e-5) {
		t.Errorf("dielectric F0 = %+v, want 0.04", got)
	}
	if got := BaseReflectance(gold, 1); !approxVec(got, gold, 1e-5) {
		t.Errorf("metal F0 = %+v, want albedo %+v", got, gold)
	}
}

func TestDistributionGGXPeaksAtNormal(t *testing.T) {
	n := math.Vec3{Y: 1}
	atNormal := DistributionGGX(n, n, 0.3)
	offNormal := DistributionGGX(n, math.Vec3{X: 0.5, Y: 1}.Normalize(), 0.3)
	if atNormal <= offNormal {
		t.Errorf("NDF at normal %f not greater than off-normal %f", atNormal, offNormal)
	}
}

func TestEvalCookTorranceBackfaceIsBlack(t *testing.T) {
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	l := math.Vec3{Y: -1} // light below the surface
	s := Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 0.5, AO: 1}

	if got := EvalCookTorrance(n, v, l, math.Vec3One, s); got != math.Vec3Zero {
		t.Errorf("backface lobe = %+v, want zero", got)
	}
}

func TestShadeFlatIgnoresGeometry(t *testing.T) {
	c := math.Vec3{X: 0.2, Y: 0.4, Z: 0.6}
	if got := ShadeFlat(c); got != c {
		t.Errorf("ShadeFlat = %+v, want %+v", got, c)
	}
}

func TestShadePhongDarkSideKeepsAmbient(t *testing.T) {
	m := PhongMaterial{
		Ambient:   math.Vec3{X: 1, Y: 0.5, Z: 0.25},
		Diffuse:   math.Vec3One,
		Specular:  math.Vec3One,
		Shininess: 32,
	}
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	l := math.Vec3{Y: -1}

	got := ShadePhong(n, v, l, m)
	want := m.Ambient.Mul(PhongAmbientScale)
	if !approxVec(got, want, 1e-6) {
		t.Errorf("dark-side shade = %+v, want ambient-only %+v", got, want)
	}
}

func TestShadePhongFrontLit(t *testing.T) {
	m := PhongMaterial{
		Ambient:   math.Vec3One,
		Diffuse:   math.Vec3One,
		Specular:  math.Vec3One,
		Shininess: 1,
	}
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	l := math.Vec3{Y: 1}

	// Head-on view and light: reflect(-l, n) == v, so the specular term is
	// at full strength and every scale constant shows in the sum.
	got := ShadePhong(n, v, l, m)
	want := PhongAmbientScale + PhongDiffuseScale + PhongSpecularScale
	if !approx(got.X, want, 1e-5) {
		t.Errorf("front-lit shade = %f, want %f", got.X, want)
	}
}

func TestToneMapReinhardBounds(t *testing.T) {
	bright := math.Vec3{X: 1500, Y: 800, Z: 0}
	got := ToneMapReinhard(bright)
	if got.X >= 1 || got.Y >= 1 || got.Z != 0 {
		t.Errorf("tone-mapped %+v out of [0, 1) per channel", got)
	}
	if got.X <= got.Y {
		t.Errorf("tone map must preserve channel ordering, got %+v", got)
	}
}

func TestGammaEncodeEndpoints(t *testing.T) {
	if got := GammaEncode(math.Vec3Zero); got != math.Vec3Zero {
		t.Errorf("GammaEncode(0) = %+v", got)
	}
	if got := GammaEncode(math.Vec3One); !approxVec(got, math.Vec3One, 1e-6) {
		t.Errorf("GammaEncode(1) = %+v", got)
	}
}

func TestAmbientIrradianceScalesWithAO(t *testing.T) {
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	irr := math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	s := Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 1, AO: 1}

	full := AmbientIrradiance(n, v, irr, s)
	s.AO = 0.5
	half := AmbientIrradiance(n, v, irr, s)
	if !approxVec(half, full.Mul(0.5), 1e-6) {
		t.Errorf("ao=0.5 ambient %+v is not half of %+v", half, full)
	}
}

func TestShadePBRUniformEnvironmentNoLight(t *testing.T) {
	// A fully rough white dielectric under uniform irradiance E with no
	// light: the roughness-aware Fresnel collapses to F0, so the diffuse
	// weight is exactly 0.96 before tone mapping.
	e := math.Vec3{X: 0.6, Y: 0.3, Z: 0.1}
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	s := Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 1, AO: 1}

	got := ShadePBR(n, v, math.Vec3Zero, s, math.Vec3Zero, math.Vec3Zero, false, e)
	want := GammaEncode(ToneMapReinhard(e.Mul(0.96)))
	if !approxVec(got, want, 1e-5) {
		t.Errorf("ShadePBR = %+v, want %+v", got, want)
	}
}

func TestShadePBRLightAddsEnergy(t *testing.T) {
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	s := Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 0.5, AO: 1}
	irr := math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}
	lightPos := math.Vec3{X: 10, Y: 10, Z: 3}
	lightColor := math.Vec3{X: 1500, Y: 1500, Z: 1500}

	dark := ShadePBR(n, v, math.Vec3Zero, s, lightPos, lightColor, false, irr)
	lit := ShadePBR(n, v, math.Vec3Zero, s, lightPos, lightColor, true, irr)
	if lit.X <= dark.X || lit.Y <= dark.Y || lit.Z <= dark.Z {
		t.Errorf("lit %+v not brighter than unlit %+v", lit, dark)
	}
}

func TestShadePBRInverseSquareFalloff(t *testing.T) {
	n := math.Vec3{Y: 1}
	v := math.Vec3{Y: 1}
	s := Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 0.5, AO: 1}
	lightColor := math.Vec3{X: 100, Y: 100, Z: 100}

	near := ShadePBR(n, v, math.Vec3Zero, s, math.Vec3{Y: 2}, lightColor, true, math.Vec3Zero)
	far := ShadePBR(n, v, math.Vec3Zero, s, math.Vec3{Y: 4}, lightColor, true, math.Vec3Zero)
	if far.X >= near.X {
		t.Errorf("far light %+v not dimmer than near light %+v", far, near)
	}
}
