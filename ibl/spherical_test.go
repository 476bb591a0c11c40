package ibl

import (
	stdmath "math"
	"testing"

	"pbr-engine/brdf"
	"pbr-engine/math"
)

const eps = 1e-4

func approx(a, b, tol float32) bool {
	return abs(a-b) <= tol
}

func approxVec(a, b math.Vec3, tol float32) bool {
	return approx(a.X, b.X, tol) && approx(a.Y, b.Y, tol) && approx(a.Z, b.Z, tol)
}

func TestSampleSphericalMapKnownDirections(t *testing.T) {
	u, v := SampleSphericalMap(math.Vec3{X: 1})
	if !approx(u, 0.5, eps) || !approx(v, 0.5, eps) {
		t.Errorf("+X mapped to (%f, %f), want (0.5, 0.5)", u, v)
	}

	u, v = SampleSphericalMap(math.Vec3{Z: 1})
	if !approx(u, 0.75, eps) || !approx(v, 0.5, eps) {
		t.Errorf("+Z mapped to (%f, %f), want (0.75, 0.5)", u, v)
	}

	_, v = SampleSphericalMap(math.Vec3{Y: 1})
	if !approx(v, 1.0, eps) {
		t.Errorf("+Y mapped to v=%f, want 1.0", v)
	}

	_, v = SampleSphericalMap(math.Vec3{Y: -1})
	if !approx(v, 0.0, eps) {
		t.Errorf("-Y mapped to v=%f, want 0.0", v)
	}
}

func TestFaceRayCenters(t *testing.T) {
	// The center of each face must point along that face's major axis.
	wants := [FaceCount]math.Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	for face := 0; face < FaceCount; face++ {
		dir := FaceRay(face, 0.5, 0.5).Normalize()
		if !approxVec(dir, wants[face], eps) {
			t.Errorf("face %d center ray = %+v, want %+v", face, dir, wants[face])
		}
	}
}

func TestFaceRayRoundTrip(t *testing.T) {
	// SampleCubemapFace must invert FaceRay for interior texels.
	coords := []float32{0.1, 0.3, 0.5, 0.7, 0.9}
	for face := 0; face < FaceCount; face++ {
		for _, u := range coords {
			for _, v := range coords {
				dir := FaceRay(face, u, v)
				gotFace, gotU, gotV := SampleCubemapFace(dir)
				if gotFace != face {
					t.Fatalf("face %d (u=%f v=%f): round-tripped to face %d", face, u, v, gotFace)
				}
				if !approx(gotU, u, eps) || !approx(gotV, v, eps) {
					t.Errorf("face %d: (%f, %f) round-tripped to (%f, %f)", face, u, v, gotU, gotV)
				}
			}
		}
	}
}

func TestFaceViewsLookAlongMajorAxes(t *testing.T) {
	views := FaceViews()
	targets := [FaceCount]math.Vec3{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	for face := 0; face < FaceCount; face++ {
		// A view matrix maps its target direction to -Z in eye space.
		eye := views[face].MulVec(targets[face].ToVec4(0))
		got := math.Vec3{X: eye.X, Y: eye.Y, Z: eye.Z}
		if !approxVec(got, math.Vec3{Z: -1}, eps) {
			t.Errorf("face %d view maps %+v to %+v, want (0, 0, -1)", face, targets[face], got)
		}
	}
}

func TestConvolveIrradianceUniform(t *testing.T) {
	// A uniform radiance field convolves to the same value: the cosine
	// weights integrate to pi, which the normalization divides back out.
	c := math.Vec3{X: 0.8, Y: 0.4, Z: 0.2}
	uniform := func(math.Vec3) math.Vec3 { return c }

	got := ConvolveIrradiance(uniform, math.Vec3{Y: 1}, ConvolutionSampleDelta)
	if !approxVec(got, c, 0.02) {
		t.Errorf("uniform irradiance = %+v, want %+v", got, c)
	}

	got = ConvolveIrradiance(uniform, math.Vec3{X: 1}.Normalize(), ConvolutionSampleDelta)
	if !approxVec(got, c, 0.02) {
		t.Errorf("uniform irradiance along +X = %+v, want %+v", got, c)
	}
}

func TestBakeUniformPanoramaIdentity(t *testing.T) {
	c := math.Vec3{X: 0.9, Y: 0.5, Z: 0.1}
	pano := NewUniformPanorama(32, 16, c)

	env := BakeCubemap(pano, 16)
	for face := 0; face < FaceCount; face++ {
		for _, px := range env.Faces[face] {
			if !approxVec(px, c, eps) {
				t.Fatalf("face %d texel = %+v, want %+v", face, px, c)
			}
		}
	}

	irr := BakeIrradiance(env, 4, 0.05)
	for face := 0; face < FaceCount; face++ {
		for i, px := range irr.Faces[face] {
			if !approxVec(px, c, 0.03) {
				t.Fatalf("irradiance face %d texel %d = %+v, want %+v", face, i, px, c)
			}
		}
	}
}

func TestBakeCubemapMatchesPanorama(t *testing.T) {
	// A panorama whose radiance varies smoothly with direction must survive
	// the cubemap projection up to resampling error.
	w, h := 128, 64
	pano := &Panorama{Width: w, Height: h, Pixels: make([]math.Vec3, w*h)}
	for y := 0; y < h; y++ {
		v := 1 - (float32(y)+0.5)/float32(h)
		for x := 0; x < w; x++ {
			u := (float32(x) + 0.5) / float32(w)
			phi := (u - 0.5) * 2 * stdmath.Pi
			theta := (v - 0.5) * stdmath.Pi
			pano.Pixels[y*w+x] = math.Vec3{
				X: 0.5 + 0.5*cos(phi)*cos(theta),
				Y: 0.5 + 0.5*sin(theta),
				Z: 0.5,
			}
		}
	}

	env := BakeCubemap(pano, 64)

	var sum float32
	var n int
	dirs := []math.Vec3{
		{X: 1, Y: 0.2, Z: -0.3}, {X: -0.7, Y: 0.5, Z: 0.1},
		{X: 0.2, Y: -0.9, Z: 0.4}, {X: -0.1, Y: 0.3, Z: 1},
		{X: 0.6, Y: 0.6, Z: -0.6}, {X: -0.4, Y: -0.2, Z: -0.8},
	}
	for _, d := range dirs {
		got := env.Sample(d)
		want := pano.Sample(d)
		sum += abs(got.X-want.X) + abs(got.Y-want.Y) + abs(got.Z-want.Z)
		n += 3
	}
	if mean := sum / float32(n); mean > 0.05 {
		t.Errorf("mean resampling error %f exceeds 0.05", mean)
	}
}

func TestUniformPanoramaShadesToItsColor(t *testing.T) {
	// Full pipeline on the CPU: a uniform red panorama baked to a cubemap,
	// convolved to irradiance, then shaded on a fully rough white dielectric
	// with no light. The diffuse weight is 0.96, so the result must match
	// the tone-mapped, gamma-encoded attenuated red.
	red := math.Vec3{X: 1}
	pano := NewUniformPanorama(32, 16, red)
	env := BakeCubemap(pano, 16)
	irr := BakeIrradiance(env, 4, 0.05)

	n := math.Vec3{Y: 1}
	s := brdf.Surface{Albedo: math.Vec3One, Metallic: 0, Roughness: 1, AO: 1}
	got := brdf.ShadePBR(n, n, math.Vec3Zero, s,
		math.Vec3Zero, math.Vec3Zero, false, irr.Sample(n))
	want := brdf.GammaEncode(brdf.ToneMapReinhard(red.Mul(0.96)))

	if !approxVec(got, want, 0.02) {
		t.Errorf("shaded environment = %+v, want %+v", got, want)
	}
}

func TestFaceProjectionIsSquare90Degree(t *testing.T) {
	proj := FaceProjection()
	// tan(45 deg) = 1, so a point at 45 degrees off axis lands exactly on
	// the clip boundary: |x_clip| == |w_clip|.
	p := proj.MulVec(math.Vec4{X: 1, Y: 0, Z: -1, W: 1})
	if !approx(p.X, p.W, 1e-3) {
		t.Errorf("45-degree ray maps to x=%f w=%f, want equal", p.X, p.W)
	}
}
