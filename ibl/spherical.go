// Package ibl implements the coordinate-space and sampling math behind the
// environment preprocessing pipeline: equirectangular panoramas, cubemap
// faces, and cosine-weighted hemisphere convolution. The GPU bake passes in
// internal/opengl embed the same expressions in GLSL; the functions here are
// the testable reference, also usable for offline CPU bakes.
package ibl

import (
	stdmath "math"

	"pbr-engine/math"
)

// Cubemap face indices, in OpenGL order (TEXTURE_CUBE_MAP_POSITIVE_X + face).
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
	FaceCount
)

// ConvolutionSampleDelta is the step, in radians, used when integrating the
// hemisphere for the irradiance map.
const ConvolutionSampleDelta = float32(0.025)

// SampleSphericalMap maps a unit direction to equirectangular UV:
// u = atan2(z, x) / 2pi + 0.5, v = asin(y) / pi + 0.5.
func SampleSphericalMap(dir math.Vec3) (u, v float32) {
	u = float32(stdmath.Atan2(float64(dir.Z), float64(dir.X)))/(2*stdmath.Pi) + 0.5
	v = float32(stdmath.Asin(float64(clamp(dir.Y, -1, 1))))/stdmath.Pi + 0.5
	return u, v
}

// FaceRay returns the unit world-space direction through texel (u, v) of a
// cubemap face, with u, v in [0, 1] and v increasing downward (texture
// convention). Inverse of SampleCubemapFace.
func FaceRay(face int, u, v float32) math.Vec3 {
	sc := 2*u - 1
	tc := 2*v - 1

	var dir math.Vec3
	switch face {
	case FacePosX:
		dir = math.Vec3{X: 1, Y: -tc, Z: -sc}
	case FaceNegX:
		dir = math.Vec3{X: -1, Y: -tc, Z: sc}
	case FacePosY:
		dir = math.Vec3{X: sc, Y: 1, Z: tc}
	case FaceNegY:
		dir = math.Vec3{X: sc, Y: -1, Z: -tc}
	case FacePosZ:
		dir = math.Vec3{X: sc, Y: -tc, Z: 1}
	default: // FaceNegZ
		dir = math.Vec3{X: -sc, Y: -tc, Z: -1}
	}
	return dir.Normalize()
}

// SampleCubemapFace selects the face and texel coordinates for a direction,
// following the OpenGL cube-map major-axis rules.
func SampleCubemapFace(dir math.Vec3) (face int, u, v float32) {
	ax, ay, az := abs(dir.X), abs(dir.Y), abs(dir.Z)

	var sc, tc, ma float32
	switch {
	case ax >= ay && ax >= az:
		ma = ax
		if dir.X > 0 {
			face, sc, tc = FacePosX, -dir.Z, -dir.Y
		} else {
			face, sc, tc = FaceNegX, dir.Z, -dir.Y
		}
	case ay >= az:
		ma = ay
		if dir.Y > 0 {
			face, sc, tc = FacePosY, dir.X, dir.Z
		} else {
			face, sc, tc = FaceNegY, dir.X, -dir.Z
		}
	default:
		ma = az
		if dir.Z > 0 {
			face, sc, tc = FacePosZ, dir.X, -dir.Y
		} else {
			face, sc, tc = FaceNegZ, -dir.X, -dir.Y
		}
	}

	u = (sc/ma + 1) / 2
	v = (tc/ma + 1) / 2
	return face, u, v
}

// FaceViews returns the six look-at view matrices used to render a unit cube
// into each cubemap face, paired with a 90 degree FOV projection.
func FaceViews() [FaceCount]math.Mat4 {
	targets := [FaceCount]math.Vec3{
		{X: 1}, {X: -1},
		{Y: 1}, {Y: -1},
		{Z: 1}, {Z: -1},
	}
	ups := [FaceCount]math.Vec3{
		{Y: -1}, {Y: -1},
		{Z: 1}, {Z: -1},
		{Y: -1}, {Y: -1},
	}

	var views [FaceCount]math.Mat4
	for i := 0; i < FaceCount; i++ {
		views[i] = math.Mat4LookAt(math.Vec3Zero, targets[i], ups[i])
	}
	return views
}

// FaceProjection is the 90 degree FOV, square-aspect projection shared by all
// bake passes.
func FaceProjection() math.Mat4 {
	return math.Mat4Perspective(stdmath.Pi/2, 1, 0.1, 10)
}

// ConvolveIrradiance integrates incoming radiance over the hemisphere around
// normal n, cosine-weighted, at the given angular step. sample returns the
// environment radiance in a world-space direction. For a uniform environment
// of radiance C the result converges to C.
func ConvolveIrradiance(sample func(math.Vec3) math.Vec3, n math.Vec3, delta float32) math.Vec3 {
	n = n.Normalize()

	// Tangent basis around n.
	up := math.Vec3Up
	if abs(n.Y) > 0.999 {
		up = math.Vec3Front
	}
	right := up.Cross(n).Normalize()
	up = n.Cross(right)

	sum := math.Vec3Zero
	count := 0
	for phi := float32(0); phi < 2*stdmath.Pi; phi += delta {
		sinPhi := sin(phi)
		cosPhi := cos(phi)
		for theta := float32(0); theta < stdmath.Pi/2; theta += delta {
			sinTheta := sin(theta)
			cosTheta := cos(theta)

			// Tangent-space direction to world space.
			tangent := math.Vec3{X: sinTheta * cosPhi, Y: sinTheta * sinPhi, Z: cosTheta}
			dir := right.Mul(tangent.X).Add(up.Mul(tangent.Y)).Add(n.Mul(tangent.Z))

			sum = sum.Add(sample(dir).Mul(cosTheta * sinTheta))
			count++
		}
	}

	return sum.Mul(stdmath.Pi / float32(count))
}

// Panorama is a CPU-side equirectangular image in linear RGB.
type Panorama struct {
	Width  int
	Height int
	Pixels []math.Vec3 // row-major, v = 0 at the top row
}

// NewUniformPanorama builds a panorama of a single radiance everywhere.
func NewUniformPanorama(width, height int, c math.Vec3) *Panorama {
	px := make([]math.Vec3, width*height)
	for i := range px {
		px[i] = c
	}
	return &Panorama{Width: width, Height: height, Pixels: px}
}

// Sample returns the nearest texel for a direction.
func (p *Panorama) Sample(dir math.Vec3) math.Vec3 {
	u, v := SampleSphericalMap(dir.Normalize())
	x := int(u * float32(p.Width))
	y := int((1 - v) * float32(p.Height))
	if x < 0 {
		x = 0
	} else if x >= p.Width {
		x = p.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= p.Height {
		y = p.Height - 1
	}
	return p.Pixels[y*p.Width+x]
}

// Cubemap is a CPU-side cubemap with square faces in linear RGB.
type Cubemap struct {
	Size  int
	Faces [FaceCount][]math.Vec3
}

// BakeCubemap samples the panorama through every face texel's ray, the CPU
// equivalent of the equirect-to-cubemap GPU pass.
func BakeCubemap(pano *Panorama, size int) *Cubemap {
	cm := &Cubemap{Size: size}
	for face := 0; face < FaceCount; face++ {
		cm.Faces[face] = make([]math.Vec3, size*size)
		for y := 0; y < size; y++ {
			v := (float32(y) + 0.5) / float32(size)
			for x := 0; x < size; x++ {
				u := (float32(x) + 0.5) / float32(size)
				cm.Faces[face][y*size+x] = pano.Sample(FaceRay(face, u, v))
			}
		}
	}
	return cm
}

// Sample returns the nearest texel in the face the direction passes through.
func (c *Cubemap) Sample(dir math.Vec3) math.Vec3 {
	face, u, v := SampleCubemapFace(dir.Normalize())
	x := int(u * float32(c.Size))
	y := int(v * float32(c.Size))
	if x >= c.Size {
		x = c.Size - 1
	}
	if y >= c.Size {
		y = c.Size - 1
	}
	return c.Faces[face][y*c.Size+x]
}

// BakeIrradiance convolves a baked cubemap into a (typically much smaller)
// irradiance cubemap, the CPU equivalent of the irradiance GPU pass.
func BakeIrradiance(env *Cubemap, size int, delta float32) *Cubemap {
	out := &Cubemap{Size: size}
	for face := 0; face < FaceCount; face++ {
		out.Faces[face] = make([]math.Vec3, size*size)
		for y := 0; y < size; y++ {
			v := (float32(y) + 0.5) / float32(size)
			for x := 0; x < size; x++ {
				u := (float32(x) + 0.5) / float32(size)
				n := FaceRay(face, u, v)
				out.Faces[face][y*size+x] = ConvolveIrradiance(env.Sample, n, delta)
			}
		}
	}
	return out
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func sin(x float32) float32 { return float32(stdmath.Sin(float64(x))) }
func cos(x float32) float32 { return float32(stdmath.Cos(float64(x))) }
