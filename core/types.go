package core

import (
	"pbr-engine/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// Vec3 drops the alpha channel for lighting math.
func (c Color) Vec3() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the CPU-side vertex layout shared by every material variant.
// Field order matches the shader attribute locations:
// position = 0, normal = 1, tex_coords = 2.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// TextureHandle is an opaque GPU texture ID. Zero means "not created".
// Handles are produced by the opengl backend; everything above it only
// stores and passes them.
type TextureHandle uint32
