package scene

import (
	"pbr-engine/math"
)

// Light is a point light with inverse-square falloff. Color carries radiant
// intensity, so values far above 1 are expected (e.g. 1500 for a bright key
// light a few units away).
type Light struct {
	Position math.Vec3
	Color    math.Vec3
}
