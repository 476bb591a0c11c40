package scene

import (
	stdmath "math"

	"pbr-engine/core"
	"pbr-engine/math"
)

// CreateSphere generates a UV-sphere mesh.
func CreateSphere(radius float32, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var vertices []core.Vertex
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * stdmath.Pi / float64(rings)
		sinPhi := float32(stdmath.Sin(phi))
		cosPhi := float32(stdmath.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * stdmath.Pi / float64(segments)
			sinTheta := float32(stdmath.Sin(theta))
			cosTheta := float32(stdmath.Cos(theta))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			position := normal.Mul(radius)
			uv := math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)}

			vertices = append(vertices, core.Vertex{
				Position: position,
				Normal:   normal,
				UV:       uv,
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)

			indices = append(indices, current, next, current+1)
			indices = append(indices, current+1, next, next+1)
		}
	}

	return NewMesh("Sphere", vertices, indices)
}

// CreateCube generates an inward-facing unit cube (half-extent 1) used for
// the skybox and the cubemap bake passes. The winding keeps faces visible
// from the inside with default back-face culling.
func CreateCube() *Mesh {
	faces := [6]struct {
		normal math.Vec3
		a, b   math.Vec3 // in-plane axes; corners = n + sa*a + sb*b
	}{
		{math.Vec3{Z: -1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: 1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
	}

	var vertices []core.Vertex
	var indices []uint32

	for _, f := range faces {
		base := uint32(len(vertices))
		corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
		uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
		for i, c := range corners {
			pos := f.normal.Add(f.a.Mul(c[0])).Add(f.b.Mul(c[1]))
			vertices = append(vertices, core.Vertex{
				Position: pos,
				Normal:   f.normal.Negate(), // faces point inward
				UV:       uvs[i],
			})
		}
		// Inward winding: counter-clockwise when seen from the cube centre.
		indices = append(indices, base, base+2, base+1, base, base+3, base+2)
	}

	return NewMesh("Cube", vertices, indices)
}

// CreatePlane generates a flat XZ plane of the given half-extent, facing +Y.
func CreatePlane(halfExtent float32) *Mesh {
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -halfExtent, Z: -halfExtent}, Normal: math.Vec3Up, UV: math.Vec2{X: 0, Y: 0}},
		{Position: math.Vec3{X: halfExtent, Z: -halfExtent}, Normal: math.Vec3Up, UV: math.Vec2{X: 1, Y: 0}},
		{Position: math.Vec3{X: halfExtent, Z: halfExtent}, Normal: math.Vec3Up, UV: math.Vec2{X: 1, Y: 1}},
		{Position: math.Vec3{X: -halfExtent, Z: halfExtent}, Normal: math.Vec3Up, UV: math.Vec2{X: 0, Y: 1}},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return NewMesh("Plane", vertices, indices)
}
