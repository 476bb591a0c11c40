package scene

import (
	"pbr-engine/math"
)

// Object pairs one geometry with one material and N >= 1 instance
// transforms. All instances share the material; a visually distinct instance
// needs its own Object. Geometry buffers are exclusively owned by the
// object's mesh — instancing shares the mesh handle, never mutable state.
type Object struct {
	Mesh     *Mesh
	Material Material

	// Transforms holds one model matrix per instance. Len > 1 turns the
	// object into a single instanced draw with that instance count.
	Transforms []math.Mat4
}

// NewObject creates an object with a single identity transform.
func NewObject(mesh *Mesh, material Material) *Object {
	return &Object{
		Mesh:       mesh,
		Material:   material,
		Transforms: []math.Mat4{math.Mat4Identity()},
	}
}

// SetTransform replaces the first (or only) instance transform.
func (o *Object) SetTransform(m math.Mat4) {
	if len(o.Transforms) == 0 {
		o.Transforms = []math.Mat4{m}
		return
	}
	o.Transforms[0] = m
}

// AddInstance appends another instance transform.
func (o *Object) AddInstance(m math.Mat4) {
	o.Transforms = append(o.Transforms, m)
}

// InstanceCount reports how many instances a draw of this object covers.
func (o *Object) InstanceCount() int {
	return len(o.Transforms)
}
