package scene

import (
	"fmt"

	"pbr-engine/core"
	"pbr-engine/math"
)

// FrameState is the per-frame global input to every shading call: camera
// matrices, camera position, and the (optional) single active light.
// Materials read it, never mutate it.
type FrameState struct {
	View       math.Mat4
	Projection math.Mat4
	CameraPos  math.Vec3
	CameraSet  bool

	Light    Light
	HasLight bool
}

// Environment is the long-lived environment map state produced by the
// preprocessing pipeline. Handles are read-only during frame rendering; the
// preprocessor owns them mutably only while rebaking. The prefiltered
// specular map and BRDF LUT of a split-sum pipeline would slot in here.
type Environment struct {
	Panorama   core.TextureHandle
	Cubemap    core.TextureHandle
	Irradiance core.TextureHandle
}

// Drawer is the shading contract: activate the program for the object's
// material variant, bind the frame globals and material parameters, bind the
// object's buffers, and issue exactly one draw call (instanced when the
// object carries multiple transforms). Implemented by the opengl backend and
// by test fakes.
type Drawer interface {
	Draw(obj *Object, frame *FrameState, env *Environment) error
}

// RenderScene accumulates one frame: global state plus an ordered queue of
// submissions. Nothing touches the GPU until Commit, which consumes the
// queue in insertion order exactly once.
type RenderScene struct {
	frame     FrameState
	env       Environment
	queue     []*Object
	finalized bool
}

func NewRenderScene() *RenderScene {
	return &RenderScene{}
}

// SetCamera records the view/projection matrices and the camera world
// position. Must be called before Commit; view-dependent shading is
// undefined otherwise.
func (s *RenderScene) SetCamera(view, projection math.Mat4, position math.Vec3) error {
	if s.finalized {
		return core.ErrSceneFinalized
	}
	s.frame.View = view
	s.frame.Projection = projection
	s.frame.CameraPos = position
	s.frame.CameraSet = true
	return nil
}

// SetLight sets the single active point light for this frame. Supporting
// several lights means holding a slice here and summing lobes in the
// lighting math; the material contract would not change.
func (s *RenderScene) SetLight(position, color math.Vec3) error {
	if s.finalized {
		return core.ErrSceneFinalized
	}
	s.frame.Light = Light{Position: position, Color: color}
	s.frame.HasLight = true
	return nil
}

// SetEnvironment attaches the baked environment maps for this frame.
func (s *RenderScene) SetEnvironment(env Environment) error {
	if s.finalized {
		return core.ErrSceneFinalized
	}
	s.env = env
	return nil
}

// Submit appends an object to the draw queue. Insertion order is draw
// order; submitting the same object twice yields two draw calls.
func (s *RenderScene) Submit(obj *Object) error {
	if s.finalized {
		return core.ErrSceneFinalized
	}
	if obj == nil || obj.Mesh == nil {
		return fmt.Errorf("submit: object has no mesh")
	}
	s.queue = append(s.queue, obj)
	return nil
}

// Pending reports how many submissions are queued.
func (s *RenderScene) Pending() int {
	return len(s.queue)
}

// Commit drains the queue in insertion order, invoking the drawer once per
// submission. The first draw error aborts the remaining queue — the partial
// frame already issued stays issued (best-effort, not transactional). The
// scene is finalized afterward either way; further Submit calls fail with
// ErrSceneFinalized.
func (s *RenderScene) Commit(d Drawer) error {
	if s.finalized {
		return core.ErrSceneFinalized
	}
	s.finalized = true

	for i, obj := range s.queue {
		if err := d.Draw(obj, &s.frame, &s.env); err != nil {
			s.queue = nil
			return fmt.Errorf("draw %d (%s): %w", i, obj.Material.Kind, err)
		}
	}
	s.queue = nil
	return nil
}
