package scene

import (
	"errors"
	"fmt"
	"testing"

	"pbr-engine/core"
	"pbr-engine/math"
)

// recordingDrawer captures draw calls for queue-order assertions.
type recordingDrawer struct {
	names     []string
	instances []int
	frames    []FrameState
	failAt    int // index at which Draw returns an error, -1 = never
}

func newRecordingDrawer() *recordingDrawer {
	return &recordingDrawer{failAt: -1}
}

func (d *recordingDrawer) Draw(obj *Object, frame *FrameState, env *Environment) error {
	if d.failAt >= 0 && len(d.names) == d.failAt {
		return fmt.Errorf("synthetic draw failure")
	}
	d.names = append(d.names, obj.Mesh.Name)
	d.instances = append(d.instances, len(obj.Transforms))
	d.frames = append(d.frames, *frame)
	return nil
}

func namedObject(name string) *Object {
	mesh := NewMesh(name, nil, nil)
	mesh.Vertices = []core.Vertex{{}}
	return NewObject(mesh, NewFlatMaterial(core.Color{R: 1, A: 1}))
}

func TestCommitPreservesSubmissionOrder(t *testing.T) {
	s := NewRenderScene()
	for _, name := range []string{"a", "b", "c"} {
		if err := s.Submit(namedObject(name)); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}
	if s.Pending() != 3 {
		t.Fatalf("pending = %d, want 3", s.Pending())
	}

	d := newRecordingDrawer()
	if err := s.Commit(d); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(d.names) != 3 || d.names[0] != "a" || d.names[1] != "b" || d.names[2] != "c" {
		t.Errorf("draw order = %v, want [a b c]", d.names)
	}
}

func TestSubmitAfterCommitFails(t *testing.T) {
	s := NewRenderScene()
	if err := s.Commit(newRecordingDrawer()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if err := s.Submit(namedObject("late")); !errors.Is(err, core.ErrSceneFinalized) {
		t.Errorf("submit after commit = %v, want ErrSceneFinalized", err)
	}
	if err := s.SetCamera(math.Mat4Identity(), math.Mat4Identity(), math.Vec3Zero); !errors.Is(err, core.ErrSceneFinalized) {
		t.Errorf("SetCamera after commit = %v, want ErrSceneFinalized", err)
	}
	if err := s.Commit(newRecordingDrawer()); !errors.Is(err, core.ErrSceneFinalized) {
		t.Errorf("second commit = %v, want ErrSceneFinalized", err)
	}
}

func TestDuplicateSubmissionDrawsTwice(t *testing.T) {
	s := NewRenderScene()
	obj := namedObject("dup")
	if err := s.Submit(obj); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(obj); err != nil {
		t.Fatal(err)
	}

	d := newRecordingDrawer()
	if err := s.Commit(d); err != nil {
		t.Fatal(err)
	}
	if len(d.names) != 2 {
		t.Errorf("draw count = %d, want 2", len(d.names))
	}
}

func TestInstancedObjectIsOneDraw(t *testing.T) {
	s := NewRenderScene()
	obj := namedObject("grid")
	obj.AddInstance(math.Mat4Translation(math.Vec3{X: 1}))
	obj.AddInstance(math.Mat4Translation(math.Vec3{X: 2}))
	if obj.InstanceCount() != 3 {
		t.Fatalf("instance count = %d, want 3", obj.InstanceCount())
	}
	if err := s.Submit(obj); err != nil {
		t.Fatal(err)
	}

	d := newRecordingDrawer()
	if err := s.Commit(d); err != nil {
		t.Fatal(err)
	}
	if len(d.names) != 1 || d.instances[0] != 3 {
		t.Errorf("got %d draws with instances %v, want 1 draw of 3 instances", len(d.names), d.instances)
	}
}

func TestCommitAbortsAfterFirstError(t *testing.T) {
	s := NewRenderScene()
	for _, name := range []string{"a", "b", "c"} {
		if err := s.Submit(namedObject(name)); err != nil {
			t.Fatal(err)
		}
	}

	d := newRecordingDrawer()
	d.failAt = 1 // "a" succeeds, "b" fails
	err := s.Commit(d)
	if err == nil {
		t.Fatal("commit did not surface the draw error")
	}
	if len(d.names) != 1 || d.names[0] != "a" {
		t.Errorf("draws before abort = %v, want [a]", d.names)
	}

	// The scene is finalized even after a failed commit.
	if err := s.Submit(namedObject("late")); !errors.Is(err, core.ErrSceneFinalized) {
		t.Errorf("submit after failed commit = %v, want ErrSceneFinalized", err)
	}
}

func TestSubmitNilMesh(t *testing.T) {
	s := NewRenderScene()
	if err := s.Submit(&Object{}); err == nil {
		t.Error("submitting an object without a mesh must fail")
	}
	if err := s.Submit(nil); err == nil {
		t.Error("submitting nil must fail")
	}
}

func TestFrameStateReachesDrawer(t *testing.T) {
	s := NewRenderScene()
	pos := math.Vec3{X: 1, Y: 2, Z: 3}
	if err := s.SetCamera(math.Mat4Identity(), math.Mat4Identity(), pos); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLight(math.Vec3{X: 10, Y: 10, Z: 3}, math.Vec3{X: 1500, Y: 1500, Z: 1500}); err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(namedObject("probe")); err != nil {
		t.Fatal(err)
	}

	d := newRecordingDrawer()
	if err := s.Commit(d); err != nil {
		t.Fatal(err)
	}
	frame := d.frames[0]
	if frame.CameraPos != pos {
		t.Errorf("camera pos = %+v, want %+v", frame.CameraPos, pos)
	}
	if !frame.HasLight || frame.Light.Position != (math.Vec3{X: 10, Y: 10, Z: 3}) {
		t.Errorf("light did not reach the drawer: %+v", frame.Light)
	}
}
