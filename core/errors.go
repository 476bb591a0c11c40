package core

import (
	"errors"
	"fmt"
)

// ErrSceneFinalized is returned when a render scene is used after Commit.
// This is a caller sequencing bug, not a runtime condition.
var ErrSceneFinalized = errors.New("render scene already committed")

// ShaderBindError reports a uniform, attribute, or texture that could not be
// resolved at draw time. The draw is not issued.
type ShaderBindError struct {
	Variant string // material variant name, e.g. "pbr"
	Name    string // uniform/attribute/texture name that failed to bind
}

func (e *ShaderBindError) Error() string {
	return fmt.Sprintf("material %q: cannot bind %q", e.Variant, e.Name)
}

// EnvironmentStateError reports an environment-preprocessing call made out of
// state-machine order (e.g. baking irradiance before a cubemap exists).
type EnvironmentStateError struct {
	Op       string
	State    string
	Required string
}

func (e *EnvironmentStateError) Error() string {
	return fmt.Sprintf("environment: %s requires state %s, currently %s", e.Op, e.Required, e.State)
}

// ResourceAllocationError wraps a GPU resource allocation failure reported by
// the backend. It is propagated unchanged and never retried.
type ResourceAllocationError struct {
	Resource string
	Err      error
}

func (e *ResourceAllocationError) Error() string {
	return fmt.Sprintf("allocate %s: %v", e.Resource, e.Err)
}

func (e *ResourceAllocationError) Unwrap() error { return e.Err }
