package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithMeshes adds initial meshes to the scene. IDs are assigned in argument order.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes ...*Mesh) SceneBuilderOption {
	return func(s *scene) {
		for _, m := range meshes {
			if m == nil {
				continue
			}
			s.registry[s.nextID] = m
			s.nextID++
		}
	}
}

// WithLightDirection sets the direction pointing towards the directional light.
//
// Parameters:
//   - dir: the light direction; zero vectors are ignored
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLightDirection(dir mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		if dir.Len() > 0 {
			s.lightDir = dir.Normalize()
		}
	}
}

// WithAmbient sets the ambient light fraction.
//
// Parameters:
//   - a: the ambient fraction in [0, 1]
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbient(a float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = common.Clamp01(a)
	}
}

// WithCullingDisabled disables whole-mesh frustum culling.
//
// Parameters:
//   - disabled: whether culling is disabled
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}
