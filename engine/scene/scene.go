package scene

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene manages a registry of flat-coloured meshes lit by a single directional light and
// draws them into a render target. It satisfies renderer.Scene.
// Thread-safe for concurrent access.
type Scene interface {
	renderer.Scene

	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Add registers a mesh and returns its ID.
	//
	// Parameters:
	//   - m: the mesh to add (must not be nil)
	//
	// Returns:
	//   - uint64: the assigned ID
	Add(m *Mesh) uint64

	// Get returns the mesh registered under id, or nil.
	Get(id uint64) *Mesh

	// Remove unregisters the mesh with the given ID. Unknown IDs are ignored.
	Remove(id uint64)

	// Count returns the number of registered meshes.
	Count() int

	// Clear removes every mesh.
	Clear()

	// Bounds returns the union of every mesh's world-space bounds.
	Bounds() common.Box3

	// LightDirection returns the normalised direction pointing towards the light.
	LightDirection() mgl32.Vec3

	// SetLightDirection sets the direction towards the light. Zero vectors are ignored.
	SetLightDirection(dir mgl32.Vec3)

	// Ambient returns the fraction of light every surface receives regardless of orientation.
	Ambient() float32

	// SetAmbient sets the ambient fraction, clamped to [0, 1].
	SetAmbient(a float32)

	// CullingDisabled reports whether frustum culling of whole meshes is skipped.
	CullingDisabled() bool

	// SetCullingDisabled toggles frustum culling.
	SetCullingDisabled(disabled bool)

	// Stats returns counters from the most recent Draw.
	Stats() DrawStats
}

// DrawStats summarises one Draw call.
type DrawStats struct {
	Meshes    int
	Culled    int
	Triangles int
	Pixels    int
}

type scene struct {
	mu *sync.RWMutex

	name string

	registry map[uint64]*Mesh
	nextID   uint64

	lightDir mgl32.Vec3
	ambient  float32

	cullingDisabled bool

	stats DrawStats
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:       &sync.RWMutex{},
		name:     name,
		registry: make(map[uint64]*Mesh),
		nextID:   1,
		lightDir: mgl32.Vec3{0.4, 1, 0.6}.Normalize(),
		ambient:  0.35,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Add(m *Mesh) uint64 {
	if m == nil {
		panic("scene: Add requires a non-nil Mesh")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.registry[id] = m
	return id
}

func (s *scene) Get(id uint64) *Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]*Mesh)
}

func (s *scene) Bounds() common.Box3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := common.EmptyBox3()
	for _, m := range s.registry {
		b = b.Union(m.Bounds())
	}
	return b
}

func (s *scene) LightDirection() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lightDir
}

func (s *scene) SetLightDirection(dir mgl32.Vec3) {
	if dir.Len() == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightDir = dir.Normalize()
}

func (s *scene) Ambient() float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *scene) SetAmbient(a float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = common.Clamp01(a)
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) Stats() DrawStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// orderedIDs returns the registry keys in insertion order so draws are deterministic
// for targets without depth. Caller must hold at least a read lock.
func (s *scene) orderedIDs() []uint64 {
	ids := make([]uint64, 0, len(s.registry))
	for id := range s.registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *scene) Draw(target *renderer.RenderTarget, cam camera.Camera) error {
	if target == nil {
		return renderer.ErrNoRenderTarget
	}
	if cam == nil {
		return fmt.Errorf("scene %q: draw requires a camera", s.Name())
	}

	vp := cam.ViewProjectionMatrix()
	frustum := common.ExtractFrustumFromMatrix(vp[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := DrawStats{}
	poly := make([]clipVertex, 0, 4)
	for _, id := range s.orderedIDs() {
		m := s.registry[id]
		if !s.cullingDisabled && !frustum.IntersectsBox(m.Bounds()) {
			stats.Culled++
			continue
		}
		stats.Meshes++

		world := m.WorldPositions()
		clip := make([]clipVertex, len(world))
		for i, p := range world {
			x, y, z, w := common.TransformPoint(vp[:], p[0], p[1], p[2])
			clip[i] = clipVertex{x, y, z, w}
		}

		for t := 0; t+2 < len(m.Indices); t += 3 {
			i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
			if int(max(i0, i1, i2)) >= len(world) {
				return fmt.Errorf("scene %q: mesh %q index out of range at triangle %d", s.name, m.Name, t/3)
			}
			c := s.shade(m.Color, world[i0], world[i1], world[i2])

			poly = clipNear([3]clipVertex{clip[i0], clip[i1], clip[i2]}, poly)
			if len(poly) < 3 {
				continue
			}
			stats.Triangles++
			v0 := toScreen(poly[0], target.Width(), target.Height())
			for k := 1; k+1 < len(poly); k++ {
				v1 := toScreen(poly[k], target.Width(), target.Height())
				v2 := toScreen(poly[k+1], target.Width(), target.Height())
				stats.Pixels += rasterizeTriangle(target, v0, v1, v2, c)
			}
		}
	}
	s.stats = stats
	return nil
}

// shade applies two-sided Lambert lighting to a flat triangle. Caller must hold the mutex.
func (s *scene) shade(base common.Color, a, b, c mgl32.Vec3) common.Color {
	n := b.Sub(a).Cross(c.Sub(a))
	diffuse := float32(0)
	if l := n.Len(); l > 0 {
		d := n.Mul(1 / l).Dot(s.lightDir)
		if d < 0 {
			d = -d
		}
		diffuse = d
	}
	k := s.ambient + (1-s.ambient)*diffuse
	return common.Color{R: base.R * k, G: base.G * k, B: base.B * k, A: base.A}
}
