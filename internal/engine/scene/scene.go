// Package scene owns the canonical geometry, material and instance storage
// of a 3D scene behind stable integer handles.
//
// Geometry of every mesh is batched into one global vertex array and one
// global index array so the renderer can upload each as a single buffer.
// Handles are recycled LIFO: removing an id pushes it on a free stack and
// the next create of the same kind returns it. Storage is never compacted.
//
// A Scene is not safe for concurrent use; confine it to the render thread.
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/engine/camera"
	"github.com/Faultbox/nevk-scene/internal/logger"
)

// Config contains scene configuration options.
type Config struct {
	InitialVertexCapacity int
	InitialIndexCapacity  int
	OpaqueMode            bool
	TransparentMode       bool
	LightPosition         mgl32.Vec4

	CameraFOV  float32
	CameraNear float32
	CameraFar  float32
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		InitialVertexCapacity: 1 << 16,
		InitialIndexCapacity:  1 << 16,
		OpaqueMode:            true,
		TransparentMode:       true,
		LightPosition:         mgl32.Vec4{1, 1, 1, 1},
		CameraFOV:             camera.DefaultFOV,
		CameraNear:            camera.DefaultNear,
		CameraFar:             camera.DefaultFar,
	}
}

// Scene is the registry of meshes, materials and instances.
type Scene struct {
	camera *camera.Camera

	vertices []Vertex
	indices  []uint32
	limit    uint64 // max vertex/index count and index value

	meshes    pool[Mesh]
	materials pool[Material]
	instances pool[Instance]

	// Frame tracking
	inFrame     bool
	frameNumber uint64
	dirty       map[InstanceID]struct{}

	// Bumped on every create/remove; keys derived caches.
	layoutVersion uint64
	partition     partitionCache

	// Render settings read by the renderer
	OpaqueMode      bool
	TransparentMode bool
	LightPosition   mgl32.Vec4
	DebugView       DebugView
}

// New creates an empty scene.
func New(cfg Config) *Scene {
	cam := camera.New()
	if cfg.CameraFOV > 0 {
		cam.SetPerspective(cfg.CameraFOV, cam.Aspect, cfg.CameraNear, cfg.CameraFar)
	}

	return &Scene{
		camera:          cam,
		vertices:        make([]Vertex, 0, cfg.InitialVertexCapacity),
		indices:         make([]uint32, 0, cfg.InitialIndexCapacity),
		limit:           math.MaxUint32,
		dirty:           make(map[InstanceID]struct{}),
		OpaqueMode:      cfg.OpaqueMode,
		TransparentMode: cfg.TransparentMode,
		LightPosition:   cfg.LightPosition,
	}
}

// CreateMesh appends the geometry to the global buffers and returns the
// mesh id. Local indices are rebased onto the index-array length at the
// time of the call, which equals the mesh's FirstIndex.
func (s *Scene) CreateMesh(vertices []Vertex, indices []uint32) (MeshID, error) {
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return 0, fmt.Errorf("index %d is %d with %d vertices: %w", i, idx, len(vertices), ErrIndexOutOfRange)
		}
	}
	if !fits(uint64(len(s.indices)), uint64(len(s.vertices)), uint64(len(indices)), uint64(len(vertices)), s.limit) {
		return 0, fmt.Errorf("adding %d vertices and %d indices: %w", len(vertices), len(indices), ErrBufferExhausted)
	}

	firstIndex := uint32(len(s.indices))
	for _, idx := range indices {
		s.indices = append(s.indices, firstIndex+idx)
	}
	s.vertices = append(s.vertices, vertices...)

	id := MeshID(s.meshes.alloc(Mesh{
		FirstIndex: firstIndex,
		IndexCount: uint32(len(indices)),
	}))
	s.layoutVersion++

	logger.Debug("mesh created",
		zap.Uint32("id", uint32(id)),
		zap.Uint32("firstIndex", firstIndex),
		zap.Int("indices", len(indices)),
		zap.Int("vertices", len(vertices)),
	)
	return id, nil
}

// fits reports whether addIdx indices over addVtx vertices can be appended
// to buffers holding curIdx indices and curVtx vertices. Both counts must
// stay within limit, and so must the largest rebased index value,
// curIdx+addVtx-1, since local indices are below addVtx.
func fits(curIdx, curVtx, addIdx, addVtx, limit uint64) bool {
	if curIdx+addIdx > limit || curVtx+addVtx > limit {
		return false
	}
	return addVtx == 0 || curIdx+addVtx-1 <= limit
}

// CreateMaterial stores a copy of m. Texture ids are not checked.
func (s *Scene) CreateMaterial(m Material) MaterialID {
	id := MaterialID(s.materials.alloc(m))
	s.layoutVersion++
	logger.Debug("material created",
		zap.Uint32("id", uint32(id)),
		zap.Stringer("illum", m.Illum),
	)
	return id
}

// CreateInstance places mesh with material. Both ids must be live.
func (s *Scene) CreateInstance(mesh MeshID, material MaterialID, transform mgl32.Mat4, massCenter mgl32.Vec3) (InstanceID, error) {
	if !s.meshes.alive(uint32(mesh)) {
		return 0, fmt.Errorf("mesh %d: %w", mesh, ErrInvalidHandle)
	}
	if !s.materials.alive(uint32(material)) {
		return 0, fmt.Errorf("material %d: %w", material, ErrInvalidHandle)
	}

	id := InstanceID(s.instances.alloc(Instance{
		Transform:  transform,
		MeshID:     mesh,
		MaterialID: material,
		MassCenter: massCenter,
	}))
	s.layoutVersion++
	logger.Debug("instance created",
		zap.Uint32("id", uint32(id)),
		zap.Uint32("mesh", uint32(mesh)),
		zap.Uint32("material", uint32(material)),
	)
	return id, nil
}

// RemoveInstance releases id for reuse and drops it from the dirty set.
func (s *Scene) RemoveInstance(id InstanceID) error {
	if !s.instances.release(uint32(id)) {
		return fmt.Errorf("instance %d: %w", id, ErrInvalidHandle)
	}
	delete(s.dirty, id)
	s.layoutVersion++
	logger.Debug("instance removed", zap.Uint32("id", uint32(id)))
	return nil
}

// RemoveMesh releases id for reuse. Its vertex and index storage stays in
// the global arrays. Meshes still used by a live instance are not removed.
func (s *Scene) RemoveMesh(id MeshID) error {
	if !s.meshes.alive(uint32(id)) {
		return fmt.Errorf("mesh %d: %w", id, ErrInvalidHandle)
	}
	if user, ok := s.findInstance(func(in *Instance) bool { return in.MeshID == id }); ok {
		return fmt.Errorf("mesh %d used by instance %d: %w", id, user, ErrHandleInUse)
	}
	s.meshes.release(uint32(id))
	s.layoutVersion++
	logger.Debug("mesh removed", zap.Uint32("id", uint32(id)))
	return nil
}

// RemoveMaterial releases id for reuse. Materials still used by a live
// instance are not removed.
func (s *Scene) RemoveMaterial(id MaterialID) error {
	if !s.materials.alive(uint32(id)) {
		return fmt.Errorf("material %d: %w", id, ErrInvalidHandle)
	}
	if user, ok := s.findInstance(func(in *Instance) bool { return in.MaterialID == id }); ok {
		return fmt.Errorf("material %d used by instance %d: %w", id, user, ErrHandleInUse)
	}
	s.materials.release(uint32(id))
	s.layoutVersion++
	logger.Debug("material removed", zap.Uint32("id", uint32(id)))
	return nil
}

func (s *Scene) findInstance(match func(*Instance) bool) (InstanceID, bool) {
	for id, live := range s.instances.live {
		if live && match(&s.instances.items[id]) {
			return InstanceID(id), true
		}
	}
	return 0, false
}

// Vertices returns the global vertex array. The slice is owned by the
// scene and must not be modified.
func (s *Scene) Vertices() []Vertex {
	return s.vertices
}

// Indices returns the global index array. The slice is owned by the scene
// and must not be modified.
func (s *Scene) Indices() []uint32 {
	return s.indices
}

// Mesh returns the index range of a live mesh.
func (s *Scene) Mesh(id MeshID) (Mesh, error) {
	m, ok := s.meshes.get(uint32(id))
	if !ok {
		return Mesh{}, fmt.Errorf("mesh %d: %w", id, ErrInvalidHandle)
	}
	return m, nil
}

// MeshIndices returns the slice of the global index array selected by a
// live mesh.
func (s *Scene) MeshIndices(id MeshID) ([]uint32, error) {
	m, err := s.Mesh(id)
	if err != nil {
		return nil, err
	}
	return s.indices[m.FirstIndex : m.FirstIndex+m.IndexCount], nil
}

// Material returns a live material.
func (s *Scene) Material(id MaterialID) (Material, error) {
	m, ok := s.materials.get(uint32(id))
	if !ok {
		return Material{}, fmt.Errorf("material %d: %w", id, ErrInvalidHandle)
	}
	return m, nil
}

// Materials returns the dense material array indexed by MaterialID,
// including slots of removed materials. It is meant for buffer upload.
func (s *Scene) Materials() []Material {
	return s.materials.items
}

// Instance returns a live instance.
func (s *Scene) Instance(id InstanceID) (Instance, error) {
	in, ok := s.instances.get(uint32(id))
	if !ok {
		return Instance{}, fmt.Errorf("instance %d: %w", id, ErrInvalidHandle)
	}
	return in, nil
}

// InstanceSlots returns the dense instance array indexed by InstanceID,
// including slots of removed instances. It is meant for buffer upload.
func (s *Scene) InstanceSlots() []Instance {
	return s.instances.items
}

// LiveInstances returns all live instance ids in ascending order.
func (s *Scene) LiveInstances() []InstanceID {
	ids := s.instances.ids()
	out := make([]InstanceID, len(ids))
	for i, id := range ids {
		out[i] = InstanceID(id)
	}
	return out
}

// LayoutVersion changes whenever a mesh, material or instance is created
// or removed. Transform updates leave it unchanged.
func (s *Scene) LayoutVersion() uint64 {
	return s.layoutVersion
}

// Camera returns the scene camera.
func (s *Scene) Camera() *camera.Camera {
	return s.camera
}

// UpdateCameraParams adapts the camera projection to a framebuffer size.
func (s *Scene) UpdateCameraParams(width, height int) {
	s.camera.SetViewport(width, height)
}

// Stats returns storage counters.
func (s *Scene) Stats() Stats {
	return Stats{
		Vertices:  len(s.vertices),
		Indices:   len(s.indices),
		Meshes:    s.meshes.count,
		Materials: s.materials.count,
		Instances: s.instances.count,
		Dirty:     len(s.dirty),
	}
}
