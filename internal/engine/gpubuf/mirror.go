package gpubuf

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
	"github.com/Faultbox/nevk-scene/internal/logger"
)

// Buffer names one of the mirrored buffers.
type Buffer int

const (
	VertexBuffer Buffer = iota
	IndexBuffer
	InstanceBuffer
	MaterialBuffer
	bufferCount
)

func (b Buffer) String() string {
	switch b {
	case VertexBuffer:
		return "vertices"
	case IndexBuffer:
		return "indices"
	case InstanceBuffer:
		return "instances"
	case MaterialBuffer:
		return "materials"
	default:
		return "unknown"
	}
}

// Device performs raw buffer operations. Sizes and offsets are in bytes.
type Device interface {
	// Allocate replaces the storage of b with size undefined bytes.
	Allocate(b Buffer, size int)
	// Write copies size bytes from data into b at offset.
	Write(b Buffer, offset, size int, data unsafe.Pointer)
}

// InstanceData is the GPU layout of one instance slot.
type InstanceData struct {
	Transform    mgl32.Mat4
	NormalMatrix mgl32.Mat4
	MeshID       uint32
	MaterialID   uint32
	Live         uint32
	_            uint32
}

var (
	vertexSize   = int(unsafe.Sizeof(scene.Vertex{}))
	indexSize    = int(unsafe.Sizeof(uint32(0)))
	instanceSize = int(unsafe.Sizeof(InstanceData{}))
	materialSize = int(unsafe.Sizeof(scene.Material{}))
)

// SyncStats describes the work done by one Sync.
type SyncStats struct {
	Bytes    int
	Writes   int
	Reallocs int
}

// Mirror keeps a Device's buffers equal to a scene. Sync is meant to run
// once per frame, after EndFrame and before the next BeginFrame, so that
// the scene's dirty set still describes the frame.
type Mirror struct {
	dev     Device
	state   State
	staging []InstanceData
	total   SyncStats
	log     *zap.Logger
}

// NewMirror creates a mirror writing to dev.
func NewMirror(dev Device) *Mirror {
	return &Mirror{
		dev: dev,
		log: logger.Named("gpubuf"),
	}
}

// State returns what has been uploaded so far.
func (m *Mirror) State() State {
	return m.state
}

// Total returns the accumulated stats of all syncs.
func (m *Mirror) Total() SyncStats {
	return m.total
}

// Instances returns the staged instance slots as last uploaded.
func (m *Mirror) Instances() []InstanceData {
	return m.staging
}

// Sync uploads whatever changed in s since the previous call.
func (m *Mirror) Sync(s *scene.Scene) (Plan, SyncStats) {
	plan := MakePlan(m.state, s)
	var st SyncStats
	if plan.Empty() {
		m.state = m.state.Apply(plan, s)
		return plan, st
	}

	m.stageInstances(s, plan)

	m.execute(VertexBuffer, plan.Vertices, vertexSize, sliceData(s.Vertices()), &st)
	m.execute(IndexBuffer, plan.Indices, indexSize, sliceData(s.Indices()), &st)
	m.execute(InstanceBuffer, plan.Instances, instanceSize, sliceData(m.staging), &st)
	m.execute(MaterialBuffer, plan.Materials, materialSize, sliceData(s.Materials()), &st)

	m.state = m.state.Apply(plan, s)
	m.total.Bytes += st.Bytes
	m.total.Writes += st.Writes
	m.total.Reallocs += st.Reallocs

	m.log.Debug("buffers synced",
		zap.Uint64("layout", plan.Layout),
		zap.Stringer("vertices", plan.Vertices.Kind),
		zap.Stringer("indices", plan.Indices.Kind),
		zap.Stringer("instances", plan.Instances.Kind),
		zap.Stringer("materials", plan.Materials.Kind),
		zap.Int("bytes", st.Bytes),
		zap.Int("writes", st.Writes),
	)
	return plan, st
}

// stageInstances refreshes the CPU copy of the instance slots touched by
// the plan.
func (m *Mirror) stageInstances(s *scene.Scene, plan Plan) {
	slots := s.InstanceSlots()
	if plan.Instances.Kind == Realloc || len(m.staging) != len(slots) {
		m.staging = make([]InstanceData, len(slots))
	}
	for _, r := range plan.Instances.Ranges {
		for id := r.First; id < r.First+r.Count; id++ {
			in, err := s.Instance(scene.InstanceID(id))
			if err != nil {
				m.staging[id] = InstanceData{}
				continue
			}
			m.staging[id] = toInstanceData(in)
		}
	}
}

func toInstanceData(in scene.Instance) InstanceData {
	return InstanceData{
		Transform:    in.Transform,
		NormalMatrix: in.Transform.Inv().Transpose(),
		MeshID:       uint32(in.MeshID),
		MaterialID:   uint32(in.MaterialID),
		Live:         1,
	}
}

func (m *Mirror) execute(b Buffer, u Upload, elemSize int, base unsafe.Pointer, st *SyncStats) {
	if u.Kind == Skip {
		return
	}
	if u.Kind == Realloc {
		m.log.Debug("growing buffer",
			zap.Stringer("buffer", b),
			zap.Int("capacity", u.Capacity),
			zap.Int("bytes", u.Capacity*elemSize),
		)
		m.dev.Allocate(b, u.Capacity*elemSize)
		st.Reallocs++
	}
	for _, r := range u.Ranges {
		if r.Count == 0 {
			continue
		}
		offset := r.First * elemSize
		size := r.Count * elemSize
		m.dev.Write(b, offset, size, unsafe.Add(base, offset))
		st.Bytes += size
		st.Writes++
	}
}

func sliceData[T any](s []T) unsafe.Pointer {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(s))
}
