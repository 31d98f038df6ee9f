package gpubuf

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

// memDevice keeps buffers in memory and counts calls.
type memDevice struct {
	bufs   [bufferCount][]byte
	allocs [bufferCount]int
	writes [bufferCount]int
}

func (d *memDevice) Allocate(b Buffer, size int) {
	d.bufs[b] = make([]byte, size)
	d.allocs[b]++
}

func (d *memDevice) Write(b Buffer, offset, size int, data unsafe.Pointer) {
	copy(d.bufs[b][offset:offset+size], unsafe.Slice((*byte)(data), size))
	d.writes[b]++
}

func asBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

func triangle() ([]scene.Vertex, []uint32) {
	v := []scene.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	return v, []uint32{0, 1, 2}
}

func populate(t *testing.T, n int) (*scene.Scene, []scene.InstanceID) {
	t.Helper()
	s := scene.New(scene.DefaultConfig())
	v, idx := triangle()
	mesh, err := s.CreateMesh(v, idx)
	if err != nil {
		t.Fatalf("CreateMesh: %v", err)
	}
	mat := s.CreateMaterial(scene.Material{Illum: scene.IllumHighlight})
	var ids []scene.InstanceID
	for i := 0; i < n; i++ {
		id, err := s.CreateInstance(mesh, mat, mgl32.Translate3D(float32(i), 0, 0), mgl32.Vec3{})
		if err != nil {
			t.Fatalf("CreateInstance: %v", err)
		}
		ids = append(ids, id)
	}
	return s, ids
}

func checkMirrored(t *testing.T, d *memDevice, m *Mirror, s *scene.Scene) {
	t.Helper()
	if got, want := d.bufs[VertexBuffer][:len(asBytes(s.Vertices()))], asBytes(s.Vertices()); !bytes.Equal(got, want) {
		t.Error("vertex buffer differs from scene")
	}
	if got, want := d.bufs[IndexBuffer][:len(asBytes(s.Indices()))], asBytes(s.Indices()); !bytes.Equal(got, want) {
		t.Error("index buffer differs from scene")
	}
	if got, want := d.bufs[MaterialBuffer][:len(asBytes(s.Materials()))], asBytes(s.Materials()); !bytes.Equal(got, want) {
		t.Error("material buffer differs from scene")
	}
	staged := asBytes(m.Instances())
	if got := d.bufs[InstanceBuffer][:len(staged)]; !bytes.Equal(got, staged) {
		t.Error("instance buffer differs from staging")
	}
	for _, id := range s.LiveInstances() {
		in, _ := s.Instance(id)
		if m.Instances()[id].Transform != in.Transform {
			t.Errorf("staged transform of %d is stale", id)
		}
	}
}

func TestMirrorInitialSync(t *testing.T) {
	s, ids := populate(t, 3)
	d := &memDevice{}
	m := NewMirror(d)

	plan, st := m.Sync(s)
	for b, u := range []Upload{plan.Vertices, plan.Indices, plan.Instances, plan.Materials} {
		if u.Kind != Realloc {
			t.Errorf("%v: kind = %v, want realloc", Buffer(b), u.Kind)
		}
	}
	if st.Reallocs != 4 || st.Writes != 4 {
		t.Errorf("stats = %+v", st)
	}
	wantBytes := 3*vertexSize + 3*indexSize + 3*instanceSize + 1*materialSize
	if st.Bytes != wantBytes {
		t.Errorf("bytes = %d, want %d", st.Bytes, wantBytes)
	}
	checkMirrored(t, d, m, s)

	for _, id := range ids {
		if m.Instances()[id].Live != 1 {
			t.Errorf("instance %d should be live", id)
		}
	}

	// A second sync with no changes writes nothing.
	plan, st = m.Sync(s)
	if !plan.Empty() || st.Bytes != 0 {
		t.Errorf("idle sync: plan %+v stats %+v", plan, st)
	}
}

func TestMirrorPatchesDirtyInstances(t *testing.T) {
	s, ids := populate(t, 8)
	d := &memDevice{}
	m := NewMirror(d)
	m.Sync(s)
	writes := d.writes

	_ = s.BeginFrame()
	for _, id := range []scene.InstanceID{ids[2], ids[3], ids[6]} {
		if err := s.UpdateInstanceTransform(id, mgl32.Translate3D(0, 9, 0)); err != nil {
			t.Fatalf("UpdateInstanceTransform: %v", err)
		}
	}
	_ = s.EndFrame()

	plan, st := m.Sync(s)
	if plan.Instances.Kind != Patch {
		t.Fatalf("instances kind = %v, want patch", plan.Instances.Kind)
	}
	if want := []Range{{int(ids[2]), 2}, {int(ids[6]), 1}}; len(plan.Instances.Ranges) != 2 ||
		plan.Instances.Ranges[0] != want[0] || plan.Instances.Ranges[1] != want[1] {
		t.Errorf("ranges = %v, want %v", plan.Instances.Ranges, want)
	}
	if st.Bytes != 3*instanceSize {
		t.Errorf("bytes = %d, want %d", st.Bytes, 3*instanceSize)
	}
	if d.writes[VertexBuffer] != writes[VertexBuffer] || d.writes[MaterialBuffer] != writes[MaterialBuffer] {
		t.Error("transform updates must not touch geometry or materials")
	}
	checkMirrored(t, d, m, s)
}

func TestMirrorAppendsNewGeometry(t *testing.T) {
	s, _ := populate(t, 1)
	d := &memDevice{}
	m := NewMirror(d)
	m.Sync(s)

	v, idx := triangle()
	if _, err := s.CreateMesh(v, idx); err != nil {
		t.Fatalf("CreateMesh: %v", err)
	}
	plan, _ := m.Sync(s)
	if plan.Vertices.Kind != Append || plan.Vertices.Ranges[0] != (Range{3, 3}) {
		t.Errorf("vertices plan = %+v", plan.Vertices)
	}
	if plan.Indices.Kind != Append || plan.Indices.Ranges[0] != (Range{3, 3}) {
		t.Errorf("indices plan = %+v", plan.Indices)
	}
	if d.allocs[VertexBuffer] != 1 {
		t.Errorf("vertex allocs = %d, want 1", d.allocs[VertexBuffer])
	}
	checkMirrored(t, d, m, s)
}

func TestMirrorGrowsBuffers(t *testing.T) {
	s, _ := populate(t, 1)
	d := &memDevice{}
	m := NewMirror(d)
	m.Sync(s)

	mesh, _ := s.CreateMesh(triangle())
	mat := s.CreateMaterial(scene.Material{Illum: scene.IllumGlass})
	for i := 0; i < 100; i++ {
		if _, err := s.CreateInstance(mesh, mat, mgl32.Ident4(), mgl32.Vec3{}); err != nil {
			t.Fatalf("CreateInstance: %v", err)
		}
	}
	plan, _ := m.Sync(s)
	if plan.Instances.Kind != Realloc || plan.Instances.Capacity != 128 {
		t.Errorf("instances plan = %v cap %d, want realloc cap 128", plan.Instances.Kind, plan.Instances.Capacity)
	}
	if d.allocs[InstanceBuffer] != 2 {
		t.Errorf("instance allocs = %d, want 2", d.allocs[InstanceBuffer])
	}
	if m.State().InstanceCapacity != 128 {
		t.Errorf("state capacity = %d", m.State().InstanceCapacity)
	}
	checkMirrored(t, d, m, s)
}

func TestMirrorClearsRemovedSlots(t *testing.T) {
	s, ids := populate(t, 4)
	d := &memDevice{}
	m := NewMirror(d)
	m.Sync(s)

	if err := s.RemoveInstance(ids[1]); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	plan, _ := m.Sync(s)
	if plan.Instances.Kind != Patch || plan.Instances.Elements() != 4 {
		t.Errorf("instances plan = %+v, want full patch", plan.Instances)
	}
	if m.Instances()[ids[1]] != (InstanceData{}) {
		t.Error("removed slot should be cleared")
	}
	checkMirrored(t, d, m, s)

	if tot := m.Total(); tot.Writes == 0 || tot.Bytes == 0 {
		t.Errorf("total = %+v", tot)
	}
}
