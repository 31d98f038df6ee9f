package scene

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDirtyInstancesScenario(t *testing.T) {
	s, mesh, mat := newTestScene(t)
	i1 := mustInstance(t, s, mesh, mat, mgl32.Ident4())

	if err := s.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := s.UpdateInstanceTransform(i1, mgl32.Translate3D(0, 1, 0)); err != nil {
		t.Fatalf("UpdateInstanceTransform: %v", err)
	}
	if got := s.DirtyInstances(); !slices.Equal(got, []InstanceID{i1}) {
		t.Errorf("dirty = %v, want [%d]", got, i1)
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}

	// Still visible after EndFrame, for the renderer.
	if !s.IsDirty(i1) {
		t.Error("dirty set should survive EndFrame")
	}

	if err := s.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if got := s.DirtyInstances(); len(got) != 0 {
		t.Errorf("dirty after BeginFrame = %v, want empty", got)
	}

	in, _ := s.Instance(i1)
	if in.Transform != mgl32.Translate3D(0, 1, 0) {
		t.Error("transform should be overwritten")
	}
}

func TestDirtyInstancesSortedAndDeduplicated(t *testing.T) {
	s, mesh, mat := newTestScene(t)
	var ids []InstanceID
	for i := 0; i < 5; i++ {
		ids = append(ids, mustInstance(t, s, mesh, mat, mgl32.Ident4()))
	}

	_ = s.BeginFrame()
	for _, id := range []InstanceID{ids[4], ids[1], ids[4], ids[3]} {
		if err := s.UpdateInstanceTransform(id, mgl32.Ident4()); err != nil {
			t.Fatalf("UpdateInstanceTransform(%d): %v", id, err)
		}
	}
	want := []InstanceID{ids[1], ids[3], ids[4]}
	if got := s.DirtyInstances(); !slices.Equal(got, want) {
		t.Errorf("dirty = %v, want %v", got, want)
	}
	if s.Stats().Dirty != 3 {
		t.Errorf("Stats().Dirty = %d, want 3", s.Stats().Dirty)
	}
}

func TestRemovedInstanceLeavesDirtySet(t *testing.T) {
	s, mesh, mat := newTestScene(t)
	id := mustInstance(t, s, mesh, mat, mgl32.Ident4())

	_ = s.BeginFrame()
	_ = s.UpdateInstanceTransform(id, mgl32.Ident4())
	if err := s.RemoveInstance(id); err != nil {
		t.Fatalf("RemoveInstance: %v", err)
	}
	if s.IsDirty(id) {
		t.Error("removed instance should not stay dirty")
	}
}

func TestUpdateOutsideFrame(t *testing.T) {
	s, mesh, mat := newTestScene(t)
	id := mustInstance(t, s, mesh, mat, mgl32.Ident4())

	err := s.UpdateInstanceTransform(id, mgl32.Translate3D(5, 5, 5))
	if !errors.Is(err, ErrOutOfFrameUpdate) {
		t.Fatalf("before any frame: err = %v, want ErrOutOfFrameUpdate", err)
	}

	_ = s.BeginFrame()
	_ = s.EndFrame()
	err = s.UpdateInstanceTransform(id, mgl32.Translate3D(5, 5, 5))
	if !errors.Is(err, ErrOutOfFrameUpdate) {
		t.Fatalf("after EndFrame: err = %v, want ErrOutOfFrameUpdate", err)
	}

	in, _ := s.Instance(id)
	if in.Transform != mgl32.Ident4() {
		t.Error("rejected update must not modify the instance")
	}
	if len(s.DirtyInstances()) != 0 {
		t.Error("rejected update must not mark the instance dirty")
	}
}

func TestUpdateInvalidInstance(t *testing.T) {
	s := New(DefaultConfig())
	_ = s.BeginFrame()
	if err := s.UpdateInstanceTransform(3, mgl32.Ident4()); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("err = %v, want ErrInvalidHandle", err)
	}
}

func TestFrameMarkersAlternate(t *testing.T) {
	s := New(DefaultConfig())

	if err := s.EndFrame(); !errors.Is(err, ErrFrameState) {
		t.Errorf("EndFrame while idle: err = %v, want ErrFrameState", err)
	}
	if s.InFrame() {
		t.Error("scene should be idle")
	}

	if err := s.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if !s.InFrame() {
		t.Error("scene should be in a frame")
	}
	if err := s.BeginFrame(); !errors.Is(err, ErrFrameState) {
		t.Errorf("nested BeginFrame: err = %v, want ErrFrameState", err)
	}
	if s.FrameNumber() != 1 {
		t.Errorf("FrameNumber = %d, want 1", s.FrameNumber())
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if s.InFrame() {
		t.Error("scene should be idle again")
	}
}
