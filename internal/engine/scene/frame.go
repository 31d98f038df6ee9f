package scene

import (
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// BeginFrame opens a frame and clears the dirty set, so it only collects
// updates made during this frame.
func (s *Scene) BeginFrame() error {
	if s.inFrame {
		return fmt.Errorf("begin frame %d while frame %d is open: %w", s.frameNumber+1, s.frameNumber, ErrFrameState)
	}
	s.inFrame = true
	s.frameNumber++
	clear(s.dirty)
	return nil
}

// EndFrame closes the current frame. The dirty set is kept until the next
// BeginFrame so the renderer can read it after the frame's updates.
func (s *Scene) EndFrame() error {
	if !s.inFrame {
		return fmt.Errorf("end frame without begin: %w", ErrFrameState)
	}
	s.inFrame = false
	return nil
}

// InFrame reports whether a frame is open.
func (s *Scene) InFrame() bool {
	return s.inFrame
}

// FrameNumber returns the number of frames begun so far.
func (s *Scene) FrameNumber() uint64 {
	return s.frameNumber
}

// UpdateInstanceTransform overwrites the transform of a live instance and
// marks it dirty. Only valid between BeginFrame and EndFrame.
func (s *Scene) UpdateInstanceTransform(id InstanceID, transform mgl32.Mat4) error {
	if !s.inFrame {
		return fmt.Errorf("instance %d: %w", id, ErrOutOfFrameUpdate)
	}
	in := s.instances.ptr(uint32(id))
	if in == nil {
		return fmt.Errorf("instance %d: %w", id, ErrInvalidHandle)
	}
	in.Transform = transform
	s.dirty[id] = struct{}{}
	return nil
}

// DirtyInstances returns the ids updated since the last BeginFrame in
// ascending order.
func (s *Scene) DirtyInstances() []InstanceID {
	return slices.Sorted(maps.Keys(s.dirty))
}

// IsDirty reports whether id was updated since the last BeginFrame.
func (s *Scene) IsDirty(id InstanceID) bool {
	_, ok := s.dirty[id]
	return ok
}
