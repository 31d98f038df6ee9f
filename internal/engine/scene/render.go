package scene

import (
	"cmp"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// partitionCache holds the opaque/transparent split of live instances.
// It only depends on which instances and materials exist, so it is
// rebuilt when the layout version moves.
type partitionCache struct {
	valid       bool
	version     uint64
	opaque      []InstanceID
	transparent []InstanceID
}

func (s *Scene) partitionInstances() *partitionCache {
	pc := &s.partition
	if pc.valid && pc.version == s.layoutVersion {
		return pc
	}

	pc.opaque = pc.opaque[:0]
	pc.transparent = pc.transparent[:0]
	for id, live := range s.instances.live {
		if !live {
			continue
		}
		in := &s.instances.items[id]
		// Instances only reference live materials: RemoveMaterial refuses
		// materials in use.
		if s.materials.items[in.MaterialID].IsTransparent() {
			pc.transparent = append(pc.transparent, InstanceID(id))
		} else {
			pc.opaque = append(pc.opaque, InstanceID(id))
		}
	}
	pc.version = s.layoutVersion
	pc.valid = true
	return pc
}

// OpaqueInstancesToRender returns the live instances with an opaque
// material in ascending id order, or nothing when OpaqueMode is off.
// camPos is accepted for symmetry with the transparent pass.
func (s *Scene) OpaqueInstancesToRender(camPos mgl32.Vec3) []InstanceID {
	if !s.OpaqueMode {
		return nil
	}
	return slices.Clone(s.partitionInstances().opaque)
}

// distanceEpsilon is the relative tolerance under which two squared
// distances count as equal.
const distanceEpsilon = 1e-5

func sameDistance(a, b float32) bool {
	return math32.Abs(a-b) <= distanceEpsilon*max(1, a, b)
}

// TransparentInstancesToRender returns the live instances with a
// transparent material sorted back to front: by decreasing distance from
// camPos to the instance's world-space mass center. Distances equal within
// distanceEpsilon fall back to ascending id.
// Returns nothing when TransparentMode is off.
func (s *Scene) TransparentInstancesToRender(camPos mgl32.Vec3) []InstanceID {
	if !s.TransparentMode {
		return nil
	}
	ids := s.partitionInstances().transparent

	type keyed struct {
		id   InstanceID
		dist float32
	}
	order := make([]keyed, len(ids))
	for i, id := range ids {
		center := s.instances.items[id].WorldMassCenter()
		d := center.Sub(camPos)
		order[i] = keyed{id: id, dist: d.Dot(d)}
	}
	slices.SortFunc(order, func(a, b keyed) int {
		if !sameDistance(a.dist, b.dist) {
			return cmp.Compare(b.dist, a.dist)
		}
		return cmp.Compare(a.id, b.id)
	})

	out := make([]InstanceID, len(order))
	for i, k := range order {
		out[i] = k.id
	}
	return out
}
