// Package gpubuf keeps GPU buffers in step with a scene.Scene. Planning is
// pure and decides what has to be written; Mirror carries the plan out on a
// Device.
package gpubuf

import (
	"github.com/Faultbox/nevk-scene/internal/engine/scene"
)

// Kind says how a buffer is brought up to date.
type Kind int

const (
	Skip    Kind = iota // nothing changed
	Append              // write the new tail of an append-only array
	Patch               // rewrite some ranges in place
	Realloc             // grow the buffer and write everything
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Append:
		return "append"
	case Patch:
		return "patch"
	case Realloc:
		return "realloc"
	default:
		return "unknown"
	}
}

// Range is a run of elements.
type Range struct {
	First int
	Count int
}

// Upload is the plan for one buffer. Capacity and ranges count elements.
type Upload struct {
	Kind     Kind
	Capacity int
	Ranges   []Range
}

// Elements returns the number of elements the upload writes.
func (u Upload) Elements() int {
	n := 0
	for _, r := range u.Ranges {
		n += r.Count
	}
	return n
}

// minCapacity is the element capacity of a freshly allocated buffer.
const minCapacity = 64

func grow(capacity, need int) int {
	c := max(capacity, minCapacity)
	for c < need {
		c *= 2
	}
	return c
}

// PlanAppend plans an append-only array such as the vertex or index array.
func PlanAppend(uploaded, capacity, current int) Upload {
	switch {
	case current > capacity:
		return Upload{Kind: Realloc, Capacity: grow(capacity, current), Ranges: []Range{{0, current}}}
	case current > uploaded:
		return Upload{Kind: Append, Capacity: capacity, Ranges: []Range{{uploaded, current - uploaded}}}
	default:
		return Upload{Kind: Skip, Capacity: capacity}
	}
}

// PlanSlots plans an array indexed by handle. A layout change rewrites all
// slots; otherwise only the dirty ids, which must be sorted, are patched.
func PlanSlots[T ~uint32](capacity, slots int, layoutChanged bool, dirty []T) Upload {
	switch {
	case slots > capacity:
		return Upload{Kind: Realloc, Capacity: grow(capacity, slots), Ranges: []Range{{0, slots}}}
	case layoutChanged && slots > 0:
		return Upload{Kind: Patch, Capacity: capacity, Ranges: []Range{{0, slots}}}
	}
	ranges := Coalesce(dirty)
	if len(ranges) == 0 {
		return Upload{Kind: Skip, Capacity: capacity}
	}
	return Upload{Kind: Patch, Capacity: capacity, Ranges: ranges}
}

// Coalesce merges sorted, duplicate-free ids into runs of consecutive ids.
func Coalesce[T ~uint32](ids []T) []Range {
	var out []Range
	for _, id := range ids {
		n := len(out)
		if n > 0 && out[n-1].First+out[n-1].Count == int(id) {
			out[n-1].Count++
			continue
		}
		out = append(out, Range{First: int(id), Count: 1})
	}
	return out
}

// State records what has been uploaded so far.
type State struct {
	Vertices  int
	Indices   int
	Instances int
	Materials int

	VertexCapacity   int
	IndexCapacity    int
	InstanceCapacity int
	MaterialCapacity int

	Layout uint64
	Synced bool
}

// Plan lists the uploads needed to bring every buffer up to date.
type Plan struct {
	Vertices  Upload
	Indices   Upload
	Instances Upload
	Materials Upload
	Layout    uint64
}

// Empty reports whether the plan writes nothing.
func (p Plan) Empty() bool {
	return p.Vertices.Kind == Skip && p.Indices.Kind == Skip &&
		p.Instances.Kind == Skip && p.Materials.Kind == Skip
}

// MakePlan compares st with the current contents of s.
func MakePlan(st State, s *scene.Scene) Plan {
	layout := s.LayoutVersion()
	changed := !st.Synced || layout != st.Layout

	var dirty []scene.InstanceID
	if !changed {
		dirty = s.DirtyInstances()
	}
	return Plan{
		Vertices:  PlanAppend(st.Vertices, st.VertexCapacity, len(s.Vertices())),
		Indices:   PlanAppend(st.Indices, st.IndexCapacity, len(s.Indices())),
		Instances: PlanSlots(st.InstanceCapacity, len(s.InstanceSlots()), changed, dirty),
		Materials: PlanSlots[scene.MaterialID](st.MaterialCapacity, len(s.Materials()), changed, nil),
		Layout:    layout,
	}
}

// Apply returns the state after p has been executed against s.
func (st State) Apply(p Plan, s *scene.Scene) State {
	return State{
		Vertices:         len(s.Vertices()),
		Indices:          len(s.Indices()),
		Instances:        len(s.InstanceSlots()),
		Materials:        len(s.Materials()),
		VertexCapacity:   p.Vertices.Capacity,
		IndexCapacity:    p.Indices.Capacity,
		InstanceCapacity: p.Instances.Capacity,
		MaterialCapacity: p.Materials.Capacity,
		Layout:           p.Layout,
		Synced:           true,
	}
}
