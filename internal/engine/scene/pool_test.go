package scene

import (
	"slices"
	"testing"
)

func TestPoolLIFOReuse(t *testing.T) {
	var p pool[string]
	for i := 0; i < 5; i++ {
		if got := p.alloc("x"); got != uint32(i) {
			t.Fatalf("alloc #%d = %d, want %d", i, got, i)
		}
	}

	for _, id := range []uint32{1, 3, 4} {
		if !p.release(id) {
			t.Fatalf("release(%d) failed", id)
		}
	}

	// Freed ids come back newest first, then the arena grows.
	want := []uint32{4, 3, 1, 5, 6}
	for i, w := range want {
		if next := p.nextID(); next != w {
			t.Errorf("step %d: nextID = %d, want %d", i, next, w)
		}
		if got := p.alloc("y"); got != w {
			t.Errorf("step %d: alloc = %d, want %d", i, got, w)
		}
	}
	if p.count != 7 {
		t.Errorf("count = %d, want 7", p.count)
	}
}

func TestPoolReleaseRejectsDeadIDs(t *testing.T) {
	var p pool[int]
	id := p.alloc(7)

	if p.release(99) {
		t.Error("release of never-issued id should fail")
	}
	if !p.release(id) {
		t.Fatal("first release should succeed")
	}
	if p.release(id) {
		t.Error("double release should fail")
	}
	if len(p.free) != 1 {
		t.Errorf("free stack should hold the id once, got %v", p.free)
	}
	if _, ok := p.get(id); ok {
		t.Error("get on released id should fail")
	}
	if p.ptr(id) != nil {
		t.Error("ptr on released id should be nil")
	}
}

func TestPoolIDs(t *testing.T) {
	var p pool[int]
	for i := 0; i < 4; i++ {
		p.alloc(i)
	}
	p.release(2)
	p.release(0)

	if got := p.ids(); !slices.Equal(got, []uint32{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", got)
	}
}
