package scene

// pool is a dense arena with a LIFO free-id stack. Slots are never
// compacted, so an id stays valid until it is released.
type pool[T any] struct {
	items []T
	live  []bool
	free  []uint32
	count int
}

// alloc stores v and returns its id, reusing the most recently freed id
// before growing.
func (p *pool[T]) alloc(v T) uint32 {
	p.count++
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		p.items[id] = v
		p.live[id] = true
		return id
	}
	p.items = append(p.items, v)
	p.live = append(p.live, true)
	return uint32(len(p.items) - 1)
}

func (p *pool[T]) alive(id uint32) bool {
	return int(id) < len(p.live) && p.live[id]
}

// release pushes id onto the free stack. The slot contents are left as is.
func (p *pool[T]) release(id uint32) bool {
	if !p.alive(id) {
		return false
	}
	p.live[id] = false
	p.free = append(p.free, id)
	p.count--
	return true
}

func (p *pool[T]) get(id uint32) (T, bool) {
	if !p.alive(id) {
		var zero T
		return zero, false
	}
	return p.items[id], true
}

func (p *pool[T]) ptr(id uint32) *T {
	if !p.alive(id) {
		return nil
	}
	return &p.items[id]
}

// ids returns live ids in ascending order.
func (p *pool[T]) ids() []uint32 {
	out := make([]uint32, 0, p.count)
	for id, ok := range p.live {
		if ok {
			out = append(out, uint32(id))
		}
	}
	return out
}

// nextID reports the id the next alloc will return.
func (p *pool[T]) nextID() uint32 {
	if n := len(p.free); n > 0 {
		return p.free[n-1]
	}
	return uint32(len(p.items))
}
