// Package handle implements a generational slot arena. A Handle
// stays valid only as long as the entity it was issued for: removing
// the entity bumps the slot's generation, so stale handles held
// elsewhere fail to resolve instead of reaching a recycled slot.
package handle

// Handle names an entity in an Arena. The zero Handle never resolves.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns the handle that names it.
func (a *Arena[T]) Insert(v T) Handle {
	a.count++

	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[i]
		s.live = true
		s.value = v
		return Handle{index: i, gen: s.gen}
	}

	a.slots = append(a.slots, slot[T]{gen: 1, live: true, value: v})
	return Handle{index: uint32(len(a.slots) - 1), gen: 1}
}

// Get resolves h, reporting whether it still names a live entity.
func (a *Arena[T]) Get(h Handle) (v T, ok bool) {
	if int(h.index) >= len(a.slots) {
		return v, false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return v, false
	}
	return s.value, true
}

// Remove frees the slot named by h. Handles equal to h stop
// resolving immediately.
func (a *Arena[T]) Remove(h Handle) bool {
	if int(h.index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.index]
	if !s.live || s.gen != h.gen {
		return false
	}

	var zero T
	s.value = zero
	s.live = false
	s.gen++
	a.free = append(a.free, h.index)
	a.count--
	return true
}

func (a *Arena[T]) Len() int {
	return a.count
}

// All returns the live entities in slot order.
func (a *Arena[T]) All() []T {
	out := make([]T, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, a.slots[i].value)
		}
	}
	return out
}

// Handles returns the handles of the live entities in slot order.
func (a *Arena[T]) Handles() []Handle {
	out := make([]Handle, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, Handle{index: uint32(i), gen: a.slots[i].gen})
		}
	}
	return out
}
