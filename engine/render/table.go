package render

import (
	"fmt"

	"github.com/hubastard/arbor/engine/draw"
)

// Table issues logical handles for backend resources. Handles come from a
// single counter and are never reused, so a released handle can never alias
// a newer resource.
type Table[T any] struct {
	last  draw.Handle
	items map[draw.Handle]T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{items: make(map[draw.Handle]T)}
}

func (t *Table[T]) Issue(v T) draw.Handle {
	t.last++
	t.items[t.last] = v
	return t.last
}

func (t *Table[T]) Get(h draw.Handle) (T, bool) {
	v, ok := t.items[h]
	return v, ok
}

// Release removes h. Releasing an unknown handle, or the same handle twice,
// returns ErrUnknownHandle.
func (t *Table[T]) Release(h draw.Handle) (T, error) {
	v, ok := t.items[h]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrUnknownHandle, h)
	}
	delete(t.items, h)
	return v, nil
}

func (t *Table[T]) Len() int { return len(t.items) }

// Each calls fn for every live handle, in no particular order.
func (t *Table[T]) Each(fn func(h draw.Handle, v T)) {
	for h, v := range t.items {
		fn(h, v)
	}
}
