// Package meta provides the shared metadata table that pass components use
// to exchange per-view state and published outputs.
//
// The table maps string keys to typed boxes. Fetching an unset key inserts
// a box holding the zero value, and callers mutate the value through the
// returned pointer:
//
//	res := meta.Get[image.Point](table, meta.KeyResolution)
//	res.Value = image.Pt(1920, 1080)
//
// A Table is NOT safe for concurrent use.
package meta

import (
	"fmt"
	"slices"
)

// Well-known keys published by the renderer before each plan execution.
const (
	// KeyResolution holds the current view resolution as an image.Point.
	KeyResolution = "resolution"

	// KeyViewport holds the current viewport as an image.Rectangle.
	KeyViewport = "viewport"

	// KeyViewName holds the name of the view being rendered.
	KeyViewName = "view_name"

	// KeyCamera holds the current camera (render.Camera).
	KeyCamera = "camera"

	// KeyFrame holds the frame counter as a uint64.
	KeyFrame = "frame"

	// KeyElapsed holds the time since the previous frame as a time.Duration.
	KeyElapsed = "elapsed"
)

// Reserved reports whether key is one of the well-known keys the renderer
// publishes. Components must not declare resources under these names.
func Reserved(key string) bool {
	switch key {
	case KeyResolution, KeyViewport, KeyViewName, KeyCamera, KeyFrame, KeyElapsed:
		return true
	}
	return false
}

// Box holds a single mutable value in a Table.
type Box[T any] struct {
	Value T
}

// Table is a string-keyed collection of typed boxes.
type Table struct {
	boxes map[string]any
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{boxes: make(map[string]any)}
}

// Get returns the box stored under key, inserting a zero-valued box if
// the key is unset.
//
// Get panics if key already holds a box of a different type. Keys are
// fixed by the components that declare them, so a conflict is always a
// programming error.
func Get[T any](t *Table, key string) *Box[T] {
	if existing, ok := t.boxes[key]; ok {
		b, ok := existing.(*Box[T])
		if !ok {
			panic(fmt.Sprintf("meta: key %q holds %T, requested %T", key, existing, (*Box[T])(nil)))
		}
		return b
	}
	b := &Box[T]{}
	t.boxes[key] = b
	return b
}

// Lookup returns the box stored under key without inserting one.
// It reports false if the key is unset or holds a different type.
func Lookup[T any](t *Table, key string) (*Box[T], bool) {
	b, ok := t.boxes[key].(*Box[T])
	return b, ok
}

// Set stores value under key, creating the box if needed.
func Set[T any](t *Table, key string, value T) {
	Get[T](t, key).Value = value
}

// Has reports whether key is set.
func (t *Table) Has(key string) bool {
	_, ok := t.boxes[key]
	return ok
}

// Delete removes key from the table.
func (t *Table) Delete(key string) {
	delete(t.boxes, key)
}

// Keys returns all keys in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.boxes))
	for k := range t.boxes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of keys.
func (t *Table) Len() int {
	return len(t.boxes)
}
