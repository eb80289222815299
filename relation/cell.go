// Package relation implements the per-relation cell an owning record holds for each
// many-to-one relation.
//
// A Cell always knows the identifier of the related record. Its payload is in exactly one of
// three states:
//
//   - Unloaded: only the identifier is known.
//   - Loaded: the related record was read from the database.
//   - Pending: the related record was supplied or modified by the caller and has not been
//     written yet.
//
// Only a successful insert cascade moves a cell from Pending to Loaded.
package relation

import (
	"fmt"

	"github.com/satishbabariya/ormcore/ormerr"
)

// Identifiable is implemented by records that expose their primary key.
type Identifiable[K comparable] interface {
	PrimaryKey() K
}

// State is the payload state of a cell.
type State uint8

const (
	StateUnloaded State = iota
	StateLoaded
	StatePending
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StatePending:
		return "pending"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Cell holds a many-to-one relation of type T keyed by K. The zero value is an Unloaded cell
// with the zero identifier. A Cell is not safe for concurrent use.
type Cell[K comparable, T Identifiable[K]] struct {
	id    K
	state State
	value T
}

// Unloaded returns a cell that knows only the related identifier.
func Unloaded[K comparable, T Identifiable[K]](id K) Cell[K, T] {
	return Cell[K, T]{id: id}
}

// Pending returns a cell holding a value that has not been written yet.
func Pending[K comparable, T Identifiable[K]](value T) Cell[K, T] {
	return Cell[K, T]{id: value.PrimaryKey(), state: StatePending, value: value}
}

// Loaded returns a cell holding a value read from the database.
func Loaded[K comparable, T Identifiable[K]](value T) Cell[K, T] {
	return Cell[K, T]{id: value.PrimaryKey(), state: StateLoaded, value: value}
}

// State returns the payload state.
func (c *Cell[K, T]) State() State { return c.state }

// IsLoaded reports whether the cell holds a value read from the database.
func (c *Cell[K, T]) IsLoaded() bool { return c.state == StateLoaded }

// IsPending reports whether the cell holds an unwritten value.
func (c *Cell[K, T]) IsPending() bool { return c.state == StatePending }

// IsUnloaded reports whether the cell holds only an identifier.
func (c *Cell[K, T]) IsUnloaded() bool { return c.state == StateUnloaded }

// ID returns the related identifier. When a value is held, its primary key is returned.
func (c *Cell[K, T]) ID() K {
	if c.state != StateUnloaded {
		return c.value.PrimaryKey()
	}
	return c.id
}

// Get returns the held value. It panics with an *ormerr.InvariantError when the cell is
// Unloaded; use Lookup to test first.
func (c *Cell[K, T]) Get() T {
	if c.state == StateUnloaded {
		panic(&ormerr.InvariantError{Msg: fmt.Sprintf("relation %v is not loaded", c.id)})
	}
	return c.value
}

// Lookup returns the held value and whether there was one.
func (c *Cell[K, T]) Lookup() (T, bool) {
	if c.state == StateUnloaded {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Mut returns a pointer to the held value for modification. A Loaded cell becomes Pending
// holding a copy of the loaded value. Mut panics on an Unloaded cell.
func (c *Cell[K, T]) Mut() *T {
	switch c.state {
	case StateUnloaded:
		panic(&ormerr.InvariantError{Msg: fmt.Sprintf("relation %v is not loaded and cannot be modified", c.id)})
	case StateLoaded:
		c.state = StatePending
	}
	return &c.value
}

// Set replaces the held value; the cell becomes Pending.
func (c *Cell[K, T]) Set(value T) {
	c.value = value
	c.id = value.PrimaryKey()
	c.state = StatePending
}

// ExtractPending takes the pending value out of the cell, leaving it Unloaded with the same
// identifier. It reports false, without changing the cell, when the cell is not Pending.
func (c *Cell[K, T]) ExtractPending() (T, bool) {
	var zero T
	if c.state != StatePending {
		return zero, false
	}
	v := c.value
	c.id = v.PrimaryKey()
	c.value = zero
	c.state = StateUnloaded
	return v, true
}

// Load materializes a value read from the database; the cell becomes Loaded.
func (c *Cell[K, T]) Load(value T) {
	c.value = value
	c.id = value.PrimaryKey()
	c.state = StateLoaded
}

func (c *Cell[K, T]) String() string {
	return fmt.Sprintf("%s(%v)", c.state, c.ID())
}
