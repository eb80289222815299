package relation

import (
	"fmt"
	"reflect"

	"github.com/satishbabariya/ormcore/internal/convert"
)

// Slot is the type-erased view of a *Cell. The row decoder and the insert cascade use it to
// drive cells of any instantiation through reflection.
type Slot interface {
	State() State
	// RelatedType is the type of the related record, T.
	RelatedType() reflect.Type
	// IDValue returns the related identifier as an interface value.
	IDValue() any
	// SetID resets the cell to Unloaded with an identifier converted from a column value.
	SetID(src any) error
	// LoadValue sets the cell Loaded from a value of the related type.
	LoadValue(v reflect.Value) error
	// TakePending extracts the pending value, leaving the cell Unloaded.
	TakePending() (reflect.Value, bool)
	// RestorePending puts a value taken by TakePending back.
	RestorePending(v reflect.Value) error
}

var slotType = reflect.TypeOf((*Slot)(nil)).Elem()

// IsSlot reports whether a struct field of type t is a Cell.
func IsSlot(t reflect.Type) bool {
	return reflect.PointerTo(t).Implements(slotType)
}

// AsSlot returns the Slot for an addressable Cell value.
func AsSlot(v reflect.Value) (Slot, bool) {
	if !v.CanAddr() {
		return nil, false
	}
	s, ok := v.Addr().Interface().(Slot)
	return s, ok
}

// RelatedType implements Slot.
func (c *Cell[K, T]) RelatedType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IDValue implements Slot.
func (c *Cell[K, T]) IDValue() any {
	return c.ID()
}

// SetID implements Slot.
func (c *Cell[K, T]) SetID(src any) error {
	var id K
	if err := convert.Assign(reflect.ValueOf(&id).Elem(), src); err != nil {
		return fmt.Errorf("relation key: %w", err)
	}
	*c = Unloaded[K, T](id)
	return nil
}

// LoadValue implements Slot.
func (c *Cell[K, T]) LoadValue(v reflect.Value) error {
	value, err := unwrap[K, T](v)
	if err != nil {
		return err
	}
	c.Load(value)
	return nil
}

// TakePending implements Slot.
func (c *Cell[K, T]) TakePending() (reflect.Value, bool) {
	v, ok := c.ExtractPending()
	if !ok {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(&v).Elem(), true
}

// RestorePending implements Slot.
func (c *Cell[K, T]) RestorePending(v reflect.Value) error {
	value, err := unwrap[K, T](v)
	if err != nil {
		return err
	}
	c.Set(value)
	return nil
}

func unwrap[K comparable, T Identifiable[K]](v reflect.Value) (T, error) {
	var zero T
	if v.Kind() == reflect.Ptr && v.Type().Elem() == reflect.TypeOf((*T)(nil)).Elem() {
		v = v.Elem()
	}
	value, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("relation expects %T, got %s", zero, v.Type())
	}
	return value, nil
}
