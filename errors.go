package ecsworld

import "fmt"

// NoSuchEntityError is returned when an operation targets an entity id
// that is out of range or whose slot is Free.
type NoSuchEntityError struct {
	Entity uint32
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("ecsworld: no such entity %d", e.Entity)
}

// ComponentAlreadyPresentError is returned by AddComponent when the
// entity already carries the component.
type ComponentAlreadyPresentError struct {
	Entity    uint32
	Component ComponentType
}

func (e ComponentAlreadyPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d already has component %d", e.Entity, e.Component)
}

// ComponentNotPresentError is returned by RemoveComponent/GetComponent
// when the entity does not carry the component.
type ComponentNotPresentError struct {
	Entity    uint32
	Component ComponentType
}

func (e ComponentNotPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d has no component %d", e.Entity, e.Component)
}

// ArrayAlreadyPresentError is returned by CreateArray when the entity
// already has an array of that element type.
type ArrayAlreadyPresentError struct {
	Entity uint32
	Array  ArrayElementType
}

func (e ArrayAlreadyPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d already has array %d", e.Entity, e.Array)
}

// ArrayNotPresentError is returned when an array operation targets an
// array element type the entity does not carry.
type ArrayNotPresentError struct {
	Entity uint32
	Array  ArrayElementType
}

func (e ArrayNotPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d has no array %d", e.Entity, e.Array)
}

// TagAlreadyPresentError is returned by AddTag when the entity already
// carries the tag.
type TagAlreadyPresentError struct {
	Entity uint32
	Tag    TagType
}

func (e TagAlreadyPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d already has tag %d", e.Entity, e.Tag)
}

// TagNotPresentError is returned by RemoveTag when the entity does not
// carry the tag.
type TagNotPresentError struct {
	Entity uint32
	Tag    TagType
}

func (e TagNotPresentError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d has no tag %d", e.Entity, e.Tag)
}

// NotRegisteredError is returned by a type lookup against a Schema for
// a Go type that was never registered.
type NotRegisteredError struct {
	TypeName string
}

func (e NotRegisteredError) Error() string {
	return fmt.Sprintf("ecsworld: type %s is not registered", e.TypeName)
}

// ReferenceOutOfRangeError is returned when an rint is zero or beyond
// an entity's reference list.
type ReferenceOutOfRangeError struct {
	Entity uint32
	Rint   uint32
}

func (e ReferenceOutOfRangeError) Error() string {
	return fmt.Sprintf("ecsworld: entity %d has no reference %d", e.Entity, e.Rint)
}

// OutOfRangeError is returned for a bitset index >= 255 or an array
// index beyond an array's length.
type OutOfRangeError struct {
	Index int
	Bound int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("ecsworld: index %d out of range (bound %d)", e.Index, e.Bound)
}

// EmptySelectionError is returned during Operation replay when an
// instruction that requires a non-empty selection finds none.
type EmptySelectionError struct{}

func (e EmptySelectionError) Error() string {
	return "ecsworld: operation replay requires a non-empty selection"
}

// StaleQueryError is returned when a materialized query is read after
// the World it was built against has undergone a structural mutation.
type StaleQueryError struct{}

func (e StaleQueryError) Error() string {
	return "ecsworld: query is stale, world changed since last Update"
}

// SchemaMismatchError is returned during deserialization when the
// target Schema does not cover a type present in the stream.
type SchemaMismatchError struct {
	TypeName string
	Kind     TypeKind
}

func (e SchemaMismatchError) Error() string {
	return fmt.Sprintf("ecsworld: schema does not cover %s %q found in stream", e.Kind, e.TypeName)
}

// CycleDetectedError is returned by SetParent when the requested
// parent is a descendant of the entity, which would create a cycle in
// the parent/child forest.
type CycleDetectedError struct {
	Entity uint32
	Parent uint32
}

func (e CycleDetectedError) Error() string {
	return fmt.Sprintf("ecsworld: setting parent of %d to %d would create a cycle", e.Entity, e.Parent)
}
