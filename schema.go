package ecsworld

import (
	"fmt"
	"reflect"
)

// TypeKind distinguishes the three independent type namespaces a
// Schema assigns indices in.
type TypeKind uint8

const (
	KindComponent TypeKind = iota
	KindArrayElement
	KindTag
)

func (k TypeKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindArrayElement:
		return "array element"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// ComponentType is a dense, stable index into a Schema's component
// namespace.
type ComponentType uint8

// ArrayElementType is a dense, stable index into a Schema's
// array-element namespace.
type ArrayElementType uint8

// TagType is a dense, stable index into a Schema's tag namespace.
type TagType uint8

// FieldLayout describes one field of a registered type's optional
// layout, consumed by the serializer.
type FieldLayout struct {
	Name   string
	Offset uint16
	Size   uint16
}

type typeRecord struct {
	kind    TypeKind
	index   uint8
	size    uint16
	name    string
	layout  []FieldLayout
	goType  reflect.Type
}

// disabledMarkerType is the Go type under which the reserved "Disabled"
// tag is registered at Schema construction. World does not add this tag
// to entities; enabled state is tracked in each entity slot only.
var disabledMarkerType = reflect.TypeOf(struct{ ecsworldDisabledMarker byte }{})

// Schema is the registry that assigns a stable dense index to each
// component, array-element, and tag type. Registration is idempotent:
// registering the same Go type twice returns the same index, and a
// mismatched layout on re-registration is rejected.
//
// A Schema may be shared read-only by multiple Worlds; registering a
// new type mutates it and must happen before any attached World is
// mutated. Schema does no locking of its own.
type Schema struct {
	byGoType map[reflect.Type]*typeRecord

	components []*typeRecord
	arrays     []*typeRecord
	tags       []*typeRecord

	disabledTag TagType
}

// NewSchema creates a Schema with the reserved Disabled tag already
// registered at tag index 0.
func NewSchema() *Schema {
	s := &Schema{
		byGoType: make(map[reflect.Type]*typeRecord),
	}
	rec := &typeRecord{kind: KindTag, index: 0, goType: disabledMarkerType, name: "Disabled"}
	s.tags = append(s.tags, rec)
	s.byGoType[disabledMarkerType] = rec
	s.disabledTag = TagType(0)
	return s
}

// DisabledTag returns the reserved Disabled tag index (always 0).
// SetEnabled and SetParent do not add or remove this tag; an entity's
// enabled state does not affect its Definition.
func (s *Schema) DisabledTag() TagType {
	return s.disabledTag
}

func layoutsEqual(a, b []FieldLayout) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Schema) register(kind TypeKind, t reflect.Type, size uint16, layout []FieldLayout) (*typeRecord, error) {
	if rec, ok := s.byGoType[t]; ok {
		if rec.kind != kind {
			return nil, fmt.Errorf("ecsworld: type %s already registered as %s, cannot re-register as %s", t, rec.kind, kind)
		}
		if rec.size != size || !layoutsEqual(rec.layout, layout) {
			return nil, fmt.Errorf("ecsworld: type %s re-registered with mismatched size/layout", t)
		}
		return rec, nil
	}

	var list *[]*typeRecord
	switch kind {
	case KindComponent:
		list = &s.components
	case KindArrayElement:
		list = &s.arrays
	case KindTag:
		list = &s.tags
	}
	if len(*list) > 254 {
		return nil, fmt.Errorf("ecsworld: %s namespace exhausted (255 types max)", kind)
	}

	rec := &typeRecord{
		kind:   kind,
		index:  uint8(len(*list)),
		size:   size,
		name:   t.String(),
		layout: layout,
		goType: t,
	}
	*list = append(*list, rec)
	s.byGoType[t] = rec
	return rec, nil
}

// RegisterComponent registers T as a component type, deriving its size
// from unsafe.Sizeof. Re-registration is idempotent by Go type.
func RegisterComponent[T any](s *Schema, layout ...FieldLayout) (ComponentType, error) {
	var zero T
	size := sizeOf(zero)
	rec, err := s.register(KindComponent, reflect.TypeOf(zero), size, layout)
	if err != nil {
		return 0, err
	}
	return ComponentType(rec.index), nil
}

// RegisterArrayElement registers T as an array-element type.
func RegisterArrayElement[T any](s *Schema, layout ...FieldLayout) (ArrayElementType, error) {
	var zero T
	size := sizeOf(zero)
	rec, err := s.register(KindArrayElement, reflect.TypeOf(zero), size, layout)
	if err != nil {
		return 0, err
	}
	return ArrayElementType(rec.index), nil
}

// RegisterTag registers T as a zero-byte tag type.
func RegisterTag[T any](s *Schema) (TagType, error) {
	var zero T
	rec, err := s.register(KindTag, reflect.TypeOf(zero), 0, nil)
	if err != nil {
		return 0, err
	}
	return TagType(rec.index), nil
}

// ComponentTypeOf looks up the ComponentType assigned to T.
func ComponentTypeOf[T any](s *Schema) (ComponentType, error) {
	var zero T
	t := reflect.TypeOf(zero)
	rec, ok := s.byGoType[t]
	if !ok || rec.kind != KindComponent {
		return 0, NotRegisteredError{TypeName: t.String()}
	}
	return ComponentType(rec.index), nil
}

// ArrayElementTypeOf looks up the ArrayElementType assigned to T.
func ArrayElementTypeOf[T any](s *Schema) (ArrayElementType, error) {
	var zero T
	t := reflect.TypeOf(zero)
	rec, ok := s.byGoType[t]
	if !ok || rec.kind != KindArrayElement {
		return 0, NotRegisteredError{TypeName: t.String()}
	}
	return ArrayElementType(rec.index), nil
}

// TagTypeOf looks up the TagType assigned to T.
func TagTypeOf[T any](s *Schema) (TagType, error) {
	var zero T
	t := reflect.TypeOf(zero)
	rec, ok := s.byGoType[t]
	if !ok || rec.kind != KindTag {
		return 0, NotRegisteredError{TypeName: t.String()}
	}
	return TagType(rec.index), nil
}

// SizeOf returns the byte size of a registered component.
func (s *Schema) SizeOf(c ComponentType) (uint16, error) {
	if int(c) >= len(s.components) {
		return 0, NotRegisteredError{TypeName: fmt.Sprintf("component#%d", c)}
	}
	return s.components[c].size, nil
}

// ArrayElementSize returns the byte size of a registered array element.
func (s *Schema) ArrayElementSize(a ArrayElementType) (uint16, error) {
	if int(a) >= len(s.arrays) {
		return 0, NotRegisteredError{TypeName: fmt.Sprintf("array#%d", a)}
	}
	return s.arrays[a].size, nil
}

// LayoutOf returns the optional field layout of a registered component.
func (s *Schema) LayoutOf(c ComponentType) ([]FieldLayout, bool) {
	if int(c) >= len(s.components) {
		return nil, false
	}
	l := s.components[c].layout
	return l, l != nil
}

// ComponentCount returns the number of registered component types.
func (s *Schema) ComponentCount() int { return len(s.components) }

// ArrayElementCount returns the number of registered array-element types.
func (s *Schema) ArrayElementCount() int { return len(s.arrays) }

// TagCount returns the number of registered tag types.
func (s *Schema) TagCount() int { return len(s.tags) }

func sizeOfReflect(t reflect.Type) uint16 {
	return uint16(t.Size())
}

func sizeOf[T any](zero T) uint16 {
	return sizeOfReflect(reflect.TypeOf(zero))
}
