package ecsworld

// Definition is the triple of Bitset-256 masks that identifies a
// Chunk's exact column layout: which components, array elements, and
// tags its entities carry. Equality is structural over the three
// masks.
type Definition struct {
	Components Bitset
	Arrays     Bitset
	Tags       Bitset
}

// Equal reports structural equality over all three masks.
func (d Definition) Equal(other Definition) bool {
	return d.Components.Equal(other.Components) &&
		d.Arrays.Equal(other.Arrays) &&
		d.Tags.Equal(other.Tags)
}

// ContainsAll reports whether d's masks each contain the corresponding
// mask of sub.
func (d Definition) ContainsAll(sub Definition) bool {
	return d.Components.ContainsAll(sub.Components) &&
		d.Arrays.ContainsAll(sub.Arrays) &&
		d.Tags.ContainsAll(sub.Tags)
}

// WithComponent returns a copy of d with component bit c set.
func (d Definition) WithComponent(c ComponentType) Definition {
	d.Components.Set(uint8(c))
	return d
}

// WithoutComponent returns a copy of d with component bit c cleared.
func (d Definition) WithoutComponent(c ComponentType) Definition {
	d.Components.Clear(uint8(c))
	return d
}

// WithArray returns a copy of d with array-element bit a set.
func (d Definition) WithArray(a ArrayElementType) Definition {
	d.Arrays.Set(uint8(a))
	return d
}

// WithoutArray returns a copy of d with array-element bit a cleared.
func (d Definition) WithoutArray(a ArrayElementType) Definition {
	d.Arrays.Clear(uint8(a))
	return d
}

// WithTag returns a copy of d with tag bit t set.
func (d Definition) WithTag(t TagType) Definition {
	d.Tags.Set(uint8(t))
	return d
}

// WithoutTag returns a copy of d with tag bit t cleared.
func (d Definition) WithoutTag(t TagType) Definition {
	d.Tags.Clear(uint8(t))
	return d
}

// HasComponent reports whether d's component mask contains c.
func (d Definition) HasComponent(c ComponentType) bool {
	ok, _ := d.Components.Contains(uint8(c))
	return ok
}

// HasArray reports whether d's array mask contains a.
func (d Definition) HasArray(a ArrayElementType) bool {
	ok, _ := d.Arrays.Contains(uint8(a))
	return ok
}

// HasTag reports whether d's tag mask contains t.
func (d Definition) HasTag(t TagType) bool {
	ok, _ := d.Tags.Contains(uint8(t))
	return ok
}

// Archetype bundles a Definition with the Schema that assigned its
// type indices, identifying a concrete column layout.
type Archetype struct {
	Definition Definition
	Schema     *Schema
}

// Describer is implemented by a user type that declares its own
// Archetype by contributing component/array/tag sets to a builder.
type Describer interface {
	Describe(b *ArchetypeBuilder)
}

// ArchetypeBuilder incrementally assembles a Definition against a
// Schema. It is the Go stand-in for the describe-polymorphism pattern:
// a user type's Describe method mutates a builder rather than
// returning a value directly, since the builder also owns schema
// registration.
type ArchetypeBuilder struct {
	def    Definition
	schema *Schema
}

// NewArchetypeBuilder creates an empty builder against schema.
func NewArchetypeBuilder(schema *Schema) *ArchetypeBuilder {
	return &ArchetypeBuilder{schema: schema}
}

// WithComponent registers T (if needed) and adds it to the builder's
// component set.
func WithComponent[T any](b *ArchetypeBuilder) *ArchetypeBuilder {
	ct, err := RegisterComponent[T](b.schema)
	if err != nil {
		panic(err)
	}
	b.def.Components.Set(uint8(ct))
	return b
}

// WithArray registers T (if needed) and adds it to the builder's
// array-element set.
func WithArray[T any](b *ArchetypeBuilder) *ArchetypeBuilder {
	at, err := RegisterArrayElement[T](b.schema)
	if err != nil {
		panic(err)
	}
	b.def.Arrays.Set(uint8(at))
	return b
}

// WithTag registers T (if needed) and adds it to the builder's tag set.
func WithTag[T any](b *ArchetypeBuilder) *ArchetypeBuilder {
	tt, err := RegisterTag[T](b.schema)
	if err != nil {
		panic(err)
	}
	b.def.Tags.Set(uint8(tt))
	return b
}

// Build finalizes the builder into an Archetype.
func (b *ArchetypeBuilder) Build() Archetype {
	return Archetype{Definition: b.def, Schema: b.schema}
}

// Describe runs every Describer against a fresh builder and returns
// the resulting Archetype. This is the "Get<T1..Tn>(schema)" variadic
// entry point described in the design notes, generalized to a slice of
// describers instead of per-arity generated overloads.
func Describe(schema *Schema, describers ...Describer) Archetype {
	b := NewArchetypeBuilder(schema)
	for _, d := range describers {
		d.Describe(b)
	}
	return b.Build()
}

// MaskOf builds a component Bitset out of one or more ComponentType
// values, a small convenience for constructing query masks.
func MaskOf(types ...ComponentType) Bitset {
	var m Bitset
	for _, t := range types {
		m.Set(uint8(t))
	}
	return m
}

// ArrayMaskOf builds an array-element Bitset out of one or more
// ArrayElementType values.
func ArrayMaskOf(types ...ArrayElementType) Bitset {
	var m Bitset
	for _, t := range types {
		m.Set(uint8(t))
	}
	return m
}

// TagMaskOf builds a tag Bitset out of one or more TagType values.
func TagMaskOf(types ...TagType) Bitset {
	var m Bitset
	for _, t := range types {
		m.Set(uint8(t))
	}
	return m
}
