package ecsworld

import "unsafe"

// rawRow is one materialized query result: the matching entity id plus
// one raw byte view per requested component column.
type rawRow struct {
	Entity uint32
	cols   [][]byte
}

// RawQuery is the general N-component typed query path (N up to the
// 255-type namespace): for every chunk whose Definition contains every
// requested component, array, and include-tag (and none of the
// exclude-tags), it exposes (entity, []byte per component) for every
// row. Results are materialized into a contiguous buffer on Update();
// Next() walks that buffer. A RawQuery is valid only until the World's
// next structural change — Next() after a stale Update returns
// StaleQueryError.
//
// Query1..Query3 wrap RawQuery with compile-time-typed component
// pointers for the common low arities; callers needing more components
// use RawQuery directly and reinterpret each column themselves (see
// ComponentAt).
type RawQuery struct {
	world       *World
	components  []ComponentType
	arrayMask   Bitset
	includeTags Bitset
	excludeTags Bitset
	onlyEnabled bool

	rows    []rawRow
	version uint64
	cursor  int
	valid   bool
}

// NewRawQuery creates a query over the given component types.
func NewRawQuery(world *World, components ...ComponentType) *RawQuery {
	return &RawQuery{world: world, components: components}
}

// WithArrays restricts the query to Definitions containing every array
// element type in mask.
func (q *RawQuery) WithArrays(mask Bitset) *RawQuery { q.arrayMask = mask; return q }

// WithIncludeTags restricts the query to Definitions containing every
// tag in mask.
func (q *RawQuery) WithIncludeTags(mask Bitset) *RawQuery { q.includeTags = mask; return q }

// WithExcludeTags rejects Definitions containing any tag in mask.
func (q *RawQuery) WithExcludeTags(mask Bitset) *RawQuery { q.excludeTags = mask; return q }

// OnlyEnabled restricts results to entities whose effective state is
// Enabled.
func (q *RawQuery) OnlyEnabled(v bool) *RawQuery { q.onlyEnabled = v; return q }

func (q *RawQuery) componentMask() Bitset {
	return MaskOf(q.components...)
}

func (q *RawQuery) matches(def Definition) bool {
	if !def.Components.ContainsAll(q.componentMask()) {
		return false
	}
	if !def.Arrays.ContainsAll(q.arrayMask) {
		return false
	}
	if !def.Tags.ContainsAll(q.includeTags) {
		return false
	}
	if def.Tags.ContainsAny(q.excludeTags) {
		return false
	}
	return true
}

// Update (re)materializes the query's result buffer against the
// World's current state and resets the iteration cursor.
func (q *RawQuery) Update() error {
	q.rows = q.rows[:0]
	for _, def := range q.world.chunkOrder {
		if !q.matches(def) {
			continue
		}
		chunk := q.world.chunks[def]
		for row, id := range chunk.Entities() {
			if q.onlyEnabled && q.world.slots[id].state != StateEnabled {
				continue
			}
			cols := make([][]byte, len(q.components))
			for i, ct := range q.components {
				b, err := chunk.ComponentBytes(row, ct)
				if err != nil {
					return err
				}
				cols[i] = b
			}
			q.rows = append(q.rows, rawRow{Entity: id, cols: cols})
		}
	}
	q.version = q.world.version
	q.cursor = 0
	q.valid = true
	return nil
}

// Len returns the number of rows in the last materialized result.
func (q *RawQuery) Len() int { return len(q.rows) }

// Next advances to the next materialized row. It returns StaleQueryError
// if the World has undergone a structural change since Update.
func (q *RawQuery) Next() (entity uint32, cols [][]byte, ok bool, err error) {
	if !q.valid {
		return 0, nil, false, StaleQueryError{}
	}
	if q.version != q.world.version {
		return 0, nil, false, StaleQueryError{}
	}
	if q.cursor >= len(q.rows) {
		return 0, nil, false, nil
	}
	r := q.rows[q.cursor]
	q.cursor++
	return r.Entity, r.cols, true, nil
}

// ComponentAt reinterprets the i-th column of a Next() result as *T.
func ComponentAt[T any](cols [][]byte, i int) *T {
	return (*T)(unsafe.Pointer(unsafe.SliceData(cols[i])))
}

// Query1 is a one-component typed query convenience wrapper over RawQuery.
type Query1[T1 any] struct{ raw *RawQuery }

// NewQuery1 creates a Query1, registering T1 if necessary.
func NewQuery1[T1 any](w *World) (*Query1[T1], error) {
	c1, err := RegisterComponent[T1](w.schema)
	if err != nil {
		return nil, err
	}
	return &Query1[T1]{raw: NewRawQuery(w, c1)}, nil
}

// Raw exposes the underlying RawQuery for With*/OnlyEnabled configuration.
func (q *Query1[T1]) Raw() *RawQuery { return q.raw }

// Update materializes the query.
func (q *Query1[T1]) Update() error { return q.raw.Update() }

// Next returns the next (entity, *T1) pair.
func (q *Query1[T1]) Next() (uint32, *T1, bool, error) {
	e, cols, ok, err := q.raw.Next()
	if !ok || err != nil {
		return 0, nil, ok, err
	}
	return e, ComponentAt[T1](cols, 0), true, nil
}

// Query2 is a two-component typed query convenience wrapper over RawQuery.
type Query2[T1, T2 any] struct{ raw *RawQuery }

// NewQuery2 creates a Query2, registering T1/T2 if necessary.
func NewQuery2[T1, T2 any](w *World) (*Query2[T1, T2], error) {
	c1, err := RegisterComponent[T1](w.schema)
	if err != nil {
		return nil, err
	}
	c2, err := RegisterComponent[T2](w.schema)
	if err != nil {
		return nil, err
	}
	return &Query2[T1, T2]{raw: NewRawQuery(w, c1, c2)}, nil
}

// Raw exposes the underlying RawQuery for With*/OnlyEnabled configuration.
func (q *Query2[T1, T2]) Raw() *RawQuery { return q.raw }

// Update materializes the query.
func (q *Query2[T1, T2]) Update() error { return q.raw.Update() }

// Next returns the next (entity, *T1, *T2) tuple.
func (q *Query2[T1, T2]) Next() (uint32, *T1, *T2, bool, error) {
	e, cols, ok, err := q.raw.Next()
	if !ok || err != nil {
		return 0, nil, nil, ok, err
	}
	return e, ComponentAt[T1](cols, 0), ComponentAt[T2](cols, 1), true, nil
}

// Query3 is a three-component typed query convenience wrapper over RawQuery.
type Query3[T1, T2, T3 any] struct{ raw *RawQuery }

// NewQuery3 creates a Query3, registering T1/T2/T3 if necessary.
func NewQuery3[T1, T2, T3 any](w *World) (*Query3[T1, T2, T3], error) {
	c1, err := RegisterComponent[T1](w.schema)
	if err != nil {
		return nil, err
	}
	c2, err := RegisterComponent[T2](w.schema)
	if err != nil {
		return nil, err
	}
	c3, err := RegisterComponent[T3](w.schema)
	if err != nil {
		return nil, err
	}
	return &Query3[T1, T2, T3]{raw: NewRawQuery(w, c1, c2, c3)}, nil
}

// Raw exposes the underlying RawQuery for With*/OnlyEnabled configuration.
func (q *Query3[T1, T2, T3]) Raw() *RawQuery { return q.raw }

// Update materializes the query.
func (q *Query3[T1, T2, T3]) Update() error { return q.raw.Update() }

// Next returns the next (entity, *T1, *T2, *T3) tuple.
func (q *Query3[T1, T2, T3]) Next() (uint32, *T1, *T2, *T3, bool, error) {
	e, cols, ok, err := q.raw.Next()
	if !ok || err != nil {
		return 0, nil, nil, nil, ok, err
	}
	return e, ComponentAt[T1](cols, 0), ComponentAt[T2](cols, 1), ComponentAt[T3](cols, 2), true, nil
}
