package ecsworld

// Chunk is the storage for every entity sharing one Definition: a
// dense ordered list of entity ids plus one column buffer per
// component type in the Definition's component mask. Column c has
// exactly len(entities) logical elements of size(c) bytes at all
// times; that invariant is preserved across AddEntity, RemoveEntity,
// and MoveEntity.
type Chunk struct {
	definition Definition
	schema     *Schema
	entities   []uint32
	columns    map[ComponentType][]byte
	compOrder  []ComponentType // ascending, matches definition.Components iteration order
}

func newChunk(def Definition, schema *Schema) *Chunk {
	c := &Chunk{
		definition: def,
		schema:     schema,
		columns:    make(map[ComponentType][]byte),
	}
	for bit := range def.Components.Iterate() {
		ct := ComponentType(bit)
		c.columns[ct] = nil
		c.compOrder = append(c.compOrder, ct)
	}
	return c
}

// Definition returns the Definition this chunk stores.
func (c *Chunk) Definition() Definition { return c.definition }

// Len returns the number of entities currently stored in the chunk.
func (c *Chunk) Len() int { return len(c.entities) }

// Entities returns the dense, storage-order list of entity ids. The
// slice is owned by the chunk and must not be mutated by callers.
func (c *Chunk) Entities() []uint32 { return c.entities }

// ContainsAllTypes reports whether the chunk's component mask contains
// every bit set in mask.
func (c *Chunk) ContainsAllTypes(mask Bitset) bool {
	return c.definition.Components.ContainsAll(mask)
}

func (c *Chunk) componentSize(ct ComponentType) int {
	size, err := c.schema.SizeOf(ct)
	if err != nil {
		return 0
	}
	return int(size)
}

// growColumn appends n zeroed bytes to col, reserving extra capacity in
// Config.chunkCapacityIncrement-sized steps when a reallocation is
// needed so repeated single-row appends don't reallocate every call.
func growColumn(col []byte, n int) []byte {
	if n == 0 {
		return col
	}
	need := len(col) + n
	if need <= cap(col) {
		return col[:need]
	}
	step := Config.chunkCapacityIncrement * n
	grown := make([]byte, len(col), need+step)
	copy(grown, col)
	return grown[:need]
}

// AddEntity appends id to the chunk and grows every column by one
// zeroed element, returning the new row.
func (c *Chunk) AddEntity(id uint32) int {
	row := len(c.entities)
	c.entities = append(c.entities, id)
	for _, ct := range c.compOrder {
		size := c.componentSize(ct)
		col := growColumn(c.columns[ct], size)
		clear(col[len(col)-size:])
		c.columns[ct] = col
	}
	return row
}

// RemoveEntity swap-removes the entity at row: the last row's bytes
// are copied into the vacated slot, and every column (plus the entity
// list) is truncated by one element. It returns the id that moved
// into the vacated row, and false if the removed row was already last
// (nothing moved).
func (c *Chunk) RemoveEntity(row int) (movedID uint32, moved bool) {
	last := len(c.entities) - 1
	if row < 0 || row > last {
		return 0, false
	}
	if row != last {
		movedID = c.entities[last]
		c.entities[row] = movedID
		for _, ct := range c.compOrder {
			size := c.componentSize(ct)
			if size == 0 {
				continue
			}
			col := c.columns[ct]
			copy(col[row*size:row*size+size], col[last*size:last*size+size])
		}
		moved = true
	}
	c.entities = c.entities[:last]
	for _, ct := range c.compOrder {
		size := c.componentSize(ct)
		c.columns[ct] = c.columns[ct][:last*size]
	}
	return movedID, moved
}

// MoveEntity copies the bytes of every component present in both c and
// dest from row in c to a newly-appended row in dest, then
// swap-removes row from c. Components present only in c are dropped;
// components present only in dest are left zero-initialized. It
// returns the destination row and whatever RemoveEntity reports for
// the source chunk.
func (c *Chunk) MoveEntity(row int, dest *Chunk) (destRow int, movedID uint32, moved bool) {
	id := c.entities[row]
	destRow = dest.AddEntity(id)
	for _, ct := range c.compOrder {
		size := c.componentSize(ct)
		if size == 0 {
			continue
		}
		if _, ok := dest.columns[ct]; !ok {
			continue
		}
		srcBytes := c.columns[ct][row*size : row*size+size]
		dstBytes := dest.columns[ct][destRow*size : destRow*size+size]
		copy(dstBytes, srcBytes)
	}
	movedID, moved = c.RemoveEntity(row)
	return destRow, movedID, moved
}

// ComponentBytes returns a mutable view of the size(c)-byte slot for
// component ct at row. Returns ComponentNotPresentError if ct is not
// in this chunk's Definition.
func (c *Chunk) ComponentBytes(row int, ct ComponentType) ([]byte, error) {
	col, ok := c.columns[ct]
	if !ok {
		return nil, ComponentNotPresentError{Component: ct}
	}
	size := c.componentSize(ct)
	if size == 0 {
		return col[:0], nil
	}
	if row < 0 || row*size+size > len(col) {
		return nil, OutOfRangeError{Index: row, Bound: len(c.entities)}
	}
	return col[row*size : row*size+size], nil
}
