package ecsworld

// instruction is one opcode in an Operation's append-only stream,
// generalized to carry a replay-local selection cursor instead of
// acting on a single captured entity.
type instruction interface {
	apply(*replayState) error
}

// replayState is the mutable context threaded through an Operation's
// instructions during Apply: the target World, the current selection,
// and the ids created so far (consulted by SelectOffset).
type replayState struct {
	world     *World
	selection []uint32
	created   []uint32
}

func (r *replayState) requireSelection() error {
	if len(r.selection) == 0 {
		return EmptySelectionError{}
	}
	return nil
}

// Operation is an append-only instruction stream with a stateful
// selection cursor, built by chained Op* calls and later applied to a
// World in one pass. Heap-owned payload buffers (component/array
// bytes) are released by Dispose.
type Operation struct {
	instructions []instruction
	buffers      [][]byte
}

// NewOperation creates an empty Operation.
func NewOperation() *Operation {
	return &Operation{}
}

func (op *Operation) own(b []byte) []byte {
	op.buffers = append(op.buffers, b)
	return b
}

// CreateEntity appends an instruction creating n entities and adding
// their ids to the selection.
func (op *Operation) CreateEntity(n int) *Operation {
	op.instructions = append(op.instructions, opCreateEntity{n: n})
	return op
}

// DestroySelection appends an instruction destroying every currently
// selected entity and clearing the selection.
func (op *Operation) DestroySelection() *Operation {
	op.instructions = append(op.instructions, opDestroySelection{})
	return op
}

// DestroyRange appends an instruction destroying a [start, start+length)
// window of the selection.
func (op *Operation) DestroyRange(start, length int) *Operation {
	op.instructions = append(op.instructions, opDestroyRange{start: start, length: length})
	return op
}

// SelectEntity appends id to the selection.
func (op *Operation) SelectEntity(id uint32) *Operation {
	op.instructions = append(op.instructions, opSelectEntity{id: id})
	return op
}

// SelectOffset appends the k-th-last newly-created entity (0 = most
// recently created) to the selection.
func (op *Operation) SelectOffset(k int) *Operation {
	op.instructions = append(op.instructions, opSelectOffset{k: k})
	return op
}

// ClearSelection empties the selection.
func (op *Operation) ClearSelection() *Operation {
	op.instructions = append(op.instructions, opClearSelection{})
	return op
}

// SetParentID sets id as the parent of every selected entity.
func (op *Operation) SetParentID(id uint32) *Operation {
	op.instructions = append(op.instructions, opSetParentID{id: id})
	return op
}

// SetParentOffset resolves the parent as the k-th-last entity created
// during this replay (0 = most recently created) and sets it as the
// parent of every selected entity.
func (op *Operation) SetParentOffset(k int) *Operation {
	op.instructions = append(op.instructions, opSetParentOffset{k: k})
	return op
}

// AddReferenceID appends a reference to id on every selected entity.
func (op *Operation) AddReferenceID(id uint32) *Operation {
	op.instructions = append(op.instructions, opAddReferenceID{id: id})
	return op
}

// AddReferenceOffset appends a reference to the k-th-last entity
// created during this replay (0 = most recently created) on every
// selected entity.
func (op *Operation) AddReferenceOffset(k int) *Operation {
	op.instructions = append(op.instructions, opAddReferenceOffset{k: k})
	return op
}

// RemoveReference clears reference slot rint on every selected entity.
func (op *Operation) RemoveReference(rint uint32) *Operation {
	op.instructions = append(op.instructions, opRemoveReference{rint: rint})
	return op
}

// AddComponent appends an instruction adding ct with the given initial
// bytes to every selected entity. The Operation takes ownership of data.
func (op *Operation) AddComponent(ct ComponentType, data []byte) *Operation {
	op.instructions = append(op.instructions, opAddComponent{ct: ct, data: op.own(data)})
	return op
}

// SetComponent appends an instruction overwriting ct's bytes on every
// selected entity. The Operation takes ownership of data.
func (op *Operation) SetComponent(ct ComponentType, data []byte) *Operation {
	op.instructions = append(op.instructions, opSetComponent{ct: ct, data: op.own(data)})
	return op
}

// RemoveComponent appends an instruction removing ct from every
// selected entity.
func (op *Operation) RemoveComponent(ct ComponentType) *Operation {
	op.instructions = append(op.instructions, opRemoveComponent{ct: ct})
	return op
}

// CreateArray appends an instruction allocating a zero-initialized
// length-element array of at on every selected entity.
func (op *Operation) CreateArray(at ArrayElementType, length int) *Operation {
	op.instructions = append(op.instructions, opCreateArray{at: at, length: length})
	return op
}

// CreateArrayWith appends an instruction allocating an array of at
// initialized from data. The Operation takes ownership of data.
func (op *Operation) CreateArrayWith(at ArrayElementType, data []byte, elemSize int) *Operation {
	op.instructions = append(op.instructions, opCreateArrayWith{at: at, data: op.own(data), elemSize: elemSize})
	return op
}

// DestroyArray appends an instruction releasing array at on every
// selected entity.
func (op *Operation) DestroyArray(at ArrayElementType) *Operation {
	op.instructions = append(op.instructions, opDestroyArray{at: at})
	return op
}

// SetArrayElement appends an instruction overwriting the span starting
// at index in array at with data, on every selected entity. The
// Operation takes ownership of data.
func (op *Operation) SetArrayElement(at ArrayElementType, index int, data []byte, elemSize int) *Operation {
	op.instructions = append(op.instructions, opSetArrayElement{at: at, index: index, data: op.own(data), elemSize: elemSize})
	return op
}

// ResizeArray appends an instruction resizing array at on every
// selected entity.
func (op *Operation) ResizeArray(at ArrayElementType, newLen int) *Operation {
	op.instructions = append(op.instructions, opResizeArray{at: at, newLen: newLen})
	return op
}

// Apply replays every instruction against world in order, threading a
// single selection cursor through the stream. Replay stops at the
// first error.
func (op *Operation) Apply(world *World) error {
	state := &replayState{world: world}
	for _, in := range op.instructions {
		if err := in.apply(state); err != nil {
			return err
		}
	}
	return nil
}

// Dispose releases every heap-owned payload buffer the Operation holds.
// The Operation must not be applied again afterward.
func (op *Operation) Dispose() {
	for i := range op.buffers {
		op.buffers[i] = nil
	}
	op.buffers = nil
	op.instructions = nil
}

type opCreateEntity struct{ n int }

func (o opCreateEntity) apply(r *replayState) error {
	for i := 0; i < o.n; i++ {
		id, err := r.world.CreateEntity()
		if err != nil {
			return err
		}
		r.selection = append(r.selection, id)
		r.created = append(r.created, id)
	}
	return nil
}

type opDestroySelection struct{}

func (o opDestroySelection) apply(r *replayState) error {
	for _, e := range r.selection {
		if err := r.world.DestroyEntity(e); err != nil {
			return err
		}
	}
	r.selection = nil
	return nil
}

type opDestroyRange struct{ start, length int }

func (o opDestroyRange) apply(r *replayState) error {
	if o.start < 0 || o.start+o.length > len(r.selection) {
		return OutOfRangeError{Index: o.start + o.length, Bound: len(r.selection)}
	}
	window := append([]uint32(nil), r.selection[o.start:o.start+o.length]...)
	for _, e := range window {
		if err := r.world.DestroyEntity(e); err != nil {
			return err
		}
	}
	r.selection = append(r.selection[:o.start], r.selection[o.start+o.length:]...)
	return nil
}

type opSelectEntity struct{ id uint32 }

func (o opSelectEntity) apply(r *replayState) error {
	r.selection = append(r.selection, o.id)
	return nil
}

func resolveOffset(created []uint32, k int) (uint32, error) {
	idx := len(created) - 1 - k
	if idx < 0 || idx >= len(created) {
		return 0, OutOfRangeError{Index: k, Bound: len(created)}
	}
	return created[idx], nil
}

type opSelectOffset struct{ k int }

func (o opSelectOffset) apply(r *replayState) error {
	id, err := resolveOffset(r.created, o.k)
	if err != nil {
		return err
	}
	r.selection = append(r.selection, id)
	return nil
}

type opClearSelection struct{}

func (o opClearSelection) apply(r *replayState) error {
	r.selection = nil
	return nil
}

type opSetParentID struct{ id uint32 }

func (o opSetParentID) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if e == o.id {
			continue // an entity can't be its own parent
		}
		if err := r.world.SetParent(e, o.id); err != nil {
			return err
		}
	}
	return nil
}

type opSetParentOffset struct{ k int }

func (o opSetParentOffset) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	p, err := resolveOffset(r.created, o.k)
	if err != nil {
		return err
	}
	for _, e := range r.selection {
		if e == p {
			continue // an entity can't be its own parent
		}
		if err := r.world.SetParent(e, p); err != nil {
			return err
		}
	}
	return nil
}

type opAddReferenceID struct{ id uint32 }

func (o opAddReferenceID) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if _, err := r.world.AddReference(e, o.id); err != nil {
			return err
		}
	}
	return nil
}

type opAddReferenceOffset struct{ k int }

func (o opAddReferenceOffset) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	target, err := resolveOffset(r.created, o.k)
	if err != nil {
		return err
	}
	for _, e := range r.selection {
		if _, err := r.world.AddReference(e, target); err != nil {
			return err
		}
	}
	return nil
}

type opRemoveReference struct{ rint uint32 }

func (o opRemoveReference) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.RemoveReference(e, o.rint); err != nil {
			return err
		}
	}
	return nil
}

type opAddComponent struct {
	ct   ComponentType
	data []byte
}

func (o opAddComponent) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.AddComponentBytes(e, o.ct, o.data); err != nil {
			return err
		}
	}
	return nil
}

type opSetComponent struct {
	ct   ComponentType
	data []byte
}

func (o opSetComponent) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.SetComponentBytes(e, o.ct, o.data); err != nil {
			return err
		}
	}
	return nil
}

type opRemoveComponent struct{ ct ComponentType }

func (o opRemoveComponent) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.RemoveComponent(e, o.ct); err != nil {
			return err
		}
	}
	return nil
}

type opCreateArray struct {
	at     ArrayElementType
	length int
}

func (o opCreateArray) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if _, err := r.world.CreateArrayBytes(e, o.at, o.length); err != nil {
			return err
		}
	}
	return nil
}

type opCreateArrayWith struct {
	at       ArrayElementType
	data     []byte
	elemSize int
}

func (o opCreateArrayWith) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	length := 0
	if o.elemSize > 0 {
		length = len(o.data) / o.elemSize
	}
	for _, e := range r.selection {
		buf, err := r.world.CreateArrayBytes(e, o.at, length)
		if err != nil {
			return err
		}
		copy(buf, o.data)
	}
	return nil
}

type opDestroyArray struct{ at ArrayElementType }

func (o opDestroyArray) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.DestroyArray(e, o.at); err != nil {
			return err
		}
	}
	return nil
}

type opSetArrayElement struct {
	at       ArrayElementType
	index    int
	data     []byte
	elemSize int
}

func (o opSetArrayElement) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		buf, err := r.world.ArrayBytes(e, o.at)
		if err != nil {
			return err
		}
		start := o.index * o.elemSize
		end := start + len(o.data)
		if start < 0 || end > len(buf) {
			return OutOfRangeError{Index: o.index, Bound: len(buf) / o.elemSize}
		}
		copy(buf[start:end], o.data)
	}
	return nil
}

type opResizeArray struct {
	at     ArrayElementType
	newLen int
}

func (o opResizeArray) apply(r *replayState) error {
	if err := r.requireSelection(); err != nil {
		return err
	}
	for _, e := range r.selection {
		if err := r.world.ResizeArray(e, o.at, o.newLen); err != nil {
			return err
		}
	}
	return nil
}
