package ecsworld

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/sirupsen/logrus"
)

type refEdge struct {
	source uint32
	rint   uint32
}

// World owns the slot table, the chunk table, the free-id stack, and
// a reference to the Schema. It exposes every mutation and query
// primitive. Version is a monotonic counter bumped on any structural
// change, consulted by queries to detect staleness.
type World struct {
	schema      *Schema
	slots       []entitySlot
	freeIDs     []uint32
	chunks      map[Definition]*Chunk
	chunkOrder  []Definition
	emptyChunk  *Chunk
	reverseRefs map[uint32][]refEdge
	version     uint64
}

// NewWorld creates an empty World against schema. The empty Definition
// chunk is created up front; every newly created entity starts there.
func NewWorld(schema *Schema) *World {
	w := &World{
		schema:      schema,
		slots:       make([]entitySlot, 1), // slot 0 unused; entity id 0 means "no entity"
		chunks:      make(map[Definition]*Chunk),
		reverseRefs: make(map[uint32][]refEdge),
	}
	w.emptyChunk = w.getOrCreateChunk(Definition{})
	return w
}

// Schema returns the World's Schema.
func (w *World) Schema() *Schema { return w.schema }

// Version returns the monotonic structural-change counter.
func (w *World) Version() uint64 { return w.version }

func (w *World) bumpVersion() { w.version++ }

func (w *World) getOrCreateChunk(def Definition) *Chunk {
	if c, ok := w.chunks[def]; ok {
		return c
	}
	c := newChunk(def, w.schema)
	w.chunks[def] = c
	w.chunkOrder = append(w.chunkOrder, def)
	return c
}

// Chunks returns every chunk in definition-insertion order.
func (w *World) Chunks() []*Chunk {
	out := make([]*Chunk, len(w.chunkOrder))
	for i, def := range w.chunkOrder {
		out[i] = w.chunks[def]
	}
	return out
}

func (w *World) slot(e uint32) (*entitySlot, error) {
	if e == 0 || int(e) >= len(w.slots) || w.slots[e].state == StateFree {
		return nil, NoSuchEntityError{Entity: e}
	}
	return &w.slots[e], nil
}

func (w *World) fail(err error) error {
	if Config.PanicOnPrecondition {
		panic(bark.AddTrace(err))
	}
	return err
}

func (w *World) logDebug(action string, e uint32, extra ...interface{}) {
	if Config.Logger == nil {
		return
	}
	fields := logrus.Fields{"entity": e, "action": action, "version": w.version}
	if len(extra) > 0 {
		fields["detail"] = fmt.Sprint(extra...)
	}
	Config.Logger.WithFields(fields).Debug("ecsworld: structural mutation")
}

// CreateEntity allocates a new entity, preferring a recycled id off
// the free-id stack before growing the slot table, and places it in
// the empty-Definition chunk.
func (w *World) CreateEntity() (uint32, error) {
	var id uint32
	if n := len(w.freeIDs); n > 0 {
		id = w.freeIDs[n-1]
		w.freeIDs = w.freeIDs[:n-1]
	} else {
		id = uint32(len(w.slots))
		w.slots = append(w.slots, entitySlot{})
	}
	w.slots[id].reset(id)
	row := w.emptyChunk.AddEntity(id)
	w.slots[id].chunk = w.emptyChunk
	w.slots[id].row = row
	w.bumpVersion()
	w.logDebug("create_entity", id)
	return id, nil
}

// CreateEntities appends n newly created entities to out and returns
// the resulting slice, matching the batch-create contract.
func (w *World) CreateEntities(n int, out []uint32) ([]uint32, error) {
	for i := 0; i < n; i++ {
		id, err := w.CreateEntity()
		if err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, nil
}

// DestroyEntity recursively destroys e's descendants depth-first, nulls
// every reference other entities hold to e (and drops e's own
// references from the reverse index), removes e from its chunk, and
// pushes its id onto the free stack.
func (w *World) DestroyEntity(e uint32) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}

	children := append([]uint32(nil), slot.children...)
	for _, child := range children {
		if err := w.DestroyEntity(child); err != nil {
			return err
		}
	}
	// re-fetch: destroying children may have reallocated w.slots.
	slot = &w.slots[e]

	for _, edge := range w.reverseRefs[e] {
		src := &w.slots[edge.source]
		if int(edge.rint) <= len(src.references) {
			src.references[edge.rint-1] = 0
		}
	}
	delete(w.reverseRefs, e)

	for rint, target := range slot.references {
		if target == 0 {
			continue
		}
		w.removeReverseEdge(target, e, uint32(rint+1))
	}

	if slot.parent != 0 {
		if pslot, err := w.slot(slot.parent); err == nil {
			pslot.children = removeChild(pslot.children, e)
		}
	}

	if movedID, moved := slot.chunk.RemoveEntity(slot.row); moved {
		w.slots[movedID].row = slot.row
	}

	w.freeIDs = append(w.freeIDs, e)
	slot.free()
	w.bumpVersion()
	w.logDebug("destroy_entity", e)
	return nil
}

func (w *World) removeReverseEdge(target, source, rint uint32) {
	edges := w.reverseRefs[target]
	for i, e := range edges {
		if e.source == source && e.rint == rint {
			w.reverseRefs[target] = append(edges[:i], edges[i+1:]...)
			return
		}
	}
}

// migrate moves the entity at slot to a chunk whose Definition equals
// newDef, updating the slot and the entity that swap-fills the
// vacated source row.
func (w *World) migrate(slot *entitySlot, newDef Definition) {
	dest := w.getOrCreateChunk(newDef)
	oldRow := slot.row
	src := slot.chunk
	destRow, movedID, moved := src.MoveEntity(oldRow, dest)
	if moved {
		w.slots[movedID].row = oldRow
	}
	slot.chunk = dest
	slot.row = destRow
}

// AddComponentBytes moves e to the chunk with ct added to its
// Definition and writes data into the new column slot. len(data) must
// equal the component's registered size.
func (w *World) AddComponentBytes(e uint32, ct ComponentType, data []byte) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if slot.chunk.Definition().HasComponent(ct) {
		return w.fail(ComponentAlreadyPresentError{Entity: e, Component: ct})
	}
	size, err := w.schema.SizeOf(ct)
	if err != nil {
		return w.fail(err)
	}
	if len(data) != int(size) {
		return w.fail(fmt.Errorf("ecsworld: component %d expects %d bytes, got %d", ct, size, len(data)))
	}

	newDef := slot.chunk.Definition().WithComponent(ct)
	w.migrate(slot, newDef)

	buf, err := slot.chunk.ComponentBytes(slot.row, ct)
	if err != nil {
		return w.fail(err)
	}
	copy(buf, data)
	w.bumpVersion()
	w.logDebug("add_component", e, ct)
	return nil
}

// RemoveComponent moves e to the chunk with ct cleared from its
// Definition.
func (w *World) RemoveComponent(e uint32, ct ComponentType) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if !slot.chunk.Definition().HasComponent(ct) {
		return w.fail(ComponentNotPresentError{Entity: e, Component: ct})
	}
	newDef := slot.chunk.Definition().WithoutComponent(ct)
	w.migrate(slot, newDef)
	w.bumpVersion()
	w.logDebug("remove_component", e, ct)
	return nil
}

// SetComponentBytes overwrites the bytes of an already-present
// component.
func (w *World) SetComponentBytes(e uint32, ct ComponentType, data []byte) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	buf, err := slot.chunk.ComponentBytes(slot.row, ct)
	if err != nil {
		return w.fail(ComponentNotPresentError{Entity: e, Component: ct})
	}
	if len(data) != len(buf) {
		return w.fail(fmt.Errorf("ecsworld: component %d expects %d bytes, got %d", ct, len(buf), len(data)))
	}
	copy(buf, data)
	return nil
}

// ComponentBytes returns a mutable view of e's bytes for component ct.
func (w *World) ComponentBytes(e uint32, ct ComponentType) ([]byte, error) {
	slot, err := w.slot(e)
	if err != nil {
		return nil, w.fail(err)
	}
	buf, err := slot.chunk.ComponentBytes(slot.row, ct)
	if err != nil {
		return nil, w.fail(ComponentNotPresentError{Entity: e, Component: ct})
	}
	return buf, nil
}

// TryComponentBytes is the non-erroring counterpart of ComponentBytes.
func (w *World) TryComponentBytes(e uint32, ct ComponentType) ([]byte, bool) {
	slot, err := w.slot(e)
	if err != nil {
		return nil, false
	}
	buf, err := slot.chunk.ComponentBytes(slot.row, ct)
	if err != nil {
		return nil, false
	}
	return buf, true
}

// AddTag moves e to the chunk with t added to its tag mask.
func (w *World) AddTag(e uint32, t TagType) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if slot.chunk.Definition().HasTag(t) {
		return w.fail(TagAlreadyPresentError{Entity: e, Tag: t})
	}
	newDef := slot.chunk.Definition().WithTag(t)
	w.migrate(slot, newDef)
	w.bumpVersion()
	w.logDebug("add_tag", e, t)
	return nil
}

// RemoveTag moves e to the chunk with t cleared from its tag mask.
func (w *World) RemoveTag(e uint32, t TagType) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if !slot.chunk.Definition().HasTag(t) {
		return w.fail(TagNotPresentError{Entity: e, Tag: t})
	}
	newDef := slot.chunk.Definition().WithoutTag(t)
	w.migrate(slot, newDef)
	w.bumpVersion()
	w.logDebug("remove_tag", e, t)
	return nil
}

// HasTag reports whether e currently carries tag t.
func (w *World) HasTag(e uint32, t TagType) (bool, error) {
	slot, err := w.slot(e)
	if err != nil {
		return false, w.fail(err)
	}
	return slot.chunk.Definition().HasTag(t), nil
}

// HasComponent reports whether e currently carries component ct.
func (w *World) HasComponent(e uint32, ct ComponentType) (bool, error) {
	slot, err := w.slot(e)
	if err != nil {
		return false, w.fail(err)
	}
	return slot.chunk.Definition().HasComponent(ct), nil
}

func isAncestor(w *World, candidate, of uint32) bool {
	cur := of
	for cur != 0 {
		if cur == candidate {
			return true
		}
		s, err := w.slot(cur)
		if err != nil {
			return false
		}
		cur = s.parent
	}
	return false
}

// SetParent assigns p as e's parent, removing e from any previous
// parent's children and appending it to p's. Rejects cycles (p a
// descendant of e) with CycleDetectedError. If p is disabled, e's
// state becomes EnabledButDisabledByAncestor while preserving e's own
// enabled intent.
func (w *World) SetParent(e, p uint32) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if p != 0 {
		if _, err := w.slot(p); err != nil {
			return w.fail(err)
		}
		if e == p || isAncestor(w, e, p) {
			return w.fail(CycleDetectedError{Entity: e, Parent: p})
		}
	}
	if slot.parent != 0 {
		if old, err := w.slot(slot.parent); err == nil {
			old.children = removeChild(old.children, e)
		}
	}
	slot.parent = p
	if p != 0 {
		pslot := &w.slots[p]
		pslot.children = append(pslot.children, e)
		if !w.isEnabledState(pslot.state) {
			if slot.state == StateEnabled {
				slot.state = StateEnabledButDisabledByAncestor
			}
		} else if slot.state == StateEnabledButDisabledByAncestor {
			slot.state = StateEnabled
		}
	}
	w.logDebug("set_parent", e, p)
	return nil
}

// Parent returns e's parent entity id, or 0 if it has none.
func (w *World) Parent(e uint32) (uint32, error) {
	slot, err := w.slot(e)
	if err != nil {
		return 0, w.fail(err)
	}
	return slot.parent, nil
}

// Children returns e's direct children. The returned slice is owned
// by the World and must not be mutated.
func (w *World) Children(e uint32) ([]uint32, error) {
	slot, err := w.slot(e)
	if err != nil {
		return nil, w.fail(err)
	}
	return slot.children, nil
}

func (w *World) isEnabledState(s EntityState) bool {
	return s == StateEnabled
}

// IsEnabled reports whether e's effective state is Enabled.
func (w *World) IsEnabled(e uint32) (bool, error) {
	slot, err := w.slot(e)
	if err != nil {
		return false, w.fail(err)
	}
	return slot.state == StateEnabled, nil
}

// State returns e's raw enabled-state-machine value.
func (w *World) State(e uint32) (EntityState, error) {
	slot, err := w.slot(e)
	if err != nil {
		return StateFree, w.fail(err)
	}
	return slot.state, nil
}

// SetEnabled updates e's enabled intent and recursively propagates the
// effective state to its descendants: disabling e disables every
// descendant (marking their own-intent as
// EnabledButDisabledByAncestor if they were Enabled); re-enabling e
// restores descendants that were only disabled-by-ancestor back to
// Enabled, without touching descendants the caller explicitly disabled.
func (w *World) SetEnabled(e uint32, enabled bool) error {
	slot, err := w.slot(e)
	if err != nil {
		return w.fail(err)
	}
	if enabled {
		switch slot.state {
		case StateDisabled, StateEnabledButDisabledByAncestor:
			slot.state = StateEnabled
		}
	} else {
		slot.state = StateDisabled
	}
	w.cascadeEnabled(slot.children, enabled)
	w.logDebug("set_enabled", e, enabled)
	return nil
}

func (w *World) cascadeEnabled(children []uint32, ancestorEnabled bool) {
	for _, c := range children {
		cslot := &w.slots[c]
		if ancestorEnabled {
			if cslot.state == StateEnabledButDisabledByAncestor {
				cslot.state = StateEnabled
				w.cascadeEnabled(cslot.children, true)
			}
			// a child explicitly StateDisabled stays disabled by its own intent.
		} else {
			if cslot.state == StateEnabled {
				cslot.state = StateEnabledButDisabledByAncestor
			}
			w.cascadeEnabled(cslot.children, false)
		}
	}
}
