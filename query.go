package ecsworld

// BitsetQuery filters chunks by containsAll on the component and
// array masks, containsAll on the include-tag mask, and containsAny
// == false on the exclude-tag mask, optionally filtering results to
// only entities whose effective state is Enabled.
type BitsetQuery struct {
	Components  Bitset
	Arrays      Bitset
	IncludeTags Bitset
	ExcludeTags Bitset
	OnlyEnabled bool
}

func (q BitsetQuery) matches(def Definition) bool {
	if !def.Components.ContainsAll(q.Components) {
		return false
	}
	if !def.Arrays.ContainsAll(q.Arrays) {
		return false
	}
	if !def.Tags.ContainsAll(q.IncludeTags) {
		return false
	}
	if def.Tags.ContainsAny(q.ExcludeTags) {
		return false
	}
	return true
}

// Run evaluates the query against world and returns every matching
// entity id. Chunks are visited in definition-insertion order; rows
// within a chunk are visited in chunk-storage order, which is
// swap-remove order and not guaranteed to reflect creation order.
func (q BitsetQuery) Run(world *World) []uint32 {
	var out []uint32
	for _, def := range world.chunkOrder {
		if !q.matches(def) {
			continue
		}
		chunk := world.chunks[def]
		for _, id := range chunk.Entities() {
			if q.OnlyEnabled {
				if world.slots[id].state != StateEnabled {
					continue
				}
			}
			out = append(out, id)
		}
	}
	return out
}

// DefinitionQuery matches entities whose current Definition contains
// the query Definition's component and array masks, and whose tag mask
// contains the query's tag mask (used as an include set).
type DefinitionQuery struct {
	Definition Definition
}

// Run evaluates the query against world and returns every matching
// entity id, in the same chunk/row order as BitsetQuery.Run.
func (q DefinitionQuery) Run(world *World) []uint32 {
	var out []uint32
	for _, def := range world.chunkOrder {
		if !def.ContainsAll(q.Definition) {
			continue
		}
		out = append(out, world.chunks[def].Entities()...)
	}
	return out
}
