package ecsworld

import (
	"fmt"
	"strings"
)

// ChunkStats summarizes one archetype chunk.
type ChunkStats struct {
	Definition Definition
	Entities   int
	Components int
}

func (s ChunkStats) String() string {
	return fmt.Sprintf("chunk entities=%d components=%d", s.Entities, s.Components)
}

// WorldStats summarizes a World's entity and chunk population, useful
// for ad-hoc diagnostics; it is not consulted by any mutation or query
// path.
type WorldStats struct {
	LiveEntities int
	FreeEntities int
	ChunkCount   int
	Chunks       []ChunkStats
}

// Stats collects a snapshot of world's current population.
func (w *World) Stats() WorldStats {
	var s WorldStats
	s.FreeEntities = len(w.freeIDs)
	for id := uint32(1); id < uint32(len(w.slots)); id++ {
		if w.slots[id].state != StateFree {
			s.LiveEntities++
		}
	}
	s.ChunkCount = len(w.chunkOrder)
	for _, def := range w.chunkOrder {
		chunk := w.chunks[def]
		s.Chunks = append(s.Chunks, ChunkStats{
			Definition: def,
			Entities:   chunk.Len(),
			Components: def.Components.Count(),
		})
	}
	return s
}

// DebugString renders a human-readable multi-line summary of world,
// one line per chunk.
func (w *World) DebugString() string {
	s := w.Stats()
	var b strings.Builder
	fmt.Fprintf(&b, "World -- live=%d free=%d chunks=%d\n", s.LiveEntities, s.FreeEntities, s.ChunkCount)
	for _, cs := range s.Chunks {
		fmt.Fprintf(&b, "  %s\n", cs.String())
	}
	return b.String()
}
