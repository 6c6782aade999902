/*
Package ecsworld provides an archetype-based Entity-Component-System (ECS)
data store.

Ecsworld offers a performant approach to managing entity data through
column-oriented, archetype-keyed storage. Entities that carry the exact
same combination of component, array-element, and tag types live in the
same Chunk, so a query over a component set becomes a linear scan over
contiguous columns.

Core Concepts:

  - Entity: a non-zero uint32 handle into a World's slot table.
  - Component: a fixed-size typed value stored inline in a chunk column.
  - Array: a variable-length per-entity buffer of a typed element.
  - Tag: a zero-byte marker that contributes to archetype identity.
  - Definition: the triple of component/array/tag Bitset-256 masks that
    identifies a Chunk's column layout.
  - Schema: the registry that assigns each component/array/tag type its
    stable dense index.
  - Operation: an append-only, deferred instruction stream that mutates
    a World when replayed.

Basic Usage:

	schema := ecsworld.NewSchema()
	position, _ := ecsworld.RegisterComponent[Position](schema)
	player, _ := ecsworld.RegisterTag[Player](schema)

	world := ecsworld.NewWorld(schema)
	e, _ := world.CreateEntity()
	_ = ecsworld.AddComponent(world, e, Position{X: 1, Y: 2})
	_ = world.AddTag(e, player)

	query := ecsworld.BitsetQuery{Components: ecsworld.MaskOf(position)}
	for _, id := range query.Run(world) {
		pos, _ := ecsworld.GetComponent[Position](world, id)
		pos.X++
	}

Ecsworld is built to sit underneath a higher-level simulator/scheduler
that runs user systems against Worlds; that layer, code-generated
registration helpers, and networked replication are out of scope for
this package.
*/
package ecsworld
