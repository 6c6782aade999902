package ecsworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChunk(t *testing.T) (*Schema, ComponentType, ComponentType, *Chunk) {
	t.Helper()
	schema := NewSchema()
	pos, err := RegisterComponent[Position](schema)
	require.NoError(t, err)
	vel, err := RegisterComponent[Velocity](schema)
	require.NoError(t, err)
	def := Definition{}.WithComponent(pos).WithComponent(vel)
	return schema, pos, vel, newChunk(def, schema)
}

func TestChunkAddEntityGrowsColumns(t *testing.T) {
	_, pos, vel, chunk := newTestChunk(t)
	row := chunk.AddEntity(10)
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, chunk.Len())

	posBytes, err := chunk.ComponentBytes(row, pos)
	require.NoError(t, err)
	assert.Len(t, posBytes, 16)
	velBytes, err := chunk.ComponentBytes(row, vel)
	require.NoError(t, err)
	assert.Len(t, velBytes, 16)
}

func TestChunkRemoveEntitySwapRemove(t *testing.T) {
	_, pos, _, chunk := newTestChunk(t)
	r0 := chunk.AddEntity(1)
	chunk.AddEntity(2)
	r2 := chunk.AddEntity(3)

	p2, _ := chunk.ComponentBytes(r2, pos)
	p2[0] = 42

	movedID, moved := chunk.RemoveEntity(r0)
	assert.True(t, moved)
	assert.Equal(t, uint32(3), movedID)
	assert.Equal(t, 2, chunk.Len())
	assert.Equal(t, uint32(3), chunk.Entities()[r0])

	p0After, _ := chunk.ComponentBytes(r0, pos)
	assert.Equal(t, byte(42), p0After[0])
}

func TestChunkRemoveLastEntityNoSwap(t *testing.T) {
	_, _, _, chunk := newTestChunk(t)
	r0 := chunk.AddEntity(1)
	_, moved := chunk.RemoveEntity(r0)
	assert.False(t, moved)
	assert.Equal(t, 0, chunk.Len())
}

func TestChunkMoveEntityPreservesIntersectingBytes(t *testing.T) {
	schema, pos, vel, src := newTestChunk(t)
	srcRow := src.AddEntity(7)
	posBytes, _ := src.ComponentBytes(srcRow, pos)
	posBytes[0] = 9

	destDef := Definition{}.WithComponent(pos)
	dest := newChunk(destDef, schema)

	destRow, movedID, moved := src.MoveEntity(srcRow, dest)
	assert.Equal(t, 0, destRow)
	assert.False(t, moved) // only entity in src, nothing to swap
	assert.Equal(t, uint32(0), movedID)
	assert.Equal(t, 0, src.Len())
	assert.Equal(t, 1, dest.Len())

	destPos, err := dest.ComponentBytes(destRow, pos)
	require.NoError(t, err)
	assert.Equal(t, byte(9), destPos[0])

	_, err = dest.ComponentBytes(destRow, vel)
	assert.Error(t, err)
}

func TestChunkComponentBytesNotPresent(t *testing.T) {
	schema := NewSchema()
	pos, err := RegisterComponent[Position](schema)
	require.NoError(t, err)
	vel, err := RegisterComponent[Velocity](schema)
	require.NoError(t, err)
	chunk := newChunk(Definition{}.WithComponent(pos), schema)
	row := chunk.AddEntity(1)
	_, err = chunk.ComponentBytes(row, vel)
	assert.Error(t, err)
}

func TestChunkContainsAllTypes(t *testing.T) {
	_, pos, vel, chunk := newTestChunk(t)
	assert.True(t, chunk.ContainsAllTypes(MaskOf(pos, vel)))
	assert.True(t, chunk.ContainsAllTypes(MaskOf(pos)))

	schema := chunk.schema
	unrelated, _ := RegisterComponent[Health](schema)
	assert.False(t, chunk.ContainsAllTypes(MaskOf(unrelated)))
}
