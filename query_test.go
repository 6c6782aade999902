package ecsworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsetQueryMatchesComponentMask(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)
	vel, _ := RegisterComponent[Velocity](schema)

	eBoth, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(eBoth, pos, valueBytes(&Position{})))
	require.NoError(t, w.AddComponentBytes(eBoth, vel, valueBytes(&Velocity{})))

	ePosOnly, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(ePosOnly, pos, valueBytes(&Position{})))

	w.CreateEntity() // neither

	q := BitsetQuery{Components: MaskOf(pos)}
	ids := q.Run(w)
	assert.ElementsMatch(t, []uint32{eBoth, ePosOnly}, ids)

	qBoth := BitsetQuery{Components: MaskOf(pos, vel)}
	idsBoth := qBoth.Run(w)
	assert.ElementsMatch(t, []uint32{eBoth}, idsBoth)
}

func TestBitsetQueryExcludeTags(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)
	dead, _ := RegisterTag[Player](schema)

	alive, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(alive, pos, valueBytes(&Position{})))

	tagged, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(tagged, pos, valueBytes(&Position{})))
	require.NoError(t, w.AddTag(tagged, dead))

	q := BitsetQuery{Components: MaskOf(pos), ExcludeTags: TagMaskOf(dead)}
	ids := q.Run(w)
	assert.ElementsMatch(t, []uint32{alive}, ids)
}

func TestBitsetQueryOnlyEnabled(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)

	a, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(a, pos, valueBytes(&Position{})))
	b, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(b, pos, valueBytes(&Position{})))
	require.NoError(t, w.SetEnabled(b, false))

	q := BitsetQuery{Components: MaskOf(pos), OnlyEnabled: true}
	ids := q.Run(w)
	assert.ElementsMatch(t, []uint32{a}, ids)
}

func TestDefinitionQuery(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)
	e, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(e, pos, valueBytes(&Position{})))

	q := DefinitionQuery{Definition: Definition{}.WithComponent(pos)}
	assert.ElementsMatch(t, []uint32{e}, q.Run(w))
}
