package ecsworld

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRoundTripWorld(t *testing.T) (*World, *Schema) {
	t.Helper()
	w, schema := newTestWorld(t)
	_, err := RegisterComponent[Position](schema)
	require.NoError(t, err)
	_, err = RegisterComponent[Velocity](schema)
	require.NoError(t, err)
	_, err = RegisterArrayElement[int32](schema)
	require.NoError(t, err)
	_, err = RegisterTag[Player](schema)
	require.NoError(t, err)

	parent, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, parent, Position{X: 1, Y: 2}))

	child, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, child, Position{X: 3, Y: 4}))
	require.NoError(t, AddComponent(w, child, Velocity{X: 5, Y: 6}))
	require.NoError(t, w.SetParent(child, parent))

	playerTag, err := RegisterTag[Player](schema)
	require.NoError(t, err)
	require.NoError(t, w.AddTag(child, playerTag))

	arr, err := CreateArray[int32](w, child, 3)
	require.NoError(t, err)
	arr[0], arr[1], arr[2] = 10, 20, 30

	_, err = w.AddReference(parent, child)
	require.NoError(t, err)

	solo, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, solo, Position{X: 9, Y: 9}))

	return w, schema
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	w, _ := buildRoundTripWorld(t)

	data, err := Serialize(w)
	require.NoError(t, err)

	destSchema := NewSchema()
	_, err = RegisterComponent[Position](destSchema)
	require.NoError(t, err)
	_, err = RegisterComponent[Velocity](destSchema)
	require.NoError(t, err)
	_, err = RegisterArrayElement[int32](destSchema)
	require.NoError(t, err)
	_, err = RegisterTag[Player](destSchema)
	require.NoError(t, err)

	got, err := Deserialize(destSchema, data)
	require.NoError(t, err)

	wantStats := w.Stats()
	gotStats := got.Stats()
	assert.Equal(t, wantStats.LiveEntities, gotStats.LiveEntities)
	assert.Equal(t, wantStats.FreeEntities, gotStats.FreeEntities)
	assert.Equal(t, wantStats.ChunkCount, gotStats.ChunkCount)

	diff := cmp.Diff(wantStats.Chunks, gotStats.Chunks,
		cmpopts.SortSlices(func(a, b ChunkStats) bool {
			return a.Components < b.Components
		}),
	)
	assert.Empty(t, diff)
}

func TestSerializeDeserializePreservesStructure(t *testing.T) {
	w, _ := buildRoundTripWorld(t)
	data, err := Serialize(w)
	require.NoError(t, err)

	destSchema := NewSchema()
	_, err = RegisterComponent[Position](destSchema)
	require.NoError(t, err)
	_, err = RegisterComponent[Velocity](destSchema)
	require.NoError(t, err)
	_, err = RegisterArrayElement[int32](destSchema)
	require.NoError(t, err)
	_, err = RegisterTag[Player](destSchema)
	require.NoError(t, err)

	got, err := Deserialize(destSchema, data)
	require.NoError(t, err)

	// find the entity with Position{1,2} in the round-tripped world and
	// confirm its child/reference/array/tag structure survived.
	posQ, err := NewQuery1[Position](got)
	require.NoError(t, err)
	require.NoError(t, posQ.Update())

	var parent uint32
	for {
		e, pos, ok, qerr := posQ.Next()
		require.NoError(t, qerr)
		if !ok {
			break
		}
		if pos.X == 1 && pos.Y == 2 {
			parent = e
		}
	}
	require.NotZero(t, parent)

	children, err := got.Children(parent)
	require.NoError(t, err)
	require.Len(t, children, 1)
	child := children[0]

	childPos, err := GetComponent[Position](got, child)
	require.NoError(t, err)
	assert.Equal(t, 3.0, childPos.X)

	playerType, err := TagTypeOf[Player](destSchema)
	require.NoError(t, err)
	hasTag, err := got.HasTag(child, playerType)
	require.NoError(t, err)
	assert.True(t, hasTag)

	arr, err := GetArray[int32](got, child)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20, 30}, arr)

	rint, err := got.ReferenceCount(parent)
	require.NoError(t, err)
	assert.Equal(t, 1, rint)
	ref, err := got.GetReference(parent, 1)
	require.NoError(t, err)
	assert.Equal(t, child, ref)
}

func TestDeserializeRejectsCorruptedCRC(t *testing.T) {
	w, _ := newTestWorld(t)
	data, err := Serialize(w)
	require.NoError(t, err)

	corrupted := append([]byte(nil), data...)
	corrupted[0] ^= 0xFF

	_, err = Deserialize(w.schema, corrupted)
	assert.Error(t, err)
}

func TestDeserializeSchemaMismatch(t *testing.T) {
	w, schema := newTestWorld(t)
	_, err := RegisterComponent[Position](schema)
	require.NoError(t, err)
	e, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, Position{X: 1}))

	data, err := Serialize(w)
	require.NoError(t, err)

	bareSchema := NewSchema() // missing Position registration
	_, err = Deserialize(bareSchema, data)
	var mismatch SchemaMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestSerializeDeserializeManyEntitiesAcrossArchetypes(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)
	vel, _ := RegisterComponent[Velocity](schema)
	hp, _ := RegisterComponent[Health](schema)
	player, _ := RegisterTag[Player](schema)

	const n = 1000
	for i := 0; i < n; i++ {
		e, err := w.CreateEntity()
		require.NoError(t, err)
		switch i % 5 {
		case 0:
			require.NoError(t, w.AddComponentBytes(e, pos, valueBytes(&Position{X: float64(i)})))
		case 1:
			require.NoError(t, w.AddComponentBytes(e, pos, valueBytes(&Position{X: float64(i)})))
			require.NoError(t, w.AddComponentBytes(e, vel, valueBytes(&Velocity{X: float64(i)})))
		case 2:
			require.NoError(t, w.AddComponentBytes(e, hp, valueBytes(&Health{Current: i, Max: 100})))
		case 3:
			require.NoError(t, w.AddComponentBytes(e, pos, valueBytes(&Position{X: float64(i)})))
			require.NoError(t, w.AddTag(e, player))
		case 4:
			// empty archetype entity
		}
	}

	data, err := Serialize(w)
	require.NoError(t, err)

	destSchema := NewSchema()
	_, err = RegisterComponent[Position](destSchema)
	require.NoError(t, err)
	_, err = RegisterComponent[Velocity](destSchema)
	require.NoError(t, err)
	_, err = RegisterComponent[Health](destSchema)
	require.NoError(t, err)
	_, err = RegisterTag[Player](destSchema)
	require.NoError(t, err)

	got, err := Deserialize(destSchema, data)
	require.NoError(t, err)

	wantStats := w.Stats()
	gotStats := got.Stats()
	assert.Equal(t, wantStats.LiveEntities, gotStats.LiveEntities)
	assert.Equal(t, n, gotStats.LiveEntities)
	assert.Equal(t, wantStats.ChunkCount, gotStats.ChunkCount)
	assert.Equal(t, 5, gotStats.ChunkCount)
}
