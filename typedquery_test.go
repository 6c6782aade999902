package ecsworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery1IteratesAndMutates(t *testing.T) {
	w, _ := newTestWorld(t)
	q, err := NewQuery1[Position](w)
	require.NoError(t, err)

	e1, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, e1, Position{X: 1, Y: 1}))
	e2, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, e2, Position{X: 2, Y: 2}))

	require.NoError(t, q.Update())
	assert.Equal(t, 2, q.Raw().Len())

	seen := map[uint32]float64{}
	for {
		e, pos, ok, err := q.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		seen[e] = pos.X
		pos.X *= 10 // mutate through the query; backed by live chunk bytes
	}
	assert.Equal(t, map[uint32]float64{e1: 1, e2: 2}, seen)

	got1, err := GetComponent[Position](w, e1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got1.X)
}

func TestQuery2TwoComponentMatch(t *testing.T) {
	w, _ := newTestWorld(t)
	q, err := NewQuery2[Position, Velocity](w)
	require.NoError(t, err)

	both, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, both, Position{X: 1}))
	require.NoError(t, AddComponent(w, both, Velocity{X: 5}))

	posOnly, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, posOnly, Position{X: 2}))

	require.NoError(t, q.Update())
	assert.Equal(t, 1, q.Raw().Len())

	e, pos, vel, ok, err := q.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, both, e)
	assert.Equal(t, 1.0, pos.X)
	assert.Equal(t, 5.0, vel.X)
}

func TestQueryStaleAfterStructuralChange(t *testing.T) {
	w, _ := newTestWorld(t)
	q, err := NewQuery1[Position](w)
	require.NoError(t, err)

	e, _ := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, Position{X: 1}))
	require.NoError(t, q.Update())

	// structural change invalidates the materialized query
	_, _ = w.CreateEntity()

	_, _, _, err = q.Next()
	var stale StaleQueryError
	assert.ErrorAs(t, err, &stale)
}

func TestQueryNextExhausted(t *testing.T) {
	w, _ := newTestWorld(t)
	q, err := NewQuery1[Position](w)
	require.NoError(t, err)
	require.NoError(t, q.Update())

	_, _, ok, err := q.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRawQueryExcludeTagsAndOnlyEnabled(t *testing.T) {
	w, schema := newTestWorld(t)
	pos, _ := RegisterComponent[Position](schema)
	dead, _ := RegisterTag[Player](schema)

	alive, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(alive, pos, valueBytes(&Position{})))

	disabled, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(disabled, pos, valueBytes(&Position{})))
	require.NoError(t, w.SetEnabled(disabled, false))

	tagged, _ := w.CreateEntity()
	require.NoError(t, w.AddComponentBytes(tagged, pos, valueBytes(&Position{})))
	require.NoError(t, w.AddTag(tagged, dead))

	q := NewRawQuery(w, pos).WithExcludeTags(TagMaskOf(dead)).OnlyEnabled(true)
	require.NoError(t, q.Update())
	assert.Equal(t, 1, q.Len())

	e, _, ok, err := q.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, alive, e)
}
