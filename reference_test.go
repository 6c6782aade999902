package ecsworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReferenceAndGet(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.CreateEntity()
	b, _ := w.CreateEntity()

	rint, err := w.AddReference(a, b)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rint)

	got, err := w.GetReference(a, rint)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestRemoveReferenceClearsButPreservesIndices(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.CreateEntity()
	b, _ := w.CreateEntity()
	c, _ := w.CreateEntity()

	r1, _ := w.AddReference(a, b)
	r2, _ := w.AddReference(a, c)

	require.NoError(t, w.RemoveReference(a, r1))
	got, err := w.GetReference(a, r1)
	require.NoError(t, err)
	assert.Zero(t, got)

	got2, err := w.GetReference(a, r2)
	require.NoError(t, err)
	assert.Equal(t, c, got2)
}

func TestReferenceOutOfRange(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.CreateEntity()
	_, err := w.GetReference(a, 1)
	var outOfRange ReferenceOutOfRangeError
	assert.ErrorAs(t, err, &outOfRange)
}

func TestDestroyEntityNullsIncomingReferences(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.CreateEntity()
	b, _ := w.CreateEntity()
	rint, err := w.AddReference(a, b)
	require.NoError(t, err)

	require.NoError(t, w.DestroyEntity(b))

	got, err := w.GetReference(a, rint)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestReferenceCount(t *testing.T) {
	w, _ := newTestWorld(t)
	a, _ := w.CreateEntity()
	b, _ := w.CreateEntity()
	w.AddReference(a, b)
	w.AddReference(a, b)
	n, err := w.ReferenceCount(a)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
