package ecsworld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArrayAndAccess(t *testing.T) {
	w, _ := newTestWorld(t)
	e, _ := w.CreateEntity()

	vals, err := CreateArray[int32](w, e, 3)
	require.NoError(t, err)
	assert.Len(t, vals, 3)
	vals[0] = 7
	vals[1] = 8
	vals[2] = 9

	got, err := GetArray[int32](w, e)
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 8, 9}, got)
}

func TestCreateArrayTwiceFails(t *testing.T) {
	w, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	_, err := CreateArray[int32](w, e, 2)
	require.NoError(t, err)
	_, err = CreateArray[int32](w, e, 2)
	var already ArrayAlreadyPresentError
	assert.ErrorAs(t, err, &already)
}

func TestResizeArrayGrowsAndTruncates(t *testing.T) {
	w, schema := newTestWorld(t)
	at, err := RegisterArrayElement[int32](schema)
	require.NoError(t, err)
	e, _ := w.CreateEntity()
	_, err = w.CreateArrayBytes(e, at, 2)
	require.NoError(t, err)

	require.NoError(t, w.ResizeArray(e, at, 5))
	n, err := w.ArrayLen(e, at)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, w.ResizeArray(e, at, 1))
	n, err = w.ArrayLen(e, at)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDestroyArrayMigratesAndRemovesAccess(t *testing.T) {
	w, schema := newTestWorld(t)
	at, err := RegisterArrayElement[int32](schema)
	require.NoError(t, err)
	e, _ := w.CreateEntity()
	_, err = w.CreateArrayBytes(e, at, 2)
	require.NoError(t, err)

	require.NoError(t, w.DestroyArray(e, at))
	_, err = w.ArrayBytes(e, at)
	var notPresent ArrayNotPresentError
	assert.ErrorAs(t, err, &notPresent)
}
