package handle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tfufuz1/NovaDE-sub008/internal/handle"
)

func TestInsertGet(t *testing.T) {
	a := handle.NewArena[string]()
	h := a.Insert("hello")

	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.Equal(t, 1, a.Len())
}

func TestZeroHandle(t *testing.T) {
	a := handle.NewArena[int]()
	a.Insert(3)

	var zero handle.Handle
	assert.True(t, zero.IsZero())
	_, ok := a.Get(zero)
	assert.False(t, ok)
}

func TestRemoveInvalidates(t *testing.T) {
	a := handle.NewArena[int]()
	h := a.Insert(3)

	require.True(t, a.Remove(h))
	_, ok := a.Get(h)
	assert.False(t, ok)
	assert.False(t, a.Remove(h), "double remove must fail")
	assert.Equal(t, 0, a.Len())
}

func TestStaleHandleAfterReuse(t *testing.T) {
	a := handle.NewArena[int]()
	h1 := a.Insert(1)
	require.True(t, a.Remove(h1))

	h2 := a.Insert(2)
	require.NotEqual(t, h1, h2)

	_, ok := a.Get(h1)
	assert.False(t, ok, "stale handle must not resolve to the recycled slot")
	v, ok := a.Get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestAll(t *testing.T) {
	a := handle.NewArena[int]()
	a.Insert(1)
	h := a.Insert(2)
	a.Insert(3)
	a.Remove(h)

	assert.Equal(t, []int{1, 3}, a.All())
	assert.Len(t, a.Handles(), 2)
}
