package locindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/cachesim/internal/segstore"
)

func TestIndexPutGetErase(t *testing.T) {
	ix := New()
	seg := segstore.NewSegment(4)
	idx := seg.Append(10, 1)
	ix.Put(10, seg, idx)

	loc, ok := ix.Get(10)
	require.True(t, ok, "expected key 10 to be present")
	assert.Same(t, seg, loc.Seg, "Get should return the bound segment")
	assert.Equal(t, idx, loc.Idx, "Get should return the bound slot index")
	assert.Equal(t, 1, ix.Len())

	ix.Erase(10)
	_, ok = ix.Get(10)
	assert.False(t, ok, "expected key to be gone after Erase")
	assert.Equal(t, 0, ix.Len())
}

func TestIndexEvictedTracking(t *testing.T) {
	ix := New()
	_, ok := ix.EvictedAt(5)
	require.False(t, ok, "expected no evicted entry initially")

	ix.MarkEvicted(5, 99)
	ts, ok := ix.EvictedAt(5)
	require.True(t, ok)
	assert.Equal(t, uint64(99), ts)

	ix.ClearEvicted(5)
	_, ok = ix.EvictedAt(5)
	assert.False(t, ok, "expected evicted entry cleared")
}

func TestIndexOverwrite(t *testing.T) {
	ix := New()
	seg1 := segstore.NewSegment(2)
	seg2 := segstore.NewSegment(2)
	i1 := seg1.Append(1, 0)
	i2 := seg2.Append(1, 1)
	ix.Put(1, seg1, i1)
	ix.Put(1, seg2, i2)

	loc, ok := ix.Get(1)
	require.True(t, ok)
	assert.Same(t, seg2, loc.Seg, "overwritten binding should point at seg2")
	assert.Equal(t, i2, loc.Idx)
	assert.Equal(t, 1, ix.Len(), "overwrite must not grow the index")

	_ = i1
}
