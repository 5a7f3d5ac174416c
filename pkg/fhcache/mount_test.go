package fhcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Partitions: 4, Lanes: 2, LaneHiwat: 100}
}

func TestMountLookupFHCreatesThenReuses(t *testing.T) {
	m := NewMount(testOptions())
	key := RootKey("bucket-a")

	fh1, err := m.LookupFH(m.Root(), "bucket-a", KindBucket, key)
	require.NoError(t, err)
	require.NotNil(t, fh1)

	fh2, err := m.LookupFH(m.Root(), "bucket-a", KindBucket, key)
	require.NoError(t, err)
	assert.Same(t, fh1, fh2)
}

func TestMountLookupFHRespectsMaxDepth(t *testing.T) {
	m := NewMount(Options{Partitions: 4, Lanes: 1, LaneHiwat: MaxDepth})
	parent := m.Root()
	for i := 0; i < MaxDepth; i++ {
		key := NewHandleKey(uint64(i+1), "d")
		fh, err := m.LookupFH(parent, "d", KindDirectory, key)
		require.NoError(t, err)
		parent = fh
	}

	_, err := m.LookupFH(parent, "one-too-many", KindFile, NewHandleKey(1, "x"))
	assert.ErrorIs(t, err, ErrPathTooDeep)
}

func TestMountUnrefThenReclaim(t *testing.T) {
	m := NewMount(Options{Partitions: 1, Lanes: 1, LaneHiwat: 1})
	key1 := ChildKey("b", "1")
	key2 := ChildKey("b", "2")

	fh1, err := m.LookupFH(m.Root(), "1", KindFile, key1)
	require.NoError(t, err)
	m.Unref(fh1) // refcount -> 0, eligible for reclaim

	fh2, err := m.LookupFH(m.Root(), "2", KindFile, key2)
	require.NoError(t, err)
	assert.NotNil(t, fh2)

	// fh1 should have been reclaimed out of the index to make room.
	got, latch := m.idx.findLatch(key1)
	latch.Release()
	assert.Nil(t, got)
}

func TestMountCloseDrainsOwnedHandles(t *testing.T) {
	m := NewMount(testOptions())
	_, err := m.LookupFH(m.Root(), "bucket-a", KindBucket, RootKey("bucket-a"))
	require.NoError(t, err)

	assert.Equal(t, 1, m.Stats().HandleCount)
	m.Close()
	assert.Equal(t, 0, m.Stats().HandleCount)

	_, err = m.LookupFH(m.Root(), "bucket-b", KindBucket, RootKey("bucket-b"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMountLookupFHReturnsOutOfHandlesWhenLaneFull(t *testing.T) {
	m := NewMount(Options{Partitions: 1, Lanes: 1, LaneHiwat: 1})
	fh1, err := m.LookupFH(m.Root(), "1", KindFile, ChildKey("b", "1"))
	require.NoError(t, err)
	require.NotNil(t, fh1) // refcount 1, never unreffed: not reclaimable

	_, err = m.LookupFH(m.Root(), "2", KindFile, ChildKey("b", "2"))
	assert.ErrorIs(t, err, ErrOutOfHandles)

	// The failed lookup must not have left a dangling index entry.
	got, latch := m.idx.findLatch(ChildKey("b", "2"))
	latch.Release()
	assert.Nil(t, got)
}
