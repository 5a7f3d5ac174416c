package fhcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFindLatchMissThenInsert(t *testing.T) {
	idx := newIndex(4)
	key := ChildKey("bucket-a", "obj.txt")

	fh, latch := idx.findLatch(key)
	assert.Nil(t, fh)

	created := newFileHandle(key, "obj.txt", KindFile, nil)
	require.NoError(t, idx.insertLatched(latch, key, created))

	got, latch2 := idx.findLatch(key)
	latch2.Release()
	assert.Same(t, created, got)
}

func TestIndexInsertLatchedDuplicateIsFatal(t *testing.T) {
	idx := newIndex(4)
	key := ChildKey("bucket-a", "obj.txt")

	_, latch := idx.findLatch(key)
	fh1 := newFileHandle(key, "obj.txt", KindFile, nil)
	require.NoError(t, idx.insertLatched(latch, key, fh1))

	_, latch2 := idx.findLatch(key)
	fh2 := newFileHandle(key, "obj.txt", KindFile, nil)
	err := idx.insertLatched(latch2, key, fh2)
	assert.ErrorIs(t, err, ErrFatalInvariant)
}

func TestIndexEraseLatched(t *testing.T) {
	idx := newIndex(4)
	key := ChildKey("bucket-a", "obj.txt")

	_, latch := idx.findLatch(key)
	fh := newFileHandle(key, "obj.txt", KindFile, nil)
	require.NoError(t, idx.insertLatched(latch, key, fh))

	_, latch2 := idx.findLatch(key)
	idx.eraseLatched(latch2, key)

	got, latch3 := idx.findLatch(key)
	latch3.Release()
	assert.Nil(t, got)
}

func TestIndexDrainMatches(t *testing.T) {
	idx := newIndex(2)
	keyA := ChildKey("bucket-a", "a.txt")
	keyB := ChildKey("bucket-a", "b.txt")

	_, la := idx.findLatch(keyA)
	fhA := newFileHandle(keyA, "a.txt", KindFile, nil)
	fhA.stat.Dev = 1
	require.NoError(t, idx.insertLatched(la, keyA, fhA))

	_, lb := idx.findLatch(keyB)
	fhB := newFileHandle(keyB, "b.txt", KindFile, nil)
	fhB.stat.Dev = 2
	require.NoError(t, idx.insertLatched(lb, keyB, fhB))

	var drained []string
	idx.drain(
		func(fh *FileHandle) bool { return fh.stat.Dev == 1 },
		func(fh *FileHandle) { drained = append(drained, fh.name) },
	)

	assert.Equal(t, []string{"a.txt"}, drained)
	assert.Equal(t, 1, idx.len())
}
