package fhcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysReject(*FileHandle) bool { return false }

func TestLaneSetInsertAndTouch(t *testing.T) {
	ls := newLaneSet(1, 10)
	fh1 := newFileHandle(ChildKey("b", "1"), "1", KindFile, nil)
	fh2 := newFileHandle(ChildKey("b", "2"), "2", KindFile, nil)

	ls.insert(fh1, alwaysReject)
	ls.insert(fh2, alwaysReject)
	assert.Equal(t, 2, ls.len())

	ls.touch(fh1)
	lane := ls.laneFor(fh1.key)
	assert.Same(t, fh1, lane.l.Front().Value.(*FileHandle))
}

func TestLaneSetReclaimAtHiwat(t *testing.T) {
	ls := newLaneSet(1, 1)
	fh1 := newFileHandle(ChildKey("b", "1"), "1", KindFile, nil)
	fh2 := newFileHandle(ChildKey("b", "2"), "2", KindFile, nil)

	assert.True(t, ls.insert(fh1, alwaysReject))

	var reclaimed *FileHandle
	accept := func(fh *FileHandle) bool {
		reclaimed = fh
		return true
	}
	assert.True(t, ls.insert(fh2, accept))

	assert.Same(t, fh1, reclaimed)
	assert.Equal(t, 1, ls.len())
}

func TestLaneSetInsertFailsWhenNothingReclaimable(t *testing.T) {
	ls := newLaneSet(1, 1)
	fh1 := newFileHandle(ChildKey("b", "1"), "1", KindFile, nil)
	fh2 := newFileHandle(ChildKey("b", "2"), "2", KindFile, nil)

	require.True(t, ls.insert(fh1, alwaysReject))
	assert.False(t, ls.insert(fh2, alwaysReject))
	assert.Equal(t, 1, ls.len())
}

func TestLaneSetRemove(t *testing.T) {
	ls := newLaneSet(1, 10)
	fh := newFileHandle(ChildKey("b", "1"), "1", KindFile, nil)
	ls.insert(fh, alwaysReject)
	assert.Equal(t, 1, ls.len())

	ls.remove(fh)
	assert.Equal(t, 0, ls.len())
	assert.Nil(t, fh.lruElem)
}
