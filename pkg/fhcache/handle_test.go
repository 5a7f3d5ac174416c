package fhcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullObjectNameNestedPath(t *testing.T) {
	bucket := newFileHandle(RootKey("b"), "b", KindBucket, nil)
	dir := newFileHandle(NewHandleKey(bucket.key.BucketHash, "dir"), "dir", KindDirectory, bucket)
	file := newFileHandle(NewHandleKey(dir.key.BucketHash, "f.txt"), "f.txt", KindFile, dir)

	assert.Equal(t, "", bucket.FullObjectName())
	assert.Equal(t, "dir", dir.FullObjectName())
	assert.Equal(t, "dir/f.txt", file.FullObjectName())
}

func TestBucketNameWalksToRoot(t *testing.T) {
	bucket := newFileHandle(RootKey("b"), "b", KindBucket, nil)
	dir := newFileHandle(NewHandleKey(bucket.key.BucketHash, "dir"), "dir", KindDirectory, bucket)
	assert.Equal(t, "b", dir.BucketName())
}

func TestRefFailsAfterMarkReclaim(t *testing.T) {
	fh := newFileHandle(ChildKey("b", "f"), "f", KindFile, nil)
	assert.True(t, fh.markReclaim())
	assert.False(t, fh.ref())
}

func TestMarkReclaimFailsWhileReferenced(t *testing.T) {
	fh := newFileHandle(ChildKey("b", "f"), "f", KindFile, nil)
	fh.refcount = 1
	assert.False(t, fh.markReclaim())
}

func TestAddMarkerFindMarker(t *testing.T) {
	dir := newFileHandle(RootKey("b"), "b", KindDirectory, nil)
	dir.addMarker("a.txt")

	name, ok := dir.findMarker(hashString("a.txt"))
	assert.True(t, ok)
	assert.Equal(t, "a.txt", name)

	_, ok = dir.findMarker(hashString("missing"))
	assert.False(t, ok)
}

func TestFindMarkerOnEmptyCache(t *testing.T) {
	dir := newFileHandle(RootKey("b"), "b", KindDirectory, nil)
	_, ok := dir.findMarker(hashString("a.txt"))
	assert.False(t, ok)
}

func TestFileHandleOpenTwiceReturnsPermissionDenied(t *testing.T) {
	fh := newFileHandle(ChildKey("b", "f"), "f", KindFile, nil)

	require.NoError(t, fh.Open(0))
	err := fh.Open(0)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	fh.Close()
	assert.NoError(t, fh.Open(0))
}
