package ops

import (
	"context"
	"testing"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMount() *fhcache.Mount {
	return fhcache.NewMount(fhcache.Options{Partitions: 4, Lanes: 2, LaneHiwat: 100})
}

func TestCreateAndListBuckets(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	mount := testMount()

	create := &CreateBucketOp{Mount: mount, Store: store}
	_, err := create.Exec(ctx, "bucket-a")
	require.NoError(t, err)

	list := &ListBucketsOp{Mount: mount}
	var names []string
	require.NoError(t, list.Exec(ctx, func(e BucketEntry) bool {
		names = append(names, e.Name)
		return true
	}))
	assert.Equal(t, []string{"bucket-a"}, names)
}

func TestCreateBucketTwiceFails(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	mount := testMount()
	create := &CreateBucketOp{Mount: mount, Store: store}

	_, err := create.Exec(ctx, "bucket-a")
	require.NoError(t, err)
	_, err = create.Exec(ctx, "bucket-a")
	assert.ErrorIs(t, err, fhcache.ErrAlreadyExists)
}

func TestPutAndReadObject(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	require.NoError(t, store.CreateBucket(ctx, "bucket-a"))

	put := &PutObjOp{Store: store}
	info, err := put.Exec(ctx, "bucket-a", "obj.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)

	read := &ReadOp{Store: store}
	var got []byte
	require.NoError(t, read.Exec(ctx, "bucket-a", "obj.txt", 0, 0, func(data []byte) error {
		got = append(got, data...)
		return nil
	}))
	assert.Equal(t, "hello world", string(got))
}

func TestDeleteObjForgetsHandle(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	mount := testMount()
	require.NoError(t, store.CreateBucket(ctx, "bucket-a"))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "obj.txt", []byte("x")))

	bucket, err := mount.LookupFH(mount.Root(), "bucket-a", fhcache.KindBucket, fhcache.RootKey("bucket-a"))
	require.NoError(t, err)
	key := bucket.ChildKey("obj.txt")
	_, err = mount.LookupFH(bucket, "obj.txt", fhcache.KindFile, key)
	require.NoError(t, err)

	del := &DeleteObjOp{Mount: mount, Store: store}
	require.NoError(t, del.Exec(ctx, "bucket-a", "obj.txt", key))

	assert.Equal(t, 1, mount.Stats().HandleCount) // only the bucket handle remains
}

func TestWriteOpStreamsChunksAndFinishes(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	require.NoError(t, store.CreateBucket(ctx, "bucket-a"))

	fh := fhcache.NewMount(fhcache.Options{Partitions: 1, Lanes: 1, LaneHiwat: 10}).Root()
	op := &WriteOp{Store: store, FH: fh}

	require.NoError(t, op.Open(ctx, "bucket-a", "obj.txt"))
	require.NoError(t, op.PutData(ctx, 0, []byte("hello ")))
	require.NoError(t, op.PutData(ctx, 6, []byte("world")))

	info, err := op.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)

	data, err := store.GetObjectAll(ctx, "bucket-a", "obj.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestStatBucketOpNotFound(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	mount := testMount()
	stat := &StatBucketOp{Mount: mount, Store: store}

	_, err := stat.Exec(ctx, "missing")
	assert.ErrorIs(t, err, fhcache.ErrNotFound)
}

func TestStatLeafOpFindsObjectAndPseudoDir(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	require.NoError(t, store.CreateBucket(ctx, "bucket-a"))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "a.txt", []byte("x")))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "dir/b.txt", []byte("y")))

	mount := testMount()
	root := mount.Root()

	leaf := &StatLeafOp{Store: store}

	_, found, err := leaf.Exec(ctx, "bucket-a", root, "a.txt")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = leaf.Exec(ctx, "bucket-a", root, "dir")
	require.NoError(t, err)
	assert.True(t, found, "dir should be found as a pseudo-directory")

	_, found, err = leaf.Exec(ctx, "bucket-a", root, "nonexistent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReaddirOpListsTopLevelEntries(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	require.NoError(t, store.CreateBucket(ctx, "bucket-a"))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "a.txt", nil))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "dir/b.txt", nil))
	require.NoError(t, store.PutObject(ctx, "bucket-a", "dir/c.txt", nil))

	mount := testMount()
	readdir := &ReaddirOp{Store: store}

	var names []string
	require.NoError(t, readdir.Exec(ctx, "bucket-a", mount.Root(), "", 0, func(e DirEntry) bool {
		names = append(names, e.Name)
		return true
	}))
	assert.Equal(t, []string{"a.txt", "dir"}, names)
}
