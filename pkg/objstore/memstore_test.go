package objstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStorePutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.CreateBucket(ctx, "b"))
	require.NoError(t, s.PutObject(ctx, "b", "k", []byte("hello world")))

	got, err := s.GetObjectAll(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	info, err := s.StatObject(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)
}

func TestMemStoreChunkedPutAssemblesInOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.CreateBucket(ctx, "b"))

	id, err := s.BeginPut(ctx, "b", "k")
	require.NoError(t, err)
	require.NoError(t, s.PutChunk(ctx, id, 6, []byte("world")))
	require.NoError(t, s.PutChunk(ctx, id, 0, []byte("hello ")))
	_, err = s.FinishPut(ctx, id)
	require.NoError(t, err)

	got, err := s.GetObjectAll(ctx, "b", "k")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))
}

func TestMemStoreListBucketRespectsMarker(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.CreateBucket(ctx, "b"))
	require.NoError(t, s.PutObject(ctx, "b", "a", nil))
	require.NoError(t, s.PutObject(ctx, "b", "b", nil))
	require.NoError(t, s.PutObject(ctx, "b", "c", nil))

	var keys []string
	require.NoError(t, s.ListBucket(ctx, "b", "a", 0, func(k string) bool {
		keys = append(keys, k)
		return true
	}))
	assert.Equal(t, []string{"b", "c"}, keys)
}

func TestMemStoreDeleteObjectNotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	require.NoError(t, s.CreateBucket(ctx, "b"))
	err := s.DeleteObject(ctx, "b", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
