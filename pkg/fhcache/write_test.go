package fhcache

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStatePutDataContiguous(t *testing.T) {
	w := NewWriteState("bucket-a", "obj.txt")
	require.NoError(t, w.PutData(0, []byte("hello ")))
	require.NoError(t, w.PutData(6, []byte("world")))

	assert.Equal(t, uint64(11), w.Size())
	assert.Equal(t, md5.Sum([]byte("hello world")), w.MD5())
}

func TestWriteStatePutDataRejectsNonContiguous(t *testing.T) {
	w := NewWriteState("bucket-a", "obj.txt")
	require.NoError(t, w.PutData(0, []byte("hello")))

	err := w.PutData(10, []byte("gap"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
