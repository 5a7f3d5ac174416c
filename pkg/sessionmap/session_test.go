package sessionmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTakeInoSpecific(t *testing.T) {
	s := NewSession("client-1")
	s.GrantPrealloc(100, 10) // [100,110)

	ino, ok := s.TakeIno(105)
	require.True(t, ok)
	assert.Equal(t, uint64(105), ino)
	assert.Equal(t, uint64(9), s.PreallocRemaining())

	_, ok = s.TakeIno(105)
	assert.False(t, ok, "same inode cannot be taken twice")
}

func TestSessionTakeInoLowestFree(t *testing.T) {
	s := NewSession("client-1")
	s.GrantPrealloc(100, 3) // {100,101,102}

	ino, ok := s.TakeIno(0)
	require.True(t, ok)
	assert.Equal(t, uint64(100), ino)
}

func TestSessionTakeInoExhausted(t *testing.T) {
	s := NewSession("client-1")
	_, ok := s.TakeIno(0)
	assert.False(t, ok)
}

func TestSessionCompletedRequestDedup(t *testing.T) {
	s := NewSession("client-1")
	assert.False(t, s.HaveCompletedRequest(42))
	s.AddCompletedRequest(42)
	assert.True(t, s.HaveCompletedRequest(42))
}

func TestSessionTrimCompletedRequests(t *testing.T) {
	s := NewSession("client-1")
	s.AddCompletedRequest(1)
	s.AddCompletedRequest(2)
	s.AddCompletedRequest(3)

	s.TrimCompletedRequests(2)

	assert.False(t, s.HaveCompletedRequest(1), "strictly less than minTid is dropped")
	assert.True(t, s.HaveCompletedRequest(2), "minTid itself is kept")
	assert.True(t, s.HaveCompletedRequest(3))
}

func TestSessionTrimCompletedRequestsZeroClearsAll(t *testing.T) {
	s := NewSession("client-1")
	s.AddCompletedRequest(1)
	s.AddCompletedRequest(2)

	s.TrimCompletedRequests(0)

	assert.False(t, s.HaveCompletedRequest(1))
	assert.False(t, s.HaveCompletedRequest(2))
}
