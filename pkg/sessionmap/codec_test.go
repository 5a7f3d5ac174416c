package sessionmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := NewSession("client-1")
	s.GrantPrealloc(100, 10)
	ino, ok := s.TakeIno(0)
	require.True(t, ok)
	assert.Equal(t, uint64(100), ino)
	s.AddCompletedRequest(7)

	data, err := s.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, s.ClientID, decoded.ClientID)
	assert.True(t, decoded.HaveCompletedRequest(7))

	// used_inos folds back into prealloc on decode, so the taken inode 100
	// becomes available again rather than being permanently lost.
	assert.True(t, decoded.prealloc.Contains(100))
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := Decode([]byte{99})
	assert.Error(t, err)
}
