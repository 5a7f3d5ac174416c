package sessionmap

import (
	"context"
	"testing"

	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()

	sm := NewSessionMap()
	s := sm.GetOrAddOpenSession("client-1")
	s.GrantPrealloc(50, 5)

	require.NoError(t, sm.Save(ctx, store, s))

	sm2 := NewSessionMap()
	loaded, err := sm2.Load(ctx, store, "client-1")
	require.NoError(t, err)

	assert.Equal(t, "client-1", loaded.ClientID)
	assert.Equal(t, StateOpen, loaded.State())
	assert.Same(t, loaded, sm2.GetOldestSession(StateOpen))
}

func TestLoadMissingSessionReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemStore()
	sm := NewSessionMap()

	_, err := sm.Load(ctx, store, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}
