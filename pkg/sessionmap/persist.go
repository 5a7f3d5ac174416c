package sessionmap

import (
	"context"
	"fmt"

	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/hashicorp/go-uuid"
	"github.com/pkg/errors"
)

// sessionMapBucket is the fixed bucket name the session map persists its
// sessions under, independent of any filesystem bucket namespace.
const sessionMapBucket = "__sessionmap"

func sessionObjectName(clientID string) string {
	return fmt.Sprintf("session-map/%s", clientID)
}

// NewClientID mints a fresh client identifier, matching the teacher's
// hashicorp/go-uuid usage for other per-connection identifiers.
func NewClientID() (string, error) {
	return uuid.GenerateUUID()
}

// Save persists s through store, creating the session-map bucket on first
// use. Exercises the same C7 Store contract the filesystem side uses for
// object bytes, per the design's choice to reuse one storage boundary for
// both.
func (sm *SessionMap) Save(ctx context.Context, store objstore.Store, s *Session) error {
	data, err := s.Encode()
	if err != nil {
		return errors.Wrap(err, "sessionmap: encode")
	}

	if err := store.PutObject(ctx, sessionMapBucket, sessionObjectName(s.ClientID), data); err != nil {
		if !errors.Is(err, objstore.ErrNotFound) {
			return errors.Wrap(err, "sessionmap: put")
		}
		if err := store.CreateBucket(ctx, sessionMapBucket); err != nil && !errors.Is(err, objstore.ErrAlreadyExists) {
			return errors.Wrap(err, "sessionmap: create bucket")
		}
		if err := store.PutObject(ctx, sessionMapBucket, sessionObjectName(s.ClientID), data); err != nil {
			return errors.Wrap(err, "sessionmap: put")
		}
	}

	sm.mu.Lock()
	sm.version++
	sm.committed = sm.version
	sm.mu.Unlock()
	return nil
}

// Load reads a previously-saved session for clientID from store and links
// it into the map under the state it was saved in, matching a server restart reattaching a
// reconnecting client to its preserved inode preallocation and completed-
// request log.
func (sm *SessionMap) Load(ctx context.Context, store objstore.Store, clientID string) (*Session, error) {
	data, err := store.GetObjectAll(ctx, sessionMapBucket, sessionObjectName(clientID))
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "sessionmap: get")
	}

	s, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode")
	}

	sm.mu.Lock()
	sm.byName[s.ClientID] = s
	sm.mu.Unlock()
	sm.linkLockedPublic(s, s.state)

	return s, nil
}

// linkLockedPublic links a loaded session into its recorded state's list.
// Load's caller already knows the state from the decoded session, unlike
// GetOrAddOpenSession which always starts a new session in StateOpen.
func (sm *SessionMap) linkLockedPublic(s *Session, st State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.linkLocked(s, st)
}
