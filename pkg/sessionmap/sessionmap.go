package sessionmap

import (
	"container/list"
	"sync"
)

// SessionMap is C6: the server-side table of every client session, indexed
// by client id and additionally linked into per-state lists so the oldest
// session in a given state can be found in O(1), matching SessionMap.h's
// session_map plus by_state.
type SessionMap struct {
	mu sync.Mutex

	byName  map[string]*Session
	byState map[State]*list.List

	version     uint64
	projected   uint64
	committing  uint64
	committed   uint64
	commitWaiters map[uint64][]chan struct{}
}

// NewSessionMap returns an empty map.
func NewSessionMap() *SessionMap {
	sm := &SessionMap{
		byName:        make(map[string]*Session),
		byState:       make(map[State]*list.List),
		commitWaiters: make(map[uint64][]chan struct{}),
	}
	for _, st := range []State{StateNew, StateOpening, StateOpen, StateClosing, StateStale, StateKilling, StateClosed} {
		sm.byState[st] = list.New()
	}
	return sm
}

// GetSession returns the session for clientID, or nil if none exists.
func (sm *SessionMap) GetSession(clientID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.byName[clientID]
}

// GetOrAddOpenSession returns the existing session for clientID if present,
// otherwise creates one in StateOpen and links it, matching
// SessionMap::get_or_add_session used on a client's first successful
// reconnect handshake.
func (sm *SessionMap) GetOrAddOpenSession(clientID string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s, ok := sm.byName[clientID]; ok {
		return s
	}

	s := NewSession(clientID)
	s.state = StateOpen
	sm.byName[clientID] = s
	sm.linkLocked(s, StateOpen)
	return s
}

// SetState transitions s to newState, bumping its state sequence and
// relinking it into the corresponding by-state list. Matches
// SessionMap::set_state.
func (sm *SessionMap) SetState(s *Session, newState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s.mu.Lock()
	old := s.state
	s.state = newState
	s.stateSeq++
	s.mu.Unlock()

	if old == newState {
		return
	}
	sm.unlinkLocked(s, old)
	sm.linkLocked(s, newState)
}

func (sm *SessionMap) linkLocked(s *Session, st State) {
	l := sm.byState[st]
	s.elem = l.PushBack(s)
}

func (sm *SessionMap) unlinkLocked(s *Session, st State) {
	if s.elem == nil {
		return
	}
	l := sm.byState[st]
	l.Remove(s.elem)
	s.elem = nil
}

// TouchSession moves s to the back of its current state's list, keeping it
// furthest from eviction by age-based reaping. Returns ErrFatalInvariant if
// s is not currently linked into any list, matching the original's assert
// that touch_session is never called on an unlinked session.
func (sm *SessionMap) TouchSession(s *Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s.elem == nil {
		return ErrFatalInvariant
	}
	l := sm.byState[s.State()]
	l.MoveToBack(s.elem)
	return nil
}

// GetOldestSession returns the session that has been in st the longest, or
// nil if none are in that state. Matches SessionMap::get_oldest_session's
// O(1) front-of-list lookup.
func (sm *SessionMap) GetOldestSession(st State) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	l := sm.byState[st]
	if l.Len() == 0 {
		return nil
	}
	return l.Front().Value.(*Session)
}

// RemoveSession fully unlinks and removes s from the map, used once a
// session reaches StateClosed and its resources (prealloc inodes, completed
// request log) are no longer needed.
func (sm *SessionMap) RemoveSession(s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.unlinkLocked(s, s.State())
	delete(sm.byName, s.ClientID)
}

// Sessions calls visit for every session in the map, stopping early if
// visit returns false. Used by the admin listing, which needs every
// session rather than just the oldest in a given state.
func (sm *SessionMap) Sessions(visit func(*Session) bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, s := range sm.byName {
		if !visit(s) {
			return
		}
	}
}

// Len returns the total number of sessions, regardless of state.
func (sm *SessionMap) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.byName)
}

// Version returns the map's current committed version, advanced by Save.
func (sm *SessionMap) Version() uint64 {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.version
}
