package sessionmap

import (
	"container/list"
	"sync"
	"time"
)

// State is a session's lifecycle state, matching Session::state_t.
type State int

const (
	StateNew State = iota
	StateOpening
	StateOpen
	StateClosing
	StateStale
	StateKilling
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateStale:
		return "stale"
	case StateKilling:
		return "killing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one client's connection state: its lifecycle state, the
// inode-number ranges it has been granted for new-file creation, and the
// set of request ids it has already completed (for at-most-once semantics
// across client retransmits). Matches SessionMap.h's Session class.
type Session struct {
	mu sync.Mutex

	ClientID string
	state    State
	stateSeq uint64

	pendingPrealloc *IntervalSet
	prealloc        *IntervalSet
	used            *IntervalSet

	completedRequests map[uint64]struct{}
	completedOrder    []uint64 // insertion order, for TrimCompletedRequests

	lastSeenAt time.Time

	// elem links this session into its SessionMap's by-state list; nil
	// when the session isn't linked into any list, which TouchSession
	// treats as a fatal invariant violation (see SessionMap.TouchSession).
	elem *list.Element
}

// NewSession creates a session in StateNew, unlinked from any by-state
// list until the owning SessionMap calls SetState.
func NewSession(clientID string) *Session {
	return &Session{
		ClientID:          clientID,
		state:             StateNew,
		pendingPrealloc:   NewIntervalSet(),
		prealloc:          NewIntervalSet(),
		used:              NewIntervalSet(),
		completedRequests: make(map[uint64]struct{}),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StateSeq returns the monotonically increasing counter bumped on every
// SetState call, used by clients to detect a session reconnect racing a
// state transition.
func (s *Session) StateSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateSeq
}

// TakeIno allocates an inode number for a new file. If want is nonzero, it
// takes exactly that number out of the prealloc set (the client is telling
// the server which number it already chose); otherwise it takes the lowest
// free number. Matches Session::take_ino.
func (s *Session) TakeIno(want uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if want != 0 {
		if s.prealloc.TakeExact(want) {
			s.used.Insert(want, 1)
			return want, true
		}
		return 0, false
	}

	ino, ok := s.prealloc.TakeOne()
	if !ok {
		return 0, false
	}
	s.used.Insert(ino, 1)
	return ino, true
}

// GrantPrealloc folds a freshly allocated range of inode numbers into the
// session's prealloc set, used when the allocator tops up a session that is
// running low. Matches the MDS topping up Session::prealloc_inos.
func (s *Session) GrantPrealloc(start, length uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prealloc.Insert(start, length)
}

// PreallocRemaining reports how many unused preallocated inode numbers the
// session is currently holding.
func (s *Session) PreallocRemaining() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prealloc.Size()
}

// HaveCompletedRequest reports whether tid has already been applied,
// letting the caller short-circuit a client's retransmit instead of
// reapplying a non-idempotent operation.
func (s *Session) HaveCompletedRequest(tid uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completedRequests[tid]
	return ok
}

// AddCompletedRequest records tid as applied.
func (s *Session) AddCompletedRequest(tid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.completedRequests[tid]; ok {
		return
	}
	s.completedRequests[tid] = struct{}{}
	s.completedOrder = append(s.completedOrder, tid)
}

// TrimCompletedRequests drops every recorded tid strictly less than minTid,
// or every recorded tid if minTid is zero, matching the MDS's
// trim_completed_request_log once a client has acknowledged it will never
// retransmit those tids again.
func (s *Session) TrimCompletedRequests(minTid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if minTid == 0 {
		s.completedRequests = make(map[uint64]struct{})
		s.completedOrder = nil
		return
	}

	kept := s.completedOrder[:0:0]
	for _, tid := range s.completedOrder {
		if tid >= minTid {
			kept = append(kept, tid)
		} else {
			delete(s.completedRequests, tid)
		}
	}
	s.completedOrder = kept
}

// Touch updates the session's last-seen timestamp, keeping it out of any
// idle-session reaping sweep.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeenAt = now
	s.mu.Unlock()
}

// LastSeen returns the last time Touch was called.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeenAt
}
