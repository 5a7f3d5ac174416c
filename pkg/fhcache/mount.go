package fhcache

import (
	"strings"
	"sync/atomic"

	"github.com/cohortfs/rgwfs/pkg/clog"
)

// Mount is the filesystem context (C5): the per-mount namespace root that
// owns a handle index and LRU lane set and mediates every lookup through
// them. Multiple Mounts can share a process (one per client session), each
// with its own instance id, matching rgw_file.h's RGWLibFS::fs_inst.
type Mount struct {
	inst uint64

	idx   *index
	lanes *laneSet

	root *FileHandle

	closed atomic.Bool
}

var instCounter uint64

// Options configures a Mount's cache dimensions, sourced from
// pkg/config.RGWFSConfig at daemon startup.
type Options struct {
	Partitions int
	Lanes      int
	LaneHiwat  int
}

// NewMount creates a Mount rooted at a synthetic pseudo-root handle, the
// parent of every top-level bucket, matching rgw_file.h's root fhandle with
// FLAG_ROOT set.
func NewMount(opts Options) *Mount {
	inst := atomic.AddUint64(&instCounter, 1)

	root := newFileHandle(ZeroKey, "/", KindDirectory, nil)
	root.flags |= FlagRoot
	root.stat.Dev = inst

	m := &Mount{
		inst:  inst,
		idx:   newIndex(opts.Partitions),
		lanes: newLaneSet(opts.Lanes, opts.LaneHiwat),
		root:  root,
	}
	return m
}

// Root returns the mount's pseudo-root handle.
func (m *Mount) Root() *FileHandle { return m.root }

// Instance returns the mount's instance id, used as the dev field reported
// by Stat on every handle belonging to this mount.
func (m *Mount) Instance() uint64 { return m.inst }

// LookupFH finds or creates the handle for name under parent, retrying the
// find/insert race as the original's RGWLibFS::lookup_fh does: a concurrent
// inserter can win between this goroutine's failed find and its own insert
// attempt, so on an insert conflict we simply look again rather than
// failing. kind and key must describe the same handle consistently across
// retries; callers get that by deriving key deterministically from
// (parent.Key(), name).
func (m *Mount) LookupFH(parent *FileHandle, name string, kind Kind, key HandleKey) (*FileHandle, error) {
	if m.closed.Load() {
		return nil, ErrNotFound
	}
	if parent != nil && parent.depth+1 > MaxDepth {
		return nil, ErrPathTooDeep
	}

	for {
		fh, latch := m.idx.findLatch(key)
		if fh != nil {
			if !fh.ref() {
				// Found mid-reclaim: release and retry, giving the
				// reclaimer time to finish erasing it so the next
				// findLatch sees it genuinely absent.
				latch.Release()
				continue
			}
			latch.Release()
			m.lanes.touch(fh)
			return fh, nil
		}

		// Not present. Create while still holding the latch so no other
		// goroutine can win the insert race between find and insert.
		created := newFileHandle(key, name, kind, parent)
		created.stat.Dev = m.inst
		created.refcount = 1

		if err := m.idx.insertLatched(latch, key, created); err != nil {
			// Lost the race after all (shouldn't happen given the latch
			// is held continuously, but a caller-driven retry is the
			// documented resolution for this class of invariant
			// violation rather than propagating a panic to a filesystem
			// operation).
			clog.UsingCtx("fhcache").Errorf("insertLatched race on key %+v: %s", key, err)
			continue
		}
		if !m.lanes.insert(created, m.tryReclaim) {
			// Lane full, nothing reclaimable: undo the index insert so the
			// failed lookup leaves no trace, and report OUT_OF_HANDLES.
			_, eraseLatch := m.idx.findLatch(key)
			m.idx.eraseLatched(eraseLatch, key)
			return nil, ErrOutOfHandles
		}
		return created, nil
	}
}

// LookupHandle resolves a slash-separated path from the mount root down,
// matching rgw_file.h's lookup by path components, used by the directory
// adapters (ReaddirOp, StatLeafOp) that address objects by name rather than
// by an already-held handle.
func (m *Mount) LookupHandle(path string) (*FileHandle, error) {
	parent := m.root
	if path == "" || path == "/" {
		if !parent.ref() {
			return nil, ErrFatalInvariant
		}
		return parent, nil
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	var cur *FileHandle
	for i, part := range parts {
		if part == "" {
			continue
		}
		kind := KindFile
		var key HandleKey
		if i == 0 {
			kind = KindBucket
			key = RootKey(part)
		} else {
			kind = KindDirectory
			if i == len(parts)-1 {
				kind = KindFile
			}
			key = parent.ChildKey(part)
		}

		fh, err := m.LookupFH(parent, part, kind, key)
		if err != nil {
			return nil, err
		}
		if cur != nil {
			m.Unref(cur)
		}
		cur = fh
		parent = fh
	}
	if cur == nil {
		return nil, ErrNotFound
	}
	return cur, nil
}

// Ref increments fh's refcount, failing if fh is mid-reclaim.
func (m *Mount) Ref(fh *FileHandle) bool {
	return fh.ref()
}

// Unref decrements fh's refcount. When it reaches zero the handle becomes
// eligible for LRU-driven reclaim but is not erased immediately: it stays
// resident (and findable) until lane pressure actually evicts it, matching
// the original's "ref-drop doesn't imply destroy" contract.
func (m *Mount) Unref(fh *FileHandle) {
	fh.unref()
	m.lanes.touch(fh)
}

// tryReclaim is the LRU lane's victim-acceptance callback: it must acquire
// the victim's index partition latch, matching the documented lock order
// (index partition, then lane) since the lane calls this with its own
// latch already released.
func (m *Mount) tryReclaim(victim *FileHandle) bool {
	if !victim.markReclaim() {
		return false
	}
	_, latch := m.idx.findLatch(victim.key)
	m.idx.eraseLatched(latch, victim.key)
	return true
}

// Close drains every handle belonging to this mount from the index and LRU
// lanes and marks the mount closed. Matches RGWLibFS::close()'s drain of
// its handle table on unmount.
func (m *Mount) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.idx.drain(
		func(fh *FileHandle) bool { return fh.stat.Dev == m.inst },
		func(fh *FileHandle) { m.lanes.remove(fh) },
	)
}

// Handles calls visit for every handle currently cached by this mount,
// stopping early if visit returns false. Used by read-only adapters such as
// ListBucketsOp that enumerate what the cache already knows about rather
// than querying the backing store directly.
func (m *Mount) Handles(visit func(*FileHandle) bool) {
	m.idx.forEach(visit)
}

// Forget erases the handle at key from the index and its LRU lane
// unconditionally, regardless of refcount. Used when the backing store
// confirms an object or bucket no longer exists, so a stale cached handle
// can't keep answering lookups for something that's gone.
func (m *Mount) Forget(key HandleKey) {
	fh, latch := m.idx.findLatch(key)
	if fh == nil {
		latch.Release()
		return
	}
	m.idx.eraseLatched(latch, key)
	m.lanes.remove(fh)
}

// Stats reports current cache occupancy, exposed through the admin API.
type Stats struct {
	HandleCount int
	LRUCount    int
}

func (m *Mount) Stats() Stats {
	return Stats{
		HandleCount: m.idx.len(),
		LRUCount:    m.lanes.len(),
	}
}
