package fhcache

import "sync"

// index is the sharded handle index (C2): P partitions, each an
// independently-latched map[HandleKey]*FileHandle. A handle's partition is
// fixed by its key, so concurrent lookups/inserts on different keys that
// happen to hash to different partitions never contend.
type index struct {
	partitions []partition
}

type partition struct {
	mu sync.Mutex
	m  map[HandleKey]*FileHandle
}

func newIndex(numPartitions int) *index {
	if numPartitions < 1 {
		numPartitions = 1
	}
	idx := &index{partitions: make([]partition, numPartitions)}
	for i := range idx.partitions {
		idx.partitions[i].m = make(map[HandleKey]*FileHandle)
	}
	return idx
}

func (ix *index) partitionFor(key HandleKey) *partition {
	return &ix.partitions[key.ObjectHash%uint64(len(ix.partitions))]
}

// Latch is a held partition lock returned by findLatch. The caller must
// call Release exactly once, either directly or via insertLatched/eraseLatched
// which release it as part of mutating the partition.
type Latch struct {
	p *partition
}

// Release drops the partition latch without mutating anything. Safe to call
// on a zero Latch (p == nil); findLatch itself always returns a held latch.
func (l Latch) Release() {
	if l.p != nil {
		l.p.mu.Unlock()
	}
}

// findLatch looks up key's partition, returning the current occupant (nil if
// absent) and a Latch held on that partition. The caller decides whether to
// Release immediately (read-only lookup) or keep holding it across a
// subsequent insertLatched/eraseLatched to avoid a second goroutine racing in
// between — this is why Mount.LookupFH is written as a retry loop rather
// than a single lookup-then-insert pair.
func (ix *index) findLatch(key HandleKey) (*FileHandle, Latch) {
	p := ix.partitionFor(key)
	p.mu.Lock()
	return p.m[key], Latch{p: p}
}

// insertLatched inserts fh under key using a Latch obtained from findLatch
// on the same key, then releases it. Returns ErrFatalInvariant if another
// handle is already present under the key: that can only happen if the
// caller failed to keep holding the latch between find and insert, which is
// a programming error in this package, not a runtime condition callers of
// Mount ever observe.
func (ix *index) insertLatched(l Latch, key HandleKey, fh *FileHandle) error {
	defer l.Release()
	if _, exists := l.p.m[key]; exists {
		return ErrFatalInvariant
	}
	l.p.m[key] = fh
	return nil
}

// eraseLatched removes key from the index using a held latch, then releases
// it. Erasing an absent key is a no-op, matching the original's tolerance
// for racing with a concurrent LRU-driven reclaim.
func (ix *index) eraseLatched(l Latch, key HandleKey) {
	defer l.Release()
	delete(l.p.m, key)
}

// drain removes every handle for which match returns true, calling onEach
// under the owning partition's latch before removal. Used by Mount.Close to
// tear down all handles belonging to an unmounted filesystem.
func (ix *index) drain(match func(*FileHandle) bool, onEach func(*FileHandle)) {
	for i := range ix.partitions {
		p := &ix.partitions[i]
		p.mu.Lock()
		for key, fh := range p.m {
			if match(fh) {
				onEach(fh)
				delete(p.m, key)
			}
		}
		p.mu.Unlock()
	}
}

// forEach calls visit for every handle currently in the index, stopping
// early if visit returns false. Used for read-only sweeps such as listing
// every cached bucket handle; unlike drain it never removes anything.
func (ix *index) forEach(visit func(*FileHandle) bool) {
	for i := range ix.partitions {
		p := &ix.partitions[i]
		p.mu.Lock()
		for _, fh := range p.m {
			if !visit(fh) {
				p.mu.Unlock()
				return
			}
		}
		p.mu.Unlock()
	}
}

func (ix *index) len() int {
	n := 0
	for i := range ix.partitions {
		p := &ix.partitions[i]
		p.mu.Lock()
		n += len(p.m)
		p.mu.Unlock()
	}
	return n
}
