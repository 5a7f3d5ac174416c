package fhcache

import (
	"container/list"
	"sync"
)

// lruLane is one independently-latched LRU list. FileHandle.lruElem and
// FileHandle.lane point back into whichever lane currently holds it so
// unref/touch don't need to search.
type lruLane struct {
	mu    sync.Mutex
	l     *list.List // front = MRU, back = LRU
	hiwat int
}

// laneSet is the LRU lane set (C3): L independent lanes, each bounded by
// hiwat entries. A handle is assigned a lane by its key so that reclaim
// pressure on one lane doesn't require latching every lane, matching the
// original's per-lane lru_lock striping.
type laneSet struct {
	lanes []lruLane
}

func newLaneSet(numLanes, hiwat int) *laneSet {
	if numLanes < 1 {
		numLanes = 1
	}
	ls := &laneSet{lanes: make([]lruLane, numLanes)}
	for i := range ls.lanes {
		ls.lanes[i].l = list.New()
		ls.lanes[i].hiwat = hiwat
	}
	return ls
}

func (ls *laneSet) laneFor(key HandleKey) *lruLane {
	return &ls.lanes[key.ObjectHash%uint64(len(ls.lanes))]
}

// insert places fh at the MRU end of its lane, evicting a reclaim candidate
// from the LRU end first if the lane is at or over its high watermark. It
// calls tryReclaim with the lane latch released, since reclaiming a victim
// requires acquiring that victim's index partition latch (lock order:
// index partition, then lane — see index.findLatch/eraseLatched), which
// must never be acquired while holding a lane latch to avoid the inverted
// order deadlock the design calls out. Returns false, admitting nothing,
// when the lane is full and no candidate in it is reclaimable, matching the
// design's OUT_OF_HANDLES boundary.
func (ls *laneSet) insert(fh *FileHandle, tryReclaim func(*FileHandle) bool) bool {
	lane := ls.laneFor(fh.key)

	lane.mu.Lock()
	over := lane.l.Len() >= lane.hiwat
	lane.mu.Unlock()

	if over && !ls.reclaimOne(lane, tryReclaim) {
		return false
	}

	lane.mu.Lock()
	fh.lruElem = lane.l.PushFront(fh)
	fh.lane = lane
	lane.mu.Unlock()
	return true
}

// reclaimOne walks lane from the LRU end looking for a handle tryReclaim
// accepts (refcount zero, not pinned open). It stops after the first
// successful reclaim, or reports false after exhausting the lane without
// reclaiming anything (every entry referenced or pinned open).
func (ls *laneSet) reclaimOne(lane *lruLane, tryReclaim func(*FileHandle) bool) bool {
	lane.mu.Lock()
	var candidates []*FileHandle
	for e := lane.l.Back(); e != nil; e = e.Prev() {
		candidates = append(candidates, e.Value.(*FileHandle))
	}
	lane.mu.Unlock()

	for _, victim := range candidates {
		if tryReclaim(victim) {
			lane.mu.Lock()
			if victim.lruElem != nil && victim.lane == lane {
				lane.l.Remove(victim.lruElem)
				victim.lruElem = nil
				victim.lane = nil
			}
			lane.mu.Unlock()
			return true
		}
	}
	return false
}

// touch moves fh to the MRU end of its lane. No-op if fh isn't currently in
// a lane (it may be mid-reclaim).
func (ls *laneSet) touch(fh *FileHandle) {
	lane := fh.lane
	if lane == nil {
		return
	}
	lane.mu.Lock()
	if fh.lruElem != nil {
		lane.l.MoveToFront(fh.lruElem)
	}
	lane.mu.Unlock()
}

// remove takes fh out of its lane unconditionally, used when a handle is
// erased from the index directly (e.g. an explicit unlink) rather than
// through LRU-driven reclaim.
func (ls *laneSet) remove(fh *FileHandle) {
	lane := fh.lane
	if lane == nil {
		return
	}
	lane.mu.Lock()
	if fh.lruElem != nil {
		lane.l.Remove(fh.lruElem)
		fh.lruElem = nil
		fh.lane = nil
	}
	lane.mu.Unlock()
}

func (ls *laneSet) len() int {
	n := 0
	for i := range ls.lanes {
		ls.lanes[i].mu.Lock()
		n += ls.lanes[i].l.Len()
		ls.lanes[i].mu.Unlock()
	}
	return n
}
