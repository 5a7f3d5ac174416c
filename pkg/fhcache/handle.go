package fhcache

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/btree"
)

// Kind distinguishes the three handle variants the original keeps as a
// tagged union (directory/file/symlink-less bucket root, per spec.md's
// restriction to buckets and objects).
type Kind int

const (
	KindBucket Kind = iota
	KindDirectory
	KindFile
)

// Flag bits, matching rgw_file.h's FLAG_* bitset. Not every original flag
// has a use here: FLAG_LOCK named a now-removed per-handle mutex the
// original used before moving locking into the cache-wide partition latch,
// so it has no Go equivalent.
type Flag uint32

const (
	FlagNone      Flag = 0
	FlagOpen      Flag = 1 << 0
	FlagRoot      Flag = 1 << 1
	FlagCreating  Flag = 1 << 2
	FlagPseudo    Flag = 1 << 3
	FlagDeleted   Flag = 1 << 4
	FlagReclaim   Flag = 1 << 5 // marked as a reclaim victim; Ref must fail
)

// MaxDepth bounds path depth, matching rgw_file.h's MAX_DEPTH and
// spec.md's PATH_TOO_DEEP edge case.
const MaxDepth = 256

// Stat is the subset of handle metadata the namespace layer tracks
// independent of the backing object store, matching rgw_file.h's nested
// `state` struct.
type Stat struct {
	Dev   uint64
	Size  uint64
	Nlink uint32
	Ctime time.Time
	Mtime time.Time
	Atime time.Time
}

// DirState holds the directory variant's fields: a marker cache for
// resumable listings (spec.md §4.4's add_marker/find_marker) and a
// completion flag once a full listing has been cached once.
type DirState struct {
	markerCache *btree.BTree // cookie (H(name)) -> markerItem{cookie, name}
	complete    bool
}

// markerItem is one entry of a directory's marker cache: the NFS readdir
// cookie an entry's name hashes to, and the name itself, so a client
// resuming a listing at a given cookie can be handed back the name it
// last saw. Matches rgw_file.h's RGWFileHandle::marker_cache, an
// ordered map from offset to name.
type markerItem struct {
	cookie uint64
	name   string
}

func (m markerItem) Less(than btree.Item) bool {
	return m.cookie < than.(markerItem).cookie
}

// FileState holds the file variant's in-progress write continuation,
// populated by pkg/rgwfs/ops.WriteOp and consumed by Close/WriteFinish.
type FileState struct {
	activeWrite *WriteState
}

// FileHandle is C4: one cached handle identified by HandleKey, holding a
// refcount, an LRU lane position, and a variant body selected by Kind.
type FileHandle struct {
	mu sync.Mutex

	key    HandleKey
	name   string
	kind   Kind
	flags  Flag
	depth  int
	parent *FileHandle // nil for bucket roots

	bucketName string
	objectName string

	stat Stat

	dir  DirState
	file FileState

	refcount int32

	lruElem *list.Element
	lane    *lruLane
}

func newFileHandle(key HandleKey, name string, kind Kind, parent *FileHandle) *FileHandle {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &FileHandle{
		key:    key,
		name:   name,
		kind:   kind,
		parent: parent,
		depth:  depth,
	}
}

// Key returns the handle's index key.
func (fh *FileHandle) Key() HandleKey { return fh.key }

// Name returns the handle's leaf name within its parent.
func (fh *FileHandle) Name() string { return fh.name }

// Kind returns the handle's variant tag.
func (fh *FileHandle) Kind() Kind { return fh.kind }

// Depth returns the handle's distance from its mount root, for MaxDepth
// enforcement during lookup.
func (fh *FileHandle) Depth() int { return fh.depth }

// Parent returns the containing handle, or nil for a bucket root.
func (fh *FileHandle) Parent() *FileHandle { return fh.parent }

// Stat returns a copy of the handle's cached metadata.
func (fh *FileHandle) Stat() Stat {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.stat
}

// SetStat overwrites the handle's cached metadata, used after a successful
// adapter call refreshes size/mtime from the backing store.
func (fh *FileHandle) SetStat(s Stat) {
	fh.mu.Lock()
	fh.stat = s
	fh.mu.Unlock()
}

// BucketName returns the name of the bucket this handle lives under (itself,
// if this handle is a bucket root), matching rgw_file.h's bucket_name().
func (fh *FileHandle) BucketName() string {
	if fh.kind == KindBucket {
		return fh.name
	}
	if fh.parent != nil {
		return fh.parent.BucketName()
	}
	return ""
}

// FullObjectName renders the slash-joined path from the bucket root down to
// this handle, matching rgw_file.h's full_object_name(), used as the backing
// object store key.
func (fh *FileHandle) FullObjectName() string {
	if fh.kind == KindBucket || fh.parent == nil {
		return ""
	}
	parentPath := fh.parent.FullObjectName()
	if parentPath == "" {
		return fh.name
	}
	return parentPath + "/" + fh.name
}

// ref increments the refcount and returns false without incrementing if the
// handle is marked for reclaim, matching rgw_file.h's ref() returning failure
// against a handle mid-eviction.
func (fh *FileHandle) ref() bool {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.flags&FlagReclaim != 0 {
		return false
	}
	fh.refcount++
	return true
}

// unref decrements the refcount and reports whether it reached zero.
func (fh *FileHandle) unref() bool {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.refcount--
	return fh.refcount == 0
}

// refs reports the current refcount, used by the lane's reclaim scan.
func (fh *FileHandle) refs() int32 {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.refcount
}

// markReclaim sets FlagReclaim if the handle is currently unreferenced,
// returning whether it succeeded. Once set, concurrent ref() calls fail,
// giving the reclaimer exclusive license to erase the handle.
func (fh *FileHandle) markReclaim() bool {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.refcount != 0 || fh.flags&FlagOpen != 0 {
		return false
	}
	fh.flags |= FlagReclaim
	return true
}

// addMarker records name under the NFS readdir cookie H(name), matching
// rgw_file.h's add_marker(). The cookie is computed with the same seeded
// hash used for HandleKey.ObjectHash, so a cookie handed to a client during
// one Readdir pass and presented back on a later one always resolves to the
// same name.
func (fh *FileHandle) addMarker(name string) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.dir.markerCache == nil {
		fh.dir.markerCache = btree.New(32)
	}
	fh.dir.markerCache.ReplaceOrInsert(markerItem{cookie: hashString(name), name: name})
}

// findMarker returns the name recorded under cookie, if any, matching
// rgw_file.h's find_marker(): a client resuming a listing at cookie gets
// back the name whose hash produced it.
func (fh *FileHandle) findMarker(cookie uint64) (string, bool) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.dir.markerCache == nil {
		return "", false
	}
	item := fh.dir.markerCache.Get(markerItem{cookie: cookie})
	if item == nil {
		return "", false
	}
	return item.(markerItem).name, true
}

// OpenWrite starts a write continuation for this handle, matching
// rgw_file.h's open() allocating a write_req on first write. Returns
// ErrAlreadyExists if a write is already in progress: the original
// serializes writers on the handle's own mutex rather than rejecting a
// second writer outright, but this design pushes that serialization up to
// the presentation layer (one fhcache.Mount.LookupFH ref per open fd), so a
// second concurrent OpenWrite on the same handle is a caller bug.
func (fh *FileHandle) OpenWrite() (*WriteState, error) {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.file.activeWrite != nil {
		return nil, ErrAlreadyExists
	}
	fh.flags |= FlagOpen
	fh.file.activeWrite = NewWriteState(fh.BucketName(), fh.FullObjectName())
	return fh.file.activeWrite, nil
}

// ActiveWrite returns the handle's in-progress write continuation, or nil.
func (fh *FileHandle) ActiveWrite() *WriteState {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.file.activeWrite
}

// CloseWrite clears the handle's write continuation and the open flag,
// matching rgw_file.h's write_finish() tearing down write_req once the
// backing PUT has committed.
func (fh *FileHandle) CloseWrite() {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.file.activeWrite = nil
	fh.flags &^= FlagOpen
}

// AddMarker is the exported form of addMarker, used by pkg/rgwfs/ops'
// directory adapters which live outside this package.
func (fh *FileHandle) AddMarker(name string) { fh.addMarker(name) }

// FindMarker is the exported form of findMarker.
func (fh *FileHandle) FindMarker(cookie uint64) (string, bool) { return fh.findMarker(cookie) }

// Cookie returns the NFS readdir cookie for name, matching the H(name) used
// to key the marker cache: a cookie is just the name's ObjectHash.
func Cookie(name string) uint64 { return hashString(name) }

// Open atomically checks and sets FLAG_OPEN, matching rgw_file.h's open():
// opening an already-open handle returns ErrPermissionDenied (EPERM at the
// FUSE boundary) rather than silently succeeding a second time.
func (fh *FileHandle) Open(flags uint32) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.flags&FlagOpen != 0 {
		return ErrPermissionDenied
	}
	fh.flags |= FlagOpen
	return nil
}

// Close clears FLAG_OPEN, matching rgw_file.h's close(). The write
// continuation (OpenWrite/CloseWrite) touches the same bit; Close is a no-op
// if CloseWrite already cleared it.
func (fh *FileHandle) Close() {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.flags &^= FlagOpen
}
