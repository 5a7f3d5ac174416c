package ops

import (
	"context"
	"strings"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
)

// DirEntry is one row of a directory listing. Cookie is the NFS readdir
// cookie a client resumes a paused listing at (H(name)); Marker is the
// backing store's own continuation token for that entry, a distinct
// pagination concept the object store uses internally.
type DirEntry struct {
	Name   string
	Cookie uint64
	Marker string
}

// ReaddirOp lists the objects and pseudo-directories nested directly under
// dir, matching RGWReaddirRequest's marker-driven pagination. It delegates
// to the store's flat key listing and folds consecutive keys sharing a
// "/"-delimited prefix into a single pseudo-directory entry, the same
// flattening original_source performs over RGW's flat bucket namespace.
type ReaddirOp struct {
	Store objstore.Store
}

// Exec lists entries under dir (a full_object_name-style prefix, "" for the
// bucket root) starting after marker, caching each marker transition on dir
// via add_marker so a subsequent call can resume, matching
// RGWReaddirRequest's use of RGWFileHandle::add_marker/find_marker.
func (op *ReaddirOp) Exec(ctx context.Context, bucket string, dir *fhcache.FileHandle, marker string, limit int, yield func(DirEntry) bool) error {
	prefix := dir.FullObjectName()
	if prefix != "" {
		prefix += "/"
	}

	startMarker := prefix + marker
	limited := limit > 0
	lastName := ""
	err := op.Store.ListBucket(ctx, bucket, startMarker, 0, func(key string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		rest := key[len(prefix):]
		name := rest
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			name = rest[:idx]
		}
		if name == lastName {
			return true
		}
		lastName = name

		dir.AddMarker(name)
		if limited {
			limit--
		}
		cont := yield(DirEntry{Name: name, Cookie: fhcache.Cookie(name), Marker: key})
		if limited && limit == 0 {
			return false
		}
		return cont
	})
	return err
}
