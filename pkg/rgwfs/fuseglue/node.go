package fuseglue

import (
	"context"
	"hash/fnv"
	"syscall"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/cohortfs/rgwfs/pkg/rgwfs/ops"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// RootData is the shared state every Node in the tree reaches back into:
// the handle cache Mount and the backing Store, matching the teacher's own
// RootData-carries-the-backend convention.
type RootData struct {
	Mount *fhcache.Mount
	Store objstore.Store
}

// Node is one fs.Inode's backing data: the shared RootData and the
// FileHandle it presents, from which object-store calls derive the bucket
// name and relative path. Matches the teacher's Node wrapping one
// backend-specific identity per inode.
type Node struct {
	fs.Inode

	root *RootData
	fh   *fhcache.FileHandle
}

var _ fs.NodeLookuper = (*Node)(nil)
var _ fs.NodeReaddirer = (*Node)(nil)
var _ fs.NodeGetattrer = (*Node)(nil)
var _ fs.NodeOpener = (*Node)(nil)
var _ fs.NodeCreater = (*Node)(nil)
var _ fs.NodeMkdirer = (*Node)(nil)
var _ fs.NodeUnlinker = (*Node)(nil)
var _ fs.NodeRmdirer = (*Node)(nil)
var _ fs.NodeStatfser = (*Node)(nil)

// NewRoot builds the tree root Node for go-fuse's Mount call, presenting
// rootData.Mount.Root() (the pseudo-root directory holding every bucket).
func NewRoot(rootData *RootData) *Node {
	return &Node{root: rootData, fh: rootData.Mount.Root()}
}

// inodeHash derives a stable go-fuse inode number from a HandleKey,
// matching the teacher's fnv-based inodeHash over its own backend keys.
func inodeHash(key fhcache.HandleKey) uint64 {
	h := fnv.New64a()
	b := key.Bytes()
	_, _ = h.Write(b[:])
	return h.Sum64()
}

func attrMode(fh *fhcache.FileHandle) uint32 {
	if fh.Kind() == fhcache.KindFile {
		return fuse.S_IFREG | 0644
	}
	return fuse.S_IFDIR | 0755
}

func (n *Node) childNode(fh *fhcache.FileHandle) *fs.Inode {
	mode := attrMode(fh)
	stable := fs.StableAttr{
		Mode: mode,
		Ino:  inodeHash(fh.Key()),
	}
	child := &Node{root: n.root, fh: fh}
	return n.NewInode(context.Background(), child, stable)
}

// Lookup resolves name under this directory, asking the Mount for (or
// creating) the corresponding FileHandle, matching fs_api.go's Lookup
// translating a path lookup into a backend call.
func (n *Node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	kind, key := n.childKeyFor(name)

	fh, err := n.root.Mount.LookupFH(n.fh, name, kind, key)
	if err != nil {
		return nil, toErrno(err)
	}
	child := n.childNode(fh)
	fillEntry(out, fh)
	return child, 0
}

// childKeyFor picks the right HandleKey constructor and presumed kind for
// a lookup of name under n, distinguishing a top-level bucket lookup (under
// the pseudo-root) from a nested object lookup.
func (n *Node) childKeyFor(name string) (fhcache.Kind, fhcache.HandleKey) {
	if n.fh.Parent() == nil {
		return fhcache.KindBucket, fhcache.RootKey(name)
	}
	return fhcache.KindFile, n.fh.ChildKey(name)
}

// dirStream implements fs.DirStream over a slice of names gathered from a
// ReaddirOp pass, matching the teacher's buffer-then-iterate Readdir shape
// rather than a true streaming cursor (the object store's listing API
// already gives us the whole page).
type dirStream struct {
	entries []fuse.DirEntry
	pos     int
}

func (d *dirStream) HasNext() bool { return d.pos < len(d.entries) }
func (d *dirStream) Next() (fuse.DirEntry, syscall.Errno) {
	e := d.entries[d.pos]
	d.pos++
	return e, 0
}
func (d *dirStream) Close() {}

// Readdir lists this directory's children via ops.ReaddirOp, matching
// fs_api.go's Readdir delegating straight to the backing store.
func (n *Node) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	bucket := n.fh.BucketName()
	if bucket == "" {
		// Pseudo-root: list cached buckets instead of a store listing,
		// matching ListBucketsOp's own cache-backed shape.
		listOp := &ops.ListBucketsOp{Mount: n.root.Mount}
		var entries []fuse.DirEntry
		_ = listOp.Exec(ctx, func(e ops.BucketEntry) bool {
			entries = append(entries, fuse.DirEntry{Name: e.Name, Mode: fuse.S_IFDIR})
			return true
		})
		return &dirStream{entries: entries}, 0
	}

	readdir := &ops.ReaddirOp{Store: n.root.Store}
	var entries []fuse.DirEntry
	err := readdir.Exec(ctx, bucket, n.fh, "", 0, func(e ops.DirEntry) bool {
		entries = append(entries, fuse.DirEntry{Name: e.Name})
		return true
	})
	if err != nil {
		return nil, toErrno(err)
	}
	return &dirStream{entries: entries}, 0
}

// Getattr reports the handle's cached stat, matching fs_api.go's use of a
// cached size/mtime rather than a fresh backend round trip on every call.
func (n *Node) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	stat := n.fh.Stat()
	out.Mode = attrMode(n.fh)
	out.Size = stat.Size
	out.Nlink = stat.Nlink
	if out.Nlink == 0 {
		out.Nlink = 1
	}
	out.Attr.SetTimes(&stat.Atime, &stat.Mtime, &stat.Ctime)
	return 0
}

func fillEntry(out *fuse.EntryOut, fh *fhcache.FileHandle) {
	out.Ino = inodeHash(fh.Key())
	out.Mode = attrMode(fh)
	stat := fh.Stat()
	out.Size = stat.Size
	out.Attr.SetTimes(&stat.Atime, &stat.Mtime, &stat.Ctime)
}
