package fuseglue

import (
	"context"
	"syscall"

	"github.com/cohortfs/rgwfs/pkg/fhcache"
	"github.com/cohortfs/rgwfs/pkg/objstore"
	"github.com/cohortfs/rgwfs/pkg/rgwfs/ops"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// openFile is the fs.FileHandle returned by Node.Open/Create: a read
// adapter bound to the node's bucket/key, and (for a freshly created or
// truncated file) a write continuation started lazily on the first Write.
type openFile struct {
	n      *Node
	bucket string
	key    string

	write *ops.WriteOp
}

var _ fs.FileReader = (*openFile)(nil)
var _ fs.FileWriter = (*openFile)(nil)
var _ fs.FileFlusher = (*openFile)(nil)
var _ fs.FileReleaser = (*openFile)(nil)

func (f *openFile) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	read := &ops.ReadOp{Store: f.n.root.Store}
	var n int
	err := read.Exec(ctx, f.bucket, f.key, off, int64(len(dest)), func(data []byte) error {
		copy(dest[n:], data)
		n += len(data)
		return nil
	})
	if err != nil && err != objstore.ErrNotFound {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(dest[:n]), 0
}

func (f *openFile) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	if f.write == nil {
		f.write = &ops.WriteOp{Store: f.n.root.Store, FH: f.n.fh}
		if err := f.write.Open(ctx, f.bucket, f.key); err != nil {
			f.write = nil
			return 0, toErrno(err)
		}
	}
	if err := f.write.PutData(ctx, uint64(off), data); err != nil {
		return 0, toErrno(err)
	}
	return uint32(len(data)), 0
}

func (f *openFile) Flush(ctx context.Context) syscall.Errno {
	if f.write == nil {
		return 0
	}
	info, err := f.write.Finish(ctx)
	f.write = nil
	if err != nil {
		return toErrno(err)
	}
	stat := f.n.fh.Stat()
	stat.Size = uint64(info.Size)
	f.n.fh.SetStat(stat)
	return 0
}

// Release clears the handle's open flag, matching rgw_file.h's close()
// running when the kernel drops the last reference to an open fd.
func (f *openFile) Release(ctx context.Context) syscall.Errno {
	f.n.fh.Close()
	return 0
}

// Open returns a read/write handle for an existing file, matching
// fs_api.go's Open delegating straight to the backend. FLAG_OPEN is checked
// and set atomically on the cached handle first: opening an already-open
// handle fails with EPERM rather than handing out a second fd.
func (n *Node) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if err := n.fh.Open(flags); err != nil {
		return nil, 0, toErrno(err)
	}
	return &openFile{n: n, bucket: n.fh.BucketName(), key: n.fh.FullObjectName()}, 0, 0
}

// Create makes a new file under n and opens it for writing, matching
// fs_api.go's createNewFile* helpers collapsing create+open into one call.
func (n *Node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	key := n.fh.ChildKey(name)
	fh, err := n.root.Mount.LookupFH(n.fh, name, fhcache.KindFile, key)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	if err := fh.Open(flags); err != nil {
		return nil, nil, 0, toErrno(err)
	}

	childInode := n.childNode(fh)
	fillEntry(out, fh)

	handle := &openFile{n: childInode.Operations().(*Node), bucket: fh.BucketName(), key: fh.FullObjectName()}
	return childInode, handle, 0, 0
}

// Mkdir creates a pseudo-directory by priming a directory-kind handle in
// the cache; directories have no backing object of their own until an
// object is written beneath them, matching the original's flat-namespace
// pseudo-directory model.
func (n *Node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	key := n.fh.ChildKey(name)
	fh, err := n.root.Mount.LookupFH(n.fh, name, fhcache.KindDirectory, key)
	if err != nil {
		return nil, toErrno(err)
	}
	childInode := n.childNode(fh)
	fillEntry(out, fh)
	return childInode, 0
}

func (n *Node) Unlink(ctx context.Context, name string) syscall.Errno {
	key := n.fh.ChildKey(name)
	bucket := n.fh.BucketName()

	full := name
	if prefix := n.fh.FullObjectName(); prefix != "" {
		full = prefix + "/" + name
	}

	del := &ops.DeleteObjOp{Mount: n.root.Mount, Store: n.root.Store}
	if err := del.Exec(ctx, bucket, full, key); err != nil {
		return toErrno(err)
	}
	return 0
}

func (n *Node) Rmdir(ctx context.Context, name string) syscall.Errno {
	return n.Unlink(ctx, name)
}

func (n *Node) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	stats := n.root.Mount.Stats()
	out.Blocks = uint64(stats.HandleCount) * 8
	out.Bfree = 0
	out.Bavail = 0
	out.Files = uint64(stats.HandleCount)
	out.Bsize = 4096
	return 0
}
