package fhcache

import (
	"crypto/md5"
	"hash"
	"sync"

	"github.com/pkg/errors"
)

// WriteState is the write continuation a FileHandle holds open between the
// first put_data call and exec_finish, matching rgw_file.h's write_req and
// its running MD5 accumulator. Writes must be contiguous: each offset must
// equal the end of the previous write, matching the original's
// contiguous-write assumption. Neither WriteState nor the adapter layer
// (pkg/rgwfs/ops.WriteOp) buffers or reorders out-of-order writes.
type WriteState struct {
	mu sync.Mutex

	bucket string
	object string

	nextOffset uint64
	total      uint64
	digest     hash.Hash
}

// NewWriteState starts a write continuation for (bucket, object).
func NewWriteState(bucket, object string) *WriteState {
	return &WriteState{
		bucket: bucket,
		object: object,
		digest: md5.New(),
	}
}

// PutData appends bytes at off, matching rgw_file.h's put_data offset check.
// A non-contiguous offset is reported as ErrInvalidArgument rather than
// silently accepted.
func (w *WriteState) PutData(off uint64, p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if off != w.nextOffset {
		return errors.Wrapf(ErrInvalidArgument, "write: non-contiguous offset %d, expected %d", off, w.nextOffset)
	}
	if _, err := w.digest.Write(p); err != nil {
		return errors.Wrap(ErrBackend, err.Error())
	}
	w.nextOffset += uint64(len(p))
	w.total += uint64(len(p))
	return nil
}

// Size returns the number of bytes written so far.
func (w *WriteState) Size() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// MD5 returns the running digest over all bytes written so far. Called once
// at exec_finish time; WriteState is not reused after that.
func (w *WriteState) MD5() [md5.Size]byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	var sum [md5.Size]byte
	copy(sum[:], w.digest.Sum(nil))
	return sum
}
