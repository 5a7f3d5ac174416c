package fhcache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashSeed is mixed into every hash computed by this package. It has no
// significance beyond being a fixed constant shared by every handle key, so
// that two processes hashing the same (bucket, name) pair always agree.
const HashSeed uint64 = 8675309

// HandleKey identifies a FileHandle by the hash of its parent bucket and the
// hash of its own name within that bucket, mirroring fh_key's (bucket_hash,
// object_hash) pair. Two different (bucket, name) strings collide only if
// both hashes collide, which at 64 bits is not a correctness concern for
// this cache (see spec.md's collision note).
type HandleKey struct {
	BucketHash uint64
	ObjectHash uint64
}

// ZeroKey is the key of no handle; Mount uses it as the null parent key for
// root-level buckets.
var ZeroKey = HandleKey{}

// NewHandleKey builds a key directly from a precomputed bucket hash and an
// object name, hashing the name with the package seed. This matches
// fh_key(uint64_t bk, const char *name).
func NewHandleKey(bucketHash uint64, name string) HandleKey {
	return HandleKey{
		BucketHash: bucketHash,
		ObjectHash: hashString(name),
	}
}

// RootKey builds the key for a top-level bucket, whose own name is hashed
// into the bucket slot and whose object slot is hashed from the empty
// string, matching fh_key(const std::string& name) used for buckets.
func RootKey(bucketName string) HandleKey {
	return HandleKey{
		BucketHash: hashString(bucketName),
		ObjectHash: hashString(""),
	}
}

// ChildKey builds the key for an object nested under a named bucket,
// matching fh_key(const std::string& bucket_name, const std::string& name).
func ChildKey(bucketName, name string) HandleKey {
	return HandleKey{
		BucketHash: hashString(bucketName),
		ObjectHash: hashString(name),
	}
}

// ChildKey computes the HandleKey for name nested under fh, hashing the
// full relative path from fh's bucket root rather than just the leaf name
// so that two same-named entries under different directories in the same
// bucket never collide. Matches fh_key's actual disambiguation: the
// original hashes a full object name built by make_key_name, not a bare
// leaf.
func (fh *FileHandle) ChildKey(name string) HandleKey {
	bucketHash := hashString(fh.BucketName())
	path := name
	if rel := fh.FullObjectName(); rel != "" {
		path = rel + "/" + name
	}
	return HandleKey{
		BucketHash: bucketHash,
		ObjectHash: hashString(path),
	}
}

func hashString(s string) uint64 {
	d := xxhash.NewWithSeed(HashSeed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}

// Bytes renders the key as a 16-byte big-endian form (BucketHash, then
// ObjectHash), used by the FUSE presentation layer to derive inode numbers.
func (k HandleKey) Bytes() [16]byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], k.BucketHash)
	binary.BigEndian.PutUint64(b[8:16], k.ObjectHash)
	return b
}

// Less gives HandleKey a total order so it can be used as a map iteration
// tiebreaker in tests and in Readdir's stable ordering; it carries no
// semantic weight for the index itself, which only needs equality.
func (k HandleKey) Less(other HandleKey) bool {
	if k.BucketHash != other.BucketHash {
		return k.BucketHash < other.BucketHash
	}
	return k.ObjectHash < other.ObjectHash
}
