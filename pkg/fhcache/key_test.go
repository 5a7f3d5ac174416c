package fhcache

import "testing"

func TestChildKeyDeterministic(t *testing.T) {
	k1 := ChildKey("bucket-a", "obj.txt")
	k2 := ChildKey("bucket-a", "obj.txt")
	if k1 != k2 {
		t.Fatalf("ChildKey not deterministic: %+v != %+v", k1, k2)
	}
}

func TestChildKeyDistinguishesBucket(t *testing.T) {
	k1 := ChildKey("bucket-a", "obj.txt")
	k2 := ChildKey("bucket-b", "obj.txt")
	if k1 == k2 {
		t.Fatalf("ChildKey collided across buckets: %+v", k1)
	}
}

func TestRootKeyMatchesChildKeyOfEmptyName(t *testing.T) {
	// RootKey("b").ObjectHash must equal hashString(""), independent of
	// bucket name, since every bucket root shares the same empty object
	// name slot.
	if RootKey("bucket-a").ObjectHash != RootKey("bucket-b").ObjectHash {
		t.Fatalf("RootKey object hash should not depend on bucket name")
	}
}

func TestFileHandleChildKeyDistinguishesSiblingPaths(t *testing.T) {
	bucket := newFileHandle(RootKey("b"), "b", KindBucket, nil)
	dir1 := newFileHandle(bucket.ChildKey("dir1"), "dir1", KindDirectory, bucket)
	dir2 := newFileHandle(bucket.ChildKey("dir2"), "dir2", KindDirectory, bucket)

	k1 := dir1.ChildKey("same.txt")
	k2 := dir2.ChildKey("same.txt")
	if k1 == k2 {
		t.Fatalf("ChildKey collided across sibling directories with the same leaf name")
	}
}

func TestHandleKeyLess(t *testing.T) {
	k1 := HandleKey{BucketHash: 1, ObjectHash: 2}
	k2 := HandleKey{BucketHash: 1, ObjectHash: 3}
	if !k1.Less(k2) {
		t.Fatalf("expected k1 < k2")
	}
	if k2.Less(k1) {
		t.Fatalf("expected k2 not < k1")
	}
}
