package objstore

import (
	"context"
	"sort"
	"sync"

	"github.com/hashicorp/go-uuid"
)

type memObject struct {
	data []byte
}

type pendingPut struct {
	bucket string
	key    string
	chunks map[int64][]byte
}

// MemStore is an in-memory Store, used by pkg/fhcache, pkg/sessionmap, and
// pkg/rgwfs/ops tests so they don't need a database to exercise the C7
// contract.
type MemStore struct {
	mu      sync.Mutex
	buckets map[string]map[string]*memObject
	pending map[string]*pendingPut
}

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		buckets: make(map[string]map[string]*memObject),
		pending: make(map[string]*pendingPut),
	}
}

func (m *MemStore) CreateBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; ok {
		return ErrAlreadyExists
	}
	m.buckets[bucket] = make(map[string]*memObject)
	return nil
}

func (m *MemStore) DeleteBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		return ErrNotFound
	}
	delete(m.buckets, bucket)
	return nil
}

func (m *MemStore) BeginPut(_ context.Context, bucket, key string) (string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.pending[id] = &pendingPut{bucket: bucket, key: key, chunks: make(map[int64][]byte)}
	m.mu.Unlock()
	return id, nil
}

func (m *MemStore) PutChunk(_ context.Context, putID string, offset int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[putID]
	if !ok {
		return ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	p.chunks[offset] = buf
	return nil
}

func (m *MemStore) FinishPut(_ context.Context, putID string) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pending[putID]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	delete(m.pending, putID)

	offsets := make([]int64, 0, len(p.chunks))
	for off := range p.chunks {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	var data []byte
	for _, off := range offsets {
		data = append(data, p.chunks[off]...)
	}

	b, ok := m.buckets[p.bucket]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	b[p.key] = &memObject{data: data}
	return ObjectInfo{Bucket: p.bucket, Key: p.key, Size: int64(len(data))}, nil
}

func (m *MemStore) AbortPut(_ context.Context, putID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, putID)
	return nil
}

func (m *MemStore) GetObject(_ context.Context, bucket, key string, start, end int64, yield func([]byte) error) error {
	m.mu.Lock()
	b, ok := m.buckets[bucket]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	obj, ok := b[key]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	data := obj.data
	m.mu.Unlock()

	if end <= 0 || end > int64(len(data)) {
		end = int64(len(data))
	}
	if start < 0 {
		start = 0
	}
	if start >= end {
		return nil
	}
	return yield(data[start:end])
}

func (m *MemStore) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return ErrNotFound
	}
	if _, ok := b[key]; !ok {
		return ErrNotFound
	}
	delete(b, key)
	return nil
}

func (m *MemStore) StatObject(_ context.Context, bucket, key string) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	obj, ok := b[key]
	if !ok {
		return ObjectInfo{}, ErrNotFound
	}
	return ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(obj.data))}, nil
}

func (m *MemStore) ListBucket(_ context.Context, bucket, marker string, limit int, yield func(string) bool) error {
	m.mu.Lock()
	b, ok := m.buckets[bucket]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	sort.Strings(keys)
	n := 0
	for _, k := range keys {
		if k <= marker {
			continue
		}
		if limit > 0 && n >= limit {
			break
		}
		n++
		if !yield(k) {
			break
		}
	}
	return nil
}

func (m *MemStore) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	id, err := m.BeginPut(ctx, bucket, key)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		if err := m.PutChunk(ctx, id, 0, data); err != nil {
			return err
		}
	}
	_, err = m.FinishPut(ctx, id)
	return err
}

func (m *MemStore) GetObjectAll(ctx context.Context, bucket, key string) ([]byte, error) {
	var out []byte
	err := m.GetObject(ctx, bucket, key, 0, -1, func(data []byte) error {
		out = append(out, data...)
		return nil
	})
	return out, err
}
