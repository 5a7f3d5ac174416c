package sessionmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalSetInsertMergesAdjacent(t *testing.T) {
	s := NewIntervalSet()
	s.Insert(0, 5)  // [0,5)
	s.Insert(5, 5)  // [5,10), adjacent -> merges to [0,10)
	assert.Equal(t, uint64(10), s.Size())
	start, ok := s.Start()
	assert.True(t, ok)
	assert.Equal(t, uint64(0), start)
}

func TestIntervalSetInsertKeepsDisjointRangesSeparate(t *testing.T) {
	s := NewIntervalSet()
	s.Insert(0, 5)   // [0,5)
	s.Insert(10, 5)  // [10,15)
	assert.Equal(t, uint64(10), s.Size())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(7))
	assert.True(t, s.Contains(12))
}

func TestIntervalSetEraseSplits(t *testing.T) {
	s := NewIntervalSet()
	s.Insert(0, 10) // [0,10)
	s.Erase(3, 2)   // remove [3,5) -> [0,3) and [5,10)

	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(3))
	assert.False(t, s.Contains(4))
	assert.True(t, s.Contains(5))
	assert.Equal(t, uint64(8), s.Size())
}

func TestIntervalSetTakeOneTakesLowest(t *testing.T) {
	s := NewIntervalSet()
	s.Insert(5, 3) // {5,6,7}
	v, ok := s.TakeOne()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), v)
	assert.False(t, s.Contains(5))
	assert.True(t, s.Contains(6))
}

func TestIntervalSetTakeExact(t *testing.T) {
	s := NewIntervalSet()
	s.Insert(5, 3)
	assert.True(t, s.TakeExact(6))
	assert.False(t, s.Contains(6))
	assert.False(t, s.TakeExact(100))
}

func TestIntervalSetUnion(t *testing.T) {
	a := NewIntervalSet()
	a.Insert(0, 5)
	b := NewIntervalSet()
	b.Insert(10, 5)

	a.Union(b)
	assert.Equal(t, uint64(10), a.Size())
	assert.True(t, a.Contains(12))
}

func TestIntervalSetEmptyStart(t *testing.T) {
	s := NewIntervalSet()
	_, ok := s.Start()
	assert.False(t, ok)
	assert.True(t, s.Empty())
}
