package sessionmap

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// codecVersion is bumped whenever the wire layout changes; Decode rejects
// anything else outright rather than guessing at a migration.
const codecVersion uint8 = 1

// Encode serializes a session to the binary form persisted by SessionMap's
// owning objstore.Store, matching Session::encode. used_inos is written as
// its own set, but on decode it gets folded back into prealloc_inos, since a
// restarted server has no record of what those used numbers were doing and
// the safest recovery is to consider them available again, matching
// Session::decode's own fold-back.
func (s *Session) Encode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte(codecVersion)

	writeString(&buf, s.ClientID)
	writeUint64(&buf, uint64(s.state))
	writeUint64(&buf, s.stateSeq)

	writeIntervalSet(&buf, s.pendingPrealloc)
	writeIntervalSet(&buf, s.prealloc)
	writeIntervalSet(&buf, s.used)

	writeUint64(&buf, uint64(len(s.completedOrder)))
	for _, tid := range s.completedOrder {
		writeUint64(&buf, tid)
	}

	return buf.Bytes(), nil
}

// Decode populates a new Session from its binary form, returning an
// "unsupported version" error if the leading version byte isn't one this
// build knows how to read.
func Decode(data []byte) (*Session, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading version")
	}
	if version != codecVersion {
		return nil, errors.Errorf("sessionmap: decode: unsupported version %d", version)
	}

	clientID, err := readString(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading client id")
	}
	stateVal, err := readUint64(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading state")
	}
	stateSeq, err := readUint64(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading state seq")
	}

	pending, err := readIntervalSet(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading pending prealloc")
	}
	prealloc, err := readIntervalSet(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading prealloc")
	}
	used, err := readIntervalSet(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading used")
	}

	n, err := readUint64(r)
	if err != nil {
		return nil, errors.Wrap(err, "sessionmap: decode: reading completed request count")
	}
	order := make([]uint64, 0, n)
	set := make(map[uint64]struct{}, n)
	for i := uint64(0); i < n; i++ {
		tid, err := readUint64(r)
		if err != nil {
			return nil, errors.Wrap(err, "sessionmap: decode: reading completed request")
		}
		order = append(order, tid)
		set[tid] = struct{}{}
	}

	// Fold used_inos back into prealloc: a restarted process has no live
	// record of which used numbers already made it into an on-disk inode,
	// so the conservative recovery is to make them available again rather
	// than leak them forever, matching Session::decode's own fold-back.
	prealloc.Union(used)

	s := &Session{
		ClientID:          clientID,
		state:             State(stateVal),
		stateSeq:          stateSeq,
		pendingPrealloc:   pending,
		prealloc:          prealloc,
		used:              NewIntervalSet(),
		completedRequests: set,
		completedOrder:    order,
	}
	return s, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readString(r io.Reader) (string, error) {
	n, err := readUint64(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeIntervalSet(buf *bytes.Buffer, s *IntervalSet) {
	ranges := s.Ranges()
	writeUint64(buf, uint64(len(ranges)))
	for _, iv := range ranges {
		writeUint64(buf, iv.Start)
		writeUint64(buf, iv.Len)
	}
}

func readIntervalSet(r io.Reader) (*IntervalSet, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	s := NewIntervalSet()
	for i := uint64(0); i < n; i++ {
		start, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		length, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		s.Insert(start, length)
	}
	return s, nil
}
