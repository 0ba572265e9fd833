package protocol

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
)

var seq atomic.Int64

// NewID returns a process-unique id with random low bits.
func NewID() int64 {
	base := seq.Add(1)
	var b [2]byte
	_, _ = rand.Read(b[:])
	return (base << 16) | int64(binary.BigEndian.Uint16(b[:]))
}

// Sequence returns an allocator counting up from 1. Replays and tests use it
// so that unit ids are reproducible.
func Sequence() func() int64 {
	var n int64
	return func() int64 {
		n++
		return n
	}
}
