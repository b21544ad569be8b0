package engine

import (
	"errors"
	"sync/atomic"

	"logrelay/pkg/model"
)

var (
	ErrBufferFull = errors.New("buffer is full")
)

// RingBuffer is a fixed-size circular buffer of received datagrams. It is
// safe for a single writer (the ingest callback) and single reader (the
// pipeline goroutine). For multiple writers we would need a mutex or a
// channel-based approach.
type RingBuffer struct {
	data []*model.Datagram
	head uint64
	tail uint64
	mask uint64
	size uint64

	// Metrics
	dropped uint64
}

// NewRingBuffer creates a ring buffer with the specified size (must be power of 2).
func NewRingBuffer(size uint64) (*RingBuffer, error) {
	if size == 0 || (size&(size-1)) != 0 {
		return nil, errors.New("size must be a power of 2")
	}
	return &RingBuffer{
		data: make([]*model.Datagram, size),
		mask: size - 1,
		size: size,
	}, nil
}

// Push adds a datagram to the buffer.
// If the buffer is full, it drops the datagram and returns ErrBufferFull.
func (rb *RingBuffer) Push(dg *model.Datagram) error {
	head := atomic.LoadUint64(&rb.head)
	tail := atomic.LoadUint64(&rb.tail)

	if head-tail >= rb.size {
		atomic.AddUint64(&rb.dropped, 1)
		return ErrBufferFull
	}

	rb.data[head&rb.mask] = dg
	atomic.StoreUint64(&rb.head, head+1)
	return nil
}

// Pop removes a datagram from the buffer.
// Returns nil if empty.
func (rb *RingBuffer) Pop() *model.Datagram {
	tail := rb.tail
	head := atomic.LoadUint64(&rb.head)

	if tail == head {
		return nil
	}

	dg := rb.data[tail&rb.mask]
	rb.data[tail&rb.mask] = nil

	atomic.StoreUint64(&rb.tail, tail+1)
	return dg
}

// DroppedCount returns the number of dropped datagrams.
func (rb *RingBuffer) DroppedCount() uint64 {
	return atomic.LoadUint64(&rb.dropped)
}

// Usage returns the number of datagrams currently in the buffer.
func (rb *RingBuffer) Usage() uint64 {
	return atomic.LoadUint64(&rb.head) - atomic.LoadUint64(&rb.tail)
}

// Capacity returns the total size of the buffer.
func (rb *RingBuffer) Capacity() uint64 {
	return rb.size
}
