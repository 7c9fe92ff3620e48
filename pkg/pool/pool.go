// Package pool provides typed object pooling on top of sync.Pool.
//
// The serializers borrow their scratch buffers from here:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
//	buf.WriteString("...")
//	return bytes.Clone(buf.Bytes()), nil
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool is a type-safe sync.Pool that resets objects on Put and counts
// allocations.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. reset, when non-nil, runs before an object goes back
// into the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get takes an object from the pool, allocating one if it is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns how many objects were allocated, are checked out, and how
// many Get calls were made.
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

// maxPooledBuffer caps the capacity of buffers kept for reuse; one huge
// configuration should not pin its buffer for the rest of the run.
const maxPooledBuffer = 1 << 20

var buffers = New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer returns an empty buffer from the global buffer pool
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer returns buf to the global buffer pool
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if buf.Cap() > maxPooledBuffer {
		atomic.AddInt64(&buffers.stats.inUse, -1)
		return
	}
	buffers.Put(buf)
}

// BufferStats returns the statistics of the global buffer pool
func BufferStats() (allocated, inUse, gets int64) {
	return buffers.Stats()
}
