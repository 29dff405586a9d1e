// Package arena implements a fixed-size-block object pool. Records are
// served from contiguous chunks and recycled through a free list, so
// allocation stays O(1) under heavy churn and nothing is returned to the
// runtime mid-run. Chunks never move once allocated, which keeps pointers
// into the pool stable.
package arena

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned when a pool with a block limit cannot grow any
// further.
var ErrExhausted = errors.New("arena: pool exhausted")

// Pool hands out records of a single type T.
type Pool[T any] struct {
	// MaxBlocks caps the number of chunks; zero means unlimited.
	MaxBlocks int

	blockSize int
	blocks    [][]T
	freeList  []*T
	bump      int
	allocated int
	initFn    func(*T)
}

// New creates a pool whose chunks hold blockSize records each. The optional
// initFn runs once per record when its chunk is allocated.
func New[T any](blockSize int, initFn func(*T)) (*Pool[T], error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("arena: block size %d must be positive", blockSize)
	}

	pool := &Pool[T]{blockSize: blockSize, initFn: initFn}
	if err := pool.Expand(); err != nil {
		return nil, err
	}

	return pool, nil
}

// Expand appends one chunk of fresh records.
func (p *Pool[T]) Expand() error {
	if p.MaxBlocks > 0 && len(p.blocks) >= p.MaxBlocks {
		return fmt.Errorf("%w: %d blocks of %d", ErrExhausted, len(p.blocks), p.blockSize)
	}

	block := make([]T, p.blockSize)

	if p.initFn != nil {
		for j := range block {
			p.initFn(&block[j])
		}
	}

	p.blocks = append(p.blocks, block)
	p.bump = 0

	return nil
}

// Alloc returns a record, recycling freed ones first and growing the pool by
// one chunk when no slot is available.
func (p *Pool[T]) Alloc() (*T, error) {
	if n := len(p.freeList); n > 0 {
		obj := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		p.allocated++

		return obj, nil
	}

	if p.bump == p.blockSize {
		if err := p.Expand(); err != nil {
			return nil, err
		}
	}

	block := p.blocks[len(p.blocks)-1]
	obj := &block[p.bump]
	p.bump++
	p.allocated++

	return obj, nil
}

// Free recycles a record. The record must have come from this pool and must
// not be freed twice.
func (p *Pool[T]) Free(obj *T) {
	p.freeList = append(p.freeList, obj)
	p.allocated--
}

// NumAllocated returns the number of live records.
func (p *Pool[T]) NumAllocated() int {
	return p.allocated
}

// Empty reports whether the next Alloc would have to expand the pool.
func (p *Pool[T]) Empty() bool {
	return len(p.freeList) == 0 && p.bump == p.blockSize
}

// NumBlocks returns the number of chunks backing the pool.
func (p *Pool[T]) NumBlocks() int {
	return len(p.blocks)
}

// MemSize returns the approximate footprint of the pool in records.
func (p *Pool[T]) MemSize() int {
	return len(p.blocks) * p.blockSize
}

// Release drops all chunks and the free list. Records handed out earlier
// must not be used afterwards.
func (p *Pool[T]) Release() {
	p.blocks = nil
	p.freeList = nil
	p.bump = p.blockSize
	p.allocated = 0
}
