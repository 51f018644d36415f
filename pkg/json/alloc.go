package json

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrPartialAllocator is returned by SetAllocator when only some of the
	// allocation functions are provided.
	ErrPartialAllocator = errors.New("json: allocator requires either all or none of alloc, realloc and free")

	// ErrAllocatorInUse is returned when the allocator is changed after
	// buffers have already been allocated through the previous one.
	ErrAllocatorInUse = errors.New("json: allocator cannot be changed after first use")
)

// Allocator provides the byte buffers backing String values and lexer input.
//
// Realloc must return a buffer of length n holding the first min(len(b), n)
// bytes of b. A nil (or short) buffer from Alloc or Realloc is treated as
// resource exhaustion and aborts with a panic.
type Allocator interface {
	Alloc(n int) []byte
	Realloc(b []byte, n int) []byte
	Free(b []byte)
}

type (
	AllocFunc   func(n int) []byte
	ReallocFunc func(b []byte, n int) []byte
	FreeFunc    func(b []byte)
)

type funcAllocator struct {
	alloc   AllocFunc
	realloc ReallocFunc
	free    FreeFunc
}

func (f funcAllocator) Alloc(n int) []byte             { return f.alloc(n) }
func (f funcAllocator) Realloc(b []byte, n int) []byte { return f.realloc(b, n) }
func (f funcAllocator) Free(b []byte)                  { f.free(b) }

type goAllocator struct{}

func (goAllocator) Alloc(n int) []byte {
	return make([]byte, n)
}

func (goAllocator) Realloc(b []byte, n int) []byte {
	if n <= cap(b) {
		return b[:n]
	}

	grown := make([]byte, n, growCap(cap(b), n))
	copy(grown, b)
	return grown
}

func (goAllocator) Free([]byte) {}

func growCap(old, need int) int {
	c := old * 2
	if c < need {
		c = need
	}
	return c
}

// DefaultAllocator returns the allocator backed by the Go runtime.
func DefaultAllocator() Allocator {
	return goAllocator{}
}

type allocHolder struct {
	Allocator
}

var allocState struct {
	current atomic.Pointer[allocHolder]
	used    atomic.Bool
}

func init() {
	allocState.current.Store(&allocHolder{goAllocator{}})
}

// SetAllocator replaces the allocator used for all buffers. Passing three nil
// functions restores the default allocator, passing three non-nil functions
// installs them; any other combination is rejected with ErrPartialAllocator.
// The allocator must be configured before any value owning a buffer is
// created, later calls return ErrAllocatorInUse.
func SetAllocator(alloc AllocFunc, realloc ReallocFunc, free FreeFunc) error {
	switch {
	case alloc == nil && realloc == nil && free == nil:
		return UseAllocator(goAllocator{})
	case alloc != nil && realloc != nil && free != nil:
		return UseAllocator(funcAllocator{alloc: alloc, realloc: realloc, free: free})
	default:
		return ErrPartialAllocator
	}
}

// UseAllocator installs a. A nil a restores the default allocator. The same
// first-use rule as SetAllocator applies.
func UseAllocator(a Allocator) error {
	if allocState.used.Load() {
		return ErrAllocatorInUse
	}
	if a == nil {
		a = goAllocator{}
	}
	allocState.current.Store(&allocHolder{a})
	return nil
}

func allocator() Allocator {
	allocState.used.Store(true)
	return allocState.current.Load().Allocator
}

func memAlloc(n int) []byte {
	b := allocator().Alloc(n)
	if len(b) < n {
		panic("json: out of memory")
	}
	return b[:n]
}

func memRealloc(b []byte, n int) []byte {
	r := allocator().Realloc(b, n)
	if len(r) < n {
		panic("json: out of memory")
	}
	return r[:n]
}

func memFree(b []byte) {
	if b != nil {
		allocator().Free(b)
	}
}
