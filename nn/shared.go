package nn

import (
	"sync"
	"sync/atomic"
)

// SharedBlob is a blob under shared ownership: any number of concurrent
// readers, or exactly one writer, never both. Layers share a blob by sharing
// the *SharedBlob pointer; the handle lives as long as any referencing layer.
//
// Go locks do not poison on their own, so the handle carries an explicit
// poison flag. A writer that fails mid-mutation (a panicking worker) marks
// the handle, and every later acquisition fails with ErrBlobPoisoned instead
// of exposing possibly-torn data.
type SharedBlob struct {
	mu       sync.RWMutex
	poisoned atomic.Bool
	blob     *HeapBlob
}

// NewSharedBlob wraps b in a fresh shared handle.
func NewSharedBlob(b *HeapBlob) *SharedBlob {
	return &SharedBlob{blob: b}
}

// RLock acquires shared read access, blocking until no writer holds the
// handle. It fails with ErrBlobPoisoned (releasing the lock) if a previous
// writer failed mid-mutation.
func (s *SharedBlob) RLock() (*HeapBlob, error) {
	s.mu.RLock()
	if s.poisoned.Load() {
		s.mu.RUnlock()
		return nil, ErrBlobPoisoned
	}
	return s.blob, nil
}

// RUnlock releases read access acquired by RLock.
func (s *SharedBlob) RUnlock() {
	s.mu.RUnlock()
}

// Lock acquires exclusive write access, blocking until all readers and any
// writer release. It fails with ErrBlobPoisoned (releasing the lock) if a
// previous writer failed mid-mutation.
func (s *SharedBlob) Lock() (*HeapBlob, error) {
	s.mu.Lock()
	if s.poisoned.Load() {
		s.mu.Unlock()
		return nil, ErrBlobPoisoned
	}
	return s.blob, nil
}

// Unlock releases write access acquired by Lock.
func (s *SharedBlob) Unlock() {
	s.mu.Unlock()
}

// Poison marks the handle after a failed mutation. Every subsequent RLock or
// Lock fails with ErrBlobPoisoned.
func (s *SharedBlob) Poison() {
	s.poisoned.Store(true)
}

// Poisoned reports whether the handle has been poisoned.
func (s *SharedBlob) Poisoned() bool {
	return s.poisoned.Load()
}
