// Package blob provides the numeric buffers layers compute on: a value
// buffer paired with an equal-shaped gradient buffer under one shape
// descriptor.
package blob

import (
	"github.com/pkg/errors"
)

// Numeric constrains the element types a Blob can hold.
type Numeric interface {
	float32 | float64
}

// Blob owns a contiguous value buffer and an equal-shaped gradient buffer.
// The two buffers always hold exactly Shape().Numel() elements each.
type Blob[T Numeric] struct {
	data  []T
	diff  []T
	shape Shape
}

// New creates a zero-filled Blob with the given shape.
func New[T Numeric](shape Shape) *Blob[T] {
	n := shape.Numel()
	return &Blob[T]{
		data:  make([]T, n),
		diff:  make([]T, n),
		shape: shape,
	}
}

// FromSlice creates a Blob with the given shape whose values are a copy of
// data. The gradient buffer starts zeroed.
func FromSlice[T Numeric](data []T, shape Shape) (*Blob[T], error) {
	if len(data) != shape.Numel() {
		return nil, errors.Errorf("blob: data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.Numel())
	}
	b := New[T](shape)
	copy(b.data, data)
	return b, nil
}

// Shape returns the blob's shape descriptor.
func (b *Blob[T]) Shape() Shape {
	return b.shape
}

// ShapeString returns the shape rendered for diagnostics, e.g. "[2, 3]".
func (b *Blob[T]) ShapeString() string {
	return b.shape.String()
}

// Numel returns the number of elements in each buffer.
func (b *Blob[T]) Numel() int {
	return b.shape.Numel()
}

// Data returns the value buffer for reading. Callers holding only read
// access must not write through it.
func (b *Blob[T]) Data() []T {
	return b.data
}

// Diff returns the gradient buffer for reading.
func (b *Blob[T]) Diff() []T {
	return b.diff
}

// MutableData returns the value buffer for writing.
func (b *Blob[T]) MutableData() []T {
	return b.data
}

// MutableDiff returns the gradient buffer for writing.
func (b *Blob[T]) MutableDiff() []T {
	return b.diff
}

// Reshape reinterprets the buffers under a new shape with the same element
// count. Contents are preserved.
func (b *Blob[T]) Reshape(shape Shape) error {
	if shape.Numel() != b.shape.Numel() {
		return errors.Errorf("blob: cannot reshape %s to %s: element count %d != %d",
			b.shape, shape, b.shape.Numel(), shape.Numel())
	}
	b.shape = shape
	return nil
}
