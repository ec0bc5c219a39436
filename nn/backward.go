package nn

import (
	"github.com/pkg/errors"
)

// Backward delegates gradient computation to the worker. propagateDown is
// the already-resolved per-bottom mask (see PropagateDownMask for how a
// builder derives one); the worker fills the diff buffer of every bottom
// whose entry is true and leaves the others untouched.
//
// Tops are read-locked and bottoms write-locked as two batches in declared
// order and held across the worker call. A panicking worker poisons every
// bottom handle before the error surfaces.
func (l *Layer) Backward(top []*SharedBlob, propagateDown []bool, bottom []*SharedBlob) error {
	if len(propagateDown) != len(bottom) {
		return errors.Wrapf(ErrPropagateDownLen, "layer %q: mask has %d entries for %d bottoms",
			l.config.Name(), len(propagateDown), len(bottom))
	}

	tp := make([]*HeapBlob, len(top))
	for i, handle := range top {
		b, err := handle.RLock()
		if err != nil {
			for j := 0; j < i; j++ {
				top[j].RUnlock()
			}
			return errors.Wrapf(err, "layer %q: read of top %d", l.config.Name(), i)
		}
		tp[i] = b
	}
	defer func() {
		for _, handle := range top {
			handle.RUnlock()
		}
	}()

	btm := make([]*HeapBlob, len(bottom))
	for i, handle := range bottom {
		b, err := handle.Lock()
		if err != nil {
			for j := 0; j < i; j++ {
				bottom[j].Unlock()
			}
			return errors.Wrapf(err, "layer %q: write of bottom %d", l.config.Name(), i)
		}
		btm[i] = b
	}
	defer func() {
		for _, handle := range bottom {
			handle.Unlock()
		}
	}()

	return l.invokeBackward(tp, propagateDown, btm, bottom)
}

// invokeBackward calls the worker and converts a worker panic into an error,
// poisoning every bottom handle the worker may have been writing.
func (l *Layer) invokeBackward(tp []*HeapBlob, propagateDown []bool, btm []*HeapBlob, bottom []*SharedBlob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			for _, handle := range bottom {
				handle.Poison()
			}
			err = errors.Errorf("layer %q: worker panicked during backward: %v", l.config.Name(), r)
		}
	}()
	l.worker.BackwardCPU(tp, propagateDown, btm)
	return nil
}
