package nn

import (
	"github.com/pkg/errors"

	"github.com/songww/juice/blob"
)

// Forward runs the worker over bottom and top and returns this invocation's
// contribution to the objective.
//
// Bottoms are read-locked and tops write-locked as two batches in declared
// order and held across the worker call; every lock is released before the
// loss pass re-reads the loss-weighted tops, so the worker can never observe
// its own in-progress output as input. The loss contribution of top i is
// Dot(data, diff) when its loss weight is set and non-zero, and exactly 0
// otherwise; the worker has written the per-element loss weights into diff
// (see Worker.ForwardCPU).
//
// Arity is not re-checked here: the builder enforced it once via
// CheckBlobCounts. A poisoned handle or a panicking worker surfaces as an
// error satisfying errors.Is(err, ErrBlobPoisoned) or describing the panic;
// neither is recoverable for the blobs involved.
func (l *Layer) Forward(bottom []*SharedBlob, top []*SharedBlob) (float32, error) {
	if err := l.runForward(bottom, top); err != nil {
		return 0, err
	}

	var loss float32
	for topID, handle := range top {
		weight, ok := l.Loss(topID)
		if !ok || weight == 0 {
			continue
		}
		b, err := handle.RLock()
		if err != nil {
			return 0, errors.Wrapf(err, "layer %q: loss read of top %d", l.config.Name(), topID)
		}
		loss += blob.Dot(b.Data(), b.Diff())
		handle.RUnlock()
	}
	return loss, nil
}

// runForward holds the bottom read locks and top write locks around the
// worker call and guarantees both batches are released when it returns.
func (l *Layer) runForward(bottom, top []*SharedBlob) error {
	btm := make([]*HeapBlob, len(bottom))
	for i, handle := range bottom {
		b, err := handle.RLock()
		if err != nil {
			for j := 0; j < i; j++ {
				bottom[j].RUnlock()
			}
			return errors.Wrapf(err, "layer %q: read of bottom %d", l.config.Name(), i)
		}
		btm[i] = b
	}
	defer func() {
		for _, handle := range bottom {
			handle.RUnlock()
		}
	}()

	tp := make([]*HeapBlob, len(top))
	for i, handle := range top {
		b, err := handle.Lock()
		if err != nil {
			for j := 0; j < i; j++ {
				top[j].Unlock()
			}
			return errors.Wrapf(err, "layer %q: write of top %d", l.config.Name(), i)
		}
		tp[i] = b
	}
	defer func() {
		for _, handle := range top {
			handle.Unlock()
		}
	}()

	return l.invokeForward(btm, tp, top)
}

// invokeForward calls the worker and converts a worker panic into an error,
// poisoning every top handle the worker may have been writing.
func (l *Layer) invokeForward(btm, tp []*HeapBlob, top []*SharedBlob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			for _, handle := range top {
				handle.Poison()
			}
			err = errors.Errorf("layer %q: worker panicked during forward: %v", l.config.Name(), r)
		}
	}()
	l.worker.ForwardCPU(btm, tp)
	return nil
}
