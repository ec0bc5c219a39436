package nn

// Worker performs a layer's actual forward/backward computation. A Layer
// wraps its Worker with the locking and loss bookkeeping of the invocation
// contract; the worker only ever sees blob views handed to it and has no
// other way to reach blob state.
//
// The capability queries (AutoTopBlobs through AllowForceBackward) are pure
// and consumed exclusively at network-build time; Forward and Backward never
// call them.
type Worker interface {
	// ForwardCPU computes the layer's output on the CPU. Bottom blobs are
	// read views and must not be mutated. A worker whose output feeds the
	// objective must write each loss-weighted top's per-element loss
	// weights into that top's diff buffer before returning; Layer.Forward
	// reads them back when accumulating the scalar loss.
	ForwardCPU(bottom []*HeapBlob, top []*HeapBlob)

	// BackwardCPU computes the gradients for each bottom blob whose
	// propagateDown entry is true, writing them into the bottom's diff
	// buffer. Bottoms with a false entry must be left untouched.
	BackwardCPU(top []*HeapBlob, propagateDown []bool, bottom []*HeapBlob)

	// AutoTopBlobs reports whether the builder should synthesize anonymous
	// top blobs to satisfy the arity declared by ExactNumTopBlobs or
	// MinTopBlobs.
	AutoTopBlobs() bool

	// MinTopBlobs returns the minimum number of top blobs the layer
	// requires, or 0 if unconstrained.
	MinTopBlobs() int

	// ExactNumTopBlobs returns the exact number of top blobs the layer
	// requires, or 0 if unconstrained.
	ExactNumTopBlobs() int

	// ExactNumBottomBlobs returns the exact number of bottom blobs the
	// layer requires, or 0 if unconstrained.
	ExactNumBottomBlobs() int

	// AllowForceBackward reports whether a global force-backward policy
	// may override the given bottom's default propagate-down setting.
	AllowForceBackward(bottomID int) bool
}

// BaseWorker supplies the default capability answers: no auto tops,
// unconstrained arity, forcing allowed on every bottom. Worker
// implementations embed it and override only what they constrain.
type BaseWorker struct{}

// AutoTopBlobs defaults to false.
func (BaseWorker) AutoTopBlobs() bool { return false }

// MinTopBlobs defaults to unconstrained.
func (BaseWorker) MinTopBlobs() int { return 0 }

// ExactNumTopBlobs defaults to unconstrained.
func (BaseWorker) ExactNumTopBlobs() int { return 0 }

// ExactNumBottomBlobs defaults to unconstrained.
func (BaseWorker) ExactNumBottomBlobs() int { return 0 }

// AllowForceBackward defaults to honoring the force policy.
func (BaseWorker) AllowForceBackward(bottomID int) bool { return true }
