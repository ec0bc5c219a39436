package nn

import (
	"github.com/pkg/errors"
)

var (
	// ErrBlobPoisoned reports that a writer failed while mutating a shared
	// blob. The buffer may be torn; no invocation may proceed with it.
	ErrBlobPoisoned = errors.New("shared blob poisoned by a failed writer")

	// ErrUnknownLayerType reports a layer type with no registered worker
	// constructor.
	ErrUnknownLayerType = errors.New("no worker registered for layer type")

	// ErrPropagateDownLen reports a propagate-down mask that is neither
	// empty nor one entry per bottom.
	ErrPropagateDownLen = errors.New("propagate_down length does not match bottom count")
)
