package nn

import (
	"github.com/pkg/errors"
)

// Layer binds a LayerConfig to the Worker implementing its computation and
// owns the invocation contract around it: parameter blobs, per-top loss
// weights, and per-parameter backprop-enable flags.
//
// A Layer is built once at network-assembly time and lives for the duration
// of the network. Its mutable state (loss weights, param flags) changes only
// through the configuration methods here, never through the worker.
type Layer struct {
	config *LayerConfig
	worker Worker

	// loss[i] is top i's weight in the objective; a missing entry means the
	// top does not contribute.
	loss []float32

	// Blobs holds the layer's learnable parameter blobs, index-aligned with
	// the config's ParamConfigs and shared with every layer that declares
	// the same parameter name.
	Blobs []*SharedBlob

	// paramPropagateDown is index-aligned with Blobs; unset slots mean
	// gradient computation is enabled.
	paramPropagateDown []bool
}

// NewLayer constructs the Layer for config, selecting the worker registered
// for the config's layer type. It fails with ErrUnknownLayerType for an
// unregistered type tag and with ErrPropagateDownLen for a malformed
// propagate-down mask; both are build-time configuration errors.
func NewLayer(config *LayerConfig) (*Layer, error) {
	if !config.CheckPropagateDownLen() {
		return nil, errors.Wrapf(ErrPropagateDownLen, "layer %q: %d entries for %d bottoms",
			config.Name(), len(config.PropagateDown), config.BottomsLen())
	}
	worker, err := workerFromConfig(config)
	if err != nil {
		return nil, err
	}
	return &Layer{
		config: config,
		worker: worker,
	}, nil
}

// Config returns the layer's configuration.
func (l *Layer) Config() *LayerConfig {
	return l.config
}

// Worker returns the worker implementing the layer's computation, for the
// builder's capability queries.
func (l *Layer) Worker() Worker {
	return l.worker
}

// SetParamPropagateDown sets whether the layer computes gradients for the
// parameter blob at paramID. The backing vector grows on demand; every slot
// other than paramID keeps or receives the enabled default.
func (l *Layer) SetParamPropagateDown(paramID int, value bool) {
	for len(l.paramPropagateDown) <= paramID {
		l.paramPropagateDown = append(l.paramPropagateDown, true)
	}
	l.paramPropagateDown[paramID] = value
}

// ParamPropagateDown reports whether gradient computation is enabled for the
// parameter blob at paramID. Unset slots are enabled.
func (l *Layer) ParamPropagateDown(paramID int) bool {
	if paramID < 0 || paramID >= len(l.paramPropagateDown) {
		return true
	}
	return l.paramPropagateDown[paramID]
}

// Loss returns top topID's weight in the objective. ok is false when the
// top has no entry, meaning a zero contribution.
func (l *Layer) Loss(topID int) (float32, bool) {
	if topID < 0 || topID >= len(l.loss) {
		return 0, false
	}
	return l.loss[topID], true
}

// SetLoss assigns top topID's loss weight, growing the vector with zero
// (non-contributing) entries as needed.
func (l *Layer) SetLoss(topID int, weight float32) {
	for len(l.loss) <= topID {
		l.loss = append(l.loss, 0)
	}
	l.loss[topID] = weight
}
