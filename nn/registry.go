package nn

import (
	"github.com/pkg/errors"
)

// WorkerConstructor builds the Worker for one layer type from its config.
type WorkerConstructor func(cfg *LayerConfig) Worker

// workerRegistry maps layer type tags to worker constructors. Adding a layer
// type means adding a LayerType constant and registering its constructor;
// the dispatch contract never changes.
var workerRegistry = map[LayerType]WorkerConstructor{
	LayerSigmoid: func(*LayerConfig) Worker { return &Sigmoid{} },
	LayerReLU:    func(*LayerConfig) Worker { return &ReLU{} },
}

// RegisterWorker registers a constructor for a layer type, replacing any
// previous registration. Call it from an init function before layers are
// built; the registry is not synchronized.
func RegisterWorker(t LayerType, fn WorkerConstructor) {
	workerRegistry[t] = fn
}

func workerFromConfig(cfg *LayerConfig) (Worker, error) {
	fn, ok := workerRegistry[cfg.Type()]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownLayerType, "layer %q type %s", cfg.Name(), cfg.Type())
	}
	return fn(cfg), nil
}
