package nn

import (
	"fmt"

	"github.com/songww/juice/blob"
)

// HeapBlob is the working precision of the execution core.
type HeapBlob = blob.Blob[float32]

// LayerType identifies the computation a layer performs
type LayerType int

const (
	LayerSigmoid LayerType = 0 // 1 / (1 + exp(-v))
	LayerReLU    LayerType = 1 // max(v, 0)
)

// String returns the layer type's name for diagnostics.
func (t LayerType) String() string {
	switch t {
	case LayerSigmoid:
		return "Sigmoid"
	case LayerReLU:
		return "ReLU"
	default:
		return fmt.Sprintf("LayerType(%d)", int(t))
	}
}

// DimCheckMode selects how strictly two shared parameters' shapes must agree
type DimCheckMode int

const (
	DimCheckStrict     DimCheckMode = 0 // shapes must match element-wise
	DimCheckPermissive DimCheckMode = 1 // only the element counts must match
)
