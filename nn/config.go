package nn

import (
	"github.com/pkg/errors"
)

// ParamConfig specifies training parameters for one learnable blob:
// multipliers on the global learning constants, and the name and share mode
// used for weight sharing.
type ParamConfig struct {
	// Name identifies the parameter for sharing among layers; two layers
	// share a parameter by declaring the same non-empty name. Default ""
	// (unshared).
	Name string

	// ShareMode controls how strictly shared weights' shapes must agree.
	// Default DimCheckStrict.
	ShareMode DimCheckMode

	// LrMult multiplies the global learning rate for this parameter.
	// nil means the default of 1.0.
	LrMult *float32

	// DecayMult multiplies the global weight decay for this parameter.
	// nil means the default of 1.0.
	DecayMult *float32
}

// LrMultiplier returns the learning-rate multiplier, defaulting to 1.0 when
// unset.
func (pc *ParamConfig) LrMultiplier() float32 {
	if pc.LrMult == nil {
		return 1.0
	}
	return *pc.LrMult
}

// DecayMultiplier returns the weight-decay multiplier, defaulting to 1.0
// when unset.
func (pc *ParamConfig) DecayMultiplier() float32 {
	if pc.DecayMult == nil {
		return 1.0
	}
	return *pc.DecayMult
}

// CheckDimensions verifies that a sharing layer's parameter blob (blobOne)
// is compatible with the owner's (blobTwo) under the configured share mode:
// DimCheckStrict requires element-wise shape equality, DimCheckPermissive
// only equal element counts. The check is pure; a mismatch reports the
// parameter name, both layer names, and both shapes.
func (pc *ParamConfig) CheckDimensions(blobOne, blobTwo *HeapBlob, paramName, ownerName, layerName string) error {
	switch pc.ShareMode {
	case DimCheckPermissive:
		if blobOne.Numel() != blobTwo.Numel() {
			return errors.Errorf(
				"cannot share param %q owned by layer %q with layer %q: count mismatch; owner layer param shape is %s, sharing layer param shape is %s",
				paramName, ownerName, layerName, blobTwo.ShapeString(), blobOne.ShapeString())
		}
	default: // DimCheckStrict
		if !blobOne.Shape().Equal(blobTwo.Shape()) {
			return errors.Errorf(
				"cannot share param %q owned by layer %q with layer %q: shape mismatch; owner layer param shape is %s, sharing layer expects param shape %s",
				paramName, ownerName, layerName, blobTwo.ShapeString(), blobOne.ShapeString())
		}
	}
	return nil
}

// LayerConfig is the immutable description of one layer instance: its name,
// type tag, declared top and bottom blob names, parameter configs, and the
// optional per-bottom backprop-skip mask.
type LayerConfig struct {
	name      string
	layerType LayerType

	tops    []string
	bottoms []string
	params  []ParamConfig

	// PropagateDown lists, per bottom, whether backpropagation should run
	// for it. Either empty (propagate to all bottoms) or exactly one entry
	// per bottom; CheckPropagateDownLen validates this before the mask may
	// be trusted.
	PropagateDown []bool
}

// NewLayerConfig creates a LayerConfig for a named layer of the given type.
func NewLayerConfig(name string, layerType LayerType) *LayerConfig {
	return &LayerConfig{
		name:      name,
		layerType: layerType,
	}
}

// Name returns the layer's name.
func (c *LayerConfig) Name() string {
	return c.name
}

// Type returns the layer's type tag.
func (c *LayerConfig) Type() LayerType {
	return c.layerType
}

// AddTop declares another top (output) blob name.
func (c *LayerConfig) AddTop(name string) {
	c.tops = append(c.tops, name)
}

// AddBottom declares another bottom (input) blob name.
func (c *LayerConfig) AddBottom(name string) {
	c.bottoms = append(c.bottoms, name)
}

// AddParam appends a parameter config; params are index-aligned with the
// layer's parameter blobs.
func (c *LayerConfig) AddParam(p ParamConfig) {
	c.params = append(c.params, p)
}

// Top returns the name of the requested top blob; ok is false out of range.
func (c *LayerConfig) Top(topID int) (string, bool) {
	if topID < 0 || topID >= len(c.tops) {
		return "", false
	}
	return c.tops[topID], true
}

// TopsLen returns the number of declared top blobs.
func (c *LayerConfig) TopsLen() int {
	return len(c.tops)
}

// Bottom returns the name of the requested bottom blob; ok is false out of
// range.
func (c *LayerConfig) Bottom(bottomID int) (string, bool) {
	if bottomID < 0 || bottomID >= len(c.bottoms) {
		return "", false
	}
	return c.bottoms[bottomID], true
}

// BottomsLen returns the number of declared bottom blobs.
func (c *LayerConfig) BottomsLen() int {
	return len(c.bottoms)
}

// Param returns the requested parameter config; ok is false out of range.
func (c *LayerConfig) Param(paramID int) (*ParamConfig, bool) {
	if paramID < 0 || paramID >= len(c.params) {
		return nil, false
	}
	return &c.params[paramID], true
}

// ParamsLen returns the number of parameter configs.
func (c *LayerConfig) ParamsLen() int {
	return len(c.params)
}

// CheckPropagateDownLen reports whether PropagateDown is usable: empty, or
// exactly one entry per bottom.
func (c *LayerConfig) CheckPropagateDownLen() bool {
	return len(c.PropagateDown) == 0 || len(c.PropagateDown) == len(c.bottoms)
}
