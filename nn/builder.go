package nn

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Build-time validation helpers. The network builder runs these once while
// assembling the graph; the per-invocation paths (Forward, Backward) never
// re-check what they establish.

// CheckBlobCounts verifies the declared bottom and top names satisfy the
// worker's arity constraints. Tops missing against a declared minimum or
// exact count are only acceptable when the worker auto-creates them; the
// builder then fills the gap with AutoTopNames.
func CheckBlobCounts(cfg *LayerConfig, w Worker) error {
	if n := w.ExactNumBottomBlobs(); n > 0 && cfg.BottomsLen() != n {
		return errors.Errorf("layer %q (%s) requires exactly %d bottom blobs, %d declared",
			cfg.Name(), cfg.Type(), n, cfg.BottomsLen())
	}
	if n := w.ExactNumTopBlobs(); n > 0 && cfg.TopsLen() != n {
		if !(w.AutoTopBlobs() && cfg.TopsLen() < n) {
			return errors.Errorf("layer %q (%s) requires exactly %d top blobs, %d declared",
				cfg.Name(), cfg.Type(), n, cfg.TopsLen())
		}
	}
	if n := w.MinTopBlobs(); n > 0 && cfg.TopsLen() < n && !w.AutoTopBlobs() {
		return errors.Errorf("layer %q (%s) requires at least %d top blobs, %d declared",
			cfg.Name(), cfg.Type(), n, cfg.TopsLen())
	}
	return nil
}

// AutoTopNames synthesizes names for the anonymous top blobs needed to bring
// cfg up to the worker's declared top arity. The names are unique so the
// builder can key pass-through activation blobs by them. Returns nil when the
// declared tops already satisfy the arity, and an error when tops are missing
// but the worker does not auto-create them.
func AutoTopNames(cfg *LayerConfig, w Worker) ([]string, error) {
	need := w.ExactNumTopBlobs()
	if need == 0 {
		need = w.MinTopBlobs()
	}
	missing := need - cfg.TopsLen()
	if missing <= 0 {
		return nil, nil
	}
	if !w.AutoTopBlobs() {
		return nil, errors.Errorf("layer %q (%s) declares %d of %d required top blobs and its worker does not auto-create tops",
			cfg.Name(), cfg.Type(), cfg.TopsLen(), need)
	}
	names := make([]string, missing)
	for i := range names {
		names[i] = "auto_top_" + uuid.NewString()
	}
	return names, nil
}

// PropagateDownMask resolves the per-bottom gradient mask Backward expects.
// An explicit cfg.PropagateDown wins; otherwise a bottom propagates when its
// data needs gradients in the surrounding graph, or when forceBackward is
// set and the worker honors forcing for that bottom. bottomNeedsGrad must
// carry one entry per declared bottom.
func PropagateDownMask(cfg *LayerConfig, w Worker, forceBackward bool, bottomNeedsGrad []bool) ([]bool, error) {
	if !cfg.CheckPropagateDownLen() {
		return nil, errors.Wrapf(ErrPropagateDownLen, "layer %q: %d entries for %d bottoms",
			cfg.Name(), len(cfg.PropagateDown), cfg.BottomsLen())
	}
	if len(bottomNeedsGrad) != cfg.BottomsLen() {
		return nil, errors.Errorf("layer %q: bottomNeedsGrad has %d entries for %d bottoms",
			cfg.Name(), len(bottomNeedsGrad), cfg.BottomsLen())
	}
	mask := make([]bool, cfg.BottomsLen())
	for i := range mask {
		if len(cfg.PropagateDown) > 0 {
			mask[i] = cfg.PropagateDown[i]
			continue
		}
		mask[i] = bottomNeedsGrad[i] || (forceBackward && w.AllowForceBackward(i))
	}
	return mask, nil
}

// ShareParam verifies that a sharing layer's parameter handle is compatible
// with the owner's under pc's share mode, read-locking both handles for the
// check. The builder calls it whenever it resolves a named parameter shared
// by more than one layer.
func ShareParam(pc *ParamConfig, owner, sharer *SharedBlob, paramName, ownerLayer, sharerLayer string) error {
	ownerBlob, err := owner.RLock()
	if err != nil {
		return errors.Wrapf(err, "param %q: owner blob", paramName)
	}
	defer owner.RUnlock()

	sharerBlob, err := sharer.RLock()
	if err != nil {
		return errors.Wrapf(err, "param %q: sharing blob", paramName)
	}
	defer sharer.RUnlock()

	return pc.CheckDimensions(sharerBlob, ownerBlob, paramName, ownerLayer, sharerLayer)
}
