// Package nn implements the layer-execution core: a uniform contract for
// heterogeneous computational layers that transform blobs in a forward pass
// and propagate gradients in a backward pass.
//
// A Layer binds an immutable LayerConfig to the Worker implementing its
// math, and wraps every invocation with the shared-blob locking contract:
//   - bottom (input) blobs are read-locked as a batch, in declared order
//   - top (output) blobs are write-locked as a batch, in declared order
//   - all locks are released before the loss pass re-reads the tops
//
// Blobs crossing layer boundaries travel as *SharedBlob handles: any number
// of layers may hold concurrent read access, a writer is exclusive, and a
// writer that fails mid-mutation poisons the handle so no later acquisition
// can observe torn data.
//
// Example usage:
//
//	cfg := nn.NewLayerConfig("score", nn.LayerSigmoid)
//	cfg.AddBottom("data")
//	cfg.AddTop("prob")
//
//	layer, err := nn.NewLayer(cfg)
//	if err != nil {
//		// unknown layer type or malformed config
//	}
//
//	loss, err := layer.Forward(bottoms, tops)
//	mask, _ := nn.PropagateDownMask(cfg, layer.Worker(), false, needsGrad)
//	err = layer.Backward(tops, mask, bottoms)
//
// Network-level concerns stay outside this package: graph assembly wires the
// SharedBlob handles, guarantees topological invocation order, and runs the
// build-time checks (CheckBlobCounts, PropagateDownMask, ShareParam) before
// the first forward pass.
package nn
