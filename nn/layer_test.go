package nn

import (
	"errors"
	"math"
	"testing"

	"github.com/songww/juice/blob"
)

// scaleWorker copies its single bottom into each top scaled by Factor and
// stamps Weight into every top's diff buffer, the loss-weight convention
// Layer.Forward reads back.
type scaleWorker struct {
	BaseWorker
	Factor float32
	Weight float32
}

func (w *scaleWorker) ForwardCPU(bottom []*HeapBlob, top []*HeapBlob) {
	in := bottom[0].Data()
	for _, t := range top {
		out := t.MutableData()
		diff := t.MutableDiff()
		for i, v := range in {
			out[i] = v * w.Factor
			diff[i] = w.Weight
		}
	}
}

func (w *scaleWorker) BackwardCPU(top []*HeapBlob, propagateDown []bool, bottom []*HeapBlob) {
	for i, b := range bottom {
		if !propagateDown[i] {
			continue
		}
		dy := top[0].Diff()
		dx := b.MutableDiff()
		for j := range dx {
			dx[j] = dy[j] * w.Factor
		}
	}
}

// panicWorker fails mid-mutation.
type panicWorker struct {
	BaseWorker
}

func (w *panicWorker) ForwardCPU(bottom []*HeapBlob, top []*HeapBlob) {
	top[0].MutableData()[0] = 42 // torn write
	panic("numeric overflow")
}

func (w *panicWorker) BackwardCPU(top []*HeapBlob, propagateDown []bool, bottom []*HeapBlob) {
	panic("numeric overflow")
}

const (
	layerTypeScale LayerType = 100 + iota
	layerTypePanic
)

func init() {
	RegisterWorker(layerTypeScale, func(*LayerConfig) Worker { return &scaleWorker{Factor: 2, Weight: 1} })
	RegisterWorker(layerTypePanic, func(*LayerConfig) Worker { return &panicWorker{} })
}

func sharedFromSlice(t *testing.T, data []float32) *SharedBlob {
	t.Helper()
	b, err := blob.FromSlice(data, blob.NewShape(len(data)))
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return NewSharedBlob(b)
}

// TestNewLayerUnknownType verifies an unregistered type tag is a config error
func TestNewLayerUnknownType(t *testing.T) {
	cfg := NewLayerConfig("mystery", LayerType(9999))
	if _, err := NewLayer(cfg); !errors.Is(err, ErrUnknownLayerType) {
		t.Errorf("Expected ErrUnknownLayerType, got %v", err)
	}
}

// TestNewLayerSelectsWorker verifies construction dispatches on the type tag
func TestNewLayerSelectsWorker(t *testing.T) {
	layer, err := NewLayer(NewLayerConfig("s", LayerSigmoid))
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}
	if _, ok := layer.Worker().(*Sigmoid); !ok {
		t.Errorf("Expected *Sigmoid worker, got %T", layer.Worker())
	}

	layer, err = NewLayer(NewLayerConfig("r", LayerReLU))
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}
	if _, ok := layer.Worker().(*ReLU); !ok {
		t.Errorf("Expected *ReLU worker, got %T", layer.Worker())
	}
}

// TestNewLayerBadPropagateDown verifies a malformed mask is rejected at build time
func TestNewLayerBadPropagateDown(t *testing.T) {
	cfg := NewLayerConfig("join", LayerReLU)
	cfg.AddBottom("a")
	cfg.AddBottom("b")
	cfg.PropagateDown = []bool{true}

	if _, err := NewLayer(cfg); !errors.Is(err, ErrPropagateDownLen) {
		t.Errorf("Expected ErrPropagateDownLen, got %v", err)
	}
}

// TestSetParamPropagateDown verifies auto-growth fills new slots enabled and
// writing is idempotent
func TestSetParamPropagateDown(t *testing.T) {
	layer, err := NewLayer(NewLayerConfig("s", LayerSigmoid))
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	layer.SetParamPropagateDown(3, false)
	for i := 0; i < 3; i++ {
		if !layer.ParamPropagateDown(i) {
			t.Errorf("Slot %d should default to enabled", i)
		}
	}
	if layer.ParamPropagateDown(3) {
		t.Error("Slot 3 should be disabled")
	}

	// Idempotent
	layer.SetParamPropagateDown(3, false)
	if layer.ParamPropagateDown(3) {
		t.Error("Repeated write should keep slot 3 disabled")
	}

	// Growing further keeps previously-unset intermediates enabled
	layer.SetParamPropagateDown(5, false)
	if !layer.ParamPropagateDown(4) {
		t.Error("Slot 4 should default to enabled after growth")
	}

	// Beyond the vector means the enabled default
	if !layer.ParamPropagateDown(10) {
		t.Error("Out-of-range slot should report enabled")
	}
}

// TestLoss verifies loss weights grow with zero fill and report absence out of range
func TestLoss(t *testing.T) {
	layer, err := NewLayer(NewLayerConfig("s", LayerSigmoid))
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	if _, ok := layer.Loss(0); ok {
		t.Error("Loss(0) should report absent before any SetLoss")
	}

	layer.SetLoss(2, 0.5)
	if w, ok := layer.Loss(2); !ok || w != 0.5 {
		t.Errorf("Loss(2): expected (0.5, true), got (%f, %v)", w, ok)
	}
	if w, ok := layer.Loss(1); !ok || w != 0 {
		t.Errorf("Loss(1): expected zero fill (0, true), got (%f, %v)", w, ok)
	}
	if _, ok := layer.Loss(3); ok {
		t.Error("Loss(3) should report absent")
	}
}

// TestForwardLossAccumulation verifies loss sums dot(data, diff) over exactly
// the non-zero-weighted tops
func TestForwardLossAccumulation(t *testing.T) {
	cfg := NewLayerConfig("score", layerTypeScale)
	cfg.AddBottom("data")
	cfg.AddTop("a")
	cfg.AddTop("b")
	layer, err := NewLayer(cfg)
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	bottom := []*SharedBlob{sharedFromSlice(t, []float32{1, 2, 3})}
	top := []*SharedBlob{
		NewSharedBlob(blob.New[float32](blob.NewShape(3))),
		NewSharedBlob(blob.New[float32](blob.NewShape(3))),
	}

	// Only top 0 participates in the objective
	layer.SetLoss(0, 1)

	loss, err := layer.Forward(bottom, top)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	// Worker writes data = 2*input and diff = 1, so top 0 contributes
	// 2+4+6 = 12; top 1 has identical contents but zero weight.
	if math.Abs(float64(loss-12)) > 1e-5 {
		t.Errorf("Expected loss 12, got %f", loss)
	}

	// Bottoms must be untouched
	b, err := bottom[0].RLock()
	if err != nil {
		t.Fatalf("RLock failed: %v", err)
	}
	if b.Data()[0] != 1 || b.Diff()[0] != 0 {
		t.Errorf("Forward mutated a bottom: data %f diff %f", b.Data()[0], b.Diff()[0])
	}
	bottom[0].RUnlock()

	// A zero weight contributes exactly 0 even with non-zero data/diff
	layer.SetLoss(0, 0)
	loss, err = layer.Forward(bottom, top)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if loss != 0 {
		t.Errorf("Expected zero loss with all weights zero, got %f", loss)
	}
}

// TestForwardPanicPoisonsTops verifies a panicking worker surfaces as an
// error and poisons the tops it may have torn
func TestForwardPanicPoisonsTops(t *testing.T) {
	cfg := NewLayerConfig("bad", layerTypePanic)
	cfg.AddBottom("data")
	cfg.AddTop("out")
	layer, err := NewLayer(cfg)
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	bottom := []*SharedBlob{sharedFromSlice(t, []float32{1})}
	top := []*SharedBlob{NewSharedBlob(blob.New[float32](blob.NewShape(1)))}

	if _, err := layer.Forward(bottom, top); err == nil {
		t.Fatal("Expected an error from a panicking worker")
	}
	if !top[0].Poisoned() {
		t.Fatal("Panicking worker should poison its tops")
	}
	if bottom[0].Poisoned() {
		t.Error("Bottoms were only read and should not be poisoned")
	}

	// The poisoned top is now fatal for any invocation touching it
	if _, err := layer.Forward(bottom, top); !errors.Is(err, ErrBlobPoisoned) {
		t.Errorf("Expected ErrBlobPoisoned on reuse, got %v", err)
	}
}

// TestBackwardHonorsMask verifies masked-off bottoms are left untouched
func TestBackwardHonorsMask(t *testing.T) {
	cfg := NewLayerConfig("score", layerTypeScale)
	cfg.AddBottom("a")
	cfg.AddBottom("b")
	cfg.AddTop("out")
	layer, err := NewLayer(cfg)
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	bottom := []*SharedBlob{
		sharedFromSlice(t, []float32{1, 1}),
		sharedFromSlice(t, []float32{1, 1}),
	}
	out, err := blob.FromSlice([]float32{0, 0}, blob.NewShape(2))
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	copy(out.MutableDiff(), []float32{3, 5})
	top := []*SharedBlob{NewSharedBlob(out)}

	if err := layer.Backward(top, []bool{true, false}, bottom); err != nil {
		t.Fatalf("Backward failed: %v", err)
	}

	b0, _ := bottom[0].RLock()
	if b0.Diff()[0] != 6 || b0.Diff()[1] != 10 {
		t.Errorf("Expected bottom 0 diff [6 10], got %v", b0.Diff())
	}
	bottom[0].RUnlock()

	b1, _ := bottom[1].RLock()
	if b1.Diff()[0] != 0 || b1.Diff()[1] != 0 {
		t.Errorf("Masked-off bottom must stay untouched, got %v", b1.Diff())
	}
	bottom[1].RUnlock()
}

// TestBackwardMaskLength verifies a mask of the wrong length is rejected
func TestBackwardMaskLength(t *testing.T) {
	cfg := NewLayerConfig("score", layerTypeScale)
	cfg.AddBottom("a")
	cfg.AddTop("out")
	layer, err := NewLayer(cfg)
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	bottom := []*SharedBlob{sharedFromSlice(t, []float32{1})}
	top := []*SharedBlob{NewSharedBlob(blob.New[float32](blob.NewShape(1)))}

	if err := layer.Backward(top, []bool{true, true}, bottom); !errors.Is(err, ErrPropagateDownLen) {
		t.Errorf("Expected ErrPropagateDownLen, got %v", err)
	}
}

// TestBackwardPanicPoisonsBottoms verifies a backward panic poisons the
// bottoms the worker may have torn
func TestBackwardPanicPoisonsBottoms(t *testing.T) {
	cfg := NewLayerConfig("bad", layerTypePanic)
	cfg.AddBottom("data")
	cfg.AddTop("out")
	layer, err := NewLayer(cfg)
	if err != nil {
		t.Fatalf("NewLayer failed: %v", err)
	}

	bottom := []*SharedBlob{sharedFromSlice(t, []float32{1})}
	top := []*SharedBlob{NewSharedBlob(blob.New[float32](blob.NewShape(1)))}

	if err := layer.Backward(top, []bool{true}, bottom); err == nil {
		t.Fatal("Expected an error from a panicking worker")
	}
	if !bottom[0].Poisoned() {
		t.Error("Panicking worker should poison its bottoms")
	}
	if top[0].Poisoned() {
		t.Error("Tops were only read and should not be poisoned")
	}
}
