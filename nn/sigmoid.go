package nn

import (
	"github.com/chewxy/math32"
)

// Sigmoid applies the logistic function 1 / (1 + exp(-v)) element-wise.
// Exactly one bottom and one top.
type Sigmoid struct {
	BaseWorker
}

// ForwardCPU writes sigmoid(bottom) into top's data buffer.
func (s *Sigmoid) ForwardCPU(bottom []*HeapBlob, top []*HeapBlob) {
	in := bottom[0].Data()
	out := top[0].MutableData()
	for i, v := range in {
		out[i] = 1 / (1 + math32.Exp(-v))
	}
}

// BackwardCPU computes dx = dy * y * (1 - y) from the forward output kept in
// top's data buffer.
func (s *Sigmoid) BackwardCPU(top []*HeapBlob, propagateDown []bool, bottom []*HeapBlob) {
	if !propagateDown[0] {
		return
	}
	y := top[0].Data()
	dy := top[0].Diff()
	dx := bottom[0].MutableDiff()
	for i := range y {
		dx[i] = dy[i] * y[i] * (1 - y[i])
	}
}

// ExactNumBottomBlobs requires a single input.
func (s *Sigmoid) ExactNumBottomBlobs() int { return 1 }

// ExactNumTopBlobs requires a single output.
func (s *Sigmoid) ExactNumTopBlobs() int { return 1 }
