package nn

// ReLU zeroes negative inputs and passes positive ones through. Exactly one
// bottom and one top.
type ReLU struct {
	BaseWorker
}

// ForwardCPU writes max(bottom, 0) into top's data buffer.
func (r *ReLU) ForwardCPU(bottom []*HeapBlob, top []*HeapBlob) {
	in := bottom[0].Data()
	out := top[0].MutableData()
	for i, v := range in {
		if v > 0 {
			out[i] = v
		} else {
			out[i] = 0
		}
	}
}

// BackwardCPU passes the top gradient through where the input was positive.
func (r *ReLU) BackwardCPU(top []*HeapBlob, propagateDown []bool, bottom []*HeapBlob) {
	if !propagateDown[0] {
		return
	}
	x := bottom[0].Data()
	dy := top[0].Diff()
	dx := bottom[0].MutableDiff()
	for i := range x {
		if x[i] > 0 {
			dx[i] = dy[i]
		} else {
			dx[i] = 0
		}
	}
}

// ExactNumBottomBlobs requires a single input.
func (r *ReLU) ExactNumBottomBlobs() int { return 1 }

// ExactNumTopBlobs requires a single output.
func (r *ReLU) ExactNumTopBlobs() int { return 1 }
