// Package mpicall classifies call instructions into the three MPI call
// categories the race-detection core reasons about: non-blocking,
// blocking, and wait.
package mpicall

import "github.com/mpirace-tools/mpirace/internal/ir"

// NonBlockingCall records a non-blocking communication call
// (MPI_Isend, MPI_Irsend, MPI_Irecv). BufferStart has had one outer
// bitcast stripped; Waits is populated exactly once, by the engine's
// wait-identification pass, immediately before race detection runs for
// this record.
type NonBlockingCall struct {
	Call             *ir.Call
	APIName          string
	BufferStart      ir.Value
	BufferAccessSize uint64
	Write            bool
	Request          ir.Value
	Waits            []*WaitCall
}

// AddWait records w as a completion call matched to this non-blocking call.
func (n *NonBlockingCall) AddWait(w *WaitCall) {
	n.Waits = append(n.Waits, w)
}

// IsWaitOfThis reports whether call is one of n's matched waits.
func (n *NonBlockingCall) IsWaitOfThis(call *ir.Call) bool {
	for _, w := range n.Waits {
		if w.Call == call {
			return true
		}
	}

	return false
}

// BlockingCall records a blocking communication call (MPI_Send, MPI_Recv).
type BlockingCall struct {
	Call             *ir.Call
	APIName          string
	BufferStart      ir.Value
	BufferAccessSize uint64
	Write            bool
}

// WaitCall records a completion call (MPI_Wait, MPI_Waitall, MPI_Waitany).
// WaitCount is the literal 1 for the singular forms, or the call's own
// count operand for MPI_Waitall.
type WaitCall struct {
	Call      *ir.Call
	APIName   string
	WaitCount ir.Value
	Request   ir.Value
}
