package dmaring

import (
	"sync/atomic"

	"devconsole-go/x/mathx"
)

// Counter reports the DMA transfer counter: bytes left before the channel
// wraps back to index 0. A channel at index 0 reports len(buf).
type Counter interface {
	Remaining() int
}

// Reader is the single consumer of a circular DMA buffer.
//
// Signal is the only method that may be called from interrupt context. All
// other methods belong to the polling task.
type Reader struct {
	buf     []byte
	ctr     Counter
	last    int
	pending atomic.Bool

	scratch [2]Span
}

// NewReader returns a reader over buf whose write position is derived from ctr.
func NewReader(buf []byte, ctr Counter) *Reader {
	if len(buf) == 0 {
		panic("dmaring: empty buffer")
	}
	return &Reader{buf: buf, ctr: ctr}
}

// Signal marks that new data may have arrived. Repeated signals between polls
// coalesce. Safe from interrupt context.
func (r *Reader) Signal() { r.pending.Store(true) }

// Pending reports whether a signal is outstanding.
func (r *Reader) Pending() bool { return r.pending.Load() }

// Last returns the read cursor.
func (r *Reader) Last() int { return r.last }

// Size returns the ring capacity.
func (r *Reader) Size() int { return len(r.buf) }

// Head derives the current write position from the transfer counter.
// Counter values outside [1, size] are folded into [0, size).
func (r *Reader) Head() int {
	size := len(r.buf)
	head := size - mathx.Clamp(r.ctr.Remaining(), 0, size)
	if head == size {
		return 0
	}
	return head
}

// Poll consumes everything written since the previous poll. fn is called once
// per non-empty span, in arrival order, with a view into the ring that is only
// valid for the duration of the call. Poll returns the number of bytes visited.
//
// When no signal is pending Poll returns 0 without touching any state.
func (r *Reader) Poll(fn func(p []byte)) int {
	if !r.pending.Swap(false) {
		return 0
	}
	head := r.Head()
	n := 0
	for _, s := range Spans(r.scratch[:0], r.last, head, len(r.buf)) {
		if s.Len() == 0 {
			continue
		}
		fn(r.buf[s.Start:s.End])
		n += s.Len()
	}
	r.last = head
	return n
}
