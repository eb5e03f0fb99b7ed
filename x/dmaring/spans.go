// Package dmaring drains a circular receive buffer that is filled by a
// hardware (or emulated) DMA channel running in circular mode.
//
// The writer never tells the reader how much it wrote. The reader derives the
// write position from the channel's bytes-remaining counter on each poll and
// walks the unread region since its own cursor, splitting it in two when the
// writer has wrapped.
package dmaring

// Span is a half-open index range [Start, End) into the ring.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End - s.Start }

// Spans appends to dst the unread ranges between the read cursor last and the
// write cursor head of a ring of the given size, in arrival order.
//
//	head == last  -> nothing
//	head >  last  -> [last, head)
//	head <  last  -> [last, size), then [0, head)
//
// The wrapped case always yields two spans; the second is empty when the
// writer stopped exactly at index 0. Both cursors must lie in [0, size).
func Spans(dst []Span, last, head, size int) []Span {
	switch {
	case head == last:
		return dst
	case head > last:
		return append(dst, Span{Start: last, End: head})
	default:
		return append(dst, Span{Start: last, End: size}, Span{Start: 0, End: head})
	}
}
