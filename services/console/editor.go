package console

import (
	"io"
	"sync/atomic"

	"devconsole-go/x/mathx"
)

const (
	keyBS  = 0x08
	keyDEL = 0x7F
)

var (
	seqNewline = []byte("\r\n")
	seqErase   = []byte("\b \b")
)

// Editor assembles one line at a time from raw terminal bytes, echoing as it
// goes. It holds at most size-1 characters; further printable bytes are
// dropped and the line stays intact.
type Editor struct {
	buf     []byte
	n       int
	out     io.Writer
	dropped atomic.Uint64
	one     [1]byte
}

// NewEditor returns an editor with a line buffer of size bytes writing echo
// to out.
func NewEditor(size int, out io.Writer) *Editor {
	if size < 2 {
		size = 2
	}
	return &Editor{buf: make([]byte, size), out: out}
}

// Len returns the length of the line in progress.
func (e *Editor) Len() int { return e.n }

// Dropped returns the number of printable bytes discarded on overflow. Safe
// from any goroutine.
func (e *Editor) Dropped() uint64 { return e.dropped.Load() }

// Feed processes p in order. onLine is called for every completed non-empty
// line, before the next byte is looked at. The slice passed to onLine is only
// valid for the duration of the call.
func (e *Editor) Feed(p []byte, onLine func(line []byte)) {
	for _, c := range p {
		switch {
		case c == '\r' || c == '\n':
			e.out.Write(seqNewline)
			if e.n > 0 {
				line := e.buf[:e.n]
				e.n = 0
				onLine(line)
			}
		case c == keyBS || c == keyDEL:
			if e.n > 0 {
				e.n--
				e.out.Write(seqErase)
			}
		case mathx.Between(c, 0x20, 0x7E):
			if e.n < len(e.buf)-1 {
				e.buf[e.n] = c
				e.n++
				e.one[0] = c
				e.out.Write(e.one[:])
			} else {
				e.dropped.Add(1)
			}
		}
	}
}

// Reset discards the line in progress.
func (e *Editor) Reset() { e.n = 0 }
