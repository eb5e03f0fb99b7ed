// Package console is a non-blocking serial console: it drains a circular DMA
// receive buffer, edits lines with echo and backspace, and dispatches
// completed lines to a fixed command table.
//
// Everything except the idle notification runs on the polling task. The
// interrupt side only ever sets a flag.
package console

import (
	"sync/atomic"

	"devconsole-go/errcode"
	"devconsole-go/x/dmaring"
)

// Ingress is the receive side of the serial link: a DMA channel in circular
// mode writing into a buffer owned by the console.
type Ingress interface {
	// Start arms reception into buf and enables the line-idle notification.
	// onIdle may be called from interrupt context.
	Start(buf []byte, onIdle func()) error
	// Remaining reports the channel's bytes-remaining counter.
	Remaining() int
}

// Transmitter sends bytes synchronously with a bounded wait.
type Transmitter interface {
	Transmit(p []byte) error
}

// Stats are cumulative counters since construction.
type Stats struct {
	BytesIn      uint64
	Lines        uint64
	Unknown      uint64
	CommandErrs  uint64
	DroppedChars uint64
	TxErrors     uint64
}

// Console is the facade the scheduler drives.
type Console struct {
	cfg    Config
	in     Ingress
	out    *txWriter
	ring   []byte
	reader *dmaring.Reader
	editor *Editor
	disp   *Dispatcher
	ready  bool

	bytesIn, lines, unknown, cmdErrs, txErrs atomic.Uint64
}

// New builds a console with the builtin command table.
func New(cfg Config, in Ingress, tx Transmitter, led LED) *Console {
	return NewWithTable(cfg, in, tx, led, Builtins())
}

// NewWithTable builds a console with a custom command table.
func NewWithTable(cfg Config, in Ingress, tx Transmitter, led LED, table Table) *Console {
	cfg = cfg.Normalize()
	c := &Console{cfg: cfg, in: in}
	c.out = &txWriter{tx: tx, errs: &c.txErrs}
	c.ring = make([]byte, cfg.RingSize)
	c.reader = dmaring.NewReader(c.ring, in)
	c.editor = NewEditor(cfg.LineSize, c.out)
	c.disp = NewDispatcher(table, c.out, led, cfg.MaxArgs)
	return c
}

// Config returns the normalized configuration.
func (c *Console) Config() Config { return c.cfg }

// Init arms the receiver, enables idle notification and prints the prompt.
func (c *Console) Init() error {
	if err := c.in.Start(c.ring, c.reader.Signal); err != nil {
		return &errcode.E{C: errcode.NotStarted, Op: "console init", Err: err}
	}
	c.ready = true
	c.prompt()
	return nil
}

// Notify marks that new bytes may have arrived. Safe from interrupt context.
func (c *Console) Notify() { c.reader.Signal() }

// PollOnce drains whatever arrived since the last call and handles every line
// it completes. It returns quickly when nothing is pending.
func (c *Console) PollOnce() {
	if !c.ready {
		return
	}
	n := c.reader.Poll(c.feed)
	c.bytesIn.Add(uint64(n))
}

func (c *Console) feed(p []byte) { c.editor.Feed(p, c.handleLine) }

func (c *Console) handleLine(line []byte) {
	c.lines.Add(1)
	switch err := c.disp.Dispatch(line); errcode.Of(err) {
	case errcode.OK:
	case errcode.UnknownCommand:
		c.unknown.Add(1)
	default:
		c.cmdErrs.Add(1)
	}
	c.prompt()
}

func (c *Console) prompt() { c.out.WriteString(c.cfg.Prompt) }

// Stats returns a snapshot of the counters. Safe from any goroutine.
func (c *Console) Stats() Stats {
	return Stats{
		BytesIn:      c.bytesIn.Load(),
		Lines:        c.lines.Load(),
		Unknown:      c.unknown.Load(),
		CommandErrs:  c.cmdErrs.Load(),
		DroppedChars: c.editor.Dropped(),
		TxErrors:     c.txErrs.Load(),
	}
}

// txWriter adapts the transmit primitive to io.Writer. Transmit failures are
// counted and logged; they never stop the console.
type txWriter struct {
	tx   Transmitter
	errs *atomic.Uint64
}

func (w *txWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := w.tx.Transmit(p); err != nil {
		w.errs.Add(1)
		e := &errcode.E{C: errcode.TxFailed, Op: "transmit", Err: err}
		println("[console]", e.Error())
		return 0, e
	}
	return len(p), nil
}

func (w *txWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }
