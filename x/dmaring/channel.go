package dmaring

import (
	"sync"
	"sync/atomic"

	"devconsole-go/errcode"
)

// Channel emulates a DMA channel in circular mode: it copies incoming bytes
// into the armed buffer at its own cursor, wrapping at the end, and exposes
// the bytes-remaining counter the way the hardware does. It never waits for
// the reader; a reader that falls more than len(buf) bytes behind loses data.
//
// Write and Idle belong to the producer side (a receive IRQ pump or a test).
// Remaining may be called concurrently from the reader.
type Channel struct {
	mu     sync.Mutex // serialises producers and arming; not taken by Remaining
	buf    []byte
	onIdle func()
	size   atomic.Uint32
	wr     atomic.Uint32 // write index in [0, size)
	total  atomic.Uint64 // bytes ever written
}

// NewChannel returns an unarmed channel.
func NewChannel() *Channel { return &Channel{} }

// Start arms circular reception into buf. onIdle is invoked by Idle and may
// be nil.
func (c *Channel) Start(buf []byte, onIdle func()) error {
	if len(buf) == 0 {
		return errcode.InvalidParams
	}
	c.mu.Lock()
	c.buf = buf
	c.onIdle = onIdle
	c.wr.Store(0)
	c.size.Store(uint32(len(buf)))
	c.mu.Unlock()
	return nil
}

// Remaining reports bytes left until wrap; len(buf) when the cursor is at 0.
func (c *Channel) Remaining() int {
	return int(c.size.Load()) - int(c.wr.Load())
}

// Written reports the number of bytes written since construction.
func (c *Channel) Written() uint64 { return c.total.Load() }

// Write copies p into the ring, overwriting unread data if the reader is
// behind. It returns errcode.NotStarted before Start.
func (c *Channel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return 0, errcode.NotStarted
	}
	size := uint32(len(c.buf))
	wr := c.wr.Load()
	for rest := p; len(rest) > 0; {
		n := copy(c.buf[wr:], rest)
		rest = rest[n:]
		wr += uint32(n)
		if wr == size {
			wr = 0
		}
	}
	c.wr.Store(wr) // release: bytes above are visible to a reader that loads wr
	c.total.Add(uint64(len(p)))
	return len(p), nil
}

// Idle raises the line-idle notification, as the UART does after a gap in
// traffic.
func (c *Channel) Idle() {
	c.mu.Lock()
	fn := c.onIdle
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
