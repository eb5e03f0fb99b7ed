// Package platform brings up the board the console runs on: the receive DMA
// channel, the transmit primitive and the status LED pin.
package platform

import (
	"context"

	"devconsole-go/x/dmaring"
)

// Board is what main wires into the console and LED services.
type Board struct {
	Device string

	// RX is armed by the console; the board's receive pump writes into it
	// and raises the idle notification after each burst.
	RX  *dmaring.Channel
	TX  *Transmitter
	LED Pin

	// Done is closed when the board asks the firmware to exit (host only).
	Done <-chan struct{}
	// Close releases board resources.
	Close func()
}

// Pin is a push-pull output.
type Pin interface {
	Set(level bool)
}

// Sender is the raw blocking write the transmitter wraps.
type Sender interface {
	Write(p []byte) (int, error)
}

// Transmitter adapts a Sender to the console's transmit primitive.
type Transmitter struct {
	s Sender
}

func NewTransmitter(s Sender) *Transmitter { return &Transmitter{s: s} }

// Transmit writes all of p or returns the first error.
func (t *Transmitter) Transmit(p []byte) error {
	for len(p) > 0 {
		n, err := t.s.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// Receiver is the raw receive side a pump drains.
type Receiver interface {
	RecvSomeContext(ctx context.Context, p []byte) (int, error)
	Buffered() int
}

// pump moves received bytes into the DMA channel and raises idle once the
// receiver has nothing more buffered. It returns when ctx ends or the
// receiver fails; stop, if non-nil, reports bytes that ask the device to quit.
func pump(ctx context.Context, rx Receiver, ch *dmaring.Channel, stop func(b byte) bool) error {
	buf := make([]byte, 64)
	for {
		n, err := rx.RecvSomeContext(ctx, buf)
		if n > 0 {
			p := buf[:n]
			if stop != nil {
				for i, b := range p {
					if stop(b) {
						_, _ = ch.Write(p[:i])
						ch.Idle()
						return context.Canceled
					}
				}
			}
			_, _ = ch.Write(p)
			if rx.Buffered() == 0 {
				ch.Idle()
			}
		}
		if err != nil {
			return err
		}
	}
}
