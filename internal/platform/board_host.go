//go:build !(rp2040 || rp2350)

package platform

import (
	"context"
	"os"

	"devconsole-go/x/dmaring"

	"golang.org/x/term"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
)

// stdinRX reads stdin in a goroutine so RecvSomeContext can honour ctx.
type stdinRX struct {
	data chan []byte
	errc chan error
	rest []byte
}

func newStdinRX() *stdinRX {
	r := &stdinRX{data: make(chan []byte), errc: make(chan error, 1)}
	go func() {
		for {
			buf := make([]byte, 64)
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				r.data <- buf[:n]
			}
			if err != nil {
				r.errc <- err
				return
			}
		}
	}()
	return r
}

func (r *stdinRX) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	if len(r.rest) == 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case err := <-r.errc:
			return 0, err
		case r.rest = <-r.data:
		}
	}
	n := copy(p, r.rest)
	r.rest = r.rest[n:]
	return n, nil
}

func (r *stdinRX) Buffered() int { return len(r.rest) }

type nopPin struct{}

func (nopPin) Set(bool) {}

// Open brings up a host board: stdin in raw mode is the receive line, stdout
// the transmit line. Ctrl-C or Ctrl-D, or end of input, closes Done.
func Open(ctx context.Context) (*Board, error) {
	restore := func() {}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		restore = func() { _ = term.Restore(fd, old) }
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ch := dmaring.NewChannel()
	go func() {
		defer close(done)
		err := pump(ctx, newStdinRX(), ch, func(b byte) bool { return b == keyCtrlC || b == keyCtrlD })
		if err != nil && err != context.Canceled {
			println("[boot] stdin:", err.Error())
		}
	}()

	return &Board{
		Device: "host",
		RX:     ch,
		TX:     NewTransmitter(os.Stdout),
		LED:    nopPin{},
		Done:   done,
		Close: func() {
			cancel()
			restore()
		},
	}, nil
}
