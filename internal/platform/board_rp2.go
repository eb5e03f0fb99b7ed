//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"

	"devconsole-go/x/dmaring"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const consoleBaud = 115200

type machinePin struct{ p machine.Pin }

func (m machinePin) Set(level bool) { m.p.Set(level) }

// Open brings up UART0 on its default pins as the console link and the
// onboard LED. uartx buffers received bytes from its IRQ handler; the pump
// moves them into the circular channel and raises idle after each burst,
// which stands in for a DMA channel with UART idle-line detection.
func Open(ctx context.Context) (*Board, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		return nil, err
	}

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.Low()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ch := dmaring.NewChannel()
	go func() {
		defer close(done)
		for ctx.Err() == nil {
			if err := pump(ctx, u, ch, nil); err != nil && ctx.Err() == nil {
				println("[boot] uart0 rx:", err.Error())
			}
		}
	}()

	return &Board{
		Device: "pico",
		RX:     ch,
		TX:     NewTransmitter(u),
		LED:    machinePin{p: led},
		Done:   done,
		Close:  cancel,
	}, nil
}
