package main

import (
	"context"
	"os"
	"time"

	"devconsole-go/bus"
	"devconsole-go/internal/platform"
	"devconsole-go/services/config"
	"devconsole-go/services/console"
	"devconsole-go/services/led"
	"devconsole-go/types"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	board, err := platform.Open(ctx)
	if err != nil {
		println("[boot] board:", err.Error())
		return
	}
	defer board.Close()

	cfg := loadConfig(board.Device)
	println("[boot]", board.Device, "ring", cfg.Console.RingSize, "line", cfg.Console.LineSize)

	b := bus.NewBus(4)
	ledCtl := led.New(cfg.LED, board.LED, b.NewConnection("led"))
	_ = ledCtl.Start(ctx)

	con := console.New(cfg.Console, board.RX, board.TX, ledCtl)
	if err := console.NewService(con).Start(ctx); err != nil {
		println("[boot] console:", err.Error())
		return
	}

	modeSub := b.NewConnection("main").Subscribe(led.TopicMode)

	// Periodic stats.
	tick := time.NewTicker(30 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-board.Done:
			return
		case m := <-modeSub.Channel():
			if st, ok := m.Payload.(types.LEDState); ok {
				println("[led] mode", st.Mode.String())
			}
		case <-tick.C:
			s := con.Stats()
			println("[console] bytes", int(s.BytesIn), "lines", int(s.Lines), "unknown", int(s.Unknown), "tx_err", int(s.TxErrors))
		}
	}
}

// loadConfig returns the board's compiled-in config, overlaid with the file
// named by CONSOLE_CONFIG where the platform has a filesystem.
func loadConfig(device string) config.Config {
	cfg := config.ForDevice(device)
	path := os.Getenv("CONSOLE_CONFIG")
	if path == "" {
		return cfg
	}
	loaded, err := loadFile(path, cfg)
	if err != nil {
		println("[boot] config:", err.Error())
		return cfg
	}
	return loaded
}
