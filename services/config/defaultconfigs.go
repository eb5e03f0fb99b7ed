package config

import (
	"time"

	"devconsole-go/services/console"
	"devconsole-go/services/led"
)

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID
// Val: config before normalization; zero fields take package defaults
// -----------------------------------------------------------------------------

var embeddedConfigs = map[string]Config{
	"pico": {
		Console: console.Config{RingSize: 128, LineSize: 64, Prompt: "> "},
		LED:     led.Config{SlowPeriod: 500 * time.Millisecond, FastPeriod: 100 * time.Millisecond},
	},
	"host": {
		Console: console.Config{RingSize: 256, PollInterval: 2 * time.Millisecond},
	},
}
