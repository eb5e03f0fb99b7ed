package config

import (
	"devconsole-go/services/console"
	"devconsole-go/services/led"
)

// Config is the whole-device configuration.
type Config struct {
	Console console.Config `yaml:"console"`
	LED     led.Config     `yaml:"led"`
}

// Normalize applies defaults and clamps to every section.
func (c Config) Normalize() Config {
	c.Console = c.Console.Normalize()
	c.LED = c.LED.Normalize()
	return c
}

// EmbeddedConfigLookup allows overriding how per-board configs are resolved.
var EmbeddedConfigLookup = func(device string) (Config, bool) {
	c, ok := embeddedConfigs[device]
	return c, ok
}

// ForDevice returns the normalized compiled-in config for device, falling
// back to plain defaults for unknown boards.
func ForDevice(device string) Config {
	c, _ := EmbeddedConfigLookup(device)
	return c.Normalize()
}
