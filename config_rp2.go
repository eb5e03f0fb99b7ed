//go:build rp2040 || rp2350

package main

import (
	"devconsole-go/errcode"
	"devconsole-go/services/config"
)

// No filesystem on the MCU; the compiled-in config is authoritative.
func loadFile(string, config.Config) (config.Config, error) {
	return config.Config{}, errcode.Unsupported
}
