//go:build !(rp2040 || rp2350)

package main

import "devconsole-go/services/config"

func loadFile(path string, base config.Config) (config.Config, error) {
	return config.LoadFile(path, base)
}
