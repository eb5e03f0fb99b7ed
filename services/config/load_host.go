//go:build !(rp2040 || rp2350)

package config

import (
	"errors"
	"io"
	"os"

	"devconsole-go/errcode"

	"gopkg.in/yaml.v3"
)

// Load decodes YAML from r over base and normalizes the result. Unknown keys
// are rejected. An empty document yields base.
func Load(r io.Reader, base Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	cfg := base
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config load", Err: err}
	}
	return cfg.Normalize(), nil
}

// LoadFile is Load over the file at path.
func LoadFile(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, &errcode.E{C: errcode.InvalidParams, Op: "config load", Err: err}
	}
	defer f.Close()
	return Load(f, base)
}
