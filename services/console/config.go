package console

import (
	"time"

	"devconsole-go/x/mathx"
	"devconsole-go/x/strx"
)

// Defaults match the reference board: 128-byte DMA ring, 64-byte line.
const (
	DefaultRingSize     = 128
	DefaultLineSize     = 64
	DefaultMaxArgs      = 8
	DefaultPrompt       = "> "
	DefaultPollInterval = 5 * time.Millisecond
)

// Config sizes the console. Zero values take defaults.
type Config struct {
	RingSize     int           `yaml:"ring_size"`
	LineSize     int           `yaml:"line_size"`
	MaxArgs      int           `yaml:"max_args"`
	Prompt       string        `yaml:"prompt"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Normalize fills defaults and clamps every field into its supported range.
func (c Config) Normalize() Config {
	if c.RingSize == 0 {
		c.RingSize = DefaultRingSize
	}
	if c.LineSize == 0 {
		c.LineSize = DefaultLineSize
	}
	if c.MaxArgs == 0 {
		c.MaxArgs = DefaultMaxArgs
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	c.RingSize = mathx.Clamp(c.RingSize, 16, 4096)
	c.LineSize = mathx.Clamp(c.LineSize, 8, 256)
	c.MaxArgs = mathx.Clamp(c.MaxArgs, 2, 16)
	c.PollInterval = mathx.Clamp(c.PollInterval, time.Millisecond, 100*time.Millisecond)
	c.Prompt = strx.Coalesce(c.Prompt, DefaultPrompt)
	return c
}
