// Package led drives the status LED in one of three blink modes.
package led

import (
	"context"
	"sync/atomic"
	"time"

	"devconsole-go/bus"
	"devconsole-go/types"
	"devconsole-go/x/mathx"
)

// TopicMode carries the current mode as a retained types.LEDState.
var TopicMode = bus.T("led", "state", "mode")

const (
	DefaultSlowPeriod = 500 * time.Millisecond
	DefaultFastPeriod = 100 * time.Millisecond
)

// Config holds the half-periods of the blink modes. Zero values take defaults.
type Config struct {
	SlowPeriod time.Duration `yaml:"slow_period"`
	FastPeriod time.Duration `yaml:"fast_period"`
}

// Normalize fills defaults and clamps periods to 20ms..5s.
func (c Config) Normalize() Config {
	if c.SlowPeriod == 0 {
		c.SlowPeriod = DefaultSlowPeriod
	}
	if c.FastPeriod == 0 {
		c.FastPeriod = DefaultFastPeriod
	}
	c.SlowPeriod = mathx.Clamp(c.SlowPeriod, 20*time.Millisecond, 5*time.Second)
	c.FastPeriod = mathx.Clamp(c.FastPeriod, 20*time.Millisecond, 5*time.Second)
	return c
}

// Pin is the output the LED hangs off.
type Pin interface {
	Set(level bool)
}

// Controller owns the LED. SetMode and Mode are safe from any goroutine and
// never block; the blink loop picks up changes on its next wakeup.
type Controller struct {
	cfg  Config
	pin  Pin
	conn *bus.Connection

	mode atomic.Uint32
	wake chan struct{}
}

// New returns a controller in mode off. conn may be nil.
func New(cfg Config, pin Pin, conn *bus.Connection) *Controller {
	return &Controller{cfg: cfg.Normalize(), pin: pin, conn: conn, wake: make(chan struct{}, 1)}
}

// Mode returns the current mode.
func (c *Controller) Mode() types.LEDMode { return types.LEDMode(c.mode.Load()) }

// SetMode switches the blink pattern and publishes the new state.
func (c *Controller) SetMode(m types.LEDMode) {
	old := types.LEDMode(c.mode.Swap(uint32(m)))
	select {
	case c.wake <- struct{}{}:
	default:
	}
	if old == m {
		return
	}
	if c.conn != nil {
		c.conn.Publish(c.conn.NewMessage(TopicMode, types.LEDState{Mode: m}, true))
	}
}

func (c *Controller) halfPeriod(m types.LEDMode) time.Duration {
	switch m {
	case types.LEDSlow:
		return c.cfg.SlowPeriod
	case types.LEDFast:
		return c.cfg.FastPeriod
	}
	return 0
}

func (c *Controller) serviceLoop(ctx context.Context) {
	level := false
	c.pin.Set(level)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		// Mode off parks the loop until the next SetMode.
		if p := c.halfPeriod(c.Mode()); p > 0 {
			timer.Reset(p)
		} else {
			if level {
				level = false
				c.pin.Set(level)
			}
			timer.Reset(time.Hour)
		}

		select {
		case <-ctx.Done():
			println("[led] service stopping")
			c.pin.Set(false)
			return
		case <-c.wake:
		case <-timer.C:
			if c.halfPeriod(c.Mode()) > 0 {
				level = !level
				c.pin.Set(level)
			}
		}
	}
}

// Start publishes the initial state and launches the blink loop.
func (c *Controller) Start(ctx context.Context) error {
	if c.conn != nil {
		c.conn.Publish(c.conn.NewMessage(TopicMode, types.LEDState{Mode: c.Mode()}, true))
	}
	go c.serviceLoop(ctx)
	return nil
}
