package led

import (
	"context"
	"sync"
	"testing"
	"time"

	"devconsole-go/bus"
	"devconsole-go/types"
)

type fakePin struct {
	mu    sync.Mutex
	level bool
	sets  int
}

func (p *fakePin) Set(l bool) {
	p.mu.Lock()
	p.level = l
	p.sets++
	p.mu.Unlock()
}

func (p *fakePin) snapshot() (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, p.sets
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestConfigNormalize(t *testing.T) {
	c := Config{}.Normalize()
	if c.SlowPeriod != DefaultSlowPeriod || c.FastPeriod != DefaultFastPeriod {
		t.Fatalf("defaults = %+v", c)
	}
	c = Config{SlowPeriod: time.Minute, FastPeriod: time.Microsecond}.Normalize()
	if c.SlowPeriod != 5*time.Second || c.FastPeriod != 20*time.Millisecond {
		t.Fatalf("clamped = %+v", c)
	}
}

func TestBlinkAndStop(t *testing.T) {
	pin := &fakePin{}
	c := New(Config{SlowPeriod: 40 * time.Millisecond, FastPeriod: 20 * time.Millisecond}, pin, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = c.Start(ctx)

	c.SetMode(types.LEDFast)
	if c.Mode() != types.LEDFast {
		t.Fatalf("mode = %v", c.Mode())
	}
	waitFor(t, time.Second, func() bool { _, n := pin.snapshot(); return n >= 4 })

	c.SetMode(types.LEDOff)
	waitFor(t, time.Second, func() bool { l, _ := pin.snapshot(); return !l })
	time.Sleep(60 * time.Millisecond) // let an in-flight toggle settle
	_, before := pin.snapshot()
	time.Sleep(80 * time.Millisecond)
	if l, after := pin.snapshot(); l || after != before {
		t.Fatalf("pin moved while off: level=%v sets %d -> %d", l, before, after)
	}
}

func TestModePublishedRetained(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("led")
	c := New(Config{}, &fakePin{}, conn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = c.Start(ctx)

	c.SetMode(types.LEDSlow)
	c.SetMode(types.LEDSlow) // unchanged: no second publish

	sub := b.NewConnection("ui").Subscribe(TopicMode)
	select {
	case m := <-sub.Channel():
		st, ok := m.Payload.(types.LEDState)
		if !ok || st.Mode != types.LEDSlow {
			t.Fatalf("payload = %#v", m.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no retained state")
	}
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected extra message %#v", m.Payload)
	default:
	}
}
