package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"devconsole-go/errcode"
	"devconsole-go/types"
	"devconsole-go/x/dmaring"
)

// --- fakes ---

type recTx struct {
	mu  sync.Mutex
	buf bytes.Buffer
	err error
}

func (r *recTx) Transmit(p []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.buf.Write(p)
	return nil
}

func (r *recTx) take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.buf.String()
	r.buf.Reset()
	return s
}

type fakeLED struct {
	mode  types.LEDMode
	calls []types.LEDMode
}

func (f *fakeLED) SetMode(m types.LEDMode) { f.mode = m; f.calls = append(f.calls, m) }
func (f *fakeLED) Mode() types.LEDMode     { return f.mode }

type failingIngress struct{}

func (failingIngress) Start([]byte, func()) error { return errors.New("dma busy") }
func (failingIngress) Remaining() int             { return 0 }

// --- helpers ---

type rig struct {
	ch  *dmaring.Channel
	tx  *recTx
	led *fakeLED
	c   *Console
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	r := &rig{ch: dmaring.NewChannel(), tx: &recTx{}, led: &fakeLED{}}
	r.c = New(cfg, r.ch, r.tx, r.led)
	if err := r.c.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := r.tx.take(); got != "> " {
		t.Fatalf("initial prompt = %q", got)
	}
	return r
}

// typeIn simulates one received burst followed by the idle interrupt and a
// scheduler tick.
func (r *rig) typeIn(s string) string {
	_, _ = r.ch.Write([]byte(s))
	r.ch.Idle()
	r.c.PollOnce()
	return r.tx.take()
}

const helpText = "help - show this help\r\nled - led off|slow|fast\r\n"

// --- tests ---

func TestScenarioHelp(t *testing.T) {
	r := newRig(t, Config{})
	got := r.typeIn("help\r\n")
	// CR completes the line; LF is a second, empty Enter.
	want := "help" + "\r\n" + helpText + "> " + "\r\n"
	if got != want {
		t.Fatalf("output:\n got %q\nwant %q", got, want)
	}
	if len(r.led.calls) != 0 {
		t.Fatalf("led touched: %v", r.led.calls)
	}
}

func TestScenarioLEDOff(t *testing.T) {
	r := newRig(t, Config{})
	r.led.mode = types.LEDFast
	got := r.typeIn("led off\r\n")
	want := "led off" + "\r\n" + "ok\r\n" + "> " + "\r\n"
	if got != want {
		t.Fatalf("output:\n got %q\nwant %q", got, want)
	}
	if len(r.led.calls) != 1 || r.led.calls[0] != types.LEDOff {
		t.Fatalf("led calls = %v, want [off]", r.led.calls)
	}
}

func TestScenarioLEDInvalid(t *testing.T) {
	r := newRig(t, Config{})
	got := r.typeIn("led bogus\r")
	if !strings.HasSuffix(got, "\r\ninvalid mode\r\n> ") {
		t.Fatalf("output = %q", got)
	}
	if len(r.led.calls) != 0 {
		t.Fatalf("led touched: %v", r.led.calls)
	}
	if s := r.c.Stats(); s.CommandErrs != 1 || s.Lines != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestScenarioUnknown(t *testing.T) {
	r := newRig(t, Config{})
	got := r.typeIn("xyz\r")
	if want := "xyz\r\nunknown command\r\n> "; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	if s := r.c.Stats(); s.Unknown != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestBackspaceEditsLine(t *testing.T) {
	var lines []string
	table := Table{{Name: "a", Help: "x", Handler: HandlerFunc(func(env *Env, args []string) error {
		lines = append(lines, strings.Join(args, " "))
		return nil
	})}}
	ch, tx := dmaring.NewChannel(), &recTx{}
	c := NewWithTable(Config{}, ch, tx, nil, table)
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	tx.take()

	_, _ = ch.Write([]byte("ab\x08\r\n"))
	ch.Idle()
	c.PollOnce()
	if len(lines) != 1 || lines[0] != "a" {
		t.Fatalf("lines = %q", lines)
	}
	if got, want := tx.take(), "ab\b \b\r\n> \r\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestPromptAfterEveryLine(t *testing.T) {
	r := newRig(t, Config{})
	got := r.typeIn("help\rled fast\rled\rnope\r")
	if n := strings.Count(got, "> "); n != 4 {
		t.Fatalf("prompts = %d in %q", n, got)
	}
	if !strings.Contains(got, "usage: led off|slow|fast\r\n") {
		t.Fatalf("missing usage in %q", got)
	}
}

func TestPollWithoutSignalIsIdle(t *testing.T) {
	r := newRig(t, Config{})
	_, _ = r.ch.Write([]byte("help"))
	// No idle interrupt yet: nothing happens.
	r.c.PollOnce()
	if got := r.tx.take(); got != "" {
		t.Fatalf("output before idle = %q", got)
	}
	if r.c.editor.Len() != 0 || r.c.reader.Last() != 0 {
		t.Fatalf("state moved: len=%d last=%d", r.c.editor.Len(), r.c.reader.Last())
	}
	r.ch.Idle()
	r.c.PollOnce()
	if got := r.tx.take(); got != "help" {
		t.Fatalf("echo = %q", got)
	}
}

func TestPartialLinesAcrossWrap(t *testing.T) {
	r := newRig(t, Config{RingSize: 16})
	if r.c.Config().RingSize != 16 {
		t.Fatalf("ring size = %d", r.c.Config().RingSize)
	}
	// Eleven bytes, then a line split across the wrap point.
	r.typeIn("led slow\rhe")
	got := r.typeIn("lp\rled fast\r")
	want := "lp\r\n" + helpText + "> " + "led fast\r\nok\r\n> "
	if got != want {
		t.Fatalf("output:\n got %q\nwant %q", got, want)
	}
	if len(r.led.calls) != 2 || r.led.calls[1] != types.LEDFast {
		t.Fatalf("led calls = %v", r.led.calls)
	}
	if s := r.c.Stats(); s.BytesIn != 23 || s.Lines != 3 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestOverflowKeepsLine(t *testing.T) {
	r := newRig(t, Config{LineSize: 8})
	got := r.typeIn("led offXXXX")
	if got != "led off" {
		t.Fatalf("echo = %q", got)
	}
	if r.c.editor.Len() != 7 {
		t.Fatalf("len = %d", r.c.editor.Len())
	}
	got = r.typeIn("\r")
	if got != "\r\nok\r\n> " {
		t.Fatalf("output = %q", got)
	}
	if s := r.c.Stats(); s.DroppedChars != 4 {
		t.Fatalf("dropped = %d", s.DroppedChars)
	}
}

func TestInitFailure(t *testing.T) {
	tx := &recTx{}
	c := New(Config{}, failingIngress{}, tx, nil)
	err := c.Init()
	if errcode.Of(err) != errcode.NotStarted {
		t.Fatalf("Init err = %v", err)
	}
	c.Notify()
	c.PollOnce() // not armed; no-op
	if got := tx.take(); got != "" {
		t.Fatalf("output = %q", got)
	}
}

func TestTransmitErrorsAreCounted(t *testing.T) {
	r := newRig(t, Config{})
	r.tx.err = errors.New("uart stalled")
	r.typeIn("xyz\r")
	s := r.c.Stats()
	if s.TxErrors == 0 || s.Lines != 1 {
		t.Fatalf("stats = %+v", s)
	}
	r.tx.err = nil
	if got := r.typeIn("help\r"); !strings.HasSuffix(got, "> ") {
		t.Fatalf("console did not recover: %q", got)
	}
}

func TestServicePolls(t *testing.T) {
	ch, tx, led := dmaring.NewChannel(), &recTx{}, &fakeLED{}
	c := New(Config{PollInterval: time.Millisecond}, ch, tx, led)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := NewService(c).Start(ctx); err != nil {
		t.Fatal(err)
	}

	_, _ = ch.Write([]byte("xyz\r"))
	ch.Idle()

	deadline := time.Now().Add(time.Second)
	var out strings.Builder
	for time.Now().Before(deadline) {
		out.WriteString(tx.take())
		if strings.Contains(out.String(), "unknown command\r\n> ") {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("service output = %q", out.String())
}
