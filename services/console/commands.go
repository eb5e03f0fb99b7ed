package console

import (
	"io"

	"devconsole-go/errcode"
	"devconsole-go/types"
)

// LED is the mode-setting capability the led command drives.
type LED interface {
	SetMode(types.LEDMode)
	Mode() types.LEDMode
}

// Env is what a handler may touch: the output stream, the command table and
// the downstream capabilities. Handlers never see the ring or line buffers.
type Env struct {
	Out      io.Writer
	Commands Table
	LED      LED
}

func (e *Env) print(s string) { io.WriteString(e.Out, s) }

// Handler runs one command. args[0] is the command name. The handler writes
// its own user-facing output; the returned error is for accounting only.
type Handler interface {
	Run(env *Env, args []string) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(env *Env, args []string) error

// Run implements Handler.
func (f HandlerFunc) Run(env *Env, args []string) error { return f(env, args) }

// Command binds a name to a handler and its help text.
type Command struct {
	Name    string
	Help    string
	Handler Handler
}

// Table is an ordered command set. Lookup is first-match, case-sensitive.
type Table []Command

// Lookup returns the first command named name.
func (t Table) Lookup(name string) (Command, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Builtins returns the standard command table.
func Builtins() Table {
	return Table{
		{Name: "help", Help: "show this help", Handler: HandlerFunc(runHelp)},
		{Name: "led", Help: "led off|slow|fast", Handler: HandlerFunc(runLED)},
	}
}

func runHelp(env *Env, _ []string) error {
	for _, c := range env.Commands {
		env.print(c.Name + " - " + c.Help + "\r\n")
	}
	return nil
}

func runLED(env *Env, args []string) error {
	if len(args) != 2 {
		env.print("usage: led off|slow|fast\r\n")
		return errcode.InvalidParams
	}
	m, ok := types.ParseLEDMode(args[1])
	if !ok {
		env.print("invalid mode\r\n")
		return errcode.InvalidMode
	}
	if env.LED == nil {
		env.print("led unavailable\r\n")
		return errcode.NotStarted
	}
	env.LED.SetMode(m)
	env.print("ok\r\n")
	return nil
}

// Tokenize splits line on single spaces into dst, skipping the empty tokens
// that runs of spaces produce, and stops after max tokens.
func Tokenize(dst []string, line []byte, max int) []string {
	start := -1
	for i := 0; i <= len(line); i++ {
		if i < len(line) && line[i] != ' ' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if len(dst) == max {
				return dst
			}
			dst = append(dst, string(line[start:i]))
			start = -1
		}
	}
	return dst
}

// Dispatcher tokenizes completed lines and runs the matching command.
type Dispatcher struct {
	env     Env
	maxArgs int
	args    []string
}

// NewDispatcher returns a dispatcher over table writing to out.
func NewDispatcher(table Table, out io.Writer, led LED, maxArgs int) *Dispatcher {
	if maxArgs < 1 {
		maxArgs = DefaultMaxArgs
	}
	return &Dispatcher{
		env:     Env{Out: out, Commands: table, LED: led},
		maxArgs: maxArgs,
		args:    make([]string, 0, maxArgs),
	}
}

// Dispatch runs line. A blank line does nothing and returns nil. An unknown
// name prints "unknown command" and returns errcode.UnknownCommand.
func (d *Dispatcher) Dispatch(line []byte) error {
	args := Tokenize(d.args[:0], line, d.maxArgs)
	if len(args) == 0 {
		return nil
	}
	cmd, ok := d.env.Commands.Lookup(args[0])
	if !ok {
		d.env.print("unknown command\r\n")
		return errcode.UnknownCommand
	}
	return cmd.Handler.Run(&d.env, args)
}
