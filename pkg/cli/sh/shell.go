// Package sh provides an interactive shell talking to a bridge
// over its host port.
package sh

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration
	PortURL     string

	Shell *ishell.Shell
	Conn  *Conn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	portURL    string
	timeout    = time.Second

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	if val := os.Getenv("KNOB_PORT"); val != "" {
		portURL = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&portURL, "port", portURL, "Device port URL, e.g. serial:///dev/ttyACM0, listen://:7000")
	flag.DurationVar(&timeout, "timeout", timeout, "Reply timeout.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,
		PortURL:     portURL,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

type jsonMessage struct {
	Domain string `json:"domain"`
	ID     uint16 `json:"id"`
	Name   string `json:"name,omitempty"`
	Data   string `json:"data"`
}

// FormatMessage formats a message for display.
func FormatMessage(m telemetry.Message, asJSON bool) string {
	if !asJSON {
		return m.String()
	}
	jm := jsonMessage{
		Domain: m.Domain.String(),
		ID:     m.ID,
		Data:   hex.EncodeToString(m.Data[:]),
	}
	if m.Domain == telemetry.DomainLocal {
		jm.Name = telemetry.LocalID(m.ID).String()
	}
	out, _ := json.Marshal(&jm)
	return string(out)
}

// PrintMessage prints a message in the configured format.
func PrintMessage(c *ishell.Context, m telemetry.Message) {
	c.Println(FormatMessage(m, ShellFrom(c).OutputJSON))
}

// Connect opens the device port.
func (s *Shell) Connect(url string) error {
	conn, err := Dial(url)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Conn = conn
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", url))
	return nil
}

// Disconnect closes current connection.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.PortURL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.PortURL)
		}
		if err := s.Connect(s.PortURL); err != nil {
			log.Fatalf("connect %q failed: %v", s.PortURL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// ConnectCmd opens a device port.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT-URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("port URL expected"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the device port.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the device port",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
