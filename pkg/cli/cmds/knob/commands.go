package knob

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/knobbridge/pkg/cli/sh"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// ParseCANMessage parses "ID [BYTE...]", ID in C notation (0x123)
// and payload bytes in hex.
func ParseCANMessage(args []string) (telemetry.Message, error) {
	if len(args) == 0 {
		return telemetry.Message{}, fmt.Errorf("CAN id expected")
	}
	if len(args) > 1+telemetry.PayloadSize {
		return telemetry.Message{}, fmt.Errorf("at most %d data bytes", telemetry.PayloadSize)
	}
	id, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		return telemetry.Message{}, fmt.Errorf("invalid CAN id %q", args[0])
	}
	data := make([]byte, 0, telemetry.PayloadSize)
	for _, arg := range args[1:] {
		b, err := strconv.ParseUint(arg, 16, 8)
		if err != nil {
			return telemetry.Message{}, fmt.Errorf("invalid data byte %q", arg)
		}
		data = append(data, byte(b))
	}
	return telemetry.NewCanBus(uint16(id), data), nil
}

var (
	// IdentifyCmd asks the device whether it's the leader.
	IdentifyCmd = ishell.Cmd{
		Name:    "identify",
		Aliases: []string{"id"},
		Help:    "ask whether the device is leader or follower",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			reply, err := s.Conn.Identify(s.Timeout)
			if err != nil {
				c.Err(err)
				return
			}
			sh.PrintMessage(c, reply)
		}),
	}

	// CANSendCmd sends a CAN message through the device.
	CANSendCmd = ishell.Cmd{
		Name:    "can",
		Aliases: []string{"send"},
		Help:    "ID [HEX-BYTE...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			m, err := ParseCANMessage(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err = sh.ShellFrom(c).Conn.Send(m); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// WatchCmd prints messages received from the device.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[DURATION]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			dur := 10 * time.Second
			if len(c.Args) > 0 {
				d, err := time.ParseDuration(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				dur = d
			}
			msgs := sh.ShellFrom(c).Conn.Messages()
			timeout := time.After(dur)
			for {
				select {
				case m := <-msgs:
					sh.PrintMessage(c, m)
				case <-timeout:
					return
				}
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&IdentifyCmd,
		&CANSendCmd,
		&WatchCmd,
	)
}
