package sh

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/hostlink"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// ErrTimeout indicates no expected reply arrived in time.
var ErrTimeout = errors.New("timeout")

const pollInterval = time.Millisecond

// Conn is the host side of a host link.
type Conn struct {
	URL  string
	Port io.ReadWriteCloser
	Link *hostlink.Link

	msgCh  chan telemetry.Message
	cancel func()
	runner *fx.Runner
}

// Dial opens the port at url and starts receiving.
func Dial(url string) (*Conn, error) {
	port, err := hostlink.OpenPort(url)
	if err != nil {
		return nil, err
	}
	c := NewConn(port)
	c.URL = url
	return c, nil
}

// NewConn starts receiving on an opened port.
func NewConn(port io.ReadWriteCloser) *Conn {
	q := hostlink.NewQueue(0)
	c := &Conn{
		Port:  port,
		Link:  hostlink.NewLink(q, port),
		msgCh: make(chan telemetry.Message, 64),
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.runner = fx.NewRunnerWith(ctx).Go(&hostlink.Ingress{Reader: port, Queue: q}, c)
	return c
}

// Name implements Named.
func (c *Conn) Name() string {
	return "host-poll"
}

// Run implements Runnable. It polls the link and queues messages.
func (c *Conn) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m, ok := c.Link.Recv()
		if !ok {
			time.Sleep(pollInterval)
			continue
		}
		select {
		case c.msgCh <- m:
		default:
			glog.Warningf("message dropped: %s", m)
		}
	}
}

// Messages returns received messages.
func (c *Conn) Messages() <-chan telemetry.Message {
	return c.msgCh
}

// Send sends a message to the device.
func (c *Conn) Send(m telemetry.Message) error {
	if !c.Link.Send(m) {
		return errors.New("send failed")
	}
	return nil
}

// Request sends m and waits for the first received message accepted
// by match. Other messages are discarded.
func (c *Conn) Request(m telemetry.Message, match func(telemetry.Message) bool, timeout time.Duration) (telemetry.Message, error) {
	if err := c.Send(m); err != nil {
		return telemetry.Message{}, err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case reply := <-c.msgCh:
			if match(reply) {
				return reply, nil
			}
		case <-timer.C:
			return telemetry.Message{}, ErrTimeout
		}
	}
}

// Identify asks the device for its role.
func (c *Conn) Identify(timeout time.Duration) (telemetry.Message, error) {
	return c.Request(telemetry.NewLocal(telemetry.IdentifyLeaderFollower), func(m telemetry.Message) bool {
		return m.IsLocal(telemetry.ThisNodeIsLeader) || m.IsLocal(telemetry.ThisNodeIsFollower)
	}, timeout)
}

// Close stops receiving and closes the port.
func (c *Conn) Close() error {
	c.cancel()
	return c.runner.Wait()
}
