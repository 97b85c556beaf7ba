// Package bridge assembles the bridge from its configuration.
package bridge

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/knobbridge/pkg/canbus"
	"github.com/robotalks/knobbridge/pkg/diag"
	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/gpio"
	"github.com/robotalks/knobbridge/pkg/hostlink"
	"github.com/robotalks/knobbridge/pkg/knob"
	"github.com/robotalks/knobbridge/pkg/role"
	"github.com/robotalks/knobbridge/pkg/router"
)

// Pins are the GPIO inputs of the bridge.
type Pins struct {
	EncoderA     gpio.Pin
	EncoderB     gpio.Pin
	Button       gpio.Pin
	LeaderSelect gpio.Pin
}

// Close releases the pins which hold an OS resource.
func (p *Pins) Close() error {
	var errs fx.AggregatedError
	for _, pin := range []gpio.Pin{p.EncoderA, p.EncoderB, p.Button, p.LeaderSelect} {
		if c, ok := pin.(io.Closer); ok {
			errs.Add(c.Close())
		}
	}
	return errs.Aggregate()
}

// Bridge owns the host port, the CAN bus, the pins and the router.
type Bridge struct {
	Port    io.ReadWriteCloser
	Bus     canbus.Bus
	Pins    *Pins
	Link    *hostlink.Link
	Ingress *hostlink.Ingress
	CAN     *canbus.Adapter
	Role    *role.Sense
	Router  *router.Router

	// Publisher is nil unless an MQTT broker is configured.
	Publisher *diag.Publisher

	idleSleep time.Duration
	started   time.Time
}

// NewBridge opens the host port, the CAN bus and the pins.
// Any error here is a fatal startup error.
func (c *Config) NewBridge() (*Bridge, error) {
	port, err := hostlink.OpenPort(c.HostURL)
	if err != nil {
		return nil, fmt.Errorf("open host port: %w", err)
	}
	bus, err := canbus.Open(c.CANInterface)
	if err != nil {
		port.Close()
		return nil, err
	}
	pins, err := c.OpenPins()
	if err != nil {
		port.Close()
		bus.Close()
		return nil, fmt.Errorf("open GPIO: %w", err)
	}
	b, err := c.Assemble(port, bus, pins)
	if err != nil {
		port.Close()
		bus.Close()
		pins.Close()
		return nil, err
	}
	return b, nil
}

// MustNewBridge creates the Bridge and fails on error.
func (c *Config) MustNewBridge() *Bridge {
	b, err := c.NewBridge()
	if err != nil {
		log.Fatalln(err)
	}
	return b
}

// Assemble wires opened resources together.
func (c *Config) Assemble(port io.ReadWriteCloser, bus canbus.Bus, pins *Pins) (*Bridge, error) {
	clock := fx.SystemClock{}
	queue := hostlink.NewQueue(c.QueueSize)
	b := &Bridge{
		Port:      port,
		Bus:       bus,
		Pins:      pins,
		Link:      hostlink.NewLink(queue, port),
		CAN:       canbus.NewAdapter(bus),
		Role:      &role.Sense{Pin: pins.LeaderSelect},
		idleSleep: c.IdleSleep,
		started:   time.Now(),
	}
	b.CAN.SendTimeout = c.CANSendTimeout
	b.Ingress = &hostlink.Ingress{Reader: port, Queue: queue}
	if c.HostEcho {
		b.Ingress.Echo = b.Link
	}
	b.Router = &router.Router{
		Host: b.Link,
		CAN:  b.CAN,
		Encoder: &knob.Encoder{
			A: pins.EncoderA,
			B: pins.EncoderB,
			Decoder: &knob.QuadratureDecoder{
				Clock:    clock,
				Debounce: c.EncoderDebounce,
			},
		},
		Button: &knob.Button{
			Pin: pins.Button,
			Detector: &knob.ButtonDetector{
				Clock:    clock,
				Debounce: c.ButtonDebounce,
			},
		},
		Role:              b.Role,
		ForwardLocalToCAN: c.ForwardLocalToCAN,
	}
	if c.MQTTBrokerURL != "" {
		q, err := diag.NewQueueFromURL(c.MQTTBrokerURL)
		if err != nil {
			return nil, fmt.Errorf("invalid MQTT broker URL: %w", err)
		}
		nodeID := c.NodeID
		if nodeID == "" {
			nodeID = diag.NodeID()
		}
		b.Publisher = &diag.Publisher{
			Sink:     q,
			NodeID:   nodeID,
			Interval: c.StatsInterval,
			Collect:  b.Stats,
		}
	}
	glog.Infof("bridge: host %s, CAN %s, forward local to CAN %v", c.HostURL, c.CANInterface, c.ForwardLocalToCAN)
	return b, nil
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	loop.IdleSleep = b.idleSleep
	loop.AddRunnable(b.Ingress)
	if b.Publisher != nil {
		loop.AddRunnable(b.Publisher)
	}
	loop.Add(b.Router)
}

// Stats collects a snapshot of all counters. It's called from the
// publisher goroutine, so it only reads atomics and never the pins.
func (b *Bridge) Stats() *diag.Stats {
	link, can, rt := b.Link.Stats(), b.CAN.Stats(), b.Router.Stats()
	return &diag.Stats{
		Leader:        rt.Leader,
		UptimeSeconds: uint64(time.Since(b.started) / time.Second),
		Host: &diag.HostStats{
			Received:      link.Received,
			Sent:          link.Sent,
			SendErrors:    link.SendErrors,
			FramingErrors: link.FramingErrors,
			Duplicates:    link.Duplicates,
			QueueDropped:  link.QueueDropped,
		},
		CAN: &diag.CANStats{
			Received:      can.Received,
			Sent:          can.Sent,
			SendErrors:    can.SendErrors,
			ReceiveErrors: can.ReceiveErrors,
			Dropped:       can.Dropped,
		},
		Router: &diag.RouterStats{
			HostInbound:  rt.HostInbound,
			CanInbound:   rt.CANInbound,
			ToHost:       rt.ToHost,
			ToCan:        rt.ToCAN,
			SendFailures: rt.SendFailures,
			Unroutable:   rt.Unroutable,
			Identify:     rt.Identify,
			LocalEvents:  rt.LocalEvents,
		},
	}
}

// Close releases the port, the CAN bus and the pins.
func (b *Bridge) Close() error {
	var errs fx.AggregatedError
	errs.Add(b.Port.Close())
	errs.Add(b.Bus.Close())
	errs.Add(b.Pins.Close())
	return errs.Aggregate()
}
