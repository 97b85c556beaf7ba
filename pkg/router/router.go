// Package router forwards messages between the host link, the CAN bus
// and the local inputs.
//
// Host-origin messages:
//
//	CanBus                 -> CAN bus, verbatim
//	Local Identify...      -> role sample, replied to the host
//	anything else          -> dropped
//
// CAN-origin messages:
//
//	CanBus                 -> host, verbatim
//	anything else          -> dropped
//
// Knob and button events always go to the host, and to the CAN bus
// when ForwardLocalToCAN is set.
package router

import (
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// Endpoint is a message link polled without blocking.
type Endpoint interface {
	Recv() (telemetry.Message, bool)
	Send(telemetry.Message) bool
}

// EventSource produces at most one local event per evaluation.
type EventSource interface {
	Evaluate() (telemetry.Message, bool)
}

// RoleSense reports the node role on demand.
type RoleSense interface {
	Sample() telemetry.Message
}

// Stats are counters kept by the Router.
type Stats struct {
	HostInbound  uint64
	CANInbound   uint64
	ToHost       uint64
	ToCAN        uint64
	SendFailures uint64
	Unroutable   uint64
	Identify     uint64
	LocalEvents  uint64

	// Leader is the role last reported to the host, false until
	// the first identify request.
	Leader bool
}

// Router applies the routing tables. All methods run on the loop goroutine.
type Router struct {
	Host    Endpoint
	CAN     Endpoint
	Encoder EventSource
	Button  EventSource
	Role    RoleSense

	ForwardLocalToCAN bool

	hostInbound  atomic.Uint64
	canInbound   atomic.Uint64
	toHost       atomic.Uint64
	toCAN        atomic.Uint64
	sendFailures atomic.Uint64
	unroutable   atomic.Uint64
	identify     atomic.Uint64
	localEvents  atomic.Uint64
	leader       atomic.Bool
}

// AddToLoop implements LoopAdder.
func (r *Router) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvTop, fx.ControlFunc(r.DrainHost))
	loop.AddController(fx.PrLvHigh, fx.ControlFunc(r.DrainCAN))
	if r.Encoder != nil {
		loop.AddController(fx.PrLvNormal, fx.ControlFunc(r.PollEncoder))
	}
	if r.Button != nil {
		loop.AddController(fx.PrLvLow, fx.ControlFunc(r.PollButton))
	}
}

// DrainHost routes every message currently available from the host.
func (r *Router) DrainHost(cc fx.ControlContext) error {
	for {
		m, ok := r.Host.Recv()
		if !ok {
			return nil
		}
		cc.Busy()
		r.hostInbound.Add(1)
		r.RouteFromHost(m)
	}
}

// DrainCAN routes every frame currently available from the CAN bus.
func (r *Router) DrainCAN(cc fx.ControlContext) error {
	for {
		m, ok := r.CAN.Recv()
		if !ok {
			return nil
		}
		cc.Busy()
		r.canInbound.Add(1)
		r.RouteFromCAN(m)
	}
}

// PollEncoder evaluates the encoder once.
func (r *Router) PollEncoder(cc fx.ControlContext) error {
	r.pollLocal(cc, r.Encoder)
	return nil
}

// PollButton evaluates the button once.
func (r *Router) PollButton(cc fx.ControlContext) error {
	r.pollLocal(cc, r.Button)
	return nil
}

func (r *Router) pollLocal(cc fx.ControlContext, src EventSource) {
	m, ok := src.Evaluate()
	if !ok {
		return
	}
	cc.Busy()
	r.localEvents.Add(1)
	r.sendHost(m)
	if r.ForwardLocalToCAN {
		r.sendCAN(m)
	}
}

// RouteFromHost applies the host-origin table.
func (r *Router) RouteFromHost(m telemetry.Message) {
	switch {
	case m.Domain == telemetry.DomainCanBus:
		r.sendCAN(m)
	case m.IsLocal(telemetry.IdentifyLeaderFollower):
		r.identify.Add(1)
		reply := r.Role.Sample()
		r.leader.Store(reply.IsLocal(telemetry.ThisNodeIsLeader))
		r.sendHost(reply)
	default:
		r.unroutable.Add(1)
		glog.V(2).Infof("router: host message %s not routed", m)
	}
}

// RouteFromCAN applies the CAN-origin table.
func (r *Router) RouteFromCAN(m telemetry.Message) {
	if m.Domain == telemetry.DomainCanBus {
		r.sendHost(m)
		return
	}
	r.unroutable.Add(1)
	glog.V(2).Infof("router: CAN message %s not routed", m)
}

func (r *Router) sendHost(m telemetry.Message) {
	if r.Host.Send(m) {
		r.toHost.Add(1)
	} else {
		r.sendFailures.Add(1)
	}
}

func (r *Router) sendCAN(m telemetry.Message) {
	if r.CAN.Send(m) {
		r.toCAN.Add(1)
	} else {
		r.sendFailures.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (r *Router) Stats() Stats {
	return Stats{
		HostInbound:  r.hostInbound.Load(),
		CANInbound:   r.canInbound.Load(),
		ToHost:       r.toHost.Load(),
		ToCAN:        r.toCAN.Load(),
		SendFailures: r.sendFailures.Load(),
		Unroutable:   r.unroutable.Load(),
		Identify:     r.identify.Load(),
		LocalEvents:  r.localEvents.Load(),
		Leader:       r.leader.Load(),
	}
}
