package canbus

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// DefaultSendTimeout bounds how long Send waits for the controller.
const DefaultSendTimeout = 10 * time.Millisecond

// AdapterStats are counters kept by an Adapter.
type AdapterStats struct {
	Received      uint64
	Sent          uint64
	SendErrors    uint64
	ReceiveErrors uint64
	Dropped       uint64
}

// Adapter converts between telemetry messages and CAN frames.
// It's called from the control loop only.
type Adapter struct {
	Bus         Bus
	SendTimeout time.Duration

	received      atomic.Uint64
	sent          atomic.Uint64
	sendErrors    atomic.Uint64
	receiveErrors atomic.Uint64
	dropped       atomic.Uint64
}

// NewAdapter creates an Adapter on bus.
func NewAdapter(bus Bus) *Adapter {
	return &Adapter{Bus: bus, SendTimeout: DefaultSendTimeout}
}

// FrameFromMessage builds the frame carrying m: the identifier is the
// message id and the payload is all 8 data bytes.
func FrameFromMessage(m telemetry.Message) Frame {
	f := Frame{ID: uint32(m.ID), Len: telemetry.PayloadSize, Data: m.Data}
	f.Extended = f.ID > MaxStdID
	return f
}

// MessageFromFrame converts a received frame. It returns false for
// frames that can't be expressed as a message.
func MessageFromFrame(f Frame) (telemetry.Message, bool) {
	if f.RTR || f.ID > 0xFFFF || f.Len > 8 {
		return telemetry.Message{}, false
	}
	return telemetry.NewCanBus(uint16(f.ID), f.Payload()), true
}

// Send transmits m. It returns false if the controller didn't accept
// the frame in time, the message is not retried.
func (a *Adapter) Send(m telemetry.Message) bool {
	f := FrameFromMessage(m)
	if err := a.Bus.Send(f, a.SendTimeout); err != nil {
		a.sendErrors.Add(1)
		glog.Errorf("CAN: send %s error: %v", f, err)
		return false
	}
	a.sent.Add(1)
	glog.V(3).Infof("CAN: SND %s", f)
	return true
}

// Recv polls for one frame without waiting. Error frames are counted
// as dropped and skipped, so frames queued behind them still drain.
func (a *Adapter) Recv() (telemetry.Message, bool) {
	for {
		f, ok, err := a.Bus.TryReceive()
		if errors.Is(err, ErrErrorFrame) {
			a.dropped.Add(1)
			glog.V(2).Info("CAN: error frame dropped")
			continue
		}
		if err != nil {
			a.receiveErrors.Add(1)
			glog.V(2).Infof("CAN: receive error: %v", err)
			return telemetry.Message{}, false
		}
		if !ok {
			return telemetry.Message{}, false
		}
		m, ok := MessageFromFrame(f)
		if !ok {
			a.dropped.Add(1)
			glog.V(2).Infof("CAN: frame dropped: %s", f)
			continue
		}
		a.received.Add(1)
		glog.V(3).Infof("CAN: RCV %s", f)
		return m, true
	}
}

// Stats returns a snapshot of the counters.
func (a *Adapter) Stats() AdapterStats {
	return AdapterStats{
		Received:      a.received.Load(),
		Sent:          a.sent.Load(),
		SendErrors:    a.sendErrors.Load(),
		ReceiveErrors: a.receiveErrors.Load(),
		Dropped:       a.dropped.Load(),
	}
}
