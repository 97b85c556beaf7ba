package bridge

import (
	"context"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/knobbridge/pkg/canbus"
	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/gpio"
	"github.com/robotalks/knobbridge/pkg/hostlink"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

type hostSide struct {
	t      *testing.T
	conn   net.Conn
	seq    hostlink.FrameSeq
	parser hostlink.Parser
}

func (h *hostSide) send(m telemetry.Message) {
	h.seq = h.seq.Next()
	f := hostlink.Frame{Seq: h.seq, Message: m}
	_, err := f.WriteTo(h.conn)
	require.NoError(h.t, err)
}

func (h *hostSide) recv() telemetry.Message {
	require.NoError(h.t, h.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	buf := make([]byte, 1)
	for {
		_, err := io.ReadFull(h.conn, buf)
		require.NoError(h.t, err)
		if pr := h.parser.Parse(buf[0]); pr.Frame != nil {
			return pr.Frame.Message
		}
	}
}

func listen(t *testing.T) (net.Listener, chan net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	connCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			connCh <- conn
		}
	}()
	return ln, connCh
}

func TestBridgeEndToEnd(t *testing.T) {
	ln, connCh := listen(t)
	defer ln.Close()

	conf := NewConfig()
	conf.HostURL = "tcp://" + ln.Addr().String()
	conf.CANInterface = canbus.VirtualInterface
	conf.Pins = PinConfig{EncoderA: -1, EncoderB: -1, Button: -1, LeaderSelect: -1}
	conf.MQTTBrokerURL = ""
	b, err := conf.NewBridge()
	require.NoError(t, err)
	require.Nil(t, b.Publisher)
	bus := b.Bus.(*canbus.Virtual)

	host := &hostSide{t: t, conn: <-connCh}
	defer host.conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	loop := fx.NewLoop().Add(b)
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	// identify
	host.send(telemetry.NewLocal(telemetry.IdentifyLeaderFollower))
	require.Equal(t, telemetry.NewLocal(telemetry.ThisNodeIsFollower), host.recv())

	// host to CAN
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	host.send(telemetry.NewCanBus(0x123, data))
	select {
	case f := <-bus.Transmitted():
		require.Equal(t, uint32(0x123), f.ID)
		require.Equal(t, data, f.Payload())
	case <-time.After(5 * time.Second):
		t.Fatal("no CAN frame transmitted")
	}

	// CAN to host
	require.True(t, bus.Deliver(canbus.Frame{ID: 0x456, Len: 8, Data: [8]byte{8, 7, 6, 5, 4, 3, 2, 1}}))
	require.Equal(t, telemetry.NewCanBus(0x456, []byte{8, 7, 6, 5, 4, 3, 2, 1}), host.recv())

	cancel()
	require.Equal(t, context.Canceled, <-errCh)

	stats := b.Stats()
	require.False(t, stats.Leader)
	require.Equal(t, uint64(2), stats.Host.Received)
	require.Equal(t, uint64(2), stats.Host.Sent)
	require.Equal(t, uint64(1), stats.CAN.Sent)
	require.Equal(t, uint64(1), stats.CAN.Received)
	require.Equal(t, uint64(1), stats.Router.Identify)
	b.Close()
}

func TestBridgeLocalEvents(t *testing.T) {
	hostConn, port := net.Pipe()
	defer hostConn.Close()
	bus := canbus.NewVirtual(4)
	pins := &Pins{
		EncoderA:     gpio.NewStatic(false),
		EncoderB:     gpio.NewStatic(false),
		Button:       gpio.NewStatic(false),
		LeaderSelect: gpio.NewStatic(true),
	}
	conf := NewConfig()
	conf.ForwardLocalToCAN = true
	b, err := conf.Assemble(port, bus, pins)
	require.NoError(t, err)
	host := &hostSide{t: t, conn: hostConn}

	ctx, cancel := context.WithCancel(context.Background())
	loop := fx.NewLoop().Add(b)
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	pins.Button.(*gpio.Static).Set(true)
	require.Equal(t, telemetry.NewLocal(telemetry.ButtonPress), host.recv())
	select {
	case f := <-bus.Transmitted():
		require.Equal(t, uint32(telemetry.ButtonPress), f.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("no CAN frame transmitted")
	}

	host.send(telemetry.NewLocal(telemetry.IdentifyLeaderFollower))
	require.Equal(t, telemetry.NewLocal(telemetry.ThisNodeIsLeader), host.recv())

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.True(t, b.Stats().Leader)
}

type countingPin struct {
	gpio.Static
	reads atomic.Int32
}

func (p *countingPin) Read() (bool, error) {
	p.reads.Add(1)
	return p.Static.Read()
}

func TestBridgeStatsLeavesLeaderPin(t *testing.T) {
	hostConn, port := net.Pipe()
	defer hostConn.Close()
	leader := &countingPin{}
	leader.Set(true)
	pins := &Pins{
		EncoderA:     gpio.NewStatic(false),
		EncoderB:     gpio.NewStatic(false),
		Button:       gpio.NewStatic(false),
		LeaderSelect: leader,
	}
	b, err := NewConfig().Assemble(port, canbus.NewVirtual(4), pins)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.False(t, b.Stats().Leader)
	}
	require.Zero(t, leader.reads.Load())

	host := &hostSide{t: t, conn: hostConn}
	ctx, cancel := context.WithCancel(context.Background())
	loop := fx.NewLoop().Add(b)
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	host.send(telemetry.NewLocal(telemetry.IdentifyLeaderFollower))
	require.Equal(t, telemetry.NewLocal(telemetry.ThisNodeIsLeader), host.recv())
	cancel()
	require.Equal(t, context.Canceled, <-errCh)

	require.True(t, b.Stats().Leader)
	require.Equal(t, int32(1), leader.reads.Load())
}

func TestBridgeCloseReleasesPins(t *testing.T) {
	hostConn, port := net.Pipe()
	defer hostConn.Close()
	encA := &closerPin{}
	pins := &Pins{
		EncoderA:     encA,
		EncoderB:     gpio.NewStatic(false),
		Button:       gpio.NewStatic(false),
		LeaderSelect: gpio.NewStatic(false),
	}
	b, err := NewConfig().Assemble(port, canbus.NewVirtual(1), pins)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	require.Equal(t, 1, encA.closed)
}
