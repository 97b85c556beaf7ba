package diag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type publishedMsg struct {
	topic   string
	payload []byte
	retain  bool
}

type fakeSink struct {
	ch   chan publishedMsg
	fail bool
}

func (s *fakeSink) Publish(topic string, payload []byte, retain bool) error {
	if s.fail {
		return errors.New("publish failed")
	}
	select {
	case s.ch <- publishedMsg{topic: topic, payload: payload, retain: retain}:
	default:
	}
	return nil
}

func testStats() *Stats {
	return &Stats{
		Leader:        true,
		UptimeSeconds: 42,
		Host:          &HostStats{Received: 3, QueueDropped: 1},
		CAN:           &CANStats{Sent: 7},
		Router:        &RouterStats{Identify: 2, ToCan: 7},
	}
}

func TestPublishOnce(t *testing.T) {
	sink := &fakeSink{ch: make(chan publishedMsg, 1)}
	p := &Publisher{Sink: sink, NodeID: "node1", Collect: testStats}
	require.NoError(t, p.PublishOnce())

	msg := <-sink.ch
	require.Equal(t, "node1/stats", msg.topic)
	require.True(t, msg.retain)
	s, err := DecodeStats(msg.payload)
	require.NoError(t, err)
	expected := testStats()
	expected.NodeID = "node1"
	require.Equal(t, expected.String(), s.String())
	require.Equal(t, uint64(1), s.Host.QueueDropped)
	require.Equal(t, uint64(2), s.Router.Identify)

	sink.fail = true
	require.Error(t, p.PublishOnce())
}

func TestPublisherRun(t *testing.T) {
	sink := &fakeSink{ch: make(chan publishedMsg, 4)}
	p := &Publisher{Sink: sink, NodeID: "n", Interval: time.Millisecond, Collect: testStats}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	select {
	case msg := <-sink.ch:
		require.Equal(t, "n/stats", msg.topic)
	case <-time.After(5 * time.Second):
		t.Fatal("nothing published")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestDecodeStatsInvalid(t *testing.T) {
	_, err := DecodeStats([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
