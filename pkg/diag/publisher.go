package diag

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// DefaultInterval is the default publishing interval.
const DefaultInterval = 5 * time.Second

const connectTimeout = 5 * time.Second

// StatsTopic returns the topic stats of node are published on.
func StatsTopic(node string) string {
	return node + "/stats"
}

// StatsTopicPattern subscribes to stats of all nodes.
const StatsTopicPattern = "+/stats"

// NodeID identifies this machine, falling back to the host name.
func NodeID() string {
	id, err := machineid.ID()
	if err != nil || id == "" {
		glog.Warningf("machine id unavailable: %v", err)
		if id, err = os.Hostname(); err != nil {
			return "unknown"
		}
		return id
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// Sink receives published payloads.
type Sink interface {
	Publish(topic string, payload []byte, retain bool) error
}

type sinkConnector interface {
	Connect(timeout time.Duration) error
}

// Publisher periodically publishes retained Stats.
type Publisher struct {
	Sink     Sink
	NodeID   string
	Interval time.Duration
	Collect  func() *Stats
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "stats-publisher"
}

// Run implements Runnable. Publishing failures never stop it.
func (p *Publisher) Run(ctx context.Context) error {
	if closer, ok := p.Sink.(io.Closer); ok {
		defer closer.Close()
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	connected := p.connect()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !connected {
				if connected = p.connect(); !connected {
					continue
				}
			}
			if err := p.PublishOnce(); err != nil {
				glog.Warningf("publish stats error: %v", err)
			}
		}
	}
}

func (p *Publisher) connect() bool {
	c, ok := p.Sink.(sinkConnector)
	if !ok {
		return true
	}
	if err := c.Connect(connectTimeout); err != nil {
		glog.Warningf("MQTT connect error: %v", err)
		return false
	}
	return true
}

// PublishOnce collects and publishes a snapshot.
func (p *Publisher) PublishOnce() error {
	s := p.Collect()
	s.NodeID = p.NodeID
	payload, err := EncodeStats(s)
	if err != nil {
		return err
	}
	glog.V(3).Infof("stats: %s", s)
	return p.Sink.Publish(StatsTopic(p.NodeID), payload, true)
}
