package hostlink

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// LinkStats are counters kept by a Link.
type LinkStats struct {
	Received      uint64
	Sent          uint64
	SendErrors    uint64
	FramingErrors uint64
	Duplicates    uint64
	QueueDropped  uint64
}

// Link is the host link adapter. Recv is polled from the control loop
// and assembles messages from bytes queued by the Ingress; Send writes
// frames to the port.
type Link struct {
	queue  *Queue
	writer io.Writer
	parser Parser

	seq      FrameSeq
	sendLock sync.Mutex

	received      atomic.Uint64
	sent          atomic.Uint64
	sendErrors    atomic.Uint64
	framingErrors atomic.Uint64
	duplicates    atomic.Uint64
}

// NewLink creates a Link consuming q and writing to w.
func NewLink(q *Queue, w io.Writer) *Link {
	return &Link{queue: q, writer: w, seq: NewFrameSeq()}
}

// Queue returns the receive queue.
func (l *Link) Queue() *Queue {
	return l.queue
}

// Recv returns the next complete message if one can be assembled from
// the bytes currently queued. It never waits for more bytes: a partial
// frame stays in the parser until the next call.
func (l *Link) Recv() (telemetry.Message, bool) {
	for {
		b, ok := l.queue.Pull()
		if !ok {
			return telemetry.Message{}, false
		}
		pr := l.parser.Parse(b)
		if pr.Err != nil {
			if pr.Err == ErrFrameDuplicate {
				l.duplicates.Add(1)
			} else {
				l.framingErrors.Add(1)
			}
			glog.V(2).Infof("host link: frame dropped: %v", pr.Err)
			continue
		}
		if pr.Frame != nil {
			l.received.Add(1)
			glog.V(3).Infof("host link: RCV %s", pr.Frame.Message)
			return pr.Frame.Message, true
		}
	}
}

// Send writes the message to the host. Delivery is best effort:
// it returns false if the write failed and nothing is retried.
func (l *Link) Send(m telemetry.Message) bool {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	f := Frame{Seq: l.seq, Message: m}
	l.seq = l.seq.Next()
	if _, err := f.WriteTo(l.writer); err != nil {
		l.sendErrors.Add(1)
		glog.Errorf("host link: send %s error: %v", m, err)
		return false
	}
	l.sent.Add(1)
	glog.V(3).Infof("host link: SND %s", m)
	return true
}

// WriteRaw writes bytes to the port without framing, serialized with Send.
func (l *Link) WriteRaw(p []byte) error {
	l.sendLock.Lock()
	defer l.sendLock.Unlock()
	_, err := l.writer.Write(p)
	return err
}

// Stats returns a snapshot of the counters.
func (l *Link) Stats() LinkStats {
	return LinkStats{
		Received:      l.received.Load(),
		Sent:          l.sent.Load(),
		SendErrors:    l.sendErrors.Load(),
		FramingErrors: l.framingErrors.Load(),
		Duplicates:    l.duplicates.Load(),
		QueueDropped:  l.queue.Dropped(),
	}
}
