package hostlink

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

type rawBuffer struct {
	bytes.Buffer
}

func (b *rawBuffer) WriteRaw(p []byte) error {
	_, err := b.Write(p)
	return err
}

func drain(q *Queue) []byte {
	var out []byte
	for {
		b, ok := q.Pull()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestIngressReceive(t *testing.T) {
	q := NewQueue(4)
	in := &Ingress{Queue: q}
	in.Receive([]byte{1, 2, 3, 4, 5, 6})
	require.Equal(t, []byte{1, 2, 3, 4}, drain(q))
	require.Equal(t, uint64(2), q.Dropped())
}

func TestIngressEcho(t *testing.T) {
	q := NewQueue(2)
	echo := &rawBuffer{}
	in := &Ingress{Queue: q, Echo: echo}
	in.Receive([]byte{1, 2, 3})
	require.Equal(t, []byte{1, 2, 3}, echo.Bytes())
	require.Equal(t, []byte{1, 2}, drain(q))
}

func TestIngressRun(t *testing.T) {
	q := NewQueue(64)
	data := frameBytes(1, telemetry.NewLocal(telemetry.KnobIncrement))
	in := &Ingress{Reader: bytes.NewReader(data), Queue: q, BufferSize: 3}
	err := in.Run(context.Background())
	require.Equal(t, io.EOF, err)

	l := NewLink(q, io.Discard)
	m, ok := l.Recv()
	require.True(t, ok)
	require.Equal(t, telemetry.NewLocal(telemetry.KnobIncrement), m)
}

func TestIngressRunCanceled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := &Ingress{Reader: r, Queue: NewQueue(0)}
	require.Equal(t, context.Canceled, in.Run(ctx))
}
