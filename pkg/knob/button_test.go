package knob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/knobbridge/pkg/telemetry"
)

func TestButtonDetector(t *testing.T) {
	var d ButtonDetector
	_, ok := d.Evaluate(false)
	require.False(t, ok)

	m, ok := d.Evaluate(true)
	require.True(t, ok)
	require.Equal(t, telemetry.NewLocal(telemetry.ButtonPress), m)
	for i := 0; i < 3; i++ {
		_, ok = d.Evaluate(true)
		require.False(t, ok)
	}
	require.True(t, d.Pressed())

	m, ok = d.Evaluate(false)
	require.True(t, ok)
	require.Equal(t, telemetry.NewLocal(telemetry.ButtonRelease), m)
	_, ok = d.Evaluate(false)
	require.False(t, ok)
}

func TestButtonDetectorDebounce(t *testing.T) {
	clock := newFakeClock()
	d := ButtonDetector{Clock: clock, Debounce: 5 * time.Millisecond}

	_, ok := d.Evaluate(true)
	require.True(t, ok)
	clock.Advance(time.Millisecond)
	_, ok = d.Evaluate(false)
	require.False(t, ok)
	require.True(t, d.Pressed())

	clock.Advance(5 * time.Millisecond)
	m, ok := d.Evaluate(false)
	require.True(t, ok)
	require.True(t, m.IsLocal(telemetry.ButtonRelease))
}
