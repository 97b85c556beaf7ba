// Package knob decodes the push encoder knob: a quadrature encoder
// and a push button.
package knob

import (
	"time"

	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// DefaultEncoderDebounce is the minimum interval between accepted transitions.
const DefaultEncoderDebounce = 3 * time.Millisecond

// QuadratureState is the 2-bit Gray code read from channels A (high bit) and B.
type QuadratureState uint8

// Quadrature states.
const (
	StateRest QuadratureState = 0x0 // 00
	StateB    QuadratureState = 0x1 // 01
	StateA    QuadratureState = 0x2 // 10
	StateAB   QuadratureState = 0x3 // 11
)

// QuadratureStateOf encodes the channel levels.
func QuadratureStateOf(a, b bool) QuadratureState {
	var s QuadratureState
	if a {
		s |= StateA
	}
	if b {
		s |= StateB
	}
	return s
}

// String implements fmt.Stringer.
func (s QuadratureState) String() string {
	return [...]string{"00", "01", "10", "11"}[s&0x3]
}

// restEvents is keyed on the state left when returning to StateRest.
var restEvents = map[QuadratureState]telemetry.LocalID{
	StateB: telemetry.KnobDecrement,
	StateA: telemetry.KnobIncrement,
}

// QuadratureDecoder turns channel levels into one event per detent.
// An excursion away from rest emits when it returns to rest, and only
// if it returns through a different state than it left through.
// It must be used from a single goroutine.
type QuadratureDecoder struct {
	Clock    fx.TimeSource
	Debounce time.Duration

	state        QuadratureState
	entry        QuadratureState
	lastAccepted time.Time
}

// NewQuadratureDecoder creates a decoder with DefaultEncoderDebounce.
func NewQuadratureDecoder(clock fx.TimeSource) *QuadratureDecoder {
	return &QuadratureDecoder{Clock: clock, Debounce: DefaultEncoderDebounce}
}

// State returns the last accepted state.
func (d *QuadratureDecoder) State() QuadratureState {
	return d.state
}

// Step evaluates the current levels.
func (d *QuadratureDecoder) Step(a, b bool) (telemetry.Message, bool) {
	s := QuadratureStateOf(a, b)
	if s == d.state {
		return telemetry.Message{}, false
	}
	now := d.now()
	if !d.lastAccepted.IsZero() && now.Sub(d.lastAccepted) < d.Debounce {
		return telemetry.Message{}, false
	}
	d.lastAccepted = now
	left := d.state
	d.state = s
	if left == StateRest {
		d.entry = s
		return telemetry.Message{}, false
	}
	if s != StateRest {
		return telemetry.Message{}, false
	}
	entry := d.entry
	d.entry = StateRest
	if left == entry {
		return telemetry.Message{}, false
	}
	id, ok := restEvents[left]
	if !ok {
		return telemetry.Message{}, false
	}
	return telemetry.NewLocal(id), true
}

func (d *QuadratureDecoder) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Time()
}
