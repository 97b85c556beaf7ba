package knob

import (
	"time"

	fx "github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// ButtonDetector emits ButtonPress on a low to high level change and
// ButtonRelease on high to low. With a non-zero Debounce, a change
// within Debounce of the previous accepted change is ignored.
type ButtonDetector struct {
	Clock    fx.TimeSource
	Debounce time.Duration

	pressed    bool
	lastChange time.Time
}

// Pressed returns the last accepted level.
func (d *ButtonDetector) Pressed() bool {
	return d.pressed
}

// Evaluate evaluates the current level.
func (d *ButtonDetector) Evaluate(level bool) (telemetry.Message, bool) {
	if level == d.pressed {
		return telemetry.Message{}, false
	}
	if d.Debounce > 0 {
		now := d.now()
		if !d.lastChange.IsZero() && now.Sub(d.lastChange) < d.Debounce {
			return telemetry.Message{}, false
		}
		d.lastChange = now
	}
	d.pressed = level
	if level {
		return telemetry.NewLocal(telemetry.ButtonPress), true
	}
	return telemetry.NewLocal(telemetry.ButtonRelease), true
}

func (d *ButtonDetector) now() time.Time {
	if d.Clock == nil {
		return time.Now()
	}
	return d.Clock.Time()
}
