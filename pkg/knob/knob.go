package knob

import (
	"github.com/golang/glog"

	"github.com/robotalks/knobbridge/pkg/gpio"
	"github.com/robotalks/knobbridge/pkg/telemetry"
)

// Encoder samples the encoder pins and feeds the decoder.
type Encoder struct {
	A, B    gpio.Pin
	Decoder *QuadratureDecoder
}

// Evaluate samples both channels once. A pin read error is
// logged and produces no event.
func (e *Encoder) Evaluate() (telemetry.Message, bool) {
	a, err := e.A.Read()
	if err != nil {
		glog.Warningf("encoder: read A error: %v", err)
		return telemetry.Message{}, false
	}
	b, err := e.B.Read()
	if err != nil {
		glog.Warningf("encoder: read B error: %v", err)
		return telemetry.Message{}, false
	}
	m, ok := e.Decoder.Step(a, b)
	if ok {
		glog.V(2).Infof("encoder: %s", m)
	}
	return m, ok
}

// Button samples the button pin and feeds the detector.
type Button struct {
	Pin      gpio.Pin
	Detector *ButtonDetector
}

// Evaluate samples the pin once.
func (b *Button) Evaluate() (telemetry.Message, bool) {
	level, err := b.Pin.Read()
	if err != nil {
		glog.Warningf("button: read error: %v", err)
		return telemetry.Message{}, false
	}
	m, ok := b.Detector.Evaluate(level)
	if ok {
		glog.V(2).Infof("button: %s", m)
	}
	return m, ok
}
