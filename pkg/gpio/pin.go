// Package gpio reads digital input levels.
package gpio

import "sync/atomic"

// Pin is a digital input. No debounce or edge detection is applied.
type Pin interface {
	Read() (bool, error)
}

// Disabled is the pin number which selects a Static pin.
const Disabled = -1

// Static is a Pin whose level is set programmatically.
type Static struct {
	level atomic.Bool
}

// NewStatic creates a Static pin with the initial level.
func NewStatic(level bool) *Static {
	p := &Static{}
	p.level.Store(level)
	return p
}

// Set changes the level.
func (p *Static) Set(level bool) {
	p.level.Store(level)
}

// Read implements Pin.
func (p *Static) Read() (bool, error) {
	return p.level.Load(), nil
}

// Open opens a sysfs pin, or a Static low pin if num is Disabled.
func Open(num int) (Pin, error) {
	if num == Disabled {
		return NewStatic(false), nil
	}
	pin, err := OpenSysfs(num)
	if err != nil {
		return nil, err
	}
	return pin, nil
}
