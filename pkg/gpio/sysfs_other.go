//go:build !linux

package gpio

import "errors"

// Sysfs is only available on linux.
type Sysfs struct{}

// OpenSysfs always fails on this platform.
func OpenSysfs(num int) (*Sysfs, error) {
	return nil, errors.New("sysfs gpio is only supported on linux")
}

// Read implements Pin.
func (p *Sysfs) Read() (bool, error) {
	return false, errors.New("sysfs gpio is only supported on linux")
}

// Close releases the pin.
func (p *Sysfs) Close() error { return nil }
