//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// SysfsRoot is where the gpio class lives.
var SysfsRoot = "/sys/class/gpio"

// Sysfs is a pin exported through the sysfs gpio interface.
type Sysfs struct {
	num int
	fd  int
}

// OpenSysfs exports the pin, configures it as input and keeps the
// value file open.
func OpenSysfs(num int) (*Sysfs, error) {
	dir := fmt.Sprintf("%s/gpio%d", SysfsRoot, num)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err = writeFile(SysfsRoot+"/export", strconv.Itoa(num)); err != nil {
			return nil, fmt.Errorf("export gpio %d: %w", num, err)
		}
	}
	if err := writeFile(dir+"/direction", "in"); err != nil {
		return nil, fmt.Errorf("gpio %d direction: %w", num, err)
	}
	fd, err := unix.Open(dir+"/value", unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open gpio %d: %w", num, err)
	}
	return &Sysfs{num: num, fd: fd}, nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

// Read implements Pin.
func (p *Sysfs) Read() (bool, error) {
	var buf [2]byte
	n, err := unix.Pread(p.fd, buf[:], 0)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, errors.New("empty gpio value")
	}
	switch buf[0] {
	case '0':
		return false, nil
	case '1':
		return true, nil
	}
	return false, fmt.Errorf("invalid gpio %d value %q", p.num, buf[0])
}

// Close releases the value file. The pin stays exported.
func (p *Sysfs) Close() error {
	return unix.Close(p.fd)
}
