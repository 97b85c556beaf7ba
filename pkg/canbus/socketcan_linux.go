//go:build linux

package canbus

import (
	"errors"
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// SocketCAN is a raw CAN_RAW socket bound to a network interface.
type SocketCAN struct {
	fd    int
	iface string
	buf   [FrameSize]byte
}

// OpenSocketCAN opens and binds a non-blocking raw CAN socket.
func OpenSocketCAN(iface string) (*SocketCAN, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, err
	}
	if err = unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err == nil {
		err = unix.SetNonblock(fd, true)
	}
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &SocketCAN{fd: fd, iface: iface}, nil
}

// Name returns the interface name.
func (s *SocketCAN) Name() string {
	return s.iface
}

// Send implements Bus.
func (s *SocketCAN) Send(f Frame, timeout time.Duration) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for {
		_, err = unix.Write(s.fd, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EAGAIN) && !errors.Is(err, unix.ENOBUFS) {
			return err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		ms := int(remaining / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
		fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
		if _, err = unix.Poll(fds, ms); err != nil && !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// TryReceive implements Bus.
func (s *SocketCAN) TryReceive() (Frame, bool, error) {
	var f Frame
	n, err := unix.Read(s.fd, s.buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return f, false, nil
		}
		return f, false, err
	}
	if err = f.UnmarshalBinary(s.buf[:n]); err != nil {
		return f, false, err
	}
	return f, true, nil
}

// Close implements Bus.
func (s *SocketCAN) Close() error {
	return unix.Close(s.fd)
}
