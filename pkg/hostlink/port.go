package hostlink

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"

	"github.com/golang/glog"
	"github.com/tarm/serial"
	"golang.org/x/net/websocket"
)

// DefaultBaud is used for serial ports without a baud parameter.
// USB CDC ignores it.
const DefaultBaud = 115200

// OpenPort opens the byte stream to the host from a URL:
//
//	serial:///dev/ttyACM0?baud=115200
//	ws://host:port/path
//	tcp://host:port
//	listen://host:port (accepts a single connection)
func OpenPort(portURL string) (io.ReadWriteCloser, error) {
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, fmt.Errorf("invalid host port URL: %v", err)
	}
	switch u.Scheme {
	case "serial", "":
		return openSerial(u)
	case "ws", "wss":
		return openWebSocket(u)
	case "tcp":
		return net.Dial("tcp", u.Host)
	case "listen":
		return acceptOne(u.Host)
	default:
		return nil, &UnknownSchemeError{Scheme: u.Scheme}
	}
}

func openSerial(u *url.URL) (io.ReadWriteCloser, error) {
	baud := DefaultBaud
	if val := u.Query().Get("baud"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid baud %q", val)
		}
		baud = n
	}
	port, err := serial.OpenPort(&serial.Config{Name: u.Path, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", u.Path, err)
	}
	return port, nil
}

func openWebSocket(u *url.URL) (io.ReadWriteCloser, error) {
	origin := "http://" + u.Host + "/"
	if u.Scheme == "wss" {
		origin = "https://" + u.Host + "/"
	}
	conn, err := websocket.Dial(u.String(), "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}

func acceptOne(addr string) (io.ReadWriteCloser, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	defer ln.Close()
	glog.Infof("waiting for connection on %s", ln.Addr())
	return ln.Accept()
}
