package bridge

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/robotalks/knobbridge/pkg/canbus"
	"github.com/robotalks/knobbridge/pkg/diag"
	"github.com/robotalks/knobbridge/pkg/framework"
	"github.com/robotalks/knobbridge/pkg/gpio"
	"github.com/robotalks/knobbridge/pkg/hostlink"
	"github.com/robotalks/knobbridge/pkg/knob"
)

// PinConfig assigns GPIO numbers, gpio.Disabled (-1) for a pin held low.
type PinConfig struct {
	EncoderA     int `yaml:"encoder-a"`
	EncoderB     int `yaml:"encoder-b"`
	Button       int `yaml:"button"`
	LeaderSelect int `yaml:"leader-select"`
}

// Config defines the configurations of the bridge.
type Config struct {
	// HostURL is the port to the host, see hostlink.OpenPort.
	HostURL string `yaml:"host"`
	// HostEcho retransmits every received byte to the host.
	HostEcho  bool `yaml:"host-echo"`
	QueueSize int  `yaml:"queue-size"`

	// CANInterface is the SocketCAN interface, or "virtual".
	CANInterface      string        `yaml:"can"`
	CANSendTimeout    time.Duration `yaml:"can-send-timeout"`
	ForwardLocalToCAN bool          `yaml:"forward-local-to-can"`

	Pins            PinConfig     `yaml:"pins"`
	EncoderDebounce time.Duration `yaml:"encoder-debounce"`
	ButtonDebounce  time.Duration `yaml:"button-debounce"`
	IdleSleep       time.Duration `yaml:"idle-sleep"`

	// MQTTBrokerURL enables stats publishing,
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string        `yaml:"mqtt"`
	StatsInterval time.Duration `yaml:"stats-interval"`
	NodeID        string        `yaml:"node-id"`
}

var defaultConfig = Config{
	HostURL:        "serial:///dev/ttyACM0",
	QueueSize:      hostlink.DefaultQueueSize,
	CANInterface:   "can0",
	CANSendTimeout: canbus.DefaultSendTimeout,
	Pins: PinConfig{
		EncoderA:     8,
		EncoderB:     9,
		Button:       7,
		LeaderSelect: 6,
	},
	EncoderDebounce: knob.DefaultEncoderDebounce,
	IdleSleep:       framework.DefaultIdleSleep,
	StatsInterval:   diag.DefaultInterval,
}

var configFile string

func init() {
	if val := os.Getenv("KNOB_HOST"); val != "" {
		defaultConfig.HostURL = val
	}
	if val := os.Getenv("KNOB_CAN"); val != "" {
		defaultConfig.CANInterface = val
	}
	if val := os.Getenv("KNOB_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, overrides flags")
	flag.StringVar(&defaultConfig.HostURL, "host", defaultConfig.HostURL, "Host port URL: serial:///dev/tty..., tcp://host:port, ws://host:port/path")
	flag.BoolVar(&defaultConfig.HostEcho, "host-echo", defaultConfig.HostEcho, "Echo every received byte back to the host")
	flag.IntVar(&defaultConfig.QueueSize, "queue-size", defaultConfig.QueueSize, "Host receive queue size in bytes")
	flag.StringVar(&defaultConfig.CANInterface, "can", defaultConfig.CANInterface, "CAN interface, virtual for an in-memory bus")
	flag.DurationVar(&defaultConfig.CANSendTimeout, "can-send-timeout", defaultConfig.CANSendTimeout, "CAN transmit wait")
	flag.BoolVar(&defaultConfig.ForwardLocalToCAN, "forward-local-to-can", defaultConfig.ForwardLocalToCAN, "Also send knob and button events to the CAN bus")
	flag.IntVar(&defaultConfig.Pins.EncoderA, "pin-encoder-a", defaultConfig.Pins.EncoderA, "Encoder A GPIO, -1 to disable")
	flag.IntVar(&defaultConfig.Pins.EncoderB, "pin-encoder-b", defaultConfig.Pins.EncoderB, "Encoder B GPIO, -1 to disable")
	flag.IntVar(&defaultConfig.Pins.Button, "pin-button", defaultConfig.Pins.Button, "Button GPIO, -1 to disable")
	flag.IntVar(&defaultConfig.Pins.LeaderSelect, "pin-leader", defaultConfig.Pins.LeaderSelect, "Leader select GPIO, -1 to disable")
	flag.DurationVar(&defaultConfig.EncoderDebounce, "encoder-debounce", defaultConfig.EncoderDebounce, "Encoder debounce window")
	flag.DurationVar(&defaultConfig.ButtonDebounce, "button-debounce", defaultConfig.ButtonDebounce, "Button debounce window, 0 to disable")
	flag.DurationVar(&defaultConfig.IdleSleep, "idle-sleep", defaultConfig.IdleSleep, "Sleep after an idle loop iteration")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for stats, empty to disable")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats-interval", defaultConfig.StatsInterval, "Stats publishing interval")
	flag.StringVar(&defaultConfig.NodeID, "node-id", defaultConfig.NodeID, "Node ID in stats topic, machine ID if empty")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a config from defaults and the file given by -config.
func Load() (*Config, error) {
	conf := NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return conf, nil
}

// LoadFile overrides the config with keys present in a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.LoadYAML(data)
}

// LoadYAML overrides the config with keys present in data.
// Unknown keys are rejected.
func (c *Config) LoadYAML(data []byte) error {
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// openPin is replaced in tests.
var openPin = gpio.Open

// OpenPins opens the configured GPIO pins. On error, the pins
// already opened are closed.
func (c *Config) OpenPins() (*Pins, error) {
	pins := &Pins{}
	for _, p := range []struct {
		pin *gpio.Pin
		num int
	}{
		{&pins.EncoderA, c.Pins.EncoderA},
		{&pins.EncoderB, c.Pins.EncoderB},
		{&pins.Button, c.Pins.Button},
		{&pins.LeaderSelect, c.Pins.LeaderSelect},
	} {
		pin, err := openPin(p.num)
		if err != nil {
			var errs framework.AggregatedError
			errs.Add(err, pins.Close())
			return nil, errs.Aggregate()
		}
		*p.pin = pin
	}
	return pins, nil
}
