package loadgen

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"txload/pkg/logger"
)

// MinPayloadSize is the smallest accepted payload: 4 tag bytes plus 4
// discriminator bytes. Anything smaller cannot carry the header.
const MinPayloadSize = 8

type Config struct {
	LoggerConfig logger.Config `yaml:"-"`

	// Target is the address of the node to drive with payloads.
	Target string `yaml:"target"`
	// Size is the size of each payload in bytes.
	Size int `yaml:"size"`
	// Rate is the number of payloads sent per burst window.
	Rate int `yaml:"rate"`
	// Nodes must all accept a connection before the first burst.
	Nodes []string `yaml:"nodes"`
	// Port is where the inbound receiver listens for deliveries.
	Port int `yaml:"port"`
	// Local binds the receiver to loopback only.
	Local bool `yaml:"local"`
	// Honest makes every payload a sample payload.
	Honest bool `yaml:"honest"`

	// Stats enables the periodic throughput report on stdout.
	Stats bool `yaml:"stats"`

	BurstWindow   time.Duration `yaml:"burst_window" default:"1s"`
	StatsInterval time.Duration `yaml:"stats_interval" default:"1s"`
}

// LoadFile overlays a YAML run file onto the config. Fields absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

// Validate rejects malformed configurations before any connection is
// attempted.
func (c *Config) Validate() error {
	if c.Target == "" {
		return errors.New("target address is required")
	}
	if _, err := net.ResolveTCPAddr("tcp", c.Target); err != nil {
		return errors.Wrapf(err, "invalid target address %q", c.Target)
	}
	if c.Size < MinPayloadSize {
		return errors.Errorf("payload size must be at least %d bytes, got %d", MinPayloadSize, c.Size)
	}
	if c.Rate < 0 {
		return errors.Errorf("rate must be a non-negative integer, got %d", c.Rate)
	}
	for _, node := range c.Nodes {
		if _, err := net.ResolveTCPAddr("tcp", node); err != nil {
			return errors.Wrapf(err, "invalid node address %q", node)
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("listen port must be in 1..65535, got %d", c.Port)
	}
	if c.BurstWindow <= 0 {
		return errors.New("burst window must be positive")
	}
	return nil
}

// ListenAddr is the receiver bind address: loopback only when Local is set,
// otherwise all interfaces.
func (c *Config) ListenAddr() string {
	if c.Local {
		return fmt.Sprintf("127.0.0.1:%d", c.Port)
	}
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}
