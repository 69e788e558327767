// Package config handles the hf2.yaml configuration file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/moffa90/go-hf2/discovery"
)

// DefaultPath is read from the working directory when no --config is given.
const DefaultPath = "hf2.yaml"

// Transport names.
const (
	TransportHID    = "hid"
	TransportSerial = "serial"
)

// Config represents an hf2.yaml configuration file.
// All values are optional and act as defaults for the command-line flags.
// CLI flags always override config values.
type Config struct {
	Transport string          `yaml:"transport"`
	Serial    SerialConfig    `yaml:"serial"`
	Timeout   Duration        `yaml:"timeout"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Flash     FlashConfig     `yaml:"flash"`
	Log       LogConfig       `yaml:"log"`
}

// SerialConfig holds the serial transport settings.
type SerialConfig struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// DiscoveryConfig selects how the device is found.
type DiscoveryConfig struct {
	Strategy string        `yaml:"strategy"`
	Devices  []DeviceEntry `yaml:"devices"`
}

// DeviceEntry is a known-good identifier pair. IDs accept "0x" hex or
// decimal; an empty or zero pid matches any product of the vendor.
type DeviceEntry struct {
	VID  string `yaml:"vid"`
	PID  string `yaml:"pid"`
	Name string `yaml:"name"`
}

// FlashConfig holds flashing defaults.
type FlashConfig struct {
	Force  bool `yaml:"force"`
	Verify bool `yaml:"verify"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "500ms", "5s").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "5s" or "1m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Transport) {
	case "", TransportHID, TransportSerial:
	default:
		return fmt.Errorf("invalid transport %q (want %s or %s)", c.Transport, TransportHID, TransportSerial)
	}

	if strings.EqualFold(c.Transport, TransportSerial) && c.Serial.Device == "" {
		return fmt.Errorf("transport %s requires serial.device", TransportSerial)
	}
	if c.Serial.Baud < 0 {
		return fmt.Errorf("invalid serial.baud %d", c.Serial.Baud)
	}
	if c.Timeout.Duration < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout.Duration)
	}

	switch strings.ToLower(c.Discovery.Strategy) {
	case "", discovery.StrategyTable, discovery.StrategyProbe, discovery.StrategyTableProbe:
	default:
		return fmt.Errorf("invalid discovery.strategy %q", c.Discovery.Strategy)
	}

	if _, err := c.KnownDevices(); err != nil {
		return err
	}
	return nil
}

// KnownDevices returns the identifier table: discovery.DefaultTable followed
// by the configured devices.
func (c *Config) KnownDevices() ([]discovery.KnownDevice, error) {
	table := append([]discovery.KnownDevice(nil), discovery.DefaultTable...)

	for i, d := range c.Discovery.Devices {
		vid, err := discovery.ParseID(d.VID)
		if err != nil {
			return nil, fmt.Errorf("discovery.devices[%d].vid: %w", i, err)
		}

		var pid uint16
		if d.PID != "" {
			pid, err = discovery.ParseID(d.PID)
			if err != nil {
				return nil, fmt.Errorf("discovery.devices[%d].pid: %w", i, err)
			}
		}

		table = append(table, discovery.KnownDevice{
			IDs:  discovery.IDs{VendorID: vid, ProductID: pid},
			Name: d.Name,
		})
	}
	return table, nil
}
