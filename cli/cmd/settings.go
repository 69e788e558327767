package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/config"
	"github.com/moffa90/go-hf2/discovery"
	"github.com/moffa90/go-hf2/log"
	"github.com/moffa90/go-hf2/transport"
)

// settings is the configuration file merged with the command-line flags.
type settings struct {
	transport string
	serial    transport.SerialConfig
	timeout   time.Duration
	strategy  string
	table     []discovery.KnownDevice
	ids       *discovery.IDs

	force   bool
	verify  bool
	noColor bool

	logLevel  string
	logFormat string
}

func loadSettings(c *cli.Context) (*settings, error) {
	cfg, err := config.Resolve(c.String("config"))
	if err != nil {
		return nil, err
	}

	table, err := cfg.KnownDevices()
	if err != nil {
		return nil, err
	}

	s := &settings{
		transport: strings.ToLower(cfg.Transport),
		serial: transport.SerialConfig{
			Device: cfg.Serial.Device,
			Baud:   cfg.Serial.Baud,
		},
		timeout:   cfg.Timeout.Duration,
		strategy:  cfg.Discovery.Strategy,
		table:     table,
		force:     cfg.Flash.Force || c.Bool("force"),
		verify:    cfg.Flash.Verify || c.Bool("verify"),
		noColor:   c.Bool("no-color"),
		logLevel:  cfg.Log.Level,
		logFormat: cfg.Log.Format,
	}

	if c.IsSet("transport") {
		s.transport = strings.ToLower(c.String("transport"))
	}
	if c.IsSet("serial") {
		s.serial.Device = c.String("serial")
		if !c.IsSet("transport") {
			s.transport = config.TransportSerial
		}
	}
	if c.IsSet("baud") {
		s.serial.Baud = c.Int("baud")
	}
	if c.IsSet("timeout") {
		s.timeout = c.Duration("timeout")
	}
	if c.IsSet("strategy") {
		s.strategy = c.String("strategy")
	}
	if c.Bool("verbose") {
		s.logLevel = "debug"
	}

	if s.transport == "" {
		s.transport = config.TransportHID
	}
	if s.serial.Baud == 0 {
		s.serial.Baud = transport.DefaultSerialConfig("").Baud
	}
	if s.timeout <= 0 {
		s.timeout = transport.DefaultTimeout
	}
	s.serial.ReadTimeout = s.timeout

	switch s.transport {
	case config.TransportHID:
	case config.TransportSerial:
		if s.serial.Device == "" {
			return nil, fmt.Errorf("serial transport requires --serial")
		}
	default:
		return nil, fmt.Errorf("invalid transport %q (want %s or %s)", s.transport, config.TransportHID, config.TransportSerial)
	}

	s.ids, err = parseIDs(c.String("vid"), c.String("pid"))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// parseIDs requires both or neither of vid and pid.
func parseIDs(vid, pid string) (*discovery.IDs, error) {
	if vid == "" && pid == "" {
		return nil, nil
	}
	if vid == "" || pid == "" {
		return nil, fmt.Errorf("--vid and --pid must be given together")
	}

	v, err := discovery.ParseID(vid)
	if err != nil {
		return nil, fmt.Errorf("--vid: %w", err)
	}
	p, err := discovery.ParseID(pid)
	if err != nil {
		return nil, fmt.Errorf("--pid: %w", err)
	}
	return &discovery.IDs{VendorID: v, ProductID: p}, nil
}

func (s *settings) logger(env *Env) (*log.Logger, error) {
	return log.New(log.Options{
		Level:  s.logLevel,
		Format: s.logFormat,
		Output: env.Stderr,
	})
}
