package cmd

import (
	"context"
	"fmt"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/config"
	"github.com/moffa90/go-hf2/discovery"
	"github.com/moffa90/go-hf2/log"
	"github.com/moffa90/go-hf2/protocol"
)

// openDevice connects to the device selected by s.
func openDevice(ctx context.Context, env *Env, s *settings, logger *log.Logger) (*discovery.Device, error) {
	if s.transport == config.TransportSerial {
		port, err := env.OpenSerial(&s.serial)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", discovery.ErrDeviceNotFound, err)
		}
		logger.Debug("opened serial device", "device", s.serial.Device, "baud", s.serial.Baud)
		return &discovery.Device{Info: discovery.DeviceInfo{Path: s.serial.Device, Interface: -1}, Port: port}, nil
	}

	enum, err := hidEnumerator(env, s)
	if err != nil {
		return nil, err
	}

	strategy, err := discovery.StrategyFromName(s.strategy, s.table, s.timeout, logger)
	if err != nil {
		return nil, err
	}

	finder := &discovery.Finder{Enumerator: enum, Strategy: strategy, Logger: logger}
	return finder.FindDevice(ctx, s.ids)
}

func hidEnumerator(env *Env, s *settings) (discovery.Enumerator, error) {
	if env.InitHID != nil {
		if err := env.InitHID(); err != nil {
			return nil, fmt.Errorf("initialize HID: %w", err)
		}
	}
	if h, ok := env.Enumerator.(*discovery.HIDEnumerator); ok {
		h.Timeout = s.timeout
	}
	return env.Enumerator, nil
}

// sessionOptions are shared by every command talking to a device.
func sessionOptions(env *Env, s *settings, logger *log.Logger) []bootloader.Option {
	return []bootloader.Option{
		bootloader.WithTimeout(s.timeout),
		bootloader.WithLogger(logger),
		bootloader.WithConsole(consoleWriter(env)),
	}
}

// consoleWriter forwards device serial output to stderr.
func consoleWriter(env *Env) protocol.ConsoleFunc {
	return func(stderr bool, text []byte) {
		_, _ = env.Stderr.Write(text)
	}
}
