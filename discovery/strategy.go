package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/transport"
)

// Device is a selected and opened device.
type Device struct {
	Info DeviceInfo
	Port transport.Port
}

// Strategy picks one device out of the enumerated candidates.
//
// Select returns (nil, nil) when no candidate qualifies. A returned Device
// has an open port owned by the caller.
type Strategy interface {
	Select(ctx context.Context, enum Enumerator, candidates []DeviceInfo) (*Device, error)
}

// IdentifierTableStrategy selects the first candidate listed in Table that
// can be opened. If matching candidates exist but none opens, Select
// returns the first open error.
type IdentifierTableStrategy struct {
	Table []KnownDevice

	// Logger receives failed open attempts (optional)
	Logger bootloader.Logger
}

// Select implements Strategy.
func (s *IdentifierTableStrategy) Select(ctx context.Context, enum Enumerator, candidates []DeviceInfo) (*Device, error) {
	var openErr error
	for _, info := range candidates {
		if _, ok := s.match(info); !ok {
			continue
		}
		port, err := enum.Open(info)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Debug("table device open failed", "device", info.String(), "error", err)
			}
			if openErr == nil {
				openErr = fmt.Errorf("open %s: %w", info, err)
			}
			continue
		}
		return &Device{Info: info, Port: port}, nil
	}
	return nil, openErr
}

func (s *IdentifierTableStrategy) match(info DeviceInfo) (KnownDevice, bool) {
	for _, k := range s.Table {
		if k.Matches(info) {
			return k, true
		}
	}
	return KnownDevice{}, false
}

// Lookup returns the table entry matching info.
func (s *IdentifierTableStrategy) Lookup(info DeviceInfo) (KnownDevice, bool) {
	return s.match(info)
}

// ProbeStrategy opens each candidate in turn and selects the first one that
// answers an HF2 INFO request.
type ProbeStrategy struct {
	// Timeout bounds the probe exchange
	Timeout time.Duration

	// Logger receives one entry per probed device (optional)
	Logger bootloader.Logger
}

// Select implements Strategy.
func (s *ProbeStrategy) Select(ctx context.Context, enum Enumerator, candidates []DeviceInfo) (*Device, error) {
	for _, info := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		port, err := enum.Open(info)
		if err != nil {
			s.log("probe open failed", "device", info.String(), "error", err)
			continue
		}

		sess := bootloader.NewSession(port, bootloader.WithTimeout(s.Timeout))
		text, err := sess.Identify(ctx)
		if err != nil {
			s.log("probe failed", "device", info.String(), "error", err)
			_ = port.Close()
			continue
		}

		s.log("probe answered", "device", info.String(), "info", firstLine(text))
		return &Device{Info: info, Port: port}, nil
	}
	return nil, nil
}

func (s *ProbeStrategy) log(msg string, kv ...interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, kv...)
	}
}

// ChainStrategy tries each strategy in order and returns the first selection.
// A strategy that fails does not stop the chain; its error is returned only
// when no later strategy selects a device. Cancellation of ctx stops the
// chain at once.
type ChainStrategy []Strategy

// Select implements Strategy.
func (c ChainStrategy) Select(ctx context.Context, enum Enumerator, candidates []DeviceInfo) (*Device, error) {
	var firstErr error
	for _, s := range c {
		dev, err := s.Select(ctx, enum, candidates)
		if dev != nil {
			return dev, nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return nil, firstErr
}

// Strategy names accepted by StrategyFromName.
const (
	StrategyTable      = "table"
	StrategyProbe      = "probe"
	StrategyTableProbe = "table+probe"
)

// StrategyFromName builds the strategy configured by name. An empty name
// selects StrategyTableProbe.
func StrategyFromName(name string, table []KnownDevice, timeout time.Duration, logger bootloader.Logger) (Strategy, error) {
	tableStrategy := &IdentifierTableStrategy{Table: table, Logger: logger}
	probeStrategy := &ProbeStrategy{Timeout: timeout, Logger: logger}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyTable:
		return tableStrategy, nil
	case StrategyProbe:
		return probeStrategy, nil
	case StrategyTableProbe, "":
		return ChainStrategy{tableStrategy, probeStrategy}, nil
	default:
		return nil, fmt.Errorf("unknown discovery strategy %q (want %s, %s or %s)",
			name, StrategyTable, StrategyProbe, StrategyTableProbe)
	}
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
