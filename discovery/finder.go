package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/moffa90/go-hf2/bootloader"
)

// ErrDeviceNotFound is returned when no matching or responsive device exists.
var ErrDeviceNotFound = errors.New("device not found")

// Finder locates the device to flash.
type Finder struct {
	Enumerator Enumerator
	Strategy   Strategy

	// Logger is used for logging discovery (optional)
	Logger bootloader.Logger
}

// FindDevice opens the device to flash.
//
// With explicit identifiers the device is opened directly. Otherwise the
// visible devices are enumerated and handed to the strategy. The returned
// port must be closed by the caller.
//
// Example:
//
//	f := &discovery.Finder{
//	    Enumerator: &discovery.HIDEnumerator{},
//	    Strategy:   discovery.ChainStrategy{table, probe},
//	}
//	dev, err := f.FindDevice(ctx, nil)
func (f *Finder) FindDevice(ctx context.Context, explicit *IDs) (*Device, error) {
	if explicit != nil {
		port, err := f.Enumerator.OpenIDs(*explicit)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, explicit, err)
		}
		f.logDebug("opened device", "ids", explicit.String())
		return &Device{Info: DeviceInfo{VendorID: explicit.VendorID, ProductID: explicit.ProductID, Interface: -1}, Port: port}, nil
	}

	candidates, err := f.Enumerator.Devices()
	if err != nil {
		return nil, err
	}
	f.logDebug("enumerated devices", "count", len(candidates))

	strategy := f.Strategy
	if strategy == nil {
		strategy = &IdentifierTableStrategy{Table: DefaultTable}
	}

	dev, err := strategy.Select(ctx, f.Enumerator, candidates)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fmt.Errorf("%w: no device among %d candidates matched", ErrDeviceNotFound, len(candidates))
	}

	f.logDebug("selected device", "device", dev.Info.String())
	return dev, nil
}

func (f *Finder) logDebug(msg string, kv ...interface{}) {
	if f.Logger != nil {
		f.Logger.Debug(msg, kv...)
	}
}
