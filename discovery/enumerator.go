package discovery

import (
	"fmt"
	"time"

	"github.com/sstallion/go-hid"

	"github.com/moffa90/go-hf2/transport"
)

// DeviceInfo describes an enumerated device.
type DeviceInfo struct {
	// Path is the platform specific device path
	Path string

	VendorID  uint16
	ProductID uint16

	Serial       string
	Manufacturer string
	Product      string

	// Interface is the USB interface number (-1 when unknown)
	Interface int
}

// IDs returns the vendor/product pair of the device.
func (d DeviceInfo) IDs() IDs {
	return IDs{VendorID: d.VendorID, ProductID: d.ProductID}
}

// String returns a one-line description.
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s %q %q", d.IDs(), d.Manufacturer, d.Product)
}

// Enumerator lists and opens devices.
type Enumerator interface {
	// Devices returns the visible devices
	Devices() ([]DeviceInfo, error)

	// Open opens an enumerated device
	Open(info DeviceInfo) (transport.Port, error)

	// OpenIDs opens the first device with the given identifiers
	OpenIDs(ids IDs) (transport.Port, error)
}

// HIDEnumerator enumerates USB HID devices. transport.Init must have been
// called before use.
type HIDEnumerator struct {
	// Timeout bounds report reads on opened ports
	Timeout time.Duration
}

// Devices returns all HID devices.
func (e *HIDEnumerator) Devices() ([]DeviceInfo, error) {
	var devices []DeviceInfo
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		devices = append(devices, DeviceInfo{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Serial:       info.SerialNbr,
			Manufacturer: info.MfrStr,
			Product:      info.ProductStr,
			Interface:    info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate HID devices: %w", err)
	}
	return devices, nil
}

// Open opens the device by path.
func (e *HIDEnumerator) Open(info DeviceInfo) (transport.Port, error) {
	return transport.OpenHIDPath(info.Path, e.Timeout)
}

// OpenIDs opens the first device matching ids.
func (e *HIDEnumerator) OpenIDs(ids IDs) (transport.Port, error) {
	return transport.OpenHID(ids.VendorID, ids.ProductID, e.Timeout)
}
