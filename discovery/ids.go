package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// IDs is a USB vendor/product identifier pair.
type IDs struct {
	VendorID  uint16
	ProductID uint16
}

// String formats the pair as vvvv:pppp in hexadecimal.
func (ids IDs) String() string {
	return fmt.Sprintf("%04x:%04x", ids.VendorID, ids.ProductID)
}

// ParseID parses a 16-bit USB identifier. A "0x" prefix selects
// hexadecimal, otherwise the value is decimal.
//
// Example:
//
//	vid, _ := discovery.ParseID("0x239A") // 0x239A
//	pid, _ := discovery.ParseID("53")     // 0x0035
func ParseID(s string) (uint16, error) {
	s = strings.TrimSpace(s)

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}

	v, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid USB identifier %q: %w", s, err)
	}
	return uint16(v), nil
}

// KnownDevice is an entry of an identifier table.
type KnownDevice struct {
	IDs

	// Name describes the board family
	Name string
}

// Matches reports whether info has this entry's vendor ID and, unless the
// entry's ProductID is zero, its product ID.
func (k KnownDevice) Matches(info DeviceInfo) bool {
	if info.VendorID != k.VendorID {
		return false
	}
	return k.ProductID == 0 || info.ProductID == k.ProductID
}

// DefaultTable lists vendors whose HID bootloaders speak HF2.
var DefaultTable = []KnownDevice{
	{IDs: IDs{VendorID: 0x239A}, Name: "Adafruit UF2 bootloader"},
}
