package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/simulator"
	"github.com/moffa90/go-hf2/transport"
)

// fakeEnumerator serves simulator devices keyed by path.
type fakeEnumerator struct {
	infos   []DeviceInfo
	devices map[string]*simulator.Device
	opened  []string
	enumErr error
}

func newFakeEnumerator() *fakeEnumerator {
	return &fakeEnumerator{devices: make(map[string]*simulator.Device)}
}

// add registers a device. A nil sim registers a device that cannot be opened.
func (f *fakeEnumerator) add(info DeviceInfo, sim *simulator.Device) {
	f.infos = append(f.infos, info)
	if sim != nil {
		f.devices[info.Path] = sim
	}
}

func (f *fakeEnumerator) Devices() ([]DeviceInfo, error) {
	if f.enumErr != nil {
		return nil, f.enumErr
	}
	return f.infos, nil
}

func (f *fakeEnumerator) Open(info DeviceInfo) (transport.Port, error) {
	f.opened = append(f.opened, info.Path)
	sim, ok := f.devices[info.Path]
	if !ok {
		return nil, fmt.Errorf("open %s: permission denied", info.Path)
	}
	sim.Reopen()
	return sim, nil
}

func (f *fakeEnumerator) OpenIDs(ids IDs) (transport.Port, error) {
	for _, info := range f.infos {
		if info.IDs() == ids {
			return f.Open(info)
		}
	}
	return nil, errors.New("no such device")
}

func silentDevice() *simulator.Device {
	sim := simulator.New(simulator.DefaultConfig())
	sim.Silence(true)
	return sim
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{in: "0x239A", want: 0x239A},
		{in: "0X00ff", want: 0x00FF},
		{in: "9114", want: 9114},
		{in: " 42 ", want: 42},
		{in: "0xFFFF", want: 0xFFFF},
		{in: "0x10000", wantErr: true},
		{in: "65536", wantErr: true},
		{in: "239A", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseID(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = 0x%04X, want 0x%04X", tt.in, got, tt.want)
			}
		})
	}
}

func TestKnownDeviceMatches(t *testing.T) {
	tests := []struct {
		name  string
		entry KnownDevice
		info  DeviceInfo
		want  bool
	}{
		{
			name:  "any product",
			entry: KnownDevice{IDs: IDs{VendorID: 0x239A}},
			info:  DeviceInfo{VendorID: 0x239A, ProductID: 0x0035},
			want:  true,
		},
		{
			name:  "exact product",
			entry: KnownDevice{IDs: IDs{VendorID: 0x1209, ProductID: 0x0001}},
			info:  DeviceInfo{VendorID: 0x1209, ProductID: 0x0001},
			want:  true,
		},
		{
			name:  "other product",
			entry: KnownDevice{IDs: IDs{VendorID: 0x1209, ProductID: 0x0001}},
			info:  DeviceInfo{VendorID: 0x1209, ProductID: 0x0002},
		},
		{
			name:  "other vendor",
			entry: KnownDevice{IDs: IDs{VendorID: 0x239A}},
			info:  DeviceInfo{VendorID: 0x046D, ProductID: 0x0035},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Matches(tt.info); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIDsString(t *testing.T) {
	if got := (IDs{VendorID: 0x239A, ProductID: 0x35}).String(); got != "239a:0035" {
		t.Errorf("String() = %q, want %q", got, "239a:0035")
	}
}

func TestFindDeviceExplicit(t *testing.T) {
	enum := newFakeEnumerator()
	board := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "hid-1", VendorID: 0x1234, ProductID: 0x5678}, board)

	f := &Finder{Enumerator: enum, Strategy: &IdentifierTableStrategy{}}

	dev, err := f.FindDevice(context.Background(), &IDs{VendorID: 0x1234, ProductID: 0x5678})
	if err != nil {
		t.Fatalf("FindDevice() error: %v", err)
	}
	if dev.Port != board {
		t.Error("FindDevice() returned another port")
	}
	if dev.Info.IDs() != (IDs{VendorID: 0x1234, ProductID: 0x5678}) {
		t.Errorf("Info = %+v", dev.Info)
	}

	_, err = f.FindDevice(context.Background(), &IDs{VendorID: 0x1234, ProductID: 0x9999})
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestFindDeviceTable(t *testing.T) {
	enum := newFakeEnumerator()
	enum.add(DeviceInfo{Path: "keyboard", VendorID: 0x046D, ProductID: 0xC31C}, silentDevice())
	board := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "feather", VendorID: 0x239A, ProductID: 0x0035}, board)

	f := &Finder{Enumerator: enum, Strategy: &IdentifierTableStrategy{Table: DefaultTable}}

	dev, err := f.FindDevice(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindDevice() error: %v", err)
	}
	if dev.Info.Path != "feather" {
		t.Errorf("selected %q, want %q", dev.Info.Path, "feather")
	}
	if len(enum.opened) != 1 {
		t.Errorf("opened %v, want only the matching device", enum.opened)
	}
}

func TestFindDeviceProbe(t *testing.T) {
	enum := newFakeEnumerator()
	enum.add(DeviceInfo{Path: "locked"}, nil)
	mouse := silentDevice()
	enum.add(DeviceInfo{Path: "mouse", VendorID: 0x046D, ProductID: 0xC077}, mouse)
	board := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "custom", VendorID: 0x1209, ProductID: 0x7777}, board)

	f := &Finder{Enumerator: enum, Strategy: &ProbeStrategy{Timeout: time.Second}}

	dev, err := f.FindDevice(context.Background(), nil)
	if err != nil {
		t.Fatalf("FindDevice() error: %v", err)
	}
	if dev.Info.Path != "custom" {
		t.Errorf("selected %q, want %q", dev.Info.Path, "custom")
	}
	if got := strings.Join(enum.opened, ","); got != "locked,mouse,custom" {
		t.Errorf("probe order = %s", got)
	}

	// Rejected candidates are closed again.
	if _, err := mouse.Read(make([]byte, 64)); !errors.Is(err, simulator.ErrClosed) {
		t.Errorf("probed non-HF2 device read error = %v, want ErrClosed", err)
	}

	// The probe leaves the session free for flashing.
	if board.CommandCount(protocol.CmdInfo) != 1 {
		t.Errorf("INFO sent %d times, want 1", board.CommandCount(protocol.CmdInfo))
	}
}

func TestFindDeviceNotFound(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
	}{
		{name: "table", strategy: &IdentifierTableStrategy{Table: DefaultTable}},
		{name: "probe", strategy: &ProbeStrategy{Timeout: time.Second}},
		{name: "chain", strategy: ChainStrategy{&IdentifierTableStrategy{Table: DefaultTable}, &ProbeStrategy{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enum := newFakeEnumerator()
			enum.add(DeviceInfo{Path: "keyboard", VendorID: 0x046D, ProductID: 0xC31C}, silentDevice())

			f := &Finder{Enumerator: enum, Strategy: tt.strategy}
			if _, err := f.FindDevice(context.Background(), nil); !errors.Is(err, ErrDeviceNotFound) {
				t.Errorf("error = %v, want ErrDeviceNotFound", err)
			}
		})
	}
}

func TestFindDeviceEmpty(t *testing.T) {
	f := &Finder{Enumerator: newFakeEnumerator()}
	if _, err := f.FindDevice(context.Background(), nil); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
}

func TestFindDeviceEnumerationError(t *testing.T) {
	enum := newFakeEnumerator()
	enum.enumErr = errors.New("hidapi unavailable")

	f := &Finder{Enumerator: enum}
	_, err := f.FindDevice(context.Background(), nil)
	if err == nil || errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("error = %v, want enumeration failure", err)
	}
}

func TestChainStrategyPrefersTable(t *testing.T) {
	enum := newFakeEnumerator()
	other := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "custom", VendorID: 0x1209, ProductID: 0x7777}, other)
	board := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "feather", VendorID: 0x239A, ProductID: 0x0035}, board)

	strategy, err := StrategyFromName(StrategyTableProbe, DefaultTable, time.Second, nil)
	if err != nil {
		t.Fatalf("StrategyFromName() error: %v", err)
	}

	dev, err := strategy.Select(context.Background(), enum, enum.infos)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if dev.Info.Path != "feather" {
		t.Errorf("selected %q, want %q", dev.Info.Path, "feather")
	}
	if other.CommandCount(protocol.CmdInfo) != 0 {
		t.Error("probe ran although the table matched")
	}
}

func TestChainStrategyFallsBackToProbe(t *testing.T) {
	enum := newFakeEnumerator()
	enum.add(DeviceInfo{Path: "feather", VendorID: 0x239A, ProductID: 0x0035}, nil)
	board := simulator.New(simulator.DefaultConfig())
	enum.add(DeviceInfo{Path: "custom", VendorID: 0x1209, ProductID: 0x7777}, board)

	strategy, err := StrategyFromName(StrategyTableProbe, DefaultTable, time.Second, nil)
	if err != nil {
		t.Fatalf("StrategyFromName() error: %v", err)
	}

	dev, err := strategy.Select(context.Background(), enum, enum.infos)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if dev == nil || dev.Info.Path != "custom" {
		t.Fatalf("selected %+v, want custom", dev)
	}
	if board.CommandCount(protocol.CmdInfo) != 1 {
		t.Errorf("INFO sent %d times, want 1", board.CommandCount(protocol.CmdInfo))
	}
}

func TestChainStrategyReportsOpenFailure(t *testing.T) {
	enum := newFakeEnumerator()
	enum.add(DeviceInfo{Path: "feather", VendorID: 0x239A, ProductID: 0x0035}, nil)
	enum.add(DeviceInfo{Path: "keyboard", VendorID: 0x046D, ProductID: 0xC31C}, silentDevice())

	strategy := ChainStrategy{&IdentifierTableStrategy{Table: DefaultTable}, &ProbeStrategy{Timeout: 10 * time.Millisecond}}

	dev, err := strategy.Select(context.Background(), enum, enum.infos)
	if dev != nil {
		t.Fatalf("selected %+v, want none", dev)
	}
	if err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("error = %v, want the table open failure", err)
	}
}

func TestIdentifierTableStrategySkipsUnopenable(t *testing.T) {
	tests := []struct {
		name     string
		itsy     bool
		wantPath string
		errMsg   string
	}{
		{name: "next table match opens", itsy: true, wantPath: "itsy"},
		{name: "no table match opens", errMsg: "permission denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enum := newFakeEnumerator()
			enum.add(DeviceInfo{Path: "feather", VendorID: 0x239A, ProductID: 0x0035}, nil)
			if tt.itsy {
				enum.add(DeviceInfo{Path: "itsy", VendorID: 0x239A, ProductID: 0x0012}, simulator.New(simulator.DefaultConfig()))
			}

			s := &IdentifierTableStrategy{Table: DefaultTable}
			dev, err := s.Select(context.Background(), enum, enum.infos)

			if tt.errMsg != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %v, want substring %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if dev.Info.Path != tt.wantPath {
				t.Errorf("selected %q, want %q", dev.Info.Path, tt.wantPath)
			}
		})
	}
}

func TestProbeStrategyCancelled(t *testing.T) {
	enum := newFakeEnumerator()
	enum.add(DeviceInfo{Path: "custom"}, simulator.New(simulator.DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &ProbeStrategy{Timeout: time.Second}
	if _, err := s.Select(ctx, enum, enum.infos); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestStrategyFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "table", want: "*discovery.IdentifierTableStrategy"},
		{name: "probe", want: "*discovery.ProbeStrategy"},
		{name: "table+probe", want: "discovery.ChainStrategy"},
		{name: "", want: "discovery.ChainStrategy"},
		{name: "Probe", want: "*discovery.ProbeStrategy"},
		{name: "serial", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := StrategyFromName(tt.name, DefaultTable, time.Second, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fmt.Sprintf("%T", s); got != tt.want {
				t.Errorf("strategy type = %s, want %s", got, tt.want)
			}
		})
	}
}
