package simulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/transport"
)

// ErrClosed is returned by a Device after Close.
var ErrClosed = errors.New("simulator: device closed")

// Config describes the simulated device.
type Config struct {
	// PageSize is the flash page size reported by BININFO
	PageSize uint32

	// NumPages is the number of flash pages
	NumPages uint32

	// MaxMessageSize is the largest message the device accepts or sends
	MaxMessageSize uint32

	// FlashBase is the address of the first flash page
	FlashBase uint32

	// Mode is the initial operating mode
	Mode protocol.Mode

	// Info is the INFO identification text
	Info string

	// FamilyID is reported by BININFO when non-zero
	FamilyID uint32
}

// DefaultConfig returns a small bootloader-mode device with 256-byte pages
// mapped at 0x08000000. Its message size limit splits a full flash checksum
// query into two requests.
func DefaultConfig() Config {
	return Config{
		PageSize:       256,
		NumPages:       256,
		MaxMessageSize: 512,
		FlashBase:      0x08000000,
		Mode:           protocol.ModeBootloader,
		Info:           "HF2 Simulator v1.0\r\nModel: go-hf2 sim\r\nBoard-ID: SIM-0",
	}
}

// Device is an in-memory HF2 device implementing transport.Port.
//
// Commands are executed when the final packet of a message is written and
// their responses are queued for Read. Reading with nothing queued returns
// transport.ErrTimeout, as a silent device would.
type Device struct {
	mu sync.Mutex

	cfg   Config
	mode  protocol.Mode
	flash []byte

	rx      protocol.Reassembler
	pending [][]byte
	closed  bool

	commands []uint32
	written  []uint32
	resets   int

	truncate   int
	failures   map[uint32]error
	statuses   map[uint32]byte
	wrongTags  map[uint32]bool
	console    [][]byte
	dropResult bool
	dropWrites bool
}

// New creates a device with erased (0xFF) flash.
func New(cfg Config) *Device {
	flash := make([]byte, int(cfg.PageSize)*int(cfg.NumPages))
	for i := range flash {
		flash[i] = 0xFF
	}

	return &Device{
		cfg:       cfg,
		mode:      cfg.Mode,
		flash:     flash,
		failures:  make(map[uint32]error),
		statuses:  make(map[uint32]byte),
		wrongTags: make(map[uint32]bool),
	}
}

// Write receives one report from the host.
func (d *Device) Write(report []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}

	msg, done, err := d.rx.Feed(report)
	if err != nil {
		return 0, err
	}
	if !done {
		return len(report), nil
	}

	if err := d.handle(msg); err != nil {
		return 0, err
	}
	return len(report), nil
}

// Read returns the next queued response report.
func (d *Device) Read(b []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrClosed
	}
	if len(d.pending) == 0 {
		return 0, transport.ErrTimeout
	}

	n := copy(b, d.pending[0])
	d.pending = d.pending[1:]
	return n, nil
}

// Close disconnects the device. Further reads and writes fail.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

// Reopen reconnects a closed device, keeping its flash contents and mode.
func (d *Device) Reopen() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = false
	d.pending = nil
	d.rx.Reset()
}

func (d *Device) handle(msg []byte) error {
	cmd, tag, data, err := protocol.ParseCommand(msg)
	if err != nil {
		return err
	}
	d.commands = append(d.commands, cmd)

	if err, ok := d.failures[cmd]; ok {
		return err
	}

	for _, text := range d.console {
		d.pending = append(d.pending, consoleReport(text))
	}
	d.console = nil

	if d.wrongTags[cmd] {
		tag++
	}

	if status, ok := d.statuses[cmd]; ok {
		d.respond(tag, status, nil)
		return nil
	}

	switch cmd {
	case protocol.CmdBinInfo:
		d.respond(tag, protocol.StatusOK, d.binInfo())

	case protocol.CmdInfo:
		d.respond(tag, protocol.StatusOK, []byte(d.cfg.Info))

	case protocol.CmdStartFlash:
		d.mode = protocol.ModeBootloader
		d.respond(tag, protocol.StatusOK, nil)

	case protocol.CmdResetIntoApp:
		d.mode = protocol.ModeApplication
		d.resets++

	case protocol.CmdChksumPages:
		d.checksumPages(tag, data)

	case protocol.CmdWriteFlashPage:
		if d.cfg.MaxMessageSize > 0 && uint32(len(msg)) > d.cfg.MaxMessageSize {
			d.respond(tag, protocol.StatusExecError, nil)
			return nil
		}
		d.writePage(tag, data)

	case protocol.CmdReadWords:
		d.readWords(tag, data)

	default:
		d.respond(tag, protocol.StatusInvalidCommand, nil)
	}

	return nil
}

func (d *Device) binInfo() []byte {
	data := make([]byte, 0, protocol.BinInfoFamilyResponseSize)
	data = binary.LittleEndian.AppendUint32(data, uint32(d.mode))
	data = binary.LittleEndian.AppendUint32(data, d.cfg.PageSize)
	data = binary.LittleEndian.AppendUint32(data, d.cfg.NumPages)
	data = binary.LittleEndian.AppendUint32(data, d.cfg.MaxMessageSize)
	if d.cfg.FamilyID != 0 {
		data = binary.LittleEndian.AppendUint32(data, d.cfg.FamilyID)
	}
	return data
}

func (d *Device) checksumPages(tag uint16, data []byte) {
	if len(data) != 8 {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}
	addr := binary.LittleEndian.Uint32(data[0:4])
	numPages := binary.LittleEndian.Uint32(data[4:8])

	off, ok := d.offset(addr, uint64(numPages)*uint64(d.cfg.PageSize))
	if !ok || protocol.ResponseHeaderSize+uint64(numPages)*protocol.ChecksumSize > uint64(d.cfg.MaxMessageSize) {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}

	reply := make([]byte, 0, numPages*protocol.ChecksumSize)
	for i := uint32(0); i < numPages; i++ {
		page := d.flash[off+int(i*d.cfg.PageSize) : off+int((i+1)*d.cfg.PageSize)]
		reply = binary.LittleEndian.AppendUint16(reply, protocol.PageChecksum(page))
	}

	if d.truncate > 0 {
		drop := d.truncate * protocol.ChecksumSize
		if drop > len(reply) {
			drop = len(reply)
		}
		reply = reply[:len(reply)-drop]
	}

	d.respond(tag, protocol.StatusOK, reply)
}

func (d *Device) writePage(tag uint16, data []byte) {
	if d.mode != protocol.ModeBootloader || len(data) < 4 {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}
	addr := binary.LittleEndian.Uint32(data[0:4])
	page := data[4:]

	off, ok := d.offset(addr, uint64(len(page)))
	if !ok || uint32(len(page)) != d.cfg.PageSize || (addr-d.cfg.FlashBase)%d.cfg.PageSize != 0 {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}

	if !d.dropWrites {
		copy(d.flash[off:], page)
	}
	d.written = append(d.written, addr)
	d.respond(tag, protocol.StatusOK, nil)
}

func (d *Device) readWords(tag uint16, data []byte) {
	if len(data) != 8 {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}
	addr := binary.LittleEndian.Uint32(data[0:4])
	numWords := binary.LittleEndian.Uint32(data[4:8])

	off, ok := d.offset(addr, uint64(numWords)*protocol.WordSize)
	if !ok || protocol.ResponseHeaderSize+uint64(numWords)*protocol.WordSize > uint64(d.cfg.MaxMessageSize) {
		d.respond(tag, protocol.StatusExecError, nil)
		return
	}

	d.respond(tag, protocol.StatusOK, d.flash[off:off+int(numWords)*protocol.WordSize])
}

// offset maps a device address range to a flash slice offset.
func (d *Device) offset(addr uint32, length uint64) (int, bool) {
	if addr < d.cfg.FlashBase {
		return 0, false
	}
	off := uint64(addr - d.cfg.FlashBase)
	if off+length > uint64(len(d.flash)) {
		return 0, false
	}
	return int(off), true
}

func (d *Device) respond(tag uint16, status byte, data []byte) {
	if d.dropResult {
		return
	}
	msg := protocol.BuildResponse(tag, status, 0, data)
	d.pending = append(d.pending, protocol.EncodePackets(msg)...)
}

func consoleReport(text []byte) []byte {
	report := make([]byte, protocol.ReportSize)
	n := copy(report[1:], text)
	report[0] = protocol.PacketStdout | byte(n)
	return report
}

// Mode returns the current operating mode.
func (d *Device) Mode() protocol.Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// Commands returns the command identifiers received so far, in order.
func (d *Device) Commands() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.commands...)
}

// CommandCount returns how many times cmd was received.
func (d *Device) CommandCount(cmd uint32) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, c := range d.commands {
		if c == cmd {
			count++
		}
	}
	return count
}

// WrittenPages returns the addresses of pages written so far, in order.
func (d *Device) WrittenPages() []uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]uint32(nil), d.written...)
}

// Resets returns how many RESET_INTO_APP commands were executed.
func (d *Device) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}

// ClearLog forgets recorded commands and page writes.
func (d *Device) ClearLog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commands = nil
	d.written = nil
}

// SetMode changes the operating mode, as a manual reset would.
func (d *Device) SetMode(mode protocol.Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mode = mode
}

// Flash returns a copy of length bytes of flash at addr.
func (d *Device) Flash(addr uint32, length int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, ok := d.offset(addr, uint64(length))
	if !ok {
		return nil, fmt.Errorf("range 0x%08X+%d outside flash", addr, length)
	}
	return append([]byte(nil), d.flash[off:off+length]...), nil
}

// Load writes data into flash directly, bypassing the protocol.
func (d *Device) Load(addr uint32, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, ok := d.offset(addr, uint64(len(data)))
	if !ok {
		return fmt.Errorf("range 0x%08X+%d outside flash", addr, len(data))
	}
	copy(d.flash[off:], data)
	return nil
}

// Corrupt inverts the flash byte at addr.
func (d *Device) Corrupt(addr uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	off, ok := d.offset(addr, 1)
	if !ok {
		return fmt.Errorf("address 0x%08X outside flash", addr)
	}
	d.flash[off] ^= 0xFF
	return nil
}

// TruncateChecksums makes CHKSUM_PAGES replies n entries short.
func (d *Device) TruncateChecksums(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.truncate = n
}

// FailCommand makes the transport fail with err when cmd is sent.
// A nil err removes the fault.
func (d *Device) FailCommand(cmd uint32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failures, cmd)
		return
	}
	d.failures[cmd] = err
}

// SetStatus makes the device answer cmd with status and no data.
func (d *Device) SetStatus(cmd uint32, status byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[cmd] = status
}

// WrongTag makes the device answer cmd with a tag the host did not send.
func (d *Device) WrongTag(cmd uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wrongTags[cmd] = true
}

// Silence stops the device from answering any command.
func (d *Device) Silence(silent bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropResult = silent
}

// DropWrites makes the device acknowledge page writes without storing them,
// like worn flash would.
func (d *Device) DropWrites(drop bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropWrites = drop
}

// Print queues serial output to be sent ahead of the next response.
func (d *Device) Print(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(text) > 0 {
		n := min(len(text), protocol.MaxPacketPayload)
		d.console = append(d.console, []byte(text[:n]))
		text = text[n:]
	}
}
