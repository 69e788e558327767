package bootloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moffa90/go-hf2/protocol"
	"github.com/moffa90/go-hf2/transport"
)

// State is the position of a Session in the flashing state machine.
type State int

// Session states. A session moves forward only:
//
//	Discovered -> InfoQueried -> BootloaderArmed | AlreadyBootloader
//	           -> Syncing -> Resetting -> Terminal
//
// Failed is entered from any state when an exchange fails and is final.
const (
	StateDiscovered State = iota
	StateInfoQueried
	StateBootloaderArmed
	StateAlreadyBootloader
	StateSyncing
	StateResetting
	StateTerminal
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateInfoQueried:
		return "info-queried"
	case StateBootloaderArmed:
		return "bootloader-armed"
	case StateAlreadyBootloader:
		return "already-bootloader"
	case StateSyncing:
		return "syncing"
	case StateResetting:
		return "resetting"
	case StateTerminal:
		return "terminal"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Capabilities is the flash geometry and mode reported by the device.
type Capabilities struct {
	Mode           protocol.Mode
	PageSize       uint32
	NumPages       uint32
	MaxMessageSize uint32
	FamilyID       uint32
}

// MaxChecksumPages returns how many pages one checksum query may cover.
func (c Capabilities) MaxChecksumPages() uint32 {
	return protocol.MaxChecksumPages(c.MaxMessageSize)
}

// FlashSize returns the total flash size in bytes.
func (c Capabilities) FlashSize() uint64 {
	return uint64(c.PageSize) * uint64(c.NumPages)
}

// Validate checks that the capabilities allow page arithmetic and at least
// one checksum per query.
func (c Capabilities) Validate() error {
	switch {
	case c.PageSize == 0:
		return &CapabilitiesError{PageSize: c.PageSize, MaxMessageSize: c.MaxMessageSize, Reason: "zero flash page size"}
	case c.MaxMessageSize == 0:
		return &CapabilitiesError{PageSize: c.PageSize, MaxMessageSize: c.MaxMessageSize, Reason: "zero max message size"}
	case c.MaxChecksumPages() < 1:
		return &CapabilitiesError{PageSize: c.PageSize, MaxMessageSize: c.MaxMessageSize, Reason: "max message size too small for a checksum reply"}
	}
	return nil
}

// Session is a conversation with one HF2 device.
//
// A Session owns its port for its whole lifetime and performs strictly one
// exchange at a time. It is not safe for concurrent use and must not be
// reused after it reaches StateTerminal or StateFailed.
type Session struct {
	port   transport.Port
	config Config

	state    State
	caps     Capabilities
	haveCaps bool

	tag uint16
	rx  protocol.Reassembler
	buf []byte
}

// NewSession creates a session in StateDiscovered on port.
//
// Example:
//
//	port, _ := transport.OpenHID(0x239A, 0x0035, 0)
//	sess := bootloader.NewSession(port, bootloader.WithLogger(logger))
//	caps, err := sess.QueryInfo(ctx)
func NewSession(port transport.Port, opts ...Option) *Session {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := newConfig(opts)
	return &Session{
		port:   port,
		config: cfg,
		state:  StateDiscovered,
		rx:     protocol.Reassembler{Console: cfg.Console},
		buf:    make([]byte, protocol.ReportSize),
	}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Capabilities returns the capabilities read by QueryInfo. The second
// result is false before QueryInfo succeeded.
func (s *Session) Capabilities() (Capabilities, bool) {
	return s.caps, s.haveCaps
}

// Close closes the underlying port.
func (s *Session) Close() error {
	return s.port.Close()
}

// QueryInfo reads the device mode and flash geometry. It must be the first
// state-changing operation of a session.
func (s *Session) QueryInfo(ctx context.Context) (Capabilities, error) {
	if err := s.require("query info", StateDiscovered); err != nil {
		return Capabilities{}, err
	}

	resp, err := s.Send(ctx, protocol.BinInfoRequest{})
	if err != nil {
		return Capabilities{}, err
	}
	info := resp.(*protocol.BinInfo)

	caps := Capabilities{
		Mode:           info.Mode,
		PageSize:       info.FlashPageSize,
		NumPages:       info.FlashNumPages,
		MaxMessageSize: info.MaxMessageSize,
		FamilyID:       info.FamilyID,
	}
	if err := caps.Validate(); err != nil {
		s.state = StateFailed
		return caps, err
	}

	s.caps = caps
	s.haveCaps = true
	s.state = StateInfoQueried

	s.config.logDebug("device capabilities",
		"mode", caps.Mode.String(),
		"page_size", caps.PageSize,
		"num_pages", caps.NumPages,
		"max_message_size", caps.MaxMessageSize,
		"family_id", fmt.Sprintf("0x%08X", caps.FamilyID),
	)

	return caps, nil
}

// ArmBootloader switches an application-mode device into bootloader mode.
// A device already in bootloader mode is left alone and no command is sent.
func (s *Session) ArmBootloader(ctx context.Context) error {
	if err := s.require("arm bootloader", StateInfoQueried); err != nil {
		return err
	}

	if s.caps.Mode == protocol.ModeBootloader {
		s.state = StateAlreadyBootloader
		s.config.logDebug("device already in bootloader mode")
		return nil
	}

	if _, err := s.Send(ctx, protocol.StartFlashRequest{}); err != nil {
		return err
	}

	s.caps.Mode = protocol.ModeBootloader
	s.state = StateBootloaderArmed
	s.config.logDebug("bootloader armed")
	return nil
}

// QueryPageChecksums returns the checksums of count pages starting at addr.
// count must be between 1 and Capabilities.MaxChecksumPages.
func (s *Session) QueryPageChecksums(ctx context.Context, addr uint32, count uint32) (protocol.ChecksumTable, error) {
	if err := s.require("query page checksums", StateBootloaderArmed, StateAlreadyBootloader, StateSyncing); err != nil {
		return nil, err
	}
	if limit := s.caps.MaxChecksumPages(); count == 0 || count > limit {
		return nil, &protocol.ProtocolError{
			Operation: "query page checksums",
			Reason:    fmt.Sprintf("page count %d outside 1..%d", count, limit),
		}
	}

	s.state = StateSyncing
	resp, err := s.Send(ctx, protocol.ChksumPagesRequest{TargetAddress: addr, NumPages: count})
	if err != nil {
		return nil, err
	}
	return resp.(protocol.ChecksumTable), nil
}

// WritePage writes one full page at addr.
func (s *Session) WritePage(ctx context.Context, addr uint32, page []byte) error {
	if err := s.require("write page", StateBootloaderArmed, StateAlreadyBootloader, StateSyncing); err != nil {
		return err
	}
	if uint32(len(page)) != s.caps.PageSize {
		return &protocol.ProtocolError{
			Operation: "write page",
			Reason:    fmt.Sprintf("got %d bytes, page size is %d", len(page), s.caps.PageSize),
		}
	}

	s.state = StateSyncing
	_, err := s.Send(ctx, protocol.WriteFlashPageRequest{TargetAddress: addr, Data: page})
	return err
}

// ResetToApplication restarts the device into its application. The device
// does not answer and may disconnect; the session is terminal afterwards.
func (s *Session) ResetToApplication(ctx context.Context) error {
	if err := s.require("reset to application",
		StateInfoQueried, StateBootloaderArmed, StateAlreadyBootloader, StateSyncing); err != nil {
		return err
	}

	s.state = StateResetting
	if _, err := s.Send(ctx, protocol.ResetIntoAppRequest{}); err != nil {
		return err
	}

	s.state = StateTerminal
	s.config.logDebug("reset into application")
	return nil
}

// Identify returns the device INFO text. It does not change the session
// state and may be used before QueryInfo.
func (s *Session) Identify(ctx context.Context) (string, error) {
	if s.state == StateFailed || s.state == StateTerminal || s.state == StateResetting {
		return "", &StateError{Operation: "identify", State: s.state}
	}

	resp, err := s.Send(ctx, protocol.InfoRequest{})
	if err != nil {
		return "", err
	}
	return string(resp.(protocol.InfoText)), nil
}

// ReadWords reads n 32-bit words of device memory starting at addr.
func (s *Session) ReadWords(ctx context.Context, addr uint32, n uint32) (protocol.Words, error) {
	if err := s.require("read words",
		StateInfoQueried, StateBootloaderArmed, StateAlreadyBootloader, StateSyncing); err != nil {
		return nil, err
	}
	if limit := (s.caps.MaxMessageSize - protocol.ResponseHeaderSize) / protocol.WordSize; n == 0 || n > limit {
		return nil, &protocol.ProtocolError{
			Operation: "read words",
			Reason:    fmt.Sprintf("word count %d outside 1..%d", n, limit),
		}
	}

	resp, err := s.Send(ctx, protocol.ReadWordsRequest{TargetAddress: addr, NumWords: n})
	if err != nil {
		return nil, err
	}
	return resp.(protocol.Words), nil
}

// Send performs one command/response exchange and returns the decoded
// response. Requests that expect no reply return protocol.Ack after the
// command was written.
//
// Transport and protocol failures of an exchange move the session to
// StateFailed. A request rejected before anything is written, such as a
// message larger than the device accepts, leaves the state as it was.
//
// Cancellation of ctx is checked before the exchange starts; an exchange in
// progress runs to completion or timeout.
func (s *Session) Send(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	if s.state == StateFailed || s.state == StateTerminal {
		return nil, &StateError{Operation: requestName(req), State: s.state}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.tag++
	tag := s.tag
	msg, err := protocol.BuildCommand(req, tag)
	if err != nil {
		return nil, err
	}

	if s.haveCaps && uint32(len(msg)) > s.caps.MaxMessageSize {
		return nil, &protocol.ProtocolError{
			Operation: req.Name(),
			Reason:    fmt.Sprintf("message of %d bytes exceeds device limit of %d", len(msg), s.caps.MaxMessageSize),
		}
	}

	s.config.logDebug("hf2 command",
		"command", fmt.Sprintf("0x%04X", req.Command()),
		"name", req.Name(),
		"tag", tag,
		"length", len(msg),
	)

	for _, report := range protocol.EncodePackets(msg) {
		if _, err := s.port.Write(report); err != nil {
			return nil, s.fail(&TransportError{Operation: req.Name(), Err: err})
		}
	}

	if !protocol.ExpectsResponse(req) {
		return protocol.Ack{}, nil
	}

	resp, err := s.receive(req.Name())
	if err != nil {
		return nil, s.fail(err)
	}

	respTag, status, statusInfo, data, err := protocol.ParseResponse(resp)
	if err != nil {
		return nil, s.fail(&protocol.ProtocolError{Operation: req.Name(), Reason: err.Error()})
	}
	if respTag != tag {
		return nil, s.fail(&protocol.ProtocolError{
			Operation: req.Name(),
			Reason:    fmt.Sprintf("tag mismatch: sent 0x%04X, received 0x%04X", tag, respTag),
		})
	}
	if status != protocol.StatusOK {
		return nil, s.fail(&protocol.ProtocolError{
			Operation:  req.Name(),
			StatusCode: status,
			StatusInfo: statusInfo,
		})
	}

	decoded, err := protocol.DecodeResponse(req, data)
	if err != nil {
		return nil, s.fail(err)
	}
	return decoded, nil
}

// receive reads reports until a complete message arrived.
func (s *Session) receive(operation string) ([]byte, error) {
	deadline := time.Now().Add(s.config.Timeout)
	s.rx.Reset()

	for {
		if time.Now().After(deadline) {
			return nil, &TransportError{Operation: operation, Err: transport.ErrTimeout}
		}

		n, err := s.port.Read(s.buf)
		if err != nil {
			return nil, &TransportError{Operation: operation, Err: err}
		}

		msg, done, err := s.rx.Feed(s.buf[:n])
		if err != nil {
			return nil, &protocol.ProtocolError{Operation: operation, Reason: err.Error()}
		}
		if done {
			return msg, nil
		}
	}
}

func (s *Session) fail(err error) error {
	s.state = StateFailed

	var te *TransportError
	if errors.As(err, &te) {
		s.config.logError("transport failure", "operation", te.Operation, "error", te.Err)
	} else {
		s.config.logError("exchange failed", "error", err)
	}
	return err
}

func (s *Session) require(operation string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return &StateError{Operation: operation, State: s.state}
}

func requestName(req protocol.Request) string {
	if req == nil {
		return "send"
	}
	return req.Name()
}
