package protocol

import (
	"encoding/binary"
	"fmt"
)

// Request is one of the HF2 commands understood by this library.
//
// The set is closed: only the request types declared in this package
// implement it. Use DecodeResponse to turn the response data of a request
// into its typed result.
type Request interface {
	// Command returns the HF2 command identifier
	Command() uint32

	// Name returns the operation name used in errors and logs
	Name() string

	payload() ([]byte, error)
	sealed()
}

// BinInfoRequest queries the device mode and flash geometry.
type BinInfoRequest struct{}

// InfoRequest queries the device identification string.
type InfoRequest struct{}

// StartFlashRequest arms an application-mode device for flashing.
type StartFlashRequest struct{}

// ChksumPagesRequest queries the CRC16 of NumPages pages starting at TargetAddress.
type ChksumPagesRequest struct {
	TargetAddress uint32
	NumPages      uint32
}

// WriteFlashPageRequest writes Data (one full page) at TargetAddress.
type WriteFlashPageRequest struct {
	TargetAddress uint32
	Data          []byte
}

// ResetIntoAppRequest restarts the device into its application.
// The device does not answer this command.
type ResetIntoAppRequest struct{}

// ReadWordsRequest reads NumWords 32-bit words starting at TargetAddress.
type ReadWordsRequest struct {
	TargetAddress uint32
	NumWords      uint32
}

func (BinInfoRequest) Command() uint32        { return CmdBinInfo }
func (InfoRequest) Command() uint32           { return CmdInfo }
func (StartFlashRequest) Command() uint32     { return CmdStartFlash }
func (ChksumPagesRequest) Command() uint32    { return CmdChksumPages }
func (WriteFlashPageRequest) Command() uint32 { return CmdWriteFlashPage }
func (ResetIntoAppRequest) Command() uint32   { return CmdResetIntoApp }
func (ReadWordsRequest) Command() uint32      { return CmdReadWords }

func (BinInfoRequest) Name() string        { return "bin info" }
func (InfoRequest) Name() string           { return "info" }
func (StartFlashRequest) Name() string     { return "start flash" }
func (ChksumPagesRequest) Name() string    { return "checksum pages" }
func (WriteFlashPageRequest) Name() string { return "write flash page" }
func (ResetIntoAppRequest) Name() string   { return "reset into app" }
func (ReadWordsRequest) Name() string      { return "read words" }

func (BinInfoRequest) sealed()        {}
func (InfoRequest) sealed()           {}
func (StartFlashRequest) sealed()     {}
func (ChksumPagesRequest) sealed()    {}
func (WriteFlashPageRequest) sealed() {}
func (ResetIntoAppRequest) sealed()   {}
func (ReadWordsRequest) sealed()      {}

func (BinInfoRequest) payload() ([]byte, error)      { return nil, nil }
func (InfoRequest) payload() ([]byte, error)         { return nil, nil }
func (StartFlashRequest) payload() ([]byte, error)   { return nil, nil }
func (ResetIntoAppRequest) payload() ([]byte, error) { return nil, nil }

// payload encodes [TARGET_ADDR(4)][NUM_PAGES(4)].
func (r ChksumPagesRequest) payload() ([]byte, error) {
	if r.NumPages == 0 {
		return nil, fmt.Errorf("page count cannot be zero")
	}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], r.TargetAddress)
	binary.LittleEndian.PutUint32(data[4:8], r.NumPages)
	return data, nil
}

// payload encodes [TARGET_ADDR(4)][DATA...].
func (r WriteFlashPageRequest) payload() ([]byte, error) {
	if len(r.Data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	data := make([]byte, 4, 4+len(r.Data))
	binary.LittleEndian.PutUint32(data[0:4], r.TargetAddress)
	return append(data, r.Data...), nil
}

// payload encodes [TARGET_ADDR(4)][NUM_WORDS(4)].
func (r ReadWordsRequest) payload() ([]byte, error) {
	if r.NumWords == 0 {
		return nil, fmt.Errorf("word count cannot be zero")
	}
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], r.TargetAddress)
	binary.LittleEndian.PutUint32(data[4:8], r.NumWords)
	return data, nil
}

// ExpectsResponse reports whether the device answers req.
func ExpectsResponse(req Request) bool {
	switch req.(type) {
	case ResetIntoAppRequest:
		return false
	default:
		return true
	}
}

// DecodeResponse converts the data of a successful response to the typed
// result of req:
//
//	BinInfoRequest        -> *BinInfo
//	InfoRequest           -> InfoText
//	ChksumPagesRequest    -> ChecksumTable (exactly NumPages entries)
//	ReadWordsRequest      -> Words (exactly NumWords entries)
//	StartFlashRequest,
//	WriteFlashPageRequest,
//	ResetIntoAppRequest   -> Ack
func DecodeResponse(req Request, data []byte) (Response, error) {
	switch r := req.(type) {
	case BinInfoRequest:
		return ParseBinInfoResponse(data)
	case InfoRequest:
		return ParseInfoResponse(data), nil
	case ChksumPagesRequest:
		return ParseChksumPagesResponse(data, r.NumPages)
	case ReadWordsRequest:
		return ParseReadWordsResponse(data, r.NumWords)
	case StartFlashRequest, WriteFlashPageRequest, ResetIntoAppRequest:
		return Ack{}, nil
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
}
