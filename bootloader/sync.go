package bootloader

import (
	"context"
	"fmt"

	"github.com/moffa90/go-hf2/firmware"
	"github.com/moffa90/go-hf2/protocol"
)

// Plan is the outcome of comparing a segment against device flash.
type Plan struct {
	// Address is the target address of the first page
	Address uint32

	// PageSize is the device flash page size
	PageSize uint32

	// Padded is the segment data zero-padded to a page multiple
	Padded []byte

	// Local holds the host computed checksum of every page
	Local []uint16

	// Device holds the device reported checksum of every page
	Device protocol.ChecksumTable

	// Writes lists the indices of pages that must be written, ascending
	Writes []int

	// Queries is the number of checksum requests issued
	Queries int
}

// Pages returns the number of pages covered by the plan.
func (p *Plan) Pages() int {
	return len(p.Local)
}

// PageAddress returns the device address of page i.
func (p *Plan) PageAddress(i int) uint32 {
	return p.Address + uint32(i)*p.PageSize
}

// Page returns the padded bytes of page i.
func (p *Plan) Page(i int) []byte {
	off := i * int(p.PageSize)
	return p.Padded[off : off+int(p.PageSize)]
}

// SegmentReport summarizes the synchronization of one segment.
type SegmentReport struct {
	// Address is the segment target address
	Address uint32

	// Pages is the number of pages the padded segment spans
	Pages int

	// Written holds the addresses of the pages that were written
	Written []uint32

	// Skipped is the number of pages whose checksum already matched
	Skipped int

	// Queries is the number of checksum requests issued
	Queries int
}

// Syncer writes segments to a device, transmitting only the pages whose
// checksum differs from what the device already holds.
//
// A Syncer holds no per-device state and may be used for several sessions
// one after another.
type Syncer struct {
	config Config
}

// NewSyncer creates a Syncer.
//
// Example:
//
//	syncer := bootloader.NewSyncer(bootloader.WithVerifyAfterWrite(true))
//	report, err := syncer.Sync(ctx, sess, seg)
func NewSyncer(opts ...Option) *Syncer {
	return &Syncer{config: newConfig(opts)}
}

// Plan pads the segment, reads the device checksums of the pages it spans
// and determines which pages differ. It never writes.
//
// Checksums are requested in chunks of at most Capabilities.MaxChecksumPages
// pages. The concatenated table must have exactly one entry per page, or a
// protocol.ProtocolError is returned.
func (s *Syncer) Plan(ctx context.Context, sess *Session, seg firmware.Segment) (*Plan, error) {
	caps, ok := sess.Capabilities()
	if !ok {
		return nil, &StateError{Operation: "plan", State: sess.State()}
	}
	if err := caps.Validate(); err != nil {
		return nil, err
	}

	padded := firmware.Pad(seg.Data, caps.PageSize)
	if uint64(seg.Address)+uint64(len(padded)) > 1<<32 {
		return nil, fmt.Errorf("%w: segment at 0x%08X with %d padded bytes exceeds the 32-bit address space",
			firmware.ErrMalformedImage, seg.Address, len(padded))
	}

	n := len(padded) / int(caps.PageSize)
	plan := &Plan{
		Address:  seg.Address,
		PageSize: caps.PageSize,
		Padded:   padded,
		Local:    make([]uint16, n),
		Device:   make(protocol.ChecksumTable, 0, n),
	}

	chunk := int(caps.MaxChecksumPages())
	for start := 0; start < n; start += chunk {
		count := min(chunk, n-start)

		s.config.reportProgress(Progress{
			Phase:       PhaseChecksumming,
			Address:     seg.Address,
			CurrentPage: start,
			TotalPages:  n,
			Percentage:  percent(start, n),
		})

		table, err := sess.QueryPageChecksums(ctx, plan.PageAddress(start), uint32(count))
		if err != nil {
			return nil, fmt.Errorf("checksum pages at 0x%08X: %w", plan.PageAddress(start), err)
		}
		plan.Device = append(plan.Device, table...)
		plan.Queries++
	}

	if len(plan.Device) != n {
		return nil, &protocol.ProtocolError{
			Operation: "checksum pages",
			Reason:    fmt.Sprintf("checksum table has %d entries, segment spans %d pages", len(plan.Device), n),
		}
	}

	for i := 0; i < n; i++ {
		plan.Local[i] = protocol.PageChecksum(plan.Page(i))
		if s.config.ForceWrite || plan.Local[i] != plan.Device[i] {
			plan.Writes = append(plan.Writes, i)
		}
	}

	s.config.logDebug("segment plan",
		"address", fmt.Sprintf("0x%08X", seg.Address),
		"pages", n,
		"writes", len(plan.Writes),
		"queries", plan.Queries,
	)

	return plan, nil
}

// Sync brings the device flash covered by seg in line with seg.
//
// Pages are written in ascending address order, one exchange at a time. The
// first failure aborts the segment; pages written before it stay written and
// a later Sync of the same segment picks up where this one stopped.
func (s *Syncer) Sync(ctx context.Context, sess *Session, seg firmware.Segment) (*SegmentReport, error) {
	plan, err := s.Plan(ctx, sess, seg)
	if err != nil {
		return nil, err
	}

	report := &SegmentReport{
		Address: seg.Address,
		Pages:   plan.Pages(),
		Skipped: plan.Pages() - len(plan.Writes),
		Queries: plan.Queries,
	}

	for i, page := range plan.Writes {
		addr := plan.PageAddress(page)
		if err := sess.WritePage(ctx, addr, plan.Page(page)); err != nil {
			return report, fmt.Errorf("write page 0x%08X: %w", addr, err)
		}
		report.Written = append(report.Written, addr)

		s.config.reportProgress(Progress{
			Phase:        PhaseWriting,
			Address:      seg.Address,
			CurrentPage:  i + 1,
			TotalPages:   len(plan.Writes),
			PagesWritten: i + 1,
			Percentage:   percent(i+1, len(plan.Writes)),
			BytesWritten: (i + 1) * int(plan.PageSize),
		})
	}

	if s.config.VerifyAfterWrite && len(plan.Writes) > 0 {
		if err := s.verify(ctx, sess, plan); err != nil {
			return report, err
		}
	}

	return report, nil
}

// verify re-reads the checksums of every written page.
func (s *Syncer) verify(ctx context.Context, sess *Session, plan *Plan) error {
	s.config.reportProgress(Progress{
		Phase:      PhaseVerifying,
		Address:    plan.Address,
		TotalPages: len(plan.Writes),
	})

	for _, page := range plan.Writes {
		addr := plan.PageAddress(page)
		table, err := sess.QueryPageChecksums(ctx, addr, 1)
		if err != nil {
			return fmt.Errorf("verify page 0x%08X: %w", addr, err)
		}
		if table[0] != plan.Local[page] {
			return &ChecksumMismatchError{Address: addr, Expected: plan.Local[page], Actual: table[0]}
		}
	}
	return nil
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
