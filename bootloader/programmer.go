package bootloader

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/moffa90/go-hf2/firmware"
	"github.com/moffa90/go-hf2/transport"
)

// Report summarizes a programming run.
type Report struct {
	// Capabilities are the device capabilities read at the start of the run
	Capabilities Capabilities

	// Armed is true when the device had to be switched into bootloader mode
	Armed bool

	// Segments holds one entry per synchronized segment, in image order
	Segments []SegmentReport

	// PagesTotal is the number of pages spanned by all segments
	PagesTotal int

	// PagesWritten is the number of pages transmitted
	PagesWritten int

	// PagesSkipped is the number of pages whose checksum already matched
	PagesSkipped int

	// Elapsed is the duration of the run
	Elapsed time.Duration
}

// Programmer runs a complete flashing sequence on one device.
//
// Programmer is not safe for concurrent use. A Programmer performs at most
// one run; create a new one for every device connection.
type Programmer struct {
	session *Session
	syncer  *Syncer
	config  Config
}

// New creates a new Programmer that talks to the device on port.
//
// Example:
//
//	port, _ := transport.OpenHID(0x239A, 0x0035, 0)
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(progressFunc),
//	    bootloader.WithTimeout(10*time.Second),
//	)
func New(port transport.Port, opts ...Option) *Programmer {
	if port == nil {
		panic("port cannot be nil")
	}

	cfg := newConfig(opts)
	return &Programmer{
		session: NewSession(port, opts...),
		syncer:  &Syncer{config: cfg},
		config:  cfg,
	}
}

// Session returns the session used by the programmer.
func (p *Programmer) Session() *Session {
	return p.session
}

// Program performs the complete flashing sequence:
//  1. Query device capabilities
//  2. Arm the bootloader if the device runs its application
//  3. Synchronize every segment, in order
//  4. Reset into the application
//
// Segments are pulled from the sequence one at a time. The first one is
// pulled before any exchange, so an image that fails to parse never reaches
// the device. A later extraction error aborts the run before the device is
// reset; the returned report covers the segments completed so far.
//
// Example:
//
//	data, _ := os.ReadFile("app.elf")
//	report, err := prog.Program(ctx, firmware.Segments(data))
func (p *Programmer) Program(ctx context.Context, segments iter.Seq2[firmware.Segment, error]) (*Report, error) {
	if segments == nil {
		return nil, fmt.Errorf("segments cannot be nil")
	}

	startTime := time.Now()
	report := &Report{}

	// The first segment is extracted before the device is touched, so an
	// unreadable image leaves the device as it was.
	next, stop := iter.Pull2(segments)
	defer stop()

	seg, segErr, more := next()
	if more && segErr != nil {
		return report, fmt.Errorf("extract segment 0: %w", segErr)
	}

	// Phase 1: Query capabilities
	p.config.reportProgress(Progress{Phase: PhaseQuerying})

	caps, err := p.session.QueryInfo(ctx)
	if err != nil {
		return report, fmt.Errorf("query info: %w", err)
	}
	report.Capabilities = caps

	// Phase 2: Arm bootloader
	p.config.reportProgress(Progress{Phase: PhaseArming, ElapsedTime: time.Since(startTime)})

	if err := p.session.ArmBootloader(ctx); err != nil {
		return report, fmt.Errorf("arm bootloader: %w", err)
	}
	report.Armed = p.session.State() == StateBootloaderArmed

	// Phase 3: Synchronize segments
	bytesWritten := 0
	index := 0
	for ; more; seg, segErr, more = next() {
		if segErr != nil {
			return report, fmt.Errorf("extract segment %d: %w", index, segErr)
		}

		p.syncer.config.ProgressCallback = p.segmentProgress(index, bytesWritten, startTime)

		segReport, err := p.syncer.Sync(ctx, p.session, seg)
		if err != nil {
			if segReport != nil {
				report.add(*segReport)
			}
			p.config.logError("segment sync failed",
				"segment", index,
				"address", fmt.Sprintf("0x%08X", seg.Address),
				"error", err,
			)
			return report, fmt.Errorf("sync segment %d (0x%08X): %w", index, seg.Address, err)
		}

		report.add(*segReport)
		bytesWritten += len(segReport.Written) * int(caps.PageSize)

		p.config.logDebug("segment synchronized",
			"segment", index,
			"address", fmt.Sprintf("0x%08X", seg.Address),
			"pages", segReport.Pages,
			"written", len(segReport.Written),
		)
		index++
	}

	// Phase 4: Reset into application
	p.config.reportProgress(Progress{
		Phase:        PhaseResetting,
		Segment:      index,
		BytesWritten: bytesWritten,
		ElapsedTime:  time.Since(startTime),
	})

	if err := p.session.ResetToApplication(ctx); err != nil {
		return report, fmt.Errorf("reset to application: %w", err)
	}

	report.Elapsed = time.Since(startTime)

	// Complete
	p.config.reportProgress(Progress{
		Phase:        PhaseComplete,
		Segment:      index,
		Percentage:   100,
		BytesWritten: bytesWritten,
		ElapsedTime:  report.Elapsed,
	})

	p.config.logInfo("programming complete",
		"segments", len(report.Segments),
		"pages", report.PagesTotal,
		"written", report.PagesWritten,
		"skipped", report.PagesSkipped,
		"elapsed", report.Elapsed.String(),
	)

	return report, nil
}

// segmentProgress returns a callback that stamps syncer progress with run
// wide fields before forwarding it.
func (p *Programmer) segmentProgress(index, bytesBefore int, start time.Time) ProgressCallback {
	if p.config.ProgressCallback == nil {
		return nil
	}
	return func(pr Progress) {
		pr.Segment = index
		pr.BytesWritten += bytesBefore
		pr.ElapsedTime = time.Since(start)
		p.config.ProgressCallback(pr)
	}
}

func (r *Report) add(seg SegmentReport) {
	r.Segments = append(r.Segments, seg)
	r.PagesTotal += seg.Pages
	r.PagesWritten += len(seg.Written)
	r.PagesSkipped += seg.Skipped
}
