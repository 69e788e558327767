package render

import (
	"fmt"
	"io"

	"github.com/cheggaaa/pb"

	"github.com/moffa90/go-hf2/bootloader"
)

// Progress renders page writes as a progress bar, one bar per segment.
// A disabled Progress only counts pages.
type Progress struct {
	out     io.Writer
	enabled bool

	bar     *pb.ProgressBar
	segment int
	written int
}

// NewProgress creates a progress renderer on w.
func NewProgress(w io.Writer, enabled bool) *Progress {
	return &Progress{out: w, enabled: enabled, segment: -1}
}

// Callback returns the bootloader progress callback feeding the bar.
func (p *Progress) Callback() bootloader.ProgressCallback {
	return p.update
}

// Written returns the number of pages reported written.
func (p *Progress) Written() int {
	return p.written
}

func (p *Progress) update(pr bootloader.Progress) {
	switch pr.Phase {
	case bootloader.PhaseWriting:
		if pr.Segment != p.segment {
			p.Finish()
			p.segment = pr.Segment
			p.start(pr)
		}
		p.written++
		if p.bar != nil {
			p.bar.Set(pr.CurrentPage)
		}
	case bootloader.PhaseVerifying, bootloader.PhaseResetting, bootloader.PhaseComplete:
		p.Finish()
	}
}

func (p *Progress) start(pr bootloader.Progress) {
	if !p.enabled {
		return
	}

	bar := pb.New(pr.TotalPages)
	bar.Output = p.out
	bar.ShowSpeed = false
	bar.ShowTimeLeft = false
	bar.SetMaxWidth(80)
	bar.Prefix(fmt.Sprintf("0x%08X ", pr.Address))
	p.bar = bar.Start()
}

// Finish completes the current bar.
func (p *Progress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
