// Package cmd provides the commands of the cargo-hf2 binary.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"zappem.net/pub/debug/xxd"

	"github.com/moffa90/go-hf2/build"
	"github.com/moffa90/go-hf2/discovery"
	"github.com/moffa90/go-hf2/transport"
)

// Builder produces the firmware image for a build request.
type Builder interface {
	Build(ctx context.Context, req build.Request) (string, error)
}

// Env holds the process-level collaborators of the commands.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Interactive enables the progress bar
	Interactive bool

	Builder    Builder
	Enumerator discovery.Enumerator

	// InitHID prepares the HID library before Enumerator is used (optional)
	InitHID func() error

	OpenSerial func(cfg *transport.SerialConfig) (transport.Port, error)

	// Hexdump prints memory read by the dump command
	Hexdump func(addr int, data []byte)

	// Exit terminates the process from the exit error handler
	Exit func(code int)
}

// DefaultEnv wires the commands to the real cargo, USB HID and terminal.
func DefaultEnv() *Env {
	return &Env{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		Builder:     &build.Runner{},
		Enumerator:  &discovery.HIDEnumerator{},
		InitHID:     transport.Init,
		OpenSerial: func(cfg *transport.SerialConfig) (transport.Port, error) {
			return transport.OpenSerial(cfg)
		},
		Hexdump: xxd.Print,
		Exit:    os.Exit,
	}
}
