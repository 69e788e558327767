package bootloader

import (
	"time"

	"github.com/moffa90/go-hf2/protocol"
)

// Config holds the session and programmer configuration.
type Config struct {
	// ProgressCallback is called during programming to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Console receives serial output the device interleaves with responses (optional)
	Console protocol.ConsoleFunc

	// Timeout bounds a single command/response exchange
	Timeout time.Duration

	// ForceWrite writes every page, even those whose checksum already matches
	ForceWrite bool

	// VerifyAfterWrite re-reads the checksums of written pages and compares them
	VerifyAfterWrite bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:          5 * time.Second,
		ForceWrite:       false,
		VerifyAfterWrite: false,
	}
}

// Option is a functional option for configuring a Session, Syncer or Programmer.
type Option func(*Config)

// WithProgressCallback sets a callback function to track programming progress.
//
// Example:
//
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the programmer operations.
//
// Example:
//
//	prog := bootloader.New(port, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithConsole sets a function receiving device serial output.
//
// Example:
//
//	prog := bootloader.New(port, bootloader.WithConsole(func(stderr bool, text []byte) {
//	    os.Stdout.Write(text)
//	}))
func WithConsole(console protocol.ConsoleFunc) Option {
	return func(c *Config) {
		c.Console = console
	}
}

// WithTimeout sets the per-exchange timeout.
// Non-positive values are ignored.
//
// Example:
//
//	prog := bootloader.New(port, bootloader.WithTimeout(10*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.Timeout = timeout
		}
	}
}

// WithForceWrite disables checksum comparison so that every page is written.
// Default is false.
//
// Example:
//
//	prog := bootloader.New(port, bootloader.WithForceWrite(true))
func WithForceWrite(force bool) Option {
	return func(c *Config) {
		c.ForceWrite = force
	}
}

// WithVerifyAfterWrite enables checksum verification of every written page.
// Default is false.
//
// Example:
//
//	prog := bootloader.New(port, bootloader.WithVerifyAfterWrite(true))
func WithVerifyAfterWrite(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterWrite = verify
	}
}

func newConfig(opts []Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
