package bootloader

import "time"

// Programming phases reported in Progress.Phase.
const (
	PhaseQuerying     = "querying"
	PhaseArming       = "arming"
	PhaseChecksumming = "checksumming"
	PhaseWriting      = "writing"
	PhaseVerifying    = "verifying"
	PhaseResetting    = "resetting"
	PhaseComplete     = "complete"
)

// Progress contains information about the programming progress.
// Passed to ProgressCallback during programming operations.
type Progress struct {
	// Phase describes the current operation phase:
	//   "querying"     - Reading device capabilities
	//   "arming"       - Switching the device into bootloader mode
	//   "checksumming" - Reading device page checksums
	//   "writing"      - Writing changed pages
	//   "verifying"    - Re-reading checksums of written pages
	//   "resetting"    - Restarting into the application
	//   "complete"     - Operation completed successfully
	Phase string

	// Segment is the index of the segment being synchronized (0-based)
	Segment int

	// Address is the target address of the current segment
	Address uint32

	// CurrentPage is the number of pages of the segment processed so far
	CurrentPage int

	// TotalPages is the number of pages in the current segment
	TotalPages int

	// PagesWritten is the number of pages written in the current segment
	PagesWritten int

	// Percentage is the completion percentage of the current segment (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the total number of bytes written so far
	BytesWritten int

	// ElapsedTime is the time elapsed since programming started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during programming to report progress.
// Implementations should return quickly to avoid blocking the programming operation.
//
// Example:
//
//	prog := bootloader.New(port,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Page %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentPage, p.TotalPages)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the programmer.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	prog := bootloader.New(port, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// reportProgress calls the progress callback if configured.
func (c *Config) reportProgress(progress Progress) {
	if c.ProgressCallback != nil {
		c.ProgressCallback(progress)
	}
}

func (c *Config) logDebug(msg string, kv ...interface{}) {
	if c.Logger != nil {
		c.Logger.Debug(msg, kv...)
	}
}

func (c *Config) logInfo(msg string, kv ...interface{}) {
	if c.Logger != nil {
		c.Logger.Info(msg, kv...)
	}
}

func (c *Config) logError(msg string, kv ...interface{}) {
	if c.Logger != nil {
		c.Logger.Error(msg, kv...)
	}
}
