// Package simulator provides an in-memory HF2 bootloader.
//
// A Device implements transport.Port and executes BININFO, INFO,
// START_FLASH, CHKSUM_PAGES, WRITE_FLASH_PAGE, READ_WORDS and
// RESET_INTO_APP against a 0xFF-initialised flash array. It records every
// command and page write so tests can assert on the exact traffic, and it
// can inject faults:
//
//	dev := simulator.New(simulator.DefaultConfig())
//	dev.TruncateChecksums(1)                           // protocol desync
//	dev.FailCommand(protocol.CmdWriteFlashPage, err)   // transport failure
//	dev.SetStatus(protocol.CmdStartFlash, protocol.StatusExecError)
//
// The examples and the cargo-hf2 tests use it in place of real hardware.
package simulator
