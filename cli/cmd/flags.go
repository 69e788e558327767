package cmd

import "github.com/urfave/cli/v2"

// buildFlags mirror the cargo build options understood by the flasher.
func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "bin", Usage: "Flash the specified binary"},
		&cli.StringFlag{Name: "example", Usage: "Flash the specified example"},
		&cli.StringFlag{Name: "package", Aliases: []string{"p"}, Usage: "Package to build"},
		&cli.BoolFlag{Name: "release", Usage: "Build artifacts in release mode"},
		&cli.StringFlag{Name: "target", Usage: "Target triple to build for"},
		&cli.StringFlag{Name: "manifest-path", Usage: "Path to Cargo.toml"},
		&cli.StringSliceFlag{Name: "features", Usage: "Features to activate (comma separated or repeated)"},
		&cli.BoolFlag{Name: "all-features", Usage: "Activate all available features"},
		&cli.BoolFlag{Name: "no-default-features", Usage: "Do not activate the default feature"},
		&cli.StringFlag{Name: "file", Usage: "Flash an existing ELF or Intel HEX image instead of building"},
	}
}

// flashFlags control the synchronization.
func flashFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "Write every page, even unchanged ones"},
		&cli.BoolFlag{Name: "verify", Usage: "Re-read checksums of written pages"},
	}
}

// deviceFlags select and configure the device connection.
func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "vid", Usage: "USB vendor ID (0x prefix for hex)"},
		&cli.StringFlag{Name: "pid", Usage: "USB product ID (0x prefix for hex)"},
		&cli.StringFlag{Name: "transport", Usage: "Transport: hid or serial"},
		&cli.StringFlag{Name: "serial", Usage: "Serial device for the serial transport"},
		&cli.IntFlag{Name: "baud", Usage: "Serial baud rate"},
		&cli.DurationFlag{Name: "timeout", Usage: "Per-exchange timeout"},
		&cli.StringFlag{Name: "strategy", Usage: "Discovery strategy: table, probe or table+probe"},
		&cli.StringFlag{Name: "config", Usage: "Path to configuration file (default hf2.yaml if present)"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log protocol exchanges"},
		&cli.BoolFlag{Name: "no-color", Usage: "Disable colored output"},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}
