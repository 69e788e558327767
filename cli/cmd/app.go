package cmd

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/build"
	"github.com/moffa90/go-hf2/cli/render"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NewApp returns the cargo-hf2 application. Without a subcommand it builds
// and flashes the crate.
func NewApp(env *Env) *cli.App {
	return &cli.App{
		Name:            "cargo-hf2",
		Usage:           "Build a crate and flash it to an HF2 bootloader, writing only changed pages",
		UsageText:       "cargo hf2 [options]\ncargo hf2 <command> [options]",
		Version:         Version,
		Writer:          env.Stdout,
		ErrWriter:       env.Stderr,
		HideHelpCommand: true,
		Flags:           concat(buildFlags(), flashFlags(), deviceFlags()),
		Action:          flashAction(env),
		ExitErrHandler:  ExitErrHandler(env),
		Commands: []*cli.Command{
			InfoCommand(env),
			ResetCommand(env),
			DumpCommand(env),
			DevicesCommand(env),
		},
	}
}

// StripSubcommand removes the "hf2" argument cargo inserts when running
// `cargo hf2`.
func StripSubcommand(args []string) []string {
	if len(args) > 1 && args[1] == "hf2" {
		out := make([]string, 0, len(args)-1)
		out = append(out, args[0])
		return append(out, args[2:]...)
	}
	return args
}

// ExitCode maps an error to the process exit status: a failed build exits
// with cargo's status, other errors with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var buildErr *build.BuildFailedError
	if errors.As(err, &buildErr) {
		return buildErr.ExitCode
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}
	return 1
}

// ExitErrHandler prints err and exits with ExitCode(err). Build failures
// are not printed; cargo already reported them.
func ExitErrHandler(env *Env) cli.ExitErrHandlerFunc {
	return func(c *cli.Context, err error) {
		if err == nil {
			return
		}

		code := ExitCode(err)
		if !errors.Is(err, build.ErrBuildFailed) {
			msg := err.Error()
			if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
				noColor := c != nil && c.Bool("no-color")
				render.NewPrinter(env.Stderr, noColor).Error(err)
			}
		}

		if env.Exit != nil {
			env.Exit(code)
		}
	}
}
