// Package main provides the cargo-hf2 entrypoint.
//
// Usage:
//
//	cargo hf2 [--bin NAME | --example NAME] [--release] [--vid ID --pid ID]
//	cargo hf2 info | reset | dump | devices
//
// Exit codes:
//   - 0: success
//   - cargo's status: the build failed
//   - 1: any other error
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/moffa90/go-hf2/cli/cmd"
	"github.com/moffa90/go-hf2/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	env := cmd.DefaultEnv()
	err := cmd.NewApp(env).RunContext(ctx, cmd.StripSubcommand(os.Args))

	stop()
	_ = transport.Exit()

	if err != nil {
		// ExitErrHandler already exited for errors raised by actions.
		os.Exit(cmd.ExitCode(err))
	}
}
