package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/cli/render"
)

// ResetCommand returns the reset command.
func ResetCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:   "reset",
		Usage:  "Restart the device into its application",
		Flags:  deviceFlags(),
		Action: resetAction(env),
	}
}

func resetAction(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := loadSettings(c)
		if err != nil {
			return err
		}
		logger, err := s.logger(env)
		if err != nil {
			return err
		}

		dev, err := openDevice(c.Context, env, s, logger)
		if err != nil {
			return err
		}
		defer func() { _ = dev.Port.Close() }()

		sess := bootloader.NewSession(dev.Port, sessionOptions(env, s, logger)...)
		if _, err := sess.QueryInfo(c.Context); err != nil {
			return err
		}
		if err := sess.ResetToApplication(c.Context); err != nil {
			return err
		}

		render.NewPrinter(env.Stdout, s.noColor).Status("Reset", "%s", dev.Info)
		return nil
	}
}
