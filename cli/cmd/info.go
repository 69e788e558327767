package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/cli/render"
)

// InfoCommand returns the info command.
func InfoCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "Show the device capabilities and identification",
		Flags:  deviceFlags(),
		Action: infoAction(env),
	}
}

func infoAction(env *Env) cli.ActionFunc {
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
		caps, err := sess.QueryInfo(c.Context)
		if err != nil {
			return err
		}
		text, err := sess.Identify(c.Context)
		if err != nil {
			return err
		}

		p := render.NewPrinter(env.Stdout, s.noColor)
		p.Status("Device", "%s", dev.Info)
		p.Field("mode", caps.Mode)
		p.Field("page size", caps.PageSize)
		p.Field("pages", caps.NumPages)
		p.Field("flash size", caps.FlashSize())
		p.Field("max message", caps.MaxMessageSize)
		if caps.FamilyID != 0 {
			p.Field("family", fmt.Sprintf("0x%08X", caps.FamilyID))
		}
		for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
			p.Field("info", line)
		}
		return nil
	}
}
