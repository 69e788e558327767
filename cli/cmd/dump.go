package cmd

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/bootloader"
	"github.com/moffa90/go-hf2/protocol"
)

// DumpCommand returns the dump command.
func DumpCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Hex dump device memory",
		Flags: concat([]cli.Flag{
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "Start address (0x prefix for hex)", Required: true},
			&cli.UintFlag{Name: "words", Aliases: []string{"n"}, Usage: "Number of 32-bit words", Value: 64},
		}, deviceFlags()),
		Action: dumpAction(env),
	}
}

func dumpAction(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		addr, err := strconv.ParseUint(c.String("address"), 0, 32)
		if err != nil {
			return fmt.Errorf("--address: %w", err)
		}
		if addr%protocol.WordSize != 0 {
			return fmt.Errorf("--address 0x%X is not word aligned", addr)
		}
		words := uint32(c.Uint("words"))
		if words == 0 {
			return fmt.Errorf("--words must be positive")
		}

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

		limit := (caps.MaxMessageSize - protocol.ResponseHeaderSize) / protocol.WordSize
		if limit == 0 {
			return fmt.Errorf("max message size %d too small for READ_WORDS", caps.MaxMessageSize)
		}

		data := make([]byte, 0, words*protocol.WordSize)
		for done := uint32(0); done < words; {
			n := min(limit, words-done)
			got, err := sess.ReadWords(c.Context, uint32(addr)+done*protocol.WordSize, n)
			if err != nil {
				return err
			}
			for _, w := range got {
				data = binary.LittleEndian.AppendUint32(data, w)
			}
			done += n
		}

		env.Hexdump(int(addr), data)
		return nil
	}
}
