package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/moffa90/go-hf2/discovery"
)

// DevicesCommand returns the devices command.
func DevicesCommand(env *Env) *cli.Command {
	return &cli.Command{
		Name:   "devices",
		Usage:  "List HID devices, marking known HF2 bootloaders",
		Flags:  deviceFlags(),
		Action: devicesAction(env),
	}
}

func devicesAction(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := loadSettings(c)
		if err != nil {
			return err
		}

		enum, err := hidEnumerator(env, s)
		if err != nil {
			return err
		}
		devices, err := enum.Devices()
		if err != nil {
			return err
		}

		table := &discovery.IdentifierTableStrategy{Table: s.table}

		w := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tID\tMANUFACTURER\tPRODUCT\tKNOWN")
		for _, d := range devices {
			mark, known := " ", ""
			if k, ok := table.Lookup(d); ok {
				mark, known = "*", k.Name
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, d.IDs(), d.Manufacturer, d.Product, known)
		}
		return w.Flush()
	}
}
