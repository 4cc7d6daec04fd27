package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count [file]",
		Short: "Count the VEVENTs (and distinct UIDs) in an iCalendar file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			cal, err := readCalendar(path)
			if err != nil {
				return err
			}

			total := 0
			for _, coll := range cal.Events {
				total += 1 + len(coll.Overrides())
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d event(s), %d distinct UID(s)\n", total, len(cal.Events))
			return nil
		},
	}
}
