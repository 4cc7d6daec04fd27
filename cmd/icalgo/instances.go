package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonybepary/icalgo/ical"
)

func newInstancesCmd() *cobra.Command {
	var uid string
	var n int

	cmd := &cobra.Command{
		Use:   "instances [file]",
		Short: "Print the first N occurrences of a VEVENT's recurrence",
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

			coll, ok := cal.Events[uid]
			if !ok {
				return &ical.Error{Kind: ical.KindSchema, Context: "no event with UID " + uid}
			}

			it, err := coll.IterInstances(cal)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := 0; n <= 0 || i < n; i++ {
				when, ev, ok, err := it.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				fmt.Fprintf(out, "%s  %s\n", when.Format("2006-01-02T15:04:05Z07:00"), ev.Summary)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&uid, "uid", "", "UID of the event to expand (required)")
	cmd.Flags().IntVar(&n, "n", 10, "maximum number of occurrences to print (0 for unbounded)")
	cmd.MarkFlagRequired("uid")

	return cmd
}
