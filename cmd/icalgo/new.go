package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonybepary/icalgo/internal/fixtureid"
)

func newNewCmd() *cobra.Command {
	var summary string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Print a skeleton VEVENT with a fresh UID",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC().Format("20060102T150405Z")
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BEGIN:VEVENT\r\n")
			fmt.Fprintf(out, "UID:%s\r\n", fixtureid.New())
			fmt.Fprintf(out, "DTSTAMP:%s\r\n", now)
			fmt.Fprintf(out, "DTSTART:%s\r\n", now)
			fmt.Fprintf(out, "SUMMARY:%s\r\n", summary)
			fmt.Fprintf(out, "END:VEVENT\r\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "New event", "SUMMARY text for the generated event")

	return cmd
}
