package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonybepary/icalgo/ical"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "icalgo",
		Short:        "Parse and query iCalendar (RFC 5545) files",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("tz-dir", "", "directory of additional zoneinfo data (reserved for future use)")
	viper.BindPFlag("tz-dir", cmd.PersistentFlags().Lookup("tz-dir"))
	viper.SetEnvPrefix("ICALGO")
	viper.BindEnv("tz-dir")

	cmd.AddCommand(newCountCmd(), newInstancesCmd(), newNewCmd())

	return cmd
}

// readCalendar reads path (or stdin, for "-" or an empty path) and builds a
// VCalendar from it.
func readCalendar(path string) (*ical.VCalendar, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	roots, err := ical.ParseStream(r)
	if err != nil {
		return nil, err
	}

	for _, root := range roots {
		if root.Name == "VCALENDAR" || root.Name == "VCalendar" {
			return ical.BuildCalendar(root)
		}
	}
	return nil, &ical.Error{Kind: ical.KindSchema, Context: "no VCALENDAR component in input"}
}

func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}
