package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "seatrial",
		Short:         "seatrial runs situational load tests of synthetic users against a target service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "Log format (console or json)")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
