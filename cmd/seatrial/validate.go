package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockwa/seatrial/internal/config"
)

func newValidateCmd() *cobra.Command {
	var situation string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a situation file without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(situation, 1)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid: %d grunts against %s\n",
				situation, len(loaded.Grunts), loaded.BaseURL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&situation, "situation", "s", "", "Path to a situation file (required)")
	_ = cmd.MarkFlagRequired("situation")

	return cmd
}
