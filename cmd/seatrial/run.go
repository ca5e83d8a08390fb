package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dockwa/seatrial/internal/config"
	"github.com/dockwa/seatrial/internal/harness"
	"github.com/dockwa/seatrial/internal/telemetry"
)

type runFlags struct {
	situation  string
	multiplier int
}

func newRunCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a situation: spawn its grunts and drive their pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := telemetry.New(telemetry.Options{
				Level:  root.logLevel,
				Format: root.logFormat,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			situation, err := config.Load(flags.situation, flags.multiplier)
			if err != nil {
				return err
			}

			outcomes, err := harness.Run(cmd.Context(), situation, logger)
			if err != nil {
				return err
			}

			failed := 0
			for _, outcome := range outcomes {
				status := "ok"
				if outcome.Exited {
					status = "exit"
				}
				if outcome.Failed() {
					status = "failed"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %-8s steps=%-4d warnings=%-3d elapsed=%s\n",
					outcome.Grunt, status, outcome.Steps, len(outcome.Warnings), outcome.Elapsed.Round(time.Millisecond))
				if outcome.Failed() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", outcome.Err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d grunts terminated in error", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.situation, "situation", "s", "", "Path to a situation file (required)")
	cmd.Flags().IntVarP(&flags.multiplier, "multiplier", "m", 1, "Integral multiplier for grunt counts")
	_ = cmd.MarkFlagRequired("situation")

	return cmd
}
