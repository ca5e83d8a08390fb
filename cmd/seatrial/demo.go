package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dockwa/seatrial/internal/demo"
)

func newDemoCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Start the demo target server for local exploration of situation files",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "demo target listening on %s\n", addr)
			return demo.Serve(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Listen address")

	return cmd
}
