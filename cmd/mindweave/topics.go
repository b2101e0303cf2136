package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/mindweave/internal/knowledge"
)

func newTopicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the SelfSage knowledge base topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range knowledge.Topics() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
