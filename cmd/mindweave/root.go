package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mindweave",
		Short: "MindWeave is a private journal with AI reflections.",
		Long: `MindWeave keeps a journal of short entries, asks an AI collaborator for a
gentle analysis of each one, and lets you share a single entry through a
link that expires after an hour.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "",
		"config file (default is ./mindweave.yaml when present)")

	cmd.AddCommand(
		newServeCmd(opts),
		newShareCmd(),
		newTopicsCmd(),
	)
	return cmd
}
