package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/mindweave/internal/app/share"
	"github.com/PabloGalante/mindweave/internal/domain"
)

func newShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Work with shared entry links",
	}
	cmd.AddCommand(newShareDecodeCmd())
	return cmd
}

func newShareDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token-or-url>",
		Short: "Print the entry inside a share token or share URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := share.NewCodec().Decode(tokenArg(args[0]))
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}

			out, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

// tokenArg accepts a bare token or a full share URL.
func tokenArg(arg string) string {
	if u, err := url.Parse(arg); err == nil && u.Scheme != "" {
		if token, ok := share.TokenFromQuery(u.Query()); ok {
			return token
		}
	}
	return arg
}
