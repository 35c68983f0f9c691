package main

import (
	"github.com/dhamidi/classkit/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.loader()
			if err != nil {
				return err
			}
			defer l.Close()
			return lsp.NewServer(version, l).RunStdio()
		},
	}
}
