package main

import (
	"fmt"
	"strings"

	"github.com/dhamidi/classkit/format"
	"github.com/spf13/cobra"
)

func newDumpCmd(opts *globalOptions) *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file.class|class>",
		Short: "Dump the structure of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dumpFormat == "" {
				dumpFormat = opts.cfg.Dump.Format
			}
			enc, err := format.NewEncoder(dumpFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cf, err := opts.openClass(args[0])
			if err != nil {
				return err
			}
			if err := enc.Encode(cf); err != nil {
				return fmt.Errorf("encode %s: %w", dumpFormat, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "", "output format ("+strings.Join(format.Names, ", ")+"), default from config")

	return cmd
}
