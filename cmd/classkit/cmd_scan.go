package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func newScanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dir|jar]...",
		Short: "Load every class on the classpath and report failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := opts.loader(args...)
			if err != nil {
				return err
			}
			defer l.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			results, scanErr := l.Scan(ctx)

			out := cmd.OutOrStdout()
			var failed, diagnostics int
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", r.Name, r.Err)
					failed++
					continue
				}
				diagnostics += len(r.Class.Diagnostics)
			}
			fmt.Fprintf(out, "classes: %d\n", len(results))
			fmt.Fprintf(out, "failed: %d\n", failed)
			fmt.Fprintf(out, "diagnostics: %d\n", diagnostics)
			return scanErr
		},
	}
}
