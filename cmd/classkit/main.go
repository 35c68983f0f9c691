package main

import (
	"os"

	"github.com/dhamidi/classkit/config"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:          "classkit",
		Short:        "Inspect and verify Java class files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: nearest "+config.FileName+")")
	flags.CountVarP(&opts.verbose, "verbose", "v", "log more, repeat for debug output")
	flags.StringSliceVar(&opts.classpath, "classpath", nil, "directories and jars to load classes from")
	flags.BoolVar(&opts.write, "write", false, "allow loaded class files to be written back")

	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newVerifyCmd(opts))
	rootCmd.AddCommand(newSlotsCmd(opts))
	rootCmd.AddCommand(newCFGCmd(opts))
	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newLSPCmd(opts))

	return rootCmd
}
