package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *globalOptions) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "verify <file.class>...",
		Short: "Check that class files parse and re-encode byte for byte",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				if err := verifyFile(out, path, quiet); err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed verification", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report failures")

	return cmd
}

func verifyFile(out io.Writer, path string, quiet bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return err
	}
	if encoded := cf.Bytes(); !bytes.Equal(encoded, data) {
		return fmt.Errorf("re-encoded bytes differ at offset %d", firstDifference(encoded, data))
	}
	if quiet {
		return nil
	}
	fmt.Fprintf(out, "OK   %s (%d bytes, %d diagnostics)\n", path, len(data), len(cf.Diagnostics))
	for _, d := range cf.Diagnostics.Filter(classfile.SeverityInfo) {
		fmt.Fprintf(out, "     %s\n", d)
	}
	return nil
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := range n {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
