package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/classkit/classfile"
	"github.com/spf13/cobra"
)

func newCFGCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cfg <file.class|class> <method>",
		Short: "Print the basic blocks of a method's bytecode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := opts.openClass(args[0])
			if err != nil {
				return err
			}
			methods, err := findMethods(cf, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range methods {
				fmt.Fprintf(out, "%s%s\n", m.Name(), m.Descriptor())
				if m.Code() == nil {
					fmt.Fprintln(out, "  no code")
					continue
				}
				g, err := m.ControlFlowGraph()
				if err != nil {
					return fmt.Errorf("%s%s: %w", m.Name(), m.Descriptor(), err)
				}
				printGraph(out, g)
			}
			return nil
		},
	}
}

func printGraph(out io.Writer, g *classfile.ControlFlowGraph) {
	for _, b := range g.Blocks {
		fmt.Fprintf(out, "  block %d [%d, %d)", b.Index, b.Start, b.End)
		if len(b.Successors) > 0 {
			fmt.Fprintf(out, " -> %s", joinInts(b.Successors))
		}
		if len(b.Handlers) > 0 {
			fmt.Fprintf(out, " catch %s", joinInts(b.Handlers))
		}
		fmt.Fprintln(out)
		for _, in := range b.Instructions {
			fmt.Fprintf(out, "    %d: %s\n", in.Offset, in.Mnemonic())
		}
	}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
