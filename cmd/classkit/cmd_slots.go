package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSlotsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slots <file.class|class> <method>",
		Short: "Show which local variable slot holds each method parameter",
		Long: `Show which local variable slot holds each method parameter on entry.

The method is a name, e.g. "equals", or a name with its descriptor, e.g.
"equals(Ljava/lang/Object;)Z". Instance methods hold the receiver in
slot 0, and long and double parameters take two slots.`,
		Args: cobra.ExactArgs(2),
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
			for i, m := range methods {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s%s\n", m.Name(), m.Descriptor())
				fmt.Fprintf(out, "slot\tname\ttype\n")
				if !m.IsStatic() {
					fmt.Fprintf(out, "0\tthis\t%s\n", cf.ClassName())
				}
				names := m.ParameterNames()
				for p, typ := range m.ParameterTypeNames() {
					fmt.Fprintf(out, "%d\t%s\t%s\n", m.LocalSlot(p), names[p], typ)
				}
			}
			return nil
		},
	}
}
