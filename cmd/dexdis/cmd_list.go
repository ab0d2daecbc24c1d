package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var descriptors bool

	cmd := &cobra.Command{
		Use:   "list <file>",
		Short: "List the classes of a .dex, .apk or .jar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := loadClasses(args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, c := range classes {
				fmt.Fprintln(tw, listRow(c, descriptors))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&descriptors, "descriptors", "d", false, "print type descriptors instead of dotted names")

	return cmd
}

func listRow(c *dalvik.Class, descriptors bool) string {
	name := c.Name()
	if descriptors {
		name = c.ClassType()
	}
	fields := len(c.StaticFields()) + len(c.InstanceFields())
	methods := len(c.DirectMethods()) + len(c.VirtualMethods())
	flags := strings.Join(c.AccessFlagNames(), " ")
	if flags == "" {
		flags = "-"
	}
	return fmt.Sprintf("%s\t%s\t%d fields\t%d methods", name, flags, fields, methods)
}
