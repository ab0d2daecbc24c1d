package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhamidi/dexdis/format"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var output string
	var title string
	var withObject bool

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Write the class hierarchy as a Graphviz DOT graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = filepath.Base(args[0])
			}

			dot := format.DOT(classes, title, withObject)
			if output == "" || output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}
			if err := os.WriteFile(output, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			log.Infof("wrote %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to this file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "graph title (defaults to the input file name)")
	cmd.Flags().BoolVar(&withObject, "with-object", false, "include edges to java.lang.Object")

	return cmd
}
