package main

import (
	"path/filepath"

	"github.com/dhamidi/dexdis/browse"
	"github.com/spf13/cobra"
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse the classes of a .dex, .apk or .jar file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			return browse.Run(filepath.Base(args[0]), classes)
		},
	}
}
