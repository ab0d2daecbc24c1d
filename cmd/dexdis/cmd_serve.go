package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dhamidi/dexdis/ui"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Browse the classes of a .dex, .apk or .jar file in a web browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classes, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			server, err := ui.NewServer(filepath.Base(args[0]), classes)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d classes at http://%s\n", len(classes), displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")

	return cmd
}
