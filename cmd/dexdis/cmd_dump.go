package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/dhamidi/dexdis/format"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string
	var className string
	var jobs int
	var color string

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the classes of a .dex, .apk or .jar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			theme, err := themeFor(color, out)
			if err != nil {
				return err
			}
			newEncoder, err := format.ByName(dumpFormat, theme)
			if err != nil {
				return err
			}

			classes, err := loadClasses(args[0])
			if err != nil {
				return err
			}
			classes, err = selectClasses(classes, className)
			if err != nil {
				return err
			}

			log.Infof("dumping %d classes from %s as %s", len(classes), args[0], dumpFormat)
			return format.RenderAll(cmd.Context(), out, classes, jobs, newEncoder)
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "smali", "output format (smali, line, json)")
	cmd.Flags().StringVarP(&className, "class", "c", "", "only dump this class (descriptor or dotted name)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of classes rendered in parallel")
	cmd.Flags().StringVar(&color, "color", "auto", "colorize smali output (auto, always, never)")

	return cmd
}

// themeFor picks the smali theme for output written to w. "always" forces
// 256-colour escapes even when w is a pipe.
func themeFor(mode string, w io.Writer) (format.Theme, error) {
	switch mode {
	case "always":
		r := lipgloss.NewRenderer(w)
		r.SetColorProfile(termenv.ANSI256)
		return format.ColorTheme(r), nil
	case "never":
		return format.Theme{}, nil
	case "auto", "":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return format.ColorTheme(lipgloss.NewRenderer(w)), nil
		}
		return format.Theme{}, nil
	}
	return format.Theme{}, fmt.Errorf("unknown color mode: %s (expected auto, always or never)", mode)
}
