package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a directory, dex file or archive and report files that fail to load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report, err := runScan(cmd.Context(), out, args[0], timeout)
			if err != nil {
				return err
			}
			report.print(out)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file")

	return cmd
}

type scanReport struct {
	files   int
	classes int
	members int
	errors  []string
}

func (r *scanReport) print(w io.Writer) {
	fmt.Fprintf(w, "\n=== SCAN COMPLETE ===\n")
	fmt.Fprintf(w, "Files scanned: %d\n", r.files)
	fmt.Fprintf(w, "Classes found: %d\n", r.classes)
	fmt.Fprintf(w, "Members found: %d\n", r.members)
	fmt.Fprintf(w, "Errors: %d\n", len(r.errors))
	for _, e := range r.errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
}

func isScannable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".dex") || isArchive(path)
}

func runScan(ctx context.Context, w io.Writer, path string, timeout time.Duration) (*scanReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	report := &scanReport{}
	var files []string
	if info.IsDir() {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				report.errors = append(report.errors, fmt.Sprintf("walk %s: %v", p, err))
				return nil
			}
			if !info.IsDir() && isScannable(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			report.errors = append(report.errors, fmt.Sprintf("walk %s: %v", path, err))
		}
		fmt.Fprintf(w, "Found %d files to scan\n", len(files))
	} else {
		if !isScannable(path) {
			return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
		}
		files = []string{path}
	}

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "[%d/%d] ", i+1, len(files))
		report.files++
		scanFile(ctx, w, file, timeout, report)
	}
	return report, nil
}

type scanResult struct {
	classes int
	members int
	err     error
}

func scanFile(ctx context.Context, w io.Writer, path string, timeout time.Duration, report *scanReport) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so that a scan finishing after the timeout does not block.
	results := make(chan scanResult, 1)
	go func() {
		results <- countMembers(ctx, path)
	}()

	var res scanResult
	select {
	case res = <-results:
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	switch {
	case errors.Is(res.err, context.DeadlineExceeded):
		fmt.Fprintf(w, "[TIMEOUT] %s\n", path)
		report.errors = append(report.errors, fmt.Sprintf("timeout loading %s", path))
	case res.err != nil:
		fmt.Fprintf(w, "[ERROR] %s: %v\n", path, res.err)
		report.errors = append(report.errors, fmt.Sprintf("load %s: %v", path, res.err))
	default:
		fmt.Fprintf(w, "[OK] %s (%d classes)\n", path, res.classes)
		report.classes += res.classes
		report.members += res.members
	}
}

// countMembers loads path and counts members through the projections, not the
// raw class data. Parsing runs to completion; counting stops once ctx is done.
func countMembers(ctx context.Context, path string) scanResult {
	classes, err := loadClasses(path)
	if err != nil {
		return scanResult{err: err}
	}
	res := scanResult{classes: len(classes)}
	for _, c := range classes {
		if err := ctx.Err(); err != nil {
			return scanResult{err: err}
		}
		res.members += len(c.StaticFields()) + len(c.InstanceFields())
		res.members += len(c.DirectMethods()) + len(c.VirtualMethods())
		c.Annotations()
	}
	return res
}
