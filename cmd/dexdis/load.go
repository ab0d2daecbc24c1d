package main

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/dhamidi/dexdis/dalvik"
	"github.com/dhamidi/dexdis/dex"
)

var dexEntryPattern = regexp.MustCompile(`^classes\d*\.dex$`)

// isArchive reports whether path names a zip container that may hold dex
// files.
func isArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".apk", ".jar", ".zip", ".aar":
		return true
	}
	return false
}

// dexEntries returns the classes*.dex entries of an archive in load order:
// classes.dex first, then classes2.dex, classes3.dex and so on.
func dexEntries(files []*zip.File) []*zip.File {
	var entries []*zip.File
	for _, f := range files {
		if dexEntryPattern.MatchString(f.Name) {
			entries = append(entries, f)
		}
	}
	slices.SortFunc(entries, func(a, b *zip.File) int {
		return dexOrdinal(a.Name) - dexOrdinal(b.Name)
	})
	return entries
}

func dexOrdinal(name string) int {
	n := strings.TrimSuffix(strings.TrimPrefix(name, "classes"), ".dex")
	if n == "" {
		return 1
	}
	var i int
	fmt.Sscanf(n, "%d", &i)
	return i
}

// loadClasses reads every class from a .dex file or from the dex entries of
// an .apk, .jar or .zip archive.
func loadClasses(path string) ([]*dalvik.Class, error) {
	if !isArchive(path) {
		return dalvik.ClassesFromPath(path)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	entries := dexEntries(r.File)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s contains no classes.dex", path)
	}

	var classes []*dalvik.Class
	for _, entry := range entries {
		f, err := parseZipEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", path, entry.Name, err)
		}
		log.Debugf("%s!%s: %d classes", path, entry.Name, len(f.Classes))
		classes = append(classes, dalvik.ClassesFromFile(f)...)
	}
	return classes, nil
}

func parseZipEntry(entry *zip.File) (*dex.File, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return dex.Parse(data)
}

// selectClasses narrows classes to the one named by name, or returns all of
// them when name is empty.
func selectClasses(classes []*dalvik.Class, name string) ([]*dalvik.Class, error) {
	if name == "" {
		return classes, nil
	}
	c := dalvik.FindClass(classes, name)
	if c == nil {
		return nil, fmt.Errorf("class not found: %s", name)
	}
	return []*dalvik.Class{c}, nil
}
