package main

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeZip(t *testing.T, path string, entries map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDexEntries(t *testing.T) {
	var files []*zip.File
	for _, name := range []string{"classes10.dex", "res/classes.dex", "classes2.dex", "AndroidManifest.xml", "classes.dex", "classes3.dex"} {
		files = append(files, &zip.File{FileHeader: zip.FileHeader{Name: name}})
	}

	var got []string
	for _, f := range dexEntries(files) {
		got = append(got, f.Name)
	}
	want := []string{"classes.dex", "classes2.dex", "classes3.dex", "classes10.dex"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("dexEntries() = %v, want %v", got, want)
	}
}

func TestIsArchive(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app.apk", true},
		{"lib.JAR", true},
		{"bundle.zip", true},
		{"classes.dex", false},
		{"Foo.class", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isArchive(tt.path); got != tt.want {
				t.Errorf("isArchive(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLoadClassesErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("archive without dex", func(t *testing.T) {
		path := filepath.Join(dir, "empty.apk")
		writeZip(t, path, map[string][]byte{"AndroidManifest.xml": []byte("<manifest/>")})
		_, err := loadClasses(path)
		if err == nil || !strings.Contains(err.Error(), "contains no classes.dex") {
			t.Errorf("loadClasses() error = %v", err)
		}
	})

	t.Run("archive with bad dex", func(t *testing.T) {
		path := filepath.Join(dir, "bad.apk")
		writeZip(t, path, map[string][]byte{"classes.dex": []byte("not a dex file")})
		_, err := loadClasses(path)
		if err == nil || !strings.Contains(err.Error(), "bad.apk!classes.dex") {
			t.Errorf("loadClasses() error = %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := loadClasses(filepath.Join(dir, "missing.dex")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestSelectClasses(t *testing.T) {
	if got, err := selectClasses(nil, ""); err != nil || got != nil {
		t.Errorf("selectClasses(nil, \"\") = %v, %v", got, err)
	}
	if _, err := selectClasses(nil, "com.example.Foo"); err == nil {
		t.Error("Expected error for unknown class")
	}
}

func TestRunScan(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.dex"), []byte("dex\n035\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	writeZip(t, filepath.Join(dir, "app.apk"), map[string][]byte{"AndroidManifest.xml": nil})

	var out bytes.Buffer
	report, err := runScan(context.Background(), &out, dir, time.Second)
	if err != nil {
		t.Fatalf("runScan() error = %v", err)
	}
	if report.files != 2 {
		t.Errorf("files = %d, want 2", report.files)
	}
	if len(report.errors) != 2 {
		t.Errorf("Expected 2 errors, got %v", report.errors)
	}
	if strings.Count(out.String(), "[ERROR]") != 2 {
		t.Errorf("output should report both failures:\n%s", out.String())
	}

	report.print(&out)
	if !strings.Contains(out.String(), "=== SCAN COMPLETE ===") {
		t.Errorf("summary missing:\n%s", out.String())
	}

	t.Run("unsupported file", func(t *testing.T) {
		if _, err := runScan(context.Background(), &out, filepath.Join(dir, "notes.txt"), time.Second); err == nil {
			t.Error("Expected error for unsupported file type")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := runScan(ctx, &out, dir, time.Second); err == nil {
			t.Error("Expected error when cancelled")
		}
	})
}
