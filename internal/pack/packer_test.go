package pack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newProjectTree builds a minimal packageable project and returns its root.
func newProjectTree(t *testing.T) string {
	t.Helper()

	root, err := os.MkdirTemp("", "mamba-pack-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(root) })

	dirs := []string{
		"application/controller",
		"application/model",
		"application/view",
		"config",
		"docs",
		"logs",
		"static",
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	files := map[string]string{
		"README.rst":                     "Dummy\n=====\n",
		"LICENSE":                        "MIT\n",
		"main.go":                        "package main\n",
		"go.mod":                         "module dummy\n",
		"docs/index.rst":                 "docs\n",
		"application/controller/root.go": "package controller\n",
		"application/model/customer.go":  "package model\n",
		"config/application.json":        `{"name": "dummy", "version": "1.0"}`,
		"static/style.css":               "body {}\n",
		"logs/dummy.log":                 "noise\n",
		"mamba-dummy-0.0.1.tar.gz":       "stale artifact",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return root
}

func dummyDescriptor(egg bool) PackageDescriptor {
	return PackageDescriptor{
		Name:        "mamba-dummy",
		Version:     "0.1.2",
		Author:      "dummy",
		Email:       "dummy@localhost",
		EntryPoints: map[string]string{"console_scripts": "dummy = dummy:main"},
		Egg:         egg,
	}
}

func TestRunPrimitives(t *testing.T) {
	root := newProjectTree(t)
	p := NewPacker(root)

	t.Run("touch creates files", func(t *testing.T) {
		if err := p.Run([]string{"touch", "README.rst", "INSTALL"}); err != nil {
			t.Fatalf("Run(touch) error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "INSTALL")); err != nil {
			t.Errorf("INSTALL was not created: %v", err)
		}
	})

	t.Run("rm removes several targets and tolerates missing ones", func(t *testing.T) {
		if err := p.Run([]string{"touch", "a.tmp", "b.tmp"}); err != nil {
			t.Fatalf("Run(touch) error = %v", err)
		}
		if err := p.Run([]string{"rm", "a.tmp", "b.tmp", "never-there"}); err != nil {
			t.Fatalf("Run(rm) error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "a.tmp")); !os.IsNotExist(err) {
			t.Error("a.tmp should be gone")
		}
		// A second pass over the same targets must also succeed.
		if err := p.Run([]string{"rm", "a.tmp", "b.tmp"}); err != nil {
			t.Errorf("rm is not idempotent: %v", err)
		}
	})

	t.Run("mkdir and rmdir", func(t *testing.T) {
		if err := p.Run([]string{"mkdir", "build/nested"}); err != nil {
			t.Fatalf("Run(mkdir) error = %v", err)
		}
		if err := p.Run([]string{"touch", "build/nested/file"}); err != nil {
			t.Fatalf("Run(touch) error = %v", err)
		}
		if err := p.Run([]string{"rmdir", "build"}); err != nil {
			t.Fatalf("Run(rmdir) error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "build")); !os.IsNotExist(err) {
			t.Error("build should be gone")
		}
		if err := p.Run([]string{"rmdir", "build"}); err != nil {
			t.Errorf("rmdir is not idempotent: %v", err)
		}
	})

	t.Run("cp copies content", func(t *testing.T) {
		if err := p.Run([]string{"cp", "LICENSE", "LICENSE.copy"}); err != nil {
			t.Fatalf("Run(cp) error = %v", err)
		}
		data, err := os.ReadFile(filepath.Join(root, "LICENSE.copy"))
		if err != nil {
			t.Fatalf("failed to read copy: %v", err)
		}
		if string(data) != "MIT\n" {
			t.Errorf("copy content = %q", data)
		}
	})

	t.Run("mv renames", func(t *testing.T) {
		if err := p.Run([]string{"touch", "old-name"}); err != nil {
			t.Fatalf("Run(touch) error = %v", err)
		}
		if err := p.Run([]string{"mv", "old-name", "new-name"}); err != nil {
			t.Fatalf("Run(mv) error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "new-name")); err != nil {
			t.Errorf("new-name missing: %v", err)
		}
	})

	t.Run("unknown operation fails", func(t *testing.T) {
		if err := p.Run([]string{"chmod", "LICENSE"}); !errors.Is(err, ErrFilesystem) {
			t.Errorf("expected ErrFilesystem, got %v", err)
		}
	})

	t.Run("missing operands fail", func(t *testing.T) {
		if err := p.Run([]string{"rm"}); !errors.Is(err, ErrFilesystem) {
			t.Errorf("expected ErrFilesystem, got %v", err)
		}
	})
}

func TestPackSdist(t *testing.T) {
	root := newProjectTree(t)
	p := NewPacker(root)

	artifact, err := p.Pack(dummyDescriptor(false), root)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if filepath.Base(artifact) != "mamba-dummy-0.1.2.tar.gz" {
		t.Errorf("artifact = %q, want mamba-dummy-0.1.2.tar.gz", filepath.Base(artifact))
	}

	entries := tarEntries(t, artifact)
	for _, name := range entries {
		if !strings.HasPrefix(name, "mamba-dummy-0.1.2/") {
			t.Errorf("entry %q lacks the versioned root directory", name)
		}
	}
	wantEntries := []string{
		"mamba-dummy-0.1.2/README.rst",
		"mamba-dummy-0.1.2/LICENSE",
		"mamba-dummy-0.1.2/docs/index.rst",
		"mamba-dummy-0.1.2/application/controller/root.go",
		"mamba-dummy-0.1.2/" + MarkerFile,
	}
	for _, want := range wantEntries {
		if !containsString(entries, want) {
			t.Errorf("archive lacks entry %q", want)
		}
	}
	if containsString(entries, "mamba-dummy-0.1.2/mamba-dummy-0.0.1.tar.gz") {
		t.Error("stale artifacts must not be packed")
	}
	if containsString(entries, "mamba-dummy-0.1.2/logs/dummy.log") {
		t.Error("log files must not be packed")
	}
	if containsString(entries, "mamba-dummy-0.1.2/config/application.json") {
		t.Error("config must stay out without the include-config flag")
	}

	ok, name, err := IsMambaPackage(artifact)
	if err != nil {
		t.Fatalf("IsMambaPackage() error = %v", err)
	}
	if !ok || name != "mamba-dummy" {
		t.Errorf("IsMambaPackage() = (%v, %q), want (true, mamba-dummy)", ok, name)
	}
}

func TestPackEgg(t *testing.T) {
	root := newProjectTree(t)
	p := NewPacker(root)

	desc := dummyDescriptor(true)
	artifact, err := p.Pack(desc, root)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	base := filepath.Base(artifact)
	if !strings.HasPrefix(base, "mamba_dummy-0.1.2-py") || !strings.HasSuffix(base, ".egg") {
		t.Errorf("artifact = %q, want mamba_dummy-0.1.2-py*.egg", base)
	}
	if base != desc.EggName() {
		t.Errorf("artifact = %q, want %q", base, desc.EggName())
	}

	entries := zipEntryNames(t, artifact)
	if !containsString(entries, EggInfoDir+"/"+MarkerFile) {
		t.Errorf("egg lacks %s/%s; entries: %v", EggInfoDir, MarkerFile, entries)
	}
	if !containsString(entries, "README.rst") {
		t.Error("egg lacks README.rst")
	}

	ok, name, err := IsMambaPackage(artifact)
	if err != nil {
		t.Fatalf("IsMambaPackage() error = %v", err)
	}
	if !ok || name != "mamba-dummy" {
		t.Errorf("IsMambaPackage() = (%v, %q), want (true, mamba-dummy)", ok, name)
	}
}

func TestPackPrerequisites(t *testing.T) {
	tests := []struct {
		name   string
		remove string
	}{
		{"missing README", "README.rst"},
		{"missing LICENSE", "LICENSE"},
		{"missing docs", "docs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newProjectTree(t)
			if err := os.RemoveAll(filepath.Join(root, tt.remove)); err != nil {
				t.Fatalf("failed to remove %s: %v", tt.remove, err)
			}

			p := NewPacker(root)
			desc := dummyDescriptor(false)
			_, err := p.Pack(desc, root)
			if !errors.Is(err, ErrMissingPrerequisite) {
				t.Fatalf("expected ErrMissingPrerequisite, got %v", err)
			}
			if _, err := os.Stat(filepath.Join(root, desc.SdistName())); !os.IsNotExist(err) {
				t.Error("no artifact may exist after a failed precondition")
			}
		})
	}
}

func TestPackOptionalDirectories(t *testing.T) {
	root := newProjectTree(t)
	p := NewPacker(root)

	desc := dummyDescriptor(false)
	desc.IncludeConfig = true
	desc.ExtraDirectories = []string{"static"}

	artifact, err := p.Pack(desc, root)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	entries := tarEntries(t, artifact)
	if !containsString(entries, "mamba-dummy-0.1.2/config/application.json") {
		t.Error("config should be packed with the include-config flag")
	}
	if !containsString(entries, "mamba-dummy-0.1.2/static/style.css") {
		t.Error("extra directories should be packed")
	}
}

func tarEntries(t *testing.T, archivePath string) []string {
	t.Helper()

	file, err := os.Open(archivePath)
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("failed to read gzip: %v", err)
	}
	defer gzReader.Close()

	var names []string
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read tar: %v", err)
		}
		names = append(names, header.Name)
	}
	return names
}

func zipEntryNames(t *testing.T, archivePath string) []string {
	t.Helper()

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("failed to open zip: %v", err)
	}
	defer reader.Close()

	var names []string
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	return names
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
