package security

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mamba-admin/internal/pack"
)

type tarEntry struct {
	name     string
	content  string
	typeflag byte
	linkname string
}

func writeTestTar(t *testing.T, entries []tarEntry) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "package.tar.gz")
	out, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer out.Close()

	gzWriter := gzip.NewWriter(out)
	defer gzWriter.Close()
	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	for _, entry := range entries {
		typeflag := entry.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		header := &tar.Header{
			Name:     entry.name,
			Typeflag: typeflag,
			Linkname: entry.linkname,
			Mode:     0o644,
			Size:     int64(len(entry.content)),
			ModTime:  time.Now(),
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tarWriter.Write([]byte(entry.content)); err != nil {
				t.Fatalf("failed to write entry: %v", err)
			}
		}
	}
	return archivePath
}

func validMarker() string {
	return `{"builder": "mamba", "name": "mamba-dummy", "version": "0.1.2",` +
		` "author": "dummy", "email": "dummy@localhost"}`
}

func TestValidateArchiveAcceptsCleanPackage(t *testing.T) {
	archivePath := writeTestTar(t, []tarEntry{
		{name: "mamba-dummy-0.1.2/README.rst", content: "Dummy\n"},
		{name: "mamba-dummy-0.1.2/application/controller/root.go", content: "package controller\n"},
		{name: "mamba-dummy-0.1.2/" + pack.MarkerFile, content: validMarker()},
	})

	if err := NewValidator(nil).ValidateArchive(archivePath); err != nil {
		t.Errorf("ValidateArchive() error = %v, want nil", err)
	}
}

func TestValidateArchiveRejectsUnsafePaths(t *testing.T) {
	tests := []struct {
		name    string
		entries []tarEntry
		wantErr string
	}{
		{
			name:    "path traversal",
			entries: []tarEntry{{name: "../evil.go", content: "package evil"}},
			wantErr: "path traversal",
		},
		{
			name:    "absolute path",
			entries: []tarEntry{{name: "/etc/passwd", content: "root"}},
			wantErr: "absolute paths",
		},
		{
			name: "symlink entry",
			entries: []tarEntry{{
				name:     "mamba-dummy-0.1.2/link",
				typeflag: tar.TypeSymlink,
				linkname: "/etc/passwd",
			}},
			wantErr: "unsupported file type",
		},
		{
			name: "control characters",
			entries: []tarEntry{{
				name:    "mamba-dummy-0.1.2/evil\x01name",
				content: "x",
			}},
			wantErr: "control characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			archivePath := writeTestTar(t, tt.entries)
			err := NewValidator(nil).ValidateArchive(archivePath)
			if err == nil {
				t.Fatal("expected validation to fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateArchiveRejectsBinaries(t *testing.T) {
	archivePath := writeTestTar(t, []tarEntry{
		{name: "mamba-dummy-0.1.2/tool", content: "\x7fELF\x02\x01\x01payload"},
	})

	err := NewValidator(nil).ValidateArchive(archivePath)
	if err == nil || !strings.Contains(err.Error(), "executable file detected") {
		t.Errorf("error = %v, want executable rejection", err)
	}
}

func TestValidateArchiveLimits(t *testing.T) {
	t.Run("file count", func(t *testing.T) {
		archivePath := writeTestTar(t, []tarEntry{
			{name: "a", content: "1"},
			{name: "b", content: "2"},
			{name: "c", content: "3"},
		})
		v := NewValidator(&Config{MaxFileSize: 100, MaxTotalSize: 100, MaxFiles: 2})
		err := v.ValidateArchive(archivePath)
		if err == nil || !strings.Contains(err.Error(), "too many files") {
			t.Errorf("error = %v, want file count rejection", err)
		}
	})

	t.Run("single file size", func(t *testing.T) {
		archivePath := writeTestTar(t, []tarEntry{
			{name: "big", content: strings.Repeat("x", 64)},
		})
		v := NewValidator(&Config{MaxFileSize: 10, MaxTotalSize: 1000, MaxFiles: 10})
		err := v.ValidateArchive(archivePath)
		if err == nil || !strings.Contains(err.Error(), "too large") {
			t.Errorf("error = %v, want size rejection", err)
		}
	})

	t.Run("total size", func(t *testing.T) {
		archivePath := writeTestTar(t, []tarEntry{
			{name: "a", content: strings.Repeat("x", 30)},
			{name: "b", content: strings.Repeat("x", 30)},
		})
		v := NewValidator(&Config{MaxFileSize: 40, MaxTotalSize: 50, MaxFiles: 10})
		err := v.ValidateArchive(archivePath)
		if err == nil || !strings.Contains(err.Error(), "archive too large") {
			t.Errorf("error = %v, want total size rejection", err)
		}
	})
}

func TestValidateArchiveMarkerFields(t *testing.T) {
	archivePath := writeTestTar(t, []tarEntry{
		{
			name: "mamba-dummy-0.1.2/" + pack.MarkerFile,
			content: `{"builder": "mamba", "name": "mamba-dummy",` +
				` "author": "<script>alert(1)</script>"}`,
		},
	})

	err := NewValidator(nil).ValidateArchive(archivePath)
	if err == nil || !strings.Contains(err.Error(), "contains markup") {
		t.Errorf("error = %v, want markup rejection", err)
	}
}

func TestValidateMarker(t *testing.T) {
	v := NewValidator(nil)

	t.Run("clean marker", func(t *testing.T) {
		marker := &pack.Marker{
			Builder:     "mamba",
			Name:        "mamba-dummy",
			Version:     "0.1.2",
			Author:      "dummy",
			Email:       "dummy@localhost",
			EntryPoints: map[string]string{"console_scripts": "dummy = dummy:main"},
		}
		if err := v.ValidateMarker(marker); err != nil {
			t.Errorf("ValidateMarker() error = %v, want nil", err)
		}
	})

	t.Run("markup in entry points", func(t *testing.T) {
		marker := &pack.Marker{
			Builder:     "mamba",
			Name:        "mamba-dummy",
			EntryPoints: map[string]string{"x": "<img src=x onerror=alert(1)>"},
		}
		if err := v.ValidateMarker(marker); err == nil {
			t.Error("expected markup rejection")
		}
	})
}

func TestValidateZipArchive(t *testing.T) {
	t.Run("clean egg", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "mamba_dummy-0.1.2-py1.24.egg")
		out, err := os.Create(archivePath)
		if err != nil {
			t.Fatalf("failed to create archive: %v", err)
		}
		zipWriter := zip.NewWriter(out)
		for name, content := range map[string]string{
			"README.rst":                     "Dummy\n",
			"EGG-INFO/" + pack.MarkerFile:    validMarker(),
			"application/controller/root.go": "package controller\n",
		} {
			w, err := zipWriter.Create(name)
			if err != nil {
				t.Fatalf("failed to create entry: %v", err)
			}
			if _, err := w.Write([]byte(content)); err != nil {
				t.Fatalf("failed to write entry: %v", err)
			}
		}
		if err := zipWriter.Close(); err != nil {
			t.Fatalf("failed to close zip: %v", err)
		}
		out.Close()

		if err := NewValidator(nil).ValidateArchive(archivePath); err != nil {
			t.Errorf("ValidateArchive() error = %v, want nil", err)
		}
	})

	t.Run("symlink entry", func(t *testing.T) {
		archivePath := filepath.Join(t.TempDir(), "evil.egg")
		out, err := os.Create(archivePath)
		if err != nil {
			t.Fatalf("failed to create archive: %v", err)
		}
		zipWriter := zip.NewWriter(out)
		header := &zip.FileHeader{Name: "link"}
		header.SetMode(os.ModeSymlink | 0o777)
		w, err := zipWriter.CreateHeader(header)
		if err != nil {
			t.Fatalf("failed to create entry: %v", err)
		}
		if _, err := w.Write([]byte("/etc/passwd")); err != nil {
			t.Fatalf("failed to write entry: %v", err)
		}
		if err := zipWriter.Close(); err != nil {
			t.Fatalf("failed to close zip: %v", err)
		}
		out.Close()

		err = NewValidator(nil).ValidateArchive(archivePath)
		if err == nil || !strings.Contains(err.Error(), "symlink") {
			t.Errorf("error = %v, want symlink rejection", err)
		}
	})
}
