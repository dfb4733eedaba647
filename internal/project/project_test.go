package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newProjectDir(t *testing.T, name string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "mamba-project-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	if err := os.MkdirAll(filepath.Join(dir, ConfigDir), 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	meta := &Metadata{Name: name, Version: "1.0", Port: 1936}
	if err := SaveMetadata(MetadataPath(dir), meta); err != nil {
		t.Fatalf("failed to save metadata: %v", err)
	}
	return dir
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := newProjectDir(t, "dummy")

	meta, err := LoadMetadata(MetadataPath(dir))
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if meta.Name != "dummy" {
		t.Errorf("name = %q, want %q", meta.Name, "dummy")
	}
	if meta.Version != "1.0" {
		t.Errorf("version = %q, want %q", meta.Version, "1.0")
	}
	if meta.Port != 1936 {
		t.Errorf("port = %d, want 1936", meta.Port)
	}
}

func TestMetadataValidation(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		err := (&Metadata{Version: "1.0"}).Validate()
		if !errors.Is(err, ErrInvalidMetadata) {
			t.Errorf("expected ErrInvalidMetadata, got %v", err)
		}
	})

	t.Run("missing version", func(t *testing.T) {
		err := (&Metadata{Name: "dummy"}).Validate()
		if !errors.Is(err, ErrInvalidMetadata) {
			t.Errorf("expected ErrInvalidMetadata, got %v", err)
		}
	})

	t.Run("save refuses invalid metadata", func(t *testing.T) {
		dir := newProjectDir(t, "dummy")
		err := SaveMetadata(MetadataPath(dir), &Metadata{})
		if !errors.Is(err, ErrInvalidMetadata) {
			t.Errorf("expected ErrInvalidMetadata, got %v", err)
		}
	})
}

func TestLoadMetadataErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadMetadata("/nonexistent/application.json"); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		dir := newProjectDir(t, "dummy")
		path := MetadataPath(dir)
		if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
			t.Fatalf("failed to corrupt metadata: %v", err)
		}
		if _, err := LoadMetadata(path); err == nil {
			t.Error("expected an error for malformed JSON")
		}
	})
}

func TestDatabaseConfigRoundTrip(t *testing.T) {
	dir := newProjectDir(t, "dummy")

	want := DefaultDatabaseConfig("dummy")
	if err := SaveDatabaseConfig(DatabasePath(dir), want); err != nil {
		t.Fatalf("SaveDatabaseConfig() error = %v", err)
	}

	got, err := LoadDatabaseConfig(DatabasePath(dir))
	if err != nil {
		t.Fatalf("LoadDatabaseConfig() error = %v", err)
	}
	if got.URI != "sqlite:db/dummy.db" {
		t.Errorf("uri = %q, want %q", got.URI, "sqlite:db/dummy.db")
	}
	if got.MinThreads != 5 || got.MaxThreads != 20 {
		t.Errorf("pool = %d..%d, want 5..20", got.MinThreads, got.MaxThreads)
	}
	if !got.CreateIfNotExists {
		t.Error("create_if_not_exists should default to true")
	}
	if got.DropTable {
		t.Error("drop_table should default to false")
	}
}

func TestFindRoot(t *testing.T) {
	t.Run("from the root itself", func(t *testing.T) {
		dir := newProjectDir(t, "dummy")
		got, err := FindRoot(dir)
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if got != dir {
			t.Errorf("root = %q, want %q", got, dir)
		}
	})

	t.Run("from a nested directory", func(t *testing.T) {
		dir := newProjectDir(t, "dummy")
		nested := filepath.Join(dir, "application", "controller")
		if err := os.MkdirAll(nested, 0o755); err != nil {
			t.Fatalf("failed to create nested dir: %v", err)
		}
		got, err := FindRoot(nested)
		if err != nil {
			t.Fatalf("FindRoot() error = %v", err)
		}
		if got != dir {
			t.Errorf("root = %q, want %q", got, dir)
		}
	})

	t.Run("outside any project", func(t *testing.T) {
		dir, err := os.MkdirTemp("", "mamba-outside-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		if _, err := FindRoot(dir); !errors.Is(err, ErrNotInProject) {
			t.Errorf("expected ErrNotInProject, got %v", err)
		}
	})
}
