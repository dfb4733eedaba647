package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"

	"mamba-admin/internal/project"
)

func dummyApp() App {
	return App{
		Name:        "dummy",
		Description: "A new Mamba application",
		Version:     "1.0",
		Port:        1936,
		Author:      "dummy",
		Email:       "dummy@localhost",
	}
}

func TestCreateBuildsProjectTree(t *testing.T) {
	parent := t.TempDir()

	root, err := Create(dummyApp(), parent)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if root != filepath.Join(parent, "dummy") {
		t.Errorf("root = %q, want %q", root, filepath.Join(parent, "dummy"))
	}

	for _, dir := range appDirs {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s", dir)
		}
	}

	meta, err := project.LoadMetadata(project.MetadataPath(root))
	if err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if meta.Name != "dummy" || meta.Port != 1936 {
		t.Errorf("metadata = %+v", meta)
	}

	dbCfg, err := project.LoadDatabaseConfig(project.DatabasePath(root))
	if err != nil {
		t.Fatalf("LoadDatabaseConfig() error = %v", err)
	}
	if dbCfg.URI != "sqlite:db/dummy.db" {
		t.Errorf("uri = %q, want sqlite:db/dummy.db", dbCfg.URI)
	}

	mainSrc, err := os.ReadFile(filepath.Join(root, "main.go"))
	if err != nil {
		t.Fatalf("failed to read main.go: %v", err)
	}
	if !strings.Contains(string(mainSrc), ":1936") {
		t.Error("main.go should listen on the configured port")
	}

	// Packaging prerequisites are deliberately absent from a fresh tree.
	for _, name := range []string{"README.rst", "LICENSE", "docs"} {
		if _, err := os.Stat(filepath.Join(root, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not be scaffolded", name)
		}
	}
}

func TestCreateRefusesExistingTarget(t *testing.T) {
	parent := t.TempDir()

	if _, err := Create(dummyApp(), parent); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := Create(dummyApp(), parent)
	if !errors.Is(err, ErrProjectExists) {
		t.Errorf("expected ErrProjectExists, got %v", err)
	}
}

func TestCreateCleansUpOnFailure(t *testing.T) {
	parent := t.TempDir()

	app := dummyApp()
	app.Version = "" // fails metadata validation after directories exist
	if _, err := Create(app, parent); err == nil {
		t.Fatal("expected Create to fail")
	}
	if _, err := os.Stat(filepath.Join(parent, "dummy")); !os.IsNotExist(err) {
		t.Error("a failed scaffold must leave nothing behind")
	}
}

func TestCreateWithGit(t *testing.T) {
	parent := t.TempDir()

	app := dummyApp()
	app.Git = true
	root, err := Create(app, parent)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		t.Fatalf("PlainOpen() error = %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatalf("CommitObject() error = %v", err)
	}
	if commit.Message != "Initial commit" {
		t.Errorf("commit message = %q, want %q", commit.Message, "Initial commit")
	}
	if commit.Author.Email != "dummy@localhost" {
		t.Errorf("author email = %q, want dummy@localhost", commit.Author.Email)
	}
}

func TestCreateHonorsCustomConfigFile(t *testing.T) {
	parent := t.TempDir()

	app := dummyApp()
	app.ConfigFile = "custom.json"
	root, err := Create(app, parent)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, project.ConfigDir, "custom.json")); err != nil {
		t.Errorf("custom config file missing: %v", err)
	}
}
