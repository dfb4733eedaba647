// Package scaffold creates new mamba application trees and generates
// controller, model and view source stubs inside existing ones.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mamba-admin/internal/project"
)

var (
	ErrProjectExists  = errors.New("target directory already exists")
	ErrArtifactExists = errors.New("artifact already exists")
)

// App describes the application to scaffold.
type App struct {
	Name        string
	Description string
	Version     string
	Port        int
	LogFile     string
	ConfigFile  string
	Author      string
	Email       string
	Git         bool
}

var appDirs = []string{
	"application/lib",
	"application/controller",
	"application/model",
	"application/view/templates",
	"application/view/stylesheets",
	project.ConfigDir,
	"db",
	"logs",
}

// Create builds the project tree for app under parentDir and returns the new
// project root. A failed scaffold removes everything it created.
func Create(app App, parentDir string) (string, error) {
	root := filepath.Join(parentDir, app.Name)
	if _, err := os.Stat(root); err == nil {
		return "", fmt.Errorf("%w: %s", ErrProjectExists, root)
	}

	if err := populate(app, root); err != nil {
		os.RemoveAll(root)
		return "", err
	}

	if app.Git {
		if err := initRepository(app, root); err != nil {
			os.RemoveAll(root)
			return "", err
		}
	}

	return root, nil
}

func populate(app App, root string) error {
	for _, dir := range appDirs {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	configFile := app.ConfigFile
	if configFile == "" {
		configFile = project.MetadataFile
	}
	meta := &project.Metadata{
		Name:        app.Name,
		Description: app.Description,
		Version:     app.Version,
		Port:        app.Port,
		LogFile:     app.LogFile,
	}
	metaPath := filepath.Join(root, project.ConfigDir, configFile)
	if err := project.SaveMetadata(metaPath, meta); err != nil {
		return err
	}
	if err := project.SaveDatabaseConfig(project.DatabasePath(root),
		project.DefaultDatabaseConfig(app.Name)); err != nil {
		return err
	}

	files := []struct {
		path string
		tpl  *template.Template
	}{
		{"main.go", mainTemplate},
		{"go.mod", gomodTemplate},
		{filepath.Join("db", "schema.sql"), schemaTemplate},
		{filepath.Join("application", "view", "templates", "layout.html"), layoutTemplate},
		{filepath.Join("application", "view", "stylesheets", "style.css"), styleTemplate},
	}
	for _, f := range files {
		if err := renderFile(filepath.Join(root, f.path), f.tpl, app); err != nil {
			return err
		}
	}
	return nil
}

func renderFile(path string, tpl *template.Template, data any) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := tpl.Execute(out, data); err != nil {
		out.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return out.Close()
}

// initRepository puts the fresh tree under version control with an initial
// commit.
func initRepository(app App, root string) error {
	repo, err := git.PlainInit(root, false)
	if err != nil {
		return fmt.Errorf("failed to init repository: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := w.Add("."); err != nil {
		return fmt.Errorf("failed to stage files: %w", err)
	}

	_, err = w.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  app.Author,
			Email: app.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
