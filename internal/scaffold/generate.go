package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact kinds.
const (
	KindController = "controller"
	KindModel      = "model"
	KindView       = "view"
)

// Artifact describes one generated source component.
type Artifact struct {
	Kind        string // controller, model or view
	Name        string // canonical type name, e.g. TestController
	FileName    string // file base name, e.g. test_controller
	Description string
	Author      string
	Email       string
	Year        int
	Platforms   string
	Route       string // controllers only
	Table       string // models only
	Controller  string // views only
}

// Render returns the artifact's source text.
func (a Artifact) Render() (string, error) {
	tpl, ok := artifactTemplates[a.Kind]
	if !ok {
		return "", fmt.Errorf("unknown artifact kind %q", a.Kind)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", a.Kind, err)
	}
	return buf.String(), nil
}

// Write renders the artifact into root/application/{kind}/{filename}.go,
// refusing to overwrite an existing file. Models also append their table
// stub to db/schema.sql.
func Write(root string, a Artifact) (string, error) {
	source, err := a.Render()
	if err != nil {
		return "", err
	}

	path := filepath.Join(root, "application", a.Kind, a.FileName+".go")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrArtifactExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if a.Kind == KindModel {
		if err := appendModelSQL(root, a); err != nil {
			os.Remove(path)
			return "", err
		}
	}
	return path, nil
}

// appendModelSQL grows db/schema.sql with the model's CREATE TABLE stub.
func appendModelSQL(root string, a Artifact) error {
	var buf bytes.Buffer
	if err := modelSQLTemplate.Execute(&buf, a); err != nil {
		return fmt.Errorf("failed to render table stub: %w", err)
	}

	schemaPath := filepath.Join(root, "db", "schema.sql")
	f, err := os.OpenFile(schemaPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", schemaPath, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", schemaPath, err)
	}
	return f.Close()
}
