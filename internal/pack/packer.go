// Package pack builds and inspects mamba package archives: the source
// distribution (a gzipped tar with a versioned root directory) and the egg
// (a zip with an EGG-INFO metadata directory). Every archive carries a
// provenance marker entry that IsMambaPackage recognizes without extracting
// anything to disk.
package pack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// MarkerFile is the provenance entry name embedded in every archive.
	MarkerFile = "mamba-package.json"
	// EggInfoDir is the metadata directory inside egg archives.
	EggInfoDir = "EGG-INFO"

	builderID = "mamba"
)

var (
	ErrMissingPrerequisite = errors.New("missing packaging prerequisite")
	ErrFilesystem          = errors.New("filesystem operation failed")
	ErrUnreadableArchive   = errors.New("unreadable archive")
)

// Marker is the provenance record embedded in every archive this packer
// builds.
type Marker struct {
	Builder     string            `json:"builder"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Author      string            `json:"author,omitempty"`
	Email       string            `json:"email,omitempty"`
	EntryPoints map[string]string `json:"entry_points,omitempty"`
}

// PackageDescriptor gathers everything Pack needs to build an archive.
type PackageDescriptor struct {
	Name             string
	Version          string
	Author           string
	Email            string
	EntryPoints      map[string]string
	ExtraDirectories []string
	Egg              bool
	IncludeConfig    bool
}

// SdistName returns the source distribution file name.
func (d PackageDescriptor) SdistName() string {
	return fmt.Sprintf("%s-%s.tar.gz", d.Name, d.Version)
}

// EggName returns the egg file name. Dashes in the package name become
// underscores, matching the setuptools convention.
func (d PackageDescriptor) EggName() string {
	return fmt.Sprintf("%s-%s-%s.egg",
		strings.ReplaceAll(d.Name, "-", "_"), d.Version, runtimeTag())
}

// ArtifactName returns the file name of the archive Pack would build.
func (d PackageDescriptor) ArtifactName() string {
	if d.Egg {
		return d.EggName()
	}
	return d.SdistName()
}

func (d PackageDescriptor) marker() Marker {
	return Marker{
		Builder:     builderID,
		Name:        d.Name,
		Version:     d.Version,
		Author:      d.Author,
		Email:       d.Email,
		EntryPoints: d.EntryPoints,
	}
}

// runtimeTag derives the archive version tag from the running toolchain,
// e.g. go1.24.4 becomes py1.24.
func runtimeTag() string {
	v := strings.TrimPrefix(runtime.Version(), "go")
	if parts := strings.Split(v, "."); len(parts) >= 2 {
		v = parts[0] + "." + parts[1]
	}
	return "py" + v
}

// Packer builds package archives out of a project directory. Every relative
// path it touches is resolved against Root.
type Packer struct {
	Root string
}

// NewPacker returns a Packer scoped to the given project root.
func NewPacker(root string) *Packer {
	return &Packer{Root: root}
}

// Run executes one primitive filesystem step. The first token names the
// operation (cp, mv, rm, mkdir, rmdir, touch), the remaining tokens are its
// operands. rm and rmdir succeed on targets that are already gone, so
// teardown sequences can be replayed.
func (p *Packer) Run(tokens []string) error {
	if len(tokens) < 2 {
		return fmt.Errorf("%w: an operation and at least one operand are required", ErrFilesystem)
	}

	op := tokens[0]
	paths := make([]string, len(tokens)-1)
	for i, operand := range tokens[1:] {
		paths[i] = p.path(operand)
	}

	switch op {
	case "cp":
		if len(paths) != 2 {
			return fmt.Errorf("%w: cp takes a source and a destination", ErrFilesystem)
		}
		return p.copyFile(paths[0], paths[1])
	case "mv":
		if len(paths) != 2 {
			return fmt.Errorf("%w: mv takes a source and a destination", ErrFilesystem)
		}
		if err := os.Rename(paths[0], paths[1]); err != nil {
			return fmt.Errorf("%w: %v", ErrFilesystem, err)
		}
		return nil
	case "rm":
		for _, path := range paths {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
		}
		return nil
	case "mkdir":
		for _, path := range paths {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
		}
		return nil
	case "rmdir":
		for _, path := range paths {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
		}
		return nil
	case "touch":
		for _, path := range paths {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrFilesystem, err)
			}
			f.Close()
		}
		return nil
	}
	return fmt.Errorf("%w: unknown operation %q", ErrFilesystem, op)
}

// path resolves operand against the project root unless already absolute.
func (p *Packer) path(operand string) string {
	if filepath.IsAbs(operand) || p.Root == "" {
		return operand
	}
	return filepath.Join(p.Root, operand)
}

func (p *Packer) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	return nil
}

// Pack builds the archive described by desc into outDir and returns the
// artifact path. The packaging prerequisites are checked before anything is
// written; a failed build leaves no partial artifact behind.
func (p *Packer) Pack(desc PackageDescriptor, outDir string) (string, error) {
	if err := p.checkPrerequisites(); err != nil {
		return "", err
	}

	files, err := p.collectFiles(desc)
	if err != nil {
		return "", err
	}

	marker, err := json.MarshalIndent(desc.marker(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal package marker: %w", err)
	}

	artifact := filepath.Join(outDir, desc.ArtifactName())
	if desc.Egg {
		err = p.writeEgg(artifact, files, marker)
	} else {
		err = p.writeSdist(artifact, desc, files, marker)
	}
	if err != nil {
		os.Remove(artifact)
		return "", err
	}
	return artifact, nil
}

// checkPrerequisites enforces what every distributable package must carry: a
// README file, a LICENSE file and a docs directory at the project root.
func (p *Packer) checkPrerequisites() error {
	readmes, err := doublestar.FilepathGlob(filepath.Join(p.Root, "README*"))
	if err != nil || len(readmes) == 0 {
		return fmt.Errorf("%w: no README file found", ErrMissingPrerequisite)
	}
	if _, err := os.Stat(filepath.Join(p.Root, "LICENSE")); err != nil {
		return fmt.Errorf("%w: no LICENSE file found", ErrMissingPrerequisite)
	}
	info, err := os.Stat(filepath.Join(p.Root, "docs"))
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: no docs directory found", ErrMissingPrerequisite)
	}
	return nil
}

// collectFiles gathers the files going into the archive as slash-separated
// paths relative to the project root. The default set is every loose file at
// the root plus the application and docs trees; the config directory and any
// extra directories join on request. Previously built archives stay out.
func (p *Packer) collectFiles(desc PackageDescriptor) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(rel string) {
		rel = filepath.ToSlash(rel)
		if !seen[rel] {
			seen[rel] = true
			files = append(files, rel)
		}
	}

	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".egg") ||
			strings.HasSuffix(name, ".zip") {
			continue
		}
		add(name)
	}

	dirs := []string{"application", "docs"}
	if desc.IncludeConfig {
		dirs = append(dirs, "config")
	}
	dirs = append(dirs, desc.ExtraDirectories...)

	for _, dir := range dirs {
		matches, err := doublestar.FilepathGlob(filepath.Join(p.Root, dir, "**"))
		if err != nil {
			return nil, fmt.Errorf("failed to match directory %s: %w", dir, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			rel, err := filepath.Rel(p.Root, match)
			if err != nil {
				continue
			}
			add(rel)
		}
	}

	return files, nil
}

// writeSdist writes the source distribution: a gzipped tar whose entries all
// live under a {name}-{version}/ root directory.
func (p *Packer) writeSdist(path string, desc PackageDescriptor, files []string, marker []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	gzWriter := gzip.NewWriter(out)
	defer gzWriter.Close()

	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	prefix := fmt.Sprintf("%s-%s", desc.Name, desc.Version)
	for _, rel := range files {
		if err := p.addTarFile(tarWriter, rel, prefix+"/"+rel); err != nil {
			return fmt.Errorf("failed to add file %s: %w", rel, err)
		}
	}

	header := &tar.Header{
		Name:     prefix + "/" + MarkerFile,
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(marker)),
		ModTime:  time.Now(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write package marker: %w", err)
	}
	if _, err := tarWriter.Write(marker); err != nil {
		return fmt.Errorf("failed to write package marker: %w", err)
	}

	// Close writers to flush data before the caller stats the artifact
	if err := tarWriter.Close(); err != nil {
		return err
	}
	if err := gzWriter.Close(); err != nil {
		return err
	}
	return out.Close()
}

// addTarFile adds a single project file to the tar archive under the given
// entry name.
func (p *Packer) addTarFile(tarWriter *tar.Writer, rel, entryName string) error {
	file, err := os.Open(filepath.Join(p.Root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}

	// Use forward slashes in archive
	header.Name = entryName

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}

// writeEgg writes the egg form: a zip archive with the project files at the
// top level and the provenance marker under EGG-INFO/.
func (p *Packer) writeEgg(path string, files []string, marker []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	defer zipWriter.Close()

	for _, rel := range files {
		if err := p.addZipFile(zipWriter, rel); err != nil {
			return fmt.Errorf("failed to add file %s: %w", rel, err)
		}
	}

	w, err := zipWriter.Create(EggInfoDir + "/" + MarkerFile)
	if err != nil {
		return fmt.Errorf("failed to write package marker: %w", err)
	}
	if _, err := w.Write(marker); err != nil {
		return fmt.Errorf("failed to write package marker: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return err
	}
	return out.Close()
}

// addZipFile adds a single project file to the zip archive.
func (p *Packer) addZipFile(zipWriter *zip.Writer, rel string) error {
	file, err := os.Open(filepath.Join(p.Root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, file)
	return err
}
