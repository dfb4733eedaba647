// Package security validates package archives before they are copied into a
// package store: entry paths, entry types, size and count limits, binary
// signatures and the provenance marker fields. Nothing is extracted during
// validation.
package security

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"mamba-admin/internal/pack"
)

const (
	// Validation limits
	MaxFileSize        = 4 * 1024 * 1024  // 4MB per file
	MaxTotalSize       = 64 * 1024 * 1024 // 64MB total uncompressed
	MaxFilesPerArchive = 2048             // Maximum number of entries
)

// Config contains archive validation settings
type Config struct {
	MaxFileSize  int64
	MaxTotalSize int64
	MaxFiles     int
}

// DefaultConfig returns the default validation configuration
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize:  MaxFileSize,
		MaxTotalSize: MaxTotalSize,
		MaxFiles:     MaxFilesPerArchive,
	}
}

// Validator handles security validation of package archives
type Validator struct {
	config *Config
	policy *bluemonday.Policy
}

// NewValidator creates a new archive validator
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}

	// Marker fields are plain identifiers and addresses; any markup in them
	// is hostile.
	return &Validator{
		config: config,
		policy: bluemonday.StrictPolicy(),
	}
}

// ValidateArchive validates a package archive in either distribution form.
func (v *Validator) ValidateArchive(archivePath string) error {
	lower := strings.ToLower(archivePath)
	if strings.HasSuffix(lower, ".egg") || strings.HasSuffix(lower, ".zip") {
		return v.validateZip(archivePath)
	}
	return v.validateTar(archivePath)
}

func (v *Validator) validateTar(archivePath string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	var totalSize int64
	var fileCount int

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		fileCount++
		if fileCount > v.config.MaxFiles {
			return fmt.Errorf("archive contains too many files (max %d)", v.config.MaxFiles)
		}

		if err := v.validatePath(header.Name); err != nil {
			return fmt.Errorf("unsafe file path '%s': %w", header.Name, err)
		}

		// Reject symlinks and other special file types
		if header.Typeflag != tar.TypeReg && header.Typeflag != tar.TypeDir {
			return fmt.Errorf("unsupported file type for '%s': %c", header.Name, header.Typeflag)
		}

		if header.Size > v.config.MaxFileSize {
			return fmt.Errorf("file '%s' too large (%d bytes, max %d)",
				header.Name, header.Size, v.config.MaxFileSize)
		}

		totalSize += header.Size
		if totalSize > v.config.MaxTotalSize {
			return fmt.Errorf("archive too large (%d bytes, max %d)",
				totalSize, v.config.MaxTotalSize)
		}

		if header.Typeflag == tar.TypeReg {
			if err := v.validateContent(tarReader, header.Name); err != nil {
				return fmt.Errorf("invalid content in '%s': %w", header.Name, err)
			}
		}
	}

	return nil
}

func (v *Validator) validateZip(archivePath string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer reader.Close()

	if len(reader.File) > v.config.MaxFiles {
		return fmt.Errorf("archive contains too many files (max %d)", v.config.MaxFiles)
	}

	var totalSize int64
	for _, entry := range reader.File {
		if err := v.validatePath(entry.Name); err != nil {
			return fmt.Errorf("unsafe file path '%s': %w", entry.Name, err)
		}

		mode := entry.Mode()
		if mode&os.ModeSymlink != 0 {
			return fmt.Errorf("unsupported file type for '%s': symlink", entry.Name)
		}
		if mode&os.ModeType != 0 && !mode.IsDir() {
			return fmt.Errorf("unsupported file type for '%s'", entry.Name)
		}

		size := int64(entry.UncompressedSize64)
		if size > v.config.MaxFileSize {
			return fmt.Errorf("file '%s' too large (%d bytes, max %d)",
				entry.Name, size, v.config.MaxFileSize)
		}

		totalSize += size
		if totalSize > v.config.MaxTotalSize {
			return fmt.Errorf("archive too large (%d bytes, max %d)",
				totalSize, v.config.MaxTotalSize)
		}

		if mode.IsRegular() {
			rc, err := entry.Open()
			if err != nil {
				return fmt.Errorf("failed to open entry '%s': %w", entry.Name, err)
			}
			err = v.validateContent(rc, entry.Name)
			rc.Close()
			if err != nil {
				return fmt.Errorf("invalid content in '%s': %w", entry.Name, err)
			}
		}
	}

	return nil
}

// validatePath checks for path traversal and other path-based attacks
func (v *Validator) validatePath(filePath string) error {
	// Reject absolute paths (check both Unix and Windows style)
	if filepath.IsAbs(filePath) || strings.HasPrefix(filePath, "/") || strings.HasPrefix(filePath, "\\") {
		return fmt.Errorf("absolute paths not allowed")
	}

	// Reject paths with .. segments (path traversal)
	if strings.Contains(filePath, "..") {
		return fmt.Errorf("path traversal attempt detected")
	}

	// Reject paths with control characters or other dangerous characters
	for _, r := range filePath {
		if r < 32 || r == 127 { // Control characters
			return fmt.Errorf("control characters in path not allowed")
		}
	}

	return nil
}

// validateContent checks one regular entry: no compiled executables, and a
// well-formed, markup-free provenance marker.
func (v *Validator) validateContent(reader io.Reader, name string) error {
	content, err := io.ReadAll(io.LimitReader(reader, v.config.MaxFileSize))
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	if err := checkBinarySignature(content); err != nil {
		return err
	}

	if path.Base(name) == pack.MarkerFile {
		var marker pack.Marker
		if err := json.Unmarshal(content, &marker); err != nil {
			return fmt.Errorf("malformed package marker: %w", err)
		}
		if err := v.ValidateMarker(&marker); err != nil {
			return err
		}
	}

	return nil
}

// ValidateMarker checks the provenance marker fields for embedded markup.
// Every field must survive strict sanitization unchanged.
func (v *Validator) ValidateMarker(marker *pack.Marker) error {
	fields := map[string]string{
		"name":    marker.Name,
		"version": marker.Version,
		"author":  marker.Author,
		"email":   marker.Email,
	}
	for field, value := range fields {
		if v.policy.Sanitize(value) != value {
			return fmt.Errorf("marker field %s contains markup", field)
		}
	}
	for key, value := range marker.EntryPoints {
		if v.policy.Sanitize(key) != key || v.policy.Sanitize(value) != value {
			return fmt.Errorf("marker entry point %s contains markup", key)
		}
	}
	return nil
}

// checkBinarySignature rejects compiled executables smuggled in as package
// files.
func checkBinarySignature(content []byte) error {
	if len(content) < 4 {
		return nil
	}

	// Check for common executable signatures
	signatures := map[string][]byte{
		"ELF":       {0x7F, 0x45, 0x4C, 0x46}, // ELF executables
		"PE":        {0x4D, 0x5A},             // PE executables (MZ header)
		"Mach-O 32": {0xFE, 0xED, 0xFA, 0xCE}, // Mach-O 32-bit
		"Mach-O 64": {0xFE, 0xED, 0xFA, 0xCF}, // Mach-O 64-bit
		"Java":      {0xCA, 0xFE, 0xBA, 0xBE}, // Java class files
	}

	for sigName, sig := range signatures {
		if bytes.HasPrefix(content, sig) {
			return fmt.Errorf("executable file detected (%s signature)", sigName)
		}
	}

	return nil
}
