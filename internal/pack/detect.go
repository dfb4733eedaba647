package pack

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// IsMambaPackage reports whether the archive at archivePath was built by
// this packer, without extracting anything to disk. When the provenance
// marker is present and well formed it returns true together with the
// recorded package name. Archives that open fine but carry no marker return
// false with no error; paths that open as neither a gzipped tar nor a zip
// fail with ErrUnreadableArchive.
func IsMambaPackage(archivePath string) (bool, string, error) {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return tarMarker(archivePath)
	case strings.HasSuffix(lower, ".egg"), strings.HasSuffix(lower, ".zip"):
		return zipMarker(archivePath)
	}

	// Unknown extension: try both forms before giving up.
	if ok, name, err := tarMarker(archivePath); err == nil {
		return ok, name, nil
	}
	return zipMarker(archivePath)
}

// tarMarker streams a gzipped tar looking for the marker entry.
func tarMarker(archivePath string) (bool, string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return false, "", fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
		}
		if header.Typeflag != tar.TypeReg || path.Base(header.Name) != MarkerFile {
			continue
		}
		return readMarker(tarReader)
	}
	return false, "", nil
}

// zipMarker scans a zip central directory for the marker entry.
func zipMarker(archivePath string) (bool, string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return false, "", fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if path.Base(entry.Name) != MarkerFile {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return false, "", fmt.Errorf("%w: %v", ErrUnreadableArchive, err)
		}
		ok, name, err := readMarker(rc)
		rc.Close()
		return ok, name, err
	}
	return false, "", nil
}

// readMarker decodes a marker entry. A malformed or foreign marker means the
// archive is not one of ours; it is not an error.
func readMarker(r io.Reader) (bool, string, error) {
	var marker Marker
	if err := json.NewDecoder(r).Decode(&marker); err != nil {
		return false, "", nil
	}
	if marker.Builder != builderID || marker.Name == "" {
		return false, "", nil
	}
	return true, marker.Name, nil
}
