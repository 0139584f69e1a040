package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIP extracts files from a ZIP archive into destDir, flattening any
// directory structure. When ext is non-empty only files with that extension
// are extracted (e.g. ".yaml" pulls just the match documents out of a
// Cricsheet archive). Returns the extracted file paths.
func ExtractZIP(zipPath, destDir, ext string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "zip: create destination")
	}

	var extracted []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(f.Name), ext) {
			continue
		}

		path, err := extractZIPEntry(f, destDir)
		if err != nil {
			return extracted, err
		}
		extracted = append(extracted, path)
	}

	return extracted, nil
}

// extractZIPEntry writes a single zip.File into destDir under its base name.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	// Base name only: guards against zip slip and keeps the data dir flat.
	name := filepath.Base(f.Name)
	if name == "." || name == string(os.PathSeparator) {
		return "", eris.Errorf("zip: illegal entry name %q", f.Name)
	}
	destPath := filepath.Join(destDir, name)

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}

	return destPath, nil
}
