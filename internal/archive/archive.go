// Package archive handles the two zip boundaries of the pipeline:
// extracting the input dataset archive and assembling the submission zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks a zip archive into dest, creating it if needed. Entries
// whose cleaned path would escape dest are rejected.
func Extract(zipPath, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	for _, f := range r.File {
		target, err := sanitize(dest, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	return nil
}

// sanitize joins an archive entry name onto dest and rejects traversal.
func sanitize(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return filepath.Join(dest, cleaned), nil
}

// Build creates a zip at outPath containing the named files and
// directories. Directories are walked recursively; paths inside the zip
// are relative to the working directory. Missing inputs are skipped and
// returned so the caller can warn about them.
func Build(outPath string, inputs []string) (skipped []string, err error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive %s: %w", outPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, input := range inputs {
		info, statErr := os.Stat(input)
		if statErr != nil {
			skipped = append(skipped, input)
			continue
		}
		if info.IsDir() {
			walkErr := filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				return addFile(zw, path)
			})
			if walkErr != nil {
				zw.Close()
				return skipped, fmt.Errorf("failed to walk %s: %w", input, walkErr)
			}
			continue
		}
		if err := addFile(zw, input); err != nil {
			zw.Close()
			return skipped, err
		}
	}

	if err := zw.Close(); err != nil {
		return skipped, fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return skipped, fmt.Errorf("failed to close archive: %w", err)
	}
	return skipped, nil
}

func addFile(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	// Absolute inputs are stored rooted at the archive top, the way zip
	// tools strip the leading separator.
	name := strings.TrimPrefix(filepath.ToSlash(path), "/")

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", path, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to write %s into archive: %w", path, err)
	}
	return nil
}
