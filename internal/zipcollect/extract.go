package zipcollect

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chalk/internal/services"
)

// extractArchive unpacks one zip into destDir, preserving the archive's
// internal paths. Entries that would escape destDir are rejected before
// anything is written.
func extractArchive(archivePath, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "zipcollect", "open archive", archivePath, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if !filepath.IsLocal(filepath.FromSlash(file.Name)) {
			return nil, services.Wrap(services.ErrIO, "zipcollect", "extract archive",
				fmt.Sprintf("%s: entry %q escapes the extraction root", filepath.Base(archivePath), file.Name), nil)
		}
	}

	var extracted []string
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || strings.HasSuffix(file.Name, "/") {
			continue
		}
		dest := filepath.Join(destDir, filepath.FromSlash(file.Name))
		if err := writeEntry(file, dest); err != nil {
			return nil, services.Wrap(services.ErrIO, "zipcollect", "extract archive", file.Name, err)
		}
		extracted = append(extracted, file.Name)
	}
	return extracted, nil
}

func writeEntry(file *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
