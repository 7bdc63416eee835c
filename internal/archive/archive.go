package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ExportPatterns match the files a previous run left in the output directory
var ExportPatterns = []string{"anki_cards_*.csv", "*.apkg"}

// ArchiveExports moves earlier exports in outputDir into
// outputDir/archive/exports-<timestamp>. It returns the archive path, or ""
// when there was nothing to archive.
func ArchiveExports(outputDir string) (string, error) {
	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	var files []string
	for _, pattern := range ExportPatterns {
		matches, err := filepath.Glob(filepath.Join(outputDir, pattern))
		if err != nil {
			return "", err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return "", nil
	}

	archivePath := filepath.Join(outputDir, "archive", "exports-"+time.Now().Format("20060102-150405"))
	if _, err := os.Stat(archivePath); err == nil {
		// Same second as an earlier archive
		archivePath = filepath.Join(outputDir, "archive", "exports-"+time.Now().Format("20060102-150405.000000"))
	}

	if err := os.MkdirAll(archivePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	for _, file := range files {
		if err := os.Rename(file, filepath.Join(archivePath, filepath.Base(file))); err != nil {
			return "", fmt.Errorf("failed to archive %s: %w", file, err)
		}
	}

	return archivePath, nil
}
