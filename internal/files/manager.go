package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Manager provides file management operations for the cleaning stage.
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger.With(slog.String("component", "file_manager"))}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateDirectory creates a directory with all parent directories
func (m *Manager) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// Archive moves a consumed raw file into an "archive" subdirectory next
// to it, prefixing the name with a timestamp so repeated drops of the
// same filename never collide.
func (m *Manager) Archive(path string) (string, error) {
	dir := filepath.Dir(path)
	archiveDir := filepath.Join(dir, "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(path))
	target := filepath.Join(archiveDir, name)

	// Rename first; fall back to copy+remove across filesystems.
	if err := os.Rename(path, target); err != nil {
		if err := m.copyFile(path, target); err != nil {
			return "", err
		}
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("failed to remove source after copy: %w", err)
		}
	}

	m.logger.Info("raw file archived",
		slog.String("source", path),
		slog.String("target", target))
	return target, nil
}

func (m *Manager) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy file: %w", err)
	}
	return out.Sync()
}
