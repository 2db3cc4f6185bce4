package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/internal/infrastructure"
	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var (
	// ErrNotFound is returned for a stored file that does not exist
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that sanitize to nothing or try
	// to leave the storage directory
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooLarge is returned when an upload exceeds the size limit
	ErrTooLarge = errors.New("upload exceeds size limit")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Manager owns the uploads and processed directories
type Manager struct {
	paths    *config.Paths
	maxBytes int64
	logger   *slog.Logger
}

// NewManager creates a manager. maxBytes <= 0 disables the size limit.
func NewManager(paths *config.Paths, maxBytes int64, logger *slog.Logger) *Manager {
	return &Manager{
		paths:    paths,
		maxBytes: maxBytes,
		logger:   infrastructure.WithComponent(logger, "files"),
	}
}

// SanitizeName reduces a client supplied name to a safe base name
func SanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	return strings.TrimLeft(base, "._")
}

// SaveUpload copies r into the uploads directory under a unique name and
// returns that name
func (m *Manager) SaveUpload(name string, r io.Reader) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	stored := uuid.NewString()[:8] + "_" + clean
	dst := m.paths.GetUploadPath(stored)

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}

	src := r
	if m.maxBytes > 0 {
		src = io.LimitReader(r, m.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case err != nil:
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload: %w", err)
	case m.maxBytes > 0 && n > m.maxBytes:
		os.Remove(dst)
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, m.maxBytes)
	case closeErr != nil:
		os.Remove(dst)
		return "", fmt.Errorf("failed to close upload: %w", closeErr)
	}

	m.logger.Info("Upload stored",
		slog.String("original_name", name),
		slog.String("stored_name", stored),
		slog.Int64("bytes", n))
	return stored, nil
}

// UploadPath returns the path of a stored upload, failing when it is missing
func (m *Manager) UploadPath(stored string) (string, error) {
	return m.existing(stored, m.paths.GetUploadPath)
}

// ProcessedPath returns the path of a processed file, failing when it is
// missing
func (m *Manager) ProcessedPath(name string) (string, error) {
	return m.existing(name, m.paths.GetProcessedPath)
}

// ProcessedName derives processed_<base>.<ext> from the input name
func ProcessedName(original, ext string) string {
	base := filepath.Base(original)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s%s.%s", config.ProcessedPrefix, base, strings.TrimPrefix(ext, "."))
}

// ListProcessed lists the processed outputs, newest first
func (m *Manager) ListProcessed() ([]FileInfo, error) {
	return NewDiscovery(m.paths.BaseDir).FindByExtension(m.paths.ProcessedDir, "csv", "xlsx", "json")
}

// ListUploads lists stored uploads of a supported type, newest first
func (m *Manager) ListUploads() ([]FileInfo, error) {
	return NewDiscovery(m.paths.BaseDir).FindByExtension(m.paths.UploadsDir, domain.SupportedExtensions...)
}

// FileExists reports whether path is an existing regular file
func (m *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored upload. Missing files are not an error.
func (m *Manager) Remove(stored string) error {
	if err := checkName(stored); err != nil {
		return err
	}
	err := os.Remove(m.paths.GetUploadPath(stored))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

func (m *Manager) existing(name string, resolve func(string) string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	path := resolve(name)
	if !m.FileExists(path) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}

// checkName rejects names that are not plain base names
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
