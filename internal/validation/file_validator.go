package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var (
	// ErrFileNotFound is returned when an input file does not exist
	ErrFileNotFound = errors.New("file does not exist")
	// ErrNotAFile is returned when an input path names a directory
	ErrNotAFile = errors.New("path is a directory, not a file")
	// ErrUnsupportedExtension is returned for names outside the allow-list
	ErrUnsupportedExtension = errors.New("file type not supported")
	// ErrInvalidFilename is returned for empty or temporary file names
	ErrInvalidFilename = errors.New("invalid file name")
)

// FileValidator checks input files and output directories
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// DetectFileType maps a file name to its declared type using the extension
// allow-list csv, xlsx, xls, json and xml
func DetectFileType(filename string) (domain.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedExtension, filename)
	}
	for _, allowed := range domain.SupportedExtensions {
		if ext == allowed {
			ft, _ := domain.FileTypeFromExtension(ext)
			return ft, nil
		}
	}
	return "", fmt.Errorf("%w: .%s", ErrUnsupportedExtension, ext)
}

// ValidateUploadName checks a client supplied file name and returns its type
func (v *FileValidator) ValidateUploadName(filename string) (domain.FileType, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("%w: empty name", ErrInvalidFilename)
	}
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file", slog.String("file", base))
		return "", fmt.Errorf("%w: %s is a temporary Excel file", ErrInvalidFilename, base)
	}

	ft, err := DetectFileType(base)
	if err != nil {
		v.logger.Warn("Rejecting upload with unsupported extension",
			slog.String("file", base))
		return "", err
	}
	return ft, nil
}

// ValidateFile checks that path exists, is a regular file and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
