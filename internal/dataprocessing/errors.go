package dataprocessing

import (
	"errors"
	"fmt"

	"github.com/Zeyna175/data-processor-app/pkg/contracts/domain"
)

var (
	// ErrUnsupportedFileType is returned for a declared type outside csv|excel|json|xml
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrUnknownColumn is returned when duplicate_subset names a column the table lacks
	ErrUnknownColumn = errors.New("unknown column")

	// ErrLegacyWorkbook is returned for binary (BIFF) .xls workbooks;
	// only Office Open XML workbooks are read
	ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")

	// ErrStrategiesExhausted means no decoding strategy produced a table
	ErrStrategiesExhausted = errors.New("all decoding strategies failed")

	errEmptyContent = errors.New("empty content")
	errNoRows       = errors.New("no tabular data found")
	errNonFinite    = errors.New("rescaling produced a non-finite value")
)

// LoadError reports a failure to read or parse an input file that is not
// recovered by a placeholder fallback
type LoadError struct {
	Path     string
	FileType domain.FileType
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s file %s: %v", e.FileType, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// decodeError marks a byte-to-text failure. The ladder skips the remaining
// strategies that share the failing encoding.
type decodeError struct {
	encoding string
	err      error
}

func (e *decodeError) Error() string {
	return fmt.Sprintf("decode as %s: %v", e.encoding, e.err)
}

func (e *decodeError) Unwrap() error { return e.err }

// StageError names the pipeline stage that failed
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
