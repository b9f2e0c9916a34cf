package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// fs is the filesystem input files are read from.
var fs afero.Fs = afero.NewOsFs()

// Sentinel errors for input file parsing.
var (
	// ErrInputFileNotFound is returned when the input file does not exist.
	ErrInputFileNotFound = errors.New("input file not found")
	// ErrInputFilePermission is returned when the input file cannot be read due to permissions.
	ErrInputFilePermission = errors.New("permission denied reading input file")
	// ErrInputFileEmpty is returned when the input file contains no values.
	ErrInputFileEmpty = errors.New("input file contains no values")
	// ErrNoValues is returned when run gets neither arguments nor an input file.
	ErrNoValues = errors.New("no values provided")
)

// InputFileError wraps input file errors with the path.
type InputFileError struct {
	Path string
	Err  error
}

func (e *InputFileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Path)
}

func (e *InputFileError) Unwrap() error {
	return e.Err
}

// ParseResult holds the result of parsing an input file.
type ParseResult struct {
	// Values in file order.
	Values []string
	// SkippedLines counts comment lines.
	SkippedLines int
	TotalLines   int
}

// ParseInputFile reads one value per line from path on fsys. Empty lines and
// lines starting with # are skipped; surrounding whitespace is trimmed.
func ParseInputFile(fsys afero.Fs, path string) (*ParseResult, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, wrapInputFileError(path, err)
	}

	lines := strings.Split(string(data), "\n")
	result := &ParseResult{TotalLines: len(lines)}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			result.SkippedLines++
			continue
		}
		result.Values = append(result.Values, trimmed)
	}

	if len(result.Values) == 0 {
		return result, &InputFileError{Path: path, Err: ErrInputFileEmpty}
	}
	return result, nil
}

// collectValues returns args, or the values of inputFile when args is empty.
func collectValues(args []string, inputFile string) ([]string, error) {
	if inputFile != "" {
		if len(args) > 0 {
			return nil, errors.New("values given both as arguments and as --input-file")
		}
		res, err := ParseInputFile(fs, inputFile)
		if err != nil {
			return nil, err
		}
		return res.Values, nil
	}
	if len(args) == 0 {
		return nil, ErrNoValues
	}
	return args, nil
}

// wrapInputFileError converts OS-level errors to domain-specific errors.
func wrapInputFileError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &InputFileError{Path: path, Err: ErrInputFileNotFound}
	}
	if errors.Is(err, os.ErrPermission) {
		return &InputFileError{Path: path, Err: ErrInputFilePermission}
	}
	return &InputFileError{Path: path, Err: err}
}
