package common

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"resumatch/internal/errors"
	"resumatch/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadDocument validates and reads a resume document of at most maxSize bytes
func (fp *FileProcessor) ReadDocument(filename string, maxSize int64) ([]byte, error) {
	if err := utils.ValidateInputFile(filename, maxSize); err != nil {
		switch {
		case stderrors.Is(err, utils.ErrFileTooLarge):
			return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge, err.Error(), err).
				WithContext("filename", filename)
		case stderrors.Is(err, os.ErrNotExist):
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		default:
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("Invalid file %s", filename), err)
		}
	}

	if !utils.IsDocumentFile(filename) && fp.logger != nil {
		fp.logger.Warn("File extension is not a known resume format, relying on content detection",
			"filename", filename)
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return content, nil
}

// WriteFile writes content to a file, creating the parent directory
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	if err := utils.EnsureDir(filepath.Dir(filename)); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory for: %s", filename), err)
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
