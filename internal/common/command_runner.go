package common

import (
	"context"
	"path/filepath"

	"resumatch/internal/analysis"
	"resumatch/internal/errors"
)

// DocumentOperation turns one uploaded resume into a command result.
type DocumentOperation[Output any] func(ctx context.Context, upload analysis.Upload) (Output, error)

// RunDocumentCommand encapsulates the common logic for file-based CLI commands:
// read the resume, run the operation and write the formatted result.
func RunDocumentCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	path string,
	maxFileSize int64,
	operation DocumentOperation[Output],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	data, err := fileProcessor.ReadDocument(path, maxFileSize)
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Debug("Read resume document", "file", path, "bytes", len(data))
	}

	result, err := operation(ctx, analysis.Upload{Filename: filepath.Base(path), Data: data})
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
