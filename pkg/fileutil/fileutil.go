package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := append([]string{dir}, path...)

	target := filepath.Join(targetPath...)
	if err := os.MkdirAll(target, 0755); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      target,
		}
	}
	return nil
}

// StreamToFile copies r into a newly created file at path. A partially
// written file is removed on failure. Running out of disk space is
// reported as retryable.
func StreamToFile(path string, r io.Reader) (int64, failure.ClassifiedError) {
	file, err := os.Create(path)
	if err != nil {
		return 0, &FileError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      path,
		}
	}

	written, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		if errors.Is(copyErr, syscall.ENOSPC) {
			return written, &FileError{
				Message:   copyErr.Error(),
				Retryable: true,
				Cause:     ErrCauseDiskFull,
				Path:      path,
			}
		}
		return written, &FileError{
			Message:   copyErr.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteError,
			Path:      path,
		}
	}
	return written, nil
}

// WriteFile writes data to path, classifying failures like StreamToFile.
func WriteFile(path string, data []byte) failure.ClassifiedError {
	if err := os.WriteFile(path, data, 0644); err != nil {
		cause := ErrCauseWriteError
		retryable := false
		if errors.Is(err, syscall.ENOSPC) {
			cause = ErrCauseDiskFull
			retryable = true
		}
		return &FileError{
			Message:   err.Error(),
			Retryable: retryable,
			Cause:     cause,
			Path:      path,
		}
	}
	return nil
}
