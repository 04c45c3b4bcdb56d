package storage

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/fileutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
)

/*
Responsibilities
- Render the export document in the requested format
- Persist it under the output directory
- Report every written file as an artifact

Output Characteristics
- One file per run: <outputDir>/<outputName>.<ext>
- Images live beside it under images/
- Overwrite-safe reruns
*/

type Sink interface {
	Write(
		outputDir string,
		outputName string,
		doc ExportDocument,
	) (WriteResult, failure.ClassifiedError)
}

// localSink carries what both writers share: the metadata sink, the hash
// algorithm and the artifact kind they report.
type localSink struct {
	metadataSink metadata.MetadataSink
	hashAlgo     hashutil.HashAlgo
	kind         metadata.ArtifactKind
	extension    string
	action       string
}

func (s *localSink) persist(outputDir string, outputName string, content []byte) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(outputDir, outputName+s.extension, content, s.hashAlgo)
	if err != nil {
		s.recordError(err)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		s.kind,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrField, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

func (s *localSink) recordError(err *StorageError) {
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		s.action,
		mapStorageErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, err.Path),
		},
	)
}

func write(
	outputDir string,
	fileName string,
	content []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, *StorageError) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return WriteResult{}, toStorageError(err, outputDir)
	}

	fullPath := filepath.Join(outputDir, fileName)
	if err := fileutil.WriteFile(fullPath, content); err != nil {
		return WriteResult{}, toStorageError(err, fullPath)
	}

	contentHash, hashErr := hashutil.HashBytes(content, hashAlgo)
	if hashErr != nil {
		// the file is written; an unknown algorithm only loses the digest
		contentHash = ""
	}
	return NewWriteResult(fullPath, contentHash, len(content)), nil
}

func toStorageError(err failure.ClassifiedError, path string) *StorageError {
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		switch fileErr.Cause {
		case fileutil.ErrCauseDiskFull:
			return &StorageError{Message: err.Error(), Retryable: true, Cause: ErrCauseDiskFull, Path: path}
		case fileutil.ErrCausePathError:
			return &StorageError{Message: err.Error(), Retryable: false, Cause: ErrCausePathError, Path: path}
		}
	}
	return &StorageError{Message: err.Error(), Retryable: false, Cause: ErrCauseWriteFailure, Path: path}
}
