package storage

import (
	"encoding/json"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
)

// Compile-time interface check
var _ Sink = (*JSONWriter)(nil)

// JSONWriter writes the export document as indented JSON. Structure nodes
// carry a "type" discriminator.
type JSONWriter struct {
	sink localSink
}

func NewJSONWriter(metadataSink metadata.MetadataSink, hashAlgo hashutil.HashAlgo) JSONWriter {
	return JSONWriter{
		sink: localSink{
			metadataSink: metadataSink,
			hashAlgo:     hashAlgo,
			kind:         metadata.ArtifactJSON,
			extension:    ".json",
			action:       "JSONWriter.Write",
		},
	}
}

func (w *JSONWriter) Write(
	outputDir string,
	outputName string,
	doc ExportDocument,
) (WriteResult, failure.ClassifiedError) {
	if doc.Posts == nil {
		doc.Posts = []ExportedPost{}
	}
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodingFailed,
		}
		w.sink.recordError(storageErr)
		return WriteResult{}, storageErr
	}
	return w.sink.persist(outputDir, outputName, append(content, '\n'))
}
