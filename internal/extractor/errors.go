package extractor

import (
	"fmt"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

// ExtractionErrorCause names why a post body produced nothing usable.
type ExtractionErrorCause string

const (
	// the sanitized body has no element children
	ErrCauseNoContent ExtractionErrorCause = "no content"
)

type ExtractionError struct {
	Message   string
	Retryable bool
	Cause     ExtractionErrorCause
}

func (e *ExtractionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("extraction error: %s", e.Cause)
	}
	return fmt.Sprintf("extraction error: %s: %s", e.Cause, e.Message)
}

func (e *ExtractionError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapExtractionErrorToMetadataCause is for reporting only. An empty post is
// invalid content as far as the log is concerned.
func mapExtractionErrorToMetadataCause(err *ExtractionError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNoContent:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
