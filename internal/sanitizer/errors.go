package sanitizer

import (
	"fmt"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

type SanitizationErrorCause string

const (
	ErrCauseMarkupParse SanitizationErrorCause = "markup cannot be parsed"
	ErrCauseNoBody      SanitizationErrorCause = "document has no body"
)

type SanitizationError struct {
	Message   string
	Retryable bool
	Cause     SanitizationErrorCause
}

func (e *SanitizationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sanitization error: %s", e.Cause)
	}
	return fmt.Sprintf("sanitization error: %s: %s", e.Cause, e.Message)
}

func (e *SanitizationError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapSanitizationErrorToMetadataCause maps sanitizer-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapSanitizationErrorToMetadataCause(err *SanitizationError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseMarkupParse, ErrCauseNoBody:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
