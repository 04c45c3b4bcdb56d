package assets

import (
	"fmt"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

type AssetsErrorCause string

const (
	ErrCauseUnresolvableSource    AssetsErrorCause = "unresolvable source"
	ErrCauseNetworkFailure        AssetsErrorCause = "network failure"
	ErrCauseHTTPStatus            AssetsErrorCause = "unexpected http status"
	ErrCauseReadResponseBodyError AssetsErrorCause = "failed to read response body"
	ErrCausePathError             AssetsErrorCause = "path error"
	ErrCauseWriteFailure          AssetsErrorCause = "write failure"
	ErrCauseDiskFull              AssetsErrorCause = "disk full"
	ErrCauseOptimizationFailure   AssetsErrorCause = "optimization failure"
)

type AssetsError struct {
	Message    string
	Retryable  bool
	Cause      AssetsErrorCause
	StatusCode int
}

func (e *AssetsError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("assets error: %s", e.Cause)
	}
	return fmt.Sprintf("assets error: %s: %s", e.Cause, e.Message)
}

func (e *AssetsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AssetsError) IsRetryable() bool {
	return e.Retryable
}

// mapAssetsErrorToMetadataCause maps assets-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapAssetsErrorToMetadataCause(err *AssetsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCauseHTTPStatus, ErrCauseReadResponseBodyError:
		return metadata.CauseNetworkFailure
	case ErrCauseUnresolvableSource, ErrCauseOptimizationFailure:
		return metadata.CauseContentInvalid
	case ErrCausePathError, ErrCauseWriteFailure, ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
