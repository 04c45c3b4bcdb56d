package sanitizer_test

import (
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	errors []recordedError
}

type recordedError struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, recordedError{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

func (m *mockMetadataSink) RecordWarning(time.Time, string, string, metadata.ErrorCause, string, []metadata.Attribute) {
}

func (m *mockMetadataSink) RecordFetch(string, int, time.Duration, string, int) {}

func (m *mockMetadataSink) RecordAssetFetch(string, int, time.Duration, int) {}

func (m *mockMetadataSink) RecordArtifact(metadata.ArtifactKind, string, []metadata.Attribute) {}
