package extractor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/sanitizer"
)

// mockMetadataSink is a test spy that captures recorded errors
type mockMetadataSink struct {
	metadata.NoopSink
	errors []recordedError
}

type recordedError struct {
	PackageName string
	Action      string
	Cause       metadata.ErrorCause
	ErrorString string
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	errorString string,
	attrs []metadata.Attribute,
) {
	m.errors = append(m.errors, recordedError{
		PackageName: packageName,
		Action:      action,
		Cause:       cause,
		ErrorString: errorString,
	})
}

func setupProcessor() (*extractor.Processor, *mockMetadataSink) {
	sink := &mockMetadataSink{}
	s := sanitizer.NewHTMLSanitizer(sink)
	p := extractor.NewProcessor(sink, &s)
	return &p, sink
}

func mustProcess(t *testing.T, markup string) extractor.ProcessedContent {
	t.Helper()
	p, _ := setupProcessor()
	content, err := p.Process(markup)
	require.Nil(t, err)
	return content
}
