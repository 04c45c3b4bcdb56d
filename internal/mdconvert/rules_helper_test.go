package mdconvert_test

import (
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/mdconvert"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
)

type mockMetadataSink struct {
	metadata.NoopSink
	errorCount int
}

func (m *mockMetadataSink) RecordError(time.Time, string, string, metadata.ErrorCause, string, []metadata.Attribute) {
	m.errorCount++
}

// createTestRule creates a StrictConversionRule with a NoopSink for testing.
func createTestRule() *mdconvert.StrictConversionRule {
	return mdconvert.NewRule(&metadata.NoopSink{})
}

func contentWithImages(htmlContent string, refs ...extractor.ImageReference) extractor.ProcessedContent {
	return extractor.ProcessedContent{
		HTML:   htmlContent,
		Images: refs,
	}
}
