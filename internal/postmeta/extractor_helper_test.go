package postmeta_test

import (
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
)

type warningEvent struct {
	action string
	cause  metadata.ErrorCause
	attrs  []metadata.Attribute
}

type mockMetadataSink struct {
	metadata.NoopSink
	warnings []warningEvent
}

func (m *mockMetadataSink) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.warnings = append(m.warnings, warningEvent{
		action: action,
		cause:  cause,
		attrs:  attrs,
	})
}

func (m *mockMetadataSink) warnedFields() []string {
	fields := make([]string, 0, len(m.warnings))
	for _, w := range m.warnings {
		for _, attr := range w.attrs {
			if attr.Key == metadata.AttrField {
				fields = append(fields, attr.Value)
			}
		}
	}
	return fields
}
