package storage_test

import (
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/postmeta"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/storage"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/summary"
)

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	metadata.NoopSink
	recordErrorCalled    bool
	recordErrorCause     metadata.ErrorCause
	recordErrorAttrs     []metadata.Attribute
	recordArtifactCalled bool
	recordArtifactKind   metadata.ArtifactKind
	recordArtifactPath   string
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorCause = cause
	m.recordErrorAttrs = attrs
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordArtifactCalled = true
	m.recordArtifactKind = kind
	m.recordArtifactPath = path
}

func newPost(id int64, title string, date time.Time, categories ...string) storage.ExportedPost {
	meta := postmeta.PostMeta{
		ID:     id,
		Title:  title,
		Date:   date,
		Author: &postmeta.Author{Name: "Ann"},
	}
	for _, name := range categories {
		meta.Categories = append(meta.Categories, postmeta.Term{Name: name})
	}
	return storage.ExportedPost{
		Meta: meta,
		Content: extractor.ProcessedContent{
			HTML:      "<p>Body of " + title + "</p>",
			PlainText: "Body of " + title,
			Structure: []extractor.StructureNode{extractor.Paragraph{Text: "Body of " + title}},
		},
		Markdown: "Body of " + title,
	}
}

func sampleDocument() storage.ExportDocument {
	posts := []storage.ExportedPost{
		newPost(1, "First", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "News"),
		newPost(2, "Second", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "Guides", "News"),
		newPost(3, "Third", time.Date(2023, 6, 7, 0, 0, 0, 0, time.UTC)),
	}
	aggregator := summary.NewAggregator()
	for _, post := range posts {
		aggregator.Add(post.Meta, post.Content.WordCount())
	}
	return storage.ExportDocument{
		Site: storage.SiteDescriptor{
			Name: "Example Blog",
			URL:  "https://example.com",
		},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Summary:     aggregator.Summary(),
		Posts:       posts,
	}
}
