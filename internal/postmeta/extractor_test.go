package postmeta_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/postmeta"
)

func newExtractor() (postmeta.Extractor, *mockMetadataSink) {
	sink := &mockMetadataSink{}
	return postmeta.NewExtractor(sink), sink
}

func TestExtract_PlaceholderCategoriesWithoutEmbedded(t *testing.T) {
	extractor, sink := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{
		ID:         1,
		Categories: []int64{5, 9},
	})

	assert.Equal(t, []postmeta.Term{
		{ID: 5, Name: "Category 5", Slug: "category-5"},
		{ID: 9, Name: "Category 9", Slug: "category-9"},
	}, meta.Categories)
	assert.Equal(t, postmeta.ProvenancePlaceholder, meta.Provenance.Categories)
	require.Len(t, sink.warnings, 1)
	assert.Equal(t, metadata.CauseMetadataGap, sink.warnings[0].cause)
	assert.Equal(t, []string{"categories"}, sink.warnedFields())
}

func TestExtract_PlaceholderTags(t *testing.T) {
	extractor, _ := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{ID: 1, Tags: []int64{3}})

	assert.Equal(t, []postmeta.Term{{ID: 3, Name: "Tag 3", Slug: "tag-3"}}, meta.Tags)
	assert.Equal(t, postmeta.ProvenancePlaceholder, meta.Provenance.Tags)
}

func TestExtract_ResolvesEmbeddedRelations(t *testing.T) {
	extractor, sink := newExtractor()

	item := fetcher.RawItem{
		ID:            42,
		Title:         fetcher.Rendered{Rendered: "Q&amp;A <em>today</em>"},
		Slug:          "qa-today",
		Status:        "publish",
		Type:          "post",
		Link:          "https://example.com/qa-today/",
		Date:          "2024-03-01T08:30:00",
		Modified:      "2024-03-02T09:00:00",
		Author:        7,
		Categories:    []int64{5},
		Tags:          []int64{11},
		FeaturedMedia: 99,
		Embedded: &fetcher.Embedded{
			Author: []fetcher.EmbeddedAuthor{{ID: 7, Name: "Ann", Slug: "ann"}},
			Terms: [][]fetcher.EmbeddedTerm{
				{{ID: 5, Name: "News &amp; Events", Slug: "news", Taxonomy: "category"}},
				{{ID: 11, Name: "go", Slug: "go", Taxonomy: "post_tag"}},
			},
			FeaturedMedia: []fetcher.EmbeddedMedia{{
				ID:        99,
				SourceURL: "https://example.com/cover.jpg",
				AltText:   "Cover",
				Caption:   fetcher.Rendered{Rendered: "<p>The cover</p>\n"},
			}},
		},
	}

	meta := extractor.Extract(item)

	assert.Equal(t, "Q&A today", meta.Title)
	assert.Equal(t, "qa-today", meta.Slug)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), meta.Date)
	assert.Equal(t, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), meta.Modified)
	assert.Equal(t, &postmeta.Author{ID: 7, Name: "Ann", Slug: "ann"}, meta.Author)
	assert.Equal(t, []postmeta.Term{{ID: 5, Name: "News & Events", Slug: "news"}}, meta.Categories)
	assert.Equal(t, []postmeta.Term{{ID: 11, Name: "go", Slug: "go"}}, meta.Tags)
	assert.Equal(t, &postmeta.FeaturedImage{
		ID:      99,
		URL:     "https://example.com/cover.jpg",
		Alt:     "Cover",
		Caption: "The cover",
	}, meta.FeaturedImage)
	assert.Equal(t, postmeta.FieldProvenance{
		Author:        postmeta.ProvenanceResolved,
		Categories:    postmeta.ProvenanceResolved,
		Tags:          postmeta.ProvenanceResolved,
		FeaturedImage: postmeta.ProvenanceResolved,
	}, meta.Provenance)
	assert.Empty(t, sink.warnings)
}

func TestExtract_TermGroupsIdentifiedByTaxonomy(t *testing.T) {
	extractor, _ := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{
		Embedded: &fetcher.Embedded{
			Terms: [][]fetcher.EmbeddedTerm{
				{},
				{{ID: 2, Name: "tagged", Slug: "tagged", Taxonomy: "post_tag"}},
				{{ID: 1, Name: "Cat", Slug: "cat", Taxonomy: "category"}},
			},
		},
	})

	assert.Equal(t, []string{"Cat"}, meta.CategoryNames())
	assert.Equal(t, []string{"tagged"}, meta.TagNames())
}

func TestExtract_AuthorFallback(t *testing.T) {
	extractor, sink := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{ID: 3, Author: 12})

	assert.Equal(t, &postmeta.Author{ID: 12, Name: "Unknown Author", Slug: "unknown"}, meta.Author)
	assert.Equal(t, postmeta.ProvenancePlaceholder, meta.Provenance.Author)
	assert.Equal(t, "Unknown Author", meta.AuthorName())
	assert.Equal(t, []string{"author"}, sink.warnedFields())
}

func TestExtract_FeaturedImageFallbackDoesNotFail(t *testing.T) {
	extractor, _ := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{ID: 3, FeaturedMedia: 8})

	require.NotNil(t, meta.FeaturedImage)
	assert.Equal(t, int64(8), meta.FeaturedImage.ID)
	assert.Empty(t, meta.FeaturedImage.URL)
	assert.Equal(t, "Featured Image", meta.FeaturedImage.Alt)
	assert.Empty(t, meta.FeaturedImage.Caption)
	assert.Equal(t, postmeta.ProvenancePlaceholder, meta.Provenance.FeaturedImage)
}

func TestExtract_AbsentRelations(t *testing.T) {
	extractor, sink := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{ID: 4})

	assert.Nil(t, meta.Author)
	assert.Nil(t, meta.FeaturedImage)
	assert.Empty(t, meta.Categories)
	assert.NotNil(t, meta.Categories)
	assert.Empty(t, meta.Tags)
	assert.Equal(t, "", meta.AuthorName())
	assert.Equal(t, postmeta.ProvenanceAbsent, meta.Provenance.Author)
	assert.Empty(t, sink.warnings)
}

func TestExtract_Dates(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Time
		warns    int
	}{
		{"rest layout", "2023-12-31T23:59:59", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), 0},
		{"rfc3339", "2024-01-02T10:00:00Z", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), 0},
		{"empty", "", time.Time{}, 0},
		{"garbage", "yesterday", time.Time{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor, sink := newExtractor()

			meta := extractor.Extract(fetcher.RawItem{ID: 1, Date: tt.value})

			assert.True(t, tt.expected.Equal(meta.Date), "got %v", meta.Date)
			assert.Len(t, sink.warnings, tt.warns)
		})
	}
}

func TestExtract_FeedItem(t *testing.T) {
	extractor, _ := newExtractor()

	meta := extractor.Extract(fetcher.RawItem{
		ID:   77,
		Date: "2024-01-02T12:00:00+02:00",
		Embedded: &fetcher.Embedded{
			Author: []fetcher.EmbeddedAuthor{{Name: "Ann", Slug: "ann"}},
		},
	})

	assert.Equal(t, "Ann", meta.AuthorName())
	assert.Equal(t, postmeta.ProvenanceResolved, meta.Provenance.Author)
	assert.True(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC).Equal(meta.Date))
}
