package mdconvert_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/mdconvert"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/sanitizer"
)

func TestConvert_BasicBlocks(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "headings map directly",
			html:     "<h2>Title</h2><h3>Sub</h3>",
			contains: []string{"## Title", "### Sub"},
		},
		{
			name:     "emphasis kept",
			html:     "<p>Hello <strong>world</strong></p>",
			contains: []string{"Hello **world**"},
		},
		{
			name:     "lists",
			html:     "<ul><li>one</li><li>two</li></ul>",
			contains: []string{"- one", "- two"},
		},
		{
			name:     "code block verbatim",
			html:     "<pre><code>a  :=  1\nb := 2</code></pre>",
			contains: []string{"a  :=  1\nb := 2"},
		},
		{
			name:     "table",
			html:     "<table><thead><tr><th>A</th><th>B</th></tr></thead><tbody><tr><td>1</td><td>2</td></tr></tbody></table>",
			contains: []string{"| A", "| 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := createTestRule()

			result, err := rule.Convert(contentWithImages(tt.html), mdconvert.NewConvertParam(nil, false))

			require.Nil(t, err)
			markdown := string(result.GetMarkdownContent())
			for _, want := range tt.contains {
				assert.Contains(t, markdown, want)
			}
		})
	}
}

func TestConvert_RewritesTaggedImagesToLocalFiles(t *testing.T) {
	rule := createTestRule()
	content := contentWithImages(
		`<p>Intro</p><img src="https://example.com/a.jpg" data-image-index="0"><p>After</p>`,
		extractor.ImageReference{Index: 0, SourceURL: "https://example.com/a.jpg", AltText: "my photo"},
	)

	result, err := rule.Convert(content, mdconvert.NewConvertParam(map[int]string{0: "images/post_0_1.jpg"}, false))

	require.Nil(t, err)
	markdown := string(result.GetMarkdownContent())
	assert.Contains(t, markdown, "![my photo](images/post_0_1.jpg)")
	assert.NotContains(t, markdown, "example.com/a.jpg")
	assert.NotContains(t, markdown, "data-image-index")
	assert.Equal(t, 1, result.CountKind(mdconvert.KindLocalImage))

	refs := result.GetLinkRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, 0, refs[0].GetIndex())
	assert.Equal(t, "images/post_0_1.jpg", refs[0].GetRaw())
}

func TestConvert_MissingAssetsBecomePlaceholders(t *testing.T) {
	rule := createTestRule()
	content := contentWithImages(
		`<p>A</p><img src="/x.jpg" data-image-index="0"><img src="/y.jpg" data-image-index="1">`,
		extractor.ImageReference{Index: 0, AltText: "first"},
		extractor.ImageReference{Index: 1, AltText: "second"},
	)

	result, err := rule.Convert(content, mdconvert.NewConvertParam(map[int]string{1: "images/y.jpg"}, false))

	require.Nil(t, err)
	markdown := string(result.GetMarkdownContent())
	assert.Contains(t, markdown, "[Image: first]")
	assert.Contains(t, markdown, "![second](images/y.jpg)")
	assert.NotContains(t, markdown, "wpcrawlimage")
	assert.Equal(t, 1, result.CountKind(mdconvert.KindPlaceholder))
	assert.Equal(t, 1, result.CountKind(mdconvert.KindLocalImage))
}

func TestConvert_KeepsRemoteImagesWhenRequested(t *testing.T) {
	rule := createTestRule()
	content := contentWithImages(
		`<img src="https://example.com/a.jpg" data-image-index="0">`,
		extractor.ImageReference{Index: 0, AltText: "remote"},
	)

	result, err := rule.Convert(content, mdconvert.NewConvertParam(nil, true))

	require.Nil(t, err)
	assert.Contains(t, string(result.GetMarkdownContent()), "![remote](https://example.com/a.jpg)")
	assert.Equal(t, 1, result.CountKind(mdconvert.KindRemoteImage))
}

func TestConvert_PlaceholderIndicesDoNotCollide(t *testing.T) {
	rule := createTestRule()
	html := ""
	refs := make([]extractor.ImageReference, 0)
	for i := 0; i < 12; i++ {
		html += `<p><img src="/i.jpg" data-image-index="` + strconv.Itoa(i) + `"></p>`
		refs = append(refs, extractor.ImageReference{Index: i, AltText: "alt" + strconv.Itoa(i)})
	}

	result, err := rule.Convert(contentWithImages(html, refs...), mdconvert.NewConvertParam(nil, false))

	require.Nil(t, err)
	markdown := string(result.GetMarkdownContent())
	assert.Contains(t, markdown, "[Image: alt1]")
	assert.Contains(t, markdown, "[Image: alt10]")
	assert.Contains(t, markdown, "[Image: alt11]")
	assert.Equal(t, 12, result.CountKind(mdconvert.KindPlaceholder))
}

func TestConvert_EmptyContent(t *testing.T) {
	sink := &mockMetadataSink{}
	rule := mdconvert.NewRule(sink)

	result, err := rule.Convert(extractor.ProcessedContent{}, mdconvert.NewConvertParam(nil, false))

	require.Nil(t, err)
	assert.Empty(t, result.GetMarkdownContent())
	assert.Equal(t, 0, sink.errorCount)
}

func TestConvert_ProcessedContentEndToEnd(t *testing.T) {
	htmlSanitizer := sanitizer.NewHTMLSanitizer(&metadata.NoopSink{})
	processor := extractor.NewProcessor(&metadata.NoopSink{}, &htmlSanitizer)
	content, err := processor.Process(
		`<div class="et_pb_section"><h2>Guide</h2><p>See <a href="https://go.dev">Go</a></p><figure><img src="/a/my-photo.jpg"><figcaption>A cat</figcaption></figure></div>`,
	)
	require.Nil(t, err)

	result, convErr := createTestRule().Convert(content, mdconvert.NewConvertParam(map[int]string{0: "images/guide_0_1.jpg"}, false))

	require.Nil(t, convErr)
	markdown := string(result.GetMarkdownContent())
	assert.Contains(t, markdown, "## Guide")
	assert.Contains(t, markdown, "Go (https://go.dev)")
	assert.Contains(t, markdown, "](images/guide_0_1.jpg)")

	// anchors are already plain text, so only the image is reported
	refs := result.GetLinkRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, mdconvert.KindLocalImage, refs[0].GetKind())
}

