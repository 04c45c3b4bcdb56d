package extractor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
)

func TestProcess_ImageAltFromFilename(t *testing.T) {
	content := mustProcess(t, `<img src="/a/my-photo.jpg">`)

	require.Len(t, content.Images, 1)
	img := content.Images[0]
	assert.Equal(t, 0, img.Index)
	assert.Equal(t, "/a/my-photo.jpg", img.SourceURL)
	assert.Equal(t, "my photo", img.AltText)
	assert.Equal(t, "", img.OriginalAltText)
	assert.Equal(t, "", img.Caption)
}

func TestProcess_ImageIndicesAreDense(t *testing.T) {
	content := mustProcess(t, `<p><img src="a.jpg"><img alt="no source"><img src="b.jpg"></p><img src="c.jpg">`)

	require.Len(t, content.Images, 3)
	for i, img := range content.Images {
		assert.Equal(t, i, img.Index)
	}
	assert.Equal(t, "a.jpg", content.Images[0].SourceURL)
	assert.Equal(t, "b.jpg", content.Images[1].SourceURL)
	assert.Equal(t, "c.jpg", content.Images[2].SourceURL)
	assert.Contains(t, content.HTML, `data-image-index="2"`)
	assert.Equal(t, 3, strings.Count(content.HTML, "data-image-index"))
}

func TestProcess_ImageAltChain(t *testing.T) {
	longContext := strings.Repeat("word ", 50)

	tests := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "explicit alt wins",
			markup:   `<img src="/x.jpg" alt="Explicit" title="Title">`,
			expected: "Explicit",
		},
		{
			name:     "title when alt is missing",
			markup:   `<img src="/x.jpg" title="From title">`,
			expected: "From title",
		},
		{
			name:     "figure caption",
			markup:   `<figure><img src="/x.jpg"><figcaption>Sunset over the bay</figcaption></figure>`,
			expected: "Sunset over the bay",
		},
		{
			name:     "short parent context",
			markup:   `<p>Our team at the office <img src="/x.jpg"></p>`,
			expected: "Our team at the office",
		},
		{
			name:     "long parent context falls through to filename",
			markup:   `<p>` + longContext + `<img src="/img/team_photo-2024.png"></p>`,
			expected: "team photo 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := mustProcess(t, tt.markup)
			require.Len(t, content.Images, 1)
			assert.Equal(t, tt.expected, content.Images[0].AltText)
		})
	}
}

func TestProcess_ImageAltFromCaptionIsTruncated(t *testing.T) {
	caption := strings.Repeat("abcdefghij", 15)
	content := mustProcess(t, `<figure><img src="/x.jpg"><figcaption>`+caption+`</figcaption></figure>`)

	require.Len(t, content.Images, 1)
	assert.Equal(t, caption[:100], content.Images[0].AltText)
	assert.Equal(t, caption, content.Images[0].Caption)
	assert.Equal(t, caption, content.Images[0].OriginalCaption)
}

func TestProcess_ImageCaptionFromFollowingParagraph(t *testing.T) {
	t.Run("direct sibling", func(t *testing.T) {
		content := mustProcess(t, `<img src="/x.jpg" alt="a"><p>Photo by Jane</p>`)
		require.Len(t, content.Images, 1)
		assert.Equal(t, "Photo by Jane", content.Images[0].Caption)
		assert.Equal(t, "", content.Images[0].OriginalCaption)
	})

	t.Run("wrapped image", func(t *testing.T) {
		content := mustProcess(t, `<p><img src="/x.jpg" alt="a"></p><p>Credit line</p>`)
		require.Len(t, content.Images, 1)
		assert.Equal(t, "Credit line", content.Images[0].Caption)
	})

	t.Run("paragraph too long", func(t *testing.T) {
		long := strings.Repeat("x", 300)
		content := mustProcess(t, `<img src="/x.jpg" alt="a"><p>`+long+`</p>`)
		require.Len(t, content.Images, 1)
		assert.Equal(t, "", content.Images[0].Caption)
	})
}

func TestProcess_ImageOriginalAltKept(t *testing.T) {
	content := mustProcess(t, `<img src="/x.jpg" alt="  spaced   alt ">`)

	require.Len(t, content.Images, 1)
	assert.Equal(t, "spaced alt", content.Images[0].AltText)
	assert.Equal(t, "  spaced   alt ", content.Images[0].OriginalAltText)
}

func TestProcess_Deterministic(t *testing.T) {
	markup := `<h2>T</h2><figure><img src="/a.jpg"><figcaption>A</figcaption></figure>` +
		`<p>text <a href="/l">link</a></p><img src="/b.jpg">`

	first := mustProcess(t, markup)
	second := mustProcess(t, markup)

	assert.Equal(t, first.Images, second.Images)
	assert.Equal(t, first.Structure, second.Structure)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestProcess_ImageSourceWithSpacesIsKept(t *testing.T) {
	content := mustProcess(t, `<p><img src="/wp-content/uploads/my photo.jpg"></p>`)

	require.Len(t, content.Images, 1)
	assert.Equal(t, "/wp-content/uploads/my%20photo.jpg", content.Images[0].SourceURL)
	assert.Equal(t, "my photo", content.Images[0].AltText)
	require.Len(t, content.Structure, 1)
	assert.Equal(t, extractor.KindImage, content.Structure[0].Kind())
}
