package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/assets"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/postmeta"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/summary"
)

// Persistence

type WriteResult struct {
	path        string
	contentHash string
	size        int
}

func NewWriteResult(
	path string,
	contentHash string,
	size int,
) WriteResult {
	return WriteResult{
		path:        path,
		contentHash: contentHash,
		size:        size,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) Size() int {
	return w.size
}

// Export model

type SiteDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// ExportedPost is one fully processed post. Markdown holds the converted
// body and is only used by the Markdown writer.
type ExportedPost struct {
	Meta     postmeta.PostMeta          `json:"meta"`
	Excerpt  string                     `json:"excerpt,omitempty"`
	Content  extractor.ProcessedContent `json:"content"`
	Assets   []assets.DownloadedAsset   `json:"assets"`
	Markdown string                     `json:"-"`
}

type ExportDocument struct {
	Site        SiteDescriptor         `json:"site"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Summary     summary.ContentSummary `json:"summary"`
	Posts       []ExportedPost         `json:"posts"`
}

// SortPosts orders posts newest first, or by title when byTitle is set.
// Ties keep their fetch order.
func SortPosts(posts []ExportedPost, byTitle bool) {
	sort.SliceStable(posts, func(i, j int) bool {
		if byTitle {
			return strings.ToLower(posts[i].Meta.Title) < strings.ToLower(posts[j].Meta.Title)
		}
		return posts[i].Meta.Date.After(posts[j].Meta.Date)
	})
}

type MarkdownParam struct {
	includeTOC      bool
	includeSummary  bool
	groupByCategory bool
}

func NewMarkdownParam(includeTOC bool, includeSummary bool, groupByCategory bool) MarkdownParam {
	return MarkdownParam{
		includeTOC:      includeTOC,
		includeSummary:  includeSummary,
		groupByCategory: groupByCategory,
	}
}

func (p MarkdownParam) IncludeTOC() bool {
	return p.includeTOC
}

func (p MarkdownParam) IncludeSummary() bool {
	return p.includeSummary
}

func (p MarkdownParam) GroupByCategory() bool {
	return p.groupByCategory
}
