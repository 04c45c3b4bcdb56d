package storage

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/summary"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
)

const (
	markdownDateLayout = "2006-01-02"
	defaultSiteName    = "WordPress Site"
	uncategorized      = "Uncategorized"
	topTagLimit        = 20
)

// Compile-time interface check
var _ Sink = (*MarkdownWriter)(nil)

// MarkdownWriter renders the whole export as one Markdown document.
type MarkdownWriter struct {
	sink  localSink
	param MarkdownParam
}

func NewMarkdownWriter(
	metadataSink metadata.MetadataSink,
	hashAlgo hashutil.HashAlgo,
	param MarkdownParam,
) MarkdownWriter {
	return MarkdownWriter{
		sink: localSink{
			metadataSink: metadataSink,
			hashAlgo:     hashAlgo,
			kind:         metadata.ArtifactMarkdown,
			extension:    ".md",
			action:       "MarkdownWriter.Write",
		},
		param: param,
	}
}

func (w *MarkdownWriter) Write(
	outputDir string,
	outputName string,
	doc ExportDocument,
) (WriteResult, failure.ClassifiedError) {
	return w.sink.persist(outputDir, outputName, []byte(RenderMarkdown(doc, w.param)))
}

// RenderMarkdown builds the document: title block, optional summary,
// optional table of contents, then every post in the given order.
func RenderMarkdown(doc ExportDocument, param MarkdownParam) string {
	var b strings.Builder

	writeTitle(&b, doc)
	if param.IncludeSummary() {
		writeSummary(&b, doc.Summary)
	}
	if param.IncludeTOC() {
		writeTableOfContents(&b, doc.Posts)
	}

	b.WriteString("## Posts\n\n")
	if param.GroupByCategory() {
		position := 1
		for _, group := range groupByCategory(doc.Posts) {
			fmt.Fprintf(&b, "<a id=\"category-%s\"></a>\n\n", categoryAnchor(group.name))
			fmt.Fprintf(&b, "### %s\n\n", group.name)
			for _, post := range group.posts {
				writePost(&b, post, position)
				position++
			}
		}
	} else {
		for i, post := range doc.Posts {
			writePost(&b, post, i+1)
		}
	}

	return b.String()
}

func writeTitle(b *strings.Builder, doc ExportDocument) {
	name := doc.Site.Name
	if name == "" {
		name = defaultSiteName
	}
	b.WriteString("# WordPress Export\n\n")
	fmt.Fprintf(b, "**Site:** %s\n\n", name)
	if doc.Site.URL != "" {
		fmt.Fprintf(b, "**URL:** %s\n\n", doc.Site.URL)
	}
	fmt.Fprintf(b, "**Exported:** %s\n\n", formatDate(doc.GeneratedAt))
	fmt.Fprintf(b, "**Total posts:** %d\n\n", len(doc.Posts))
	b.WriteString("---\n\n")
}

func writeSummary(b *strings.Builder, s summary.ContentSummary) {
	b.WriteString("## Content Summary\n\n")
	b.WriteString("### Overview\n\n")
	fmt.Fprintf(b, "- **Total posts:** %d\n", s.TotalPosts)
	fmt.Fprintf(b, "- **Total words:** %d\n", s.TotalWords)
	fmt.Fprintf(b, "- **Average words per post:** %d\n", int(math.Round(s.AverageWords)))
	fmt.Fprintf(b, "- **Earliest post:** %s\n", formatDate(s.DateRange.Earliest))
	fmt.Fprintf(b, "- **Latest post:** %s\n\n", formatDate(s.DateRange.Latest))

	if len(s.Categories) > 0 {
		fmt.Fprintf(b, "### Categories (%d)\n\n", len(s.Categories))
		for _, category := range s.Categories {
			fmt.Fprintf(b, "- **%s** (%s)\n", category.Name, plural(category.Count, "post"))
		}
		b.WriteString("\n")
	}

	if len(s.Tags) > 0 {
		b.WriteString("### Popular Tags\n\n")
		for i, tag := range s.Tags {
			if i == topTagLimit {
				break
			}
			fmt.Fprintf(b, "- %s (%d)\n", tag.Name, tag.Count)
		}
		b.WriteString("\n")
	}

	if len(s.Authors) > 0 {
		b.WriteString("### Authors\n\n")
		for _, author := range s.Authors {
			fmt.Fprintf(b, "- **%s** (%s)\n", author.Name, plural(author.Count, "post"))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
}

func writeTableOfContents(b *strings.Builder, posts []ExportedPost) {
	b.WriteString("## Table of Contents\n\n")
	for i, post := range posts {
		fmt.Fprintf(b, "%d. [%s](#post-%d) - *%s*\n", i+1, post.Meta.Title, post.Meta.ID, formatDate(post.Meta.Date))
	}
	b.WriteString("\n---\n\n")
}

func writePost(b *strings.Builder, post ExportedPost, position int) {
	meta := post.Meta
	fmt.Fprintf(b, "<a id=\"post-%d\"></a>\n\n", meta.ID)
	fmt.Fprintf(b, "### %d. %s\n\n", position, meta.Title)

	author := meta.AuthorName()
	if author == "" {
		author = "Unknown"
	}
	fmt.Fprintf(b, "**Date:** %s | **Author:** %s\n\n", formatDate(meta.Date), author)

	if names := meta.CategoryNames(); len(names) > 0 {
		fmt.Fprintf(b, "**Categories:** %s\n\n", strings.Join(names, ", "))
	}
	if names := meta.TagNames(); len(names) > 0 {
		fmt.Fprintf(b, "**Tags:** %s\n\n", strings.Join(names, ", "))
	}

	if body := strings.TrimSpace(post.Markdown); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString("---\n\n")
}

type categoryGroup struct {
	name  string
	posts []ExportedPost
}

// groupByCategory buckets posts under their first category, keeping the
// order in which categories are first met.
func groupByCategory(posts []ExportedPost) []categoryGroup {
	groups := make([]categoryGroup, 0)
	positions := make(map[string]int)
	for _, post := range posts {
		name := uncategorized
		if names := post.Meta.CategoryNames(); len(names) > 0 && names[0] != "" {
			name = names[0]
		}
		i, ok := positions[name]
		if !ok {
			i = len(groups)
			positions[name] = i
			groups = append(groups, categoryGroup{name: name})
		}
		groups[i].posts = append(groups[i].posts, post)
	}
	return groups
}

func categoryAnchor(name string) string {
	anchor, err := slug.Normalize(name)
	if err != nil || anchor == "" {
		return "uncategorized"
	}
	return anchor
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format(markdownDateLayout)
}

func plural(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}
