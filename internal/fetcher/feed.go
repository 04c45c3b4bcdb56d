package fetcher

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/mmcdole/gofeed"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/limiter"
	"lukechampine.com/blake3"
)

const (
	feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"
	// feed dates keep their zone; postmeta accepts RFC3339 next to the REST layout
	feedDateLayout = time.RFC3339
)

// FeedClient reads posts from an RSS or Atom feed when the REST API is
// disabled. Feed items carry far less data than REST items: the author and
// categories are embedded by name only and there is no featured media.
type FeedClient struct {
	source  httpSource
	feedURL url.URL
}

func NewFeedClient(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	feedURL url.URL,
	param ClientParam,
) FeedClient {
	return FeedClient{
		source:  newHTTPSource(metadataSink, rateLimiter, param),
		feedURL: feedURL,
	}
}

func (c *FeedClient) FeedURL() url.URL {
	return c.feedURL
}

// FetchAllPosts downloads the feed once and converts its items.
func (c *FeedClient) FetchAllPosts(ctx context.Context) ([]RawItem, failure.ClassifiedError) {
	resp, err := c.source.get(ctx, "FeedClient.FetchAllPosts", c.feedURL, feedAccept)
	if err != nil {
		return nil, err
	}

	feed, parseErr := gofeed.NewParser().Parse(bytes.NewReader(resp.body))
	if parseErr != nil {
		fetchErr := &FetchError{
			Message:    parseErr.Error(),
			Retryable:  false,
			Cause:      ErrCauseDecodeFailure,
			StatusCode: resp.statusCode,
		}
		c.source.recordError("FeedClient.FetchAllPosts", c.feedURL, fetchErr)
		return nil, fetchErr
	}

	items := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, feedItemToRaw(item))
	}
	return items, nil
}

func feedItemToRaw(item *gofeed.Item) RawItem {
	key := strings.TrimSpace(item.GUID)
	if key == "" {
		key = strings.TrimSpace(item.Link)
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	published := pickTime(item.PublishedParsed, item.UpdatedParsed)
	modified := pickTime(item.UpdatedParsed, item.PublishedParsed)

	raw := RawItem{
		ID:       feedItemID(key),
		Title:    Rendered{Rendered: strings.TrimSpace(item.Title)},
		Content:  Rendered{Rendered: content},
		Excerpt:  Rendered{Rendered: item.Description},
		Slug:     slugFromLink(item.Link),
		Status:   "publish",
		Type:     "post",
		Link:     strings.TrimSpace(item.Link),
		Date:     formatFeedTime(published),
		Modified: formatFeedTime(modified),
	}

	embedded := &Embedded{}
	if name := authorName(item); name != "" {
		embedded.Author = []EmbeddedAuthor{{Name: name, Slug: normalizeSlug(name)}}
	}
	if len(item.Categories) > 0 {
		terms := make([]EmbeddedTerm, 0, len(item.Categories))
		for _, category := range item.Categories {
			category = strings.TrimSpace(category)
			if category == "" {
				continue
			}
			terms = append(terms, EmbeddedTerm{
				ID:       feedItemID("category:" + category),
				Name:     category,
				Slug:     normalizeSlug(category),
				Taxonomy: "category",
			})
		}
		if len(terms) > 0 {
			embedded.Terms = [][]EmbeddedTerm{terms}
		}
	}
	if len(embedded.Author) > 0 || len(embedded.Terms) > 0 {
		raw.Embedded = embedded
	}
	return raw
}

// feedItemID derives a stable positive id from the item key.
func feedItemID(key string) int64 {
	sum := blake3.Sum256([]byte(key))
	return int64(binary.BigEndian.Uint64(sum[:8]) & math.MaxInt64)
}

// slugFromLink returns the last non-empty path segment of link.
func slugFromLink(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}

func normalizeSlug(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil {
		return ""
	}
	return normalized
}

func authorName(item *gofeed.Item) string {
	for _, person := range item.Authors {
		if person != nil && strings.TrimSpace(person.Name) != "" {
			return strings.TrimSpace(person.Name)
		}
	}
	if item.Author != nil {
		if item.Author.Name != "" {
			return strings.TrimSpace(item.Author.Name)
		}
		return strings.TrimSpace(item.Author.Email)
	}
	return ""
}

func pickTime(a, b *time.Time) time.Time {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return time.Time{}
}

func formatFeedTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(feedDateLayout)
}
