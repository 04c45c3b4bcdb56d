package fetcher

import (
	"net/http"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
)

// Rendered wraps the REST API's {"rendered": "..."} fields.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// RawItem is one post or page as returned by /wp-json/wp/v2. It is treated
// as immutable once decoded.
type RawItem struct {
	ID            int64     `json:"id"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	Slug          string    `json:"slug"`
	Status        string    `json:"status"`
	Type          string    `json:"type"`
	Link          string    `json:"link"`
	Date          string    `json:"date"`
	Modified      string    `json:"modified"`
	Author        int64     `json:"author"`
	Categories    []int64   `json:"categories"`
	Tags          []int64   `json:"tags"`
	FeaturedMedia int64     `json:"featured_media"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// Embedded holds the relation objects added by the _embed query flag.
type Embedded struct {
	Author        []EmbeddedAuthor `json:"author,omitempty"`
	Terms         [][]EmbeddedTerm `json:"wp:term,omitempty"`
	FeaturedMedia []EmbeddedMedia  `json:"wp:featuredmedia,omitempty"`
}

type EmbeddedAuthor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type EmbeddedTerm struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy"`
}

type EmbeddedMedia struct {
	ID        int64    `json:"id"`
	SourceURL string   `json:"source_url"`
	AltText   string   `json:"alt_text"`
	Caption   Rendered `json:"caption"`
}

// SiteInfo is the subset of the /wp-json index the exporter uses.
type SiteInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Home        string `json:"home"`
}

type Term struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

type APIStatus struct {
	Available  bool
	StatusCode int
	TotalPosts int
}

// ClientParam configures the REST and feed clients.
type ClientParam struct {
	userAgent  string
	perPage    int
	maxPages   int
	timeout    time.Duration
	retryParam retry.RetryParam
}

func NewClientParam(
	userAgent string,
	perPage int,
	maxPages int,
	timeout time.Duration,
	retryParam retry.RetryParam,
) ClientParam {
	return ClientParam{
		userAgent:  userAgent,
		perPage:    perPage,
		maxPages:   maxPages,
		timeout:    timeout,
		retryParam: retryParam,
	}
}

func (p ClientParam) UserAgent() string {
	return p.userAgent
}

func (p ClientParam) PerPage() int {
	return p.perPage
}

func (p ClientParam) MaxPages() int {
	return p.maxPages
}

func (p ClientParam) Timeout() time.Duration {
	return p.timeout
}

func (p ClientParam) RetryParam() retry.RetryParam {
	return p.retryParam
}

// response is the raw outcome of one successful request.
type response struct {
	statusCode int
	body       []byte
	header     http.Header
}
