package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/limiter"
)

const (
	restPrefix      = "/wp-json"
	restRoutePrefix = "/wp-json/wp/v2/"
	jsonAccept      = "application/json"
	taxonomyPerPage = 100
)

// WordPressClient pages through the WordPress REST API of one site.
type WordPressClient struct {
	source  httpSource
	siteURL url.URL
}

func NewWordPressClient(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	siteURL url.URL,
	param ClientParam,
) WordPressClient {
	return WordPressClient{
		source:  newHTTPSource(metadataSink, rateLimiter, param),
		siteURL: siteURL,
	}
}

func (c *WordPressClient) SiteURL() url.URL {
	return c.siteURL
}

// FetchAllPosts collects every published post, embedding relations when
// the site allows it.
func (c *WordPressClient) FetchAllPosts(ctx context.Context) ([]RawItem, failure.ClassifiedError) {
	return c.fetchCollection(ctx, "posts")
}

// FetchAllPages collects every published page.
func (c *WordPressClient) FetchAllPages(ctx context.Context) ([]RawItem, failure.ClassifiedError) {
	return c.fetchCollection(ctx, "pages")
}

// CheckAPI probes the posts route. Available is false when the probe
// failed; the error explains why.
func (c *WordPressClient) CheckAPI(ctx context.Context) (APIStatus, failure.ClassifiedError) {
	target := c.route("posts", url.Values{"per_page": {"1"}})
	resp, err := c.source.get(ctx, "WordPressClient.CheckAPI", target, jsonAccept)
	if err != nil {
		status := APIStatus{Available: false}
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			status.StatusCode = fetchErr.StatusCode
		}
		return status, err
	}
	total, _ := strconv.Atoi(resp.header.Get("X-WP-Total"))
	return APIStatus{
		Available:  true,
		StatusCode: resp.statusCode,
		TotalPosts: total,
	}, nil
}

// SiteInfo reads the name and description from the /wp-json index.
func (c *WordPressClient) SiteInfo(ctx context.Context) (SiteInfo, failure.ClassifiedError) {
	target := c.siteURL
	target.Path = strings.TrimRight(target.Path, "/") + restPrefix
	target.RawQuery = ""
	resp, err := c.source.get(ctx, "WordPressClient.SiteInfo", target, jsonAccept)
	if err != nil {
		return SiteInfo{}, err
	}
	var info SiteInfo
	if decodeErr := decodeJSON(resp.body, &info); decodeErr != nil {
		return SiteInfo{}, decodeErr
	}
	return info, nil
}

func (c *WordPressClient) Categories(ctx context.Context) ([]Term, failure.ClassifiedError) {
	return c.fetchTerms(ctx, "categories", "WordPressClient.Categories")
}

func (c *WordPressClient) Tags(ctx context.Context) ([]Term, failure.ClassifiedError) {
	return c.fetchTerms(ctx, "tags", "WordPressClient.Tags")
}

func (c *WordPressClient) fetchTerms(ctx context.Context, taxonomy string, callerMethod string) ([]Term, failure.ClassifiedError) {
	target := c.route(taxonomy, url.Values{"per_page": {strconv.Itoa(taxonomyPerPage)}})
	resp, err := c.source.get(ctx, callerMethod, target, jsonAccept)
	if err != nil {
		return nil, err
	}
	terms := make([]Term, 0)
	if decodeErr := decodeJSON(resp.body, &terms); decodeErr != nil {
		return nil, decodeErr
	}
	return terms, nil
}

// fetchCollection walks page=1..N until an empty page, the advertised page
// count or the configured page limit. A failure on the first page is
// returned; a later failure ends the walk and keeps what was collected.
func (c *WordPressClient) fetchCollection(ctx context.Context, collection string) ([]RawItem, failure.ClassifiedError) {
	items := make([]RawItem, 0)
	maxPages := c.source.param.maxPages

	for page := 1; maxPages <= 0 || page <= maxPages; page++ {
		pageItems, totalPages, err := c.fetchPage(ctx, collection, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.source.metadataSink.RecordWarning(
				time.Now(),
				"fetcher",
				"WordPressClient.fetchCollection",
				metadata.CauseNetworkFailure,
				fmt.Sprintf("stopped at page %d, keeping %d %s", page, len(items), collection),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrPage, strconv.Itoa(page)),
				},
			)
			break
		}
		if len(pageItems) == 0 {
			break
		}
		items = append(items, pageItems...)
		if totalPages > 0 && page >= totalPages {
			break
		}
	}
	return items, nil
}

// fetchPage requests one page with _embed and falls back to a plain
// request when the site answers 400 to the embed flag.
func (c *WordPressClient) fetchPage(ctx context.Context, collection string, page int) ([]RawItem, int, failure.ClassifiedError) {
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(c.source.param.perPage)},
		"_embed":   {"1"},
	}
	resp, err := c.source.get(ctx, "WordPressClient.fetchPage", c.route(collection, query), jsonAccept)

	var fetchErr *FetchError
	if err != nil && errors.As(err, &fetchErr) && fetchErr.Cause == ErrCauseBadRequest {
		c.source.metadataSink.RecordWarning(
			time.Now(),
			"fetcher",
			"WordPressClient.fetchPage",
			metadata.CauseContentInvalid,
			"embed request rejected, retrying without _embed",
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPage, strconv.Itoa(page)),
			},
		)
		query.Del("_embed")
		resp, err = c.source.get(ctx, "WordPressClient.fetchPage", c.route(collection, query), jsonAccept)
	}
	if err != nil {
		return nil, 0, err
	}

	items := make([]RawItem, 0)
	if decodeErr := decodeJSON(resp.body, &items); decodeErr != nil {
		return nil, 0, decodeErr
	}
	totalPages, _ := strconv.Atoi(resp.header.Get("X-WP-TotalPages"))
	return items, totalPages, nil
}

func (c *WordPressClient) route(path string, query url.Values) url.URL {
	target := c.siteURL
	target.Path = strings.TrimRight(target.Path, "/") + restRoutePrefix + path
	target.RawQuery = query.Encode()
	return target
}

func decodeJSON(body []byte, out any) failure.ClassifiedError {
	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
		}
	}
	return nil
}
