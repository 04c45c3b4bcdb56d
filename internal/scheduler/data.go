package scheduler

import (
	"context"
	"net/url"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/assets"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

// ExportStats summarizes one finished run.
type ExportStats struct {
	TotalPosts       int
	SkippedPosts     int
	ImagesRequested  int
	ImagesDownloaded int
	OutputPath       string
	Duration         time.Duration
}

// PostSource yields every post of a site. Implemented by the REST and feed
// clients.
type PostSource interface {
	FetchAllPosts(ctx context.Context) ([]fetcher.RawItem, failure.ClassifiedError)
}

// pageSource runs the pages of a site through the post pipeline.
type pageSource struct {
	client *fetcher.WordPressClient
}

func (s pageSource) FetchAllPosts(ctx context.Context) ([]fetcher.RawItem, failure.ClassifiedError) {
	return s.client.FetchAllPages(ctx)
}

// SiteInspector is only available for REST sources.
type SiteInspector interface {
	CheckAPI(ctx context.Context) (fetcher.APIStatus, failure.ClassifiedError)
	SiteInfo(ctx context.Context) (fetcher.SiteInfo, failure.ClassifiedError)
}

type ContentProcessor interface {
	Process(markup string) (extractor.ProcessedContent, failure.ClassifiedError)
	ProcessExcerpt(markup string) string
}

type ImageAcquirer interface {
	Acquire(
		ctx context.Context,
		refs []extractor.ImageReference,
		param assets.AcquireParam,
	) ([]assets.DownloadedAsset, failure.ClassifiedError)
}

var (
	_ PostSource       = (*fetcher.WordPressClient)(nil)
	_ PostSource       = (*fetcher.FeedClient)(nil)
	_ SiteInspector    = (*fetcher.WordPressClient)(nil)
	_ ContentProcessor = (*extractor.Processor)(nil)
	_ ImageAcquirer    = (*assets.Engine)(nil)
)

type ExportParam struct {
	siteURL        url.URL
	outputDir      string
	outputName     string
	downloadImages bool
	optimizeImages bool
	sortByTitle    bool
	renderMarkdown bool
}

func NewExportParam(
	siteURL url.URL,
	outputDir string,
	outputName string,
	downloadImages bool,
	optimizeImages bool,
	sortByTitle bool,
	renderMarkdown bool,
) ExportParam {
	return ExportParam{
		siteURL:        siteURL,
		outputDir:      outputDir,
		outputName:     outputName,
		downloadImages: downloadImages,
		optimizeImages: optimizeImages,
		sortByTitle:    sortByTitle,
		renderMarkdown: renderMarkdown,
	}
}

func (p ExportParam) SiteURL() url.URL {
	return p.siteURL
}

func (p ExportParam) OutputDir() string {
	return p.outputDir
}

func (p ExportParam) OutputName() string {
	return p.outputName
}
