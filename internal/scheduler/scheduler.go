package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/assets"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/config"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/mdconvert"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/postmeta"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/sanitizer"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/storage"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/summary"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/limiter"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/timeutil"
)

/*
 Exporter is the sole control-plane authority of one export run.

 - Pipeline stages detect and classify failures. Only the exporter decides
   whether a post is skipped or the whole run stops.
 - Posts are handled one at a time. Image acquisition is the only
   concurrent stage and the engine bounds it.
 - Metadata emission is observational only and MUST NOT influence
   control flow.

 Exporter Responsibilities:
 - Verify the source before fetching
 - Drive every post through metadata extraction, processing,
   acquisition and conversion
 - Fold the content summary
 - Hand the ordered document to the configured writer
 - Report final statistics
*/

type Exporter struct {
	metadataSink  metadata.MetadataSink
	finalizer     metadata.ExportFinalizer
	inspector     SiteInspector
	source        PostSource
	processor     ContentProcessor
	metaExtractor postmeta.Extractor
	acquirer      ImageAcquirer
	converter     mdconvert.ConvertRule
	writer        storage.Sink
	param         ExportParam
}

// NewExporter wires the production stack for cfg. Every component reports
// to recorder.
func NewExporter(cfg config.Config, recorder *metadata.Recorder) Exporter {
	retryParam := newRetryParam(cfg)

	var source PostSource
	// stays a nil interface for feeds
	var inspector SiteInspector
	if cfg.Source() == config.SourceFeed {
		rateLimiter, clientParam := newClientParts(cfg, retryParam)
		feedClient := fetcher.NewFeedClient(recorder, rateLimiter, cfg.FeedURL(), clientParam)
		source = &feedClient
	} else {
		restClient := NewSiteClient(cfg, recorder)
		source = &restClient
		if cfg.ContentType() == config.ContentPages {
			source = pageSource{client: &restClient}
		}
		inspector = &restClient
	}

	htmlSanitizer := sanitizer.NewHTMLSanitizer(recorder)
	processor := extractor.NewProcessor(recorder, &htmlSanitizer)
	engine := assets.NewEngine(recorder, assets.NewEngineParam(
		cfg.UserAgent(),
		cfg.AssetTimeout(),
		cfg.MaxRedirects(),
		cfg.Concurrency(),
		cfg.ChunkPause(),
		retryParam,
		cfg.HashAlgo(),
	))

	var writer storage.Sink
	if cfg.Format() == config.FormatJSON {
		jsonWriter := storage.NewJSONWriter(recorder, cfg.HashAlgo())
		writer = &jsonWriter
	} else {
		markdownWriter := storage.NewMarkdownWriter(
			recorder,
			cfg.HashAlgo(),
			storage.NewMarkdownParam(cfg.IncludeTOC(), cfg.IncludeSummary(), cfg.GroupByCategory()),
		)
		writer = &markdownWriter
	}

	return NewExporterWithDeps(
		recorder,
		recorder,
		inspector,
		source,
		&processor,
		engine,
		mdconvert.NewRule(recorder),
		writer,
		NewExportParam(
			cfg.SiteURL(),
			cfg.OutputDir(),
			cfg.OutputName(),
			cfg.DownloadImages(),
			cfg.OptimizeImages(),
			cfg.SortByTitle(),
			cfg.Format() == config.FormatMarkdown,
		),
	)
}

// NewSiteClient builds the REST client for cfg's site, paced and retried
// the same way the exporter does it.
func NewSiteClient(cfg config.Config, metadataSink metadata.MetadataSink) fetcher.WordPressClient {
	rateLimiter, clientParam := newClientParts(cfg, newRetryParam(cfg))
	return fetcher.NewWordPressClient(metadataSink, rateLimiter, cfg.SiteURL(), clientParam)
}

// newRetryParam waits 1x, 2x, ... the initial backoff between attempts.
func newRetryParam(cfg config.Config) retry.RetryParam {
	return retry.NewRetryParam(
		cfg.BackoffInitialDuration(),
		0,
		time.Now().UnixNano(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(cfg.BackoffInitialDuration(), 1, cfg.BackoffMaxDuration()),
	).WithLinearBackoff()
}

func newClientParts(cfg config.Config, retryParam retry.RetryParam) (*limiter.ConcurrentRateLimiter, fetcher.ClientParam) {
	rateLimiter := limiter.NewConcurrentRateLimiter(cfg.PageDelay(), 0, time.Now().UnixNano())
	rateLimiter.SetBackoffParam(timeutil.NewBackoffParam(cfg.BackoffInitialDuration(), 2.0, cfg.BackoffMaxDuration()))
	clientParam := fetcher.NewClientParam(
		cfg.UserAgent(),
		cfg.PerPage(),
		cfg.MaxPages(),
		cfg.FetchTimeout(),
		retryParam,
	)
	return rateLimiter, clientParam
}

// NewExporterWithDeps creates an Exporter from explicit collaborators.
// inspector may be nil when the source has no REST API to probe.
func NewExporterWithDeps(
	metadataSink metadata.MetadataSink,
	finalizer metadata.ExportFinalizer,
	inspector SiteInspector,
	source PostSource,
	processor ContentProcessor,
	acquirer ImageAcquirer,
	converter mdconvert.ConvertRule,
	writer storage.Sink,
	param ExportParam,
) Exporter {
	return Exporter{
		metadataSink:  metadataSink,
		finalizer:     finalizer,
		inspector:     inspector,
		source:        source,
		processor:     processor,
		metaExtractor: postmeta.NewExtractor(metadataSink),
		acquirer:      acquirer,
		converter:     converter,
		writer:        writer,
		param:         param,
	}
}

// Run performs one complete export. Failures of a single post skip that
// post; failures of the source, the images directory or the writer stop
// the run. Final statistics are reported in every case.
func (e *Exporter) Run(ctx context.Context) (stats ExportStats, err error) {
	startTime := time.Now()
	defer func() {
		stats.Duration = time.Since(startTime)
		e.finalizer.RecordFinalStats(
			stats.TotalPosts,
			stats.SkippedPosts,
			stats.ImagesDownloaded,
			stats.Duration,
		)
	}()

	// 1. Probe the API and read the site descriptor
	site, siteErr := e.describeSite(ctx)
	if siteErr != nil {
		return stats, siteErr
	}

	// 2. Fetch every post
	items, fetchErr := e.source.FetchAllPosts(ctx)
	if fetchErr != nil {
		return stats, fetchErr
	}

	// 3. Process posts one by one
	aggregator := summary.NewAggregator()
	posts := make([]storage.ExportedPost, 0, len(items))
	for _, item := range items {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		post, skipped, itemErr := e.exportItem(ctx, item, &stats)
		if itemErr != nil {
			return stats, itemErr
		}
		if skipped {
			stats.SkippedPosts++
			continue
		}
		aggregator.Add(post.Meta, post.Content.WordCount())
		posts = append(posts, post)
	}
	stats.TotalPosts = len(posts)

	// 4. Order and write
	storage.SortPosts(posts, e.param.sortByTitle)
	doc := storage.ExportDocument{
		Site:        site,
		GeneratedAt: time.Now().UTC(),
		Summary:     aggregator.Summary(),
		Posts:       posts,
	}
	writeResult, writeErr := e.writer.Write(e.param.outputDir, e.param.outputName, doc)
	if writeErr != nil {
		return stats, writeErr
	}
	stats.OutputPath = writeResult.Path()
	return stats, nil
}

// describeSite fails only when the API probe fails. A missing site index
// leaves the descriptor at the configured URL.
func (e *Exporter) describeSite(ctx context.Context) (storage.SiteDescriptor, failure.ClassifiedError) {
	site := storage.SiteDescriptor{URL: e.param.siteURL.String()}
	if e.inspector == nil {
		return site, nil
	}

	if _, err := e.inspector.CheckAPI(ctx); err != nil {
		return storage.SiteDescriptor{}, err
	}

	info, err := e.inspector.SiteInfo(ctx)
	if err != nil {
		e.metadataSink.RecordWarning(
			time.Now(),
			"scheduler",
			"Exporter.describeSite",
			metadata.CauseMetadataGap,
			fmt.Sprintf("site info unavailable, using defaults: %v", err),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, site.URL),
			},
		)
		return site, nil
	}

	site.Name = info.Name
	site.Description = info.Description
	if info.URL != "" {
		site.URL = info.URL
	}
	return site, nil
}

// exportItem returns skipped=true when the post cannot be processed. A
// non-nil error stops the run.
func (e *Exporter) exportItem(
	ctx context.Context,
	item fetcher.RawItem,
	stats *ExportStats,
) (storage.ExportedPost, bool, failure.ClassifiedError) {
	meta := e.metaExtractor.Extract(item)

	content, err := e.processor.Process(item.Content.Rendered)
	if err != nil {
		// the processor already recorded the cause
		e.metadataSink.RecordWarning(
			time.Now(),
			"scheduler",
			"Exporter.exportItem",
			metadata.CauseContentInvalid,
			fmt.Sprintf("post skipped: %v", err),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPostID, fmt.Sprintf("%d", item.ID)),
				metadata.NewAttr(metadata.AttrURL, item.Link),
			},
		)
		return storage.ExportedPost{}, true, nil
	}

	post := storage.ExportedPost{
		Meta:    meta,
		Excerpt: e.processor.ProcessExcerpt(item.Excerpt.Rendered),
		Content: content,
	}

	localImages := make(map[int]string)
	if e.param.downloadImages && len(content.Images) > 0 {
		stats.ImagesRequested += len(content.Images)
		downloaded, acquireErr := e.acquirer.Acquire(
			ctx,
			content.Images,
			assets.NewAcquireParam(e.param.siteURL, e.param.outputDir, e.param.optimizeImages, assetPrefix(meta.Slug)),
		)
		if acquireErr != nil {
			return storage.ExportedPost{}, false, acquireErr
		}
		// the engine reports completion order
		sort.Slice(downloaded, func(i, j int) bool {
			return downloaded[i].Index < downloaded[j].Index
		})
		stats.ImagesDownloaded += len(downloaded)
		post.Assets = downloaded
		for _, asset := range downloaded {
			localImages[asset.Index] = asset.RelativePath()
		}
	}

	if e.param.renderMarkdown {
		converted, convertErr := e.converter.Convert(content, mdconvert.NewConvertParam(localImages, !e.param.downloadImages))
		if convertErr != nil {
			// keep the post readable
			post.Markdown = content.PlainText
		} else {
			post.Markdown = string(converted.GetMarkdownContent())
		}
	}

	return post, false, nil
}

func assetPrefix(postSlug string) string {
	prefix, err := slug.Normalize(postSlug)
	if err != nil || prefix == "" {
		return "image"
	}
	return prefix
}
