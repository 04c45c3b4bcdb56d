package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/fileutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/urlutil"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities
- Resolve image sources against the item's origin
- Download images locally under bounded concurrency
- Retry failed downloads with linear backoff
- Optionally scale and re-encode downloaded images

Asset Policies
- Data URIs and unparsable sources are skipped without retry
- Filenames are unique per engine: <prefix>_<index>_<seq><ext>
- A failed reference never cancels its siblings
- Missing assets are reported as warnings, never fatal
*/

// Engine turns image references into files under <outputDir>/images.
// One Engine can serve many items; its sequence counter keeps filenames
// unique across all of them.
type Engine struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	param        EngineParam
	seq          atomic.Int64
}

func NewEngine(metadataSink metadata.MetadataSink, param EngineParam) *Engine {
	maxRedirects := param.maxRedirects
	return &Engine{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: param.timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		param: param,
	}
}

// Acquire downloads every reference in chunks of the configured width,
// pausing between chunks. Results arrive in completion order; each carries
// the Index of its reference. The only returned error is a failure to
// create the images directory.
func (e *Engine) Acquire(
	ctx context.Context,
	refs []extractor.ImageReference,
	acquireParam AcquireParam,
) ([]DownloadedAsset, failure.ClassifiedError) {
	if len(refs) == 0 {
		return []DownloadedAsset{}, nil
	}

	imagesDir := filepath.Join(acquireParam.OutputDir(), ImagesDirName)
	if err := fileutil.EnsureDir(imagesDir); err != nil {
		assetsErr := &AssetsError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
		e.metadataSink.RecordError(
			time.Now(),
			"assets",
			"Engine.Acquire",
			mapAssetsErrorToMetadataCause(assetsErr),
			assetsErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, imagesDir),
			},
		)
		return nil, assetsErr
	}

	results := make(chan DownloadedAsset, len(refs))
	chunkSize := e.param.concurrency

	for start := 0; start < len(refs); start += chunkSize {
		end := min(start+chunkSize, len(refs))

		var g errgroup.Group
		g.SetLimit(chunkSize)
		for _, ref := range refs[start:end] {
			g.Go(func() error {
				if asset, ok := e.acquireOne(ctx, ref, imagesDir, acquireParam); ok {
					results <- asset
				}
				// failures are absorbed so siblings always run to completion
				return nil
			})
		}
		_ = g.Wait()

		if end < len(refs) && e.param.chunkPause > 0 {
			e.param.pause(e.param.chunkPause)
		}
	}
	close(results)

	downloaded := make([]DownloadedAsset, 0, len(refs))
	for asset := range results {
		downloaded = append(downloaded, asset)
	}
	return downloaded, nil
}

func (e *Engine) acquireOne(
	ctx context.Context,
	ref extractor.ImageReference,
	imagesDir string,
	acquireParam AcquireParam,
) (DownloadedAsset, bool) {
	source, err := urlutil.ResolveAgainstOrigin(ref.SourceURL, acquireParam.BaseURL())
	if err != nil {
		e.recordWarning(ref, &AssetsError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnresolvableSource,
		})
		return DownloadedAsset{}, false
	}

	fileName := e.buildFileName(acquireParam.Prefix(), ref.Index, source)
	originalPath := filepath.Join(imagesDir, fileName)

	startTime := time.Now()
	result := retry.Retry(e.param.retryParam, func() (AssetFetchResult, failure.ClassifiedError) {
		return e.download(ctx, source, originalPath)
	})

	retryCount := max(result.Attempts()-1, 0)
	status := 0
	if result.IsSuccess() {
		status = result.Value().Status()
	} else {
		var assetsErr *AssetsError
		if errors.As(result.Err(), &assetsErr) {
			status = assetsErr.StatusCode
		}
	}
	e.metadataSink.RecordAssetFetch(source.String(), status, time.Since(startTime), retryCount)

	if result.IsFailure() {
		e.recordWarning(ref, result.Err())
		return DownloadedAsset{}, false
	}

	asset := DownloadedAsset{
		Index:        ref.Index,
		OriginalPath: originalPath,
		FileName:     fileName,
		SourceURL:    source.String(),
		ContentHash:  result.Value().ContentHash(),
	}

	if acquireParam.Optimize() {
		optimizedPath := filepath.Join(imagesDir, optimizedPrefix+fileName)
		if err := optimizeImage(originalPath, optimizedPath); err != nil {
			e.recordWarning(ref, err)
		} else {
			asset.OptimizedPath = optimizedPath
		}
	}

	e.metadataSink.RecordArtifact(
		metadata.ArtifactAsset,
		asset.LocalPath(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrAssetURL, asset.SourceURL),
			metadata.NewAttr(metadata.AttrAssetIndex, strconv.Itoa(ref.Index)),
		},
	)
	return asset, true
}

// download streams one response body to destPath while hashing it. Every
// failure is retryable: the engine retries network errors and non-2xx
// answers alike.
func (e *Engine) download(ctx context.Context, source url.URL, destPath string) (AssetFetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.String(), nil)
	if err != nil {
		return AssetFetchResult{}, &AssetsError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseUnresolvableSource,
		}
	}
	for key, value := range assetRequestHeaders(e.param.userAgent) {
		req.Header.Set(key, value)
	}

	startTime := time.Now()
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return AssetFetchResult{}, &AssetsError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: ctx.Err() == nil,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return AssetFetchResult{}, &AssetsError{
			Message:    fmt.Sprintf("status %d", resp.StatusCode),
			Retryable:  true,
			Cause:      ErrCauseHTTPStatus,
			StatusCode: resp.StatusCode,
		}
	}

	var body io.Reader = resp.Body
	hasher, hashErr := hashutil.NewHasher(e.param.hashAlgo)
	if hashErr == nil {
		body = io.TeeReader(resp.Body, hasher)
	}

	written, writeErr := fileutil.StreamToFile(destPath, body)
	if writeErr != nil {
		return AssetFetchResult{}, classifyWriteError(writeErr, resp.StatusCode)
	}

	result := AssetFetchResult{
		fetchUrl:   source,
		httpStatus: resp.StatusCode,
		duration:   time.Since(startTime),
		written:    written,
	}
	if hasher != nil {
		result.contentHash = hashutil.Sum(hasher)
	}
	return result, nil
}

// classifyWriteError separates body read failures from local write
// failures; both are retried.
func classifyWriteError(err failure.ClassifiedError, statusCode int) *AssetsError {
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		cause := ErrCauseWriteFailure
		switch fileErr.Cause {
		case fileutil.ErrCauseDiskFull:
			cause = ErrCauseDiskFull
		case fileutil.ErrCausePathError:
			cause = ErrCausePathError
		}
		return &AssetsError{
			Message:    fileErr.Error(),
			Retryable:  true,
			Cause:      cause,
			StatusCode: statusCode,
		}
	}
	return &AssetsError{
		Message:    err.Error(),
		Retryable:  true,
		Cause:      ErrCauseReadResponseBodyError,
		StatusCode: statusCode,
	}
}

func (e *Engine) buildFileName(prefix string, index int, source url.URL) string {
	ext := "." + fileutil.GetFileExtension(path.Base(source.Path))
	if ext == "." || len(ext) > 6 || strings.ContainsAny(ext, " %") {
		ext = defaultExtension
	}
	return fmt.Sprintf("%s_%d_%d%s", prefix, index, e.seq.Add(1), strings.ToLower(ext))
}

func (e *Engine) recordWarning(ref extractor.ImageReference, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var retryErr *retry.RetryError
	var assetsErr *AssetsError
	switch {
	case errors.As(err, &retryErr):
		cause = metadata.CauseRetryFailure
	case errors.As(err, &assetsErr):
		cause = mapAssetsErrorToMetadataCause(assetsErr)
	}
	e.metadataSink.RecordWarning(
		time.Now(),
		"assets",
		"Engine.Acquire",
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrAssetURL, ref.SourceURL),
			metadata.NewAttr(metadata.AttrAssetIndex, strconv.Itoa(ref.Index)),
		},
	)
}

func assetRequestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "image/webp,image/apng,image/*,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	}
}
