package assets

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
)

const (
	// ImagesDirName is the directory under the output root that holds
	// downloaded images.
	ImagesDirName = "images"

	optimizedPrefix  = "optimized_"
	defaultExtension = ".jpg"
	defaultPrefix    = "image"
	maxWidth         = 800
	maxHeight        = 600
	jpegQuality      = 80
)

// DownloadedAsset is one successfully acquired image. Index joins it back
// to the ImageReference (and the Image structure node) it came from.
type DownloadedAsset struct {
	Index         int    `json:"index"`
	OriginalPath  string `json:"originalPath"`
	OptimizedPath string `json:"optimizedPath,omitempty"`
	FileName      string `json:"fileName"`
	SourceURL     string `json:"sourceUrl"`
	ContentHash   string `json:"contentHash,omitempty"`
}

// LocalPath is the file exporters should reference: the optimized variant
// when one was written, the original otherwise.
func (d DownloadedAsset) LocalPath() string {
	if d.OptimizedPath != "" {
		return d.OptimizedPath
	}
	return d.OriginalPath
}

// RelativePath is LocalPath relative to the output root, with forward
// slashes, e.g. "images/optimized_post_0_1.jpg".
func (d DownloadedAsset) RelativePath() string {
	return ImagesDirName + "/" + filepath.Base(d.LocalPath())
}

// AssetFetchResult describes one completed download attempt.
type AssetFetchResult struct {
	fetchUrl    url.URL
	httpStatus  int
	duration    time.Duration
	written     int64
	contentHash string
}

func (a AssetFetchResult) URL() url.URL {
	return a.fetchUrl
}

func (a AssetFetchResult) Status() int {
	return a.httpStatus
}

func (a AssetFetchResult) Duration() time.Duration {
	return a.duration
}

func (a AssetFetchResult) Written() int64 {
	return a.written
}

func (a AssetFetchResult) ContentHash() string {
	return a.contentHash
}

// AcquireParam describes one acquisition call: where relative sources
// resolve against, where files go, and how they are named.
type AcquireParam struct {
	baseURL   url.URL
	outputDir string
	optimize  bool
	prefix    string
}

func NewAcquireParam(baseURL url.URL, outputDir string, optimize bool, prefix string) AcquireParam {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return AcquireParam{
		baseURL:   baseURL,
		outputDir: outputDir,
		optimize:  optimize,
		prefix:    prefix,
	}
}

func (p AcquireParam) BaseURL() url.URL {
	return p.baseURL
}

func (p AcquireParam) OutputDir() string {
	return p.outputDir
}

func (p AcquireParam) Optimize() bool {
	return p.optimize
}

func (p AcquireParam) Prefix() string {
	return p.prefix
}

// EngineParam holds the per-run settings of the acquisition engine.
type EngineParam struct {
	userAgent    string
	timeout      time.Duration
	maxRedirects int
	concurrency  int
	chunkPause   time.Duration
	retryParam   retry.RetryParam
	hashAlgo     hashutil.HashAlgo
	pause        func(time.Duration)
}

func NewEngineParam(
	userAgent string,
	timeout time.Duration,
	maxRedirects int,
	concurrency int,
	chunkPause time.Duration,
	retryParam retry.RetryParam,
	hashAlgo hashutil.HashAlgo,
) EngineParam {
	if concurrency < 1 {
		concurrency = 1
	}
	return EngineParam{
		userAgent:    userAgent,
		timeout:      timeout,
		maxRedirects: maxRedirects,
		concurrency:  concurrency,
		chunkPause:   chunkPause,
		retryParam:   retryParam,
		hashAlgo:     hashAlgo,
		pause:        time.Sleep,
	}
}

// WithPauser returns a copy that waits between chunks through pause
// instead of time.Sleep.
func (p EngineParam) WithPauser(pause func(time.Duration)) EngineParam {
	p.pause = pause
	return p
}

func (p EngineParam) Concurrency() int {
	return p.concurrency
}

func (p EngineParam) ChunkPause() time.Duration {
	return p.chunkPause
}

func (p EngineParam) RetryParam() retry.RetryParam {
	return p.retryParam
}
