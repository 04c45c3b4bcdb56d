package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/urlutil"
	"gopkg.in/yaml.v3"
)

type Source string

const (
	SourceREST Source = "rest"
	SourceFeed Source = "feed"
)

type ContentType string

const (
	ContentPosts ContentType = "posts"
	ContentPages ContentType = "pages"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	//===============
	// Site
	//===============
	// Root of the WordPress site, e.g. https://example.com
	siteURL url.URL
	// Parse failure of the raw site URL, reported by Build
	siteURLErr error
	// Where posts come from: the REST API or the RSS/Atom feed
	source Source
	// Feed location. Empty means <site>/feed
	feedURL    url.URL
	feedURLErr error
	// Pages are only listed by the REST API
	contentType ContentType

	//===============
	// Output
	//===============
	outputDir string
	// File name without extension
	outputName      string
	format          Format
	includeTOC      bool
	includeSummary  bool
	groupByCategory bool
	// Posts are sorted newest first unless set
	sortByTitle    bool
	downloadImages bool
	// Resize downloaded images to fit 800x600 and re-encode as JPEG
	optimizeImages bool

	//===============
	// REST fetching
	//===============
	// Items per listing page, the API caps it at 100
	perPage int
	// Minimum pause between two listing pages
	pageDelay time.Duration
	// 0 means no limit
	maxPages int
	// Timeout of a single API or feed request
	fetchTimeout time.Duration

	//===============
	// Asset acquisition
	//===============
	assetTimeout time.Duration
	maxRedirects int
	// Width of one download chunk
	concurrency int
	// Pause between two download chunks
	chunkPause time.Duration

	//===============
	// Retry
	//===============
	maxAttempt             int
	backoffInitialDuration time.Duration
	backoffMaxDuration     time.Duration

	//===============
	// Other
	//===============
	userAgent string
	hashAlgo  hashutil.HashAlgo
	logFormat string
	logLevel  string
}

type configDTO struct {
	SiteURL                string        `json:"siteUrl" yaml:"siteUrl"`
	Source                 string        `json:"source,omitempty" yaml:"source,omitempty"`
	FeedURL                string        `json:"feedUrl,omitempty" yaml:"feedUrl,omitempty"`
	ContentType            string        `json:"type,omitempty" yaml:"type,omitempty"`
	OutputDir              string        `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	OutputName             string        `json:"outputName,omitempty" yaml:"outputName,omitempty"`
	Format                 string        `json:"format,omitempty" yaml:"format,omitempty"`
	IncludeTOC             *bool         `json:"toc,omitempty" yaml:"toc,omitempty"`
	IncludeSummary         *bool         `json:"summary,omitempty" yaml:"summary,omitempty"`
	GroupByCategory        bool          `json:"groupByCategory,omitempty" yaml:"groupByCategory,omitempty"`
	SortByTitle            bool          `json:"sortByTitle,omitempty" yaml:"sortByTitle,omitempty"`
	DownloadImages         *bool         `json:"downloadImages,omitempty" yaml:"downloadImages,omitempty"`
	OptimizeImages         bool          `json:"optimizeImages,omitempty" yaml:"optimizeImages,omitempty"`
	PerPage                int           `json:"perPage,omitempty" yaml:"perPage,omitempty"`
	PageDelay              time.Duration `json:"pageDelay,omitempty" yaml:"pageDelay,omitempty"`
	MaxPages               int           `json:"maxPages,omitempty" yaml:"maxPages,omitempty"`
	FetchTimeout           time.Duration `json:"fetchTimeout,omitempty" yaml:"fetchTimeout,omitempty"`
	AssetTimeout           time.Duration `json:"assetTimeout,omitempty" yaml:"assetTimeout,omitempty"`
	MaxRedirects           int           `json:"maxRedirects,omitempty" yaml:"maxRedirects,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ChunkPause             time.Duration `json:"chunkPause,omitempty" yaml:"chunkPause,omitempty"`
	MaxAttempt             int           `json:"maxAttempt,omitempty" yaml:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	HashAlgo               string        `json:"hashAlgo,omitempty" yaml:"hashAlgo,omitempty"`
	LogFormat              string        `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
	LogLevel               string        `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault(dto.SiteURL)

	// Only override defaults where the file provides a non-zero value
	if dto.Source != "" {
		builder.WithSource(Source(dto.Source))
	}
	if dto.FeedURL != "" {
		builder.WithFeedURL(dto.FeedURL)
	}
	if dto.ContentType != "" {
		builder.WithContentType(ContentType(dto.ContentType))
	}
	if dto.OutputDir != "" {
		builder.WithOutputDir(dto.OutputDir)
	}
	if dto.OutputName != "" {
		builder.WithOutputName(dto.OutputName)
	}
	if dto.Format != "" {
		builder.WithFormat(Format(dto.Format))
	}
	// Booleans that default to true are pointers so that false can be told apart from unset
	if dto.IncludeTOC != nil {
		builder.WithIncludeTOC(*dto.IncludeTOC)
	}
	if dto.IncludeSummary != nil {
		builder.WithIncludeSummary(*dto.IncludeSummary)
	}
	if dto.DownloadImages != nil {
		builder.WithDownloadImages(*dto.DownloadImages)
	}
	builder.WithGroupByCategory(dto.GroupByCategory)
	builder.WithSortByTitle(dto.SortByTitle)
	builder.WithOptimizeImages(dto.OptimizeImages)

	if dto.PerPage != 0 {
		builder.WithPerPage(dto.PerPage)
	}
	if dto.PageDelay != 0 {
		builder.WithPageDelay(dto.PageDelay)
	}
	if dto.MaxPages != 0 {
		builder.WithMaxPages(dto.MaxPages)
	}
	if dto.FetchTimeout != 0 {
		builder.WithFetchTimeout(dto.FetchTimeout)
	}
	if dto.AssetTimeout != 0 {
		builder.WithAssetTimeout(dto.AssetTimeout)
	}
	if dto.MaxRedirects != 0 {
		builder.WithMaxRedirects(dto.MaxRedirects)
	}
	if dto.Concurrency != 0 {
		builder.WithConcurrency(dto.Concurrency)
	}
	if dto.ChunkPause != 0 {
		builder.WithChunkPause(dto.ChunkPause)
	}
	if dto.MaxAttempt != 0 {
		builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMaxDuration != 0 {
		builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.HashAlgo != "" {
		builder.WithHashAlgo(hashutil.HashAlgo(dto.HashAlgo))
	}
	if dto.LogFormat != "" {
		builder.WithLogFormat(dto.LogFormat)
	}
	if dto.LogLevel != "" {
		builder.WithLogLevel(dto.LogLevel)
	}

	return builder.Build()
}

// WithConfigFile loads a .json, .yaml or .yml file. Durations are
// nanoseconds in JSON and Go duration strings ("500ms") in YAML.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(configContent, &cfgDTO)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a builder for the given site with default values for
// every other field. A missing scheme defaults to https.
func WithDefault(siteURL string) *Config {
	defaultConfig := Config{
		source:                 SourceREST,
		contentType:            ContentPosts,
		outputDir:              "./output",
		outputName:             "wordpress-export",
		format:                 FormatMarkdown,
		includeTOC:             true,
		includeSummary:         true,
		groupByCategory:        false,
		sortByTitle:            false,
		downloadImages:         true,
		optimizeImages:         false,
		perPage:                50,
		pageDelay:              100 * time.Millisecond,
		maxPages:               0,
		fetchTimeout:           30 * time.Second,
		assetTimeout:           10 * time.Second,
		maxRedirects:           5,
		concurrency:            3,
		chunkPause:             500 * time.Millisecond,
		maxAttempt:             3,
		backoffInitialDuration: time.Second,
		backoffMaxDuration:     10 * time.Second,
		userAgent:              defaultUserAgent,
		hashAlgo:               hashutil.HashAlgoSHA256,
		logFormat:              "text",
		logLevel:               "info",
	}
	return defaultConfig.WithSiteURL(siteURL)
}

func (c *Config) WithSiteURL(raw string) *Config {
	c.siteURL, c.siteURLErr = urlutil.ParseSiteURL(raw)
	return c
}

func (c *Config) WithSource(source Source) *Config {
	c.source = source
	return c
}

func (c *Config) WithFeedURL(raw string) *Config {
	if strings.TrimSpace(raw) == "" {
		c.feedURL, c.feedURLErr = url.URL{}, nil
		return c
	}
	parsed, err := url.Parse(urlutil.EnsureScheme(raw))
	if err != nil {
		c.feedURL, c.feedURLErr = url.URL{}, err
		return c
	}
	c.feedURL, c.feedURLErr = *parsed, nil
	return c
}

func (c *Config) WithContentType(contentType ContentType) *Config {
	c.contentType = contentType
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithOutputName(name string) *Config {
	c.outputName = name
	return c
}

func (c *Config) WithFormat(format Format) *Config {
	c.format = format
	return c
}

func (c *Config) WithIncludeTOC(include bool) *Config {
	c.includeTOC = include
	return c
}

func (c *Config) WithIncludeSummary(include bool) *Config {
	c.includeSummary = include
	return c
}

func (c *Config) WithGroupByCategory(group bool) *Config {
	c.groupByCategory = group
	return c
}

func (c *Config) WithSortByTitle(byTitle bool) *Config {
	c.sortByTitle = byTitle
	return c
}

func (c *Config) WithDownloadImages(download bool) *Config {
	c.downloadImages = download
	return c
}

func (c *Config) WithOptimizeImages(optimize bool) *Config {
	c.optimizeImages = optimize
	return c
}

func (c *Config) WithPerPage(perPage int) *Config {
	c.perPage = perPage
	return c
}

func (c *Config) WithPageDelay(delay time.Duration) *Config {
	c.pageDelay = delay
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithFetchTimeout(timeout time.Duration) *Config {
	c.fetchTimeout = timeout
	return c
}

func (c *Config) WithAssetTimeout(timeout time.Duration) *Config {
	c.assetTimeout = timeout
	return c
}

func (c *Config) WithMaxRedirects(redirects int) *Config {
	c.maxRedirects = redirects
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithChunkPause(pause time.Duration) *Config {
	c.chunkPause = pause
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

// Build validates the accumulated values and returns an immutable Config.
// Every invalid field is reported at once.
func (c *Config) Build() (Config, error) {
	errs := validation.Errors{
		"siteUrl": validateParsedURL(c.siteURL, c.siteURLErr),
		"feedUrl": c.feedURLErr,
		"source": validation.Validate(string(c.source),
			validation.Required,
			validation.In(string(SourceREST), string(SourceFeed)),
		),
		"type": validation.Validate(string(c.contentType),
			validation.Required,
			validation.In(string(ContentPosts), string(ContentPages)),
			validation.When(c.source == SourceFeed, validation.In(string(ContentPosts))),
		),
		"format": validation.Validate(string(c.format),
			validation.Required,
			validation.In(string(FormatMarkdown), string(FormatJSON)),
		),
		"outputDir":    validation.Validate(c.outputDir, validation.Required),
		"outputName":   validation.Validate(c.outputName, validation.Required),
		"perPage":      validation.Validate(c.perPage, validation.Required, validation.Min(1), validation.Max(100)),
		"maxPages":     validation.Validate(c.maxPages, validation.Min(0)),
		"maxRedirects": validation.Validate(c.maxRedirects, validation.Min(0)),
		"concurrency":  validation.Validate(c.concurrency, validation.Required, validation.Min(1)),
		"maxAttempt":   validation.Validate(c.maxAttempt, validation.Required, validation.Min(1)),
		"assetTimeout": validation.Validate(c.assetTimeout, validation.Required),
		"fetchTimeout": validation.Validate(c.fetchTimeout, validation.Required),
		"userAgent":    validation.Validate(c.userAgent, validation.Required),
		"hashAlgo": validation.Validate(string(c.hashAlgo),
			validation.Required,
			validation.In(string(hashutil.HashAlgoSHA256), string(hashutil.HashAlgoBLAKE3)),
		),
		"logFormat": validation.Validate(c.logFormat, validation.In("text", "json")),
		"logLevel":  validation.Validate(strings.ToLower(c.logLevel), validation.In("debug", "info", "warn", "error")),
	}
	if err := errs.Filter(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	built := *c
	if built.feedURL.Host == "" {
		built.feedURL = built.siteURL
		built.feedURL.Path = strings.TrimSuffix(built.siteURL.Path, "/") + "/feed"
	}
	return built, nil
}

func validateParsedURL(parsed url.URL, parseErr error) error {
	if parseErr != nil {
		return parseErr
	}
	return validation.Validate(parsed.Host, validation.Required)
}

func (c Config) SiteURL() url.URL {
	return c.siteURL
}

func (c Config) Source() Source {
	return c.source
}

func (c Config) FeedURL() url.URL {
	return c.feedURL
}

func (c Config) ContentType() ContentType {
	return c.contentType
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) OutputName() string {
	return c.outputName
}

func (c Config) Format() Format {
	return c.format
}

func (c Config) IncludeTOC() bool {
	return c.includeTOC
}

func (c Config) IncludeSummary() bool {
	return c.includeSummary
}

func (c Config) GroupByCategory() bool {
	return c.groupByCategory
}

func (c Config) SortByTitle() bool {
	return c.sortByTitle
}

func (c Config) DownloadImages() bool {
	return c.downloadImages
}

func (c Config) OptimizeImages() bool {
	return c.optimizeImages
}

func (c Config) PerPage() int {
	return c.perPage
}

func (c Config) PageDelay() time.Duration {
	return c.pageDelay
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

func (c Config) AssetTimeout() time.Duration {
	return c.assetTimeout
}

func (c Config) MaxRedirects() int {
	return c.maxRedirects
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) ChunkPause() time.Duration {
	return c.chunkPause
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) LogFormat() string {
	return c.logFormat
}

func (c Config) LogLevel() string {
	return c.logLevel
}
