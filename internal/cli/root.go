package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/build"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/config"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/scheduler"
)

var (
	cfgFile         string
	siteURL         string
	outputName      string
	outputDir       string
	format          string
	noTOC           bool
	noSummary       bool
	groupByCategory bool
	sortByTitle     bool
	noImages        bool
	optimizeImages  bool
	source          string
	feedURL         string
	contentType     string
	logFormat       string
	logLevel        string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wp-crawl-tool",
	Short: "Export a WordPress site to Markdown or JSON.",
	Long: `wp-crawl-tool reads every post of a WordPress site through its REST API
(or its RSS/Atom feed when the API is disabled), cleans the page-builder markup,
downloads the embedded images and writes a single Markdown document or a
structured JSON export with a content summary.`,
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all posts of a site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError()
		if err != nil {
			return err
		}

		level, err := metadata.ParseLevel(cfg.LogLevel())
		if err != nil {
			return err
		}
		recorder := metadata.NewRecorder(cmd.ErrOrStderr(), metadata.LogFormat(cfg.LogFormat()), level)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		exporter := scheduler.NewExporter(cfg, recorder)
		stats, err := exporter.Run(ctx)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		printStats(cmd.OutOrStdout(), stats, recorder)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a site exposes the WordPress REST API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if siteURL == "" {
			return fmt.Errorf("%w: --url is required", config.ErrInvalidConfig)
		}
		cfg, err := config.WithDefault(siteURL).Build()
		if err != nil {
			return err
		}
		recorder := metadata.NewRecorder(cmd.ErrOrStderr(), metadata.LogFormatText, levelOrDefault(logLevel))
		return runCheck(cmd.Context(), cmd.OutOrStdout(), cfg, recorder)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), build.Banner())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the command tree with explicit arguments and output.
func ExecuteWithArgs(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&siteURL, "url", "u", "", "WordPress site URL, e.g. https://example.com")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default info)")

	exportCmd.Flags().StringVar(&cfgFile, "config-file", "", "config file path, .json or .yaml (e.g., /home/myuser/export.yaml)")
	exportCmd.Flags().StringVarP(&outputName, "output", "o", "", "output file name without extension (default wordpress-export)")
	exportCmd.Flags().StringVarP(&outputDir, "dir", "d", "", "output directory (default ./output)")
	exportCmd.Flags().StringVarP(&format, "format", "f", "", "output format: markdown or json (default markdown)")
	exportCmd.Flags().BoolVar(&noTOC, "no-toc", false, "omit the table of contents")
	exportCmd.Flags().BoolVar(&noSummary, "no-summary", false, "omit the content summary")
	exportCmd.Flags().BoolVar(&groupByCategory, "group-by-category", false, "group posts under their first category")
	exportCmd.Flags().BoolVar(&sortByTitle, "sort-by-title", false, "sort posts by title instead of newest first")
	exportCmd.Flags().BoolVar(&noImages, "no-images", false, "keep remote image links instead of downloading them")
	exportCmd.Flags().BoolVar(&optimizeImages, "optimize-images", false, "resize downloaded images to fit 800x600 and re-encode them as JPEG")
	exportCmd.Flags().StringVar(&source, "source", "", "post source: rest or feed (default rest)")
	exportCmd.Flags().StringVar(&feedURL, "feed-url", "", "feed location when --source=feed (default <url>/feed)")
	exportCmd.Flags().StringVar(&contentType, "type", "", "content to export: posts or pages, pages need the REST source (default posts)")
	exportCmd.Flags().StringVar(&logFormat, "log-format", "", "log format: text or json (default text)")

	rootCmd.AddCommand(exportCmd, checkCmd, versionCmd)
}

// InitConfigWithError builds the export config from the config file when
// one is given, otherwise from the flags on top of the defaults.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if siteURL == "" {
		return config.Config{}, fmt.Errorf("%w: --url is required", config.ErrInvalidConfig)
	}

	configBuilder := config.WithDefault(siteURL).
		WithIncludeTOC(!noTOC).
		WithIncludeSummary(!noSummary).
		WithGroupByCategory(groupByCategory).
		WithSortByTitle(sortByTitle).
		WithDownloadImages(!noImages).
		WithOptimizeImages(optimizeImages)

	// Override with CLI flag values where provided
	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if outputName != "" {
		configBuilder = configBuilder.WithOutputName(outputName)
	}
	if format != "" {
		configBuilder = configBuilder.WithFormat(config.Format(format))
	}
	if source != "" {
		configBuilder = configBuilder.WithSource(config.Source(source))
	}
	if feedURL != "" {
		configBuilder = configBuilder.WithFeedURL(feedURL)
	}
	if contentType != "" {
		configBuilder = configBuilder.WithContentType(config.ContentType(contentType))
	}
	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}
	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	return configBuilder.Build()
}

func runCheck(ctx context.Context, out io.Writer, cfg config.Config, recorder *metadata.Recorder) error {
	client := scheduler.NewSiteClient(cfg, recorder)
	site := cfg.SiteURL()
	fmt.Fprintf(out, "Site URL: %s\n", site.String())

	status, err := client.CheckAPI(ctx)
	if err != nil {
		fmt.Fprintf(out, "REST API: unavailable (HTTP %d)\n", status.StatusCode)
		fmt.Fprintln(out, "Try `export --source feed` to read the RSS/Atom feed instead.")
		return err
	}
	fmt.Fprintf(out, "REST API: available (HTTP %d)\n", status.StatusCode)

	if info, infoErr := client.SiteInfo(ctx); infoErr == nil {
		fmt.Fprintf(out, "Site name: %s\n", info.Name)
		if info.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", info.Description)
		}
	}
	fmt.Fprintf(out, "Total posts: %d\n", status.TotalPosts)

	if categories, catErr := client.Categories(ctx); catErr == nil {
		fmt.Fprintf(out, "Categories: %d\n", len(categories))
	}
	if tags, tagErr := client.Tags(ctx); tagErr == nil {
		fmt.Fprintf(out, "Tags: %d\n", len(tags))
	}
	return nil
}

func printStats(out io.Writer, stats scheduler.ExportStats, recorder *metadata.Recorder) {
	fmt.Fprintf(out, "Export finished in %v\n", stats.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Posts exported: %d\n", stats.TotalPosts)
	if stats.SkippedPosts > 0 {
		fmt.Fprintf(out, "Posts skipped: %d\n", stats.SkippedPosts)
	}
	fmt.Fprintf(out, "Images downloaded: %d/%d\n", stats.ImagesDownloaded, stats.ImagesRequested)
	fmt.Fprintf(out, "Warnings: %d, errors: %d\n", recorder.Warnings(), recorder.Errors())
	fmt.Fprintf(out, "Output: %s\n", stats.OutputPath)
}

func levelOrDefault(raw string) slog.Level {
	if raw == "" {
		return slog.LevelInfo
	}
	level, err := metadata.ParseLevel(raw)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ResetFlags() {
	cfgFile = ""
	siteURL = ""
	outputName = ""
	outputDir = ""
	format = ""
	noTOC = false
	noSummary = false
	groupByCategory = false
	sortByTitle = false
	noImages = false
	optimizeImages = false
	source = ""
	feedURL = ""
	contentType = ""
	logFormat = ""
	logLevel = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetSiteURLForTest(url string) {
	siteURL = url
}

func SetOutputForTest(dir string, name string) {
	outputDir = dir
	outputName = name
}

func SetFormatForTest(f string) {
	format = f
}

func SetSourceForTest(s string, feed string) {
	source = s
	feedURL = feed
}

func SetContentTypeForTest(t string) {
	contentType = t
}

func SetLayoutFlagsForTest(withoutTOC bool, withoutSummary bool, byCategory bool, byTitle bool) {
	noTOC = withoutTOC
	noSummary = withoutSummary
	groupByCategory = byCategory
	sortByTitle = byTitle
}

func SetImageFlagsForTest(withoutImages bool, optimize bool) {
	noImages = withoutImages
	optimizeImages = optimize
}
