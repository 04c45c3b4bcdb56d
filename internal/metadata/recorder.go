package metadata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

/*
Metadata Collected
- Fetch timestamps, HTTP status codes, durations
- Asset fetches and written artifacts
- Warnings for absorbed failures (skipped assets, placeholder metadata)
- Errors that stopped one item

Metadata is write-only.
No component may read metadata to influence export decisions.
*/

type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

/*
Recorder captures structured export events and writes them through slog.
It must not:
- perform I/O decisions
- affect control flow
Events from concurrent asset workers may interleave; no global ordering
is guaranteed.
*/
type Recorder struct {
	runID  string
	logger *slog.Logger

	mu       sync.Mutex
	errors   int
	warnings int
}

// NewRecorder builds a Recorder that logs to w in the given format at or
// above level. Every record carries the run id.
func NewRecorder(w io.Writer, format LogFormat, level slog.Level) *Recorder {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	runID := uuid.NewString()
	return &Recorder{
		runID:  runID,
		logger: slog.New(handler).With(slog.String("run_id", runID)),
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", raw, err)
	}
	return level, nil
}

func (r *Recorder) RunID() string {
	return r.runID
}

func (r *Recorder) Errors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

func (r *Recorder) Warnings() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.mu.Lock()
	r.errors++
	r.mu.Unlock()

	r.log(slog.LevelError, errorString, observedAt, packageName, action, cause, attrs)
}

func (r *Recorder) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	r.mu.Lock()
	r.warnings++
	r.mu.Unlock()

	r.log(slog.LevelWarn, details, observedAt, packageName, action, cause, attrs)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	r.logger.Debug("fetch",
		slog.String(string(AttrURL), fetchUrl),
		slog.Int(string(AttrHTTPStatus), httpStatus),
		slog.Duration("duration", duration),
		slog.String("content_type", contentType),
		slog.Int("retry_count", retryCount),
	)
}

func (r *Recorder) RecordAssetFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	retryCount int,
) {
	r.logger.Debug("asset fetch",
		slog.String(string(AttrAssetURL), fetchUrl),
		slog.Int(string(AttrHTTPStatus), httpStatus),
		slog.Duration("duration", duration),
		slog.Int("retry_count", retryCount),
	)
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	args := []any{
		slog.String("kind", string(kind)),
		slog.String(string(AttrPath), path),
	}
	r.logger.Info("artifact", append(args, attrsToArgs(attrs)...)...)
}

/*
RecordFinalStats records a terminal summary of a completed export.
It MUST be called at most once per run, after all posts were handled.
*/
func (r *Recorder) RecordFinalStats(
	totalPosts int,
	skippedPosts int,
	totalAssets int,
	duration time.Duration,
) {
	stats := exportStats{
		totalPosts:   totalPosts,
		skippedPosts: skippedPosts,
		totalAssets:  totalAssets,
		durationMs:   duration.Milliseconds(),
	}
	r.logger.Info("export finished",
		slog.Int("total_posts", stats.totalPosts),
		slog.Int("skipped_posts", stats.skippedPosts),
		slog.Int("total_assets", stats.totalAssets),
		slog.Int64("duration_ms", stats.durationMs),
		slog.Int("errors", r.Errors()),
		slog.Int("warnings", r.Warnings()),
	)
}

func (r *Recorder) log(
	level slog.Level,
	message string,
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	attrs []Attribute,
) {
	args := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
	}
	r.logger.Log(context.Background(), level, message, append(args, attrsToArgs(attrs)...)...)
}

func attrsToArgs(attrs []Attribute) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, slog.String(string(attr.Key), attr.Value))
	}
	return args
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordWarning(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)
	RecordAssetFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		retryCount int,
	)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type ExportFinalizer interface {
	RecordFinalStats(
		totalPosts int,
		skippedPosts int,
		totalAssets int,
		duration time.Duration,
	)
}

var (
	_ MetadataSink    = (*Recorder)(nil)
	_ ExportFinalizer = (*Recorder)(nil)
	_ MetadataSink    = (*NoopSink)(nil)
)

// NoopSink implements MetadataSink but does nothing.
// The scheduler (or a test) decides whether to inject Recorder or NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(time.Time, string, string, ErrorCause, string, []Attribute) {}

func (n *NoopSink) RecordWarning(time.Time, string, string, ErrorCause, string, []Attribute) {}

func (n *NoopSink) RecordFetch(string, int, time.Duration, string, int) {}

func (n *NoopSink) RecordAssetFetch(string, int, time.Duration, int) {}

func (n *NoopSink) RecordArtifact(ArtifactKind, string, []Attribute) {}

func (n *NoopSink) RecordFinalStats(int, int, int, time.Duration) {}
