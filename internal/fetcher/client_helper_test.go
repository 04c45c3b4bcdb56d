package fetcher_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/timeutil"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	mu            sync.Mutex
	fetchEvents   []fetchEvent
	errorEvents   []errorEvent
	warningEvents []errorEvent
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	contentType string
	retryCount  int
}

type errorEvent struct {
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		contentType: contentType,
		retryCount:  retryCount,
	})
}

func (m *mockMetadataSink) RecordAssetFetch(string, int, time.Duration, int) {}

func (m *mockMetadataSink) RecordArtifact(metadata.ArtifactKind, string, []metadata.Attribute) {}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorEvents = append(m.errorEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

func (m *mockMetadataSink) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warningEvents = append(m.warningEvents, errorEvent{
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
	})
}

// countingLimiter never delays; it only counts calls.
type countingLimiter struct {
	mu       sync.Mutex
	waits    int
	backoffs int
	resets   int
}

func (l *countingLimiter) Backoff(string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.backoffs++
}

func (l *countingLimiter) ResetBackoff(string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resets++
}

func (l *countingLimiter) MarkLastFetchAsNow(string) {}

func (l *countingLimiter) ResolveDelay(string) time.Duration { return 0 }

func (l *countingLimiter) Wait(ctx context.Context, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.waits++
	return ctx.Err()
}

func testClientParam(perPage int, maxPages int) fetcher.ClientParam {
	retryParam := retry.NewRetryParam(
		0,
		0,
		1,
		3,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond),
	).WithSleeper(func(time.Duration) {})
	return fetcher.NewClientParam("test-agent", perPage, maxPages, 5*time.Second, retryParam)
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func newTestWordPressClient(t *testing.T, serverURL string, perPage int, maxPages int) (*fetcher.WordPressClient, *mockMetadataSink, *countingLimiter) {
	t.Helper()
	sink := &mockMetadataSink{}
	rl := &countingLimiter{}
	client := fetcher.NewWordPressClient(sink, rl, mustParseURL(t, serverURL), testClientParam(perPage, maxPages))
	return &client, sink, rl
}
