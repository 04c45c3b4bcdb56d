package assets_test

import (
	"sync"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/assets"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/hashutil"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/timeutil"
)

type warningEvent struct {
	cause   metadata.ErrorCause
	details string
}

type assetFetchEvent struct {
	fetchUrl   string
	httpStatus int
	retryCount int
}

type mockMetadataSink struct {
	metadata.NoopSink
	mu          sync.Mutex
	warnings    []warningEvent
	errors      []warningEvent
	assetFetchs []assetFetchEvent
	artifacts   []string
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
	m.warnings = append(m.warnings, warningEvent{cause: cause, details: details})
}

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
	m.errors = append(m.errors, warningEvent{cause: cause, details: details})
}

func (m *mockMetadataSink) RecordAssetFetch(fetchUrl string, httpStatus int, duration time.Duration, retryCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assetFetchs = append(m.assetFetchs, assetFetchEvent{
		fetchUrl:   fetchUrl,
		httpStatus: httpStatus,
		retryCount: retryCount,
	})
}

func (m *mockMetadataSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts = append(m.artifacts, path)
}

// recordedDelays collects the waits the engine asked for instead of sleeping.
type recordedDelays struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedDelays) sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func (r *recordedDelays) snapshot() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

type testEngine struct {
	engine *assets.Engine
	sink   *mockMetadataSink
	pauses *recordedDelays
	sleeps *recordedDelays
}

func newTestEngine() testEngine {
	sink := &mockMetadataSink{}
	pauses := &recordedDelays{}
	sleeps := &recordedDelays{}

	retryParam := retry.NewRetryParam(
		0,
		0,
		1,
		3,
		timeutil.NewBackoffParam(time.Second, 1.0, 3*time.Second),
	).WithLinearBackoff().WithSleeper(sleeps.sleep)

	param := assets.NewEngineParam(
		"test-agent",
		5*time.Second,
		5,
		3,
		500*time.Millisecond,
		retryParam,
		hashutil.HashAlgoSHA256,
	).WithPauser(pauses.sleep)

	return testEngine{
		engine: assets.NewEngine(sink, param),
		sink:   sink,
		pauses: pauses,
		sleeps: sleeps,
	}
}
