package scheduler_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/assets"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/extractor"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/fetcher"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/mdconvert"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/sanitizer"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/scheduler"
	"github.com/tatsuyakari1203/wp-crawl-tool/internal/storage"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
)

// postSourceMock is a testify mock for scheduler.PostSource
type postSourceMock struct {
	mock.Mock
}

func (m *postSourceMock) FetchAllPosts(ctx context.Context) ([]fetcher.RawItem, failure.ClassifiedError) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]fetcher.RawItem)
	if err, ok := args.Get(1).(failure.ClassifiedError); ok && err != nil {
		return items, err
	}
	return items, nil
}

// siteInspectorMock is a testify mock for scheduler.SiteInspector
type siteInspectorMock struct {
	mock.Mock
}

func (m *siteInspectorMock) CheckAPI(ctx context.Context) (fetcher.APIStatus, failure.ClassifiedError) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(fetcher.APIStatus)
	if err, ok := args.Get(1).(failure.ClassifiedError); ok && err != nil {
		return status, err
	}
	return status, nil
}

func (m *siteInspectorMock) SiteInfo(ctx context.Context) (fetcher.SiteInfo, failure.ClassifiedError) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(fetcher.SiteInfo)
	if err, ok := args.Get(1).(failure.ClassifiedError); ok && err != nil {
		return info, err
	}
	return info, nil
}

func newHealthyInspector(siteName string) *siteInspectorMock {
	m := new(siteInspectorMock)
	m.On("CheckAPI", mock.Anything).Return(fetcher.APIStatus{Available: true, StatusCode: 200}, nil)
	m.On("SiteInfo", mock.Anything).Return(fetcher.SiteInfo{Name: siteName, URL: "https://example.com"}, nil)
	return m
}

// mockFinalizer is a test double that captures final export statistics
type mockFinalizer struct {
	called       int
	totalPosts   int
	skippedPosts int
	totalAssets  int
	duration     time.Duration
}

func (m *mockFinalizer) RecordFinalStats(totalPosts int, skippedPosts int, totalAssets int, duration time.Duration) {
	m.called++
	m.totalPosts = totalPosts
	m.skippedPosts = skippedPosts
	m.totalAssets = totalAssets
	m.duration = duration
}

type warningEvent struct {
	action  string
	cause   metadata.ErrorCause
	details string
}

// warningRecordingSink keeps warnings and ignores everything else
type warningRecordingSink struct {
	metadata.NoopSink
	mu       sync.Mutex
	warnings []warningEvent
}

func (s *warningRecordingSink) RecordWarning(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, warningEvent{action: action, cause: cause, details: details})
}

func (s *warningRecordingSink) warningsWithCause(cause metadata.ErrorCause) []warningEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]warningEvent, 0)
	for _, w := range s.warnings {
		if w.cause == cause {
			matched = append(matched, w)
		}
	}
	return matched
}

// writerMock captures the document instead of writing it
type writerMock struct {
	called int
	doc    storage.ExportDocument
	err    failure.ClassifiedError
}

func (w *writerMock) Write(outputDir string, outputName string, doc storage.ExportDocument) (storage.WriteResult, failure.ClassifiedError) {
	w.called++
	w.doc = doc
	if w.err != nil {
		return storage.WriteResult{}, w.err
	}
	return storage.NewWriteResult(filepath.Join(outputDir, outputName+".md"), "hash", 42), nil
}

type acquireCall struct {
	refs  []extractor.ImageReference
	param assets.AcquireParam
}

// acquirerFake pretends every reference was downloaded and answers in
// reverse order, like a pool finishing out of order.
type acquirerFake struct {
	calls []acquireCall
	err   failure.ClassifiedError
}

func (a *acquirerFake) Acquire(
	ctx context.Context,
	refs []extractor.ImageReference,
	param assets.AcquireParam,
) ([]assets.DownloadedAsset, failure.ClassifiedError) {
	a.calls = append(a.calls, acquireCall{refs: refs, param: param})
	if a.err != nil {
		return nil, a.err
	}
	downloaded := make([]assets.DownloadedAsset, 0, len(refs))
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		fileName := fmt.Sprintf("%s_%d.jpg", param.Prefix(), ref.Index)
		downloaded = append(downloaded, assets.DownloadedAsset{
			Index:        ref.Index,
			OriginalPath: filepath.Join(param.OutputDir(), assets.ImagesDirName, fileName),
			FileName:     fileName,
			SourceURL:    ref.SourceURL,
		})
	}
	return downloaded, nil
}

// brokenMarkupProcessor fails on markup containing <broken> and delegates
// everything else to the real processor.
type brokenMarkupProcessor struct {
	delegate *extractor.Processor
}

func (p *brokenMarkupProcessor) Process(markup string) (extractor.ProcessedContent, failure.ClassifiedError) {
	if strings.Contains(markup, "<broken>") {
		return extractor.ProcessedContent{}, &sanitizer.SanitizationError{
			Message: "unexpected token",
			Cause:   sanitizer.ErrCauseMarkupParse,
		}
	}
	return p.delegate.Process(markup)
}

func (p *brokenMarkupProcessor) ProcessExcerpt(markup string) string {
	return p.delegate.ProcessExcerpt(markup)
}

type testDeps struct {
	sink      *warningRecordingSink
	finalizer *mockFinalizer
	inspector scheduler.SiteInspector
	source    *postSourceMock
	acquirer  *acquirerFake
	writer    *writerMock
}

func newTestDeps(items []fetcher.RawItem) *testDeps {
	source := new(postSourceMock)
	source.On("FetchAllPosts", mock.Anything).Return(items, nil)
	return &testDeps{
		sink:      &warningRecordingSink{},
		finalizer: &mockFinalizer{},
		inspector: newHealthyInspector("Example Blog"),
		source:    source,
		acquirer:  &acquirerFake{},
		writer:    &writerMock{},
	}
}

func (d *testDeps) exporter(t *testing.T, param scheduler.ExportParam) *scheduler.Exporter {
	t.Helper()
	htmlSanitizer := sanitizer.NewHTMLSanitizer(d.sink)
	processor := extractor.NewProcessor(d.sink, &htmlSanitizer)
	e := scheduler.NewExporterWithDeps(
		d.sink,
		d.finalizer,
		d.inspector,
		d.source,
		&brokenMarkupProcessor{delegate: &processor},
		d.acquirer,
		mdconvert.NewRule(d.sink),
		d.writer,
		param,
	)
	return &e
}

func rawItem(id int64, title string, date string, slug string, content string) fetcher.RawItem {
	return fetcher.RawItem{
		ID:      id,
		Title:   fetcher.Rendered{Rendered: title},
		Content: fetcher.Rendered{Rendered: content},
		Excerpt: fetcher.Rendered{Rendered: "<p>About " + title + "</p>"},
		Slug:    slug,
		Status:  "publish",
		Type:    "post",
		Link:    "https://example.com/" + slug + "/",
		Date:    date,
		Embedded: &fetcher.Embedded{
			Author: []fetcher.EmbeddedAuthor{{ID: 1, Name: "Ann", Slug: "ann"}},
		},
	}
}
