/*
Responsibilities

- Perform HTTP requests against one WordPress site
- Pace requests through the per-host rate limiter
- Retry transient failures (5xx, 429, transport errors)
- Classify responses and report every fetch to the metadata sink

Fetch Semantics

- Only 2xx responses carry a body back to the caller
- Redirect chains are bounded
- The client never interprets content beyond JSON or feed decoding
*/
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tatsuyakari1203/wp-crawl-tool/internal/metadata"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/failure"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/limiter"
	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/retry"
)

const maxRedirects = 10

// httpSource is the shared request path of the REST and feed clients.
type httpSource struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	rateLimiter  limiter.RateLimiter
	param        ClientParam
}

func newHTTPSource(
	metadataSink metadata.MetadataSink,
	rateLimiter limiter.RateLimiter,
	param ClientParam,
) httpSource {
	return httpSource{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: param.timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		rateLimiter: rateLimiter,
		param:       param,
	}
}

func (s *httpSource) get(
	ctx context.Context,
	callerMethod string,
	target url.URL,
	accept string,
) (response, failure.ClassifiedError) {
	startTime := time.Now()
	host := target.Host

	result := retry.Retry(s.param.retryParam, func() (response, failure.ClassifiedError) {
		if err := s.rateLimiter.Wait(ctx, host); err != nil {
			return response{}, &FetchError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseCanceled,
			}
		}
		resp, err := s.performFetch(ctx, target, accept)
		s.rateLimiter.MarkLastFetchAsNow(host)
		if err != nil {
			var fetchErr *FetchError
			if errors.As(err, &fetchErr) && fetchErr.Retryable {
				s.rateLimiter.Backoff(host)
			}
			return response{}, err
		}
		s.rateLimiter.ResetBackoff(host)
		return resp, nil
	})

	var statusCode int
	var contentType string
	if result.IsSuccess() {
		statusCode = result.Value().statusCode
		contentType = result.Value().header.Get("Content-Type")
	} else {
		var fetchErr *FetchError
		if errors.As(result.Err(), &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
	}
	retryCount := result.Attempts() - 1
	if retryCount < 0 {
		retryCount = 0
	}
	s.metadataSink.RecordFetch(
		target.String(),
		statusCode,
		time.Since(startTime),
		contentType,
		retryCount,
	)

	if result.IsFailure() {
		s.recordError(callerMethod, target, result.Err())
		return response{}, result.Err()
	}
	return result.Value(), nil
}

func (s *httpSource) recordError(callerMethod string, target url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		s.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, target.String()),
			},
		)
		return
	}

	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		s.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, target.String()),
				metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", fetchError.StatusCode)),
			},
		)
	}
}

func (s *httpSource) performFetch(ctx context.Context, target url.URL, accept string) (response, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return response{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	for key, value := range requestHeaders(s.param.userAgent, accept) {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return response{}, &FetchError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseCanceled,
			}
		}
		return response{}, &FetchError{
			Message:   fmt.Sprintf("request failed: %v", err),
			Retryable: true,
			Cause:     ErrCauseNetworkFailure,
		}
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return response{}, statusErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	return response{
		statusCode: resp.StatusCode,
		body:       body,
		header:     resp.Header,
	}, nil
}

// classifyStatus maps non-2xx codes onto fetch errors. 5xx and 429 are
// retryable; every other failure is final.
func classifyStatus(code int) *FetchError {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", code),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: code,
		}
	case code == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: code,
		}
	case code == http.StatusBadRequest:
		return &FetchError{
			Message:    "bad request (400)",
			Retryable:  false,
			Cause:      ErrCauseBadRequest,
			StatusCode: code,
		}
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &FetchError{
			Message:    fmt.Sprintf("access forbidden (%d)", code),
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: code,
		}
	case code == http.StatusNotFound:
		return &FetchError{
			Message:    "not found (404)",
			Retryable:  false,
			Cause:      ErrCauseRequestNotFound,
			StatusCode: code,
		}
	case code >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRequestClientError,
			StatusCode: code,
		}
	default:
		// 3xx reaching here means the redirect limit was hit
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", code),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: code,
		}
	}
}

func requestHeaders(userAgent string, accept string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          accept,
		"Accept-Language": "en-US,en;q=0.5",
	}
}
