package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// StaticConfig controls the static HTTP tier.
type StaticConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// StaticFetcher implements collect.Fetcher with a single HTTP GET per
// attempt, retried with exponential backoff on transport failures.
type StaticFetcher struct {
	cfg           StaticConfig
	policy        *RetryPolicy
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// NewStatic builds a StaticFetcher.
func NewStatic(cfg StaticConfig, policy *RetryPolicy, logger *zap.Logger) *StaticFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if policy == nil {
		policy = NewRetryPolicy(0, 0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &StaticFetcher{
		cfg:           cfg,
		policy:        policy,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves the URL, retrying transient failures within this tier.
// Exhausting the retry budget returns the last error.
func (f *StaticFetcher) Fetch(ctx context.Context, request collect.FetchRequest) (collect.FetchResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := f.fetchOnce(ctx, request)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !f.policy.ShouldRetry(err, attempt) {
			break
		}
		wait := f.policy.Backoff(attempt)
		f.logger.Warn("static fetch retrying",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err))
		if serr := sleep(ctx, wait); serr != nil {
			return collect.FetchResponse{}, fmt.Errorf("static fetch canceled: %w", serr)
		}
	}
	return collect.FetchResponse{}, fmt.Errorf("static fetch %s: %w", request.URL, lastErr)
}

func (f *StaticFetcher) fetchOnce(ctx context.Context, request collect.FetchRequest) (collect.FetchResponse, error) {
	var (
		result   collect.FetchResponse
		fetchErr error
	)
	start := time.Now()

	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnRequest(func(r *colly.Request) {
		for key, value := range request.Headers {
			r.Headers.Set(key, value)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = collect.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusInternalServerError {
			fetchErr = Transient(fmt.Errorf("status %d: %w", r.StatusCode, err))
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(request.URL)
	}()

	select {
	case <-ctx.Done():
		return collect.FetchResponse{}, fmt.Errorf("static fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return collect.FetchResponse{}, fetchErr
		}
		if err != nil {
			return collect.FetchResponse{}, fmt.Errorf("visit failed: %w", err)
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
