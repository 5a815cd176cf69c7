package fetch

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// HeadlessConfig controls the dynamic rendering tier.
type HeadlessConfig struct {
	UserAgent         string
	NavigationTimeout time.Duration
	SettleWait        time.Duration
}

// HeadlessFetcher implements collect.Fetcher using chromedp and headless
// Chrome. Rendering is internally event-driven but exposed as one blocking
// call per fetch with its own timeout.
type HeadlessFetcher struct {
	cfg         HeadlessConfig
	policy      *RetryPolicy
	logger      *zap.Logger
	allocator   context.Context
	allocCancel context.CancelFunc
	mu          sync.Mutex
}

// NewHeadless creates a headless fetcher backed by chromedp.
func NewHeadless(cfg HeadlessConfig, policy *RetryPolicy, logger *zap.Logger) *HeadlessFetcher {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if cfg.SettleWait <= 0 {
		cfg.SettleWait = 500 * time.Millisecond
	}
	if policy == nil {
		policy = NewRetryPolicy(0, 0, 0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &HeadlessFetcher{
		cfg:         cfg,
		policy:      policy,
		logger:      logger,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}
}

// Close cancels the allocator context.
func (f *HeadlessFetcher) Close() {
	f.allocCancel()
}

// Fetch navigates with a headless browser and returns the rendered DOM.
// Transport failures retry within this tier under the shared policy; two
// renders never run concurrently.
func (f *HeadlessFetcher) Fetch(ctx context.Context, request collect.FetchRequest) (collect.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

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
		f.logger.Warn("headless fetch retrying",
			zap.String("url", request.URL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err))
		if serr := sleep(ctx, wait); serr != nil {
			return collect.FetchResponse{}, fmt.Errorf("headless fetch canceled: %w", serr)
		}
	}
	return collect.FetchResponse{}, fmt.Errorf("headless fetch %s: %w", request.URL, lastErr)
}

func (f *HeadlessFetcher) fetchOnce(ctx context.Context, request collect.FetchRequest) (collect.FetchResponse, error) {
	taskCtx, taskCancel := chromedp.NewContext(f.allocator)
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, f.cfg.NavigationTimeout)
	defer cancel()

	// Propagate caller cancellation into the chromedp task.
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	meta := newResponseMeta()
	chromedp.ListenTarget(taskCtx, meta.captureEvent)

	start := time.Now()
	var html string
	actions := []chromedp.Action{
		f.networkSetupAction(request.Headers),
		chromedp.Navigate(request.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.cfg.SettleWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return collect.FetchResponse{}, fmt.Errorf("headless fetch canceled: %w", ctx.Err())
		}
		// Navigation timeouts and renderer crashes are transport-level
		// failures: retryable within this tier. Strip the context error so
		// the policy does not mistake a per-attempt deadline for caller
		// cancellation.
		return collect.FetchResponse{}, Transient(fmt.Errorf("chromedp run: %v", err))
	}

	status := meta.status()
	if status == 0 {
		status = http.StatusOK
	}
	return collect.FetchResponse{
		URL:          request.URL,
		StatusCode:   status,
		Body:         []byte(html),
		Duration:     time.Since(start),
		UsedHeadless: true,
	}, nil
}

func (f *HeadlessFetcher) networkSetupAction(headers map[string]string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if f.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(f.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if len(headers) > 0 {
			extra := network.Headers{}
			for key, value := range headers {
				extra[key] = value
			}
			if err := network.SetExtraHTTPHeaders(extra).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

type responseMeta struct {
	mu         sync.RWMutex
	statusCode int
}

func newResponseMeta() *responseMeta {
	return &responseMeta{}
}

func (m *responseMeta) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	m.mu.Lock()
	m.statusCode = int(resp.Response.Status)
	m.mu.Unlock()
}

func (m *responseMeta) status() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusCode
}
