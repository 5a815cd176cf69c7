package collect

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/archive"
	"github.com/jaeha-dev/music-metrics-crawler/internal/hash/sha256"
	"github.com/jaeha-dev/music-metrics-crawler/internal/metrics"
)

// CollectorRegistry resolves a platform tag to its collector strategy.
type CollectorRegistry interface {
	Collector(p Platform) (Collector, error)
	Supported(p Platform) bool
}

// RunIDGenerator mints run identifiers.
type RunIDGenerator interface {
	NewRunID() (string, error)
}

// EngineConfig controls Engine behavior.
type EngineConfig struct {
	Mode     FetchMode
	Enabled  map[Platform]bool
	Headers  map[string]string
	Topic    string
	Archive  bool
	Language string
}

// Engine runs one full collection pass over a target list. Targets are
// processed sequentially; a failure on one target never aborts the run.
type Engine struct {
	static    Fetcher
	headless  Fetcher
	registry  CollectorRegistry
	resolver  Resolver
	store     MetricStore
	runLog    RunLogger
	archive   ArchiveStore
	publisher Publisher
	clock     Clock
	ids       RunIDGenerator
	cfg       EngineConfig
	logger    *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(
	static Fetcher,
	headless Fetcher,
	registry CollectorRegistry,
	resolver Resolver,
	store MetricStore,
	runLog RunLogger,
	archiveStore ArchiveStore,
	publisher Publisher,
	clock Clock,
	ids RunIDGenerator,
	cfg EngineConfig,
	logger *zap.Logger,
) (*Engine, error) {
	if static == nil {
		return nil, fmt.Errorf("static fetcher is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("collector registry is required")
	}
	if store == nil {
		return nil, fmt.Errorf("metric store is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if cfg.Language == "" {
		cfg.Language = "ko-KR,ko;q=0.9,en;q=0.5"
	}
	metrics.Init()
	return &Engine{
		static:    static,
		headless:  headless,
		registry:  registry,
		resolver:  resolver,
		store:     store,
		runLog:    runLog,
		archive:   archiveStore,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Run processes every target once for today's platform-local date and
// returns the aggregate summary. Re-running on the same day overwrites the
// day's snapshots rather than duplicating them.
func (e *Engine) Run(ctx context.Context, targets []Target) (RunSummary, error) {
	started := e.clock.Now()

	runID := ""
	if e.ids != nil {
		id, err := e.ids.NewRunID()
		if err != nil {
			return RunSummary{}, fmt.Errorf("mint run id: %w", err)
		}
		runID = id
	}

	summary := RunSummary{
		RunID:       runID,
		Date:        e.clock.Today(),
		Total:       len(targets),
		PerPlatform: make(map[Platform]PlatformCounters),
	}

	e.logger.Info("collection run starting",
		zap.String("run_id", runID),
		zap.String("date", summary.Date),
		zap.Int("targets", len(targets)),
	)

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run canceled: %w", err)
		}

		if !e.platformEnabled(target.Platform) {
			summary.Skipped++
			e.logger.Warn("skipping target on disabled platform",
				zap.String("platform", string(target.Platform)),
				zap.String("title", target.Title),
			)
			continue
		}

		outcome := e.processTarget(ctx, &summary, target)
		counters := summary.PerPlatform[target.Platform]
		if outcome == nil {
			counters.OK++
			summary.OK++
			metrics.ObserveTarget(string(target.Platform), "ok")
		} else {
			counters.Failed++
			summary.Failed++
			metrics.ObserveTarget(string(target.Platform), "failed")
			e.logger.Error("target failed",
				zap.String("platform", string(target.Platform)),
				zap.String("title", target.Title),
				zap.Error(outcome),
			)
		}
		summary.PerPlatform[target.Platform] = counters
	}

	summary.Elapsed = e.clock.Now().Sub(started)
	metrics.ObserveRunDuration(summary.Elapsed)

	e.publishSummary(ctx, summary)

	e.logger.Info("collection run finished",
		zap.String("run_id", runID),
		zap.Int("ok", summary.OK),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("rows_written", summary.RowsWritten),
		zap.Int("headless_escalations", summary.Escalations),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (e *Engine) platformEnabled(p Platform) bool {
	if !e.registry.Supported(p) {
		return false
	}
	if e.cfg.Enabled == nil {
		return true
	}
	return e.cfg.Enabled[p]
}

// processTarget runs the full pipeline for one target. A nil return means an
// OK snapshot was written; otherwise a FAILED snapshot was attempted and the
// error describes the first terminal failure.
func (e *Engine) processTarget(ctx context.Context, summary *RunSummary, target Target) error {
	collector, err := e.registry.Collector(target.Platform)
	if err != nil {
		return e.recordFailure(ctx, summary, target, "", false, newTargetError(FailureResolution, target.TrackKey(), err))
	}

	if target.SongID == "" {
		resolved, err := e.resolveTarget(ctx, target)
		if err != nil {
			return e.recordFailure(ctx, summary, target, "", false, newTargetError(FailureResolution, target.TrackKey(), err))
		}
		target.SongID = resolved.SongID
	}

	sourceURL := collector.BuildURL(target.SongID)
	response, escalated, err := e.fetchTarget(ctx, target.Platform, sourceURL)
	if escalated {
		summary.Escalations++
	}
	if err != nil {
		return e.recordFailure(ctx, summary, target, sourceURL, false, newTargetError(FailureFetch, target.TrackKey(), err))
	}

	metricSet, err := collector.ParseMetrics(response.Body)
	if err != nil {
		return e.recordFailure(ctx, summary, target, sourceURL, response.UsedHeadless, newTargetError(FailureParse, target.TrackKey(), err))
	}
	if metricSet.Empty() {
		return e.recordFailure(ctx, summary, target, sourceURL, response.UsedHeadless, newTargetError(FailureParse, target.TrackKey(), ErrEmptyParse))
	}

	e.archivePage(ctx, target, summary.Date, response.Body)

	now := e.clock.Now()
	if err := e.store.UpsertTrack(ctx, Track{
		TrackKey:  target.TrackKey(),
		Platform:  target.Platform,
		SongID:    target.SongID,
		Alias:     target.Alias,
		Title:     target.Title,
		Artist:    target.Artist,
		Album:     target.Album,
		SourceURL: sourceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("upsert track %s: %w", target.TrackKey(), err)
	}

	if err := e.store.UpsertSnapshot(ctx, Snapshot{
		TrackKey:       target.TrackKey(),
		Date:           summary.Date,
		TotalPlays:     metricSet.TotalPlays,
		TotalListeners: metricSet.TotalListeners,
		CollectedAt:    now,
		Status:         StatusOK,
	}); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", target.TrackKey(), err)
	}
	summary.RowsWritten++
	metrics.ObserveSnapshotUpsert(string(target.Platform))

	e.appendRunLog(ctx, summary, target, sourceURL, metricSet, response.UsedHeadless, nil)

	e.logger.Info("target collected",
		zap.String("platform", string(target.Platform)),
		zap.String("song_id", target.SongID),
		zap.Bool("used_headless", response.UsedHeadless),
	)
	return nil
}

func (e *Engine) resolveTarget(ctx context.Context, target Target) (ResolvedIdentifier, error) {
	if e.resolver == nil {
		return ResolvedIdentifier{}, fmt.Errorf("song id missing and no resolver configured")
	}
	resolved, err := e.resolver.Resolve(ctx, target)
	if err != nil {
		metrics.ObserveResolution(string(target.Platform), "failed")
		return ResolvedIdentifier{}, err
	}
	metrics.ObserveResolution(string(target.Platform), "ok")
	e.logger.Info("identifier resolved",
		zap.String("platform", string(target.Platform)),
		zap.String("title", target.Title),
		zap.String("song_id", resolved.SongID),
		zap.Int("stage", resolved.MatchedStage),
		zap.Float64("confidence", resolved.Confidence),
	)
	return resolved, nil
}

// fetchTarget retrieves the song page on the configured tier. Under ModeAuto
// the static tier goes first; when its content yields no declared metric the
// headless tier is tried exactly once for the target.
func (e *Engine) fetchTarget(ctx context.Context, platform Platform, url string) (FetchResponse, bool, error) {
	request := FetchRequest{URL: url, Headers: e.requestHeaders()}

	switch e.cfg.Mode {
	case ModeStatic:
		response, err := e.static.Fetch(ctx, request)
		e.observeFetch(platform, "static", response, err)
		return response, false, err
	case ModeDynamic:
		if e.headless == nil {
			return FetchResponse{}, false, fmt.Errorf("dynamic mode requires a headless fetcher")
		}
		response, err := e.headless.Fetch(ctx, request)
		e.observeFetch(platform, "dynamic", response, err)
		return response, false, err
	}

	response, err := e.static.Fetch(ctx, request)
	e.observeFetch(platform, "static", response, err)
	if err == nil && e.pageHasMetrics(platform, response.Body) {
		return response, false, nil
	}
	if e.headless == nil {
		if err != nil {
			return FetchResponse{}, false, err
		}
		return response, false, nil
	}

	e.logger.Info("escalating to headless tier",
		zap.String("platform", string(platform)),
		zap.String("url", url),
	)
	metrics.ObserveEscalation(string(platform))

	rendered, renderErr := e.headless.Fetch(ctx, request)
	e.observeFetch(platform, "dynamic", rendered, renderErr)
	if renderErr != nil {
		if err != nil {
			return FetchResponse{}, true, fmt.Errorf("static: %v; headless: %w", err, renderErr)
		}
		// Static content survived, let the parser decide.
		return response, true, nil
	}
	return rendered, true, nil
}

func (e *Engine) pageHasMetrics(platform Platform, body []byte) bool {
	collector, err := e.registry.Collector(platform)
	if err != nil {
		return false
	}
	metricSet, err := collector.ParseMetrics(body)
	return err == nil && !metricSet.Empty()
}

func (e *Engine) observeFetch(platform Platform, tier string, response FetchResponse, err error) {
	if err != nil {
		return
	}
	metrics.ObserveFetch(string(platform), tier, response.Duration)
}

func (e *Engine) requestHeaders() map[string]string {
	headers := map[string]string{"Accept-Language": e.cfg.Language}
	for k, v := range e.cfg.Headers {
		headers[k] = v
	}
	return headers
}

// recordFailure persists a FAILED snapshot so the day's row exists even when
// collection broke, then returns the original error for the run summary.
func (e *Engine) recordFailure(ctx context.Context, summary *RunSummary, target Target, sourceURL string, usedHeadless bool, targetErr *TargetError) error {
	e.appendRunLog(ctx, summary, target, sourceURL, MetricSet{}, usedHeadless, targetErr)

	if target.SongID == "" {
		// Without an identifier there is no track key to upsert against.
		return targetErr
	}

	now := e.clock.Now()
	if err := e.store.UpsertTrack(ctx, Track{
		TrackKey:  target.TrackKey(),
		Platform:  target.Platform,
		SongID:    target.SongID,
		Alias:     target.Alias,
		Title:     target.Title,
		Artist:    target.Artist,
		Album:     target.Album,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		e.logger.Error("failed-track upsert error", zap.String("track_key", target.TrackKey()), zap.Error(err))
		return targetErr
	}
	if err := e.store.UpsertSnapshot(ctx, Snapshot{
		TrackKey:     target.TrackKey(),
		Date:         summary.Date,
		CollectedAt:  now,
		Status:       StatusFailed,
		ErrorMessage: targetErr.Error(),
	}); err != nil {
		e.logger.Error("failed-snapshot upsert error", zap.String("track_key", target.TrackKey()), zap.Error(err))
		return targetErr
	}
	summary.RowsWritten++
	metrics.ObserveSnapshotUpsert(string(target.Platform))
	return targetErr
}

func (e *Engine) appendRunLog(ctx context.Context, summary *RunSummary, target Target, sourceURL string, metricSet MetricSet, usedHeadless bool, targetErr error) {
	if e.runLog == nil {
		return
	}
	entry := RunLogEntry{
		RunID:          summary.RunID,
		ReqDate:        summary.Date,
		Platform:       target.Platform,
		SongID:         target.SongID,
		Alias:          target.Alias,
		Title:          target.Title,
		Artist:         target.Artist,
		Album:          target.Album,
		SourceURL:      sourceURL,
		TotalPlays:     metricSet.TotalPlays,
		TotalListeners: metricSet.TotalListeners,
		UsedHeadless:   usedHeadless,
	}
	if metricSet.RawPlays != "" {
		entry.RawPlays = &metricSet.RawPlays
	}
	if metricSet.RawListeners != "" {
		entry.RawListeners = &metricSet.RawListeners
	}
	if targetErr != nil {
		message := targetErr.Error()
		entry.Error = &message
	}
	if err := e.runLog.Append(ctx, entry); err != nil {
		e.logger.Error("run log append failed",
			zap.String("platform", string(target.Platform)),
			zap.String("song_id", target.SongID),
			zap.Error(err),
		)
	}
}

func (e *Engine) archivePage(ctx context.Context, target Target, date string, body []byte) {
	if e.archive == nil || !e.cfg.Archive {
		return
	}
	path := archive.ObjectPath(string(target.Platform), date, target.SongID, sha256.ShortDigest(body))
	uri, err := e.archive.PutObject(ctx, path, "text/html; charset=utf-8", body)
	if err != nil {
		e.logger.Error("page archive failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}
	if uri != "" {
		e.logger.Debug("page archived", zap.String("uri", uri))
	}
}

func (e *Engine) publishSummary(ctx context.Context, summary RunSummary) {
	if e.publisher == nil || e.cfg.Topic == "" {
		return
	}
	id, err := e.publisher.Publish(ctx, e.cfg.Topic, summary)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			e.logger.Error("run summary publish failed", zap.Error(err))
		}
		return
	}
	e.logger.Debug("run summary published", zap.String("message_id", id))
}
