package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"go.uber.org/zap"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
	"github.com/jaeha-dev/music-metrics-crawler/internal/platform"
)

// stage is one attempt in the degrading search sequence. Stages reshape the
// query; they are evaluated in order until one produces any result.
type stage struct {
	number int
	name   string
	query  func(t collect.Target) string
}

// The seven stages. A later stage runs only when the current one returns
// zero results; any non-empty result set stops the descent.
var stages = []stage{
	{1, "full query", func(t collect.Target) string {
		return buildQuery(t.Title, t.Artist, t.Album)
	}},
	{2, "markers stripped", func(t collect.Target) string {
		return buildQuery(stripMarkers(t.Title), stripFeaturing(t.Artist), stripMarkers(t.Album))
	}},
	{3, "album dropped", func(t collect.Target) string {
		return buildQuery(t.Title, stripFeaturing(t.Artist))
	}},
	{4, "symbols stripped", func(t collect.Target) string {
		return buildQuery(stripNonScript(t.Title), stripNonScript(t.Artist))
	}},
	{5, "parentheticals dropped", func(t collect.Target) string {
		return buildQuery(stripParenthetical(t.Title), stripParenthetical(t.Artist))
	}},
	{6, "title only", func(t collect.Target) string {
		return buildQuery(stripParenthetical(t.Title))
	}},
	{7, "title only, symbols stripped", func(t collect.Target) string {
		return buildQuery(stripNonScript(t.Title))
	}},
}

// SearcherRegistry selects the search surface for a platform tag.
type SearcherRegistry interface {
	Searcher(p collect.Platform) (platform.Searcher, error)
}

// StagedResolver implements collect.Resolver. Resolutions are cached; a
// confident resolution is never silently overwritten.
type StagedResolver struct {
	fetcher   collect.Fetcher
	searchers SearcherRegistry
	logger    *zap.Logger
	sim       *metrics.JaroWinkler

	mu    sync.RWMutex
	cache map[string]collect.ResolvedIdentifier
}

// New builds a StagedResolver on top of the static fetch tier.
func New(fetcher collect.Fetcher, searchers SearcherRegistry, logger *zap.Logger) *StagedResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StagedResolver{
		fetcher:   fetcher,
		searchers: searchers,
		logger:    logger,
		sim:       metrics.NewJaroWinkler(),
		cache:     make(map[string]collect.ResolvedIdentifier),
	}
}

// Resolve walks the stages until one yields a match. Exhausting all seven
// returns an error wrapping collect.ErrUnresolved; that is not fatal to a
// run, the target is skipped and flagged by the caller.
func (r *StagedResolver) Resolve(ctx context.Context, target collect.Target) (collect.ResolvedIdentifier, error) {
	key := cacheKey(target)
	if cached, ok := r.lookup(key); ok {
		return cached, nil
	}

	searcher, err := r.searchers.Searcher(target.Platform)
	if err != nil {
		return collect.ResolvedIdentifier{}, fmt.Errorf("resolve %s: %w", target.TrackKey(), err)
	}

	tried := make(map[string]struct{})
	for _, s := range stages {
		query := s.query(target)
		if query == "" {
			continue
		}
		if _, dup := tried[query]; dup {
			continue
		}
		tried[query] = struct{}{}

		results, err := r.searchOnce(ctx, searcher, query)
		if err != nil {
			if ctx.Err() != nil {
				return collect.ResolvedIdentifier{}, err
			}
			r.logger.Warn("search stage failed",
				zap.String("platform", string(target.Platform)),
				zap.Int("stage", s.number),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		if len(results) == 0 {
			continue
		}

		match := r.pickMatch(target, results)
		resolved := collect.ResolvedIdentifier{
			Platform:     target.Platform,
			SongID:       match.SongID,
			MatchedStage: s.number,
			SourceQuery:  query,
			Confidence:   r.confidence(target, match),
		}
		r.logger.Info("identifier resolved",
			zap.String("platform", string(target.Platform)),
			zap.String("song_id", resolved.SongID),
			zap.Int("stage", s.number),
			zap.Float64("confidence", resolved.Confidence))
		r.store(key, resolved)
		return resolved, nil
	}

	return collect.ResolvedIdentifier{}, fmt.Errorf("resolve %q by %q on %s after %d stages: %w",
		target.Title, target.Artist, target.Platform, len(stages), collect.ErrUnresolved)
}

func (r *StagedResolver) searchOnce(ctx context.Context, searcher platform.Searcher, query string) ([]platform.SearchResult, error) {
	resp, err := r.fetcher.Fetch(ctx, collect.FetchRequest{URL: searcher.SearchURL(query)})
	if err != nil {
		return nil, fmt.Errorf("search fetch: %w", err)
	}
	results, err := searcher.ParseResults(resp.Body)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// pickMatch prefers an exact case-insensitive title+artist match; failing
// that, the first returned result is accepted as a best-effort match.
func (r *StagedResolver) pickMatch(target collect.Target, results []platform.SearchResult) platform.SearchResult {
	want := normalizeForMatch(target.Title, target.Artist)
	for _, res := range results {
		if normalizeForMatch(res.Title, res.Artist) == want {
			return res
		}
	}
	return results[0]
}

func (r *StagedResolver) confidence(target collect.Target, match platform.SearchResult) float64 {
	return strutil.Similarity(
		normalizeForMatch(target.Title, target.Artist),
		normalizeForMatch(match.Title, match.Artist),
		r.sim,
	)
}

func (r *StagedResolver) lookup(key string) (collect.ResolvedIdentifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cached, ok := r.cache[key]
	return cached, ok
}

func (r *StagedResolver) store(key string, resolved collect.ResolvedIdentifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cache[key]; exists {
		return
	}
	r.cache[key] = resolved
}

func cacheKey(t collect.Target) string {
	return fmt.Sprintf("%s|%s|%s", t.Platform, t.Title, t.Artist)
}
