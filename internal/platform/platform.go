// Package platform holds the per-platform collection strategies: song page
// URL shapes, capability declarations, ordered selector-candidate tables and
// search surfaces for GENIE, BUGS and MELON. All platform dispatch goes
// through the Registry; nothing outside this package branches on the tag.
package platform

import (
	"fmt"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// SearchResult is one row parsed from a platform's search surface.
type SearchResult struct {
	SongID string
	Title  string
	Artist string
}

// Searcher exposes a platform's public song search.
type Searcher interface {
	Platform() collect.Platform
	SearchURL(query string) string
	ParseResults(content []byte) ([]SearchResult, error)
}

// ErrUnsupported is returned for platform tags without a registered variant.
var ErrUnsupported = fmt.Errorf("unsupported platform")

// Registry selects the collector and searcher variant for a platform tag.
type Registry struct {
	collectors map[collect.Platform]collect.Collector
	searchers  map[collect.Platform]Searcher
}

// NewRegistry registers all built-in platform variants.
func NewRegistry() *Registry {
	r := &Registry{
		collectors: make(map[collect.Platform]collect.Collector),
		searchers:  make(map[collect.Platform]Searcher),
	}
	for _, v := range []*variant{newGenie(), newBugs(), newMelon()} {
		r.collectors[v.Platform()] = v
		r.searchers[v.Platform()] = v
	}
	return r
}

// Collector returns the collection strategy for the platform.
func (r *Registry) Collector(p collect.Platform) (collect.Collector, error) {
	c, ok := r.collectors[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, p)
	}
	return c, nil
}

// Searcher returns the search surface for the platform.
func (r *Registry) Searcher(p collect.Platform) (Searcher, error) {
	s, ok := r.searchers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, p)
	}
	return s, nil
}

// Supported reports whether the platform tag has a registered variant.
func (r *Registry) Supported(p collect.Platform) bool {
	_, ok := r.collectors[p]
	return ok
}

// Platforms lists the registered platform tags.
func (r *Registry) Platforms() []collect.Platform {
	out := make([]collect.Platform, 0, len(r.collectors))
	for p := range r.collectors {
		out = append(out, p)
	}
	return out
}
