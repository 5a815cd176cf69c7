package fetch

import (
	"context"
	"errors"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// Noop implements collect.Fetcher but always returns an error, for builds
// and configs where the headless tier is unavailable.
type Noop struct{}

// NewNoop creates a new Noop fetcher.
func NewNoop() *Noop {
	return &Noop{}
}

// Fetch returns an error since this is a stub implementation.
func (Noop) Fetch(_ context.Context, _ collect.FetchRequest) (collect.FetchResponse, error) {
	return collect.FetchResponse{}, errors.New("headless fetcher not configured")
}
