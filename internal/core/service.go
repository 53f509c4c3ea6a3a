package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/feedmap/internal/mapping"
	"github.com/JonMunkholm/feedmap/internal/metrics"
)

// DefaultSampleTTL is how long fetched sample bodies stay cached.
const DefaultSampleTTL = 10 * time.Minute

// DefaultRunHistory is how many sync runs are kept per integration.
const DefaultRunHistory = 50

// Options configures a Service. Store and Fetcher are required.
type Options struct {
	Store   Store
	Fetcher *Fetcher
	Limiter *FetchLimiter
	// Cache defaults to an in-memory cache.
	Cache      SampleCache
	SampleTTL  time.Duration
	RunHistory int
}

// Service ties the mapping engine to stored integrations and live sources.
type Service struct {
	store      Store
	fetcher    *Fetcher
	limiter    *FetchLimiter
	cache      SampleCache
	sampleTTL  time.Duration
	runHistory int
	now        func() time.Time
}

// NewService creates a new Service instance.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if opts.Limiter == nil {
		opts.Limiter = NewFetchLimiter(0, 0)
	}
	if opts.Cache == nil {
		opts.Cache = NewMemorySampleCache()
	}
	if opts.SampleTTL <= 0 {
		opts.SampleTTL = DefaultSampleTTL
	}
	if opts.RunHistory <= 0 {
		opts.RunHistory = DefaultRunHistory
	}

	return &Service{
		store:      opts.Store,
		fetcher:    opts.Fetcher,
		limiter:    opts.Limiter,
		cache:      opts.Cache,
		sampleTTL:  opts.SampleTTL,
		runHistory: opts.RunHistory,
		now:        time.Now,
	}, nil
}

// LimiterStatus reports outbound fetch capacity.
func (s *Service) LimiterStatus() FetchLimiterStatus {
	return s.limiter.Status()
}

// WaitForFetches blocks until in-flight fetches finish, for graceful shutdown.
func (s *Service) WaitForFetches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// evaluate runs the mapping engine and records metrics.
func evaluate(doc any, cfg mapping.Config, dir mapping.Directory) *mapping.Result {
	result := mapping.Evaluate(doc, cfg, dir)
	if result == nil {
		return nil
	}
	metrics.Evaluations.WithLabelValues(string(result.Mode)).Inc()
	if result.Mode == mapping.TargetCollection {
		metrics.RecordsResolved.Add(float64(len(result.Records)))
	} else {
		metrics.RecordsResolved.Inc()
	}
	return result
}
