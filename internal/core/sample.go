package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/feedmap/internal/logging"
	"github.com/JonMunkholm/feedmap/internal/mapping"
	"github.com/JonMunkholm/feedmap/internal/metrics"
)

// Sample is a fetched and decoded source document.
type Sample struct {
	Document any
	Size     int
	Cached   bool
}

// FetchSample retrieves src and decodes the body. With useCache set, a
// recently fetched body for the same source is reused.
func (s *Service) FetchSample(ctx context.Context, src Source, useCache bool) (*Sample, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)
	key := SampleKey(src)

	if useCache {
		body, found, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn("sample cache read failed", "error", err)
		}
		if found {
			metrics.SampleCache.WithLabelValues(metrics.CacheHit).Inc()
			doc, err := mapping.Decode(body)
			if err == nil {
				return &Sample{Document: doc, Size: len(body), Cached: true}, nil
			}
			log.Warn("discarding undecodable cached sample", "error", err)
		} else {
			metrics.SampleCache.WithLabelValues(metrics.CacheMiss).Inc()
		}
	}

	body, err := s.fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	doc, err := mapping.Decode(body)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, body, s.sampleTTL); err != nil {
		log.Warn("sample cache write failed", "error", err)
	}
	return &Sample{Document: doc, Size: len(body)}, nil
}

// fetch performs one limited source request.
func (s *Service) fetch(ctx context.Context, src Source) ([]byte, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		metrics.Fetches.WithLabelValues(fetchOutcome(err)).Inc()
		return nil, err
	}
	defer s.limiter.Release()

	body, err := s.fetcher.Fetch(ctx, src)
	metrics.Fetches.WithLabelValues(fetchOutcome(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}

	logging.FromContext(ctx).Debug("source fetched",
		"url", redactURL(src.URL),
		"bytes", len(body),
	)
	return body, nil
}
