package cache

import (
	"context"
	"encoding/json"
	"time"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/domain/repository"
	applogger "DialMeter/pkg/logger"
)

// CachedSource serves a recent successful reading instead of calling upstream.
// Failed fetches are never cached and never answered from cache.
type CachedSource struct {
	src    repository.SignalSource
	cache  BytesCache
	ttl    time.Duration
	logger *applogger.Logger
}

func NewCachedSource(src repository.SignalSource, c BytesCache, ttl time.Duration, l *applogger.Logger) *CachedSource {
	if l == nil {
		l = applogger.NewNop()
	}
	return &CachedSource{src: src, cache: c, ttl: ttl, logger: l}
}

func (s *CachedSource) Name() string { return s.src.Name() }

func (s *CachedSource) key() string { return "reading:" + s.src.Name() }

func (s *CachedSource) Fetch(ctx context.Context) (*models.Reading, error) {
	b, ok, err := s.cache.GetBytes(ctx, s.key())
	if err != nil {
		s.logger.Warn("reading cache get failed", applogger.String("source", s.src.Name()), applogger.Error(err))
	}
	if ok {
		var r models.Reading
		if err := json.Unmarshal(b, &r); err == nil {
			r.Cached = true
			return &r, nil
		}
	}

	r, err := s.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(r); err == nil {
		if err := s.cache.SetBytes(ctx, s.key(), b, s.ttl); err != nil {
			s.logger.Warn("reading cache set failed", applogger.String("source", s.src.Name()), applogger.Error(err))
		}
	}
	return r, nil
}
