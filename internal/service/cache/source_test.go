package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"DialMeter/internal/domain/models"

	"github.com/benbjohnson/clock"
)

type stubSource struct {
	calls int
	err   error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(context.Context) (*models.Reading, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Reading{Source: "stub", Kind: models.KindPercentage, Percentage: float64(s.calls)}, nil
}

func TestCachedSourceServesWithinTTL(t *testing.T) {
	mock := clock.NewMock()
	src := &stubSource{}
	cs := NewCachedSource(src, NewTTLCacheWithClock(mock), time.Minute, nil)
	ctx := context.Background()

	r1, err := cs.Fetch(ctx)
	if err != nil || r1.Cached || r1.Percentage != 1 {
		t.Fatalf("unexpected first fetch %+v %v", r1, err)
	}
	r2, _ := cs.Fetch(ctx)
	if !r2.Cached || r2.Percentage != 1 || src.calls != 1 {
		t.Fatalf("expected cached reading, got %+v calls=%d", r2, src.calls)
	}

	mock.Add(2 * time.Minute)
	r3, _ := cs.Fetch(ctx)
	if r3.Cached || r3.Percentage != 2 {
		t.Fatalf("expected fresh reading after expiry, got %+v", r3)
	}
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	mock := clock.NewMock()
	src := &stubSource{err: &models.FetchError{Source: "stub", Err: errors.New("down")}}
	cs := NewCachedSource(src, NewTTLCacheWithClock(mock), time.Minute, nil)

	if _, err := cs.Fetch(context.Background()); models.Classify(err) != models.KindFetch {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, err := cs.Fetch(context.Background()); err == nil || src.calls != 2 {
		t.Fatalf("expected second upstream call, calls=%d err=%v", src.calls, err)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	mock := clock.NewMock()
	c := NewTTLCacheWithClock(mock)
	ctx := context.Background()
	_ = c.SetBytes(ctx, "k", []byte("v"), time.Second)
	_ = c.SetBytes(ctx, "forever", []byte("v"), 0)
	if _, ok, _ := c.GetBytes(ctx, "k"); !ok {
		t.Fatalf("expected hit")
	}
	mock.Add(2 * time.Second)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if _, ok, _ := c.GetBytes(ctx, "forever"); !ok {
		t.Fatalf("expected entry without ttl to persist")
	}
}
