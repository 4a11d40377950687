package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/clientwatch/pkg/redis"
)

// ReportStore persists scan reports
type ReportStore interface {
	Save(ctx context.Context, r *ScanReport) error
	Latest(ctx context.Context) (*ScanReport, error)
}

// CacheStore keeps reports in Redis under report:<as_of> and report:latest
type CacheStore struct {
	cache *redis.Cache
}

// NewCacheStore wraps a cache helper
func NewCacheStore(cache *redis.Cache) *CacheStore {
	return &CacheStore{cache: cache}
}

// Save writes the dated key and moves the latest pointer
func (s *CacheStore) Save(ctx context.Context, r *ScanReport) error {
	if err := s.cache.Set(ctx, redis.ReportKey(r.AsOf.String()), r, redis.TTLReport); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	if err := s.cache.Set(ctx, redis.LatestReportKey, r, redis.TTLLatest); err != nil {
		return fmt.Errorf("failed to cache latest report: %w", err)
	}
	return nil
}

// Latest reads the latest pointer
func (s *CacheStore) Latest(ctx context.Context) (*ScanReport, error) {
	var r ScanReport
	found, err := s.cache.Get(ctx, redis.LatestReportKey, &r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoReport
	}
	return &r, nil
}

// MemoryStore keeps the latest report in process
type MemoryStore struct {
	mu     sync.RWMutex
	latest *ScanReport
}

// Save replaces the latest report
func (s *MemoryStore) Save(_ context.Context, r *ScanReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = r
	return nil
}

// Latest returns the latest report
func (s *MemoryStore) Latest(context.Context) (*ScanReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

// Stores writes to every store and reads from the first that has a report
type Stores []ReportStore

// Save implements ReportStore; every store is tried
func (ss Stores) Save(ctx context.Context, r *ScanReport) error {
	var errs []error
	for _, s := range ss {
		if err := s.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Latest implements ReportStore
func (ss Stores) Latest(ctx context.Context) (*ScanReport, error) {
	var errs []error
	for _, s := range ss {
		r, err := s.Latest(ctx)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNoReport) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNoReport
}
