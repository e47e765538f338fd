package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"github.com/noah-isme/study-planner/internal/planner"
)

const defaultPreviewTTL = 30 * time.Minute

// PlanPreview is a simulated plan kept in memory until saved or expired.
type PlanPreview struct {
	ID        string
	Result    *planner.PlanResult
	CreatedAt time.Time
	ExpiresAt time.Time
}

// PlanStore keeps previews for a bounded time. Expired entries are evicted by
// the cleanup loop started with Start.
type PlanStore struct {
	ttl   time.Duration
	cache *ttlcache.Cache[string, PlanPreview]
}

// NewPlanStore builds a preview store. Reads do not extend an entry's life.
func NewPlanStore(ttl time.Duration) *PlanStore {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	cache := ttlcache.New[string, PlanPreview](
		ttlcache.WithTTL[string, PlanPreview](ttl),
		ttlcache.WithDisableTouchOnHit[string, PlanPreview](),
	)
	return &PlanStore{ttl: ttl, cache: cache}
}

// Save stores result under a fresh id.
func (s *PlanStore) Save(result *planner.PlanResult) PlanPreview {
	now := time.Now().UTC()
	preview := PlanPreview{
		ID:        uuid.NewString(),
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.cache.Set(preview.ID, preview, ttlcache.DefaultTTL)
	return preview
}

// Get returns a live preview.
func (s *PlanStore) Get(id string) (PlanPreview, bool) {
	item := s.cache.Get(id)
	if item == nil || item.IsExpired() {
		return PlanPreview{}, false
	}
	return item.Value(), true
}

// Delete drops a preview, typically once it has been persisted.
func (s *PlanStore) Delete(id string) {
	s.cache.Delete(id)
}

// Len reports the number of previews held, expired ones included until evicted.
func (s *PlanStore) Len() int {
	return s.cache.Len()
}

// Start runs the eviction loop and blocks until Stop is called.
func (s *PlanStore) Start() {
	s.cache.Start()
}

// Stop ends the eviction loop.
func (s *PlanStore) Stop() {
	s.cache.Stop()
}
