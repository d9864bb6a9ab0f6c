package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/jobradius/internal/geo"
	"github.com/amishk599/jobradius/internal/model"
)

// MemoryJobStore keeps local postings in insertion order. Writers are
// serialized; readers get copies and never observe a partial write.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs []model.LocalJobPosting
	ids  map[string]struct{}
}

// NewMemoryJobStore returns an empty store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{ids: make(map[string]struct{})}
}

// AddJob appends p. A posting whose id is already stored is rejected.
func (s *MemoryJobStore) AddJob(_ context.Context, p model.LocalJobPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[p.ID]; ok {
		return fmt.Errorf("adding local job %s: %w", p.ID, ErrDuplicateJob)
	}
	s.ids[p.ID] = struct{}{}
	s.jobs = append(s.jobs, copyPosting(p))
	return nil
}

// JobsWithin returns copies of the postings within radiusMiles of center, in submission order.
func (s *MemoryJobStore) JobsWithin(_ context.Context, center model.GeoPoint, radiusMiles float64) ([]model.LocalJobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LocalJobPosting, 0)
	for _, p := range s.jobs {
		if geo.Within(center, p.Coordinates, radiusMiles) {
			out = append(out, copyPosting(p))
		}
	}
	return out, nil
}

// AllJobs returns copies of every posting in submission order.
func (s *MemoryJobStore) AllJobs(_ context.Context) ([]model.LocalJobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.LocalJobPosting, len(s.jobs))
	for i, p := range s.jobs {
		out[i] = copyPosting(p)
	}
	return out, nil
}

// CountJobs returns the number of stored postings.
func (s *MemoryJobStore) CountJobs(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs), nil
}

type usageKey struct {
	subscriber string
	period     string
	action     model.ActionKind
}

// MemoryUsageStore keeps counters in a mutex-guarded map. Counts are lost on
// restart.
type MemoryUsageStore struct {
	mu     sync.Mutex
	counts map[usageKey]int
}

// NewMemoryUsageStore returns an empty MemoryUsageStore.
func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{counts: make(map[usageKey]int)}
}

// Counters returns the subscriber's counts for the period starting at periodStart.
func (s *MemoryUsageStore) Counters(_ context.Context, subscriberID string, periodStart time.Time) (map[model.ActionKind]int, error) {
	period := periodKey(periodStart)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ActionKind]int)
	for k, v := range s.counts {
		if k.subscriber == subscriberID && k.period == period {
			out[k.action] = v
		}
	}
	return out, nil
}

// Increment adds one to the action's counter and returns the new count.
func (s *MemoryUsageStore) Increment(_ context.Context, subscriberID string, periodStart time.Time, action model.ActionKind) (int, error) {
	k := usageKey{subscriber: subscriberID, period: periodKey(periodStart), action: action}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[k]++
	return s.counts[k], nil
}

// MemorySubscriptionStore keeps one subscription per subscriber.
type MemorySubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]model.Subscription
}

// NewMemorySubscriptionStore returns an empty MemorySubscriptionStore.
func NewMemorySubscriptionStore() *MemorySubscriptionStore {
	return &MemorySubscriptionStore{subs: make(map[string]model.Subscription)}
}

// Subscription returns a copy of the subscriber's subscription, or nil if there is none.
func (s *MemorySubscriptionStore) Subscription(_ context.Context, subscriberID string) (*model.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[subscriberID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

// SaveSubscription inserts or replaces the subscriber's subscription.
func (s *MemorySubscriptionStore) SaveSubscription(_ context.Context, sub model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.SubscriberID] = sub
	return nil
}
