package store

import "testing"

func TestMemoryJobStore(t *testing.T) {
	testLocalJobStore(t, NewMemoryJobStore())
}

func TestMemoryJobStore_ConcurrentAdds(t *testing.T) {
	testLocalJobStoreConcurrent(t, NewMemoryJobStore())
}

func TestMemoryUsageStore(t *testing.T) {
	testUsageStore(t, NewMemoryUsageStore())
}

func TestMemorySubscriptionStore(t *testing.T) {
	testSubscriptionStore(t, NewMemorySubscriptionStore())
}

func TestMemoryJobStore_ReadsAreCopies(t *testing.T) {
	s := NewMemoryJobStore()
	p := posting("local-1", near(1))
	if err := s.AddJob(ctx, p); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	p.Skills[0] = "mutated by caller"

	jobs, _ := s.AllJobs(ctx)
	jobs[0].Skills[0] = "mutated by reader"
	jobs[0].Title = "changed"

	again, _ := s.AllJobs(ctx)
	if again[0].Skills[0] != "Cooking" || again[0].Title != p.Title {
		t.Errorf("store contents leaked through a copy: %+v", again[0])
	}
}
