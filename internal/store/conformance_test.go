package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobradius/internal/model"
)

var (
	ctx    = context.Background()
	origin = model.GeoPoint{Lat: 19.07, Lon: 72.87}
	march  = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	april  = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

// near returns a point roughly the given miles north of origin.
func near(miles float64) model.GeoPoint {
	return model.GeoPoint{Lat: origin.Lat + miles/69.0933, Lon: origin.Lon}
}

func posting(id string, at model.GeoPoint) model.LocalJobPosting {
	salary := 30000.0
	partTime := model.PartTime
	email := "hire@cafe.example"
	return model.LocalJobPosting{
		ID:           id,
		Title:        "Line cook",
		Company:      "Cafe Madras",
		Location:     "Matunga",
		Coordinates:  at,
		Description:  "Evening shifts",
		SalaryMin:    &salary,
		JobType:      &partTime,
		Category:     "Hospitality",
		Skills:       []string{"Cooking", "Hygiene"},
		ContactEmail: &email,
		SubmittedAt:  time.Date(2026, 3, 5, 10, 0, 0, 123000000, time.UTC),
	}
}

func postingIDs(jobs []model.LocalJobPosting) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func testLocalJobStore(t *testing.T, s model.LocalJobStore) {
	t.Helper()

	n, err := s.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := s.AllJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	for _, p := range []model.LocalJobPosting{
		posting("local-a", near(1)),
		posting("local-b", near(8)),
		posting("local-c", near(3)),
	} {
		require.NoError(t, s.AddJob(ctx, p))
	}

	err = s.AddJob(ctx, posting("local-a", near(2)))
	assert.True(t, errors.Is(err, ErrDuplicateJob), "expected ErrDuplicateJob, got %v", err)

	n, err = s.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err = s.AllJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-a", "local-b", "local-c"}, postingIDs(all))

	within, err := s.JobsWithin(ctx, origin, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"local-a", "local-c"}, postingIDs(within))

	within, err = s.JobsWithin(ctx, origin, 10)
	require.NoError(t, err)
	assert.Len(t, within, 3)

	got := all[0]
	want := posting("local-a", near(1))
	assert.Equal(t, want.Title, got.Title)
	assert.InDelta(t, want.Coordinates.Lat, got.Coordinates.Lat, 1e-9)
	assert.Equal(t, want.Skills, got.Skills)
	require.NotNil(t, got.JobType)
	assert.Equal(t, model.PartTime, *got.JobType)
	require.NotNil(t, got.SalaryMin)
	assert.Equal(t, 30000.0, *got.SalaryMin)
	assert.Nil(t, got.SalaryMax)
	require.NotNil(t, got.ContactEmail)
	assert.Equal(t, "hire@cafe.example", *got.ContactEmail)
	assert.True(t, want.SubmittedAt.Equal(got.SubmittedAt), "submitted %v, want %v", got.SubmittedAt, want.SubmittedAt)
}

func testLocalJobStoreConcurrent(t *testing.T, s model.LocalJobStore) {
	t.Helper()

	const writers, perWriter = 8, 10
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := s.AddJob(ctx, posting(fmt.Sprintf("local-%d-%d", w, j), near(float64(j%4)))); err != nil {
					t.Errorf("AddJob: %v", err)
					return
				}
			}
		}(i)
	}
	// Readers run alongside the writers.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if _, err := s.JobsWithin(ctx, origin, 5); err != nil {
					t.Errorf("JobsWithin: %v", err)
					return
				}
				if _, err := s.AllJobs(ctx); err != nil {
					t.Errorf("AllJobs: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	n, err := s.CountJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, n)

	all, err := s.AllJobs(ctx)
	require.NoError(t, err)
	seen := make(map[string]bool, len(all))
	for _, p := range all {
		assert.False(t, seen[p.ID], "duplicate %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, seen, writers*perWriter)
}

func testUsageStore(t *testing.T, s model.UsageStore) {
	t.Helper()

	counters, err := s.Counters(ctx, "alice", march)
	require.NoError(t, err)
	assert.NotNil(t, counters)
	assert.Empty(t, counters)

	for want := 1; want <= 3; want++ {
		got, err := s.Increment(ctx, "alice", march, model.ActionJobApplications)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = s.Increment(ctx, "alice", march, model.ActionSavedJobs)
	require.NoError(t, err)
	_, err = s.Increment(ctx, "alice", april, model.ActionJobApplications)
	require.NoError(t, err)
	_, err = s.Increment(ctx, "bob", march, model.ActionJobApplications)
	require.NoError(t, err)

	counters, err = s.Counters(ctx, "alice", march)
	require.NoError(t, err)
	assert.Equal(t, map[model.ActionKind]int{
		model.ActionJobApplications: 3,
		model.ActionSavedJobs:       1,
	}, counters)

	counters, err = s.Counters(ctx, "alice", april)
	require.NoError(t, err)
	assert.Equal(t, map[model.ActionKind]int{model.ActionJobApplications: 1}, counters)

	// Concurrent increments on one triple lose nothing.
	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := s.Increment(ctx, "carol", march, model.ActionSearches); err != nil {
					t.Errorf("Increment: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	counters, err = s.Counters(ctx, "carol", march)
	require.NoError(t, err)
	assert.Equal(t, workers*perWorker, counters[model.ActionSearches])
}

func testSubscriptionStore(t *testing.T, s model.SubscriptionStore) {
	t.Helper()

	sub, err := s.Subscription(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, sub)

	created := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	first := model.Subscription{
		ID:                 "sub-1",
		SubscriberID:       "alice",
		PlanID:             "student_premium",
		Status:             model.StatusActive,
		CurrentPeriodStart: created,
		CurrentPeriodEnd:   created.AddDate(0, 1, 0),
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	require.NoError(t, s.SaveSubscription(ctx, first))

	sub, err = s.Subscription(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "student_premium", sub.PlanID)
	assert.Equal(t, model.StatusActive, sub.Status)
	assert.True(t, first.CurrentPeriodEnd.Equal(sub.CurrentPeriodEnd))

	// Saving again replaces the single row.
	canceled := first
	canceled.Status = model.StatusCanceled
	canceled.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, s.SaveSubscription(ctx, canceled))

	sub, err = s.Subscription(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.StatusCanceled, sub.Status)
	assert.True(t, canceled.UpdatedAt.Equal(sub.UpdatedAt))

	other, err := s.Subscription(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, other)
}
