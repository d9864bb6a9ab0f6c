// Package search owns the discovery pipeline:
// plan → execute → normalize → local lookup → merge.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobradius/internal/filter"
	"github.com/amishk599/jobradius/internal/geo"
	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/normalize"
	"github.com/amishk599/jobradius/internal/strategy"
)

// Search outcomes reported to the Observer.
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// LocalIDPrefix starts every server-assigned local job ID.
const LocalIDPrefix = "local-"

// DefaultLocalRadius applies to local job listings without an explicit radius.
const DefaultLocalRadius = 5.0

// Observer receives one call per search and per accepted local posting.
type Observer interface {
	ObserveSearch(outcome string, d time.Duration)
	ObserveLocalSubmission()
}

type nopObserver struct{}

func (nopObserver) ObserveSearch(string, time.Duration) {}
func (nopObserver) ObserveLocalSubmission()             {}

// Result is a successful search.
type Result struct {
	Jobs       []model.JobRecord
	Strategy   string
	Attempts   []model.Attempt
	LocalCount int
}

// Service runs searches and manages local postings.
type Service struct {
	planner    *strategy.Planner
	executor   *strategy.Executor
	normalizer *normalize.Normalizer
	local      model.LocalJobStore
	logger     *slog.Logger
	observer   Observer
	now        func() time.Time
	newID      func() string
}

// NewService creates a Service wired with all its dependencies. A nil
// observer discards reports.
func NewService(
	planner *strategy.Planner,
	executor *strategy.Executor,
	normalizer *normalize.Normalizer,
	local model.LocalJobStore,
	logger *slog.Logger,
	observer Observer,
) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		planner:    planner,
		executor:   executor,
		normalizer: normalizer,
		local:      local,
		logger:     logger,
		observer:   observer,
		now:        time.Now,
		newID:      func() string { return LocalIDPrefix + uuid.NewString() },
	}
}

// Search finds jobs for q within radiusMiles. When every strategy comes up
// empty the error is a *model.NotFoundError, even if local postings exist.
func (s *Service) Search(ctx context.Context, q model.LocationQuery, radiusMiles float64) (Result, error) {
	start := time.Now()
	res, err := s.search(ctx, q, radiusMiles)
	s.observer.ObserveSearch(outcomeOf(err), time.Since(start))
	return res, err
}

func (s *Service) search(ctx context.Context, q model.LocationQuery, radiusMiles float64) (Result, error) {
	q.Skills = strings.TrimSpace(q.Skills)
	if q.Coordinates != nil && !q.Coordinates.Valid() {
		return Result{}, &model.ValidationError{Field: "coordinates", Message: "latitude must be within ±90 and longitude within ±180"}
	}

	plan := s.planner.Plan(q, radiusMiles)
	outcome, err := s.executor.Execute(ctx, q, plan)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			s.logger.Warn("search exhausted every strategy",
				"strategies", len(nf.Attempts),
				"skills", q.Skills,
				"place", q.PlaceName,
			)
			return Result{Attempts: outcome.Attempts}, err
		}
		return Result{Attempts: outcome.Attempts}, fmt.Errorf("running search cascade: %w", err)
	}

	providerJobs := s.normalizer.All(outcome.Records, outcome.Strategy)

	var localJobs []model.LocalJobPosting
	if q.Coordinates != nil {
		localJobs, err = s.local.JobsWithin(ctx, *q.Coordinates, filter.EffectiveRadius(radiusMiles))
	} else {
		localJobs, err = s.local.AllJobs(ctx)
	}
	if err != nil {
		return Result{Attempts: outcome.Attempts}, fmt.Errorf("loading local jobs: %w", err)
	}

	jobs := filter.Merge(providerJobs, localJobs, q.Coordinates, radiusMiles)

	localCount := 0
	for _, j := range jobs {
		if j.IsLocal {
			localCount++
		}
	}

	s.logger.Info("search complete",
		"strategy", outcome.Strategy,
		"attempts", len(outcome.Attempts),
		"provider", len(providerJobs),
		"local", localCount,
		"returned", len(jobs),
	)

	return Result{
		Jobs:       jobs,
		Strategy:   outcome.Strategy,
		Attempts:   outcome.Attempts,
		LocalCount: localCount,
	}, nil
}

func outcomeOf(err error) string {
	var nf *model.NotFoundError
	switch {
	case err == nil:
		return OutcomeFound
	case errors.As(err, &nf):
		return OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	}
	return OutcomeError
}

// SubmitLocal validates a posting, assigns its ID and submission time, and
// stores it. Title, company, location and in-range coordinates are required.
func (s *Service) SubmitLocal(ctx context.Context, p model.LocalJobPosting) (model.LocalJobPosting, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Company = strings.TrimSpace(p.Company)
	p.Location = strings.TrimSpace(p.Location)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)

	if err := validatePosting(p); err != nil {
		return model.LocalJobPosting{}, err
	}

	p.ID = s.newID()
	p.SubmittedAt = s.now().UTC()
	if err := s.local.AddJob(ctx, p); err != nil {
		return model.LocalJobPosting{}, fmt.Errorf("submitting local job: %w", err)
	}
	s.observer.ObserveLocalSubmission()
	s.logger.Info("local job submitted", "id", p.ID, "title", p.Title, "company", p.Company)
	return p, nil
}

func validatePosting(p model.LocalJobPosting) error {
	for _, f := range []struct{ name, value string }{
		{"title", p.Title},
		{"company", p.Company},
		{"location", p.Location},
	} {
		if f.value == "" {
			return &model.ValidationError{Field: f.name, Message: "is required"}
		}
	}
	if !p.Coordinates.Valid() {
		return &model.ValidationError{Field: "coordinates", Message: "latitude must be within ±90 and longitude within ±180"}
	}
	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"salary_min", p.SalaryMin},
		{"salary_max", p.SalaryMax},
	} {
		if f.value != nil && *f.value < 0 {
			return &model.ValidationError{Field: f.name, Message: "must not be negative"}
		}
	}
	if p.SalaryMin != nil && p.SalaryMax != nil && *p.SalaryMin > *p.SalaryMax {
		return &model.ValidationError{Field: "salary_max", Message: "must not be below salary_min"}
	}
	return nil
}

// LocalJobs lists local postings as job records. With a center, only
// postings within radiusMiles (DefaultLocalRadius when ≤ 0) are returned,
// nearest first; without one, every posting in submission order.
func (s *Service) LocalJobs(ctx context.Context, center *model.GeoPoint, radiusMiles float64) ([]model.JobRecord, error) {
	if center == nil {
		postings, err := s.local.AllJobs(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing local jobs: %w", err)
		}
		jobs := make([]model.JobRecord, len(postings))
		for i, p := range postings {
			jobs[i] = normalize.Local(p)
		}
		return jobs, nil
	}

	if !center.Valid() {
		return nil, &model.ValidationError{Field: "coordinates", Message: "latitude must be within ±90 and longitude within ±180"}
	}
	if radiusMiles <= 0 {
		radiusMiles = DefaultLocalRadius
	}
	postings, err := s.local.JobsWithin(ctx, *center, radiusMiles)
	if err != nil {
		return nil, fmt.Errorf("listing local jobs near %s: %w", center, err)
	}
	jobs := make([]model.JobRecord, len(postings))
	for i, p := range postings {
		jobs[i] = normalize.Local(p)
		d := geo.DistanceMiles(*center, p.Coordinates)
		jobs[i].DistanceMiles = &d
	}
	sort.SliceStable(jobs, func(i, j int) bool { return *jobs[i].DistanceMiles < *jobs[j].DistanceMiles })
	return jobs, nil
}

// LocalCount returns how many local postings are stored.
func (s *Service) LocalCount(ctx context.Context) (int, error) {
	return s.local.CountJobs(ctx)
}
