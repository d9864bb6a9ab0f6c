package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobradius/internal/geo"
	"github.com/amishk599/jobradius/internal/model"
)

// milesPerDegreeLat is a lower bound on the great-circle miles spanned by one
// degree of latitude; it keeps the SQL prefilter from dropping real matches.
const milesPerDegreeLat = 69.0

var schema = []string{
	`CREATE TABLE IF NOT EXISTS local_jobs (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		company       TEXT NOT NULL,
		location      TEXT NOT NULL,
		lat           REAL NOT NULL,
		lon           REAL NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		salary_min    REAL,
		salary_max    REAL,
		job_type      TEXT,
		category      TEXT NOT NULL DEFAULT '',
		skills        TEXT NOT NULL DEFAULT '[]',
		contact_email TEXT,
		contact_phone TEXT,
		contact_url   TEXT,
		submitted_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS local_jobs_lat ON local_jobs (lat)`,
	`CREATE TABLE IF NOT EXISTS usage_counters (
		subscriber_id TEXT NOT NULL,
		period_start  TEXT NOT NULL,
		action        TEXT NOT NULL,
		count         INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (subscriber_id, period_start, action)
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		subscriber_id        TEXT PRIMARY KEY,
		id                   TEXT NOT NULL,
		plan_id              TEXT NOT NULL,
		status               TEXT NOT NULL,
		current_period_start TEXT NOT NULL,
		current_period_end   TEXT NOT NULL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,
}

// SQLiteStore keeps local jobs, usage counters and subscriptions in a single
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// its tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer; a single connection serializes writes
	// instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const jobColumns = `id, title, company, location, lat, lon, description, salary_min, salary_max,
	job_type, category, skills, contact_email, contact_phone, contact_url, submitted_at`

// AddJob inserts p. A duplicate id yields ErrDuplicateJob.
func (s *SQLiteStore) AddJob(ctx context.Context, p model.LocalJobPosting) error {
	skills, err := json.Marshal(nonNil(p.Skills))
	if err != nil {
		return fmt.Errorf("encoding skills for %s: %w", p.ID, err)
	}
	var jobType *string
	if p.JobType != nil {
		t := p.JobType.String()
		jobType = &t
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO local_jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Company, p.Location, p.Coordinates.Lat, p.Coordinates.Lon, p.Description,
		p.SalaryMin, p.SalaryMax, jobType, p.Category, string(skills),
		p.ContactEmail, p.ContactPhone, p.ContactURL,
		p.SubmittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("adding local job %s: %w", p.ID, ErrDuplicateJob)
		}
		return fmt.Errorf("adding local job %s: %w", p.ID, err)
	}
	return nil
}

// JobsWithin returns postings within radiusMiles of center in submission order.
func (s *SQLiteStore) JobsWithin(ctx context.Context, center model.GeoPoint, radiusMiles float64) ([]model.LocalJobPosting, error) {
	if radiusMiles < 0 {
		return []model.LocalJobPosting{}, nil
	}
	span := radiusMiles / milesPerDegreeLat
	jobs, err := s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM local_jobs WHERE lat BETWEEN ? AND ? ORDER BY rowid`,
		center.Lat-span, center.Lat+span,
	)
	if err != nil {
		return nil, fmt.Errorf("querying local jobs near %s: %w", center, err)
	}
	out := jobs[:0]
	for _, p := range jobs {
		if geo.Within(center, p.Coordinates, radiusMiles) {
			out = append(out, p)
		}
	}
	return out, nil
}

// AllJobs returns every posting in submission order.
func (s *SQLiteStore) AllJobs(ctx context.Context) ([]model.LocalJobPosting, error) {
	jobs, err := s.queryJobs(ctx, `SELECT `+jobColumns+` FROM local_jobs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying local jobs: %w", err)
	}
	return jobs, nil
}

// CountJobs returns the number of stored postings.
func (s *SQLiteStore) CountJobs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM local_jobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting local jobs: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...any) ([]model.LocalJobPosting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]model.LocalJobPosting, 0)
	for rows.Next() {
		var (
			p                        model.LocalJobPosting
			salaryMin, salaryMax     sql.NullFloat64
			jobType                  sql.NullString
			email, phone, contactURL sql.NullString
			skills, submitted        string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.Coordinates.Lat, &p.Coordinates.Lon,
			&p.Description, &salaryMin, &salaryMax, &jobType, &p.Category, &skills,
			&email, &phone, &contactURL, &submitted); err != nil {
			return nil, err
		}

		p.SalaryMin = nullFloat(salaryMin)
		p.SalaryMax = nullFloat(salaryMax)
		p.ContactEmail = nullString(email)
		p.ContactPhone = nullString(phone)
		p.ContactURL = nullString(contactURL)
		if jobType.Valid {
			t, err := model.ParseJobType(jobType.String)
			if err != nil {
				return nil, fmt.Errorf("job %s: %w", p.ID, err)
			}
			p.JobType = &t
		}
		if err := json.Unmarshal([]byte(skills), &p.Skills); err != nil {
			return nil, fmt.Errorf("job %s: decoding skills: %w", p.ID, err)
		}
		if len(p.Skills) == 0 {
			p.Skills = nil
		}
		if p.SubmittedAt, err = time.Parse(time.RFC3339Nano, submitted); err != nil {
			return nil, fmt.Errorf("job %s: parsing submitted_at: %w", p.ID, err)
		}
		jobs = append(jobs, p)
	}
	return jobs, rows.Err()
}

// Counters returns the subscriber's counts for the period starting at periodStart.
func (s *SQLiteStore) Counters(ctx context.Context, subscriberID string, periodStart time.Time) (map[model.ActionKind]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, count FROM usage_counters WHERE subscriber_id = ? AND period_start = ?`,
		subscriberID, periodKey(periodStart),
	)
	if err != nil {
		return nil, fmt.Errorf("reading usage for %s: %w", subscriberID, err)
	}
	defer rows.Close()

	out := make(map[model.ActionKind]int)
	for rows.Next() {
		var (
			action string
			count  int
		)
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("reading usage for %s: %w", subscriberID, err)
		}
		out[model.ActionKind(action)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading usage for %s: %w", subscriberID, err)
	}
	return out, nil
}

// Increment adds one to the action's counter with an upsert and returns the new count.
func (s *SQLiteStore) Increment(ctx context.Context, subscriberID string, periodStart time.Time, action model.ActionKind) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO usage_counters (subscriber_id, period_start, action, count) VALUES (?, ?, ?, 1)
		 ON CONFLICT (subscriber_id, period_start, action) DO UPDATE SET count = count + 1
		 RETURNING count`,
		subscriberID, periodKey(periodStart), string(action),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("incrementing %s for %s: %w", action, subscriberID, err)
	}
	return count, nil
}

// Subscription returns the subscriber's subscription, or nil if there is none.
func (s *SQLiteStore) Subscription(ctx context.Context, subscriberID string) (*model.Subscription, error) {
	var (
		sub                                      model.Subscription
		status                                   string
		periodStart, periodEnd, created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subscriber_id, plan_id, status, current_period_start, current_period_end, created_at, updated_at
		 FROM subscriptions WHERE subscriber_id = ?`, subscriberID,
	).Scan(&sub.ID, &sub.SubscriberID, &sub.PlanID, &status, &periodStart, &periodEnd, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading subscription for %s: %w", subscriberID, err)
	}
	sub.Status = model.SubscriptionStatus(status)

	for _, f := range []struct {
		dst *time.Time
		src string
	}{
		{&sub.CurrentPeriodStart, periodStart},
		{&sub.CurrentPeriodEnd, periodEnd},
		{&sub.CreatedAt, created},
		{&sub.UpdatedAt, updated},
	} {
		if *f.dst, err = time.Parse(time.RFC3339Nano, f.src); err != nil {
			return nil, fmt.Errorf("reading subscription for %s: %w", subscriberID, err)
		}
	}
	return &sub, nil
}

// SaveSubscription inserts or replaces the subscriber's subscription.
func (s *SQLiteStore) SaveSubscription(ctx context.Context, sub model.Subscription) error {
	ts := func(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (subscriber_id, id, plan_id, status, current_period_start, current_period_end, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (subscriber_id) DO UPDATE SET
			id = excluded.id,
			plan_id = excluded.plan_id,
			status = excluded.status,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		sub.SubscriberID, sub.ID, sub.PlanID, string(sub.Status),
		ts(sub.CurrentPeriodStart), ts(sub.CurrentPeriodEnd), ts(sub.CreatedAt), ts(sub.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving subscription for %s: %w", sub.SubscriberID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
