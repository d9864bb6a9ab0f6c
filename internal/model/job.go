package model

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// GeoPoint is a WGS 84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies within latitude [-90,90] and longitude [-180,180].
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lon)
}

// LocationQuery is what a seeker searches with. Any combination of location
// fields may be set; Skills alone is a valid, degraded query.
type LocationQuery struct {
	Coordinates *GeoPoint
	PlaceName   string
	PostalCode  string
	Skills      string // free-text keywords, e.g. "react node"
}

// HasLocation reports whether any location field is present.
func (q LocationQuery) HasLocation() bool {
	return q.Coordinates != nil || strings.TrimSpace(q.PlaceName) != "" || strings.TrimSpace(q.PostalCode) != ""
}

// SearchParams are the provider-neutral request parameters of one strategy.
type SearchParams struct {
	Keywords      string    // empty = no keyword filter
	Where         string    // provider-side locality matching, empty = none
	Center        *GeoPoint // nil = no coordinate constraint
	DistanceMiles float64   // only meaningful with Center
	MaxDaysOld    int       // recency window, 0 = provider default
	SortByDate    bool
}

// Strategy is one candidate query in the search cascade. Priority is the
// position in the planned slice.
type Strategy struct {
	Name   string
	Params SearchParams
}

// RawRecord is a single, untrusted result from a search provider, decoded from
// JSON. Fields may be missing, null, or of an unexpected type.
type RawRecord map[string]any

// JobType is the inferred employment type of a posting.
type JobType int

const (
	FullTime JobType = iota
	PartTime
	Internship
	Other
)

func (t JobType) String() string {
	switch t {
	case PartTime:
		return "Part-time"
	case Internship:
		return "Internship"
	case Other:
		return "Other"
	default:
		return "Full-time"
	}
}

// ParseJobType accepts display strings ("Part-time") as well as lower,
// underscore and hyphen forms ("part_time", "full-time"). Empty input is FullTime.
func ParseJobType(s string) (JobType, error) {
	norm := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch norm {
	case "", "fulltime":
		return FullTime, nil
	case "parttime":
		return PartTime, nil
	case "intern", "internship":
		return Internship, nil
	case "other", "contract":
		return Other, nil
	}
	return FullTime, fmt.Errorf("unknown job type %q", s)
}

// JobRecord is the canonical, provider-agnostic job used throughout the pipeline.
type JobRecord struct {
	ID             string
	Title          string
	Company        string
	Location       string    // display string
	Coordinates    *GeoPoint // nil when the provider gave none
	Description    string
	SalaryMin      *float64
	SalaryMax      *float64
	CreatedAt      time.Time
	DistanceMiles  *float64 // nil when either side has no coordinates
	JobType        JobType
	Category       string
	Skills         []string // never empty, "General" at minimum
	Featured       bool
	SourceStrategy string
	ContactEmail   *string
	ContactPhone   *string
	ContactURL     *string
	IsLocal        bool
}

// SalaryNotSpecified is the SalaryText of a record without a minimum salary.
const SalaryNotSpecified = "Salary not specified"

// SalaryText renders the salary range as "$50,000-70,000", a floor alone as
// "$50,000+", and anything else as SalaryNotSpecified.
func (j JobRecord) SalaryText() string {
	switch {
	case j.SalaryMin != nil && j.SalaryMax != nil:
		return "$" + money(*j.SalaryMin) + "-" + money(*j.SalaryMax)
	case j.SalaryMin != nil:
		return "$" + money(*j.SalaryMin) + "+"
	}
	return SalaryNotSpecified
}

func money(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// LocalJobPosting is a user-submitted posting. Coordinates are mandatory and
// postings are never mutated after creation.
type LocalJobPosting struct {
	ID           string
	Title        string
	Company      string
	Location     string
	Coordinates  GeoPoint
	Description  string
	SalaryMin    *float64
	SalaryMax    *float64
	JobType      *JobType // nil = infer from title
	Category     string
	Skills       []string
	ContactEmail *string
	ContactPhone *string
	ContactURL   *string
	SubmittedAt  time.Time
}

// SearchProvider runs a single query against an external job search API.
// An empty result slice with a nil error is a normal response.
type SearchProvider interface {
	Search(ctx context.Context, params SearchParams) ([]RawRecord, error)
}

// LocalJobStore holds locally submitted postings.
type LocalJobStore interface {
	AddJob(ctx context.Context, job LocalJobPosting) error
	// JobsWithin returns postings whose distance from center is <= radiusMiles.
	JobsWithin(ctx context.Context, center GeoPoint, radiusMiles float64) ([]LocalJobPosting, error)
	AllJobs(ctx context.Context) ([]LocalJobPosting, error)
	CountJobs(ctx context.Context) (int, error)
}
