package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ActionKind is a metered action. There is exactly one canonical name per
// action; alternate spellings are mapped by ParseActionKind.
type ActionKind string

const (
	ActionJobApplications ActionKind = "job_applications"
	ActionSavedJobs       ActionKind = "saved_jobs"
	ActionJobPostings     ActionKind = "job_postings"
	ActionApplicantViews  ActionKind = "applicant_views"
	ActionMessagesSent    ActionKind = "messages_sent"
	ActionProfileViews    ActionKind = "profile_views"
	ActionSearches        ActionKind = "searches"
)

// AllActions lists every known action in display order.
var AllActions = []ActionKind{
	ActionJobApplications,
	ActionSavedJobs,
	ActionJobPostings,
	ActionApplicantViews,
	ActionMessagesSent,
	ActionProfileViews,
	ActionSearches,
}

var actionAliases = map[string]ActionKind{
	"jobapplications": ActionJobApplications,
	"savedjobs":       ActionSavedJobs,
	"jobpostings":     ActionJobPostings,
	"applicantviews":  ActionApplicantViews,
	"messagessent":    ActionMessagesSent,
	"profileviews":    ActionProfileViews,
	"searches":        ActionSearches,
}

// ParseActionKind maps "job_applications", "jobApplications" and
// "job-applications" to the same ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	if a, ok := actionAliases[key]; ok {
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Label is the human-readable form used in denial reasons ("job applications").
func (a ActionKind) Label() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// Limit is a per-period cap. The zero value is a cap of 0 (never allowed).
type Limit struct {
	Max       int
	Unlimited bool
}

// UnlimitedLimit is a Limit that always allows.
var UnlimitedLimit = Limit{Unlimited: true}

func (l Limit) String() string {
	if l.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(l.Max)
}

// UnmarshalYAML accepts a non-negative integer or the string "unlimited".
func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: limit must be an integer or \"unlimited\"", node.Line)
	}
	if strings.EqualFold(node.Value, "unlimited") {
		*l = UnlimitedLimit
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil || n < 0 {
		return fmt.Errorf("line %d: limit must be a non-negative integer or \"unlimited\", got %q", node.Line, node.Value)
	}
	*l = Limit{Max: n}
	return nil
}

// BillingInterval is how often a plan renews.
type BillingInterval string

const (
	Monthly BillingInterval = "monthly"
	Yearly  BillingInterval = "yearly"
)

// Role decides which free tier applies when a subscriber has no paid plan.
type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

// Plan is immutable subscription configuration loaded at startup.
type Plan struct {
	ID       string
	Name     string
	Price    float64
	Interval BillingInterval
	Role     Role
	Features []string
	Limits   map[ActionKind]Limit // absent action = not metered
}

// LimitFor returns the plan's limit for action and whether the action is metered.
func (p Plan) LimitFor(action ActionKind) (Limit, bool) {
	l, ok := p.Limits[action]
	return l, ok
}

// HasFeature reports whether the plan lists feature (exact match).
func (p Plan) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// SubscriptionStatus is the lifecycle state of a paid subscription.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusExpired  SubscriptionStatus = "expired"
	StatusTrial    SubscriptionStatus = "trial"
)

// Subscription links a subscriber to a plan. There is at most one per subscriber.
type Subscription struct {
	ID                 string
	SubscriberID       string
	PlanID             string
	Status             SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// UsagePeriod is one subscriber's action counts for one calendar month (UTC).
// PeriodEnd is exclusive.
type UsagePeriod struct {
	SubscriberID string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Counters     map[ActionKind]int
}

// UsageStore persists per-period counters. Increment must be atomic per
// (subscriber, period, action) triple.
type UsageStore interface {
	// Counters returns the counts recorded for the period; a period with no
	// recorded actions yields an empty, non-nil map.
	Counters(ctx context.Context, subscriberID string, periodStart time.Time) (map[ActionKind]int, error)
	// Increment adds one to the counter and returns the new value.
	Increment(ctx context.Context, subscriberID string, periodStart time.Time, action ActionKind) (int, error)
}

// SubscriptionStore persists subscriptions.
type SubscriptionStore interface {
	// Subscription returns the subscriber's subscription, or nil if there is none.
	Subscription(ctx context.Context, subscriberID string) (*Subscription, error)
	// SaveSubscription inserts or replaces the subscriber's subscription.
	SaveSubscription(ctx context.Context, sub Subscription) error
}
