package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobradius/internal/model"
)

// Reasons returned when a decision cannot be made. They are safe to show to
// end users; the underlying cause is logged.
const (
	ReasonUsageUnavailable = "Unable to fetch usage data"
	ReasonInvalidPlan      = "Invalid plan"
	ReasonCheckFailed      = "Error checking permissions"
)

var (
	// ErrUnknownPlan is returned when a plan ID is not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrNoSubscriber is returned for an empty subscriber ID.
	ErrNoSubscriber = errors.New("subscriber id is required")
	// ErrNoSubscription is returned by Cancel when there is nothing to cancel.
	ErrNoSubscription = errors.New("no subscription")
)

// Decision is the answer to CanPerform. A denial is a normal value, not an error.
type Decision struct {
	Allowed         bool
	Reason          string
	UpgradeRequired bool
	PlanID          string
	Action          model.ActionKind
	Used            int
	Limit           model.Limit
	Metered         bool
}

// Observer receives every decision.
type Observer interface {
	ObserveDecision(action model.ActionKind, allowed bool)
}

type nopObserver struct{}

func (nopObserver) ObserveDecision(model.ActionKind, bool) {}

// Evaluator checks and records metered actions.
type Evaluator struct {
	catalog  *Catalog
	subs     model.SubscriptionStore
	usage    model.UsageStore
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewEvaluator creates an Evaluator. A nil observer discards decisions.
func NewEvaluator(catalog *Catalog, subs model.SubscriptionStore, usage model.UsageStore, logger *slog.Logger, observer Observer) *Evaluator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Evaluator{
		catalog:  catalog,
		subs:     subs,
		usage:    usage,
		logger:   logger,
		observer: observer,
		now:      time.Now,
	}
}

// Catalog returns the plans the evaluator resolves against.
func (e *Evaluator) Catalog() *Catalog { return e.catalog }

// EffectivePlan returns the plan of the subscriber's active subscription, or
// the plan named by defaultPlanID when there is none.
func (e *Evaluator) EffectivePlan(ctx context.Context, subscriberID, defaultPlanID string) (model.Plan, error) {
	if strings.TrimSpace(subscriberID) == "" {
		return model.Plan{}, ErrNoSubscriber
	}
	planID := defaultPlanID
	sub, err := e.subs.Subscription(ctx, subscriberID)
	if err != nil {
		return model.Plan{}, fmt.Errorf("resolving plan for %s: %w", subscriberID, err)
	}
	if sub != nil && sub.Status == model.StatusActive {
		planID = sub.PlanID
	}
	plan, ok := e.catalog.Plan(planID)
	if !ok {
		return model.Plan{}, fmt.Errorf("resolving plan for %s: %w %q", subscriberID, ErrUnknownPlan, planID)
	}
	return plan, nil
}

// CanPerform reports whether subscriberID may perform action once more in the
// current month. Any failure to resolve the subscriber, plan or usage denies.
func (e *Evaluator) CanPerform(ctx context.Context, subscriberID string, action model.ActionKind, defaultPlanID string) Decision {
	d := e.decide(ctx, subscriberID, action, defaultPlanID)
	e.observer.ObserveDecision(d.Action, d.Allowed)
	return d
}

func (e *Evaluator) decide(ctx context.Context, subscriberID string, action model.ActionKind, defaultPlanID string) Decision {
	d := Decision{Action: action}

	canon, err := model.ParseActionKind(string(action))
	if err != nil {
		e.logger.Error("entitlement check for unknown action", "subscriber", subscriberID, "action", action)
		d.Reason = ReasonCheckFailed
		return d
	}
	action = canon
	d.Action = canon

	plan, err := e.EffectivePlan(ctx, subscriberID, defaultPlanID)
	switch {
	case errors.Is(err, ErrUnknownPlan):
		e.logger.Error("entitlement check failed", "subscriber", subscriberID, "action", action, "error", err)
		d.Reason = ReasonInvalidPlan
		return d
	case err != nil:
		e.logger.Error("entitlement check failed", "subscriber", subscriberID, "action", action, "error", err)
		d.Reason = ReasonCheckFailed
		return d
	}
	d.PlanID = plan.ID

	start, _ := PeriodFor(e.now())
	counters, err := e.usage.Counters(ctx, subscriberID, start)
	if err != nil {
		e.logger.Error("entitlement usage lookup failed", "subscriber", subscriberID, "action", action, "error", err)
		d.Reason = ReasonUsageUnavailable
		return d
	}
	d.Used = counters[action]

	limit, metered := plan.LimitFor(action)
	d.Limit = limit
	d.Metered = metered
	if !metered || limit.Unlimited || d.Used < limit.Max {
		d.Allowed = true
		return d
	}

	d.UpgradeRequired = true
	d.Reason = fmt.Sprintf("You've reached your %s limit of %d for this month", action.Label(), limit.Max)
	e.logger.Debug("entitlement denied", "subscriber", subscriberID, "action", action, "plan", plan.ID, "used", d.Used, "limit", limit.Max)
	return d
}

// IncrementUsage adds one to the subscriber's counter for action in the
// current month and returns the new count. Call it once per completed action.
func (e *Evaluator) IncrementUsage(ctx context.Context, subscriberID string, action model.ActionKind) (int, error) {
	if strings.TrimSpace(subscriberID) == "" {
		return 0, ErrNoSubscriber
	}
	canon, err := model.ParseActionKind(string(action))
	if err != nil {
		return 0, err
	}
	start, _ := PeriodFor(e.now())
	count, err := e.usage.Increment(ctx, subscriberID, start, canon)
	if err != nil {
		return 0, fmt.Errorf("recording %s for %s: %w", action, subscriberID, err)
	}
	return count, nil
}

// Usage returns the subscriber's counters for the current month.
func (e *Evaluator) Usage(ctx context.Context, subscriberID string) (model.UsagePeriod, error) {
	if strings.TrimSpace(subscriberID) == "" {
		return model.UsagePeriod{}, ErrNoSubscriber
	}
	start, end := PeriodFor(e.now())
	counters, err := e.usage.Counters(ctx, subscriberID, start)
	if err != nil {
		return model.UsagePeriod{}, fmt.Errorf("reading usage for %s: %w", subscriberID, err)
	}
	return model.UsagePeriod{
		SubscriberID: subscriberID,
		PeriodStart:  start,
		PeriodEnd:    end,
		Counters:     counters,
	}, nil
}

// HasFeature reports whether the subscriber's effective plan lists feature.
// It returns false when the plan cannot be resolved.
func (e *Evaluator) HasFeature(ctx context.Context, subscriberID, feature, defaultPlanID string) bool {
	plan, err := e.EffectivePlan(ctx, subscriberID, defaultPlanID)
	if err != nil {
		e.logger.Warn("feature check failed", "subscriber", subscriberID, "feature", feature, "error", err)
		return false
	}
	return plan.HasFeature(feature)
}

// UsagePercentage is used/limit as a percentage capped at 100. Unlimited and
// unmetered actions report 0; a zero limit reports 100.
func UsagePercentage(used int, limit model.Limit, metered bool) float64 {
	if !metered || limit.Unlimited {
		return 0
	}
	if limit.Max == 0 {
		return 100
	}
	return math.Min(float64(used)/float64(limit.Max)*100, 100)
}

// Subscribe puts the subscriber on planID starting now, replacing any
// existing subscription. The period lasts one billing interval.
func (e *Evaluator) Subscribe(ctx context.Context, subscriberID, planID string) (model.Subscription, error) {
	if strings.TrimSpace(subscriberID) == "" {
		return model.Subscription{}, ErrNoSubscriber
	}
	plan, ok := e.catalog.Plan(planID)
	if !ok {
		return model.Subscription{}, fmt.Errorf("subscribing %s: %w %q", subscriberID, ErrUnknownPlan, planID)
	}

	now := e.now().UTC()
	sub := model.Subscription{
		ID:                 uuid.NewString(),
		SubscriberID:       subscriberID,
		PlanID:             plan.ID,
		Status:             model.StatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   renewal(now, plan.Interval == model.Yearly),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := e.subs.SaveSubscription(ctx, sub); err != nil {
		return model.Subscription{}, fmt.Errorf("subscribing %s: %w", subscriberID, err)
	}
	e.logger.Info("subscription created", "subscriber", subscriberID, "plan", plan.ID, "period_end", sub.CurrentPeriodEnd)
	return sub, nil
}

// Cancel marks the subscriber's subscription canceled. Usage counters are
// untouched; the free tier applies from the next check.
func (e *Evaluator) Cancel(ctx context.Context, subscriberID string) error {
	if strings.TrimSpace(subscriberID) == "" {
		return ErrNoSubscriber
	}
	sub, err := e.subs.Subscription(ctx, subscriberID)
	if err != nil {
		return fmt.Errorf("canceling subscription for %s: %w", subscriberID, err)
	}
	if sub == nil {
		return fmt.Errorf("canceling subscription for %s: %w", subscriberID, ErrNoSubscription)
	}
	sub.Status = model.StatusCanceled
	sub.UpdatedAt = e.now().UTC()
	if err := e.subs.SaveSubscription(ctx, *sub); err != nil {
		return fmt.Errorf("canceling subscription for %s: %w", subscriberID, err)
	}
	e.logger.Info("subscription canceled", "subscriber", subscriberID, "plan", sub.PlanID)
	return nil
}
