package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/browse"
	"github.com/amishk599/jobradius/internal/config"
	"github.com/amishk599/jobradius/internal/entitlement"
	"github.com/amishk599/jobradius/internal/model"
)

var usageRole string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Inspect and record subscriber usage",
	Long:  "Operator commands for the entitlement evaluator: show a subscriber's usage, check or record an action, and manage subscriptions.",
}

var usageShowCmd = &cobra.Command{
	Use:   "show <subscriber>",
	Short: "Show the current month's usage and plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageShow,
}

var usageCheckCmd = &cobra.Command{
	Use:   "check <subscriber> <action>",
	Short: "Check whether an action is allowed",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsageCheck,
}

var usageRecordCmd = &cobra.Command{
	Use:   "record <subscriber> <action>",
	Short: "Check and record one action",
	Long:  "Records the action only when the subscriber's plan allows it, then prints the new count.",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsageRecord,
}

var usageSubscribeCmd = &cobra.Command{
	Use:   "subscribe <subscriber> [plan]",
	Short: "Put a subscriber on a plan",
	Long:  "Subscribes to the given plan, or shows a plan picker when none is given.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runUsageSubscribe,
}

var usageCancelCmd = &cobra.Command{
	Use:   "cancel <subscriber>",
	Short: "Cancel a subscriber's subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsageCancel,
}

func init() {
	usageCmd.PersistentFlags().StringVar(&usageRole, "role", string(model.RoleStudent), "free tier to fall back to: student or employer")
	usageCmd.AddCommand(usageShowCmd, usageCheckCmd, usageRecordCmd, usageSubscribeCmd, usageCancelCmd)
	rootCmd.AddCommand(usageCmd)
}

// withEvaluator loads config, opens the usage stores and runs fn.
func withEvaluator(fn func(ctx context.Context, ev *entitlement.Evaluator) error) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(debug, cfg.Log.Format)
	if !debug {
		logger = silentLogger()
	}
	if cfg.Usage.Backend == config.StorageMemory {
		fmt.Fprintln(os.Stderr, "warning: usage.backend is memory; nothing recorded here outlives this command")
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ev, err := buildEvaluator(cfg, st, logger, nil)
	if err != nil {
		return err
	}
	return fn(ctx, ev)
}

func defaultPlan() (string, error) {
	role := model.Role(strings.ToLower(strings.TrimSpace(usageRole)))
	switch role {
	case model.RoleStudent, model.RoleEmployer:
		return entitlement.FreePlanFor(role), nil
	}
	return "", fmt.Errorf("--role must be %q or %q, got %q", model.RoleStudent, model.RoleEmployer, usageRole)
}

func runUsageShow(cmd *cobra.Command, args []string) error {
	def, err := defaultPlan()
	if err != nil {
		return err
	}
	return withEvaluator(func(ctx context.Context, ev *entitlement.Evaluator) error {
		plan, err := ev.EffectivePlan(ctx, args[0], def)
		if err != nil {
			return err
		}
		period, err := ev.Usage(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Subscriber: %s\n", period.SubscriberID)
		fmt.Printf("Plan:       %s (%s)\n", plan.Name, plan.ID)
		fmt.Printf("Period:     %s to %s\n\n", period.PeriodStart.Format("2006-01-02"), period.PeriodEnd.Format("2006-01-02"))

		fmt.Printf("%-20s %-8s %-10s %s\n", "Action", "Used", "Limit", "Usage")
		fmt.Println(strings.Repeat("─", 50))
		for _, a := range model.AllActions {
			used := period.Counters[a]
			limit, metered := plan.LimitFor(a)
			limitText := "-"
			if metered {
				limitText = limit.String()
			}
			fmt.Printf("%-20s %-8d %-10s %.0f%%\n", a.Label(), used, limitText, entitlement.UsagePercentage(used, limit, metered))
		}
		return nil
	})
}

func runUsageCheck(cmd *cobra.Command, args []string) error {
	action, err := model.ParseActionKind(args[1])
	if err != nil {
		return err
	}
	def, err := defaultPlan()
	if err != nil {
		return err
	}
	return withEvaluator(func(ctx context.Context, ev *entitlement.Evaluator) error {
		printDecision(ev.CanPerform(ctx, args[0], action, def))
		return nil
	})
}

func runUsageRecord(cmd *cobra.Command, args []string) error {
	action, err := model.ParseActionKind(args[1])
	if err != nil {
		return err
	}
	def, err := defaultPlan()
	if err != nil {
		return err
	}
	return withEvaluator(func(ctx context.Context, ev *entitlement.Evaluator) error {
		d := ev.CanPerform(ctx, args[0], action, def)
		if !d.Allowed {
			printDecision(d)
			return errors.New("action not recorded")
		}
		count, err := ev.IncrementUsage(ctx, args[0], action)
		if err != nil {
			return err
		}
		fmt.Printf("recorded %s for %s: %d this month\n", action.Label(), args[0], count)
		return nil
	})
}

func runUsageSubscribe(cmd *cobra.Command, args []string) error {
	def, err := defaultPlan()
	if err != nil {
		return err
	}
	return withEvaluator(func(ctx context.Context, ev *entitlement.Evaluator) error {
		planID := ""
		if len(args) == 2 {
			planID = args[1]
		} else {
			current := def
			if plan, err := ev.EffectivePlan(ctx, args[0], def); err == nil {
				current = plan.ID
			}
			plans := ev.Catalog().Plans()
			choice, err := browse.RunPlanPicker(plans, current)
			if err != nil {
				return err
			}
			if choice < 0 {
				return nil
			}
			planID = plans[choice].ID
		}

		sub, err := ev.Subscribe(ctx, args[0], planID)
		if err != nil {
			return err
		}
		fmt.Printf("subscribed %s to %s until %s\n", sub.SubscriberID, sub.PlanID, sub.CurrentPeriodEnd.Format("2006-01-02"))
		return nil
	})
}

func runUsageCancel(cmd *cobra.Command, args []string) error {
	return withEvaluator(func(ctx context.Context, ev *entitlement.Evaluator) error {
		if err := ev.Cancel(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("canceled subscription for %s\n", args[0])
		return nil
	})
}

func printDecision(d entitlement.Decision) {
	if d.Allowed {
		if d.Metered && !d.Limit.Unlimited {
			fmt.Printf("allowed: %s %d of %d used on %s\n", d.Action.Label(), d.Used, d.Limit.Max, d.PlanID)
		} else {
			fmt.Printf("allowed: %s is not limited on %s\n", d.Action.Label(), d.PlanID)
		}
		return
	}
	fmt.Printf("denied: %s\n", d.Reason)
	if d.UpgradeRequired {
		fmt.Println("upgrade required")
	}
}
