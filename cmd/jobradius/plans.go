package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/entitlement"
	"github.com/amishk599/jobradius/internal/model"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans and their limits",
	Long:  "Reads the plan catalog (config or built-in) and prints a table of plans with their monthly limits.",
	RunE:  runPlans,
}

func init() {
	rootCmd.AddCommand(plansCmd)
}

func runPlans(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	catalog := entitlement.DefaultCatalog()
	if len(cfg.Plans) > 0 {
		if catalog, err = entitlement.NewCatalog(cfg.Plans); err != nil {
			return fmt.Errorf("load plans: %w", err)
		}
	}

	fmt.Printf("%-22s %-12s %-9s %-12s %s\n", "Plan", "Name", "Role", "Price", "Limits")
	fmt.Println(strings.Repeat("─", 100))
	for _, p := range catalog.Plans() {
		fmt.Printf("%-22s %-12s %-9s %-12s %s\n", p.ID, p.Name, p.Role, priceText(p), limitsText(p))
	}
	fmt.Printf("\nTotal: %d plans\n", len(catalog.Plans()))
	return nil
}

func priceText(p model.Plan) string {
	if p.Price == 0 {
		return "free"
	}
	unit := "mo"
	if p.Interval == model.Yearly {
		unit = "yr"
	}
	return "$" + humanize.Commaf(p.Price) + "/" + unit
}

// limitsText lists metered actions in canonical order, e.g. "job applications 5, saved jobs 10".
func limitsText(p model.Plan) string {
	var parts []string
	for _, a := range model.AllActions {
		if l, ok := p.LimitFor(a); ok {
			parts = append(parts, a.Label()+" "+l.String())
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}
