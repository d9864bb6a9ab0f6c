package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/api"
	"github.com/amishk599/jobradius/internal/model"
)

// queryFlags are shared by search and browse.
type queryFlags struct {
	lat, lon   float64
	place      string
	postalCode string
	skills     string
	radius     float64
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "seeker latitude (requires --lon)")
	cmd.Flags().Float64Var(&f.lon, "lon", 0, "seeker longitude (requires --lat)")
	cmd.Flags().StringVar(&f.place, "place", "", "place name, e.g. \"Andheri, Mumbai\"")
	cmd.Flags().StringVar(&f.postalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&f.skills, "skills", "", "skill keywords, e.g. \"react node\"")
	cmd.Flags().Float64Var(&f.radius, "radius", 0, "search radius in miles (default from config, capped at 5)")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
}

func (f *queryFlags) query(cmd *cobra.Command) (model.LocationQuery, error) {
	q := model.LocationQuery{
		PlaceName:  f.place,
		PostalCode: f.postalCode,
		Skills:     f.skills,
	}
	if cmd.Flags().Changed("lat") {
		p := model.GeoPoint{Lat: f.lat, Lon: f.lon}
		if !p.Valid() {
			return q, fmt.Errorf("--lat must be within ±90 and --lon within ±180")
		}
		q.Coordinates = &p
	}
	if !q.HasLocation() && strings.TrimSpace(q.Skills) == "" {
		return q, fmt.Errorf("give a location (--lat/--lon, --place, --postal-code) or --skills")
	}
	return q, nil
}

var (
	searchFlags queryFlags
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the results",
	Long:  "Runs the strategy cascade once against the provider, merges local postings, prints the jobs and exits.",
	RunE:  runSearch,
}

func init() {
	searchFlags.register(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := searchFlags.query(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	logger := setupLogger(debug, cfg.Log.Format)
	if !debug {
		logger = silentLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	radius := searchFlags.radius
	if radius == 0 {
		radius = cfg.Search.DefaultRadiusMiles
	}

	svc := buildSearchService(cfg, st.jobs, logger, nil)
	res, err := svc.Search(ctx, q, radius)
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		fmt.Println("No jobs found with any search strategy.")
		for _, a := range nf.Attempts {
			fmt.Printf("  %-28s %s\n", a.Strategy, a.Outcome)
		}
		return nil
	}
	if err != nil {
		return err
	}

	if searchJSON {
		return api.EncodeJobs(os.Stdout, res.Jobs)
	}

	fmt.Printf("%-40s %-25s %-9s %-20s %s\n", "Title", "Company", "Distance", "Salary", "Source")
	fmt.Println(strings.Repeat("─", 110))
	for _, j := range res.Jobs {
		dist := "-"
		if j.DistanceMiles != nil {
			dist = fmt.Sprintf("%.1f mi", *j.DistanceMiles)
		}
		fmt.Printf("%-40s %-25s %-9s %-20s %s\n", truncate(j.Title, 40), truncate(j.Company, 25), dist, j.SalaryText(), j.SourceStrategy)
	}
	fmt.Printf("\nTotal: %d jobs via %s (%d attempts, %d local postings on file)\n",
		len(res.Jobs), res.Strategy, len(res.Attempts), res.LocalCount)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
