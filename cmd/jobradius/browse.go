package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradius/internal/browse"
	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/search"
)

var browseFlags queryFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Search and browse results interactively (TUI)",
	Long:  "Runs one search behind a spinner, then opens the split-pane browser: provider jobs on the left, local postings on the right.",
	RunE:  runBrowse,
}

func init() {
	browseFlags.register(browseCmd)
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	q, err := browseFlags.query(cmd)
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

	logger := silentLogger()
	st, err := openStores(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	radius := browseFlags.radius
	if radius == 0 {
		radius = cfg.Search.DefaultRadiusMiles
	}
	svc := buildSearchService(cfg, st.jobs, logger, nil)

	res, err := browse.RunLoader("Searching "+describeQuery(q), cfg.WorstCaseCascade(), func(ctx context.Context) (search.Result, error) {
		return svc.Search(ctx, q, radius)
	})
	var nf *model.NotFoundError
	switch {
	case errors.As(err, &nf):
		fmt.Println("No jobs found with any search strategy.")
		return nil
	case errors.Is(err, browse.ErrCancelled):
		return nil
	case err != nil:
		return err
	}

	return browse.RunBrowser(browse.Results{Jobs: res.Jobs, Strategy: res.Strategy, Attempts: res.Attempts})
}

func describeQuery(q model.LocationQuery) string {
	switch {
	case q.Coordinates != nil:
		return "near " + q.Coordinates.String()
	case q.PlaceName != "":
		return "in " + q.PlaceName
	case q.PostalCode != "":
		return "in " + q.PostalCode
	}
	return "for " + q.Skills
}
