// Package adapter holds search providers that turn SearchParams into raw
// provider records.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

const (
	// AdzunaBaseURL is the public Adzuna API root.
	AdzunaBaseURL = "https://api.adzuna.com/v1/api"

	defaultAdzunaCountry  = "in"
	defaultResultsPerPage = 20

	// maxErrorBody bounds how much of a non-200 body ends up in an error.
	maxErrorBody = 512
)

// AdzunaConfig holds credentials and request defaults for the Adzuna API.
type AdzunaConfig struct {
	BaseURL        string
	AppID          string
	AppKey         string
	Country        string
	ResultsPerPage int
}

// adzunaResponse is the envelope of /jobs/{country}/search/{page}. Results
// stay loosely typed; the normalizer owns their interpretation.
type adzunaResponse struct {
	Count   int               `json:"count"`
	Results []model.RawRecord `json:"results"`
}

// AdzunaAdapter queries the first result page of the Adzuna job search.
type AdzunaAdapter struct {
	cfg    AdzunaConfig
	client *http.Client
}

// NewAdzunaAdapter creates an adapter. Empty fields in cfg take defaults.
func NewAdzunaAdapter(cfg AdzunaConfig, client *http.Client) *AdzunaAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AdzunaBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Country == "" {
		cfg.Country = defaultAdzunaCountry
	}
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = defaultResultsPerPage
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AdzunaAdapter{cfg: cfg, client: client}
}

// Search runs one Adzuna query. A non-200 status is returned as a
// *model.HTTPError.
func (a *AdzunaAdapter) Search(ctx context.Context, p model.SearchParams) ([]model.RawRecord, error) {
	endpoint := a.searchURL(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna search: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
			Err:        fmt.Errorf("adzuna search: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload adzunaResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("adzuna search: decode response: %w", err)
	}
	return payload.Results, nil
}

func (a *AdzunaAdapter) searchURL(p model.SearchParams) string {
	q := url.Values{}
	q.Set("app_id", a.cfg.AppID)
	q.Set("app_key", a.cfg.AppKey)
	q.Set("results_per_page", strconv.Itoa(a.cfg.ResultsPerPage))
	if kw := strings.TrimSpace(p.Keywords); kw != "" {
		q.Set("what", kw)
	}
	if where := strings.TrimSpace(p.Where); where != "" {
		q.Set("where", where)
	}
	if p.Center != nil {
		q.Set("latitude", formatFloat(p.Center.Lat))
		q.Set("longitude", formatFloat(p.Center.Lon))
		if p.DistanceMiles > 0 {
			q.Set("distance", formatFloat(p.DistanceMiles))
		}
	}
	if p.MaxDaysOld > 0 {
		q.Set("max_days_old", strconv.Itoa(p.MaxDaysOld))
	}
	if p.SortByDate {
		q.Set("sort_by", "date")
	}
	return fmt.Sprintf("%s/jobs/%s/search/1?%s", a.cfg.BaseURL, url.PathEscape(a.cfg.Country), q.Encode())
}
