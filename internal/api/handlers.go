package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/normalize"
)

const (
	msgNoJobs        = "No jobs found with any search strategy"
	msgNoJobsDetail  = "We tried multiple locations and search methods but couldn't find matching jobs"
	msgMissingFields = "Missing required job fields."

	maxBodyBytes = 1 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// handleSearch serves GET /search?lat=&lon=&place=&postalCode=&skills=&radius=.
// "location" is accepted as an alias of "place".
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	center, err := parseCenter(qs.Get("lat"), qs.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := parseRadius(qs.Get("radius"), s.defaultRadius)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	place := qs.Get("place")
	if place == "" {
		place = qs.Get("location")
	}
	q := model.LocationQuery{
		Coordinates: center,
		PlaceName:   place,
		PostalCode:  qs.Get("postalCode"),
		Skills:      qs.Get("skills"),
	}

	res, err := s.search.Search(r.Context(), q, radius)
	if err != nil {
		s.writeSearchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobResponses(res.Jobs))
}

func (s *Server) writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nf *model.NotFoundError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &nf):
		echo := searchParamsEcho{
			Location:   nf.Query.PlaceName,
			PostalCode: nf.Query.PostalCode,
			Skills:     nf.Query.Skills,
		}
		if c := nf.Query.Coordinates; c != nil {
			lat, lon := c.Lat, c.Lon
			echo.Lat, echo.Lon = &lat, &lon
		}
		writeJSON(w, http.StatusNotFound, notFoundResponse{
			Error:        msgNoJobs,
			Message:      msgNoJobsDetail,
			SearchParams: echo,
		})
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case r.Context().Err() != nil:
		// Client went away; nobody is reading the response.
		s.logger.Debug("search abandoned by client", "request_id", RequestID(r.Context()), "error", err)
	default:
		s.logger.Error("search failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleListLocalJobs serves GET /local-jobs?lat=&lon=&radius=.
func (s *Server) handleListLocalJobs(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	center, err := parseCenter(qs.Get("lat"), qs.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	radius, err := parseRadius(qs.Get("radius"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := s.search.LocalJobs(r.Context(), center, radius)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("listing local jobs failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toJobResponses(jobs))
}

type localJobRequest struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	Description  string   `json:"description"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	Type         string   `json:"type"`
	Category     string   `json:"category"`
	Skills       []string `json:"skills"`
	ContactEmail *string  `json:"contact_email"`
	ContactPhone *string  `json:"contact_phone"`
	ContactURL   *string  `json:"contact_url"`
}

func (req localJobRequest) complete() bool {
	return strings.TrimSpace(req.Title) != "" &&
		strings.TrimSpace(req.Company) != "" &&
		strings.TrimSpace(req.Location) != "" &&
		req.Lat != nil && req.Lon != nil
}

func (req localJobRequest) posting() (model.LocalJobPosting, error) {
	p := model.LocalJobPosting{
		Title:        req.Title,
		Company:      req.Company,
		Location:     req.Location,
		Coordinates:  model.GeoPoint{Lat: *req.Lat, Lon: *req.Lon},
		Description:  req.Description,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Category:     req.Category,
		Skills:       req.Skills,
		ContactEmail: blankToNil(req.ContactEmail),
		ContactPhone: blankToNil(req.ContactPhone),
		ContactURL:   blankToNil(req.ContactURL),
	}
	if req.Type != "" {
		t, err := model.ParseJobType(req.Type)
		if err != nil {
			return model.LocalJobPosting{}, &model.ValidationError{Field: "type", Message: err.Error()}
		}
		p.JobType = &t
	}
	return p, nil
}

// handleSubmitLocalJob serves POST /local-jobs. Nothing is stored unless
// every required field is present and valid.
func (s *Server) handleSubmitLocalJob(w http.ResponseWriter, r *http.Request) {
	var req localJobRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	p, err := req.posting()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.search.SubmitLocal(r.Context(), p)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		s.logger.Error("submitting local job failed", "request_id", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{Success: true, Job: toJobResponse(normalize.Local(saved))})
}

func parseCenter(lat, lon string) (*model.GeoPoint, error) {
	if lat == "" && lon == "" {
		return nil, nil
	}
	if lat == "" || lon == "" {
		return nil, errors.New("lat and lon must be given together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon %q", lon)
	}
	p := model.GeoPoint{Lat: la, Lon: lo}
	if !p.Valid() {
		return nil, errors.New("lat must be within ±90 and lon within ±180")
	}
	return &p, nil
}

func parseRadius(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 {
		return 0, fmt.Errorf("invalid radius %q", s)
	}
	return r, nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
