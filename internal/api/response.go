package api

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

const (
	postedUnknown = "Recently"
	postedLayout  = "1/2/2006"
)

// jobResponse is the wire form of a JobRecord.
type jobResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Description    string   `json:"description"`
	SalaryMin      *float64 `json:"salary_min"`
	SalaryMax      *float64 `json:"salary_max"`
	Salary         string   `json:"salary"`
	Created        string   `json:"created"`
	Posted         string   `json:"posted"`
	Distance       *float64 `json:"distance"`
	ContactEmail   *string  `json:"contact_email"`
	ContactPhone   *string  `json:"contact_phone"`
	ContactURL     *string  `json:"contact_url"`
	Type           string   `json:"type"`
	Category       string   `json:"category"`
	Skills         []string `json:"skills"`
	Featured       bool     `json:"featured"`
	SearchStrategy string   `json:"search_strategy"`
	IsLocal        bool     `json:"is_local"`
}

func toJobResponse(j model.JobRecord) jobResponse {
	resp := jobResponse{
		ID:             j.ID,
		Title:          j.Title,
		Company:        j.Company,
		Location:       j.Location,
		Description:    j.Description,
		SalaryMin:      j.SalaryMin,
		SalaryMax:      j.SalaryMax,
		Salary:         j.SalaryText(),
		Posted:         postedText(j.CreatedAt),
		ContactEmail:   j.ContactEmail,
		ContactPhone:   j.ContactPhone,
		ContactURL:     j.ContactURL,
		Type:           j.JobType.String(),
		Category:       j.Category,
		Skills:         j.Skills,
		Featured:       j.Featured,
		SearchStrategy: j.SourceStrategy,
		IsLocal:        j.IsLocal,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if j.Coordinates != nil {
		lat, lon := j.Coordinates.Lat, j.Coordinates.Lon
		resp.Latitude, resp.Longitude = &lat, &lon
	}
	if !j.CreatedAt.IsZero() {
		resp.Created = j.CreatedAt.UTC().Format(time.RFC3339)
	}
	if j.DistanceMiles != nil {
		d := math.Round(*j.DistanceMiles*100) / 100
		resp.Distance = &d
	}
	return resp
}

func toJobResponses(jobs []model.JobRecord) []jobResponse {
	out := make([]jobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = toJobResponse(j)
	}
	return out
}

// EncodeJobs writes jobs, indented, as the JSON array served by /search.
func EncodeJobs(w io.Writer, jobs []model.JobRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJobResponses(jobs))
}

func postedText(t time.Time) string {
	if t.IsZero() {
		return postedUnknown
	}
	return t.UTC().Format(postedLayout)
}

type errorResponse struct {
	Error string `json:"error"`
}

type searchParamsEcho struct {
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Location   string   `json:"location"`
	PostalCode string   `json:"postalCode"`
	Skills     string   `json:"skills"`
}

type notFoundResponse struct {
	Error        string           `json:"error"`
	Message      string           `json:"message"`
	SearchParams searchParamsEcho `json:"searchParams"`
}

type submitResponse struct {
	Success bool        `json:"success"`
	Job     jobResponse `json:"job"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
