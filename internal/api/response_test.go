package api

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobradius/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestToJobResponse(t *testing.T) {
	email := "hr@example.com"
	job := model.JobRecord{
		ID:             "42",
		Title:          "Dev",
		Coordinates:    &model.GeoPoint{Lat: 19.1, Lon: 72.8},
		CreatedAt:      time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC),
		DistanceMiles:  f64(2.34567),
		JobType:        model.Internship,
		SourceStrategy: "postal_code",
		ContactEmail:   &email,
	}
	resp := toJobResponse(job)

	assert.Equal(t, "42", resp.ID)
	require.NotNil(t, resp.Latitude)
	assert.Equal(t, 19.1, *resp.Latitude)
	assert.Equal(t, "2026-03-01T08:15:00Z", resp.Created)
	assert.Equal(t, "3/1/2026", resp.Posted)
	require.NotNil(t, resp.Distance)
	assert.Equal(t, 2.35, *resp.Distance)
	assert.Equal(t, "Internship", resp.Type)
	assert.Equal(t, "postal_code", resp.SearchStrategy)
	assert.Equal(t, []string{}, resp.Skills)
	assert.Equal(t, model.SalaryNotSpecified, resp.Salary)

	empty := toJobResponse(model.JobRecord{})
	assert.Nil(t, empty.Latitude)
	assert.Nil(t, empty.Distance)
	assert.Equal(t, postedUnknown, empty.Posted)
	assert.Equal(t, "", empty.Created)
}

func TestEncodeJobs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJobs(&buf, []model.JobRecord{{ID: "a", Title: "Dev"}}))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["id"])
	assert.Equal(t, "Full-time", got[0]["type"])
	assert.Equal(t, false, got[0]["is_local"])
}
