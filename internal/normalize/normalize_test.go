package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobradius/internal/model"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return New(func() time.Time { return fixedNow })
}

// decode mirrors how the adapter decodes provider JSON.
func decode(t *testing.T, s string) model.RawRecord {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw model.RawRecord
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func TestNormalize_TitleOnlyUsesDefaults(t *testing.T) {
	job := newTestNormalizer().Normalize(model.RawRecord{"title": "Dev"}, 5, "skills_only")

	assert.Equal(t, "Dev", job.Title)
	assert.Equal(t, DefaultCompany, job.Company)
	assert.Equal(t, DefaultLocation, job.Location)
	assert.Equal(t, DefaultDescription, job.Description)
	assert.Equal(t, DefaultCategory, job.Category)
	assert.Equal(t, []string{GeneralSkill}, job.Skills)
	assert.Equal(t, model.FullTime, job.JobType)
	assert.Equal(t, "skills_only-5", job.ID)
	assert.Equal(t, fixedNow, job.CreatedAt)
	assert.Equal(t, "skills_only", job.SourceStrategy)
	assert.False(t, job.Featured)
	assert.Nil(t, job.Coordinates)
	assert.Nil(t, job.DistanceMiles)
	assert.Nil(t, job.SalaryMin)
	assert.Nil(t, job.ContactEmail)
}

func TestNormalize_EmptyRecordStillHasTitle(t *testing.T) {
	for _, raw := range []model.RawRecord{nil, {}, {"title": nil}, {"title": 42.0}, {"title": "   "}, {"title": "<br/>"}, {"title": "&nbsp;"}, {"title": "<b></b>"}} {
		job := newTestNormalizer().Normalize(raw, 0, "country_fallback")
		if raw != nil && raw["title"] == 42.0 {
			// numbers are formatted rather than dropped
			assert.Equal(t, "42", job.Title)
			continue
		}
		assert.Equal(t, DefaultTitle, job.Title)
	}
}

func TestNormalize_FullAdzunaRecord(t *testing.T) {
	raw := decode(t, `{
		"id": "4851520541",
		"title": "Senior <strong>React</strong> Developer",
		"company": {"display_name": "Acme Labs"},
		"location": {"display_name": "Andheri, Mumbai", "area": ["India", "Maharashtra", "Mumbai"]},
		"latitude": 19.1197,
		"longitude": 72.8464,
		"description": "Build UIs with React and TypeScript. Docker &amp; AWS a plus.",
		"salary_min": 1200000,
		"salary_max": 1800000,
		"created": "2026-03-01T08:15:00Z",
		"category": {"label": "IT Jobs", "tag": "it-jobs"},
		"contract_time": "full_time",
		"redirect_url": "https://www.adzuna.in/details/4851520541"
	}`)

	job := newTestNormalizer().Normalize(raw, 0, "precise_coordinates")

	assert.Equal(t, "4851520541", job.ID)
	assert.Equal(t, "Senior React Developer", job.Title)
	assert.Equal(t, "Acme Labs", job.Company)
	assert.Equal(t, "Andheri, Mumbai", job.Location)
	require.NotNil(t, job.Coordinates)
	assert.InDelta(t, 19.1197, job.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 72.8464, job.Coordinates.Lon, 1e-9)
	assert.Equal(t, "Build UIs with React and TypeScript. Docker & AWS a plus.", job.Description)
	require.NotNil(t, job.SalaryMin)
	require.NotNil(t, job.SalaryMax)
	assert.Equal(t, 1200000.0, *job.SalaryMin)
	assert.Equal(t, 1800000.0, *job.SalaryMax)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC), job.CreatedAt)
	assert.Equal(t, "IT Jobs", job.Category)
	assert.Equal(t, []string{"react", "typescript", "aws", "docker", "ui"}, job.Skills)
	assert.True(t, job.Featured)
	require.NotNil(t, job.ContactURL)
	assert.Equal(t, "https://www.adzuna.in/details/4851520541", *job.ContactURL)
}

func TestNormalize_NumericIDAndStringCoordinates(t *testing.T) {
	raw := decode(t, `{"id": 991, "latitude": "19.07", "longitude": "72.87"}`)
	job := newTestNormalizer().Normalize(raw, 1, "wider_coordinates")

	assert.Equal(t, "991", job.ID)
	require.NotNil(t, job.Coordinates)
	assert.Equal(t, model.GeoPoint{Lat: 19.07, Lon: 72.87}, *job.Coordinates)
	assert.True(t, job.Featured)
}

func TestNormalize_RejectsBadCoordinatesAndSalaries(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawRecord
	}{
		{"latitude only", model.RawRecord{"latitude": 19.0}},
		{"out of range", model.RawRecord{"latitude": 95.0, "longitude": 10.0}},
		{"wrong type", model.RawRecord{"latitude": true, "longitude": []any{1}}},
		{"unparseable string", model.RawRecord{"latitude": "north", "longitude": "72.8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.raw["salary_min"] = 0.0
			tt.raw["salary_max"] = "lots"
			job := newTestNormalizer().Normalize(tt.raw, 3, "s")
			assert.Nil(t, job.Coordinates)
			assert.Nil(t, job.SalaryMin)
			assert.Nil(t, job.SalaryMax)
		})
	}
}

func TestNormalize_WrongShapesAreCoercedNotFatal(t *testing.T) {
	raw := model.RawRecord{
		"company":     []any{"not", "a", "map"},
		"location":    "Pune",
		"category":    map[string]any{"label": nil},
		"created":     "yesterday",
		"description": map[string]any{"html": "<p>x</p>"},
		"email":       "jobs@example.com",
	}
	job := newTestNormalizer().Normalize(raw, 0, "s")

	assert.Equal(t, DefaultCompany, job.Company)
	assert.Equal(t, "Pune", job.Location)
	assert.Equal(t, DefaultCategory, job.Category)
	assert.Equal(t, fixedNow, job.CreatedAt)
	assert.Equal(t, DefaultDescription, job.Description)
	require.NotNil(t, job.ContactEmail)
	assert.Equal(t, "jobs@example.com", *job.ContactEmail)
}

func TestInferJobType(t *testing.T) {
	tests := []struct {
		title, contract string
		want            model.JobType
	}{
		{"Software Engineering Intern", "", model.Internship},
		{"Summer Internship - Design", "full_time", model.Internship},
		{"Part-time Barista", "", model.PartTime},
		{"Cashier (part time)", "", model.PartTime},
		{"Store Associate", "part_time", model.PartTime},
		{"Backend Engineer", "", model.FullTime},
		{"", "", model.FullTime},
	}
	for _, tt := range tests {
		if got := InferJobType(tt.title, tt.contract); got != tt.want {
			t.Errorf("InferJobType(%q, %q) = %v, want %v", tt.title, tt.contract, got, tt.want)
		}
	}
}

func TestExtractSkills_PreservesVocabularyOrder(t *testing.T) {
	got := ExtractSkills("We use Kotlin, SQL and Python; FIGMA for design.")
	assert.Equal(t, []string{"python", "kotlin", "sql", "figma"}, got)

	assert.Equal(t, []string{GeneralSkill}, ExtractSkills(""))
	assert.Equal(t, []string{GeneralSkill}, ExtractSkills("Forklift operator"))
}

func TestAll_MarksFirstTwoFeatured(t *testing.T) {
	raws := []model.RawRecord{{"title": "a"}, {"title": "b"}, {"title": "c"}}
	jobs := newTestNormalizer().All(raws, "skills_only")
	require.Len(t, jobs, 3)
	assert.True(t, jobs[0].Featured)
	assert.True(t, jobs[1].Featured)
	assert.False(t, jobs[2].Featured)
	for _, j := range jobs {
		assert.Equal(t, "skills_only", j.SourceStrategy)
	}
}

func TestLocal(t *testing.T) {
	submitted := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := model.LocalJobPosting{
		ID:          "local-1",
		Title:       "Weekend part-time tutor",
		Company:     "Bright Minds",
		Location:    "Bandra",
		Coordinates: model.GeoPoint{Lat: 19.06, Lon: 72.83},
		Description: "Teach HTML and CSS basics",
		SubmittedAt: submitted,
	}
	job := Local(p)

	assert.True(t, job.IsLocal)
	assert.Equal(t, LocalStrategy, job.SourceStrategy)
	assert.Equal(t, model.PartTime, job.JobType)
	assert.Equal(t, []string{"html", "css"}, job.Skills)
	assert.Equal(t, DefaultCategory, job.Category)
	assert.Equal(t, submitted, job.CreatedAt)
	require.NotNil(t, job.Coordinates)
	assert.Equal(t, p.Coordinates, *job.Coordinates)

	intern := model.Internship
	p.JobType = &intern
	p.Skills = []string{"Teaching", "teaching", " ", "Mentoring"}
	job = Local(p)
	assert.Equal(t, model.Internship, job.JobType)
	assert.Equal(t, []string{"Teaching", "Mentoring"}, job.Skills)
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"double-encoded HTML", "Intro. &lt;p&gt;Any HTML included.&lt;/p&gt;", "Intro. Any HTML included."},
		{"nested tags and whitespace", "<p>We are hiring.</p>\n<ul>\n  <li>Write code</li>\n</ul>", "We are hiring. Write code"},
		{"plain text", "No tags here.", "No tags here."},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractText(tc.input); got != tc.want {
				t.Errorf("extractText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
		})
	}
}
