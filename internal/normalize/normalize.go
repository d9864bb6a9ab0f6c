// Package normalize maps untrusted provider payloads and local postings onto
// the canonical model.JobRecord. It never fails: every field has a named
// default.
package normalize

import (
	"fmt"
	"time"

	"github.com/amishk599/jobradius/internal/model"
)

// Defaults applied when a provider record lacks a field.
const (
	DefaultTitle       = "Job Title Not Available"
	DefaultCompany     = "Company Not Specified"
	DefaultLocation    = "Location not specified"
	DefaultDescription = "No description available"
	DefaultCategory    = "General"
)

// LocalStrategy is the SourceStrategy of every locally submitted posting.
const LocalStrategy = "local"

// featuredCount is how many leading records of a result set are marked featured.
const featuredCount = 2

// Normalizer converts raw provider records. The clock supplies CreatedAt for
// records without a parseable creation time.
type Normalizer struct {
	now func() time.Time
}

// New returns a Normalizer using now as its clock; nil means time.Now.
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize maps one raw record. index is the record's position in the
// strategy's result order and strategy is the name of the strategy that found it.
func (n *Normalizer) Normalize(raw model.RawRecord, index int, strategy string) model.JobRecord {
	job := model.JobRecord{
		ID:             fmt.Sprintf("%s-%d", strategy, index),
		Title:          DefaultTitle,
		Company:        DefaultCompany,
		Location:       DefaultLocation,
		Description:    DefaultDescription,
		Category:       DefaultCategory,
		Featured:       index < featuredCount,
		SourceStrategy: strategy,
	}

	if id, ok := stringField(raw, "id"); ok {
		job.ID = id
	}
	if title, ok := stringField(raw, "title"); ok {
		if text := extractText(title); text != "" {
			job.Title = text
		}
	}
	if company, ok := firstString(raw, []string{"company", "display_name"}, []string{"company"}); ok {
		job.Company = company
	}
	if loc, ok := firstString(raw, []string{"location", "display_name"}, []string{"location"}); ok {
		job.Location = loc
	}
	if desc, ok := stringField(raw, "description"); ok {
		if text := extractText(desc); text != "" {
			job.Description = text
		}
	}
	if category, ok := firstString(raw, []string{"category", "label"}, []string{"category"}); ok {
		job.Category = category
	}

	job.Coordinates = coordinates(raw)
	job.SalaryMin = positiveAmount(raw, "salary_min")
	job.SalaryMax = positiveAmount(raw, "salary_max")

	if created, ok := timeField(raw, "created"); ok {
		job.CreatedAt = created
	} else {
		job.CreatedAt = n.now().UTC()
	}

	contractTime, _ := stringField(raw, "contract_time")
	job.JobType = InferJobType(job.Title, contractTime)

	// Skills come from the provider's description only; the default
	// placeholder text never matches the vocabulary.
	rawDesc, _ := stringField(raw, "description")
	job.Skills = ExtractSkills(extractText(rawDesc))

	job.ContactEmail = optionalString(raw, []string{"contact_email"}, []string{"email"})
	job.ContactPhone = optionalString(raw, []string{"contact_phone"})
	job.ContactURL = optionalString(raw, []string{"contact_url"}, []string{"redirect_url"})

	return job
}

// All normalizes a whole result set in order.
func (n *Normalizer) All(raws []model.RawRecord, strategy string) []model.JobRecord {
	jobs := make([]model.JobRecord, 0, len(raws))
	for i, raw := range raws {
		jobs = append(jobs, n.Normalize(raw, i, strategy))
	}
	return jobs
}

// Local maps a locally submitted posting. Distance is left for the merger.
func Local(p model.LocalJobPosting) model.JobRecord {
	coords := p.Coordinates
	job := model.JobRecord{
		ID:             p.ID,
		Title:          p.Title,
		Company:        p.Company,
		Location:       p.Location,
		Coordinates:    &coords,
		Description:    p.Description,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		CreatedAt:      p.SubmittedAt,
		Category:       p.Category,
		SourceStrategy: LocalStrategy,
		ContactEmail:   p.ContactEmail,
		ContactPhone:   p.ContactPhone,
		ContactURL:     p.ContactURL,
		IsLocal:        true,
	}
	if job.Description == "" {
		job.Description = DefaultDescription
	}
	if job.Category == "" {
		job.Category = DefaultCategory
	}

	if p.JobType != nil {
		job.JobType = *p.JobType
	} else {
		job.JobType = InferJobType(p.Title, "")
	}

	job.Skills = dedupe(p.Skills)
	if len(job.Skills) == 0 {
		job.Skills = ExtractSkills(p.Description)
	}
	return job
}
