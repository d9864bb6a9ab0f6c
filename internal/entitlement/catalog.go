// Package entitlement decides whether a subscriber may perform a metered
// action under their plan, and records usage per calendar month.
package entitlement

import (
	"fmt"

	"github.com/amishk599/jobradius/internal/model"
)

// Plan IDs of the default catalog.
const (
	StudentFree        = "student_free"
	StudentPremium     = "student_premium"
	StudentPro         = "student_pro"
	EmployerFree       = "employer_free"
	EmployerPremium    = "employer_premium"
	EmployerEnterprise = "employer_enterprise"
)

// FreePlanFor returns the free tier ID for a role, e.g. "student_free".
func FreePlanFor(role model.Role) string {
	return string(role) + "_free"
}

// Catalog is an immutable, ordered set of plans.
type Catalog struct {
	order []string
	plans map[string]model.Plan
}

// NewCatalog builds a catalog, keeping the given order. Plan IDs must be
// unique and non-empty.
func NewCatalog(plans []model.Plan) (*Catalog, error) {
	c := &Catalog{plans: make(map[string]model.Plan, len(plans))}
	for _, p := range plans {
		if p.ID == "" {
			return nil, fmt.Errorf("plan %q: missing id", p.Name)
		}
		if _, dup := c.plans[p.ID]; dup {
			return nil, fmt.Errorf("plan %q: duplicate id", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("plan %q: negative price", p.ID)
		}
		limits := make(map[model.ActionKind]model.Limit, len(p.Limits))
		for a, l := range p.Limits {
			limits[a] = l
		}
		p.Limits = limits
		p.Features = append([]string(nil), p.Features...)
		c.plans[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

// Plan returns the plan with the given id.
func (c *Catalog) Plan(id string) (model.Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// Plans returns every plan in catalog order.
func (c *Catalog) Plans() []model.Plan {
	out := make([]model.Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}

func limits(applications, saved, postings, views model.Limit) map[model.ActionKind]model.Limit {
	return map[model.ActionKind]model.Limit{
		model.ActionJobApplications: applications,
		model.ActionSavedJobs:       saved,
		model.ActionJobPostings:     postings,
		model.ActionApplicantViews:  views,
	}
}

func n(m int) model.Limit { return model.Limit{Max: m} }

var unlimited = model.UnlimitedLimit

// DefaultPlans is the built-in plan set. Actions other than the four listed
// in each plan's limits are not metered.
var DefaultPlans = []model.Plan{
	{
		ID: StudentFree, Name: "Student Free", Price: 0, Interval: model.Monthly, Role: model.RoleStudent,
		Features: []string{
			"Basic job search",
			"Basic profile",
			"Location-based matching",
			"Email notifications",
		},
		Limits: limits(n(5), n(10), n(0), n(0)),
	},
	{
		ID: StudentPremium, Name: "Student Premium", Price: 9.99, Interval: model.Monthly, Role: model.RoleStudent,
		Features: []string{
			"Unlimited job applications",
			"Priority application status",
			"Advanced search filters",
			"AI resume review",
			"Cover letter generator",
			"Interview preparation",
			"Skill assessments",
			"Career path planning",
			"Premium support",
		},
		Limits: limits(unlimited, unlimited, n(0), n(0)),
	},
	{
		ID: StudentPro, Name: "Student Pro", Price: 19.99, Interval: model.Monthly, Role: model.RoleStudent,
		Features: []string{
			"All Premium features",
			"Personal career coach",
			"Video interview practice",
			"Industry insights",
			"Networking events access",
			"Mentorship matching",
			"Portfolio builder",
			"Salary negotiation tools",
		},
		Limits: limits(unlimited, unlimited, n(1), n(50)),
	},
	{
		ID: EmployerFree, Name: "Employer Free", Price: 0, Interval: model.Monthly, Role: model.RoleEmployer,
		Features: []string{
			"Basic candidate search",
			"Basic job posting",
			"Application management",
		},
		Limits: limits(n(0), n(0), n(1), n(10)),
	},
	{
		ID: EmployerPremium, Name: "Employer Premium", Price: 49.99, Interval: model.Monthly, Role: model.RoleEmployer,
		Features: []string{
			"Unlimited job postings",
			"Featured listings",
			"Advanced candidate search",
			"Bulk messaging",
			"Application analytics",
			"Interview scheduling",
			"Team collaboration",
		},
		Limits: limits(n(0), n(0), unlimited, unlimited),
	},
	{
		ID: EmployerEnterprise, Name: "Employer Enterprise", Price: 99.99, Interval: model.Monthly, Role: model.RoleEmployer,
		Features: []string{
			"All Premium features",
			"AI candidate matching",
			"Custom branding",
			"API access",
			"Dedicated support",
			"Advanced analytics",
			"Multi-location management",
			"Integration support",
		},
		Limits: limits(n(0), n(0), unlimited, unlimited),
	},
}

// DefaultCatalog returns a catalog of DefaultPlans.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPlans)
	if err != nil {
		panic(err) // DefaultPlans is static
	}
	return c
}
