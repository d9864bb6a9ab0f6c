package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobradius/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	ids := make([]string, 0)
	for _, p := range c.Plans() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{StudentFree, StudentPremium, StudentPro, EmployerFree, EmployerPremium, EmployerEnterprise}, ids)

	free, ok := c.Plan(StudentFree)
	require.True(t, ok)
	assert.Equal(t, model.Limit{Max: 5}, free.Limits[model.ActionJobApplications])
	_, metered := free.LimitFor(model.ActionSearches)
	assert.False(t, metered)

	pro, _ := c.Plan(StudentPro)
	assert.Equal(t, 19.99, pro.Price)
	assert.Equal(t, model.Limit{Max: 50}, pro.Limits[model.ActionApplicantViews])

	ent, _ := c.Plan(EmployerEnterprise)
	assert.True(t, ent.Limits[model.ActionJobPostings].Unlimited)
}

func TestNewCatalog_Validation(t *testing.T) {
	_, err := NewCatalog([]model.Plan{{ID: "a"}, {ID: "a"}})
	assert.Error(t, err)

	_, err = NewCatalog([]model.Plan{{Name: "nameless"}})
	assert.Error(t, err)

	_, err = NewCatalog([]model.Plan{{ID: "neg", Price: -1}})
	assert.Error(t, err)
}

func TestNewCatalog_CopiesInput(t *testing.T) {
	plans := []model.Plan{{ID: "x", Limits: map[model.ActionKind]model.Limit{model.ActionSearches: {Max: 1}}}}
	c, err := NewCatalog(plans)
	require.NoError(t, err)

	plans[0].Limits[model.ActionSearches] = model.UnlimitedLimit
	p, _ := c.Plan("x")
	assert.Equal(t, model.Limit{Max: 1}, p.Limits[model.ActionSearches])
}

func TestFreePlanFor(t *testing.T) {
	assert.Equal(t, StudentFree, FreePlanFor(model.RoleStudent))
	assert.Equal(t, EmployerFree, FreePlanFor(model.RoleEmployer))
}

func TestPeriodFor(t *testing.T) {
	tests := []struct {
		in         time.Time
		start, end time.Time
	}{
		{
			time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			// 01:00 on Apr 1 in UTC+5:30 is still March in UTC.
			time.Date(2026, 4, 1, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		start, end := PeriodFor(tt.in)
		assert.Equal(t, tt.start, start, "start for %v", tt.in)
		assert.Equal(t, tt.end, end, "end for %v", tt.in)
	}
}
