// Package strategy plans and runs the ordered search cascade against a
// provider: most specific query first, first non-empty result wins.
package strategy

import (
	"strings"

	"github.com/amishk599/jobradius/internal/model"
)

// Strategy names, in cascade order.
const (
	PreciseCoordinates = "precise_coordinates"
	WiderCoordinates   = "wider_coordinates"
	SpecificLocation   = "specific_location"
	PostalCode         = "postal_code"
	SkillsOnly         = "skills_only"
	CountryFallback    = "country_fallback"

	// majorCityPrefix is joined with a locality slug, e.g. "major_city_mumbai".
	majorCityPrefix = "major_city_"
)

const (
	// PreciseMaxMiles caps the first tier regardless of the requested radius.
	PreciseMaxMiles = 5.0
	// WiderMiles is the fixed radius of the second coordinate tier.
	WiderMiles = 10.0

	defaultMaxDaysOld  = 30
	fallbackMaxDaysOld = 7
)

// DefaultFallbackLocalities are tried, in order, when a query has skills.
var DefaultFallbackLocalities = []string{"Bangalore", "Mumbai", "Delhi", "Hyderabad", "Chennai", "Pune"}

// Planner builds the cascade for a query.
type Planner struct {
	fallbackLocalities []string
}

// NewPlanner returns a Planner that uses localities for the major-city tier.
// A nil slice selects DefaultFallbackLocalities; an empty one disables the tier.
func NewPlanner(localities []string) *Planner {
	if localities == nil {
		localities = DefaultFallbackLocalities
	}
	cleaned := make([]string, 0, len(localities))
	for _, l := range localities {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}
	return &Planner{fallbackLocalities: cleaned}
}

// Plan returns the strategies to try for q, most specific first. The result
// is never empty: country_fallback is always last.
func (p *Planner) Plan(q model.LocationQuery, radiusMiles float64) []model.Strategy {
	skills := strings.TrimSpace(q.Skills)
	place := strategyText(q.PlaceName)
	postal := strategyText(q.PostalCode)

	recent := func(params model.SearchParams) model.SearchParams {
		params.Keywords = skills
		params.MaxDaysOld = defaultMaxDaysOld
		params.SortByDate = true
		return params
	}

	var plan []model.Strategy

	if q.Coordinates != nil {
		center := *q.Coordinates
		plan = append(plan,
			model.Strategy{
				Name:   PreciseCoordinates,
				Params: recent(model.SearchParams{Center: &center, DistanceMiles: preciseRadius(radiusMiles)}),
			},
			model.Strategy{
				Name:   WiderCoordinates,
				Params: recent(model.SearchParams{Center: &center, DistanceMiles: WiderMiles}),
			},
		)
	}

	if place != "" {
		plan = append(plan, model.Strategy{Name: SpecificLocation, Params: recent(model.SearchParams{Where: place})})
	}

	if postal != "" {
		plan = append(plan, model.Strategy{Name: PostalCode, Params: recent(model.SearchParams{Where: postal})})
	}

	if skills != "" {
		plan = append(plan, model.Strategy{Name: SkillsOnly, Params: recent(model.SearchParams{})})
		for _, city := range p.fallbackLocalities {
			plan = append(plan, model.Strategy{
				Name:   majorCityPrefix + slug(city),
				Params: recent(model.SearchParams{Where: city}),
			})
		}
	}

	plan = append(plan, model.Strategy{
		Name: CountryFallback,
		Params: model.SearchParams{
			Keywords:   skills,
			MaxDaysOld: fallbackMaxDaysOld,
			SortByDate: true,
		},
	})

	return plan
}

func preciseRadius(requested float64) float64 {
	if requested <= 0 || requested > PreciseMaxMiles {
		return PreciseMaxMiles
	}
	return requested
}

func strategyText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// slug lower-cases a locality and joins its words with underscores.
func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
