package filter

import (
	"sort"

	"github.com/amishk599/jobradius/internal/geo"
	"github.com/amishk599/jobradius/internal/model"
	"github.com/amishk599/jobradius/internal/normalize"
)

// HyperlocalCapMiles is the furthest a merged result may be from the seeker,
// whatever radius was requested.
const HyperlocalCapMiles = 5.0

// EffectiveRadius clamps a requested radius to the hyperlocal cap. A
// non-positive request means the cap itself.
func EffectiveRadius(requested float64) float64 {
	if requested <= 0 || requested > HyperlocalCapMiles {
		return HyperlocalCapMiles
	}
	return requested
}

// RadiusFilter matches jobs at most radius miles from a center. Jobs with no
// known distance pass through.
type RadiusFilter struct {
	radius float64
}

// NewRadiusFilter returns a filter for the given radius in miles.
func NewRadiusFilter(radiusMiles float64) *RadiusFilter {
	return &RadiusFilter{radius: radiusMiles}
}

// Match reports whether job is inside the radius or has no distance.
func (f *RadiusFilter) Match(job model.JobRecord) bool {
	return job.DistanceMiles == nil || *job.DistanceMiles <= f.radius
}

// Merge combines provider results with local postings for one search.
//
// Distances are computed against seeker when both sides have coordinates.
// Both segments are cut to the hyperlocal radius; when seeker is nil, local
// postings are returned unfiltered. Local jobs always come first. Within a
// segment, order is kept unless every job has a distance, in which case the
// segment is stably sorted nearest first. A job whose ID was already emitted
// is dropped.
func Merge(providerJobs []model.JobRecord, localJobs []model.LocalJobPosting, seeker *model.GeoPoint, radiusMiles float64) []model.JobRecord {
	radius := NewRadiusFilter(EffectiveRadius(radiusMiles))

	local := make([]model.JobRecord, 0, len(localJobs))
	for _, p := range localJobs {
		job := normalize.Local(p)
		annotate(&job, seeker)
		if seeker != nil && !radius.Match(job) {
			continue
		}
		local = append(local, job)
	}

	provider := make([]model.JobRecord, 0, len(providerJobs))
	for _, job := range providerJobs {
		job.DistanceMiles = nil
		annotate(&job, seeker)
		if !radius.Match(job) {
			continue
		}
		provider = append(provider, job)
	}

	sortByDistanceIfKnown(local)
	sortByDistanceIfKnown(provider)

	seen := make(map[string]bool, len(local)+len(provider))
	merged := make([]model.JobRecord, 0, len(local)+len(provider))
	for _, segment := range [][]model.JobRecord{local, provider} {
		for _, job := range segment {
			if seen[job.ID] {
				continue
			}
			seen[job.ID] = true
			merged = append(merged, job)
		}
	}
	return merged
}

func annotate(job *model.JobRecord, seeker *model.GeoPoint) {
	if seeker == nil || job.Coordinates == nil {
		return
	}
	d := geo.DistanceMiles(*seeker, *job.Coordinates)
	job.DistanceMiles = &d
}

func sortByDistanceIfKnown(jobs []model.JobRecord) {
	for _, j := range jobs {
		if j.DistanceMiles == nil {
			return
		}
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		return *jobs[a].DistanceMiles < *jobs[b].DistanceMiles
	})
}
