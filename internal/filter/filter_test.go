package filter

import (
	"testing"

	"github.com/amishk599/jobradius/internal/model"
)

var seeker = model.GeoPoint{Lat: 19.07, Lon: 72.87}

// north returns a point the given number of miles due north of seeker.
func north(miles float64) model.GeoPoint {
	return model.GeoPoint{Lat: seeker.Lat + miles/69.0933, Lon: seeker.Lon}
}

func providerJob(id string, at *model.GeoPoint) model.JobRecord {
	return model.JobRecord{ID: id, Title: "Provider " + id, Coordinates: at, Skills: []string{"General"}}
}

func localPosting(id string, at model.GeoPoint) model.LocalJobPosting {
	return model.LocalJobPosting{ID: id, Title: "Local " + id, Company: "Shop", Coordinates: at}
}

func ptr(p model.GeoPoint) *model.GeoPoint { return &p }

func ids(jobs []model.JobRecord) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMerge_DropsFarProviderJobKeepsNearLocal(t *testing.T) {
	provider := []model.JobRecord{providerJob("p6", ptr(north(6)))}
	local := []model.LocalJobPosting{localPosting("l3", north(3))}

	got := Merge(provider, local, &seeker, 5)

	if !equalIDs(ids(got), []string{"l3"}) {
		t.Fatalf("got %v, want [l3]", ids(got))
	}
	if !got[0].IsLocal {
		t.Error("expected local job to be flagged IsLocal")
	}
	if got[0].DistanceMiles == nil || *got[0].DistanceMiles < 2.9 || *got[0].DistanceMiles > 3.1 {
		t.Errorf("unexpected distance %v", got[0].DistanceMiles)
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		provider []model.JobRecord
		local    []model.LocalJobPosting
		seeker   *model.GeoPoint
		radius   float64
		want     []string
	}{
		{
			name:     "local segment precedes provider segment",
			provider: []model.JobRecord{providerJob("p1", ptr(north(1)))},
			local:    []model.LocalJobPosting{localPosting("l4", north(4))},
			seeker:   &seeker,
			radius:   5,
			want:     []string{"l4", "p1"},
		},
		{
			name: "provider jobs without coordinates pass through in order",
			provider: []model.JobRecord{
				providerJob("p-none-1", nil),
				providerJob("p2", ptr(north(2))),
				providerJob("p-none-2", nil),
			},
			seeker: &seeker,
			radius: 5,
			want:   []string{"p-none-1", "p2", "p-none-2"},
		},
		{
			name: "segment sorted by distance when all distances known",
			provider: []model.JobRecord{
				providerJob("p4", ptr(north(4))),
				providerJob("p1", ptr(north(1))),
				providerJob("p2", ptr(north(2))),
			},
			local: []model.LocalJobPosting{
				localPosting("l3", north(3)),
				localPosting("l0", north(0.2)),
			},
			seeker: &seeker,
			radius: 5,
			want:   []string{"l0", "l3", "p1", "p2", "p4"},
		},
		{
			name: "requested radius larger than cap is clamped",
			provider: []model.JobRecord{
				providerJob("p4", ptr(north(4))),
				providerJob("p7", ptr(north(7))),
			},
			local:  []model.LocalJobPosting{localPosting("l9", north(9))},
			seeker: &seeker,
			radius: 25,
			want:   []string{"p4"},
		},
		{
			name: "smaller radius tightens the cut",
			provider: []model.JobRecord{
				providerJob("p1", ptr(north(1))),
				providerJob("p3", ptr(north(3))),
			},
			seeker: &seeker,
			radius: 2,
			want:   []string{"p1"},
		},
		{
			name: "no seeker keeps every local posting and provider job",
			provider: []model.JobRecord{
				providerJob("p7", ptr(north(7))),
			},
			local: []model.LocalJobPosting{
				localPosting("l9", north(9)),
				localPosting("l50", north(50)),
			},
			seeker: nil,
			radius: 5,
			want:   []string{"l9", "l50", "p7"},
		},
		{
			name: "duplicate ids keep the first occurrence",
			provider: []model.JobRecord{
				providerJob("dup", nil),
				providerJob("dup", nil),
				providerJob("x", nil),
			},
			seeker: &seeker,
			radius: 5,
			want:   []string{"dup", "x"},
		},
		{
			name:   "nothing in, nothing out",
			seeker: &seeker,
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.provider, tt.local, tt.seeker, tt.radius)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("Merge() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestMerge_NoSeekerLeavesDistanceNil(t *testing.T) {
	got := Merge(
		[]model.JobRecord{providerJob("p", ptr(north(1)))},
		[]model.LocalJobPosting{localPosting("l", north(1))},
		nil, 5,
	)
	for _, j := range got {
		if j.DistanceMiles != nil {
			t.Errorf("job %s: expected nil distance without a seeker, got %v", j.ID, *j.DistanceMiles)
		}
	}
}

func TestEffectiveRadius(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 5}, {-3, 5}, {2.5, 2.5}, {5, 5}, {10, 5},
	}
	for _, tt := range tests {
		if got := EffectiveRadius(tt.in); got != tt.want {
			t.Errorf("EffectiveRadius(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRadiusFilter_Match(t *testing.T) {
	d := func(v float64) *float64 { return &v }
	f := NewRadiusFilter(5)
	tests := []struct {
		name string
		job  model.JobRecord
		want bool
	}{
		{"inside", model.JobRecord{DistanceMiles: d(4.9)}, true},
		{"on the boundary", model.JobRecord{DistanceMiles: d(5)}, true},
		{"outside", model.JobRecord{DistanceMiles: d(5.1)}, false},
		{"unknown distance", model.JobRecord{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Match(tt.job); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}
