package geo

import (
	"math"
	"testing"

	"github.com/amishk599/jobradius/internal/model"
)

var (
	mumbai    = model.GeoPoint{Lat: 19.07, Lon: 72.87}
	bangalore = model.GeoPoint{Lat: 12.9716, Lon: 77.5946}
)

func TestDistanceMiles_SamePointIsZero(t *testing.T) {
	points := []model.GeoPoint{mumbai, bangalore, {Lat: 90, Lon: 0}, {Lat: -90, Lon: 180}, {}}
	for _, p := range points {
		if d := DistanceMiles(p, p); d != 0 {
			t.Errorf("DistanceMiles(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	pairs := [][2]model.GeoPoint{
		{mumbai, bangalore},
		{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 180}},
		{{Lat: 51.5, Lon: -0.12}, {Lat: 40.71, Lon: -74.0}},
	}
	for _, p := range pairs {
		ab, ba := DistanceMiles(p[0], p[1]), DistanceMiles(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("asymmetric distance: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceMiles_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		a, b model.GeoPoint
		want float64
		tol  float64
	}{
		{"mumbai to bangalore", mumbai, bangalore, 525.26, 0.5},
		{"one degree of latitude", model.GeoPoint{Lat: 0, Lon: 0}, model.GeoPoint{Lat: 1, Lon: 0}, 69.1, 0.1},
		{"half the equator", model.GeoPoint{Lat: 0, Lon: 0}, model.GeoPoint{Lat: 0, Lon: 180}, math.Pi * EarthRadiusMiles, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMiles(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceMiles = %.3f, want %.3f ± %.2f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	// ~3.45 miles north of Mumbai.
	near := model.GeoPoint{Lat: 19.12, Lon: 72.87}
	if !Within(mumbai, near, 5) {
		t.Error("expected point to be within 5 miles")
	}
	if Within(mumbai, near, 3) {
		t.Error("expected point to be outside 3 miles")
	}
}
