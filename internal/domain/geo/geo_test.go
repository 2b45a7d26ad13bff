package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	p := Point{Lat: 41.0082, Lon: 28.9784}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_Istanbul_Ankara(t *testing.T) {
	// İstanbul to Ankara: ~351 km great-circle
	ist := Point{Lat: 41.0082, Lon: 28.9784}
	ank := Point{Lat: 39.9334, Lon: 32.8597}
	d := Haversine(ist, ank)
	if !almost(d, 351, 5) {
		t.Fatalf("want ~351km, got %.1fkm", d)
	}
}

func TestHaversine_Antipodal(t *testing.T) {
	// Opposite sides of Earth: half circumference
	d := Haversine(Point{Lat: 0, Lon: 0}, Point{Lat: 0, Lon: 180})
	expected := math.Pi * EarthRadiusKm
	if !almost(d, expected, 0.001) {
		t.Fatalf("want ~%.0fkm, got %.0fkm", expected, d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Point{Lat: 41.0082, Lon: 28.9784}
	b := Point{Lat: 36.8969, Lon: 30.7133}
	if d1, d2 := Haversine(a, b), Haversine(b, a); !almost(d1, d2, 1e-9) {
		t.Fatalf("asymmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadius(t *testing.T) {
	center := Point{Lat: 41.0082, Lon: 28.9784}
	tests := []struct {
		name   string
		p      Point
		radius float64
		want   bool
	}{
		{"same point zero radius", center, 0, true},
		{"nearby inside", Point{Lat: 41.02, Lon: 28.99}, 5, true},
		{"ankara outside 100km", Point{Lat: 39.9334, Lon: 32.8597}, 100, false},
		{"ankara inside 400km", Point{Lat: 39.9334, Lon: 32.8597}, 400, true},
	}
	for _, tt := range tests {
		d, ok := WithinRadius(center, tt.p, tt.radius)
		if ok != tt.want {
			t.Errorf("%s: WithinRadius = %v (d=%.1f), want %v", tt.name, ok, d, tt.want)
		}
		if d < 0 {
			t.Errorf("%s: negative distance %f", tt.name, d)
		}
	}
}

func TestPointValid(t *testing.T) {
	tests := []struct {
		lat, lon float64
		valid    bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{91, 0, false},
		{0, 181, false},
		{-91, 0, false},
		{0, -181, false},
	}
	for _, tt := range tests {
		p := Point{Lat: tt.lat, Lon: tt.lon}
		if got := p.Valid(); got != tt.valid {
			t.Errorf("Point(%f, %f).Valid() = %v, want %v", tt.lat, tt.lon, got, tt.valid)
		}
	}
}
