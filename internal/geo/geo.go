package geo

import (
	"math"

	"github.com/MahoudAyman/tuktuk/internal/domain"
)

// earthRadiusKm is the mean earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance between two locations in
// kilometers, rounded to two decimal places so that comparisons stay
// display-stable.
func Distance(a, b domain.Location) float64 {
	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * c)
}

// FareConfig holds the pricing constants. Deployments tune these through
// configuration rather than recompiling.
type FareConfig struct {
	Base  float64 // flat fee charged on every ride
	PerKm float64 // fee per kilometer
}

// DefaultFareConfig returns the stock tariff: 5 base plus 3 per kilometer.
func DefaultFareConfig() FareConfig {
	return FareConfig{Base: 5, PerKm: 3}
}

// Fare computes the price for a ride of the given distance, in whole
// currency units. The result is ceil(base + km*perKm), so a zero-distance
// ride still pays the base fare floor.
func Fare(distanceKm float64, cfg FareConfig) int {
	return int(math.Ceil(cfg.Base + distanceKm*cfg.PerKm))
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
