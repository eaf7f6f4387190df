package geo

import (
	"fmt"
	"math"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6_371_000

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates are inside the representable range.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// ProximityResult classifies a subject point against an anchor and radius.
// The numeric fields drive attendance decisions; Message is presentation only.
type ProximityResult struct {
	DistanceMeters int    `json:"distance_meters"`
	WithinRadius   bool   `json:"within_radius"`
	Message        string `json:"message"`
}

// Distance returns the great-circle distance between two points in meters,
// rounded to the nearest integer.
func Distance(a, b Point) int {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(earthRadiusMeters * c))
}

// CheckProximity reports whether subject lies within radiusMeters of anchor.
// The boundary is inclusive: a distance exactly equal to the radius passes.
func CheckProximity(subject, anchor Point, radiusMeters int) ProximityResult {
	d := Distance(subject, anchor)
	within := d <= radiusMeters

	var msg string
	if within {
		msg = fmt.Sprintf("Localização confirmada: você está a %d m do local do evento (raio de %d m).", d, radiusMeters)
	} else {
		msg = fmt.Sprintf("Você está a %d m do local do evento, fora do raio permitido de %d m.", d, radiusMeters)
	}

	return ProximityResult{DistanceMeters: d, WithinRadius: within, Message: msg}
}
