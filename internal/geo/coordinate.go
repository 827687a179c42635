// Package geo places command records on the map: it turns a record's
// parameters into coordinates and measures them against the command center.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusKM = 6371.0

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(c.Lat, c.Lon)
}

func (c Coordinate) Valid() bool {
	return c.latLng().IsValid()
}

// DistanceKM is the great-circle distance between a and b.
func DistanceKM(a, b Coordinate) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * earthRadiusKM
}

// BearingTo is the initial bearing from a to b in degrees clockwise from
// north, in [0, 360).
func BearingTo(a, b Coordinate) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return math.Mod(radToDeg(math.Atan2(y, x))+360, 360)
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}

func radToDeg(r float64) float64 {
	return r * 180 / math.Pi
}
