package geo

import (
	"fmt"
	"regexp"
	"strconv"
)

// coordPattern accepts the hemisphere-suffixed style used in the corpus,
// e.g. "13.0827°N, 80.2707°E".
var coordPattern = regexp.MustCompile(`(\d+\.?\d*)\D*([NS])\D*(\d+\.?\d*)\D*([EW])`)

func ParseCoordinates(s string) (Coordinate, error) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return Coordinate{}, fmt.Errorf("unrecognized coordinates %q", s)
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("latitude %q: %w", m[1], err)
	}
	lon, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("longitude %q: %w", m[3], err)
	}
	if m[2] == "S" {
		lat = -lat
	}
	if m[4] == "W" {
		lon = -lon
	}

	c := NewCoordinate(lat, lon)
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("coordinates out of range: %q", s)
	}
	return c, nil
}
