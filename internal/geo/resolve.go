package geo

import (
	"github.com/wgomg/aura/internal/corpus"
)

type Source string

const (
	SourceCoordinates Source = "coordinates"
	SourceGazetteer   Source = "gazetteer"
	SourceDefault     Source = "default"
)

// DefaultCoordinate is central Chennai, used when a record names no
// recognizable place.
var DefaultCoordinate = Coordinate{Lat: 13.0827, Lon: 80.2707}

// placeParams are consulted in order for a gazetteer match.
var placeParams = []string{"location", "landmark", "facility", "structure"}

type Location struct {
	Coordinate
	Source        Source     `json:"source"`
	Place         string     `json:"place,omitempty"`
	DistanceKM    float64    `json:"distance_km"`
	BearingDeg    float64    `json:"bearing_deg"`
	CommandID     string     `json:"command_id"`
	CommandCenter Coordinate `json:"command_center"`
}

type Resolver struct {
	center Coordinate
}

func NewResolver(center Coordinate) *Resolver {
	return &Resolver{center: center}
}

func (r *Resolver) Resolve(rec corpus.CommandRecord) Location {
	loc := r.locate(rec.Parameters)
	loc.CommandID = rec.ID
	loc.CommandCenter = r.center
	loc.DistanceKM = DistanceKM(r.center, loc.Coordinate)
	loc.BearingDeg = BearingTo(r.center, loc.Coordinate)
	return loc
}

func (r *Resolver) locate(params corpus.Params) Location {
	if raw, ok := params.Text("coordinates"); ok {
		if c, err := ParseCoordinates(raw); err == nil {
			return Location{Coordinate: c, Source: SourceCoordinates}
		}
	}

	for _, key := range placeParams {
		text, ok := params.Text(key)
		if !ok {
			continue
		}
		if p, ok := LookupPlace(text); ok {
			return Location{Coordinate: p.Coord, Source: SourceGazetteer, Place: p.Name}
		}
	}

	return Location{Coordinate: DefaultCoordinate, Source: SourceDefault}
}
