package model

import (
	"encoding/json"
	"math"
)

// ProjectPoint is the aggregator's view of a project: an identifier, a
// position in degrees and the record it stands for.
type ProjectPoint struct {
	ID      string
	Lat     float64
	Lng     float64
	Project *Project
}

func PointOf(p *Project) ProjectPoint {
	return ProjectPoint{
		ID:      p.ID,
		Lat:     p.Location.Coordinates.Latitude,
		Lng:     p.Location.Coordinates.Longitude,
		Project: p,
	}
}

func PointsOf(ps []*Project) []ProjectPoint {
	out := make([]ProjectPoint, len(ps))
	for i, p := range ps {
		out[i] = PointOf(p)
	}
	return out
}

func (p ProjectPoint) Finite() bool {
	return Coordinates{Latitude: p.Lat, Longitude: p.Lng}.Finite()
}

const (
	KindSingle  = "single"
	KindCluster = "cluster"
)

// Marker is either a SingleMarker or a ClusterMarker.
type Marker interface {
	MarkerID() string
	Kind() string
	isMarker()
}

// SingleMarker coordinates are [lng, lat].
type SingleMarker struct {
	ID          string
	Coordinates [2]float64
	Project     *Project
}

type ClusterMarker struct {
	ID          string
	Coordinates [2]float64
	Projects    []*Project
	Count       int
	Bounds      Bounds
}

func (m SingleMarker) MarkerID() string { return m.ID }
func (m SingleMarker) Kind() string { return KindSingle }
func (SingleMarker) isMarker() {}
func (m ClusterMarker) MarkerID() string { return m.ID }
func (m ClusterMarker) Kind() string { return KindCluster }
func (ClusterMarker) isMarker() {}

// non-finite coordinates are encoded as null, encoding/json rejects NaN
func jsonCoords(c [2]float64) *[2]float64 {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	return &c
}

func (m SingleMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind        string      `json:"kind"`
		ID          string      `json:"id"`
		Coordinates *[2]float64 `json:"coordinates"`
		Project     *Project    `json:"project"`
	}{KindSingle, m.ID, jsonCoords(m.Coordinates), m.Project})
}

func (m ClusterMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind        string      `json:"kind"`
		ID          string      `json:"id"`
		Coordinates *[2]float64 `json:"coordinates"`
		Count       int         `json:"count"`
		Bounds      Bounds      `json:"bounds"`
		Projects    []*Project  `json:"projects"`
	}{KindCluster, m.ID, jsonCoords(m.Coordinates), m.Count, m.Bounds, m.Projects})
}

// CountProjects returns how many project records a marker list carries.
func CountProjects(ms []Marker) int {
	n := 0
	for _, m := range ms {
		switch v := m.(type) {
		case SingleMarker:
			n++
		case ClusterMarker:
			n += v.Count
		}
	}
	return n
}
