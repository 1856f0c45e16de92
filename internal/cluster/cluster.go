// Package cluster merges nearby project points into cluster markers for a
// given map zoom level.
package cluster

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
	"github.com/mohammed-shakir/uk-projects-map/internal/core/observability"
)

var ErrInvalidInput = errors.New("invalid input")

const (
	// clustering is disabled above this zoom
	NoClusterAbove = 8.0
	// zooms below this use CoarseThreshold
	FineFrom = 6.0

	CoarseThreshold = 1.0
	FineThreshold   = 0.5
)

// Regime names the zoom band an aggregation ran in. Output depends on
// zoom only through its regime.
type Regime string

const (
	RegimeCoarse Regime = "coarse"
	RegimeFine   Regime = "fine"
	RegimeOff    Regime = "off"
)

func RegimeFor(zoom float64) Regime {
	switch {
	case zoom > NoClusterAbove:
		return RegimeOff
	case zoom < FineFrom:
		return RegimeCoarse
	default:
		return RegimeFine
	}
}

// Threshold returns the merge distance in degrees, 0 when clustering is off.
func Threshold(zoom float64) float64 {
	switch RegimeFor(zoom) {
	case RegimeCoarse:
		return CoarseThreshold
	case RegimeFine:
		return FineThreshold
	default:
		return 0
	}
}

type Aggregator interface {
	Name() string
	Aggregate(points []model.ProjectPoint, zoom float64) ([]model.Marker, error)
}

// Aggregate runs the default greedy strategy without logging.
func Aggregate(points []model.ProjectPoint, zoom float64) ([]model.Marker, error) {
	return NewGreedy(nil).Aggregate(points, zoom)
}

// pass holds the per-call bookkeeping shared by the strategies
type pass struct {
	points []model.ProjectPoint
	finite []bool
	used   map[string]struct{}
}

// ValidateZoom rejects zoom levels no map can be at.
func ValidateZoom(zoom float64) error {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) || zoom < 0 {
		return fmt.Errorf("%w: zoom %v must be a finite non-negative number", ErrInvalidInput, zoom)
	}
	return nil
}

func newPass(logger *slog.Logger, strategy string, points []model.ProjectPoint, zoom float64) (*pass, error) {
	if err := ValidateZoom(zoom); err != nil {
		return nil, err
	}
	p := &pass{
		points: points,
		finite: make([]bool, len(points)),
		used:   make(map[string]struct{}, len(points)),
	}
	invalid := 0
	for i, pt := range points {
		if _, dup := p.used[pt.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate point id %q", ErrInvalidInput, pt.ID)
		}
		p.used[pt.ID] = struct{}{}

		p.finite[i] = pt.Finite()
		if !p.finite[i] {
			invalid++
			logger.Warn("non-finite coordinates; point excluded from clustering",
				"strategy", strategy,
				"id", pt.ID,
				"lat", fmt.Sprint(pt.Lat),
				"lng", fmt.Sprint(pt.Lng))
		}
	}
	observability.IncInvalidPoints(invalid)
	return p, nil
}

func (p *pass) single(i int) model.SingleMarker {
	pt := p.points[i]
	return model.SingleMarker{
		ID:          pt.ID,
		Coordinates: [2]float64{pt.Lng, pt.Lat},
		Project:     pt.Project,
	}
}

func (p *pass) singles() []model.Marker {
	out := make([]model.Marker, 0, len(p.points))
	for i := range p.points {
		out = append(out, p.single(i))
	}
	return out
}

// cluster builds a marker from member indexes; members[0] is the
// representative and names the cluster.
func (p *pass) cluster(members []int) model.ClusterMarker {
	rep := p.points[members[0]]

	var sumLat, sumLng float64
	bounds := model.Bounds{North: -90, South: 90, East: -180, West: 180}
	projects := make([]*model.Project, 0, len(members))
	for _, i := range members {
		pt := p.points[i]
		sumLat += pt.Lat
		sumLng += pt.Lng
		bounds.North = math.Max(bounds.North, pt.Lat)
		bounds.South = math.Min(bounds.South, pt.Lat)
		bounds.East = math.Max(bounds.East, pt.Lng)
		bounds.West = math.Min(bounds.West, pt.Lng)
		projects = append(projects, pt.Project)
	}
	n := float64(len(members))

	return model.ClusterMarker{
		ID:          p.clusterID(rep.ID),
		Coordinates: [2]float64{sumLng / n, sumLat / n},
		Projects:    projects,
		Count:       len(members),
		Bounds:      bounds,
	}
}

// clusterID derives "cluster-<rep>", suffixed when a point already owns it.
func (p *pass) clusterID(rep string) string {
	id := "cluster-" + rep
	for n := 2; ; n++ {
		if _, taken := p.used[id]; !taken {
			break
		}
		id = fmt.Sprintf("cluster-%s-%d", rep, n)
	}
	p.used[id] = struct{}{}
	return id
}

func distance(a, b model.ProjectPoint) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
