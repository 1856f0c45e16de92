package markers

import (
	"context"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/mohammed-shakir/uk-projects-map/internal/core/model"
)

// GeoJSON returns the markers of req as a feature collection, the form a
// map source consumes directly. Markers without finite coordinates have
// no geometry and are left out.
func (s *Service) GeoJSON(ctx context.Context, req Request) (*geojson.FeatureCollection, error) {
	ms, err := s.Aggregate(ctx, snapped(req))
	if err != nil {
		return nil, err
	}
	return FeatureCollection(ms), nil
}

func FeatureCollection(ms []model.Marker) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(ms))}
	for _, m := range ms {
		switch v := m.(type) {
		case model.SingleMarker:
			if !finite(v.Coordinates) {
				continue
			}
			props := map[string]any{"kind": model.KindSingle}
			if p := v.Project; p != nil {
				props["projectName"] = p.ProjectName
				props["companyName"] = p.CompanyName
				props["industry"] = p.Industry.Category
				props["status"] = string(p.Status)
				props["investment"] = p.Investment.Amount
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:         v.ID,
				Geometry:   point(v.Coordinates),
				Properties: props,
			})
		case model.ClusterMarker:
			if !finite(v.Coordinates) {
				continue
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				ID:       v.ID,
				Geometry: point(v.Coordinates),
				BBox:     geom.NewBounds(geom.XY).Set(v.Bounds.West, v.Bounds.South, v.Bounds.East, v.Bounds.North),
				Properties: map[string]any{
					"kind":  model.KindCluster,
					"count": v.Count,
				},
			})
		}
	}
	return fc
}

func point(c [2]float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c[0], c[1]}).SetSRID(4326)
}

func finite(c [2]float64) bool {
	return model.Coordinates{Longitude: c[0], Latitude: c[1]}.Finite()
}
